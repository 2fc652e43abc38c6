package models

import "time"

// AnnouncementAudience defines who can see an announcement. ALL means every
// role; CENTER scopes the announcement to doctors rostered at one center.
type AnnouncementAudience string

const (
	AnnouncementAudienceAll      AnnouncementAudience = "all"
	AnnouncementAudienceDoctor   AnnouncementAudience = "doctor"
	AnnouncementAudienceTeamLead AnnouncementAudience = "team_lead"
	AnnouncementAudienceCenter   AnnouncementAudience = "center"
)

// AnnouncementPriority defines ordering for announcements.
type AnnouncementPriority string

const (
	AnnouncementPriorityLow    AnnouncementPriority = "low"
	AnnouncementPriorityNormal AnnouncementPriority = "normal"
	AnnouncementPriorityHigh   AnnouncementPriority = "high"
)

// Announcement represents a persisted announcement row. RecurrenceRule is
// syntax-checked on create and update; nothing expands it into concrete
// publish/expiry instances before the announcement is stored.
type Announcement struct {
	ID             string               `db:"id" json:"id"`
	Title          string               `db:"title" json:"title"`
	Content        string               `db:"content" json:"content"`
	Audience       AnnouncementAudience `db:"audience" json:"audience"`
	TargetCenterID *string              `db:"target_center_id" json:"target_center_id,omitempty"`
	Priority       AnnouncementPriority `db:"priority" json:"priority"`
	IsPinned       bool                 `db:"is_pinned" json:"is_pinned"`
	RecurrenceRule *string              `db:"recurrence_rule" json:"recurrence_rule,omitempty"`
	PublishedAt    time.Time            `db:"published_at" json:"published_at"`
	ExpiresAt      *time.Time           `db:"expires_at" json:"expires_at,omitempty"`
	CreatedBy      string               `db:"created_by" json:"created_by"`
	CreatedAt      time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `db:"updated_at" json:"updated_at"`
}

// AnnouncementFilter allows listing announcements.
type AnnouncementFilter struct {
	AudienceRoles []UserRole
	CenterIDs     []string
	IncludePinned bool
	Page          int
	PageSize      int
}
