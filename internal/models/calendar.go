package models

import "time"

// CalendarEvent represents a roster calendar entry: a holiday marker, a
// center closure, or an expanded occurrence of a recurring coverage
// exception or announcement window.
type CalendarEvent struct {
	ID             string               `db:"id" json:"id"`
	Title          string               `db:"title" json:"title"`
	Description    string               `db:"description" json:"description"`
	EventType      string               `db:"event_type" json:"event_type"`
	StartDate      time.Time            `db:"start_date" json:"start_date"`
	EndDate        time.Time            `db:"end_date" json:"end_date"`
	StartTime      *time.Time           `db:"start_time" json:"start_time,omitempty"`
	EndTime        *time.Time           `db:"end_time" json:"end_time,omitempty"`
	Audience       AnnouncementAudience `db:"audience" json:"audience"`
	TargetCenterID *string              `db:"target_center_id" json:"target_center_id,omitempty"`
	Location       *string              `db:"location" json:"location,omitempty"`
	CreatedBy      string               `db:"created_by" json:"created_by"`
	CreatedAt      time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `db:"updated_at" json:"updated_at"`
}

// CalendarFilter narrows down events.
type CalendarFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Audience  []AnnouncementAudience
	CenterIDs []string
	Page      int
	PageSize  int
}

// Holiday is a calendar-day marker consumed by the fairness analyzer's
// holiday-shift counting. The original implementation hard-codes a yearly
// list; this catalog-backed form preserves those defaults while allowing an
// admin to add or remove dates per §9's open question.
type Holiday struct {
	Date  time.Time `db:"date" json:"date"`
	Label string    `db:"label" json:"label"`
}
