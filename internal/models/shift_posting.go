package models

import "time"

// PostingType enumerates the shift marketplace listing kinds.
type PostingType string

const (
	PostingTypeGiveaway PostingType = "giveaway"
	PostingTypePickup   PostingType = "pickup"
	PostingTypeSwap     PostingType = "swap"
)

// PostingStatus is a closed enumeration stored as its lowercase string.
type PostingStatus string

const (
	PostingStatusOpen      PostingStatus = "open"
	PostingStatusPending   PostingStatus = "pending"
	PostingStatusClaimed   PostingStatus = "claimed"
	PostingStatusCancelled PostingStatus = "cancelled"
	PostingStatusExpired   PostingStatus = "expired"
)

// ShiftPosting is a marketplace listing: a shift a doctor wants to give away
// or swap, or a standing request to pick one up.
type ShiftPosting struct {
	ID                string        `db:"id" json:"id"`
	PosterID          string        `db:"poster_id" json:"poster_id"`
	AssignmentID      *string       `db:"assignment_id" json:"assignment_id,omitempty"`
	PostingType       PostingType   `db:"posting_type" json:"posting_type"`
	Status            PostingStatus `db:"status" json:"status"`
	PreferredDate     *time.Time    `db:"preferred_date" json:"preferred_date,omitempty"`
	PreferredCenterID *string       `db:"preferred_center_id" json:"preferred_center_id,omitempty"`
	PreferredShiftID  *string       `db:"preferred_shift_id" json:"preferred_shift_id,omitempty"`
	Message           *string       `db:"message" json:"message,omitempty"`
	IsUrgent          bool          `db:"is_urgent" json:"is_urgent"`
	ClaimedByID       *string       `db:"claimed_by_id" json:"claimed_by_id,omitempty"`
	ClaimedAt         *time.Time    `db:"claimed_at" json:"claimed_at,omitempty"`
	ExpiresAt         *time.Time    `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}

// ShiftPostingFilter narrows marketplace listings.
type ShiftPostingFilter struct {
	Status      *PostingStatus
	PostingType *PostingType
	Page        int
	PageSize    int
}
