package models

import "time"

// LeaveStatus is a closed enumeration stored as its lowercase string.
type LeaveStatus string

const (
	LeaveStatusPending   LeaveStatus = "pending"
	LeaveStatusApproved  LeaveStatus = "approved"
	LeaveStatusDenied    LeaveStatus = "denied"
	LeaveStatusCancelled LeaveStatus = "cancelled"
)

// Leave represents a requested or approved absence window for a doctor.
// Only approved leaves gate assignment eligibility.
type Leave struct {
	ID        string      `db:"id" json:"id"`
	DoctorID  string      `db:"doctor_id" json:"doctor_id"`
	StartDate time.Time   `db:"start_date" json:"start_date"`
	EndDate   time.Time   `db:"end_date" json:"end_date"`
	Type      string      `db:"type" json:"type"`
	Status    LeaveStatus `db:"status" json:"status"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// Covers reports whether the approved leave's inclusive window covers date.
func (l Leave) Covers(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	start := l.StartDate.Truncate(24 * time.Hour)
	end := l.EndDate.Truncate(24 * time.Hour)
	return !d.Before(start) && !d.After(end)
}

// LeaveFilter narrows leave listings.
type LeaveFilter struct {
	DoctorID string
	Status   *LeaveStatus
	Page     int
	PageSize int
}
