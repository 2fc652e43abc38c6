package models

import "time"

// PreferenceLevel is a closed enumeration stored as its lowercase string.
type PreferenceLevel string

const (
	PreferencePreferred   PreferenceLevel = "preferred"
	PreferenceNeutral     PreferenceLevel = "neutral"
	PreferenceAvoid       PreferenceLevel = "avoid"
	PreferenceUnavailable PreferenceLevel = "unavailable"
)

// AvailabilityPreference is a doctor's weekly recurring availability signal.
// The auto-builder does not currently consult it (greedy selection is driven
// by hours/leave/consecutive-night tallies only); it is surfaced to
// schedulers as an advisory overlay, matching its read-only role in the
// source system.
type AvailabilityPreference struct {
	ID             string          `db:"id" json:"id"`
	DoctorID       string          `db:"doctor_id" json:"doctor_id"`
	DayOfWeek      int             `db:"day_of_week" json:"day_of_week"`
	Preference     PreferenceLevel `db:"preference" json:"preference"`
	ShiftID        *string         `db:"shift_id" json:"shift_id,omitempty"`
	EffectiveFrom  time.Time       `db:"effective_from" json:"effective_from"`
	EffectiveUntil *time.Time      `db:"effective_until" json:"effective_until,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// SpecificDatePreference overrides the weekly preference for one calendar date.
type SpecificDatePreference struct {
	ID         string          `db:"id" json:"id"`
	DoctorID   string          `db:"doctor_id" json:"doctor_id"`
	Date       time.Time       `db:"date" json:"date"`
	Preference PreferenceLevel `db:"preference" json:"preference"`
	ShiftID    *string         `db:"shift_id" json:"shift_id,omitempty"`
	Reason     *string         `db:"reason" json:"reason,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// AvailabilityFilter narrows availability preference listings.
type AvailabilityFilter struct {
	DoctorID string
	Page     int
	PageSize int
}
