package models

import "time"

// Doctor represents a physician's catalog entry, one-to-one with a User account.
type Doctor struct {
	ID                    string    `db:"id" json:"id"`
	UserID                string    `db:"user_id" json:"user_id"`
	EmployeeID            string    `db:"employee_id" json:"employee_id"`
	Active                bool      `db:"active" json:"active"`
	CanWorkNights         bool      `db:"can_work_nights" json:"can_work_nights"`
	IsPediatricsCertified bool      `db:"is_pediatrics_certified" json:"is_pediatrics_certified"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// DoctorWithUser joins a Doctor to its owning User for response shaping and
// for the catalog snapshot the auto-builder and validator read from.
type DoctorWithUser struct {
	Doctor
	Name        string      `db:"name" json:"name"`
	Email       string      `db:"email" json:"email"`
	Nationality Nationality `db:"nationality" json:"nationality"`
}

// MonthlyHoursCap returns the doctor's statutory monthly hours ceiling.
func (d DoctorWithUser) MonthlyHoursCap() int {
	return MonthlyHoursCap(d.Nationality)
}

// DoctorFilter narrows doctor listings.
type DoctorFilter struct {
	Search   string
	Active   *bool
	Page     int
	PageSize int
}
