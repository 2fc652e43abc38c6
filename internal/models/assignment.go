package models

import "time"

// Assignment is a single doctor's commitment to one shift at one center on
// one date, inside one schedule. Unique on (schedule_id, doctor_id, date).
type Assignment struct {
	ID         string    `db:"id" json:"id"`
	ScheduleID string    `db:"schedule_id" json:"schedule_id"`
	DoctorID   string    `db:"doctor_id" json:"doctor_id"`
	CenterID   string    `db:"center_id" json:"center_id"`
	ShiftID    string    `db:"shift_id" json:"shift_id"`
	Date       time.Time `db:"date" json:"date"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// AssignmentDetail joins an Assignment to its referenced catalog rows, used
// for response shaping and CSV/PDF export without materializing object graphs.
type AssignmentDetail struct {
	Assignment
	DoctorName       string      `db:"doctor_name" json:"doctor_name"`
	DoctorEmployeeID string      `db:"doctor_employee_id" json:"doctor_employee_id"`
	Nationality      Nationality `db:"nationality" json:"nationality"`
	CenterCode       string      `db:"center_code" json:"center_code"`
	CenterName       string      `db:"center_name" json:"center_name"`
	ShiftCode        string      `db:"shift_code" json:"shift_code"`
	ShiftHours       int         `db:"shift_hours" json:"shift_hours"`
	IsOvernight      bool        `db:"is_overnight" json:"is_overnight"`
}

// AssignmentFilter narrows assignment listings.
type AssignmentFilter struct {
	ScheduleID string
	DoctorID   string
	CenterID   string
	Date       *time.Time
	Page       int
	PageSize   int
}
