package dto

import "time"

// CreateScheduleRequest creates a new draft schedule for a calendar month.
type CreateScheduleRequest struct {
	Year  int `json:"year" validate:"required,min=2000,max=2100"`
	Month int `json:"month" validate:"required,min=1,max=12"`
}

// TransitionScheduleRequest drives the schedule state machine.
type TransitionScheduleRequest struct {
	Action string `json:"action" validate:"required,oneof=publish unpublish archive unarchive"`
}

// BuildScheduleRequest triggers the auto-builder for a schedule.
type BuildScheduleRequest struct {
	ClearExisting bool `json:"clear_existing"`
}

// ValidateCandidateRequest checks a not-yet-persisted assignment.
type ValidateCandidateRequest struct {
	DoctorID string    `json:"doctor_id" validate:"required"`
	CenterID string    `json:"center_id" validate:"required"`
	ShiftID  string    `json:"shift_id" validate:"required"`
	Date     time.Time `json:"date" validate:"required"`
}

// CreateCenterRequest creates a clinical center.
type CreateCenterRequest struct {
	Code              string   `json:"code" validate:"required"`
	Name              string   `json:"name" validate:"required"`
	AllowedShiftCodes []string `json:"allowed_shift_codes" validate:"required,min=1"`
	Active            bool     `json:"active"`
}

// CreateShiftRequest creates a reusable shift definition.
type CreateShiftRequest struct {
	Code        string `json:"code" validate:"required"`
	Hours       int    `json:"hours" validate:"required,min=1"`
	Start       string `json:"start" validate:"required"`
	End         string `json:"end" validate:"required"`
	IsOvernight bool   `json:"is_overnight"`
	IsOptional  bool   `json:"is_optional"`
}

// CreateCoverageTemplateRequest creates a per-(center,shift) staffing minimum.
type CreateCoverageTemplateRequest struct {
	CenterID   string `json:"center_id" validate:"required"`
	ShiftID    string `json:"shift_id" validate:"required"`
	MinDoctors int    `json:"min_doctors" validate:"required,min=1"`
	Mandatory  bool   `json:"mandatory"`
}

// CreateAssignmentRequest manually writes one assignment, going through the
// same eligibility checks as a candidate validation before insert.
type CreateAssignmentRequest struct {
	DoctorID string    `json:"doctor_id" validate:"required"`
	CenterID string    `json:"center_id" validate:"required"`
	ShiftID  string    `json:"shift_id" validate:"required"`
	Date     time.Time `json:"date" validate:"required"`
}

// CreateLeaveRequest requests an absence window for a doctor.
type CreateLeaveRequest struct {
	DoctorID  string    `json:"doctor_id" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
	Type      string    `json:"type" validate:"required"`
}

// UpdateLeaveStatusRequest approves, denies, or cancels a leave request.
type UpdateLeaveStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved denied cancelled"`
}
