package models

import "time"

// Severity classifies a Violation; only errors gate ValidationResult.Valid.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ViolationKind enumerates the constraint validator's rule catalog.
type ViolationKind string

const (
	KindMonthlyHoursExceeded  ViolationKind = "monthly_hours_exceeded"
	KindConsecutiveNights     ViolationKind = "consecutive_nights"
	KindInsufficientCoverage  ViolationKind = "insufficient_coverage"
	KindLeaveConflict         ViolationKind = "leave_conflict"
	KindDoubleBooking         ViolationKind = "double_booking"
	KindInvalidShiftForCenter ViolationKind = "invalid_shift_for_center"
	// KindRestPeriodViolation is declared in the taxonomy but not currently
	// emitted by any rule; reserved for a future check.
	KindRestPeriodViolation ViolationKind = "rest_period_violation"
)

// Violation is a single typed, scoped finding emitted by the constraint validator.
type Violation struct {
	Kind     ViolationKind          `json:"kind"`
	Severity Severity               `json:"severity"`
	Message  string                 `json:"message"`
	DoctorID *string                `json:"doctor_id,omitempty"`
	CenterID *string                `json:"center_id,omitempty"`
	ShiftID  *string                `json:"shift_id,omitempty"`
	Date     *time.Time             `json:"date,omitempty"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// ValidationResult aggregates every Violation produced for a schedule or a
// single candidate assignment.
type ValidationResult struct {
	Violations  []Violation `json:"violations"`
	ErrorCount  int         `json:"error_count"`
	WarningCount int        `json:"warning_count"`
	InfoCount   int         `json:"info_count"`
	Valid       bool        `json:"valid"`
}

// NewValidationResult tallies severities and sets Valid from the error count.
func NewValidationResult(violations []Violation) ValidationResult {
	result := ValidationResult{Violations: violations}
	for _, v := range violations {
		switch v.Severity {
		case SeverityError:
			result.ErrorCount++
		case SeverityWarning:
			result.WarningCount++
		case SeverityInfo:
			result.InfoCount++
		}
	}
	result.Valid = result.ErrorCount == 0
	return result
}

// BuildResult is returned by the auto-builder.
type BuildResult struct {
	Success           bool     `json:"success"`
	AssignmentsCreated int     `json:"assignments_created"`
	SlotsUnfilled     int      `json:"slots_unfilled"`
	Warnings          []string `json:"warnings"`
}

const maxBuildWarnings = 50

// AppendWarning records a human-readable warning, capping storage at 50
// while still counting every unfilled slot.
func (r *BuildResult) AppendWarning(message string) {
	if len(r.Warnings) < maxBuildWarnings {
		r.Warnings = append(r.Warnings, message)
	}
}
