package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/models"
	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
)

type validatorAssignmentReader interface {
	ListBySchedule(ctx context.Context, scheduleID string) ([]models.Assignment, error)
	CountMonthlyHours(ctx context.Context, scheduleID, doctorID string) (int, error)
	ExistsForDoctorDate(ctx context.Context, scheduleID, doctorID string, date time.Time) (bool, error)
}

type validatorDoctorReader interface {
	FindByID(ctx context.Context, id string) (*models.DoctorWithUser, error)
}

type validatorScheduleReader interface {
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
}

type validatorCenterReader interface {
	FindByID(ctx context.Context, id string) (*models.Center, error)
}

type validatorShiftReader interface {
	FindByID(ctx context.Context, id string) (*models.Shift, error)
}

type validatorCoverageReader interface {
	ListMandatory(ctx context.Context) ([]models.CoverageTemplate, error)
}

type validatorLeaveReader interface {
	ListApprovedOverlapping(ctx context.Context, from, to time.Time) ([]models.Leave, error)
}

// ConstraintValidatorService checks a schedule, or a single candidate
// assignment, against the roster's scheduling rules: monthly hours caps,
// consecutive night shifts, mandatory coverage, leave conflicts, double
// bookings, and center/shift compatibility.
type ConstraintValidatorService struct {
	assignments validatorAssignmentReader
	doctors     validatorDoctorReader
	schedules   validatorScheduleReader
	centers     validatorCenterReader
	shifts      validatorShiftReader
	coverage    validatorCoverageReader
	leaves      validatorLeaveReader
	logger      *zap.Logger
}

// NewConstraintValidatorService wires the validator's read dependencies.
func NewConstraintValidatorService(
	assignments validatorAssignmentReader,
	doctors validatorDoctorReader,
	schedules validatorScheduleReader,
	centers validatorCenterReader,
	shifts validatorShiftReader,
	coverage validatorCoverageReader,
	leaves validatorLeaveReader,
	logger *zap.Logger,
) *ConstraintValidatorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConstraintValidatorService{
		assignments: assignments,
		doctors:     doctors,
		schedules:   schedules,
		centers:     centers,
		shifts:      shifts,
		coverage:    coverage,
		leaves:      leaves,
		logger:      logger,
	}
}

// ValidateSchedule runs every rule across a schedule's full assignment set
// and returns the aggregated result. Used before publish and on demand from
// the schedule detail view.
func (s *ConstraintValidatorService) ValidateSchedule(ctx context.Context, scheduleID string) (*models.ValidationResult, error) {
	schedule, err := s.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "schedule not found")
	}

	assignments, err := s.assignments.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}

	var violations []models.Violation
	violations = append(violations, s.checkMonthlyHours(ctx, assignments)...)
	violations = append(violations, s.checkConsecutiveNights(ctx, assignments)...)
	violations = append(violations, s.checkCoverage(ctx, schedule, assignments)...)
	violations = append(violations, s.checkLeaveConflicts(ctx, assignments)...)
	violations = append(violations, s.checkDoubleBookings(ctx, assignments)...)
	violations = append(violations, s.checkCenterShifts(ctx, assignments)...)
	sortViolations(violations)

	result := models.NewValidationResult(violations)
	return &result, nil
}

// sortViolations imposes a deterministic (date, doctor_id, center_id)
// ordering for reproducible test comparisons; the semantic ordering among
// rule kinds is otherwise unspecified.
func sortViolations(violations []models.Violation) {
	key := func(v models.Violation) (string, string, string) {
		var date, doctorID, centerID string
		if v.Date != nil {
			date = v.Date.Format("2006-01-02")
		}
		if v.DoctorID != nil {
			doctorID = *v.DoctorID
		}
		if v.CenterID != nil {
			centerID = *v.CenterID
		}
		return date, doctorID, centerID
	}
	sort.SliceStable(violations, func(i, j int) bool {
		di, doi, ci := key(violations[i])
		dj, doj, cj := key(violations[j])
		if di != dj {
			return di < dj
		}
		if doi != doj {
			return doi < doj
		}
		return ci < cj
	})
}

// ValidateCandidate checks a single not-yet-persisted assignment before it
// is written, so the API can reject an invalid write without a round trip
// through a full schedule scan.
func (s *ConstraintValidatorService) ValidateCandidate(ctx context.Context, scheduleID, doctorID, centerID, shiftID string, date time.Time) (*models.ValidationResult, error) {
	doctor, err := s.doctors.FindByID(ctx, doctorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "doctor not found")
	}
	schedule, err := s.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "schedule not found")
	}
	center, centerErr := s.centers.FindByID(ctx, centerID)
	shift, shiftErr := s.shifts.FindByID(ctx, shiftID)

	var violations []models.Violation

	if centerErr == nil && shiftErr == nil && !center.AllowsShiftCode(shift.Code) {
		violations = append(violations, models.Violation{
			Kind:     models.KindInvalidShiftForCenter,
			Severity: models.SeverityError,
			Message:  fmt.Sprintf("shift %s is not allowed at %s", shift.Code, center.Name),
			DoctorID: &doctorID,
			CenterID: &centerID,
			ShiftID:  &shiftID,
			Date:     &date,
		})
	}

	overlapping, err := s.leaves.ListApprovedOverlapping(ctx, date, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leaves")
	}
	for _, l := range overlapping {
		if l.DoctorID == doctorID {
			violations = append(violations, models.Violation{
				Kind:     models.KindLeaveConflict,
				Severity: models.SeverityError,
				Message:  fmt.Sprintf("doctor is on approved leave on %s", date.Format("2006-01-02")),
				DoctorID: &doctorID,
				Date:     &date,
				Details:  map[string]interface{}{"leave_type": l.Type},
			})
			break
		}
	}

	exists, err := s.assignments.ExistsForDoctorDate(ctx, scheduleID, doctorID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing assignment")
	}
	if exists {
		violations = append(violations, models.Violation{
			Kind:     models.KindDoubleBooking,
			Severity: models.SeverityError,
			Message:  fmt.Sprintf("doctor already has an assignment on %s", date.Format("2006-01-02")),
			DoctorID: &doctorID,
			Date:     &date,
		})
	}

	if shiftErr == nil && shift.IsOvernight {
		prevDay := date.AddDate(0, 0, -1)
		prevExists, err := s.assignments.ExistsForDoctorDate(ctx, scheduleID, doctorID, prevDay)
		if err == nil && prevExists {
			violations = append(violations, models.Violation{
				Kind:     models.KindConsecutiveNights,
				Severity: models.SeverityWarning,
				Message:  "doctor would have consecutive night shifts",
				DoctorID: &doctorID,
				Date:     &date,
			})
		}
	}

	if shiftErr == nil {
		currentHours, err := s.assignments.CountMonthlyHours(ctx, scheduleID, doctorID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count monthly hours")
		}
		newTotal := currentHours + shift.Hours
		maxHours := doctor.MonthlyHoursCap()
		if newTotal > maxHours {
			violations = append(violations, models.Violation{
				Kind:     models.KindMonthlyHoursExceeded,
				Severity: models.SeverityWarning,
				Message:  fmt.Sprintf("would exceed monthly hours limit (%d/%dh)", newTotal, maxHours),
				DoctorID: &doctorID,
				Details: map[string]interface{}{
					"current_hours": currentHours,
					"shift_hours":   shift.Hours,
					"new_total":     newTotal,
					"max_hours":     maxHours,
				},
			})
		}
	}

	_ = schedule
	result := models.NewValidationResult(violations)
	return &result, nil
}

func (s *ConstraintValidatorService) checkMonthlyHours(ctx context.Context, assignments []models.Assignment) []models.Violation {
	hoursByDoctor := map[string]int{}
	shiftHours := map[string]int{}
	for _, a := range assignments {
		hours, ok := shiftHours[a.ShiftID]
		if !ok {
			shift, err := s.shifts.FindByID(ctx, a.ShiftID)
			if err != nil {
				continue
			}
			hours = shift.Hours
			shiftHours[a.ShiftID] = hours
		}
		hoursByDoctor[a.DoctorID] += hours
	}

	var violations []models.Violation
	for doctorID, total := range hoursByDoctor {
		doctor, err := s.doctors.FindByID(ctx, doctorID)
		if err != nil {
			continue
		}
		maxHours := doctor.MonthlyHoursCap()
		did := doctorID
		switch {
		case total > maxHours:
			violations = append(violations, models.Violation{
				Kind:     models.KindMonthlyHoursExceeded,
				Severity: models.SeverityError,
				Message:  fmt.Sprintf("doctor exceeds monthly hours limit (%d/%dh)", total, maxHours),
				DoctorID: &did,
				Details: map[string]interface{}{
					"total_hours": total,
					"max_hours":   maxHours,
					"nationality": doctor.Nationality,
				},
			})
		case float64(total) > float64(maxHours)*0.9:
			violations = append(violations, models.Violation{
				Kind:     models.KindMonthlyHoursExceeded,
				Severity: models.SeverityWarning,
				Message:  fmt.Sprintf("doctor approaching monthly hours limit (%d/%dh)", total, maxHours),
				DoctorID: &did,
				Details:  map[string]interface{}{"total_hours": total, "max_hours": maxHours},
			})
		}
	}
	return violations
}

func (s *ConstraintValidatorService) checkConsecutiveNights(ctx context.Context, assignments []models.Assignment) []models.Violation {
	type nightAssignment struct {
		doctorID string
		date     time.Time
	}
	var nights []nightAssignment
	for _, a := range assignments {
		shift, err := s.shifts.FindByID(ctx, a.ShiftID)
		if err != nil || !shift.IsOvernight {
			continue
		}
		nights = append(nights, nightAssignment{doctorID: a.DoctorID, date: a.Date})
	}
	sort.Slice(nights, func(i, j int) bool {
		if nights[i].doctorID != nights[j].doctorID {
			return nights[i].doctorID < nights[j].doctorID
		}
		return nights[i].date.Before(nights[j].date)
	})

	var violations []models.Violation
	var prevDoctor string
	var prevDate time.Time
	for _, n := range nights {
		if n.doctorID == prevDoctor && n.date.Sub(prevDate) == 24*time.Hour {
			doctorID := n.doctorID
			date := n.date
			violations = append(violations, models.Violation{
				Kind:     models.KindConsecutiveNights,
				Severity: models.SeverityWarning,
				Message:  fmt.Sprintf("consecutive night shifts on %s and %s", prevDate.Format("2006-01-02"), n.date.Format("2006-01-02")),
				DoctorID: &doctorID,
				Date:     &date,
			})
		}
		prevDoctor = n.doctorID
		prevDate = n.date
	}
	return violations
}

func (s *ConstraintValidatorService) checkCoverage(ctx context.Context, schedule *models.Schedule, assignments []models.Assignment) []models.Violation {
	templates, err := s.coverage.ListMandatory(ctx)
	if err != nil || len(templates) == 0 {
		return nil
	}

	counts := map[string]int{}
	for _, a := range assignments {
		key := a.Date.Format("2006-01-02") + "|" + a.CenterID + "|" + a.ShiftID
		counts[key]++
	}

	var violations []models.Violation
	first := schedule.FirstDay()
	days := schedule.DaysInMonth()
	for day := 0; day < days; day++ {
		current := first.AddDate(0, 0, day)
		for _, t := range templates {
			key := current.Format("2006-01-02") + "|" + t.CenterID + "|" + t.ShiftID
			count := counts[key]
			if count < t.MinDoctors {
				centerID, shiftID := t.CenterID, t.ShiftID
				currentDate := current
				var centerName, shiftCode string
				if center, err := s.centers.FindByID(ctx, t.CenterID); err == nil {
					centerName = center.Name
				}
				if shift, err := s.shifts.FindByID(ctx, t.ShiftID); err == nil {
					shiftCode = shift.Code
				}
				violations = append(violations, models.Violation{
					Kind:       models.KindInsufficientCoverage,
					Severity:   models.SeverityError,
					Message:    fmt.Sprintf("insufficient coverage: %d/%d doctors", count, t.MinDoctors),
					CenterID:   &centerID,
					ShiftID:    &shiftID,
					Date:       &currentDate,
					Details:    map[string]interface{}{"assigned": count, "required": t.MinDoctors},
				})
				_ = centerName
				_ = shiftCode
			}
		}
	}
	return violations
}

func (s *ConstraintValidatorService) checkLeaveConflicts(ctx context.Context, assignments []models.Assignment) []models.Violation {
	if len(assignments) == 0 {
		return nil
	}
	minDate, maxDate := assignments[0].Date, assignments[0].Date
	for _, a := range assignments {
		if a.Date.Before(minDate) {
			minDate = a.Date
		}
		if a.Date.After(maxDate) {
			maxDate = a.Date
		}
	}
	leaves, err := s.leaves.ListApprovedOverlapping(ctx, minDate, maxDate)
	if err != nil {
		return nil
	}

	var violations []models.Violation
	for _, a := range assignments {
		for _, l := range leaves {
			if l.DoctorID != a.DoctorID || !l.Covers(a.Date) {
				continue
			}
			doctorID, date := a.DoctorID, a.Date
			violations = append(violations, models.Violation{
				Kind:     models.KindLeaveConflict,
				Severity: models.SeverityError,
				Message:  "assignment conflicts with approved leave",
				DoctorID: &doctorID,
				Date:     &date,
				Details:  map[string]interface{}{"leave_type": l.Type},
			})
			break
		}
	}
	return violations
}

func (s *ConstraintValidatorService) checkDoubleBookings(ctx context.Context, assignments []models.Assignment) []models.Violation {
	counts := map[string]int{}
	for _, a := range assignments {
		counts[a.DoctorID+"|"+a.Date.Format("2006-01-02")]++
	}
	var violations []models.Violation
	seen := map[string]bool{}
	for _, a := range assignments {
		key := a.DoctorID + "|" + a.Date.Format("2006-01-02")
		if counts[key] <= 1 || seen[key] {
			continue
		}
		seen[key] = true
		doctorID, date := a.DoctorID, a.Date
		violations = append(violations, models.Violation{
			Kind:     models.KindDoubleBooking,
			Severity: models.SeverityError,
			Message:  fmt.Sprintf("doctor has %d assignments on same day", counts[key]),
			DoctorID: &doctorID,
			Date:     &date,
		})
	}
	return violations
}

func (s *ConstraintValidatorService) checkCenterShifts(ctx context.Context, assignments []models.Assignment) []models.Violation {
	var violations []models.Violation
	for _, a := range assignments {
		center, err := s.centers.FindByID(ctx, a.CenterID)
		if err != nil {
			continue
		}
		shift, err := s.shifts.FindByID(ctx, a.ShiftID)
		if err != nil {
			continue
		}
		if center.AllowsShiftCode(shift.Code) {
			continue
		}
		doctorID, centerID, shiftID, date := a.DoctorID, a.CenterID, a.ShiftID, a.Date
		violations = append(violations, models.Violation{
			Kind:     models.KindInvalidShiftForCenter,
			Severity: models.SeverityError,
			Message:  fmt.Sprintf("shift %s is not allowed at %s", shift.Code, center.Name),
			DoctorID: &doctorID,
			CenterID: &centerID,
			ShiftID:  &shiftID,
			Date:     &date,
		})
	}
	return violations
}
