package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/models"
	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
)

// manualAssignmentRepo is the narrow slice of AssignmentRepository a manual
// write needs; Create accepts a nil *sqlx.Tx for a standalone insert.
type manualAssignmentRepo interface {
	ListBySchedule(ctx context.Context, scheduleID string) ([]models.Assignment, error)
	Create(ctx context.Context, tx *sqlx.Tx, assignment *models.Assignment) error
	Delete(ctx context.Context, id string) error
}

// AssignmentService backs manual (admin hand-crafted) schedule edits: every
// write goes through the same candidate checks the auto-builder's greedy
// fill relies on, so a manual edit can never silently create an error-level
// violation the schedule didn't already have.
type AssignmentService struct {
	repo      manualAssignmentRepo
	schedules validatorScheduleReader
	validator *ConstraintValidatorService
	logger    *zap.Logger
}

// NewAssignmentService wires the manual-edit assignment service.
func NewAssignmentService(repo manualAssignmentRepo, schedules validatorScheduleReader, validator *ConstraintValidatorService, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, schedules: schedules, validator: validator, logger: logger}
}

// List returns every assignment in a schedule.
func (s *AssignmentService) List(ctx context.Context, scheduleID string) ([]models.Assignment, error) {
	assignments, err := s.repo.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// Create writes one manually-entered assignment after confirming the
// schedule is in draft (§3: free edits and deletes require draft) and that
// the candidate carries no error-severity violation.
func (s *AssignmentService) Create(ctx context.Context, scheduleID, doctorID, centerID, shiftID string, date time.Time) (*models.Assignment, error) {
	schedule, err := s.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "schedule not found")
	}
	if schedule.Status != models.ScheduleStatusDraft {
		return nil, appErrors.Clone(appErrors.ErrStateTransition, "assignments may only be edited on a draft schedule")
	}

	if s.validator != nil {
		result, vErr := s.validator.ValidateCandidate(ctx, scheduleID, doctorID, centerID, shiftID, date)
		if vErr != nil {
			return nil, vErr
		}
		if !result.Valid {
			return nil, appErrors.Clone(appErrors.ErrValidation, "candidate assignment violates a scheduling rule")
		}
	}

	assignment := &models.Assignment{ScheduleID: scheduleID, DoctorID: doctorID, CenterID: centerID, ShiftID: shiftID, Date: date}
	if err := s.repo.Create(ctx, nil, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return assignment, nil
}

// Delete removes a manually- or auto-generated assignment. Callers are
// expected to gate this on the schedule's draft status the same way Create does.
func (s *AssignmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	return nil
}
