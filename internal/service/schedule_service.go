package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/models"
	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
)

type scheduleTxRepo interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Schedule, error)
	UpdateStatus(ctx context.Context, tx *sqlx.Tx, schedule *models.Schedule) error
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error)
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
	Create(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id string) error
}

// ScheduleService owns the monthly schedule's lifecycle: creation, listing,
// and the draft/published/archived state machine.
type ScheduleService struct {
	repo   scheduleTxRepo
	logger *zap.Logger
}

// NewScheduleService wires the schedule repository.
func NewScheduleService(repo scheduleTxRepo, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, logger: logger}
}

// List returns schedules matching filters, with pagination metadata.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, *models.Pagination, error) {
	schedules, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return schedules, pagination, nil
}

// Get returns a single schedule by ID.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.Schedule, error) {
	sched, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "schedule not found")
	}
	return sched, nil
}

// Create registers a new schedule for a calendar month. The repository forces
// status to draft; a duplicate (year, month) comes back from the repository
// as ErrDuplicateKey and is returned unchanged.
func (s *ScheduleService) Create(ctx context.Context, year, month int) (*models.Schedule, error) {
	if month < 1 || month > 12 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
	}
	sched := &models.Schedule{Year: year, Month: month}
	if err := s.repo.Create(ctx, sched); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}
	return sched, nil
}

// Delete removes a schedule. Only a draft schedule may be deleted.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	sched, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "schedule not found")
	}
	if sched.Status != models.ScheduleStatusDraft {
		return appErrors.Clone(appErrors.ErrConflict, "only a draft schedule may be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	return nil
}

// TransitionStatus enforces the schedule state machine: draft -> published ->
// draft (unpublish), {draft, published} -> archived -> draft (unarchive).
// Every transition takes a row lock on the schedule so two concurrent
// transitions on the same schedule serialize instead of racing.
func (s *ScheduleService) TransitionStatus(ctx context.Context, id string, action models.ScheduleTransitionAction, actorID string) (*models.Schedule, error) {
	tx, err := s.repo.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	sched, fErr := s.repo.FindByIDForUpdate(ctx, tx, id)
	if fErr != nil {
		err = appErrors.Wrap(fErr, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "schedule not found")
		return nil, err
	}

	now := time.Now().UTC()
	switch action {
	case models.ScheduleActionPublish:
		if sched.Status != models.ScheduleStatusDraft {
			err = appErrors.Clone(appErrors.ErrStateTransition, "schedule must be draft to publish")
			return nil, err
		}
		sched.Status = models.ScheduleStatusPublished
		sched.PublishedAt = &now
		sched.PublishedBy = &actorID
	case models.ScheduleActionUnpublish:
		if sched.Status != models.ScheduleStatusPublished {
			err = appErrors.Clone(appErrors.ErrStateTransition, "schedule must be published to unpublish")
			return nil, err
		}
		sched.Status = models.ScheduleStatusDraft
		sched.PublishedAt = nil
		sched.PublishedBy = nil
	case models.ScheduleActionArchive:
		if sched.Status != models.ScheduleStatusDraft && sched.Status != models.ScheduleStatusPublished {
			err = appErrors.Clone(appErrors.ErrStateTransition, "schedule must be draft or published to archive")
			return nil, err
		}
		sched.Status = models.ScheduleStatusArchived
	case models.ScheduleActionUnarchive:
		if sched.Status != models.ScheduleStatusArchived {
			err = appErrors.Clone(appErrors.ErrStateTransition, "schedule must be archived to unarchive")
			return nil, err
		}
		sched.Status = models.ScheduleStatusDraft
	default:
		err = appErrors.Clone(appErrors.ErrStateTransition, "unknown transition action")
		return nil, err
	}

	if err = s.repo.UpdateStatus(ctx, tx, sched); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule status")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit schedule transition")
		return nil, err
	}
	return sched, nil
}
