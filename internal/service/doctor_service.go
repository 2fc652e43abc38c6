package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/models"
	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
)

type doctorRepository interface {
	List(ctx context.Context, filter models.DoctorFilter) ([]models.DoctorWithUser, int, error)
	FindByID(ctx context.Context, id string) (*models.DoctorWithUser, error)
	FindByUserID(ctx context.Context, userID string) (*models.DoctorWithUser, error)
	Create(ctx context.Context, doctor *models.Doctor) error
	Update(ctx context.Context, doctor *models.Doctor) error
	Delete(ctx context.Context, id string) error
}

// DoctorService manages the physician catalog backing the auto-builder and
// validator's candidate pool.
type DoctorService struct {
	repo      doctorRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDoctorService constructs a DoctorService.
func NewDoctorService(repo doctorRepository, validate *validator.Validate, logger *zap.Logger) *DoctorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DoctorService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated doctors joined with their user accounts.
func (s *DoctorService) List(ctx context.Context, filter models.DoctorFilter) ([]models.DoctorWithUser, *models.Pagination, error) {
	doctors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list doctors")
	}
	return doctors, paginationOf(filter.Page, filter.PageSize, total), nil
}

// Get returns a doctor by id.
func (s *DoctorService) Get(ctx context.Context, id string) (*models.DoctorWithUser, error) {
	doctor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "doctor not found")
	}
	return doctor, nil
}

// Create registers a doctor catalog entry for an existing user account.
func (s *DoctorService) Create(ctx context.Context, doctor *models.Doctor) (*models.Doctor, error) {
	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create doctor")
	}
	return doctor, nil
}

// Update modifies an existing doctor's catalog attributes.
func (s *DoctorService) Update(ctx context.Context, doctor *models.Doctor) (*models.Doctor, error) {
	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update doctor")
	}
	return doctor, nil
}

// Delete removes a doctor catalog entry.
func (s *DoctorService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete doctor")
	}
	return nil
}
