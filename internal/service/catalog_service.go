package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/models"
	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
)

type centerRepository interface {
	List(ctx context.Context, filter models.CenterFilter) ([]models.Center, int, error)
	FindByID(ctx context.Context, id string) (*models.Center, error)
	Create(ctx context.Context, center *models.Center) error
	Update(ctx context.Context, center *models.Center) error
	Delete(ctx context.Context, id string) error
}

// CenterService manages the clinical-center catalog.
type CenterService struct {
	repo      centerRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCenterService constructs a CenterService.
func NewCenterService(repo centerRepository, validate *validator.Validate, logger *zap.Logger) *CenterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CenterService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated centers.
func (s *CenterService) List(ctx context.Context, filter models.CenterFilter) ([]models.Center, *models.Pagination, error) {
	centers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list centers")
	}
	return centers, paginationOf(filter.Page, filter.PageSize, total), nil
}

// Get returns a center by id.
func (s *CenterService) Get(ctx context.Context, id string) (*models.Center, error) {
	center, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "center not found")
	}
	return center, nil
}

// Create registers a new center.
func (s *CenterService) Create(ctx context.Context, center *models.Center) (*models.Center, error) {
	if err := s.validator.Struct(center); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid center")
	}
	if err := s.repo.Create(ctx, center); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create center")
	}
	return center, nil
}

// Update modifies an existing center.
func (s *CenterService) Update(ctx context.Context, center *models.Center) (*models.Center, error) {
	if err := s.repo.Update(ctx, center); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update center")
	}
	return center, nil
}

// Delete removes a center.
func (s *CenterService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete center")
	}
	return nil
}

type shiftRepository interface {
	List(ctx context.Context, filter models.ShiftFilter) ([]models.Shift, int, error)
	FindByID(ctx context.Context, id string) (*models.Shift, error)
	Create(ctx context.Context, shift *models.Shift) error
	Update(ctx context.Context, shift *models.Shift) error
	Delete(ctx context.Context, id string) error
}

// ShiftService manages the reusable shift-definition catalog.
type ShiftService struct {
	repo      shiftRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewShiftService constructs a ShiftService.
func NewShiftService(repo shiftRepository, validate *validator.Validate, logger *zap.Logger) *ShiftService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShiftService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated shifts.
func (s *ShiftService) List(ctx context.Context, filter models.ShiftFilter) ([]models.Shift, *models.Pagination, error) {
	shifts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list shifts")
	}
	return shifts, paginationOf(filter.Page, filter.PageSize, total), nil
}

// Get returns a shift by id.
func (s *ShiftService) Get(ctx context.Context, id string) (*models.Shift, error) {
	shift, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "shift not found")
	}
	return shift, nil
}

// Create registers a new shift. IsOvernight must be consistent with end <= start
// per spec.md §3's invariant; the caller is responsible for wall-clock parsing,
// this service enforces the boolean/time relationship is internally declared.
func (s *ShiftService) Create(ctx context.Context, shift *models.Shift) (*models.Shift, error) {
	if err := s.validator.Struct(shift); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift")
	}
	if (shift.End <= shift.Start) != shift.IsOvernight {
		return nil, appErrors.Clone(appErrors.ErrValidation, "is_overnight must match whether end is not after start")
	}
	if err := s.repo.Create(ctx, shift); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create shift")
	}
	return shift, nil
}

// Update modifies an existing shift.
func (s *ShiftService) Update(ctx context.Context, shift *models.Shift) (*models.Shift, error) {
	if err := s.repo.Update(ctx, shift); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update shift")
	}
	return shift, nil
}

// Delete removes a shift.
func (s *ShiftService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete shift")
	}
	return nil
}

type coverageTemplateRepository interface {
	List(ctx context.Context, filter models.CoverageTemplateFilter) ([]models.CoverageTemplate, int, error)
	FindByID(ctx context.Context, id string) (*models.CoverageTemplate, error)
	Create(ctx context.Context, template *models.CoverageTemplate) error
	Update(ctx context.Context, template *models.CoverageTemplate) error
	Delete(ctx context.Context, id string) error
}

// CoverageTemplateService manages per-(center,shift) staffing minimums.
type CoverageTemplateService struct {
	repo      coverageTemplateRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCoverageTemplateService constructs a CoverageTemplateService.
func NewCoverageTemplateService(repo coverageTemplateRepository, validate *validator.Validate, logger *zap.Logger) *CoverageTemplateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoverageTemplateService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated coverage templates.
func (s *CoverageTemplateService) List(ctx context.Context, filter models.CoverageTemplateFilter) ([]models.CoverageTemplate, *models.Pagination, error) {
	templates, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list coverage templates")
	}
	return templates, paginationOf(filter.Page, filter.PageSize, total), nil
}

// Create registers a new coverage template.
func (s *CoverageTemplateService) Create(ctx context.Context, template *models.CoverageTemplate) (*models.CoverageTemplate, error) {
	if err := s.validator.Struct(template); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid coverage template")
	}
	if err := s.repo.Create(ctx, template); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create coverage template")
	}
	return template, nil
}

// Update modifies an existing coverage template.
func (s *CoverageTemplateService) Update(ctx context.Context, template *models.CoverageTemplate) (*models.CoverageTemplate, error) {
	if err := s.repo.Update(ctx, template); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update coverage template")
	}
	return template, nil
}

// Delete removes a coverage template.
func (s *CoverageTemplateService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete coverage template")
	}
	return nil
}

type leaveRepositoryIface interface {
	List(ctx context.Context, filter models.LeaveFilter) ([]models.Leave, int, error)
	FindByID(ctx context.Context, id string) (*models.Leave, error)
	Create(ctx context.Context, leave *models.Leave) error
	UpdateStatus(ctx context.Context, id string, status models.LeaveStatus) error
	Delete(ctx context.Context, id string) error
}

// LeaveService manages doctor leave requests; only approved leaves gate
// assignment eligibility for the validator and auto-builder.
type LeaveService struct {
	repo      leaveRepositoryIface
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLeaveService constructs a LeaveService.
func NewLeaveService(repo leaveRepositoryIface, validate *validator.Validate, logger *zap.Logger) *LeaveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaveService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated leave requests.
func (s *LeaveService) List(ctx context.Context, filter models.LeaveFilter) ([]models.Leave, *models.Pagination, error) {
	leaves, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leaves")
	}
	return leaves, paginationOf(filter.Page, filter.PageSize, total), nil
}

// Create registers a pending leave request.
func (s *LeaveService) Create(ctx context.Context, leave *models.Leave) (*models.Leave, error) {
	if leave.EndDate.Before(leave.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}
	leave.Status = models.LeaveStatusPending
	if err := s.repo.Create(ctx, leave); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create leave")
	}
	return leave, nil
}

// UpdateStatus transitions a leave request's status (approve/deny/cancel).
func (s *LeaveService) UpdateStatus(ctx context.Context, id string, status models.LeaveStatus) (*models.Leave, error) {
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update leave status")
	}
	return s.repo.FindByID(ctx, id)
}

// Delete removes a leave request.
func (s *LeaveService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete leave")
	}
	return nil
}
