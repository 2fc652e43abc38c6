package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/models"
	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
)

type scheduleTemplateRepository interface {
	List(ctx context.Context, filter models.ScheduleTemplateFilter) ([]models.ScheduleTemplate, int, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleTemplate, error)
	Create(ctx context.Context, template *models.ScheduleTemplate) error
	Update(ctx context.Context, template *models.ScheduleTemplate) error
	Delete(ctx context.Context, id string) error
}

type templateScheduleReader interface {
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
}

type templateAssignmentReader interface {
	ListDetailBySchedule(ctx context.Context, scheduleID string) ([]models.AssignmentDetail, error)
}

// CreateScheduleTemplateRequest authors a template from an explicit pattern.
type CreateScheduleTemplateRequest struct {
	Name        string                 `json:"name" validate:"required,max=100"`
	Description *string                `json:"description"`
	Pattern     models.TemplatePattern `json:"pattern_data" validate:"required"`
	CreatedByID string                 `json:"-" validate:"required"`
}

// CreateTemplateFromScheduleRequest extracts a template from a schedule's
// existing assignments, averaging headcounts over the weeks in the month.
type CreateTemplateFromScheduleRequest struct {
	Name             string  `json:"name" validate:"required,max=100"`
	Description      *string `json:"description"`
	SourceScheduleID string  `json:"source_schedule_id" validate:"required"`
	CreatedByID      string  `json:"-" validate:"required"`
}

// UpdateScheduleTemplateRequest renames or redescribes an existing template.
type UpdateScheduleTemplateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// ScheduleTemplateService manages reusable coverage patterns that can seed
// a new month's draft schedule without rebuilding it from scratch.
type ScheduleTemplateService struct {
	repo        scheduleTemplateRepository
	schedules   templateScheduleReader
	assignments templateAssignmentReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewScheduleTemplateService wires the template service's dependencies.
func NewScheduleTemplateService(
	repo scheduleTemplateRepository,
	schedules templateScheduleReader,
	assignments templateAssignmentReader,
	validate *validator.Validate,
	logger *zap.Logger,
) *ScheduleTemplateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleTemplateService{repo: repo, schedules: schedules, assignments: assignments, validator: validate, logger: logger}
}

// List returns templates ranked by usage, most popular first.
func (s *ScheduleTemplateService) List(ctx context.Context, filter models.ScheduleTemplateFilter) ([]models.ScheduleTemplate, *models.Pagination, error) {
	templates, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule templates")
	}
	return templates, paginationOf(filter.Page, filter.PageSize, total), nil
}

// Get returns a template by id.
func (s *ScheduleTemplateService) Get(ctx context.Context, id string) (*models.ScheduleTemplate, error) {
	template, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "schedule template not found")
	}
	return template, nil
}

// Create persists a template built from caller-supplied pattern data.
func (s *ScheduleTemplateService) Create(ctx context.Context, req CreateScheduleTemplateRequest) (*models.ScheduleTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule template payload")
	}

	template := &models.ScheduleTemplate{
		Name:        req.Name,
		Description: req.Description,
		CreatedByID: req.CreatedByID,
	}
	if err := template.SetPattern(req.Pattern); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid pattern data")
	}

	if err := s.repo.Create(ctx, template); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule template")
	}
	return template, nil
}

// CreateFromSchedule extracts a reusable pattern from an existing schedule's
// assignments: each (day-of-week, center, shift) combination's headcount is
// averaged across the weeks spanned by the schedule's month, rounded down to
// a whole doctor with a floor of one.
func (s *ScheduleTemplateService) CreateFromSchedule(ctx context.Context, req CreateTemplateFromScheduleRequest) (*models.ScheduleTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule template payload")
	}

	schedule, err := s.schedules.FindByID(ctx, req.SourceScheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "source schedule not found")
	}

	assignments, err := s.assignments.ListDetailBySchedule(ctx, req.SourceScheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load source schedule assignments")
	}
	if len(assignments) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "source schedule has no assignments")
	}

	type key struct {
		dayOfWeek  int
		centerCode string
		shiftCode  string
	}
	counts := map[key]int{}
	for _, a := range assignments {
		if a.CenterCode == "" || a.ShiftCode == "" {
			continue
		}
		counts[key{dayOfWeek: isoMondayWeekday(a.Date), centerCode: a.CenterCode, shiftCode: a.ShiftCode}]++
	}

	numWeeks := weeksInMonth(schedule.Year, schedule.Month)
	pattern := models.TemplatePattern{Patterns: make([]models.TemplatePatternEntry, 0, len(counts))}
	for k, count := range counts {
		avg := count / numWeeks
		if avg < 1 {
			avg = 1
		}
		pattern.Patterns = append(pattern.Patterns, models.TemplatePatternEntry{
			DayOfWeek:   k.dayOfWeek,
			CenterCode:  k.centerCode,
			ShiftCode:   k.shiftCode,
			DoctorCount: avg,
		})
	}

	sourceID := req.SourceScheduleID
	template := &models.ScheduleTemplate{
		Name:             req.Name,
		Description:      req.Description,
		CreatedByID:      req.CreatedByID,
		SourceScheduleID: &sourceID,
	}
	if err := template.SetPattern(pattern); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode pattern data")
	}

	if err := s.repo.Create(ctx, template); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule template")
	}
	return template, nil
}

// Update renames or redescribes an existing template.
func (s *ScheduleTemplateService) Update(ctx context.Context, id string, req UpdateScheduleTemplateRequest) (*models.ScheduleTemplate, error) {
	template, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "schedule template not found")
	}

	if req.Name != nil {
		template.Name = *req.Name
	}
	if req.Description != nil {
		template.Description = req.Description
	}

	if err := s.repo.Update(ctx, template); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule template")
	}
	return template, nil
}

// Delete removes a template.
func (s *ScheduleTemplateService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule template")
	}
	return nil
}

// isoMondayWeekday returns the day of week as Monday=0..Sunday=6, matching
// the pattern_data convention.
func isoMondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// weeksInMonth mirrors Python's calendar.monthcalendar row count: the number
// of Monday-start weeks needed to cover every day of the month.
func weeksInMonth(year, month int) int {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	firstWeekday := isoMondayWeekday(first)
	return (firstWeekday + daysInMonth + 6) / 7
}
