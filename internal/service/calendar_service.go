package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/models"
	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
)

type calendarRepository interface {
	List(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, int, error)
	GetByID(ctx context.Context, id string) (*models.CalendarEvent, error)
	Create(ctx context.Context, event *models.CalendarEvent) error
	CreateBatch(ctx context.Context, events []models.CalendarEvent) error
	Update(ctx context.Context, event *models.CalendarEvent) error
	Delete(ctx context.Context, id string) error
}

// CalendarService manages calendar events: one-off holiday markers, center
// closures, and the concrete occurrences expanded from a recurring
// announcement window.
type CalendarService struct {
	repo         calendarRepository
	validator    *validator.Validate
	logger       *zap.Logger
	maxExpansion int
}

// NewCalendarService constructs the service. maxExpansion bounds how many
// occurrences a single recurrence rule may expand into, guarding against a
// malformed or unbounded RRULE (e.g. missing COUNT/UNTIL) spinning forever.
func NewCalendarService(repo calendarRepository, validate *validator.Validate, logger *zap.Logger, maxExpansion int) *CalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxExpansion <= 0 {
		maxExpansion = 366
	}
	svc := &CalendarService{repo: repo, validator: validate, logger: logger, maxExpansion: maxExpansion}
	svc.validator.RegisterValidation("audience", func(fl validator.FieldLevel) bool {
		switch models.AnnouncementAudience(strings.ToLower(fl.Field().String())) {
		case models.AnnouncementAudienceAll, models.AnnouncementAudienceDoctor, models.AnnouncementAudienceTeamLead, models.AnnouncementAudienceCenter:
			return true
		default:
			return false
		}
	})
	return svc
}

// CalendarListRequest describes filters for listing events.
type CalendarListRequest struct {
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Audience  []string   `json:"audience"`
	CenterIDs []string   `json:"center_ids"`
	Page      int        `json:"page"`
	PageSize  int        `json:"page_size"`
}

// CreateCalendarEventRequest describes create payload.
type CreateCalendarEventRequest struct {
	Title          string     `json:"title" validate:"required"`
	Description    string     `json:"description" validate:"required"`
	EventType      string     `json:"event_type" validate:"required"`
	StartDate      time.Time  `json:"start_date" validate:"required"`
	EndDate        time.Time  `json:"end_date" validate:"required"`
	StartTime      *time.Time `json:"start_time"`
	EndTime        *time.Time `json:"end_time"`
	Audience       string     `json:"audience" validate:"required,audience"`
	TargetCenterID *string    `json:"target_center_id"`
	Location       *string    `json:"location"`
	CreatedBy      string     `json:"created_by" validate:"required"`
}

// UpdateCalendarEventRequest describes update payload.
type UpdateCalendarEventRequest struct {
	Title          string     `json:"title" validate:"required"`
	Description    string     `json:"description" validate:"required"`
	EventType      string     `json:"event_type" validate:"required"`
	StartDate      time.Time  `json:"start_date" validate:"required"`
	EndDate        time.Time  `json:"end_date" validate:"required"`
	StartTime      *time.Time `json:"start_time"`
	EndTime        *time.Time `json:"end_time"`
	Audience       string     `json:"audience" validate:"required,audience"`
	TargetCenterID *string    `json:"target_center_id"`
	Location       *string    `json:"location"`
}

// ExpandRecurrenceRequest asks the service to turn an RFC 5545 recurrence
// rule into concrete calendar occurrences within a bounded horizon.
type ExpandRecurrenceRequest struct {
	Rule           string     `json:"rule" validate:"required"`
	Title          string     `json:"title" validate:"required"`
	Description    string     `json:"description"`
	EventType      string     `json:"event_type" validate:"required"`
	DurationHours  float64    `json:"duration_hours"`
	Audience       string     `json:"audience" validate:"required,audience"`
	TargetCenterID *string    `json:"target_center_id"`
	Location       *string    `json:"location"`
	CreatedBy      string     `json:"created_by" validate:"required"`
	HorizonStart   time.Time  `json:"horizon_start" validate:"required"`
	HorizonEnd     time.Time  `json:"horizon_end" validate:"required"`
	Persist        bool       `json:"persist"`
}

// List returns calendar events.
func (s *CalendarService) List(ctx context.Context, req CalendarListRequest) ([]models.CalendarEvent, *models.Pagination, error) {
	filter := models.CalendarFilter{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		CenterIDs: req.CenterIDs,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	if len(req.Audience) > 0 {
		filter.Audience = make([]models.AnnouncementAudience, len(req.Audience))
		for i, a := range req.Audience {
			filter.Audience[i] = models.AnnouncementAudience(strings.ToLower(a))
		}
	}
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list calendar events")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return events, pagination, nil
}

// Get returns a calendar event by id.
func (s *CalendarService) Get(ctx context.Context, id string) (*models.CalendarEvent, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get event")
	}
	return event, nil
}

// Create registers a new event.
func (s *CalendarService) Create(ctx context.Context, req CreateCalendarEventRequest) (*models.CalendarEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be on or after start_date")
	}
	if err := s.ensureAudienceTarget(req.Audience, req.TargetCenterID); err != nil {
		return nil, err
	}
	event := &models.CalendarEvent{
		Title:          req.Title,
		Description:    req.Description,
		EventType:      req.EventType,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Audience:       models.AnnouncementAudience(strings.ToLower(req.Audience)),
		TargetCenterID: req.TargetCenterID,
		Location:       req.Location,
		CreatedBy:      req.CreatedBy,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	return event, nil
}

// Update modifies an event.
func (s *CalendarService) Update(ctx context.Context, id string, req UpdateCalendarEventRequest) (*models.CalendarEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be on or after start_date")
	}
	if err := s.ensureAudienceTarget(req.Audience, req.TargetCenterID); err != nil {
		return nil, err
	}
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	event.Title = req.Title
	event.Description = req.Description
	event.EventType = req.EventType
	event.StartDate = req.StartDate
	event.EndDate = req.EndDate
	event.StartTime = req.StartTime
	event.EndTime = req.EndTime
	event.Audience = models.AnnouncementAudience(strings.ToLower(req.Audience))
	event.TargetCenterID = req.TargetCenterID
	event.Location = req.Location
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	return event, nil
}

// Delete removes a calendar event.
func (s *CalendarService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	return nil
}

// ExpandRecurrence parses an RFC 5545 recurrence rule and materializes its
// occurrences within [HorizonStart, HorizonEnd] as calendar events. When
// Persist is set the occurrences are written through the repository in one
// batch; otherwise they are returned for the caller to preview.
func (s *CalendarService) ExpandRecurrence(ctx context.Context, req ExpandRecurrenceRequest) ([]models.CalendarEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if req.HorizonEnd.Before(req.HorizonStart) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "horizon_end must be on or after horizon_start")
	}
	if err := s.ensureAudienceTarget(req.Audience, req.TargetCenterID); err != nil {
		return nil, err
	}

	occurrences, err := ExpandRRule(req.Rule, req.HorizonStart, req.HorizonEnd, s.maxExpansion)
	if err != nil {
		s.logger.Warn("failed to parse recurrence rule", zap.String("rule", req.Rule), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recurrence rule")
	}

	duration := time.Duration(req.DurationHours * float64(time.Hour))
	audience := models.AnnouncementAudience(strings.ToLower(req.Audience))
	events := make([]models.CalendarEvent, 0, len(occurrences))
	for _, at := range occurrences {
		events = append(events, models.CalendarEvent{
			Title:          req.Title,
			Description:    req.Description,
			EventType:      req.EventType,
			StartDate:      at,
			EndDate:        at.Add(duration),
			Audience:       audience,
			TargetCenterID: req.TargetCenterID,
			Location:       req.Location,
			CreatedBy:      req.CreatedBy,
		})
	}

	if req.Persist && len(events) > 0 {
		if err := s.repo.CreateBatch(ctx, events); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist recurrence occurrences")
		}
	}
	return events, nil
}

func (s *CalendarService) ensureAudienceTarget(audience string, target *string) error {
	if strings.ToLower(audience) == string(models.AnnouncementAudienceCenter) && (target == nil || *target == "") {
		return appErrors.Clone(appErrors.ErrValidation, "target_center_id required for center audience")
	}
	return nil
}

// ExpandRRule parses raw (a RFC 5545 RRULE string, e.g. "FREQ=WEEKLY;BYDAY=MO")
// and returns its occurrences between start and end, inclusive, capped at
// maxOccurrences.
func ExpandRRule(raw string, start, end time.Time, maxOccurrences int) ([]time.Time, error) {
	rule, err := rrule.StrToRRule(raw)
	if err != nil {
		return nil, err
	}
	rule.DTStart(start)
	occurrences := rule.Between(start, end, true)
	if maxOccurrences > 0 && len(occurrences) > maxOccurrences {
		occurrences = occurrences[:maxOccurrences]
	}
	return occurrences, nil
}
