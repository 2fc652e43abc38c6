package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

// ScheduleTemplateRepository persists reusable coverage patterns.
type ScheduleTemplateRepository struct {
	db *sqlx.DB
}

// NewScheduleTemplateRepository constructs a ScheduleTemplateRepository.
func NewScheduleTemplateRepository(db *sqlx.DB) *ScheduleTemplateRepository {
	return &ScheduleTemplateRepository{db: db}
}

const scheduleTemplateColumns = `id, name, description, pattern_data, created_by_id, source_schedule_id, times_used, last_used_at, created_at, updated_at`

// List returns templates ordered by popularity then recency, with total count.
func (r *ScheduleTemplateRepository) List(ctx context.Context, filter models.ScheduleTemplateFilter) ([]models.ScheduleTemplate, int, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM schedule_templates ORDER BY times_used DESC, created_at DESC LIMIT %d OFFSET %d`, scheduleTemplateColumns, size, offset)
	var templates []models.ScheduleTemplate
	if err := r.db.SelectContext(ctx, &templates, query); err != nil {
		return nil, 0, fmt.Errorf("list schedule templates: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM schedule_templates`); err != nil {
		return nil, 0, fmt.Errorf("count schedule templates: %w", err)
	}
	return templates, total, nil
}

// FindByID returns a template by its identifier.
func (r *ScheduleTemplateRepository) FindByID(ctx context.Context, id string) (*models.ScheduleTemplate, error) {
	query := `SELECT ` + scheduleTemplateColumns + ` FROM schedule_templates WHERE id = $1`
	var template models.ScheduleTemplate
	if err := r.db.GetContext(ctx, &template, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find schedule template: %w", err)
	}
	return &template, nil
}

// Create inserts a new template.
func (r *ScheduleTemplateRepository) Create(ctx context.Context, template *models.ScheduleTemplate) error {
	if template.ID == "" {
		template.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if template.CreatedAt.IsZero() {
		template.CreatedAt = now
	}
	template.UpdatedAt = now

	const query = `INSERT INTO schedule_templates (id, name, description, pattern_data, created_by_id, source_schedule_id, times_used, last_used_at, created_at, updated_at)
		VALUES (:id, :name, :description, :pattern_data, :created_by_id, :source_schedule_id, :times_used, :last_used_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, template); err != nil {
		return fmt.Errorf("create schedule template: %w", err)
	}
	return nil
}

// Update persists a template's mutable name/description.
func (r *ScheduleTemplateRepository) Update(ctx context.Context, template *models.ScheduleTemplate) error {
	template.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedule_templates SET name = :name, description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, template); err != nil {
		return fmt.Errorf("update schedule template: %w", err)
	}
	return nil
}

// Delete removes a template.
func (r *ScheduleTemplateRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM schedule_templates WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete schedule template: %w", err)
	}
	return nil
}
