package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

// CoverageTemplateRepository manages persistence for coverage templates.
type CoverageTemplateRepository struct {
	db *sqlx.DB
}

// NewCoverageTemplateRepository constructs a CoverageTemplateRepository.
func NewCoverageTemplateRepository(db *sqlx.DB) *CoverageTemplateRepository {
	return &CoverageTemplateRepository{db: db}
}

const coverageTemplateColumns = `id, center_id, shift_id, min_doctors, mandatory`

// List returns coverage templates matching filters along with total count.
func (r *CoverageTemplateRepository) List(ctx context.Context, filter models.CoverageTemplateFilter) ([]models.CoverageTemplate, int, error) {
	base := "FROM coverage_templates WHERE 1=1"
	var args []interface{}
	if filter.CenterID != "" {
		args = append(args, filter.CenterID)
		base += fmt.Sprintf(" AND center_id = $%d", len(args))
	}
	if filter.ShiftID != "" {
		args = append(args, filter.ShiftID)
		base += fmt.Sprintf(" AND shift_id = $%d", len(args))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY center_id, shift_id LIMIT %d OFFSET %d", coverageTemplateColumns, base, size, offset)
	var templates []models.CoverageTemplate
	if err := r.db.SelectContext(ctx, &templates, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list coverage templates: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count coverage templates: %w", err)
	}
	return templates, total, nil
}

// ListMandatory returns every mandatory coverage template across all
// centers, the set the auto-builder and validator iterate over.
func (r *CoverageTemplateRepository) ListMandatory(ctx context.Context) ([]models.CoverageTemplate, error) {
	const query = `SELECT ` + coverageTemplateColumns + ` FROM coverage_templates WHERE mandatory = TRUE ORDER BY center_id, shift_id`
	var templates []models.CoverageTemplate
	if err := r.db.SelectContext(ctx, &templates, query); err != nil {
		return nil, fmt.Errorf("list mandatory coverage templates: %w", err)
	}
	return templates, nil
}

// FindByID fetches a coverage template by ID.
func (r *CoverageTemplateRepository) FindByID(ctx context.Context, id string) (*models.CoverageTemplate, error) {
	const query = `SELECT ` + coverageTemplateColumns + ` FROM coverage_templates WHERE id = $1`
	var template models.CoverageTemplate
	if err := r.db.GetContext(ctx, &template, query, id); err != nil {
		return nil, err
	}
	return &template, nil
}

// Create inserts a new coverage template. Unique (center_id, shift_id)
// violations surface as ErrDuplicateKey.
func (r *CoverageTemplateRepository) Create(ctx context.Context, template *models.CoverageTemplate) error {
	if template.ID == "" {
		template.ID = uuid.NewString()
	}
	const query = `INSERT INTO coverage_templates (id, center_id, shift_id, min_doctors, mandatory)
		VALUES (:id, :center_id, :shift_id, :min_doctors, :mandatory)`
	if _, err := r.db.NamedExecContext(ctx, query, template); err != nil {
		return translateUniqueViolation(err, "a coverage template already exists for this center and shift")
	}
	return nil
}

// Update modifies an existing coverage template.
func (r *CoverageTemplateRepository) Update(ctx context.Context, template *models.CoverageTemplate) error {
	const query = `UPDATE coverage_templates SET center_id = :center_id, shift_id = :shift_id,
		min_doctors = :min_doctors, mandatory = :mandatory WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, template); err != nil {
		return fmt.Errorf("update coverage template: %w", err)
	}
	return nil
}

// Delete removes a coverage template.
func (r *CoverageTemplateRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM coverage_templates WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete coverage template: %w", err)
	}
	return nil
}
