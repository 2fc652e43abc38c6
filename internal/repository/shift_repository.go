package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

// ShiftRepository manages persistence for shift definitions.
type ShiftRepository struct {
	db *sqlx.DB
}

// NewShiftRepository constructs a ShiftRepository.
func NewShiftRepository(db *sqlx.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

const shiftColumns = `id, code, hours, start_time, end_time, is_overnight, is_optional`

// List returns shifts matching filters along with total count.
func (r *ShiftRepository) List(ctx context.Context, filter models.ShiftFilter) ([]models.Shift, int, error) {
	base := "FROM shifts WHERE 1=1"
	var args []interface{}
	if filter.Search != "" {
		base += fmt.Sprintf(" AND LOWER(code) LIKE $%d", len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY code ASC LIMIT %d OFFSET %d", shiftColumns, base, size, offset)
	var shifts []models.Shift
	if err := r.db.SelectContext(ctx, &shifts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list shifts: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count shifts: %w", err)
	}
	return shifts, total, nil
}

// ListAll returns every shift, used by the auto-builder and validator's catalog snapshot.
func (r *ShiftRepository) ListAll(ctx context.Context) ([]models.Shift, error) {
	const query = `SELECT ` + shiftColumns + ` FROM shifts ORDER BY code ASC`
	var shifts []models.Shift
	if err := r.db.SelectContext(ctx, &shifts, query); err != nil {
		return nil, fmt.Errorf("list all shifts: %w", err)
	}
	return shifts, nil
}

// FindByID fetches a shift by ID.
func (r *ShiftRepository) FindByID(ctx context.Context, id string) (*models.Shift, error) {
	const query = `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1`
	var shift models.Shift
	if err := r.db.GetContext(ctx, &shift, query, id); err != nil {
		return nil, err
	}
	return &shift, nil
}

// FindByCode fetches a shift by its unique code.
func (r *ShiftRepository) FindByCode(ctx context.Context, code string) (*models.Shift, error) {
	const query = `SELECT ` + shiftColumns + ` FROM shifts WHERE code = $1`
	var shift models.Shift
	if err := r.db.GetContext(ctx, &shift, query, code); err != nil {
		return nil, err
	}
	return &shift, nil
}

// Create inserts a new shift record.
func (r *ShiftRepository) Create(ctx context.Context, shift *models.Shift) error {
	if shift.ID == "" {
		shift.ID = uuid.NewString()
	}
	const query = `INSERT INTO shifts (id, code, hours, start_time, end_time, is_overnight, is_optional)
		VALUES (:id, :code, :hours, :start_time, :end_time, :is_overnight, :is_optional)`
	if _, err := r.db.NamedExecContext(ctx, query, shift); err != nil {
		return translateUniqueViolation(err, "a shift with this code already exists")
	}
	return nil
}

// Update modifies an existing shift record.
func (r *ShiftRepository) Update(ctx context.Context, shift *models.Shift) error {
	const query = `UPDATE shifts SET code = :code, hours = :hours, start_time = :start_time, end_time = :end_time,
		is_overnight = :is_overnight, is_optional = :is_optional WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, shift); err != nil {
		return fmt.Errorf("update shift: %w", err)
	}
	return nil
}

// Delete removes a shift record.
func (r *ShiftRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM shifts WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete shift: %w", err)
	}
	return nil
}
