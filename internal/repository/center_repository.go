package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

// CenterRepository manages persistence for clinical centers.
type CenterRepository struct {
	db *sqlx.DB
}

// NewCenterRepository constructs a CenterRepository.
func NewCenterRepository(db *sqlx.DB) *CenterRepository {
	return &CenterRepository{db: db}
}

const centerColumns = `id, code, name, allowed_shift_codes, active`

// List returns centers matching filters along with total count.
func (r *CenterRepository) List(ctx context.Context, filter models.CenterFilter) ([]models.Center, int, error) {
	base := "FROM centers WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY code ASC LIMIT %d OFFSET %d", centerColumns, base, size, offset)
	var centers []models.Center
	if err := r.db.SelectContext(ctx, &centers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list centers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count centers: %w", err)
	}
	return centers, total, nil
}

// ListActive returns every active center, used by the auto-builder's catalog snapshot.
func (r *CenterRepository) ListActive(ctx context.Context) ([]models.Center, error) {
	const query = `SELECT ` + centerColumns + ` FROM centers WHERE active = TRUE ORDER BY code ASC`
	var centers []models.Center
	if err := r.db.SelectContext(ctx, &centers, query); err != nil {
		return nil, fmt.Errorf("list active centers: %w", err)
	}
	return centers, nil
}

// FindByID fetches a center by ID.
func (r *CenterRepository) FindByID(ctx context.Context, id string) (*models.Center, error) {
	const query = `SELECT ` + centerColumns + ` FROM centers WHERE id = $1`
	var center models.Center
	if err := r.db.GetContext(ctx, &center, query, id); err != nil {
		return nil, err
	}
	return &center, nil
}

// FindByCode fetches a center by its unique code.
func (r *CenterRepository) FindByCode(ctx context.Context, code string) (*models.Center, error) {
	const query = `SELECT ` + centerColumns + ` FROM centers WHERE code = $1`
	var center models.Center
	if err := r.db.GetContext(ctx, &center, query, code); err != nil {
		return nil, err
	}
	return &center, nil
}

// Create inserts a new center record. A duplicate code surfaces as
// ErrDuplicateKey.
func (r *CenterRepository) Create(ctx context.Context, center *models.Center) error {
	if center.ID == "" {
		center.ID = uuid.NewString()
	}
	const query = `INSERT INTO centers (id, code, name, allowed_shift_codes, active)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, center.ID, center.Code, center.Name, pq.Array(center.AllowedShiftCodes), center.Active)
	if err != nil {
		return translateUniqueViolation(err, "a center with this code already exists")
	}
	return nil
}

// Update modifies an existing center record.
func (r *CenterRepository) Update(ctx context.Context, center *models.Center) error {
	const query = `UPDATE centers SET code = $2, name = $3, allowed_shift_codes = $4, active = $5 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, center.ID, center.Code, center.Name, pq.Array(center.AllowedShiftCodes), center.Active)
	if err != nil {
		return fmt.Errorf("update center: %w", err)
	}
	return nil
}

// Delete removes a center record.
func (r *CenterRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM centers WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete center: %w", err)
	}
	return nil
}
