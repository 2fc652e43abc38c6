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

// ShiftPostingRepository manages persistence for the shift marketplace.
type ShiftPostingRepository struct {
	db *sqlx.DB
}

// NewShiftPostingRepository constructs a ShiftPostingRepository.
func NewShiftPostingRepository(db *sqlx.DB) *ShiftPostingRepository {
	return &ShiftPostingRepository{db: db}
}

// BeginTxx starts a transaction so a claim and its assignment reassignment
// commit or roll back together.
func (r *ShiftPostingRepository) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, opts)
}

const shiftPostingColumns = `id, poster_id, assignment_id, posting_type, status, preferred_date, preferred_center_id,
	preferred_shift_id, message, is_urgent, claimed_by_id, claimed_at, expires_at, created_at, updated_at`

// List returns marketplace postings matching filters along with total count.
func (r *ShiftPostingRepository) List(ctx context.Context, filter models.ShiftPostingFilter) ([]models.ShiftPosting, int, error) {
	base := "FROM shift_postings WHERE 1=1"
	var args []interface{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		base += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.PostingType != nil {
		args = append(args, *filter.PostingType)
		base += fmt.Sprintf(" AND posting_type = $%d", len(args))
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY is_urgent DESC, created_at DESC LIMIT %d OFFSET %d", shiftPostingColumns, base, size, offset)
	var postings []models.ShiftPosting
	if err := r.db.SelectContext(ctx, &postings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list shift postings: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count shift postings: %w", err)
	}
	return postings, total, nil
}

// FindByID fetches a posting by ID.
func (r *ShiftPostingRepository) FindByID(ctx context.Context, id string) (*models.ShiftPosting, error) {
	const query = `SELECT ` + shiftPostingColumns + ` FROM shift_postings WHERE id = $1`
	var posting models.ShiftPosting
	if err := r.db.GetContext(ctx, &posting, query, id); err != nil {
		return nil, err
	}
	return &posting, nil
}

// Create inserts a new marketplace posting.
func (r *ShiftPostingRepository) Create(ctx context.Context, posting *models.ShiftPosting) error {
	if posting.ID == "" {
		posting.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if posting.CreatedAt.IsZero() {
		posting.CreatedAt = now
	}
	posting.UpdatedAt = now
	const query = `INSERT INTO shift_postings (id, poster_id, assignment_id, posting_type, status, preferred_date,
		preferred_center_id, preferred_shift_id, message, is_urgent, claimed_by_id, claimed_at, expires_at, created_at, updated_at)
		VALUES (:id, :poster_id, :assignment_id, :posting_type, :status, :preferred_date,
		:preferred_center_id, :preferred_shift_id, :message, :is_urgent, :claimed_by_id, :claimed_at, :expires_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, posting); err != nil {
		return fmt.Errorf("create shift posting: %w", err)
	}
	return nil
}

// Claim marks a posting as claimed by a doctor, guarded by its current status
// so a concurrent double-claim affects at most one row.
func (r *ShiftPostingRepository) Claim(ctx context.Context, tx *sqlx.Tx, id, claimedByID string) (bool, error) {
	const query = `UPDATE shift_postings SET status = 'claimed', claimed_by_id = $2, claimed_at = $3, updated_at = $3
		WHERE id = $1 AND status = 'open'`
	res, err := tx.ExecContext(ctx, query, id, claimedByID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("claim shift posting: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim shift posting rows affected: %w", err)
	}
	return rows == 1, nil
}

// UpdateStatus transitions a posting's status (cancel/expire).
func (r *ShiftPostingRepository) UpdateStatus(ctx context.Context, id string, status models.PostingStatus) error {
	const query = `UPDATE shift_postings SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update shift posting status: %w", err)
	}
	return nil
}
