package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

// LeaveRepository manages persistence for doctor leave requests.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository constructs a LeaveRepository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

const leaveColumns = `id, doctor_id, start_date, end_date, type, status, created_at, updated_at`

// List returns leaves matching filters along with total count.
func (r *LeaveRepository) List(ctx context.Context, filter models.LeaveFilter) ([]models.Leave, int, error) {
	base := "FROM leaves WHERE 1=1"
	var args []interface{}
	if filter.DoctorID != "" {
		args = append(args, filter.DoctorID)
		base += fmt.Sprintf(" AND doctor_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		base += fmt.Sprintf(" AND status = $%d", len(args))
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY start_date DESC LIMIT %d OFFSET %d", leaveColumns, base, size, offset)
	var leaves []models.Leave
	if err := r.db.SelectContext(ctx, &leaves, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list leaves: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count leaves: %w", err)
	}
	return leaves, total, nil
}

// ListApprovedOverlapping returns every approved leave whose window
// intersects [from, to], the snapshot the auto-builder and validator use to
// gate assignment eligibility for a whole schedule month.
func (r *LeaveRepository) ListApprovedOverlapping(ctx context.Context, from, to time.Time) ([]models.Leave, error) {
	const query = `SELECT ` + leaveColumns + ` FROM leaves
		WHERE status = 'approved' AND start_date <= $2 AND end_date >= $1
		ORDER BY doctor_id, start_date`
	var leaves []models.Leave
	if err := r.db.SelectContext(ctx, &leaves, query, from, to); err != nil {
		return nil, fmt.Errorf("list approved overlapping leaves: %w", err)
	}
	return leaves, nil
}

// FindByID fetches a leave by ID.
func (r *LeaveRepository) FindByID(ctx context.Context, id string) (*models.Leave, error) {
	const query = `SELECT ` + leaveColumns + ` FROM leaves WHERE id = $1`
	var leave models.Leave
	if err := r.db.GetContext(ctx, &leave, query, id); err != nil {
		return nil, err
	}
	return &leave, nil
}

// Create inserts a new leave request.
func (r *LeaveRepository) Create(ctx context.Context, leave *models.Leave) error {
	if leave.ID == "" {
		leave.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if leave.CreatedAt.IsZero() {
		leave.CreatedAt = now
	}
	leave.UpdatedAt = now
	const query = `INSERT INTO leaves (id, doctor_id, start_date, end_date, type, status, created_at, updated_at)
		VALUES (:id, :doctor_id, :start_date, :end_date, :type, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, leave); err != nil {
		return fmt.Errorf("create leave: %w", err)
	}
	return nil
}

// UpdateStatus transitions a leave's status (approve/deny/cancel).
func (r *LeaveRepository) UpdateStatus(ctx context.Context, id string, status models.LeaveStatus) error {
	const query = `UPDATE leaves SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update leave status: %w", err)
	}
	return nil
}

// Delete removes a leave record.
func (r *LeaveRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM leaves WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete leave: %w", err)
	}
	return nil
}
