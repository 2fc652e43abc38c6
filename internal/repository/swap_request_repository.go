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

// SwapRequestRepository manages persistence for shift swap requests.
type SwapRequestRepository struct {
	db *sqlx.DB
}

// NewSwapRequestRepository constructs a SwapRequestRepository.
func NewSwapRequestRepository(db *sqlx.DB) *SwapRequestRepository {
	return &SwapRequestRepository{db: db}
}

// BeginTxx starts a transaction so accepting a swap can update both
// assignments and the request's status atomically.
func (r *SwapRequestRepository) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, opts)
}

const swapRequestColumns = `id, requester_id, target_id, requester_assignment_id, target_assignment_id,
	request_type, status, message, response_message, approved_by_id, approved_at, responded_at, created_at, updated_at`

// List returns swap requests matching filters along with total count.
func (r *SwapRequestRepository) List(ctx context.Context, filter models.SwapRequestFilter) ([]models.SwapRequest, int, error) {
	base := "FROM swap_requests WHERE 1=1"
	var args []interface{}
	if filter.RequesterID != "" {
		args = append(args, filter.RequesterID)
		base += fmt.Sprintf(" AND requester_id = $%d", len(args))
	}
	if filter.TargetID != "" {
		args = append(args, filter.TargetID)
		base += fmt.Sprintf(" AND target_id = $%d", len(args))
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", swapRequestColumns, base, size, offset)
	var requests []models.SwapRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list swap requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count swap requests: %w", err)
	}
	return requests, total, nil
}

// FindByID fetches a swap request by ID.
func (r *SwapRequestRepository) FindByID(ctx context.Context, id string) (*models.SwapRequest, error) {
	const query = `SELECT ` + swapRequestColumns + ` FROM swap_requests WHERE id = $1`
	var request models.SwapRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// Create inserts a new swap request.
func (r *SwapRequestRepository) Create(ctx context.Context, request *models.SwapRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now
	const query = `INSERT INTO swap_requests (id, requester_id, target_id, requester_assignment_id, target_assignment_id,
		request_type, status, message, response_message, approved_by_id, approved_at, responded_at, created_at, updated_at)
		VALUES (:id, :requester_id, :target_id, :requester_assignment_id, :target_assignment_id,
		:request_type, :status, :message, :response_message, :approved_by_id, :approved_at, :responded_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create swap request: %w", err)
	}
	return nil
}

// UpdateStatus transitions a swap request (accept/decline/cancel/approve).
func (r *SwapRequestRepository) UpdateStatus(ctx context.Context, tx *sqlx.Tx, request *models.SwapRequest) error {
	request.UpdatedAt = time.Now().UTC()
	const query = `UPDATE swap_requests SET status = :status, response_message = :response_message,
		approved_by_id = :approved_by_id, approved_at = :approved_at, responded_at = :responded_at, updated_at = :updated_at
		WHERE id = :id`
	var err error
	if tx != nil {
		_, err = sqlx.NamedExecContext(ctx, tx, query, request)
	} else {
		_, err = r.db.NamedExecContext(ctx, query, request)
	}
	if err != nil {
		return fmt.Errorf("update swap request status: %w", err)
	}
	return nil
}
