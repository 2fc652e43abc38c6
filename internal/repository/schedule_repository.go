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

// ScheduleRepository provides persistence for monthly schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = `id, year, month, status, published_at, published_by, created_at, updated_at`

// BeginTxx starts a transaction, satisfying the txProvider interface the
// auto-builder and state-machine services depend on for all-or-nothing commits.
func (r *ScheduleRepository) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, opts)
}

// List returns schedules with optional filtering and pagination.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error) {
	base := "FROM schedules WHERE 1=1"
	var args []interface{}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		base += fmt.Sprintf(" AND year = $%d", len(args))
	}
	if filter.Month != nil {
		args = append(args, *filter.Month)
		base += fmt.Sprintf(" AND month = $%d", len(args))
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY year DESC, month DESC LIMIT %d OFFSET %d", scheduleColumns, base, size, offset)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}
	return schedules, total, nil
}

// FindByID loads a schedule by id.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	const query = `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1`
	var sched models.Schedule
	if err := r.db.GetContext(ctx, &sched, query, id); err != nil {
		return nil, err
	}
	return &sched, nil
}

// FindByYearMonth loads a schedule by its unique (year, month) key.
func (r *ScheduleRepository) FindByYearMonth(ctx context.Context, year, month int) (*models.Schedule, error) {
	const query = `SELECT ` + scheduleColumns + ` FROM schedules WHERE year = $1 AND month = $2`
	var sched models.Schedule
	if err := r.db.GetContext(ctx, &sched, query, year, month); err != nil {
		return nil, err
	}
	return &sched, nil
}

// FindByIDForUpdate loads a schedule by id within a transaction, taking a row
// lock so a concurrent status transition or auto-build on the same schedule
// serializes behind this one.
func (r *ScheduleRepository) FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Schedule, error) {
	const query = `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1 FOR UPDATE`
	var sched models.Schedule
	if err := tx.GetContext(ctx, &sched, query, id); err != nil {
		return nil, err
	}
	return &sched, nil
}

// Create stores a new schedule record. Unique (year, month) violations
// surface as ErrDuplicateKey.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now
	schedule.Status = models.ScheduleStatusDraft

	const query = `INSERT INTO schedules (id, year, month, status, published_at, published_by, created_at, updated_at)
		VALUES (:id, :year, :month, :status, :published_at, :published_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return translateUniqueViolation(err, "a schedule already exists for this year and month")
	}
	return nil
}

// UpdateStatus persists a state-machine transition within a transaction.
func (r *ScheduleRepository) UpdateStatus(ctx context.Context, tx *sqlx.Tx, schedule *models.Schedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedules SET status = :status, published_at = :published_at, published_by = :published_by, updated_at = :updated_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, tx, query, schedule); err != nil {
		return fmt.Errorf("update schedule status: %w", err)
	}
	return nil
}

// Delete removes a schedule by id, cascading to its assignments.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}
