package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

// AssignmentRepository manages persistence for schedule assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) exec(tx *sqlx.Tx) sqlx.ExtContext {
	if tx != nil {
		return tx
	}
	return r.db
}

const assignmentColumns = `id, schedule_id, doctor_id, center_id, shift_id, date, created_at, updated_at`

// ListBySchedule returns every assignment in a schedule, the set the
// constraint validator, fairness analyzer, and statistics reporter each scan.
func (r *AssignmentRepository) ListBySchedule(ctx context.Context, scheduleID string) ([]models.Assignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM assignments WHERE schedule_id = $1 ORDER BY date ASC, doctor_id ASC`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list assignments by schedule: %w", err)
	}
	return assignments, nil
}

// ListDetailBySchedule returns assignments joined to their catalog rows, used
// for response shaping, CSV export, and the PDF roster.
func (r *AssignmentRepository) ListDetailBySchedule(ctx context.Context, scheduleID string) ([]models.AssignmentDetail, error) {
	const query = `
SELECT a.id, a.schedule_id, a.doctor_id, a.center_id, a.shift_id, a.date, a.created_at, a.updated_at,
       u.name AS doctor_name, d.employee_id AS doctor_employee_id, u.nationality,
       c.code AS center_code, c.name AS center_name,
       s.code AS shift_code, s.hours AS shift_hours, s.is_overnight
FROM assignments a
JOIN doctors d ON d.id = a.doctor_id
JOIN users u ON u.id = d.user_id
JOIN centers c ON c.id = a.center_id
JOIN shifts s ON s.id = a.shift_id
WHERE a.schedule_id = $1
ORDER BY a.date ASC, c.code ASC, u.name ASC`
	var assignments []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list assignment details: %w", err)
	}
	return assignments, nil
}

// CountMonthlyHours returns a doctor's total assigned hours across the
// schedule's whole month, used by the candidate validator's monthly-hours
// check (cross-schedule totals are not considered since schedules are
// unique per month).
func (r *AssignmentRepository) CountMonthlyHours(ctx context.Context, scheduleID, doctorID string) (int, error) {
	const query = `
SELECT COALESCE(SUM(s.hours), 0) FROM assignments a JOIN shifts s ON s.id = a.shift_id
WHERE a.schedule_id = $1 AND a.doctor_id = $2`
	var hours int
	if err := r.db.GetContext(ctx, &hours, query, scheduleID, doctorID); err != nil {
		return 0, fmt.Errorf("count monthly hours: %w", err)
	}
	return hours, nil
}

// ExistsForDoctorDate reports whether the doctor already has an assignment on
// date within the schedule (double-booking check).
func (r *AssignmentRepository) ExistsForDoctorDate(ctx context.Context, scheduleID, doctorID string, date time.Time) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM assignments WHERE schedule_id = $1 AND doctor_id = $2 AND date = $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, scheduleID, doctorID, date); err != nil {
		return false, fmt.Errorf("check existing assignment: %w", err)
	}
	return exists, nil
}

// Create inserts a single assignment, optionally inside a transaction.
// Unique (schedule_id, doctor_id, date) violations surface as *pq.Error code 23505.
func (r *AssignmentRepository) Create(ctx context.Context, tx *sqlx.Tx, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	assignment.UpdatedAt = now
	const query = `INSERT INTO assignments (id, schedule_id, doctor_id, center_id, shift_id, date, created_at, updated_at)
		VALUES (:id, :schedule_id, :doctor_id, :center_id, :shift_id, :date, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(tx), query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// DeleteBySchedule removes every assignment belonging to a schedule, used by
// the auto-builder's clear_existing preparation step. Runs inside the
// caller's transaction so the clear and the subsequent inserts are atomic.
func (r *AssignmentRepository) DeleteBySchedule(ctx context.Context, tx *sqlx.Tx, scheduleID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE schedule_id = $1`, scheduleID); err != nil {
		return fmt.Errorf("delete assignments by schedule: %w", err)
	}
	return nil
}

// Delete removes a single assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}

// FindByID loads a single assignment, optionally inside a transaction (used
// by the swap service to re-check ownership right before applying a swap).
func (r *AssignmentRepository) FindByID(ctx context.Context, tx *sqlx.Tx, id string) (*models.Assignment, error) {
	const query = `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = $1`
	var assignment models.Assignment
	if err := sqlx.GetContext(ctx, r.exec(tx), &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// UpdateDoctor reassigns an assignment to a different doctor, the mechanic
// behind both swap acceptance (trading two doctors) and marketplace claims
// (replacing the poster with the claimant). Must run inside the caller's
// transaction so a swap's two updates commit or roll back together.
func (r *AssignmentRepository) UpdateDoctor(ctx context.Context, tx *sqlx.Tx, assignmentID, doctorID string) error {
	const query = `UPDATE assignments SET doctor_id = $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, assignmentID, doctorID, time.Now().UTC()); err != nil {
		return fmt.Errorf("update assignment doctor: %w", err)
	}
	return nil
}

// CountByScheduleCenterShiftDate counts assignments matching a coverage
// template's (center, shift) pair on one date, used by insufficient_coverage
// checks and the auto-builder's needed-slot computation.
func (r *AssignmentRepository) CountByScheduleCenterShiftDate(ctx context.Context, scheduleID, centerID, shiftID string, date time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM assignments WHERE schedule_id = $1 AND center_id = $2 AND shift_id = $3 AND date = $4`
	var count int
	if err := r.db.GetContext(ctx, &count, query, scheduleID, centerID, shiftID, date); err != nil {
		return 0, fmt.Errorf("count assignments for slot: %w", err)
	}
	return count, nil
}
