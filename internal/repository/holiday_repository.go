package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

// HolidayRepository manages the holiday catalog consulted by the fairness
// analyzer's holiday-shift counting.
type HolidayRepository struct {
	db *sqlx.DB
}

// NewHolidayRepository constructs a HolidayRepository.
func NewHolidayRepository(db *sqlx.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

// ListInRange returns every holiday whose date falls within [from, to].
func (r *HolidayRepository) ListInRange(ctx context.Context, from, to time.Time) ([]models.Holiday, error) {
	const query = `SELECT date, label FROM holidays WHERE date >= $1 AND date <= $2 ORDER BY date ASC`
	var holidays []models.Holiday
	if err := r.db.SelectContext(ctx, &holidays, query, from, to); err != nil {
		return nil, fmt.Errorf("list holidays in range: %w", err)
	}
	return holidays, nil
}

// Create inserts a holiday marker.
func (r *HolidayRepository) Create(ctx context.Context, holiday *models.Holiday) error {
	const query = `INSERT INTO holidays (date, label) VALUES ($1, $2) ON CONFLICT (date) DO UPDATE SET label = EXCLUDED.label`
	if _, err := r.db.ExecContext(ctx, query, holiday.Date, holiday.Label); err != nil {
		return fmt.Errorf("create holiday: %w", err)
	}
	return nil
}

// Delete removes a holiday marker by date.
func (r *HolidayRepository) Delete(ctx context.Context, date time.Time) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM holidays WHERE date = $1`, date); err != nil {
		return fmt.Errorf("delete holiday: %w", err)
	}
	return nil
}
