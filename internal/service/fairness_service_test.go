package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

type fairnessAssignmentReaderStub struct {
	details []models.AssignmentDetail
}

func (r *fairnessAssignmentReaderStub) ListDetailBySchedule(ctx context.Context, scheduleID string) ([]models.AssignmentDetail, error) {
	return r.details, nil
}

type fairnessScheduleReaderStub struct {
	schedule *models.Schedule
}

func (r *fairnessScheduleReaderStub) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	if r.schedule == nil || r.schedule.ID != id {
		return nil, sql.ErrNoRows
	}
	return r.schedule, nil
}

type fairnessHolidayReaderStub struct {
	holidays []models.Holiday
}

func (r *fairnessHolidayReaderStub) ListInRange(ctx context.Context, from, to time.Time) ([]models.Holiday, error) {
	return r.holidays, nil
}

func detail(doctorID, doctorName string, date time.Time, hours int, overnight bool) models.AssignmentDetail {
	return models.AssignmentDetail{
		Assignment: models.Assignment{DoctorID: doctorID, Date: date},
		DoctorName: doctorName,
		ShiftHours: hours,
		IsOvernight: overnight,
	}
}

func TestFairnessServiceEvenDistributionScoresHigh(t *testing.T) {
	day1 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	details := []models.AssignmentDetail{
		detail("d1", "Doc One", day1, 8, false),
		detail("d2", "Doc Two", day2, 8, false),
	}
	svc := NewFairnessService(
		&fairnessAssignmentReaderStub{details: details},
		&fairnessScheduleReaderStub{schedule: &models.Schedule{ID: "sched1", Year: 2026, Month: 3}},
		&fairnessHolidayReaderStub{},
		zap.NewNop(),
	)

	report, err := svc.AnalyzeSchedule(context.Background(), "sched1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, report.HoursBalance)
	assert.Equal(t, 100.0, report.Overall)
	require.Len(t, report.Doctors, 2)
}

func TestFairnessServiceSkewedDistributionFlagsRecommendation(t *testing.T) {
	var details []models.AssignmentDetail
	night := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		details = append(details, detail("d1", "Doc One", night.AddDate(0, 0, i*2), 12, true))
	}
	details = append(details, detail("d2", "Doc Two", night.AddDate(0, 0, 1), 12, true))

	svc := NewFairnessService(
		&fairnessAssignmentReaderStub{details: details},
		&fairnessScheduleReaderStub{schedule: &models.Schedule{ID: "sched1", Year: 2026, Month: 3}},
		&fairnessHolidayReaderStub{},
		zap.NewNop(),
	)

	report, err := svc.AnalyzeSchedule(context.Background(), "sched1")
	require.NoError(t, err)
	assert.Less(t, report.NightBalance, 70.0)
	require.NotEmpty(t, report.Recommendations)
}

func TestFairnessServiceNoAssignmentsIsPerfectlyBalanced(t *testing.T) {
	svc := NewFairnessService(
		&fairnessAssignmentReaderStub{},
		&fairnessScheduleReaderStub{schedule: &models.Schedule{ID: "sched1", Year: 2026, Month: 3}},
		&fairnessHolidayReaderStub{},
		zap.NewNop(),
	)

	report, err := svc.AnalyzeSchedule(context.Background(), "sched1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, report.Overall)
	assert.Empty(t, report.Doctors)
}
