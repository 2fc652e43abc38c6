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

type statisticsAssignmentReaderStub struct {
	details []models.AssignmentDetail
}

func (r *statisticsAssignmentReaderStub) ListDetailBySchedule(ctx context.Context, scheduleID string) ([]models.AssignmentDetail, error) {
	return r.details, nil
}

type statisticsScheduleReaderStub struct {
	schedule *models.Schedule
}

func (r *statisticsScheduleReaderStub) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	if r.schedule == nil || r.schedule.ID != id {
		return nil, sql.ErrNoRows
	}
	return r.schedule, nil
}

type statisticsDoctorReaderStub struct {
	doctors []models.DoctorWithUser
}

func (r *statisticsDoctorReaderStub) ListActive(ctx context.Context) ([]models.DoctorWithUser, error) {
	return r.doctors, nil
}

type statisticsCoverageReaderStub struct {
	templates []models.CoverageTemplate
}

func (r *statisticsCoverageReaderStub) ListMandatory(ctx context.Context) ([]models.CoverageTemplate, error) {
	return r.templates, nil
}

type statisticsCenterReaderStub struct {
	centers map[string]models.Center
}

func (r *statisticsCenterReaderStub) FindByID(ctx context.Context, id string) (*models.Center, error) {
	c, ok := r.centers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

type statisticsShiftReaderStub struct {
	shifts map[string]models.Shift
}

func (r *statisticsShiftReaderStub) FindByID(ctx context.Context, id string) (*models.Shift, error) {
	s, ok := r.shifts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func TestStatisticsServiceCoverageGapsResolveCodesWithoutAssignments(t *testing.T) {
	schedule := &models.Schedule{ID: "sched1", Year: 2026, Month: 2, Status: models.ScheduleStatusDraft}
	svc := NewStatisticsService(
		&statisticsAssignmentReaderStub{},
		&statisticsScheduleReaderStub{schedule: schedule},
		&statisticsDoctorReaderStub{},
		&statisticsCoverageReaderStub{templates: []models.CoverageTemplate{
			{ID: "t1", CenterID: "c1", ShiftID: "s1", MinDoctors: 1, Mandatory: true},
		}},
		&statisticsCenterReaderStub{centers: map[string]models.Center{"c1": {ID: "c1", Code: "C1"}}},
		&statisticsShiftReaderStub{shifts: map[string]models.Shift{"s1": {ID: "s1", Code: "S1"}}},
		nil,
		zap.NewNop(),
	)

	report, err := svc.GetScheduleStatistics(context.Background(), "sched1")
	require.NoError(t, err)
	assert.Equal(t, schedule.DaysInMonth(), report.Coverage.GapsCount)
	require.NotEmpty(t, report.Coverage.Gaps)
	for _, gap := range report.Coverage.Gaps {
		assert.Equal(t, "C1", gap.CenterCode)
		assert.Equal(t, "S1", gap.ShiftCode)
	}
}

func TestStatisticsServiceDoctorStatisticsAndSummary(t *testing.T) {
	schedule := &models.Schedule{ID: "sched1", Year: 2026, Month: 2, Status: models.ScheduleStatusDraft}
	date := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	details := []models.AssignmentDetail{
		{Assignment: models.Assignment{DoctorID: "d1", CenterID: "c1", ShiftID: "s1", Date: date}, DoctorName: "Doc One", ShiftHours: 8, ShiftCode: "S1", CenterCode: "C1"},
	}
	doctors := []models.DoctorWithUser{
		{Doctor: models.Doctor{ID: "d1"}, Nationality: models.NationalitySaudi, Name: "Doc One"},
	}
	svc := NewStatisticsService(
		&statisticsAssignmentReaderStub{details: details},
		&statisticsScheduleReaderStub{schedule: schedule},
		&statisticsDoctorReaderStub{doctors: doctors},
		&statisticsCoverageReaderStub{},
		&statisticsCenterReaderStub{centers: map[string]models.Center{}},
		&statisticsShiftReaderStub{shifts: map[string]models.Shift{}},
		nil,
		zap.NewNop(),
	)

	report, err := svc.GetScheduleStatistics(context.Background(), "sched1")
	require.NoError(t, err)
	require.Len(t, report.Doctors, 1)
	assert.Equal(t, 8, report.Doctors[0].Hours)
	assert.Equal(t, 1, report.Summary.TotalAssignments)
	assert.False(t, report.Doctors[0].OverCap)
}
