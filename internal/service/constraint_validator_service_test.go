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

type validatorAssignmentReaderStub struct {
	assignments []models.Assignment
	monthlyHours map[string]int
	existing    map[string]bool
}

func (r *validatorAssignmentReaderStub) ListBySchedule(ctx context.Context, scheduleID string) ([]models.Assignment, error) {
	return r.assignments, nil
}

func (r *validatorAssignmentReaderStub) CountMonthlyHours(ctx context.Context, scheduleID, doctorID string) (int, error) {
	return r.monthlyHours[doctorID], nil
}

func (r *validatorAssignmentReaderStub) ExistsForDoctorDate(ctx context.Context, scheduleID, doctorID string, date time.Time) (bool, error) {
	return r.existing[doctorID+"|"+date.Format("2006-01-02")], nil
}

type validatorDoctorReaderStub struct {
	doctors map[string]*models.DoctorWithUser
}

func (r *validatorDoctorReaderStub) FindByID(ctx context.Context, id string) (*models.DoctorWithUser, error) {
	d, ok := r.doctors[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return d, nil
}

type validatorScheduleReaderStub struct {
	schedule *models.Schedule
}

func (r *validatorScheduleReaderStub) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	if r.schedule == nil || r.schedule.ID != id {
		return nil, sql.ErrNoRows
	}
	return r.schedule, nil
}

type validatorCenterReaderStub struct {
	centers map[string]models.Center
}

func (r *validatorCenterReaderStub) FindByID(ctx context.Context, id string) (*models.Center, error) {
	c, ok := r.centers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

type validatorShiftReaderStub struct {
	shifts map[string]models.Shift
}

func (r *validatorShiftReaderStub) FindByID(ctx context.Context, id string) (*models.Shift, error) {
	s, ok := r.shifts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

type validatorCoverageReaderStub struct {
	templates []models.CoverageTemplate
}

func (r *validatorCoverageReaderStub) ListMandatory(ctx context.Context) ([]models.CoverageTemplate, error) {
	return r.templates, nil
}

type validatorLeaveReaderStub struct {
	leaves []models.Leave
}

func (r *validatorLeaveReaderStub) ListApprovedOverlapping(ctx context.Context, from, to time.Time) ([]models.Leave, error) {
	return r.leaves, nil
}

func newConstraintValidatorForTest(
	assignments *validatorAssignmentReaderStub,
	doctors *validatorDoctorReaderStub,
	schedule *validatorScheduleReaderStub,
	centers *validatorCenterReaderStub,
	shifts *validatorShiftReaderStub,
	coverage *validatorCoverageReaderStub,
	leaves *validatorLeaveReaderStub,
) *ConstraintValidatorService {
	return NewConstraintValidatorService(assignments, doctors, schedule, centers, shifts, coverage, leaves, zap.NewNop())
}

func TestConstraintValidatorDoubleBooking(t *testing.T) {
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	assignments := []models.Assignment{
		{ID: "a1", DoctorID: "d1", CenterID: "c1", ShiftID: "s1", Date: date},
		{ID: "a2", DoctorID: "d1", CenterID: "c1", ShiftID: "s1", Date: date},
	}
	svc := newConstraintValidatorForTest(
		&validatorAssignmentReaderStub{assignments: assignments},
		&validatorDoctorReaderStub{doctors: map[string]*models.DoctorWithUser{"d1": {Doctor: models.Doctor{ID: "d1"}, Nationality: models.NationalitySaudi}}},
		&validatorScheduleReaderStub{schedule: &models.Schedule{ID: "sched1", Year: 2026, Month: 3, Status: models.ScheduleStatusDraft}},
		&validatorCenterReaderStub{centers: map[string]models.Center{"c1": {ID: "c1", Code: "C1", AllowedShiftCodes: []string{"S1"}}}},
		&validatorShiftReaderStub{shifts: map[string]models.Shift{"s1": {ID: "s1", Code: "S1", Hours: 8}}},
		&validatorCoverageReaderStub{},
		&validatorLeaveReaderStub{},
	)

	result, err := svc.ValidateSchedule(context.Background(), "sched1")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	found := false
	for _, v := range result.Violations {
		if v.Kind == models.KindDoubleBooking {
			found = true
		}
	}
	assert.True(t, found, "expected a double booking violation")
}

func TestConstraintValidatorShiftCenterMismatch(t *testing.T) {
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	assignments := []models.Assignment{
		{ID: "a1", DoctorID: "d1", CenterID: "c1", ShiftID: "s1", Date: date},
	}
	svc := newConstraintValidatorForTest(
		&validatorAssignmentReaderStub{assignments: assignments},
		&validatorDoctorReaderStub{doctors: map[string]*models.DoctorWithUser{"d1": {Doctor: models.Doctor{ID: "d1"}, Nationality: models.NationalitySaudi}}},
		&validatorScheduleReaderStub{schedule: &models.Schedule{ID: "sched1", Year: 2026, Month: 3, Status: models.ScheduleStatusDraft}},
		&validatorCenterReaderStub{centers: map[string]models.Center{"c1": {ID: "c1", Name: "Center One", Code: "C1", AllowedShiftCodes: []string{"S2"}}}},
		&validatorShiftReaderStub{shifts: map[string]models.Shift{"s1": {ID: "s1", Code: "S1", Hours: 8}}},
		&validatorCoverageReaderStub{},
		&validatorLeaveReaderStub{},
	)

	result, err := svc.ValidateSchedule(context.Background(), "sched1")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	var kinds []models.ViolationKind
	for _, v := range result.Violations {
		kinds = append(kinds, v.Kind)
	}
	assert.Contains(t, kinds, models.KindInvalidShiftForCenter)
}

func TestConstraintValidatorConsecutiveNights(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	assignments := []models.Assignment{
		{ID: "a1", DoctorID: "d1", CenterID: "c1", ShiftID: "night", Date: day1},
		{ID: "a2", DoctorID: "d1", CenterID: "c1", ShiftID: "night", Date: day2},
	}
	svc := newConstraintValidatorForTest(
		&validatorAssignmentReaderStub{assignments: assignments},
		&validatorDoctorReaderStub{doctors: map[string]*models.DoctorWithUser{"d1": {Doctor: models.Doctor{ID: "d1"}, Nationality: models.NationalitySaudi}}},
		&validatorScheduleReaderStub{schedule: &models.Schedule{ID: "sched1", Year: 2026, Month: 3, Status: models.ScheduleStatusDraft}},
		&validatorCenterReaderStub{centers: map[string]models.Center{"c1": {ID: "c1", Code: "C1", AllowedShiftCodes: []string{"NIGHT"}}}},
		&validatorShiftReaderStub{shifts: map[string]models.Shift{"night": {ID: "night", Code: "NIGHT", Hours: 12, IsOvernight: true}}},
		&validatorCoverageReaderStub{},
		&validatorLeaveReaderStub{},
	)

	result, err := svc.ValidateSchedule(context.Background(), "sched1")
	require.NoError(t, err)
	var kinds []models.ViolationKind
	for _, v := range result.Violations {
		kinds = append(kinds, v.Kind)
	}
	assert.Contains(t, kinds, models.KindConsecutiveNights)
}

func TestConstraintValidatorLeaveConflict(t *testing.T) {
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	assignments := []models.Assignment{
		{ID: "a1", DoctorID: "d1", CenterID: "c1", ShiftID: "s1", Date: date},
	}
	svc := newConstraintValidatorForTest(
		&validatorAssignmentReaderStub{assignments: assignments},
		&validatorDoctorReaderStub{doctors: map[string]*models.DoctorWithUser{"d1": {Doctor: models.Doctor{ID: "d1"}, Nationality: models.NationalitySaudi}}},
		&validatorScheduleReaderStub{schedule: &models.Schedule{ID: "sched1", Year: 2026, Month: 3, Status: models.ScheduleStatusDraft}},
		&validatorCenterReaderStub{centers: map[string]models.Center{"c1": {ID: "c1", Code: "C1", AllowedShiftCodes: []string{"S1"}}}},
		&validatorShiftReaderStub{shifts: map[string]models.Shift{"s1": {ID: "s1", Code: "S1", Hours: 8}}},
		&validatorCoverageReaderStub{},
		&validatorLeaveReaderStub{leaves: []models.Leave{{ID: "l1", DoctorID: "d1", StartDate: date, EndDate: date, Type: "annual", Status: models.LeaveStatusApproved}}},
	)

	result, err := svc.ValidateSchedule(context.Background(), "sched1")
	require.NoError(t, err)
	var kinds []models.ViolationKind
	for _, v := range result.Violations {
		kinds = append(kinds, v.Kind)
	}
	assert.Contains(t, kinds, models.KindLeaveConflict)
}

func TestConstraintValidatorCandidateRejectsDoubleBooking(t *testing.T) {
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := newConstraintValidatorForTest(
		&validatorAssignmentReaderStub{existing: map[string]bool{"d1|2026-03-01": true}, monthlyHours: map[string]int{}},
		&validatorDoctorReaderStub{doctors: map[string]*models.DoctorWithUser{"d1": {Doctor: models.Doctor{ID: "d1"}, Nationality: models.NationalitySaudi}}},
		&validatorScheduleReaderStub{schedule: &models.Schedule{ID: "sched1", Year: 2026, Month: 3, Status: models.ScheduleStatusDraft}},
		&validatorCenterReaderStub{centers: map[string]models.Center{"c1": {ID: "c1", Code: "C1", AllowedShiftCodes: []string{"S1"}}}},
		&validatorShiftReaderStub{shifts: map[string]models.Shift{"s1": {ID: "s1", Code: "S1", Hours: 8}}},
		&validatorCoverageReaderStub{},
		&validatorLeaveReaderStub{},
	)

	result, err := svc.ValidateCandidate(context.Background(), "sched1", "d1", "c1", "s1", date)
	require.NoError(t, err)
	var kinds []models.ViolationKind
	for _, v := range result.Violations {
		kinds = append(kinds, v.Kind)
	}
	assert.Contains(t, kinds, models.KindDoubleBooking)
}

func TestConstraintValidatorCandidateClean(t *testing.T) {
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := newConstraintValidatorForTest(
		&validatorAssignmentReaderStub{existing: map[string]bool{}, monthlyHours: map[string]int{}},
		&validatorDoctorReaderStub{doctors: map[string]*models.DoctorWithUser{"d1": {Doctor: models.Doctor{ID: "d1"}, Nationality: models.NationalitySaudi}}},
		&validatorScheduleReaderStub{schedule: &models.Schedule{ID: "sched1", Year: 2026, Month: 3, Status: models.ScheduleStatusDraft}},
		&validatorCenterReaderStub{centers: map[string]models.Center{"c1": {ID: "c1", Code: "C1", AllowedShiftCodes: []string{"S1"}}}},
		&validatorShiftReaderStub{shifts: map[string]models.Shift{"s1": {ID: "s1", Code: "S1", Hours: 8}}},
		&validatorCoverageReaderStub{},
		&validatorLeaveReaderStub{},
	)

	result, err := svc.ValidateCandidate(context.Background(), "sched1", "d1", "c1", "s1", date)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Violations)
}
