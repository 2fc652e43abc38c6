package service

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

type autoBuilderScheduleRepoStub struct {
	db       *sqlx.DB
	schedule *models.Schedule
}

func (r *autoBuilderScheduleRepoStub) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, opts)
}

func (r *autoBuilderScheduleRepoStub) FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Schedule, error) {
	if r.schedule == nil || r.schedule.ID != id {
		return nil, sql.ErrNoRows
	}
	return r.schedule, nil
}

type autoBuilderAssignmentRepoStub struct {
	existing []models.Assignment
	created  []models.Assignment
}

func (r *autoBuilderAssignmentRepoStub) ListBySchedule(ctx context.Context, scheduleID string) ([]models.Assignment, error) {
	return r.existing, nil
}

func (r *autoBuilderAssignmentRepoStub) DeleteBySchedule(ctx context.Context, tx *sqlx.Tx, scheduleID string) error {
	r.existing = nil
	return nil
}

func (r *autoBuilderAssignmentRepoStub) Create(ctx context.Context, tx *sqlx.Tx, assignment *models.Assignment) error {
	r.created = append(r.created, *assignment)
	return nil
}

type autoBuilderDoctorRepoStub struct {
	doctors []models.DoctorWithUser
}

func (r *autoBuilderDoctorRepoStub) ListActive(ctx context.Context) ([]models.DoctorWithUser, error) {
	return r.doctors, nil
}

type autoBuilderCenterRepoStub struct {
	centers map[string]models.Center
}

func (r *autoBuilderCenterRepoStub) ListActive(ctx context.Context) ([]models.Center, error) {
	var out []models.Center
	for _, c := range r.centers {
		out = append(out, c)
	}
	return out, nil
}

func (r *autoBuilderCenterRepoStub) FindByID(ctx context.Context, id string) (*models.Center, error) {
	c, ok := r.centers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

type autoBuilderShiftRepoStub struct {
	shifts map[string]models.Shift
}

func (r *autoBuilderShiftRepoStub) ListAll(ctx context.Context) ([]models.Shift, error) {
	var out []models.Shift
	for _, s := range r.shifts {
		out = append(out, s)
	}
	return out, nil
}

func (r *autoBuilderShiftRepoStub) FindByID(ctx context.Context, id string) (*models.Shift, error) {
	s, ok := r.shifts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

type autoBuilderCoverageRepoStub struct {
	templates []models.CoverageTemplate
}

func (r *autoBuilderCoverageRepoStub) ListMandatory(ctx context.Context) ([]models.CoverageTemplate, error) {
	return r.templates, nil
}

type autoBuilderLeaveRepoStub struct {
	leaves []models.Leave
}

func (r *autoBuilderLeaveRepoStub) ListApprovedOverlapping(ctx context.Context, from, to time.Time) ([]models.Leave, error) {
	return r.leaves, nil
}

func newAutoBuilderForTest(t *testing.T, schedule *models.Schedule, doctors []models.DoctorWithUser, centers map[string]models.Center, shifts map[string]models.Shift, templates []models.CoverageTemplate, leaves []models.Leave) (*AutoBuilderService, *autoBuilderAssignmentRepoStub, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	mock.ExpectBegin()
	mock.ExpectCommit()

	scheduleRepo := &autoBuilderScheduleRepoStub{db: sqlxdb, schedule: schedule}
	assignmentRepo := &autoBuilderAssignmentRepoStub{}
	svc := NewAutoBuilderService(
		scheduleRepo,
		assignmentRepo,
		&autoBuilderDoctorRepoStub{doctors: doctors},
		&autoBuilderCenterRepoStub{centers: centers},
		&autoBuilderShiftRepoStub{shifts: shifts},
		&autoBuilderCoverageRepoStub{templates: templates},
		&autoBuilderLeaveRepoStub{leaves: leaves},
		zap.NewNop(),
	)
	return svc, assignmentRepo, func() { db.Close() }
}

func TestAutoBuilderSingleSlotFillsEveryDay(t *testing.T) {
	schedule := &models.Schedule{ID: "sched1", Year: 2026, Month: 2, Status: models.ScheduleStatusDraft}
	doctors := []models.DoctorWithUser{
		{Doctor: models.Doctor{ID: "d1"}, Nationality: models.NationalitySaudi, Name: "Doc One"},
	}
	centers := map[string]models.Center{"c1": {ID: "c1", Code: "C1", AllowedShiftCodes: []string{"S1"}, Active: true}}
	shifts := map[string]models.Shift{"s1": {ID: "s1", Code: "S1", Hours: 5}}
	templates := []models.CoverageTemplate{{ID: "t1", CenterID: "c1", ShiftID: "s1", MinDoctors: 1, Mandatory: true}}

	svc, assignmentRepo, cleanup := newAutoBuilderForTest(t, schedule, doctors, centers, shifts, templates, nil)
	defer cleanup()

	result, err := svc.BuildSchedule(context.Background(), "sched1", false)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.SlotsUnfilled)
	assert.Equal(t, schedule.DaysInMonth(), result.AssignmentsCreated)
	assert.Len(t, assignmentRepo.created, schedule.DaysInMonth())
	for _, a := range assignmentRepo.created {
		assert.Equal(t, "d1", a.DoctorID)
	}
}

func TestAutoBuilderLeaveBlocksADay(t *testing.T) {
	schedule := &models.Schedule{ID: "sched1", Year: 2026, Month: 2, Status: models.ScheduleStatusDraft}
	blockedDate := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	doctors := []models.DoctorWithUser{
		{Doctor: models.Doctor{ID: "d1"}, Nationality: models.NationalitySaudi, Name: "Doc One"},
	}
	centers := map[string]models.Center{"c1": {ID: "c1", Code: "C1", AllowedShiftCodes: []string{"S1"}, Active: true}}
	shifts := map[string]models.Shift{"s1": {ID: "s1", Code: "S1", Hours: 5}}
	templates := []models.CoverageTemplate{{ID: "t1", CenterID: "c1", ShiftID: "s1", MinDoctors: 1, Mandatory: true}}
	leaves := []models.Leave{{ID: "l1", DoctorID: "d1", StartDate: blockedDate, EndDate: blockedDate, Type: "annual", Status: models.LeaveStatusApproved}}

	svc, assignmentRepo, cleanup := newAutoBuilderForTest(t, schedule, doctors, centers, shifts, templates, leaves)
	defer cleanup()

	result, err := svc.BuildSchedule(context.Background(), "sched1", false)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.SlotsUnfilled)
	assert.Equal(t, schedule.DaysInMonth()-1, result.AssignmentsCreated)
	require.NotEmpty(t, result.Warnings)
	for _, a := range assignmentRepo.created {
		assert.False(t, a.Date.Equal(blockedDate), "leave day must not receive an assignment")
	}
}

func TestAutoBuilderAlternatesConsecutiveNights(t *testing.T) {
	schedule := &models.Schedule{ID: "sched1", Year: 2026, Month: 2, Status: models.ScheduleStatusDraft}
	doctors := []models.DoctorWithUser{
		{Doctor: models.Doctor{ID: "d1"}, Nationality: models.NationalitySaudi, Name: "Doc One"},
		{Doctor: models.Doctor{ID: "d2"}, Nationality: models.NationalitySaudi, Name: "Doc Two"},
	}
	centers := map[string]models.Center{"c1": {ID: "c1", Code: "C1", AllowedShiftCodes: []string{"NIGHT"}, Active: true}}
	shifts := map[string]models.Shift{"night": {ID: "night", Code: "NIGHT", Hours: 8, IsOvernight: true}}
	templates := []models.CoverageTemplate{{ID: "t1", CenterID: "c1", ShiftID: "night", MinDoctors: 1, Mandatory: true}}

	svc, assignmentRepo, cleanup := newAutoBuilderForTest(t, schedule, doctors, centers, shifts, templates, nil)
	defer cleanup()

	result, err := svc.BuildSchedule(context.Background(), "sched1", false)
	require.NoError(t, err)
	assert.True(t, result.Success)

	sort.Slice(assignmentRepo.created, func(i, j int) bool { return assignmentRepo.created[i].Date.Before(assignmentRepo.created[j].Date) })
	require.Len(t, assignmentRepo.created, schedule.DaysInMonth())
	for i := 1; i < len(assignmentRepo.created); i++ {
		assert.NotEqual(t, assignmentRepo.created[i-1].DoctorID, assignmentRepo.created[i].DoctorID,
			"consecutive nights should alternate doctors to avoid back-to-back assignment")
	}
}
