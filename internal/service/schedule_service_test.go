package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

type scheduleTxRepoStub struct {
	db        *sqlx.DB
	schedules map[string]*models.Schedule
}

func (r *scheduleTxRepoStub) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, opts)
}

func (r *scheduleTxRepoStub) FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Schedule, error) {
	sched, ok := r.schedules[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *sched
	return &copy, nil
}

func (r *scheduleTxRepoStub) UpdateStatus(ctx context.Context, tx *sqlx.Tx, schedule *models.Schedule) error {
	r.schedules[schedule.ID] = schedule
	return nil
}

func (r *scheduleTxRepoStub) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error) {
	var out []models.Schedule
	for _, s := range r.schedules {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (r *scheduleTxRepoStub) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	sched, ok := r.schedules[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return sched, nil
}

func (r *scheduleTxRepoStub) Create(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = fmt.Sprintf("generated-%d-%d", schedule.Year, schedule.Month)
	}
	schedule.Status = models.ScheduleStatusDraft
	r.schedules[schedule.ID] = schedule
	return nil
}

func (r *scheduleTxRepoStub) Delete(ctx context.Context, id string) error {
	delete(r.schedules, id)
	return nil
}

func newScheduleServiceForTest(t *testing.T) (*ScheduleService, *scheduleTxRepoStub, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	repo := &scheduleTxRepoStub{db: sqlxdb, schedules: map[string]*models.Schedule{}}
	svc := NewScheduleService(repo, zap.NewNop())
	return svc, repo, mock, func() { db.Close() }
}

func TestScheduleServiceStateMachine(t *testing.T) {
	svc, repo, mock, cleanup := newScheduleServiceForTest(t)
	defer cleanup()
	repo.schedules["s1"] = &models.Schedule{ID: "s1", Year: 2026, Month: 3, Status: models.ScheduleStatusDraft}

	mock.ExpectBegin()
	mock.ExpectCommit()
	sched, err := svc.TransitionStatus(context.Background(), "s1", models.ScheduleActionPublish, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusPublished, sched.Status)
	assert.NotNil(t, sched.PublishedAt)
	assert.NotNil(t, sched.PublishedBy)

	mock.ExpectBegin()
	mock.ExpectCommit()
	sched, err = svc.TransitionStatus(context.Background(), "s1", models.ScheduleActionUnpublish, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusDraft, sched.Status)
	assert.Nil(t, sched.PublishedAt)
	assert.Nil(t, sched.PublishedBy)

	mock.ExpectBegin()
	mock.ExpectCommit()
	sched, err = svc.TransitionStatus(context.Background(), "s1", models.ScheduleActionArchive, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusArchived, sched.Status)

	mock.ExpectBegin()
	mock.ExpectCommit()
	sched, err = svc.TransitionStatus(context.Background(), "s1", models.ScheduleActionUnarchive, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusDraft, sched.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleServicePublishRejectsNonDraft(t *testing.T) {
	svc, repo, mock, cleanup := newScheduleServiceForTest(t)
	defer cleanup()
	repo.schedules["s1"] = &models.Schedule{ID: "s1", Status: models.ScheduleStatusArchived}

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.TransitionStatus(context.Background(), "s1", models.ScheduleActionPublish, "admin")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleServiceArchiveRejectsAlreadyArchived(t *testing.T) {
	svc, repo, mock, cleanup := newScheduleServiceForTest(t)
	defer cleanup()
	repo.schedules["s1"] = &models.Schedule{ID: "s1", Status: models.ScheduleStatusArchived}

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.TransitionStatus(context.Background(), "s1", models.ScheduleActionArchive, "admin")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleServiceDeleteOnlyAllowsDraft(t *testing.T) {
	svc, repo, _, cleanup := newScheduleServiceForTest(t)
	defer cleanup()
	repo.schedules["published"] = &models.Schedule{ID: "published", Status: models.ScheduleStatusPublished}
	repo.schedules["draft"] = &models.Schedule{ID: "draft", Status: models.ScheduleStatusDraft}

	err := svc.Delete(context.Background(), "published")
	require.Error(t, err)
	_, stillThere := repo.schedules["published"]
	assert.True(t, stillThere)

	err = svc.Delete(context.Background(), "draft")
	require.NoError(t, err)
	_, gone := repo.schedules["draft"]
	assert.False(t, gone)
}

func TestScheduleServiceCreateValidatesMonth(t *testing.T) {
	svc, _, _, cleanup := newScheduleServiceForTest(t)
	defer cleanup()

	_, err := svc.Create(context.Background(), 2026, 13)
	require.Error(t, err)

	sched, err := svc.Create(context.Background(), 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusDraft, sched.Status)
}
