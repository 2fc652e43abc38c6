package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/models"
	"github.com/noah-isme/sma-adp-api/pkg/export"
	"github.com/noah-isme/sma-adp-api/pkg/storage"
)

type exportScheduleStub struct{ schedule models.Schedule }

func (s exportScheduleStub) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	sched := s.schedule
	return &sched, nil
}

type exportAssignmentStub struct{ rows []models.AssignmentDetail }

func (s exportAssignmentStub) ListDetailBySchedule(ctx context.Context, scheduleID string) ([]models.AssignmentDetail, error) {
	return s.rows, nil
}

type exportCenterStub struct{ centers []models.Center }

func (s exportCenterStub) ListActive(ctx context.Context) ([]models.Center, error) { return s.centers, nil }

type exportCoverageStub struct{ templates []models.CoverageTemplate }

func (s exportCoverageStub) ListMandatory(ctx context.Context) ([]models.CoverageTemplate, error) {
	return s.templates, nil
}

func sampleAssignmentDetails() []models.AssignmentDetail {
	date := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	return []models.AssignmentDetail{
		{
			Assignment:       models.Assignment{DoctorID: "doc-1", CenterID: "center-1", Date: date},
			DoctorName:       "Amal Al-Harbi",
			DoctorEmployeeID: "EMP-1",
			Nationality:      models.NationalitySaudi,
			CenterCode:       "C1",
			CenterName:       "Central",
			ShiftCode:        "M8",
			ShiftHours:       8,
			IsOvernight:      false,
		},
	}
}

func newExportServiceForTest(t *testing.T) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	cfg := ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}

	schedule := exportScheduleStub{schedule: models.Schedule{ID: "sched-1", Year: 2025, Month: 1}}
	assignments := exportAssignmentStub{rows: sampleAssignmentDetails()}
	centers := exportCenterStub{centers: []models.Center{{ID: "center-1", Code: "C1", Name: "Central", Active: true}}}
	coverage := exportCoverageStub{templates: []models.CoverageTemplate{{ID: "tpl-1", CenterID: "center-1", ShiftID: "shift-1", MinDoctors: 1, Mandatory: true}}}

	svc := NewExportService(schedule, assignments, centers, coverage, store, signer, cfg, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())
	return svc, store
}

func TestExportServiceGenerateAssignmentsCSV(t *testing.T) {
	svc, store := newExportServiceForTest(t)
	job := &models.ReportJob{
		ID:        "job-1",
		Type:      models.ReportTypeAssignments,
		Params:    models.ReportJobParams{ScheduleID: "sched-1", Format: models.ReportFormatCSV},
		CreatedBy: "admin",
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	require.NotEmpty(t, result.RelativePath)
	require.Contains(t, result.URL, "/export/")

	path := store.Path(result.RelativePath)
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestExportServiceGenerateDoctorHoursCSV(t *testing.T) {
	svc, _ := newExportServiceForTest(t)
	job := &models.ReportJob{
		ID:        "job-2",
		Type:      models.ReportTypeDoctorHours,
		Params:    models.ReportJobParams{ScheduleID: "sched-1", Format: models.ReportFormatCSV},
		CreatedBy: "admin",
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	require.Equal(t, models.ReportFormatCSV, result.Format)
}

func TestExportServiceGenerateCoverageCSV(t *testing.T) {
	svc, _ := newExportServiceForTest(t)
	job := &models.ReportJob{
		ID:        "job-3",
		Type:      models.ReportTypeCoverage,
		Params:    models.ReportJobParams{ScheduleID: "sched-1", Format: models.ReportFormatCSV},
		CreatedBy: "admin",
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	require.Equal(t, models.ReportFormatCSV, result.Format)
}

func TestExportServiceGenerateRosterSummaryPDF(t *testing.T) {
	svc, store := newExportServiceForTest(t)
	job := &models.ReportJob{
		ID:        "job-4",
		Type:      models.ReportTypeRosterPDF,
		Params:    models.ReportJobParams{ScheduleID: "sched-1", Format: models.ReportFormatPDF},
		CreatedBy: "admin",
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	require.Equal(t, models.ReportFormatPDF, result.Format)

	path := store.Path(result.RelativePath)
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}
