package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/models"
	"github.com/noah-isme/sma-adp-api/pkg/export"
	"github.com/noah-isme/sma-adp-api/pkg/storage"
)

type exportScheduleReader interface {
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
}

type exportAssignmentReader interface {
	ListDetailBySchedule(ctx context.Context, scheduleID string) ([]models.AssignmentDetail, error)
}

type exportCenterReader interface {
	ListActive(ctx context.Context) ([]models.Center, error)
}

type exportCoverageReader interface {
	ListMandatory(ctx context.Context) ([]models.CoverageTemplate, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService renders the three mandated roster CSV exports (assignments,
// doctor hours, coverage matrix) plus a PDF roster handout, and persists the
// rendered file behind a signed, expiring download link.
type ExportService struct {
	schedules   exportScheduleReader
	assignments exportAssignmentReader
	centers     exportCenterReader
	coverage    exportCoverageReader
	storage     fileStorage
	csv         csvRenderer
	pdf         pdfRenderer
	signer      *storage.SignedURLSigner
	logger      *zap.Logger
	cfg         ExportConfig
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// NewExportService constructs an ExportService.
func NewExportService(
	schedules exportScheduleReader,
	assignments exportAssignmentReader,
	centers exportCenterReader,
	coverage exportCoverageReader,
	storage fileStorage,
	signer *storage.SignedURLSigner,
	cfg ExportConfig,
	logger *zap.Logger,
	csv csvRenderer,
	pdf pdfRenderer,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		schedules:   schedules,
		assignments: assignments,
		centers:     centers,
		coverage:    coverage,
		storage:     storage,
		csv:         csv,
		pdf:         pdf,
		signer:      signer,
		logger:      logger,
		cfg:         cfg,
	}
}

// Generate builds a dataset for job.Type/job.Params.ScheduleID and stores the
// rendered export behind a signed download link.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/export/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), sanitizeFilename(job.Params.ScheduleID), timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	schedule, err := s.schedules.FindByID(ctx, job.Params.ScheduleID)
	if err != nil {
		return export.Dataset{}, "", fmt.Errorf("load schedule: %w", err)
	}
	assignments, err := s.assignments.ListDetailBySchedule(ctx, job.Params.ScheduleID)
	if err != nil {
		return export.Dataset{}, "", fmt.Errorf("load assignments: %w", err)
	}
	switch job.Type {
	case models.ReportTypeAssignments:
		return s.buildAssignmentsDataset(schedule, assignments)
	case models.ReportTypeDoctorHours:
		return s.buildDoctorHoursDataset(schedule, assignments)
	case models.ReportTypeCoverage:
		return s.buildCoverageDataset(ctx, schedule, assignments)
	case models.ReportTypeRosterPDF:
		return s.buildAssignmentsDataset(schedule, assignments)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

// buildAssignmentsDataset matches spec.md §6's "Assignments" CSV exactly:
// Date, Day, Center, Shift, Shift Hours, Doctor Name, Doctor ID, Nationality.
func (s *ExportService) buildAssignmentsDataset(schedule *models.Schedule, assignments []models.AssignmentDetail) (export.Dataset, string, error) {
	sorted := make([]models.AssignmentDetail, len(assignments))
	copy(sorted, assignments)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		if sorted[i].CenterCode != sorted[j].CenterCode {
			return sorted[i].CenterCode < sorted[j].CenterCode
		}
		return sorted[i].DoctorName < sorted[j].DoctorName
	})
	rows := make([]map[string]string, 0, len(sorted))
	for _, a := range sorted {
		rows = append(rows, map[string]string{
			"Date":        a.Date.Format("2006-01-02"),
			"Day":         a.Date.Weekday().String(),
			"Center":      a.CenterCode,
			"Shift":       a.ShiftCode,
			"Shift Hours": fmt.Sprintf("%d", a.ShiftHours),
			"Doctor Name": a.DoctorName,
			"Doctor ID":   a.DoctorEmployeeID,
			"Nationality": string(a.Nationality),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Date", "Day", "Center", "Shift", "Shift Hours", "Doctor Name", "Doctor ID", "Nationality"},
		Rows:    rows,
	}
	title := fmt.Sprintf("Assignments %04d-%02d", schedule.Year, schedule.Month)
	return dataset, title, nil
}

// buildDoctorHoursDataset matches spec.md §6's "Doctor hours" CSV exactly:
// Doctor Name, Employee ID, Nationality, Total Hours, Max Hours, Hours %,
// Assignments, Night Shifts, Over Limit.
func (s *ExportService) buildDoctorHoursDataset(schedule *models.Schedule, assignments []models.AssignmentDetail) (export.Dataset, string, error) {
	type tally struct {
		name        string
		employeeID  string
		nationality models.Nationality
		hours       int
		count       int
		nights      int
	}
	byDoctor := make(map[string]*tally)
	order := make([]string, 0)
	for _, a := range assignments {
		t, ok := byDoctor[a.DoctorID]
		if !ok {
			t = &tally{name: a.DoctorName, employeeID: a.DoctorEmployeeID, nationality: a.Nationality}
			byDoctor[a.DoctorID] = t
			order = append(order, a.DoctorID)
		}
		t.hours += a.ShiftHours
		t.count++
		if a.IsOvernight {
			t.nights++
		}
	}
	sort.Strings(order)
	rows := make([]map[string]string, 0, len(order))
	for _, id := range order {
		t := byDoctor[id]
		cap := models.MonthlyHoursCap(t.nationality)
		pct := 0.0
		if cap > 0 {
			pct = float64(t.hours) / float64(cap) * 100
		}
		rows = append(rows, map[string]string{
			"Doctor Name":  t.name,
			"Employee ID":  t.employeeID,
			"Nationality":  string(t.nationality),
			"Total Hours":  fmt.Sprintf("%d", t.hours),
			"Max Hours":    fmt.Sprintf("%d", cap),
			"Hours %":      fmt.Sprintf("%.2f", pct),
			"Assignments":  fmt.Sprintf("%d", t.count),
			"Night Shifts": fmt.Sprintf("%d", t.nights),
			"Over Limit":   fmt.Sprintf("%t", t.hours > cap),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Doctor Name", "Employee ID", "Nationality", "Total Hours", "Max Hours", "Hours %", "Assignments", "Night Shifts", "Over Limit"},
		Rows:    rows,
	}
	title := fmt.Sprintf("Doctor Hours %04d-%02d", schedule.Year, schedule.Month)
	return dataset, title, nil
}

// buildCoverageDataset matches spec.md §6's coverage matrix: first column
// Center, then one column per day-of-month labeled "<day> <Mon|Tue|...>",
// cells list comma-separated DoctorName(ShiftCode) or "-" when empty.
func (s *ExportService) buildCoverageDataset(ctx context.Context, schedule *models.Schedule, assignments []models.AssignmentDetail) (export.Dataset, string, error) {
	templates, err := s.coverage.ListMandatory(ctx)
	if err != nil {
		return export.Dataset{}, "", fmt.Errorf("load coverage templates: %w", err)
	}
	centers, err := s.centers.ListActive(ctx)
	if err != nil {
		return export.Dataset{}, "", fmt.Errorf("load centers: %w", err)
	}
	centerByID := make(map[string]models.Center, len(centers))
	for _, c := range centers {
		centerByID[c.ID] = c
	}
	centerIDs := make(map[string]bool)
	for _, t := range templates {
		centerIDs[t.CenterID] = true
	}
	orderedCenters := make([]models.Center, 0, len(centerIDs))
	for id := range centerIDs {
		if c, ok := centerByID[id]; ok {
			orderedCenters = append(orderedCenters, c)
		}
	}
	sort.Slice(orderedCenters, func(i, j int) bool { return orderedCenters[i].Code < orderedCenters[j].Code })

	days := schedule.DaysInMonth()
	first := schedule.FirstDay()
	headers := make([]string, 0, days+1)
	headers = append(headers, "Center")
	for d := 0; d < days; d++ {
		date := first.AddDate(0, 0, d)
		headers = append(headers, fmt.Sprintf("%d %s", date.Day(), date.Weekday().String()[:3]))
	}

	type cellKey struct {
		centerID string
		day      int
	}
	cells := make(map[cellKey][]string)
	for _, a := range assignments {
		key := cellKey{centerID: a.CenterID, day: a.Date.Day()}
		cells[key] = append(cells[key], fmt.Sprintf("%s(%s)", a.DoctorName, a.ShiftCode))
	}

	rows := make([]map[string]string, 0, len(orderedCenters))
	for _, center := range orderedCenters {
		row := map[string]string{"Center": center.Code}
		for d := 0; d < days; d++ {
			date := first.AddDate(0, 0, d)
			label := fmt.Sprintf("%d %s", date.Day(), date.Weekday().String()[:3])
			key := cellKey{centerID: center.ID, day: d + 1}
			entries := cells[key]
			if len(entries) == 0 {
				row[label] = "-"
				continue
			}
			sort.Strings(entries)
			row[label] = strings.Join(entries, ", ")
		}
		rows = append(rows, row)
	}

	dataset := export.Dataset{Headers: headers, Rows: rows}
	title := fmt.Sprintf("Coverage Matrix %04d-%02d", schedule.Year, schedule.Month)
	return dataset, title, nil
}
