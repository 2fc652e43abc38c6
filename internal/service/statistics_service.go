package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/models"
	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
)

type statisticsAssignmentReader interface {
	ListDetailBySchedule(ctx context.Context, scheduleID string) ([]models.AssignmentDetail, error)
}

type statisticsScheduleReader interface {
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
}

type statisticsDoctorReader interface {
	ListActive(ctx context.Context) ([]models.DoctorWithUser, error)
}

type statisticsCoverageReader interface {
	ListMandatory(ctx context.Context) ([]models.CoverageTemplate, error)
}

type statisticsCenterReader interface {
	FindByID(ctx context.Context, id string) (*models.Center, error)
}

type statisticsShiftReader interface {
	FindByID(ctx context.Context, id string) (*models.Shift, error)
}

// StatisticsCacheReader abstracts the cache dependency used by StatisticsService.
type StatisticsCacheReader interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

const statisticsCacheTTL = 10 * time.Minute

// StatisticsService computes per-doctor, per-center, and per-shift rollups
// plus coverage completion for a schedule. Reports are cached since they are
// read far more often than a schedule's assignments change.
type StatisticsService struct {
	assignments statisticsAssignmentReader
	schedules   statisticsScheduleReader
	doctors     statisticsDoctorReader
	coverage    statisticsCoverageReader
	centers     statisticsCenterReader
	shifts      statisticsShiftReader
	cache       StatisticsCacheReader
	logger      *zap.Logger
}

// NewStatisticsService wires the statistics reporter's dependencies. cache
// may be nil, in which case every call recomputes from the database.
func NewStatisticsService(
	assignments statisticsAssignmentReader,
	schedules statisticsScheduleReader,
	doctors statisticsDoctorReader,
	coverage statisticsCoverageReader,
	centers statisticsCenterReader,
	shifts statisticsShiftReader,
	cache StatisticsCacheReader,
	logger *zap.Logger,
) *StatisticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsService{assignments: assignments, schedules: schedules, doctors: doctors, coverage: coverage, centers: centers, shifts: shifts, cache: cache, logger: logger}
}

// GetScheduleStatistics returns the comprehensive statistics report for a
// schedule, serving a cached copy when available.
func (s *StatisticsService) GetScheduleStatistics(ctx context.Context, scheduleID string) (*models.StatisticsReport, error) {
	cacheKey := fmt.Sprintf("stats:schedule:%s", scheduleID)
	if s.cache != nil {
		var cached models.StatisticsReport
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	schedule, err := s.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "schedule not found")
	}

	assignments, err := s.assignments.ListDetailBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}

	doctorStats, err := s.doctorStatistics(ctx, assignments)
	if err != nil {
		return nil, err
	}
	coverageStats, err := s.coverageStatistics(ctx, schedule, assignments)
	if err != nil {
		return nil, err
	}
	summary := s.summary(schedule, assignments, doctorStats, coverageStats)

	report := &models.StatisticsReport{
		ScheduleID: scheduleID,
		Summary:    summary,
		Doctors:    doctorStats,
		Coverage:   coverageStats,
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, report, statisticsCacheTTL)
	}
	return report, nil
}

func (s *StatisticsService) doctorStatistics(ctx context.Context, assignments []models.AssignmentDetail) ([]models.DoctorStatistics, error) {
	doctors, err := s.doctors.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load doctors")
	}

	type acc struct {
		hours      int
		count      int
		overnight  int
		breakdown  map[string]int
	}
	byDoctor := map[string]*acc{}
	for _, a := range assignments {
		entry, ok := byDoctor[a.DoctorID]
		if !ok {
			entry = &acc{breakdown: map[string]int{}}
			byDoctor[a.DoctorID] = entry
		}
		entry.hours += a.ShiftHours
		entry.count++
		if a.IsOvernight {
			entry.overnight++
		}
		entry.breakdown[a.ShiftCode]++
	}

	stats := make([]models.DoctorStatistics, 0, len(doctors))
	for _, d := range doctors {
		entry, ok := byDoctor[d.ID]
		if !ok {
			entry = &acc{breakdown: map[string]int{}}
		}
		maxHours := d.MonthlyHoursCap()
		percent := 0.0
		if maxHours > 0 {
			percent = round1(float64(entry.hours) / float64(maxHours) * 100)
		}
		stats = append(stats, models.DoctorStatistics{
			DoctorID:        d.ID,
			DoctorName:      d.Name,
			Hours:           entry.hours,
			PercentOfCap:    percent,
			AssignmentCount: entry.count,
			OvernightCount:  entry.overnight,
			ShiftBreakdown:  entry.breakdown,
			OverCap:         entry.hours > maxHours,
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Hours > stats[j].Hours })
	return stats, nil
}

func (s *StatisticsService) coverageStatistics(ctx context.Context, schedule *models.Schedule, assignments []models.AssignmentDetail) (models.CoverageStatistics, error) {
	templates, err := s.coverage.ListMandatory(ctx)
	if err != nil {
		return models.CoverageStatistics{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coverage templates")
	}

	counts := map[string]int{}
	for _, a := range assignments {
		key := a.Date.Format("2006-01-02") + "|" + a.CenterID + "|" + a.ShiftID
		counts[key]++
	}

	var coverage models.CoverageStatistics
	first := schedule.FirstDay()
	days := schedule.DaysInMonth()
	for day := 0; day < days; day++ {
		current := first.AddDate(0, 0, day)
		for _, t := range templates {
			key := current.Format("2006-01-02") + "|" + t.CenterID + "|" + t.ShiftID
			actual := counts[key]
			coverage.TotalSlots += t.MinDoctors
			if actual > t.MinDoctors {
				coverage.FilledSlots += t.MinDoctors
			} else {
				coverage.FilledSlots += actual
			}
			if actual < t.MinDoctors {
				var centerCode, shiftCode string
				if center, err := s.centers.FindByID(ctx, t.CenterID); err == nil {
					centerCode = center.Code
				}
				if shift, err := s.shifts.FindByID(ctx, t.ShiftID); err == nil {
					shiftCode = shift.Code
				}
				coverage.AppendGap(models.CoverageGap{
					CenterID:   t.CenterID,
					CenterCode: centerCode,
					ShiftID:    t.ShiftID,
					ShiftCode:  shiftCode,
					Date:       current.Format("2006-01-02"),
					Needed:     t.MinDoctors,
					Filled:     actual,
				})
			}
		}
	}
	return coverage, nil
}

func (s *StatisticsService) summary(schedule *models.Schedule, assignments []models.AssignmentDetail, doctorStats []models.DoctorStatistics, coverage models.CoverageStatistics) models.StatisticsSummary {
	totalHours := 0
	withAssignments := 0
	overCap := 0
	var hoursList []float64
	for _, d := range doctorStats {
		totalHours += d.Hours
		if d.AssignmentCount > 0 {
			withAssignments++
			hoursList = append(hoursList, float64(d.Hours))
		}
		if d.OverCap {
			overCap++
		}
	}

	avgHours := 0.0
	if withAssignments > 0 {
		avgHours = float64(totalHours) / float64(withAssignments)
	}

	workloadBalance := 100.0
	if len(hoursList) > 1 {
		m := mean(hoursList)
		sd := populationStdev(hoursList, m)
		if m > 0 {
			workloadBalance = math.Max(0, 100-(sd/m*100))
		}
	}

	coveragePercentage := 0.0
	if coverage.TotalSlots > 0 {
		coveragePercentage = float64(coverage.FilledSlots) / float64(coverage.TotalSlots) * 100
	}

	return models.StatisticsSummary{
		TotalAssignments:   len(assignments),
		TotalHours:         totalHours,
		DaysInMonth:        schedule.DaysInMonth(),
		DoctorCount:        len(doctorStats),
		AverageHours:       round1(avgHours),
		DoctorsOverCap:     overCap,
		WorkloadBalance:    round1(workloadBalance),
		CoveragePercentage: round1(coveragePercentage),
		GapsCount:          coverage.GapsCount,
	}
}

// populationStdev computes the population standard deviation (n divisor),
// matching the original statistics service's summary calculation, which
// differs from the fairness analyzer's sample standard deviation.
func populationStdev(values []float64, m float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumSq float64
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}
