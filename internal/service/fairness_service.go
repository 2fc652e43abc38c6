package service

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/models"
	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
)

type fairnessAssignmentReader interface {
	ListDetailBySchedule(ctx context.Context, scheduleID string) ([]models.AssignmentDetail, error)
}

type fairnessScheduleReader interface {
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
}

type fairnessHolidayReader interface {
	ListInRange(ctx context.Context, from, to time.Time) ([]models.Holiday, error)
}

type doctorTally struct {
	doctorID      string
	doctorName    string
	nightShifts   int
	weekendShifts int
	holidayShifts int
	totalHours    int
}

// FairnessService measures how evenly night shifts, weekend shifts, holiday
// shifts, and total hours are distributed across a schedule's doctors, and
// produces actionable recommendations when the distribution is skewed.
type FairnessService struct {
	assignments fairnessAssignmentReader
	schedules   fairnessScheduleReader
	holidays    fairnessHolidayReader
	logger      *zap.Logger
}

// NewFairnessService wires the fairness analyzer's read dependencies.
func NewFairnessService(
	assignments fairnessAssignmentReader,
	schedules fairnessScheduleReader,
	holidays fairnessHolidayReader,
	logger *zap.Logger,
) *FairnessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FairnessService{assignments: assignments, schedules: schedules, holidays: holidays, logger: logger}
}

// AnalyzeSchedule computes per-doctor tallies, four balance scores (night,
// weekend, holiday, hours), an overall average, and recommendations.
func (s *FairnessService) AnalyzeSchedule(ctx context.Context, scheduleID string) (*models.FairnessReport, error) {
	schedule, err := s.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "schedule not found")
	}

	assignments, err := s.assignments.ListDetailBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}

	first := schedule.FirstDay()
	last := first.AddDate(0, 0, schedule.DaysInMonth()-1)
	holidaySet := map[string]bool{}
	if holidays, hErr := s.holidays.ListInRange(ctx, first, last); hErr == nil {
		for _, h := range holidays {
			holidaySet[h.Date.Format("2006-01-02")] = true
		}
	}

	tallies := map[string]*doctorTally{}
	for _, a := range assignments {
		t, ok := tallies[a.DoctorID]
		if !ok {
			t = &doctorTally{doctorID: a.DoctorID, doctorName: a.DoctorName}
			tallies[a.DoctorID] = t
		}
		if a.IsOvernight {
			t.nightShifts++
		}
		weekday := a.Date.Weekday()
		if weekday == time.Friday || weekday == time.Saturday {
			t.weekendShifts++
		}
		if holidaySet[a.Date.Format("2006-01-02")] {
			t.holidayShifts++
		}
		t.totalHours += a.ShiftHours
	}

	if len(tallies) == 0 {
		return &models.FairnessReport{
			ScheduleID:      scheduleID,
			NightBalance:    100,
			WeekendBalance:  100,
			HolidayBalance:  100,
			HoursBalance:    100,
			Overall:         100,
			Recommendations: []models.FairnessRecommendation{{Metric: "overall", Message: "no assignments found for this schedule"}},
		}, nil
	}

	doctorIDs := make([]string, 0, len(tallies))
	for id := range tallies {
		doctorIDs = append(doctorIDs, id)
	}
	sort.Strings(doctorIDs)

	nights := make([]float64, 0, len(doctorIDs))
	weekends := make([]float64, 0, len(doctorIDs))
	holidaysList := make([]float64, 0, len(doctorIDs))
	hours := make([]float64, 0, len(doctorIDs))
	for _, id := range doctorIDs {
		t := tallies[id]
		nights = append(nights, float64(t.nightShifts))
		weekends = append(weekends, float64(t.weekendShifts))
		holidaysList = append(holidaysList, float64(t.holidayShifts))
		hours = append(hours, float64(t.totalHours))
	}

	nightBalance := balanceScore(nights)
	weekendBalance := balanceScore(weekends)
	holidayBalance := balanceScore(holidaysList)
	hoursBalance := balanceScore(hours)
	overall := (nightBalance + weekendBalance + holidayBalance + hoursBalance) / 4

	avgNights := mean(nights)
	avgWeekends := mean(weekends)
	avgHolidays := mean(holidaysList)
	avgHours := mean(hours)

	doctors := make([]models.DoctorFairnessStats, 0, len(doctorIDs))
	for _, id := range doctorIDs {
		t := tallies[id]
		individual := individualFairness(t, avgNights, avgWeekends, avgHolidays, avgHours)
		doctors = append(doctors, models.DoctorFairnessStats{
			DoctorID:      t.doctorID,
			DoctorName:    t.doctorName,
			NightShifts:   t.nightShifts,
			WeekendShifts: t.weekendShifts,
			HolidayShifts: t.holidayShifts,
			TotalHours:    t.totalHours,
			Individual:    individual,
		})
	}
	sort.Slice(doctors, func(i, j int) bool { return doctors[i].Individual < doctors[j].Individual })

	return &models.FairnessReport{
		ScheduleID:      scheduleID,
		NightBalance:    round1(nightBalance),
		WeekendBalance:  round1(weekendBalance),
		HolidayBalance:  round1(holidayBalance),
		HoursBalance:    round1(hoursBalance),
		Overall:         round1(overall),
		Doctors:         doctors,
		Recommendations: s.recommendations(tallies, nightBalance, weekendBalance, holidayBalance, hoursBalance),
	}, nil
}

// balanceScore converts a coefficient of variation into a 0-100 score: a CV
// of 0 (perfectly even) scores 100, and the score falls 2 points per CV
// point. An all-zero or single-value set is treated as perfectly balanced.
func balanceScore(values []float64) float64 {
	if len(values) == 0 {
		return 100
	}
	m := mean(values)
	if m == 0 {
		return 100
	}
	sd := stdev(values, m)
	cv := (sd / m) * 100
	score := 100 - (cv * 2)
	if score < 0 {
		score = 0
	}
	return score
}

func individualFairness(t *doctorTally, avgNights, avgWeekends, avgHolidays, avgHours float64) float64 {
	var deviations []float64
	if avgNights > 0 {
		deviations = append(deviations, (float64(t.nightShifts)-avgNights)/avgNights)
	}
	if avgWeekends > 0 {
		deviations = append(deviations, (float64(t.weekendShifts)-avgWeekends)/avgWeekends)
	}
	if avgHolidays > 0 {
		deviations = append(deviations, (float64(t.holidayShifts)-avgHolidays)/avgHolidays)
	}
	if avgHours > 0 {
		deviations = append(deviations, (float64(t.totalHours)-avgHours)/avgHours)
	}
	if len(deviations) == 0 {
		return 100
	}
	avgDeviation := mean(deviations)
	score := 100 - (avgDeviation * 100)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return round1(score)
}

type fairnessMetric struct {
	name    string
	balance float64
	value   func(*doctorTally) int
}

func (s *FairnessService) recommendations(tallies map[string]*doctorTally, nightBalance, weekendBalance, holidayBalance, hoursBalance float64) []models.FairnessRecommendation {
	var recs []models.FairnessRecommendation

	metrics := []fairnessMetric{
		{"night_shifts", nightBalance, func(t *doctorTally) int { return t.nightShifts }},
		{"weekend_shifts", weekendBalance, func(t *doctorTally) int { return t.weekendShifts }},
		{"holiday_shifts", holidayBalance, func(t *doctorTally) int { return t.holidayShifts }},
		{"hours", hoursBalance, func(t *doctorTally) int { return t.totalHours }},
	}

	for _, m := range metrics {
		if m.balance >= 70 {
			continue
		}
		ranked := make([]*doctorTally, 0, len(tallies))
		for _, t := range tallies {
			ranked = append(ranked, t)
		}
		sort.Slice(ranked, func(i, j int) bool {
			vi, vj := m.value(ranked[i]), m.value(ranked[j])
			if vi != vj {
				return vi > vj
			}
			return ranked[i].doctorID < ranked[j].doctorID
		})
		if len(ranked) >= 2 {
			top, bottom := ranked[0], ranked[len(ranked)-1]
			if m.value(top) > m.value(bottom)+2 {
				recs = append(recs, models.FairnessRecommendation{
					Metric:  m.name,
					Message: "consider reassigning " + m.name + " from " + top.doctorName + " to " + bottom.doctorName,
				})
				continue
			}
		}
		recs = append(recs, models.FairnessRecommendation{Metric: m.name, Message: m.name + " distribution is uneven; review assignments to balance workload"})
	}
	if len(recs) == 0 {
		recs = append(recs, models.FairnessRecommendation{Metric: "overall", Message: "schedule fairness is good, no immediate action needed"})
	}
	return recs
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdev(values []float64, m float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	var sumSq float64
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
