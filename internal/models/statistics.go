package models

import "time"

// AnalyticsSystemMetrics represents system level analytics captured from instrumentation.
type AnalyticsSystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// StatisticsSummary aggregates one-pass roster totals for a schedule.
type StatisticsSummary struct {
	TotalAssignments    int     `json:"total_assignments"`
	TotalHours          int     `json:"total_hours"`
	DaysInMonth         int     `json:"days_in_month"`
	DoctorCount         int     `json:"doctor_count"`
	AverageHours        float64 `json:"average_hours"`
	DoctorsOverCap      int     `json:"doctors_over_cap"`
	WorkloadBalance     float64 `json:"workload_balance"`
	CoveragePercentage  float64 `json:"coverage_percentage"`
	GapsCount           int     `json:"gaps_count"`
}

// DoctorStatistics is the per-doctor breakdown in a StatisticsReport.
type DoctorStatistics struct {
	DoctorID        string         `json:"doctor_id"`
	DoctorName      string         `json:"doctor_name"`
	Hours           int            `json:"hours"`
	PercentOfCap    float64        `json:"percent_of_cap"`
	AssignmentCount int            `json:"assignment_count"`
	OvernightCount  int            `json:"overnight_count"`
	ShiftBreakdown  map[string]int `json:"shift_breakdown"`
	OverCap         bool           `json:"over_cap"`
}

// CoverageGap identifies one under-filled (center, shift, date) slot.
type CoverageGap struct {
	CenterID   string `json:"center_id"`
	CenterCode string `json:"center_code"`
	ShiftID    string `json:"shift_id"`
	ShiftCode  string `json:"shift_code"`
	Date       string `json:"date"`
	Needed     int    `json:"needed"`
	Filled     int    `json:"filled"`
}

const maxReportedGaps = 20

// CoverageStatistics summarizes per-(center,shift,date) fill rates.
type CoverageStatistics struct {
	TotalSlots  int           `json:"total_slots"`
	FilledSlots int           `json:"filled_slots"`
	Gaps        []CoverageGap `json:"gaps"`
	GapsCount   int           `json:"gaps_count"`
}

// AppendGap records a coverage gap, capping the detailed list at 20 while the
// count always reflects every gap encountered.
func (c *CoverageStatistics) AppendGap(gap CoverageGap) {
	c.GapsCount++
	if len(c.Gaps) < maxReportedGaps {
		c.Gaps = append(c.Gaps, gap)
	}
}

// StatisticsReport is the Statistics Reporter's output for one schedule.
type StatisticsReport struct {
	ScheduleID string             `json:"schedule_id"`
	Summary    StatisticsSummary  `json:"summary"`
	Doctors    []DoctorStatistics `json:"doctors"`
	Coverage   CoverageStatistics `json:"coverage"`
}
