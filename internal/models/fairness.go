package models

// DoctorFairnessStats carries one doctor's raw monthly load counters used by
// the fairness analyzer's balance scoring.
type DoctorFairnessStats struct {
	DoctorID      string  `json:"doctor_id"`
	DoctorName    string  `json:"doctor_name"`
	NightShifts   int     `json:"night_shifts"`
	WeekendShifts int     `json:"weekend_shifts"`
	HolidayShifts int     `json:"holiday_shifts"`
	TotalHours    int     `json:"total_hours"`
	Individual    float64 `json:"individual_score"`
}

// FairnessRecommendation is human-readable advice, not a machine instruction.
type FairnessRecommendation struct {
	Metric  string `json:"metric"`
	Message string `json:"message"`
}

// FairnessReport is the Fairness Analyzer's output for one schedule.
type FairnessReport struct {
	ScheduleID      string                   `json:"schedule_id"`
	NightBalance    float64                  `json:"night_balance"`
	WeekendBalance  float64                  `json:"weekend_balance"`
	HolidayBalance  float64                  `json:"holiday_balance"`
	HoursBalance    float64                  `json:"hours_balance"`
	Overall         float64                  `json:"overall"`
	Doctors         []DoctorFairnessStats    `json:"doctors"`
	Recommendations []FairnessRecommendation `json:"recommendations"`
}
