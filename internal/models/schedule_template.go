package models

import (
	"encoding/json"
	"time"
)

// TemplatePatternEntry is one recurring slot in a reusable schedule
// template: a day of the week paired with a center/shift/headcount.
type TemplatePatternEntry struct {
	DayOfWeek   int    `json:"day_of_week"`
	CenterCode  string `json:"center_code"`
	ShiftCode   string `json:"shift_code"`
	DoctorCount int    `json:"doctor_count"`
}

// TemplatePattern is the full pattern payload stored on a ScheduleTemplate.
type TemplatePattern struct {
	Patterns []TemplatePatternEntry `json:"patterns"`
}

// ScheduleTemplate captures a reusable coverage pattern, either authored
// directly or extracted from an existing schedule's assignments, so a team
// lead can re-seed a new month's draft without rebuilding it from scratch.
type ScheduleTemplate struct {
	ID               string     `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	Description      *string    `db:"description" json:"description,omitempty"`
	PatternData      []byte     `db:"pattern_data" json:"pattern_data"`
	CreatedByID      string     `db:"created_by_id" json:"created_by_id"`
	SourceScheduleID *string    `db:"source_schedule_id" json:"source_schedule_id,omitempty"`
	TimesUsed        int        `db:"times_used" json:"times_used"`
	LastUsedAt       *time.Time `db:"last_used_at" json:"last_used_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Pattern decodes the stored pattern payload.
func (t *ScheduleTemplate) Pattern() (TemplatePattern, error) {
	var p TemplatePattern
	if len(t.PatternData) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(t.PatternData, &p); err != nil {
		return p, err
	}
	return p, nil
}

// SetPattern encodes and stores the pattern payload.
func (t *ScheduleTemplate) SetPattern(p TemplatePattern) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	t.PatternData = raw
	return nil
}

// ScheduleTemplateFilter narrows a template listing.
type ScheduleTemplateFilter struct {
	Page     int
	PageSize int
}
