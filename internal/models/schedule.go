package models

import "time"

// ScheduleStatus is a closed enumeration stored as its lowercase string.
type ScheduleStatus string

const (
	ScheduleStatusDraft     ScheduleStatus = "draft"
	ScheduleStatusPublished ScheduleStatus = "published"
	ScheduleStatusArchived  ScheduleStatus = "archived"
)

// Schedule is the container for one calendar month of assignments.
type Schedule struct {
	ID          string         `db:"id" json:"id"`
	Year        int            `db:"year" json:"year"`
	Month       int            `db:"month" json:"month"`
	Status      ScheduleStatus `db:"status" json:"status"`
	PublishedAt *time.Time     `db:"published_at" json:"published_at,omitempty"`
	PublishedBy *string        `db:"published_by" json:"published_by,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// DaysInMonth returns the number of calendar days in the schedule's month.
func (s Schedule) DaysInMonth() int {
	return time.Date(s.Year, time.Month(s.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstDay returns the first calendar day of the schedule's month.
func (s Schedule) FirstDay() time.Time {
	return time.Date(s.Year, time.Month(s.Month), 1, 0, 0, 0, 0, time.UTC)
}

// ScheduleFilter describes query params for listing schedules.
type ScheduleFilter struct {
	Year     *int
	Month    *int
	Status   *ScheduleStatus
	Page     int
	PageSize int
	SortBy   string
	SortOrder string
}

// ScheduleTransitionAction enumerates the state-machine actions the kernel accepts.
type ScheduleTransitionAction string

const (
	ScheduleActionPublish   ScheduleTransitionAction = "publish"
	ScheduleActionUnpublish ScheduleTransitionAction = "unpublish"
	ScheduleActionArchive   ScheduleTransitionAction = "archive"
	ScheduleActionUnarchive ScheduleTransitionAction = "unarchive"
)
