package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-api/internal/models"
	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
)

type autoBuilderScheduleRepo interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Schedule, error)
}

type autoBuilderAssignmentRepo interface {
	ListBySchedule(ctx context.Context, scheduleID string) ([]models.Assignment, error)
	DeleteBySchedule(ctx context.Context, tx *sqlx.Tx, scheduleID string) error
	Create(ctx context.Context, tx *sqlx.Tx, assignment *models.Assignment) error
}

type autoBuilderDoctorRepo interface {
	ListActive(ctx context.Context) ([]models.DoctorWithUser, error)
}

type autoBuilderCenterRepo interface {
	ListActive(ctx context.Context) ([]models.Center, error)
	FindByID(ctx context.Context, id string) (*models.Center, error)
}

type autoBuilderShiftRepo interface {
	ListAll(ctx context.Context) ([]models.Shift, error)
	FindByID(ctx context.Context, id string) (*models.Shift, error)
}

type autoBuilderCoverageRepo interface {
	ListMandatory(ctx context.Context) ([]models.CoverageTemplate, error)
}

type autoBuilderLeaveRepo interface {
	ListApprovedOverlapping(ctx context.Context, from, to time.Time) ([]models.Leave, error)
}

// doctorLoad tracks one doctor's running tallies during a build pass: hours
// assigned so far, dates already covered, and dates worked an overnight
// shift, so the candidate scorer never scans the assignment table per slot.
type doctorLoad struct {
	hours     int
	dates     map[string]bool
	nightDates map[string]bool
}

// AutoBuilderService fills a schedule's mandatory coverage slots day by day
// using a greedy, lowest-load-wins heuristic, writing every generated
// assignment inside a single transaction.
type AutoBuilderService struct {
	scheduleRepo    autoBuilderScheduleRepo
	assignmentRepo  autoBuilderAssignmentRepo
	doctorRepo      autoBuilderDoctorRepo
	centerRepo      autoBuilderCenterRepo
	shiftRepo       autoBuilderShiftRepo
	coverageRepo    autoBuilderCoverageRepo
	leaveRepo       autoBuilderLeaveRepo
	logger          *zap.Logger
}

// NewAutoBuilderService wires the auto-builder's dependencies.
func NewAutoBuilderService(
	scheduleRepo autoBuilderScheduleRepo,
	assignmentRepo autoBuilderAssignmentRepo,
	doctorRepo autoBuilderDoctorRepo,
	centerRepo autoBuilderCenterRepo,
	shiftRepo autoBuilderShiftRepo,
	coverageRepo autoBuilderCoverageRepo,
	leaveRepo autoBuilderLeaveRepo,
	logger *zap.Logger,
) *AutoBuilderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoBuilderService{
		scheduleRepo:   scheduleRepo,
		assignmentRepo: assignmentRepo,
		doctorRepo:     doctorRepo,
		centerRepo:     centerRepo,
		shiftRepo:      shiftRepo,
		coverageRepo:   coverageRepo,
		leaveRepo:      leaveRepo,
		logger:         logger,
	}
}

// BuildSchedule auto-generates assignments for a schedule's mandatory
// coverage templates. When clearExisting is set, every prior assignment in
// the schedule is dropped before the pass starts. The whole pass is
// all-or-nothing: either every created assignment commits, or none do.
func (s *AutoBuilderService) BuildSchedule(ctx context.Context, scheduleID string, clearExisting bool) (*models.BuildResult, error) {
	tx, err := s.scheduleRepo.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	schedule, err := s.scheduleRepo.FindByIDForUpdate(ctx, tx, scheduleID)
	if err != nil {
		err = appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "schedule not found")
		return nil, err
	}
	if schedule.Status != models.ScheduleStatusDraft {
		err = appErrors.Clone(appErrors.ErrConflict, "auto-build only runs against a draft schedule")
		return nil, err
	}

	if clearExisting {
		if err = s.assignmentRepo.DeleteBySchedule(ctx, tx, scheduleID); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear existing assignments")
			return nil, err
		}
	}

	templates, tErr := s.coverageRepo.ListMandatory(ctx)
	if tErr != nil {
		err = appErrors.Wrap(tErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coverage templates")
		return nil, err
	}
	if len(templates) == 0 {
		err = appErrors.Clone(appErrors.ErrPreconditionFailed, "no coverage templates defined")
		return nil, err
	}

	doctors, dErr := s.doctorRepo.ListActive(ctx)
	if dErr != nil {
		err = appErrors.Wrap(dErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active doctors")
		return nil, err
	}
	if len(doctors) == 0 {
		err = appErrors.Clone(appErrors.ErrPreconditionFailed, "no active doctors available")
		return nil, err
	}
	sort.Slice(doctors, func(i, j int) bool { return doctors[i].ID < doctors[j].ID })

	shifts, sErr := s.shiftRepo.ListAll(ctx)
	if sErr != nil {
		err = appErrors.Wrap(sErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shifts")
		return nil, err
	}
	shiftByID := make(map[string]models.Shift, len(shifts))
	for _, sh := range shifts {
		shiftByID[sh.ID] = sh
	}

	centers, cErr := s.centerRepo.ListActive(ctx)
	if cErr != nil {
		err = appErrors.Wrap(cErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load centers")
		return nil, err
	}
	centerByID := make(map[string]models.Center, len(centers))
	for _, c := range centers {
		centerByID[c.ID] = c
	}

	first := schedule.FirstDay()
	days := schedule.DaysInMonth()
	last := first.AddDate(0, 0, days-1)

	leaves, lErr := s.leaveRepo.ListApprovedOverlapping(ctx, first, last)
	if lErr != nil {
		err = appErrors.Wrap(lErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leaves")
		return nil, err
	}
	leavesByDoctor := map[string][]models.Leave{}
	for _, l := range leaves {
		leavesByDoctor[l.DoctorID] = append(leavesByDoctor[l.DoctorID], l)
	}

	var loads map[string]*doctorLoad
	var slotCounts map[string]int
	if clearExisting {
		// The deletion above is not committed yet, so a read outside the
		// transaction would still return the old rows; start from empty tallies.
		loads = make(map[string]*doctorLoad, len(doctors))
		for _, d := range doctors {
			loads[d.ID] = &doctorLoad{dates: map[string]bool{}, nightDates: map[string]bool{}}
		}
		slotCounts = map[string]int{}
	} else if loads, slotCounts, err = s.initLoads(ctx, scheduleID, doctors); err != nil {
		return nil, err
	}

	result := &models.BuildResult{}

	for day := 0; day < days; day++ {
		current := first.AddDate(0, 0, day)
		for _, tmpl := range templates {
			slotKey := current.Format("2006-01-02") + "|" + tmpl.CenterID + "|" + tmpl.ShiftID
			existing := slotCounts[slotKey]
			needed := tmpl.MinDoctors - existing
			for n := 0; n < needed; n++ {
				shift, ok := shiftByID[tmpl.ShiftID]
				if !ok {
					continue
				}
				center, ok := centerByID[tmpl.CenterID]
				if !ok || !center.AllowsShiftCode(shift.Code) {
					continue
				}

				doctor := s.findBestDoctor(doctors, loads, leavesByDoctor, shift, current)
				if doctor == nil {
					result.SlotsUnfilled++
					result.AppendWarning(fmt.Sprintf("could not fill %s-%s on %s", center.Code, shift.Code, current.Format("2006-01-02")))
					continue
				}

				assignment := &models.Assignment{
					ScheduleID: scheduleID,
					DoctorID:   doctor.ID,
					CenterID:   tmpl.CenterID,
					ShiftID:    tmpl.ShiftID,
					Date:       current,
				}
				if err = s.assignmentRepo.Create(ctx, tx, assignment); err != nil {
					err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
					return nil, err
				}
				result.AssignmentsCreated++
				slotCounts[slotKey]++

				load := loads[doctor.ID]
				load.hours += shift.Hours
				dateKey := current.Format("2006-01-02")
				load.dates[dateKey] = true
				if shift.IsOvernight {
					load.nightDates[dateKey] = true
				}
			}
		}
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit auto-build transaction")
		return nil, err
	}

	result.Success = result.SlotsUnfilled == 0
	return result, nil
}

// findBestDoctor selects the lowest-scoring eligible candidate for a slot.
// Eligibility: not already assigned that day, not on approved leave, and the
// projected hours must not exceed the doctor's statutory cap. Score is
// current hours plus a 1000-point penalty for a consecutive night shift;
// ties are broken by doctor_id ascending since doctors is pre-sorted.
func (s *AutoBuilderService) findBestDoctor(
	doctors []models.DoctorWithUser,
	loads map[string]*doctorLoad,
	leavesByDoctor map[string][]models.Leave,
	shift models.Shift,
	date time.Time,
) *models.DoctorWithUser {
	dateKey := date.Format("2006-01-02")
	var best *models.DoctorWithUser
	bestScore := 0
	found := false

	for i := range doctors {
		doctor := &doctors[i]
		load := loads[doctor.ID]
		if load.dates[dateKey] {
			continue
		}
		if s.isOnLeave(leavesByDoctor[doctor.ID], date) {
			continue
		}

		projected := load.hours + shift.Hours
		if projected > doctor.MonthlyHoursCap() {
			continue
		}

		score := load.hours
		if shift.IsOvernight {
			prevDay := date.AddDate(0, 0, -1).Format("2006-01-02")
			nextDay := date.AddDate(0, 0, 1).Format("2006-01-02")
			if load.nightDates[prevDay] || load.nightDates[nextDay] {
				score += 1000
			}
		}

		if !found || score < bestScore {
			best = doctor
			bestScore = score
			found = true
		}
	}
	return best
}

func (s *AutoBuilderService) isOnLeave(leaves []models.Leave, date time.Time) bool {
	for _, l := range leaves {
		if l.Covers(date) {
			return true
		}
	}
	return false
}

// initLoads seeds each active doctor's running tallies, and the per-slot fill
// counts, from assignments already persisted for the schedule, so a
// non-clearing top-up build respects prior load and never over-fills a slot
// that a previous pass (or manual edit) already covered.
func (s *AutoBuilderService) initLoads(ctx context.Context, scheduleID string, doctors []models.DoctorWithUser) (map[string]*doctorLoad, map[string]int, error) {
	loads := make(map[string]*doctorLoad, len(doctors))
	for _, d := range doctors {
		loads[d.ID] = &doctorLoad{dates: map[string]bool{}, nightDates: map[string]bool{}}
	}
	slotCounts := map[string]int{}

	existing, err := s.assignmentRepo.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing assignments")
	}
	shifts, err := s.shiftRepo.ListAll(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shifts")
	}
	shiftByID := make(map[string]models.Shift, len(shifts))
	for _, sh := range shifts {
		shiftByID[sh.ID] = sh
	}

	for _, a := range existing {
		dateKey := a.Date.Format("2006-01-02")
		slotCounts[dateKey+"|"+a.CenterID+"|"+a.ShiftID]++

		load, ok := loads[a.DoctorID]
		if !ok {
			continue
		}
		shift, ok := shiftByID[a.ShiftID]
		if !ok {
			continue
		}
		load.hours += shift.Hours
		load.dates[dateKey] = true
		if shift.IsOvernight {
			load.nightDates[dateKey] = true
		}
	}
	return loads, slotCounts, nil
}
