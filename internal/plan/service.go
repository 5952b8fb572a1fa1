package plan

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/summitchronicles/summit-tracker/internal/sqlite"
	"golang.org/x/sync/errgroup"
)

// Service handles the business logic for training plans and live workouts.
type Service struct {
	repo   *repository
	logger *slog.Logger
}

// NewService creates a new plan service.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	factory := newRepositoryFactory(db, logger)
	return &Service{
		repo:   factory.newRepository(),
		logger: logger,
	}
}

// ImportWorkbook parses an uploaded workbook and persists the result as a
// new plan. An empty parse is persisted as-is; callers should treat a plan
// without days as a possible wrong-file signal.
func (s *Service) ImportWorkbook(
	ctx context.Context,
	workbook []byte,
	fileName string,
	startDate *string,
) (ParsedPlan, int, error) {
	parsed, err := Parse(workbook)
	if err != nil {
		return ParsedPlan{}, 0, fmt.Errorf("parse workbook %s: %w", fileName, err)
	}

	planID, err := s.SaveTrainingPlan(ctx, parsed, fileName, startDate)
	if err != nil {
		return ParsedPlan{}, 0, err
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "imported training plan",
		slog.Int("plan_id", planID),
		slog.String("file_name", fileName),
		slog.Int("strength_days", len(parsed.StrengthDays)),
		slog.Int("cardio_days", len(parsed.CardioDays)))

	return parsed, planID, nil
}

// SaveTrainingPlan persists an already-parsed plan in a single transaction
// and returns the new plan id. When startDate is set the plan's end date is
// derived as six days later.
func (s *Service) SaveTrainingPlan(
	ctx context.Context,
	parsed ParsedPlan,
	fileName string,
	startDate *string,
) (int, error) {
	planID, err := s.repo.plans.Save(ctx, parsed, fileName, startDate)
	if err != nil {
		return 0, fmt.Errorf("save plan %s: %w", fileName, err)
	}
	return planID, nil
}

// TrainingPlans lists all plans, most recent first.
func (s *Service) TrainingPlans(ctx context.Context) ([]Plan, error) {
	plans, err := s.repo.plans.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// TrainingPlanDetails retrieves one plan with everything it owns.
func (s *Service) TrainingPlanDetails(ctx context.Context, planID int) (PlanDetails, error) {
	details, err := s.repo.plans.Details(ctx, planID)
	if err != nil {
		return PlanDetails{}, fmt.Errorf("plan details %d: %w", planID, err)
	}
	return details, nil
}

// TodaysWorkout retrieves the strength day for a date with exercises and
// logged sets, or nil when there is none.
func (s *Service) TodaysWorkout(ctx context.Context, date string) (*StrengthDay, error) {
	day, err := s.repo.workouts.WorkoutForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("workout for %s: %w", date, err)
	}
	return day, nil
}

// LogActualSet appends a performed set to an exercise. A zero setNumber
// lets storage assign the next ordinal.
func (s *Service) LogActualSet(ctx context.Context, exerciseID, setNumber int, update SetUpdate) (ActualSet, error) {
	set, err := s.repo.workouts.LogSet(ctx, exerciseID, setNumber, update)
	if err != nil {
		return ActualSet{}, fmt.Errorf("log set for exercise %d: %w", exerciseID, err)
	}
	return set, nil
}

// UpdateActualSet changes the given fields of a logged set.
func (s *Service) UpdateActualSet(ctx context.Context, setID int, update SetUpdate) (ActualSet, error) {
	set, err := s.repo.workouts.UpdateSet(ctx, setID, update)
	if err != nil {
		return ActualSet{}, fmt.Errorf("update set %d: %w", setID, err)
	}
	return set, nil
}

// MarkExerciseCompleted flags an exercise done with optional notes.
func (s *Service) MarkExerciseCompleted(ctx context.Context, exerciseID int, notes *string) (Exercise, error) {
	exercise, err := s.repo.workouts.CompleteExercise(ctx, exerciseID, notes)
	if err != nil {
		return Exercise{}, fmt.Errorf("complete exercise %d: %w", exerciseID, err)
	}
	return exercise, nil
}

// SaveManualEntry records a freeform activity log entry.
func (s *Service) SaveManualEntry(ctx context.Context, entry ManualEntry) (ManualEntry, error) {
	saved, err := s.repo.manual.Save(ctx, entry)
	if err != nil {
		return ManualEntry{}, fmt.Errorf("save manual entry: %w", err)
	}
	return saved, nil
}

// ManualEntries lists the manual entries for one date, most recent first.
func (s *Service) ManualEntries(ctx context.Context, date string) ([]ManualEntry, error) {
	entries, err := s.repo.manual.ListForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("manual entries for %s: %w", date, err)
	}
	return entries, nil
}

// TrainingProgress retrieves the chart payload for an inclusive date range.
// The strength and manual reads are independent and run in parallel.
func (s *Service) TrainingProgress(ctx context.Context, startDate, endDate string) (Progress, error) {
	var progress Progress

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		progress.Strength, err = s.repo.workouts.SetRecords(gctx, startDate, endDate)
		return err
	})
	g.Go(func() (err error) {
		progress.Manual, err = s.repo.manual.ListRange(gctx, startDate, endDate)
		return err
	})
	if err := g.Wait(); err != nil {
		return Progress{}, fmt.Errorf("training progress %s..%s: %w", startDate, endDate, err)
	}

	return progress, nil
}
