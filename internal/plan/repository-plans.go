package plan

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/summitchronicles/summit-tracker/internal/errors"
	"github.com/summitchronicles/summit-tracker/internal/sqlite"
	"golang.org/x/sync/errgroup"
)

// sqlitePlanRepository persists training plans and everything they own.
type sqlitePlanRepository struct {
	baseRepository
}

func newSQLitePlanRepository(db *sqlite.Database, logger *slog.Logger) *sqlitePlanRepository {
	return &sqlitePlanRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Save inserts a parsed plan with its days, exercises, cardio rows and
// guidelines in a single transaction, so a failure partway through never
// leaves a half-persisted plan. Returns the new plan id.
func (r *sqlitePlanRepository) Save(
	ctx context.Context,
	parsed ParsedPlan,
	fileName string,
	startDate *string,
) (int, error) {
	var endDate *string
	if startDate != nil {
		start, err := time.Parse(time.DateOnly, *startDate)
		if err != nil {
			return 0, fmt.Errorf("parse start date %q: %w", *startDate, err)
		}
		end := start.AddDate(0, 0, 6).Format(time.DateOnly)
		endDate = &end
	}

	var planID int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO training_plans (title, week_number, start_date, end_date, file_name)
			VALUES (?, ?, ?, ?, ?)`,
			parsed.Title, parsed.WeekNumber, startDate, endDate, fileName)
		if err != nil {
			return fmt.Errorf("insert training plan: %w", err)
		}
		if planID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("training plan id: %w", err)
		}

		for _, day := range parsed.StrengthDays {
			if err = insertStrengthDay(ctx, tx, planID, day); err != nil {
				return err
			}
		}
		for _, day := range parsed.CardioDays {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO cardio_days (
					plan_id, day_name, session_type, planned_duration, planned_distance,
					pace_target, hr_target, cadence_cue, warmup, main_set, cooldown, notes
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				planID, day.DayName, day.SessionType, day.PlannedDuration, day.PlannedDistance,
				day.PaceTarget, day.HRTarget, day.CadenceCue, day.Warmup, day.MainSet,
				day.Cooldown, day.Notes)
			if err != nil {
				return fmt.Errorf("insert cardio day: %w", err)
			}
		}
		for _, guideline := range parsed.Guidelines {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO training_guidelines (plan_id, topic, guideline)
				VALUES (?, ?, ?)`,
				planID, guideline.Topic, guideline.Guideline)
			if err != nil {
				return fmt.Errorf("insert guideline: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return int(planID), nil
}

func insertStrengthDay(ctx context.Context, tx *sql.Tx, planID int64, day ParsedStrengthDay) error {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO strength_days (plan_id, date, day_name, session_type)
		VALUES (?, ?, ?, ?)`,
		planID, day.Date, day.DayName, day.SessionType)
	if err != nil {
		return fmt.Errorf("insert strength day: %w", err)
	}
	dayID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("strength day id: %w", err)
	}

	for _, exercise := range day.Exercises {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO exercises (
				strength_day_id, sequence, name, planned_sets, planned_reps, planned_rpe, remarks
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			dayID, exercise.Sequence, exercise.Name, exercise.PlannedSets,
			exercise.PlannedReps, exercise.PlannedRPE, exercise.Remarks)
		if err != nil {
			return fmt.Errorf("insert exercise: %w", err)
		}
	}
	return nil
}

// List retrieves all plans ordered by start date descending, most recent
// first.
func (r *sqlitePlanRepository) List(ctx context.Context) (_ []Plan, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, title, week_number, start_date, end_date, file_name, uploaded_at
		FROM training_plans
		ORDER BY start_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("query training plans: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var plans []Plan
	for rows.Next() {
		var p Plan
		p, err = scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan rows: %w", err)
	}
	return plans, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (Plan, error) {
	var (
		p             Plan
		weekNumber    sql.NullInt64
		startDate     sql.NullString
		endDate       sql.NullString
		fileName      sql.NullString
		uploadedAtStr string
	)
	err := row.Scan(&p.ID, &p.Title, &weekNumber, &startDate, &endDate, &fileName, &uploadedAtStr)
	if err != nil {
		return Plan{}, fmt.Errorf("scan plan row: %w", err)
	}
	p.WeekNumber = nullableInt(weekNumber)
	p.StartDate = nullableString(startDate)
	p.EndDate = nullableString(endDate)
	if fileName.Valid {
		p.FileName = fileName.String
	}
	if p.UploadedAt, err = parseTimestamp(uploadedAtStr); err != nil {
		return Plan{}, err
	}
	return p, nil
}

// Details retrieves a plan with its days, exercises, cardio rows and
// guidelines. The four reads run in parallel; all must succeed.
func (r *sqlitePlanRepository) Details(ctx context.Context, planID int) (PlanDetails, error) {
	var details PlanDetails

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		row := r.db.ReadOnly.QueryRowContext(gctx, `
			SELECT id, title, week_number, start_date, end_date, file_name, uploaded_at
			FROM training_plans
			WHERE id = ?`, planID)
		p, err := scanPlan(row)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("plan %d: %w", planID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		details.Plan = p
		return nil
	})
	g.Go(func() (err error) {
		details.StrengthDays, err = r.strengthDays(gctx, planID)
		return err
	})
	g.Go(func() (err error) {
		details.CardioDays, err = r.cardioDays(gctx, planID)
		return err
	})
	g.Go(func() (err error) {
		details.Guidelines, err = r.guidelines(gctx, planID)
		return err
	})
	if err := g.Wait(); err != nil {
		return PlanDetails{}, err
	}

	return details, nil
}

// strengthDays loads a plan's days ordered by date with their exercises
// nested in sequence order.
func (r *sqlitePlanRepository) strengthDays(ctx context.Context, planID int) (_ []StrengthDay, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT d.id, d.date, d.day_name, d.session_type,
		       e.id, e.sequence, e.name, e.planned_sets, e.planned_reps,
		       e.planned_rpe, e.remarks, e.completed, e.notes
		FROM strength_days d
		LEFT JOIN exercises e ON e.strength_day_id = d.id
		WHERE d.plan_id = ?
		ORDER BY d.date ASC, d.id, e.sequence`, planID)
	if err != nil {
		return nil, fmt.Errorf("query strength days: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var days []StrengthDay
	var current *StrengthDay
	for rows.Next() {
		var (
			day         StrengthDay
			exerciseID  sql.NullInt64
			sequence    sql.NullInt64
			name        sql.NullString
			plannedSets sql.NullInt64
			plannedReps sql.NullString
			plannedRPE  sql.NullFloat64
			remarks     sql.NullString
			completed   sql.NullBool
			notes       sql.NullString
		)
		err = rows.Scan(
			&day.ID, &day.Date, &day.DayName, &day.SessionType,
			&exerciseID, &sequence, &name, &plannedSets, &plannedReps,
			&plannedRPE, &remarks, &completed, &notes)
		if err != nil {
			return nil, fmt.Errorf("scan strength day row: %w", err)
		}

		if current == nil || current.ID != day.ID {
			if current != nil {
				days = append(days, *current)
			}
			current = &day
		}
		if exerciseID.Valid {
			current.Exercises = append(current.Exercises, Exercise{
				ID:          int(exerciseID.Int64),
				Sequence:    int(sequence.Int64),
				Name:        name.String,
				PlannedSets: nullableInt(plannedSets),
				PlannedReps: plannedReps.String,
				PlannedRPE:  nullableFloat(plannedRPE),
				Remarks:     nullableString(remarks),
				Completed:   completed.Bool,
				Notes:       nullableString(notes),
			})
		}
	}
	if current != nil {
		days = append(days, *current)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate strength day rows: %w", err)
	}
	return days, nil
}

func (r *sqlitePlanRepository) cardioDays(ctx context.Context, planID int) (_ []CardioDay, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, day_name, session_type, planned_duration, planned_distance,
		       pace_target, hr_target, cadence_cue, warmup, main_set, cooldown, notes
		FROM cardio_days
		WHERE plan_id = ?
		ORDER BY id`, planID)
	if err != nil {
		return nil, fmt.Errorf("query cardio days: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var days []CardioDay
	for rows.Next() {
		var day CardioDay
		err = rows.Scan(
			&day.ID, &day.DayName, &day.SessionType, &day.PlannedDuration, &day.PlannedDistance,
			&day.PaceTarget, &day.HRTarget, &day.CadenceCue, &day.Warmup, &day.MainSet,
			&day.Cooldown, &day.Notes)
		if err != nil {
			return nil, fmt.Errorf("scan cardio day row: %w", err)
		}
		days = append(days, day)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cardio day rows: %w", err)
	}
	return days, nil
}

func (r *sqlitePlanRepository) guidelines(ctx context.Context, planID int) (_ []Guideline, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, topic, guideline
		FROM training_guidelines
		WHERE plan_id = ?
		ORDER BY id`, planID)
	if err != nil {
		return nil, fmt.Errorf("query guidelines: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var guidelines []Guideline
	for rows.Next() {
		var guideline Guideline
		if err = rows.Scan(&guideline.ID, &guideline.Topic, &guideline.Guideline); err != nil {
			return nil, fmt.Errorf("scan guideline row: %w", err)
		}
		guidelines = append(guidelines, guideline)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate guideline rows: %w", err)
	}
	return guidelines, nil
}
