package plan

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/summitchronicles/summit-tracker/internal/errors"
	"github.com/summitchronicles/summit-tracker/internal/sqlite"
)

// sqliteWorkoutRepository reads and writes live-workout data: today's day,
// logged sets and completion flags.
type sqliteWorkoutRepository struct {
	baseRepository
}

func newSQLiteWorkoutRepository(db *sqlite.Database, logger *slog.Logger) *sqliteWorkoutRepository {
	return &sqliteWorkoutRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// WorkoutForDate retrieves the most recently created strength day matching
// the date, with exercises and their logged sets eagerly loaded. Returns
// nil when no day matches; absence is not an error here.
func (r *sqliteWorkoutRepository) WorkoutForDate(ctx context.Context, date string) (*StrengthDay, error) {
	var day StrengthDay
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, date, day_name, session_type
		FROM strength_days
		WHERE date = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, date).
		Scan(&day.ID, &day.Date, &day.DayName, &day.SessionType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // absent workout is a nil day, not an error.
	}
	if err != nil {
		return nil, fmt.Errorf("query strength day: %w", err)
	}

	exercises, err := r.loadExercises(ctx, day.ID)
	if err != nil {
		return nil, err
	}
	day.Exercises = exercises

	return &day, nil
}

// loadExercises loads a day's exercises in sequence order with their sets
// nested in set-number order.
func (r *sqliteWorkoutRepository) loadExercises(ctx context.Context, dayID int) (_ []Exercise, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT e.id, e.sequence, e.name, e.planned_sets, e.planned_reps,
		       e.planned_rpe, e.remarks, e.completed, e.notes,
		       s.id, s.set_number, s.reps_completed, s.weight_used, s.actual_rpe,
		       s.notes, s.logged_at
		FROM exercises e
		LEFT JOIN actual_sets s ON s.exercise_id = e.id
		WHERE e.strength_day_id = ?
		ORDER BY e.sequence, e.id, s.set_number`, dayID)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var exercises []Exercise
	var current *Exercise
	for rows.Next() {
		var (
			exercise    Exercise
			plannedSets sql.NullInt64
			plannedRPE  sql.NullFloat64
			remarks     sql.NullString
			notes       sql.NullString
			setID       sql.NullInt64
			setNumber   sql.NullInt64
			reps        sql.NullInt64
			weight      sql.NullFloat64
			actualRPE   sql.NullFloat64
			setNotes    sql.NullString
			loggedAtStr sql.NullString
		)
		err = rows.Scan(
			&exercise.ID, &exercise.Sequence, &exercise.Name, &plannedSets, &exercise.PlannedReps,
			&plannedRPE, &remarks, &exercise.Completed, &notes,
			&setID, &setNumber, &reps, &weight, &actualRPE,
			&setNotes, &loggedAtStr)
		if err != nil {
			return nil, fmt.Errorf("scan exercise row: %w", err)
		}
		exercise.PlannedSets = nullableInt(plannedSets)
		exercise.PlannedRPE = nullableFloat(plannedRPE)
		exercise.Remarks = nullableString(remarks)
		exercise.Notes = nullableString(notes)

		if current == nil || current.ID != exercise.ID {
			if current != nil {
				exercises = append(exercises, *current)
			}
			current = &exercise
		}
		if setID.Valid {
			set := ActualSet{
				ID:            int(setID.Int64),
				ExerciseID:    current.ID,
				SetNumber:     int(setNumber.Int64),
				RepsCompleted: nullableInt(reps),
				WeightUsed:    nullableFloat(weight),
				ActualRPE:     nullableFloat(actualRPE),
				Notes:         nullableString(setNotes),
			}
			if set.LoggedAt, err = parseTimestamp(loggedAtStr.String); err != nil {
				return nil, err
			}
			current.ActualSets = append(current.ActualSets, set)
		}
	}
	if current != nil {
		exercises = append(exercises, *current)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercise rows: %w", err)
	}
	return exercises, nil
}

// LogSet appends an actual set to an exercise. When setNumber is zero the
// database assigns the next ordinal for the exercise; the single write
// connection serialises concurrent submissions so the ordering cannot
// corrupt.
func (r *sqliteWorkoutRepository) LogSet(
	ctx context.Context,
	exerciseID int,
	setNumber int,
	update SetUpdate,
) (ActualSet, error) {
	var setID int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM exercises WHERE id = ?`, exerciseID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("exercise %d: %w", exerciseID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("check exercise: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO actual_sets (exercise_id, set_number, reps_completed, weight_used, actual_rpe, notes)
			VALUES (?,
			        CASE WHEN ? > 0 THEN ?
			             ELSE (SELECT COALESCE(MAX(set_number), 0) + 1
			                   FROM actual_sets WHERE exercise_id = ?)
			        END,
			        ?, ?, ?, ?)`,
			exerciseID, setNumber, setNumber, exerciseID,
			update.RepsCompleted, update.WeightUsed, update.ActualRPE, update.Notes)
		if err != nil {
			return fmt.Errorf("insert actual set: %w", err)
		}
		if setID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("actual set id: %w", err)
		}
		return nil
	})
	if err != nil {
		return ActualSet{}, err
	}

	return r.getSet(ctx, int(setID))
}

// UpdateSet overwrites the given fields of a logged set and returns the
// updated row. Nil fields are left as they were.
func (r *sqliteWorkoutRepository) UpdateSet(ctx context.Context, setID int, update SetUpdate) (ActualSet, error) {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE actual_sets
		SET reps_completed = COALESCE(?, reps_completed),
		    weight_used    = COALESCE(?, weight_used),
		    actual_rpe     = COALESCE(?, actual_rpe),
		    notes          = COALESCE(?, notes)
		WHERE id = ?`,
		update.RepsCompleted, update.WeightUsed, update.ActualRPE, update.Notes, setID)
	if err != nil {
		return ActualSet{}, fmt.Errorf("update actual set: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return ActualSet{}, fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ActualSet{}, fmt.Errorf("actual set %d: %w", setID, ErrNotFound)
	}

	return r.getSet(ctx, setID)
}

func (r *sqliteWorkoutRepository) getSet(ctx context.Context, setID int) (ActualSet, error) {
	var (
		set         ActualSet
		reps        sql.NullInt64
		weight      sql.NullFloat64
		actualRPE   sql.NullFloat64
		notes       sql.NullString
		loggedAtStr string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, exercise_id, set_number, reps_completed, weight_used, actual_rpe, notes, logged_at
		FROM actual_sets
		WHERE id = ?`, setID).
		Scan(&set.ID, &set.ExerciseID, &set.SetNumber, &reps, &weight, &actualRPE, &notes, &loggedAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return ActualSet{}, fmt.Errorf("actual set %d: %w", setID, ErrNotFound)
	}
	if err != nil {
		return ActualSet{}, fmt.Errorf("query actual set: %w", err)
	}
	set.RepsCompleted = nullableInt(reps)
	set.WeightUsed = nullableFloat(weight)
	set.ActualRPE = nullableFloat(actualRPE)
	set.Notes = nullableString(notes)
	if set.LoggedAt, err = parseTimestamp(loggedAtStr); err != nil {
		return ActualSet{}, err
	}
	return set, nil
}

// CompleteExercise marks an exercise done and stores the notes. It does not
// require that any sets were logged first.
func (r *sqliteWorkoutRepository) CompleteExercise(ctx context.Context, exerciseID int, notes *string) (Exercise, error) {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE exercises
		SET completed = 1, notes = ?
		WHERE id = ?`, notes, exerciseID)
	if err != nil {
		return Exercise{}, fmt.Errorf("complete exercise: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return Exercise{}, fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return Exercise{}, fmt.Errorf("exercise %d: %w", exerciseID, ErrNotFound)
	}

	var (
		exercise    Exercise
		plannedSets sql.NullInt64
		plannedRPE  sql.NullFloat64
		remarks     sql.NullString
		storedNotes sql.NullString
	)
	err = r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, sequence, name, planned_sets, planned_reps, planned_rpe, remarks, completed, notes
		FROM exercises
		WHERE id = ?`, exerciseID).
		Scan(&exercise.ID, &exercise.Sequence, &exercise.Name, &plannedSets, &exercise.PlannedReps,
			&plannedRPE, &remarks, &exercise.Completed, &storedNotes)
	if err != nil {
		return Exercise{}, fmt.Errorf("query exercise: %w", err)
	}
	exercise.PlannedSets = nullableInt(plannedSets)
	exercise.PlannedRPE = nullableFloat(plannedRPE)
	exercise.Remarks = nullableString(remarks)
	exercise.Notes = nullableString(storedNotes)
	return exercise, nil
}

// SetRecords retrieves logged sets joined with their exercise name and
// owning day for the inclusive date range, ordered by day date ascending.
func (r *sqliteWorkoutRepository) SetRecords(ctx context.Context, startDate, endDate string) (_ []SetRecord, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT s.id, s.exercise_id, s.set_number, s.reps_completed, s.weight_used,
		       s.actual_rpe, s.notes, s.logged_at,
		       e.name, d.date, d.day_name
		FROM actual_sets s
		JOIN exercises e ON e.id = s.exercise_id
		JOIN strength_days d ON d.id = e.strength_day_id
		WHERE d.date >= ? AND d.date <= ?
		ORDER BY d.date ASC, s.id`, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("query set records: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var records []SetRecord
	for rows.Next() {
		var (
			record      SetRecord
			reps        sql.NullInt64
			weight      sql.NullFloat64
			actualRPE   sql.NullFloat64
			notes       sql.NullString
			loggedAtStr string
		)
		err = rows.Scan(
			&record.ID, &record.ExerciseID, &record.SetNumber, &reps, &weight,
			&actualRPE, &notes, &loggedAtStr,
			&record.ExerciseName, &record.Date, &record.DayName)
		if err != nil {
			return nil, fmt.Errorf("scan set record: %w", err)
		}
		record.RepsCompleted = nullableInt(reps)
		record.WeightUsed = nullableFloat(weight)
		record.ActualRPE = nullableFloat(actualRPE)
		record.Notes = nullableString(notes)
		if record.LoggedAt, err = parseTimestamp(loggedAtStr); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate set records: %w", err)
	}
	return records, nil
}
