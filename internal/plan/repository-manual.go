package plan

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/summitchronicles/summit-tracker/internal/errors"
	"github.com/summitchronicles/summit-tracker/internal/sqlite"
)

// sqliteManualRepository stores freeform activity log entries.
type sqliteManualRepository struct {
	baseRepository
}

func newSQLiteManualRepository(db *sqlite.Database, logger *slog.Logger) *sqliteManualRepository {
	return &sqliteManualRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Save inserts a manual entry and returns the stored row.
func (r *sqliteManualRepository) Save(ctx context.Context, entry ManualEntry) (ManualEntry, error) {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO manual_training_data (
			date, activity_type, duration_minutes, distance_km, elevation_gain_m,
			backpack_weight_kg, perceived_effort, notes, location, strength_day_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Date, entry.ActivityType, entry.DurationMinutes, entry.DistanceKm,
		entry.ElevationGainM, entry.BackpackWeightKg, entry.PerceivedEffort,
		entry.Notes, entry.Location, entry.StrengthDayID)
	if err != nil {
		return ManualEntry{}, fmt.Errorf("insert manual entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return ManualEntry{}, fmt.Errorf("manual entry id: %w", err)
	}

	return r.get(ctx, int(id))
}

func (r *sqliteManualRepository) get(ctx context.Context, id int) (ManualEntry, error) {
	row := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, date, activity_type, duration_minutes, distance_km, elevation_gain_m,
		       backpack_weight_kg, perceived_effort, notes, location, strength_day_id, logged_at
		FROM manual_training_data
		WHERE id = ?`, id)
	entry, err := scanManualEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ManualEntry{}, fmt.Errorf("manual entry %d: %w", id, ErrNotFound)
	}
	return entry, err
}

// ListForDate retrieves the entries for one date, most recently logged
// first.
func (r *sqliteManualRepository) ListForDate(ctx context.Context, date string) ([]ManualEntry, error) {
	return r.list(ctx, `
		SELECT id, date, activity_type, duration_minutes, distance_km, elevation_gain_m,
		       backpack_weight_kg, perceived_effort, notes, location, strength_day_id, logged_at
		FROM manual_training_data
		WHERE date = ?
		ORDER BY logged_at DESC`, date)
}

// ListRange retrieves the entries with dates in the inclusive range, oldest
// first.
func (r *sqliteManualRepository) ListRange(ctx context.Context, startDate, endDate string) ([]ManualEntry, error) {
	return r.list(ctx, `
		SELECT id, date, activity_type, duration_minutes, distance_km, elevation_gain_m,
		       backpack_weight_kg, perceived_effort, notes, location, strength_day_id, logged_at
		FROM manual_training_data
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC`, startDate, endDate)
}

func (r *sqliteManualRepository) list(ctx context.Context, query string, args ...any) (_ []ManualEntry, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query manual entries: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var entries []ManualEntry
	for rows.Next() {
		var entry ManualEntry
		entry, err = scanManualEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate manual entry rows: %w", err)
	}
	return entries, nil
}

func scanManualEntry(row rowScanner) (ManualEntry, error) {
	var (
		entry         ManualEntry
		duration      sql.NullFloat64
		distance      sql.NullFloat64
		elevation     sql.NullFloat64
		backpack      sql.NullFloat64
		effort        sql.NullFloat64
		notes         sql.NullString
		location      sql.NullString
		strengthDayID sql.NullInt64
		loggedAtStr   string
	)
	err := row.Scan(
		&entry.ID, &entry.Date, &entry.ActivityType, &duration, &distance, &elevation,
		&backpack, &effort, &notes, &location, &strengthDayID, &loggedAtStr)
	if err != nil {
		return ManualEntry{}, fmt.Errorf("scan manual entry row: %w", err)
	}
	entry.DurationMinutes = nullableFloat(duration)
	entry.DistanceKm = nullableFloat(distance)
	entry.ElevationGainM = nullableFloat(elevation)
	entry.BackpackWeightKg = nullableFloat(backpack)
	entry.PerceivedEffort = nullableFloat(effort)
	entry.Notes = nullableString(notes)
	entry.Location = nullableString(location)
	entry.StrengthDayID = nullableInt(strengthDayID)
	if entry.LoggedAt, err = parseTimestamp(loggedAtStr); err != nil {
		return ManualEntry{}, err
	}
	return entry, nil
}
