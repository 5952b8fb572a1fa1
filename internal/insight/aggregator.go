package insight

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/summitchronicles/summit-tracker/internal/errors"
	"github.com/summitchronicles/summit-tracker/internal/sqlite"
	"golang.org/x/sync/errgroup"
)

// Aggregator pulls heterogeneous training records for a date range and
// normalizes them into DataPoints.
type Aggregator struct {
	db     *sqlite.Database
	logger *slog.Logger
}

// NewAggregator creates a new training signal aggregator.
func NewAggregator(db *sqlite.Database, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		db:     db,
		logger: logger,
	}
}

// ExtractTrainingData runs the three source queries in parallel and returns
// the combined points sorted ascending by date. Source lists are
// concatenated, not deduplicated; the same day can appear once per source.
func (a *Aggregator) ExtractTrainingData(ctx context.Context, startDate, endDate string) ([]DataPoint, error) {
	var strength, cardio, manual []DataPoint

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		strength, err = a.strengthPoints(gctx, startDate, endDate)
		return err
	})
	g.Go(func() (err error) {
		cardio, err = a.cardioPoints(gctx, startDate, endDate)
		return err
	})
	g.Go(func() (err error) {
		manual, err = a.manualPoints(gctx, startDate, endDate)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extract training data %s..%s: %w", startDate, endDate, err)
	}

	points := make([]DataPoint, 0, len(strength)+len(cardio)+len(manual))
	points = append(points, strength...)
	points = append(points, cardio...)
	points = append(points, manual...)
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})

	return points, nil
}

// strengthPoints collapses all logged sets to one point per day: volume is
// the sum of weight x reps over the day's sets, intensity the mean of the
// logged RPEs.
func (a *Aggregator) strengthPoints(ctx context.Context, startDate, endDate string) (_ []DataPoint, err error) {
	rows, err := a.db.ReadOnly.QueryContext(ctx, `
		SELECT d.date, d.session_type, s.weight_used, s.reps_completed, s.actual_rpe
		FROM actual_sets s
		JOIN exercises e ON e.id = s.exercise_id
		JOIN strength_days d ON d.id = e.strength_day_id
		WHERE d.date >= ? AND d.date <= ?
		ORDER BY d.date`, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("query strength sets: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	type dayAccumulator struct {
		sessionType string
		totalVolume float64
		rpeSum      float64
		rpeCount    int
		setCount    int
	}
	days := make(map[string]*dayAccumulator)
	var order []string

	for rows.Next() {
		var (
			date        string
			sessionType string
			weight      sql.NullFloat64
			reps        sql.NullInt64
			rpe         sql.NullFloat64
		)
		if err = rows.Scan(&date, &sessionType, &weight, &reps, &rpe); err != nil {
			return nil, fmt.Errorf("scan strength set: %w", err)
		}

		day, ok := days[date]
		if !ok {
			day = &dayAccumulator{sessionType: sessionType}
			days[date] = day
			order = append(order, date)
		}
		day.setCount++
		if weight.Valid && reps.Valid && weight.Float64 != 0 && reps.Int64 != 0 {
			day.totalVolume += weight.Float64 * float64(reps.Int64)
		}
		if rpe.Valid && rpe.Float64 != 0 {
			day.rpeSum += rpe.Float64
			day.rpeCount++
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate strength sets: %w", err)
	}

	var points []DataPoint
	for _, date := range order {
		day := days[date]
		notes := fmt.Sprintf("%d exercises completed", day.setCount)
		point := DataPoint{
			Date:     date,
			Type:     TypeStrength,
			Activity: day.sessionType,
			Metrics:  Metrics{Volume: &day.totalVolume},
			Context:  Context{Notes: &notes},
		}
		if day.rpeCount > 0 {
			intensity := day.rpeSum / float64(day.rpeCount)
			point.Metrics.Intensity = &intensity
		}
		points = append(points, point)
	}
	return points, nil
}

// cardioPoints emits one point per synced activity.
func (a *Aggregator) cardioPoints(ctx context.Context, startDate, endDate string) (_ []DataPoint, err error) {
	rows, err := a.db.ReadOnly.QueryContext(ctx, `
		SELECT name, sport_type, start_date, distance_m, moving_time_s,
		       elevation_gain_m, estimated_rpe, training_intensity
		FROM cardio_activities
		WHERE start_date >= ? AND start_date <= ?
		ORDER BY start_date`, startDate, endDate+"T23:59:59Z")
	if err != nil {
		return nil, fmt.Errorf("query cardio activities: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var points []DataPoint
	for rows.Next() {
		var (
			name      string
			sportType string
			startedAt string
			distance  float64
			movingS   int64
			elevation float64
			rpe       sql.NullFloat64
			intensity sql.NullString
		)
		err = rows.Scan(&name, &sportType, &startedAt, &distance, &movingS, &elevation, &rpe, &intensity)
		if err != nil {
			return nil, fmt.Errorf("scan cardio activity: %w", err)
		}

		duration := math.Round(float64(movingS) / 60)
		km := math.Round(distance/1000*10) / 10
		date, _, _ := strings.Cut(startedAt, "T")
		point := DataPoint{
			Date:     date,
			Type:     TypeCardio,
			Activity: name,
			Metrics: Metrics{
				Duration:  &duration,
				Volume:    &km,
				Elevation: &elevation,
			},
			Context: Context{Location: &sportType},
		}
		if rpe.Valid {
			point.Metrics.Intensity = &rpe.Float64
		}
		if intensity.Valid {
			point.Context.Phase = &intensity.String
		}
		points = append(points, point)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cardio activities: %w", err)
	}
	return points, nil
}

// manualPoints emits one point per manual entry with the user-entered units
// copied through.
func (a *Aggregator) manualPoints(ctx context.Context, startDate, endDate string) (_ []DataPoint, err error) {
	rows, err := a.db.ReadOnly.QueryContext(ctx, `
		SELECT date, activity_type, duration_minutes, distance_km, elevation_gain_m,
		       backpack_weight_kg, perceived_effort, notes, location
		FROM manual_training_data
		WHERE date >= ? AND date <= ?
		ORDER BY date`, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("query manual entries: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var points []DataPoint
	for rows.Next() {
		var (
			date         string
			activityType string
			duration     sql.NullFloat64
			distance     sql.NullFloat64
			elevation    sql.NullFloat64
			backpack     sql.NullFloat64
			effort       sql.NullFloat64
			notes        sql.NullString
			location     sql.NullString
		)
		err = rows.Scan(&date, &activityType, &duration, &distance, &elevation,
			&backpack, &effort, &notes, &location)
		if err != nil {
			return nil, fmt.Errorf("scan manual entry: %w", err)
		}

		point := DataPoint{
			Date:     date,
			Type:     TypeManual,
			Activity: activityType,
			Metrics: Metrics{
				Duration:       nullableFloat(duration),
				Volume:         nullableFloat(distance),
				Intensity:      nullableFloat(effort),
				Elevation:      nullableFloat(elevation),
				BackpackWeight: nullableFloat(backpack),
			},
			Context: Context{
				Location: nullableString(location),
				Notes:    nullableString(notes),
			},
		}
		points = append(points, point)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate manual entries: %w", err)
	}
	return points, nil
}

func nullableFloat(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	return &value.Float64
}

func nullableString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	return &value.String
}
