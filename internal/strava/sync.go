package strava

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/summitchronicles/summit-tracker/internal/sqlite"
)

const syncPageSize = 50

// Syncer pulls recent activities from the API and upserts them into the
// cardio_activities table the aggregator reads.
type Syncer struct {
	client *Client
	db     *sqlite.Database
	logger *slog.Logger
}

// NewSyncer creates a syncer over the given client and database.
func NewSyncer(client *Client, db *sqlite.Database, logger *slog.Logger) *Syncer {
	return &Syncer{
		client: client,
		db:     db,
		logger: logger,
	}
}

// Configured reports whether syncing can work at all.
func (s *Syncer) Configured() bool {
	return s.client.Configured()
}

// Sync fetches activity pages until the API runs dry or maxActivities is
// reached, storing each activity keyed by its Strava id so repeated syncs
// update rather than duplicate. Returns the number of activities stored.
func (s *Syncer) Sync(ctx context.Context, maxActivities int) (int, error) {
	if !s.Configured() {
		return 0, ErrNotConfigured
	}
	if maxActivities <= 0 {
		maxActivities = syncPageSize
	}

	stored := 0
	for page := 1; stored < maxActivities; page++ {
		perPage := min(syncPageSize, maxActivities-stored)
		activities, err := s.client.Activities(ctx, page, perPage)
		if err != nil {
			return stored, fmt.Errorf("fetch activities page %d: %w", page, err)
		}
		if len(activities) == 0 {
			break
		}

		for _, activity := range activities {
			if err = s.store(ctx, Normalize(activity)); err != nil {
				return stored, err
			}
			stored++
		}
		if len(activities) < perPage {
			break
		}
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "synced strava activities",
		slog.Int("count", stored))
	return stored, nil
}

func (s *Syncer) store(ctx context.Context, activity NormalizedActivity) error {
	_, err := s.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO cardio_activities (
			id, name, sport_type, start_date, distance_m, moving_time_s,
			elevation_gain_m, average_heartrate, max_heartrate, calories,
			estimated_rpe, training_intensity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			sport_type = excluded.sport_type,
			start_date = excluded.start_date,
			distance_m = excluded.distance_m,
			moving_time_s = excluded.moving_time_s,
			elevation_gain_m = excluded.elevation_gain_m,
			average_heartrate = excluded.average_heartrate,
			max_heartrate = excluded.max_heartrate,
			calories = excluded.calories,
			estimated_rpe = excluded.estimated_rpe,
			training_intensity = excluded.training_intensity,
			synced_at = STRFTIME('%Y-%m-%dT%H:%M:%fZ', 'now')`,
		activity.ID, activity.Name, activity.SportType, activity.StartDate,
		activity.DistanceM, activity.MovingTimeS, activity.ElevationGainM,
		activity.AverageHeartrate, activity.MaxHeartrate, activity.Calories,
		activity.EstimatedRPE, activity.TrainingIntensity)
	if err != nil {
		return fmt.Errorf("store activity %d: %w", activity.ID, err)
	}
	return nil
}
