package strava

import (
	"math"
	"strings"
)

// Activity is the wire shape of a Strava activity, limited to the fields
// the tracker consumes.
type Activity struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	Type               string   `json:"type"`
	SportType          string   `json:"sport_type"`
	StartDate          string   `json:"start_date"`
	Distance           float64  `json:"distance"`
	MovingTime         int64    `json:"moving_time"`
	TotalElevationGain float64  `json:"total_elevation_gain"`
	AverageHeartrate   *float64 `json:"average_heartrate"`
	MaxHeartrate       *float64 `json:"max_heartrate"`
	Calories           *float64 `json:"calories"`
	SufferScore        *float64 `json:"suffer_score"`
	WorkoutType        *int     `json:"workout_type"`
}

// NormalizedActivity is the adapter shape stored locally. One explicit
// adapter per source replaces the optional-field guessing the raw wire
// shape would force on every consumer.
type NormalizedActivity struct {
	ID                int64
	Name              string
	SportType         string
	StartDate         string
	DistanceM         float64
	MovingTimeS       int64
	ElevationGainM    float64
	AverageHeartrate  *float64
	MaxHeartrate      *float64
	Calories          *float64
	EstimatedRPE      float64
	TrainingIntensity string
}

// Normalize categorizes an activity and estimates its training intensity
// and RPE from whatever metrics the record carries.
func Normalize(activity Activity) NormalizedActivity {
	sportType := activity.SportType
	if sportType == "" {
		sportType = activity.Type
	}

	intensity := estimateIntensity(activity)
	return NormalizedActivity{
		ID:                activity.ID,
		Name:              activity.Name,
		SportType:         sportType,
		StartDate:         activity.StartDate,
		DistanceM:         activity.Distance,
		MovingTimeS:       activity.MovingTime,
		ElevationGainM:    activity.TotalElevationGain,
		AverageHeartrate:  activity.AverageHeartrate,
		MaxHeartrate:      activity.MaxHeartrate,
		Calories:          activity.Calories,
		EstimatedRPE:      estimateRPE(activity, sportType, intensity),
		TrainingIntensity: intensity,
	}
}

// estimateIntensity buckets an activity into easy/moderate/hard/recovery
// using the suffer score when Strava provides one, then the workout type,
// then keywords in the activity name.
func estimateIntensity(activity Activity) string {
	if activity.SufferScore != nil {
		switch score := *activity.SufferScore; {
		case score < 30:
			return "easy"
		case score < 60:
			return "moderate"
		default:
			return "hard"
		}
	}

	if activity.WorkoutType != nil {
		switch *activity.WorkoutType {
		case 11: // race
			return "hard"
		case 12: // long run
			return "moderate"
		}
	}

	name := strings.ToLower(activity.Name)
	switch {
	case strings.Contains(name, "recovery") || strings.Contains(name, "easy") || strings.Contains(name, "walk"):
		return "recovery"
	case strings.Contains(name, "tempo") || strings.Contains(name, "threshold") || strings.Contains(name, "race"):
		return "hard"
	case strings.Contains(name, "long") || strings.Contains(name, "endurance"):
		return "moderate"
	}
	return "moderate"
}

// estimateRPE maps the intensity bucket to a base RPE and nudges it for
// load-bearing sports, big elevation and long duration, clamped to 1..10.
func estimateRPE(activity Activity, sportType, intensity string) float64 {
	baseRPE := map[string]float64{
		"recovery": 3,
		"easy":     5,
		"moderate": 7,
		"hard":     9,
	}[intensity]
	if baseRPE == 0 {
		baseRPE = 6
	}

	var adjustment float64
	if strings.Contains(sportType, "Climb") || sportType == "Hike" {
		adjustment++
	}
	if activity.TotalElevationGain > 500 {
		adjustment += 0.5
	}
	if activity.MovingTime > 7200 {
		adjustment += 0.5
	}

	return math.Min(10, math.Max(1, math.Round(baseRPE+adjustment)))
}
