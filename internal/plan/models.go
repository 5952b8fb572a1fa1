package plan

import "time"

// ParsedPlan is the in-memory result of parsing an uploaded workbook. Dates
// are kept as strings because the source sheets carry year-less values like
// "Sep-08" that resolve against the current year, and unparseable values pass
// through untouched.
type ParsedPlan struct {
	Title        string
	WeekNumber   *int
	StrengthDays []ParsedStrengthDay
	CardioDays   []ParsedCardioDay
	Guidelines   []ParsedGuideline
}

// ParsedStrengthDay is one strength-training day from the workbook.
type ParsedStrengthDay struct {
	Date        string
	DayName     string
	SessionType string
	Exercises   []ParsedExercise
}

// ParsedExercise is one planned exercise row. PlannedRPE keeps the low bound
// when the sheet holds a range like "7-8".
type ParsedExercise struct {
	Sequence    int
	Name        string
	PlannedSets *int
	PlannedReps string
	PlannedRPE  *float64
	Remarks     *string
}

// ParsedCardioDay is one row of the weekly cardio plan. All fields except
// DayName and SessionType are free text defaulting to empty.
type ParsedCardioDay struct {
	DayName         string
	SessionType     string
	PlannedDuration string
	PlannedDistance string
	PaceTarget      string
	HRTarget        string
	CadenceCue      string
	Warmup          string
	MainSet         string
	Cooldown        string
	Notes           string
}

// ParsedGuideline is one topic/guideline pair from the fueling sheet.
type ParsedGuideline struct {
	Topic     string
	Guideline string
}

// Plan is a persisted training plan header.
type Plan struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	WeekNumber *int      `json:"weekNumber"`
	StartDate  *string   `json:"startDate"`
	EndDate    *string   `json:"endDate"`
	FileName   string    `json:"fileName"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// PlanDetails is a plan with everything it owns.
type PlanDetails struct {
	Plan         Plan          `json:"plan"`
	StrengthDays []StrengthDay `json:"strengthDays"`
	CardioDays   []CardioDay   `json:"cardioDays"`
	Guidelines   []Guideline   `json:"guidelines"`
}

// StrengthDay is a persisted strength day. Exercises are ordered by sequence.
type StrengthDay struct {
	ID          int        `json:"id"`
	Date        string     `json:"date"`
	DayName     string     `json:"dayName"`
	SessionType string     `json:"sessionType"`
	Exercises   []Exercise `json:"exercises"`
}

// Exercise is a persisted planned exercise. ActualSets are ordered by set
// number and present only on eagerly loaded reads (TodaysWorkout).
type Exercise struct {
	ID          int         `json:"id"`
	Sequence    int         `json:"sequence"`
	Name        string      `json:"name"`
	PlannedSets *int        `json:"plannedSets"`
	PlannedReps string      `json:"plannedReps"`
	PlannedRPE  *float64    `json:"plannedRpe"`
	Remarks     *string     `json:"remarks"`
	Completed   bool        `json:"completed"`
	Notes       *string     `json:"notes"`
	ActualSets  []ActualSet `json:"actualSets,omitempty"`
}

// ActualSet is one performed set logged during a workout.
type ActualSet struct {
	ID            int       `json:"id"`
	ExerciseID    int       `json:"exerciseId"`
	SetNumber     int       `json:"setNumber"`
	RepsCompleted *int      `json:"repsCompleted"`
	WeightUsed    *float64  `json:"weightUsed"`
	ActualRPE     *float64  `json:"actualRpe"`
	Notes         *string   `json:"notes"`
	LoggedAt      time.Time `json:"loggedAt"`
}

// SetUpdate carries the fields of an actual set that may be changed after
// logging. Nil fields are left untouched.
type SetUpdate struct {
	RepsCompleted *int     `json:"repsCompleted"`
	WeightUsed    *float64 `json:"weightUsed"`
	ActualRPE     *float64 `json:"actualRpe"`
	Notes         *string  `json:"notes"`
}

// CardioDay is a persisted cardio plan row.
type CardioDay struct {
	ID              int    `json:"id"`
	DayName         string `json:"dayName"`
	SessionType     string `json:"sessionType"`
	PlannedDuration string `json:"plannedDuration"`
	PlannedDistance string `json:"plannedDistance"`
	PaceTarget      string `json:"paceTarget"`
	HRTarget        string `json:"hrTarget"`
	CadenceCue      string `json:"cadenceCue"`
	Warmup          string `json:"warmup"`
	MainSet         string `json:"mainSet"`
	Cooldown        string `json:"cooldown"`
	Notes           string `json:"notes"`
}

// Guideline is a persisted fueling or safety guideline.
type Guideline struct {
	ID        int    `json:"id"`
	Topic     string `json:"topic"`
	Guideline string `json:"guideline"`
}

// ManualEntry is a freeform activity log entry not tied to a plan.
type ManualEntry struct {
	ID               int       `json:"id"`
	Date             string    `json:"date"`
	ActivityType     string    `json:"activityType"`
	DurationMinutes  *float64  `json:"durationMinutes"`
	DistanceKm       *float64  `json:"distanceKm"`
	ElevationGainM   *float64  `json:"elevationGainM"`
	BackpackWeightKg *float64  `json:"backpackWeightKg"`
	PerceivedEffort  *float64  `json:"perceivedEffort"`
	Notes            *string   `json:"notes"`
	Location         *string   `json:"location"`
	StrengthDayID    *int      `json:"strengthDayId"`
	LoggedAt         time.Time `json:"loggedAt"`
}

// SetRecord is one actual set joined with its exercise and owning day,
// used for progress charts.
type SetRecord struct {
	ActualSet
	ExerciseName string `json:"exerciseName"`
	Date         string `json:"date"`
	DayName      string `json:"dayName"`
}

// Progress is the chart payload for a date range.
type Progress struct {
	Strength []SetRecord   `json:"strength"`
	Manual   []ManualEntry `json:"manual"`
}
