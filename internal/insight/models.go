package insight

// PointType identifies the source of a data point.
type PointType string

const (
	TypeStrength PointType = "strength"
	TypeCardio   PointType = "cardio"
	TypeManual   PointType = "manual"
)

// Metrics carries the numeric signal of a data point. Volume is kg total
// for strength sessions and km distance for everything else. Nil means the
// source carried no value.
type Metrics struct {
	Duration       *float64 `json:"duration,omitempty"`
	Volume         *float64 `json:"volume,omitempty"`
	Intensity      *float64 `json:"intensity,omitempty"`
	Elevation      *float64 `json:"elevation,omitempty"`
	BackpackWeight *float64 `json:"backpackWeight,omitempty"`
}

// Context carries the qualitative signal of a data point.
type Context struct {
	Phase    *string `json:"phase,omitempty"`
	Location *string `json:"location,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// DataPoint is the common projection of strength, cardio and manual
// records. Never persisted; recomputed per analysis run.
type DataPoint struct {
	Date     string    `json:"date"`
	Type     PointType `json:"type"`
	Activity string    `json:"activity"`
	Metrics  Metrics   `json:"metrics"`
	Context  Context   `json:"context"`
}

// InsightType classifies a generated insight.
type InsightType string

const (
	InsightPattern        InsightType = "pattern"
	InsightRecommendation InsightType = "recommendation"
	InsightWarning        InsightType = "warning"
	InsightAchievement    InsightType = "achievement"
)

// Insight is one generated observation over a training window. Data holds
// the supporting subset in a shape specific to the analysis that produced
// it.
type Insight struct {
	Type        InsightType      `json:"type"`
	Confidence  float64          `json:"confidence"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Data        []map[string]any `json:"data"`
	ActionItems []string         `json:"actionItems,omitempty"`
}
