package insight_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/summitchronicles/summit-tracker/internal/insight"
	"github.com/summitchronicles/summit-tracker/internal/ptr"
)

// point builds a manual data point with an optional RPE.
func point(date string, rpe float64) insight.DataPoint {
	p := insight.DataPoint{
		Date:     date,
		Type:     insight.TypeManual,
		Activity: "hiking",
	}
	if rpe != 0 {
		p.Metrics.Intensity = ptr.Ref(rpe)
	}
	return p
}

func findInsight(insights []insight.Insight, title string) *insight.Insight {
	for i := range insights {
		if insights[i].Title == title {
			return &insights[i]
		}
	}
	return nil
}

func TestGenerateInsights_isIdempotent(t *testing.T) {
	points := []insight.DataPoint{
		point("2025-09-01", 8),
		point("2025-09-02", 9),
		point("2025-09-03", 8),
		point("2025-09-04", 8.5),
		point("2025-09-05", 3),
		point("2025-09-08", 6),
	}

	first := insight.GenerateInsights(points)
	second := insight.GenerateInsights(points)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated runs differ (-first +second):\n%s", diff)
	}

	// Confidence must be non-increasing down the list.
	for i := 1; i < len(first); i++ {
		if first[i].Confidence > first[i-1].Confidence {
			t.Errorf("insights not sorted by confidence: %v before %v",
				first[i-1].Confidence, first[i].Confidence)
		}
	}
}

func TestGenerateInsights_consistencyThresholds(t *testing.T) {
	// Five dates within one ISO week gives exactly 5.0 activities/week.
	weekOfFive := []insight.DataPoint{
		point("2025-09-01", 0),
		point("2025-09-02", 0),
		point("2025-09-03", 0),
		point("2025-09-04", 0),
		point("2025-09-05", 0),
	}

	insights := insight.GenerateInsights(weekOfFive)
	achievement := findInsight(insights, "Excellent Training Consistency")
	if achievement == nil {
		t.Fatal("expected consistency achievement at 5.0 activities/week")
	}
	if achievement.Type != insight.InsightAchievement || achievement.Confidence != 0.9 {
		t.Errorf("achievement = %s %.2f", achievement.Type, achievement.Confidence)
	}

	// 5 activities over two ISO weeks is 2.5/week, below the warning line.
	twoWeeks := []insight.DataPoint{
		point("2025-09-01", 0),
		point("2025-09-03", 0),
		point("2025-09-05", 0),
		point("2025-09-08", 0),
		point("2025-09-10", 0),
	}
	insights = insight.GenerateInsights(twoWeeks)
	warning := findInsight(insights, "Consistency Opportunity")
	if warning == nil {
		t.Fatal("expected consistency warning at 2.5 activities/week")
	}
	if warning.Type != insight.InsightWarning || warning.Confidence != 0.8 {
		t.Errorf("warning = %s %.2f", warning.Type, warning.Confidence)
	}

	// 4.0/week sits between the thresholds: neither insight fires.
	twoWeeksOfFour := []insight.DataPoint{
		point("2025-09-01", 0),
		point("2025-09-02", 0),
		point("2025-09-03", 0),
		point("2025-09-04", 0),
		point("2025-09-08", 0),
		point("2025-09-09", 0),
		point("2025-09-10", 0),
		point("2025-09-11", 0),
	}
	insights = insight.GenerateInsights(twoWeeksOfFour)
	if findInsight(insights, "Excellent Training Consistency") != nil ||
		findInsight(insights, "Consistency Opportunity") != nil {
		t.Error("no consistency insight should fire at 4.0 activities/week")
	}
}

func TestGenerateInsights_intensityBucketsAreExclusive(t *testing.T) {
	// 20 points: 7 hard (35%), 4 easy (20%), 9 moderate. Both thresholds
	// are breached but only the warning may fire.
	var points []insight.DataPoint
	dates := []string{
		"2025-09-01", "2025-09-02", "2025-09-03", "2025-09-04", "2025-09-05",
		"2025-09-06", "2025-09-07", "2025-09-08", "2025-09-09", "2025-09-10",
		"2025-09-11", "2025-09-12", "2025-09-13", "2025-09-14", "2025-09-15",
		"2025-09-16", "2025-09-17", "2025-09-18", "2025-09-19", "2025-09-20",
	}
	rpes := []float64{9, 9, 9, 9, 9, 9, 9, 3, 3, 3, 3, 6, 6, 6, 6, 6, 6, 6, 6, 6}
	for i, date := range dates {
		points = append(points, point(date, rpes[i]))
	}

	insights := insight.GenerateInsights(points)
	if findInsight(insights, "High Intensity Warning") == nil {
		t.Error("expected high intensity warning at 35% hard")
	}
	if findInsight(insights, "Add More Base Training") != nil {
		t.Error("base training recommendation must not fire together with the warning")
	}
}

func TestGenerateInsights_recoverySpacing(t *testing.T) {
	// Four adjacent same-day-apart high-intensity pairs.
	points := []insight.DataPoint{
		point("2025-09-01", 8),
		point("2025-09-02", 9),
		point("2025-09-03", 8),
		point("2025-09-04", 8.5),
		point("2025-09-05", 9),
	}

	insights := insight.GenerateInsights(points)
	warning := findInsight(insights, "Insufficient Recovery Time")
	if warning == nil {
		t.Fatal("expected recovery warning for stacked high-intensity days")
	}
	if warning.Confidence != 0.9 {
		t.Errorf("confidence = %.2f, want 0.9", warning.Confidence)
	}

	// Two pairs separated by an easy day stay under the threshold.
	spaced := []insight.DataPoint{
		point("2025-09-01", 8),
		point("2025-09-02", 9),
		point("2025-09-03", 3),
		point("2025-09-04", 8),
		point("2025-09-05", 9),
	}
	insights = insight.GenerateInsights(spaced)
	if findInsight(insights, "Insufficient Recovery Time") != nil {
		t.Error("recovery warning must need more than 2 adjacent pairs")
	}
}

func TestGenerateInsights_backpackGating(t *testing.T) {
	// No backpack data at all: exactly the standalone recommendation.
	bare := []insight.DataPoint{
		point("2025-09-01", 5),
		point("2025-09-02", 6),
	}
	insights := insight.GenerateInsights(bare)
	rec := findInsight(insights, "Add Pack Weight Training")
	if rec == nil {
		t.Fatal("expected pack weight recommendation with no weighted points")
	}
	if rec.Confidence != 0.9 || rec.Type != insight.InsightRecommendation {
		t.Errorf("recommendation = %s %.2f", rec.Type, rec.Confidence)
	}
	if findInsight(insights, "Strong Pack Weight Progression") != nil ||
		findInsight(insights, "Increase Pack Weight Training") != nil {
		t.Error("no other load-bearing insight may fire without weighted points")
	}

	// Five weighted points with max 22kg: the achievement fires instead.
	weighted := func(date string, kg float64) insight.DataPoint {
		p := point(date, 0)
		p.Metrics.BackpackWeight = ptr.Ref(kg)
		return p
	}
	loaded := []insight.DataPoint{
		weighted("2025-09-01", 12),
		weighted("2025-09-03", 14),
		weighted("2025-09-05", 16),
		weighted("2025-09-08", 18),
		weighted("2025-09-10", 22),
	}
	insights = insight.GenerateInsights(loaded)
	achievement := findInsight(insights, "Strong Pack Weight Progression")
	if achievement == nil {
		t.Fatal("expected pack weight achievement at 22kg max")
	}
	if achievement.Confidence != 0.85 {
		t.Errorf("confidence = %.2f, want 0.85", achievement.Confidence)
	}
	if findInsight(insights, "Add Pack Weight Training") != nil {
		t.Error("standalone recommendation must not fire with 5 weighted points")
	}
}

func TestGenerateInsights_volumeProgression(t *testing.T) {
	strength := func(date string, volume float64) insight.DataPoint {
		return insight.DataPoint{
			Date:     date,
			Type:     insight.TypeStrength,
			Activity: "Strength",
			Metrics:  insight.Metrics{Volume: ptr.Ref(volume)},
		}
	}

	rising := []insight.DataPoint{
		strength("2025-09-01", 1000),
		strength("2025-09-08", 2000),
		strength("2025-09-15", 4000),
	}
	insights := insight.GenerateInsights(rising)
	if findInsight(insights, "Positive Volume Progression") == nil {
		t.Error("expected positive volume progression for rising weekly volume")
	}

	falling := []insight.DataPoint{
		strength("2025-09-01", 4000),
		strength("2025-09-08", 2000),
		strength("2025-09-15", 1000),
	}
	insights = insight.GenerateInsights(falling)
	if findInsight(insights, "Declining Training Volume") == nil {
		t.Error("expected declining volume warning for falling weekly volume")
	}

	// Fewer than 3 weeks of data stays silent.
	short := []insight.DataPoint{
		strength("2025-09-01", 1000),
		strength("2025-09-08", 4000),
	}
	insights = insight.GenerateInsights(short)
	if findInsight(insights, "Positive Volume Progression") != nil ||
		findInsight(insights, "Declining Training Volume") != nil {
		t.Error("volume analysis needs at least 3 weeks of data")
	}
}

func TestGenerateInsights_weekKeyGroupsMondayThroughSunday(t *testing.T) {
	// Monday 2025-09-01 and Sunday 2025-09-07 share an ISO week, so 5
	// activities across them count as one week at 5.0/week.
	points := []insight.DataPoint{
		point("2025-09-01", 0),
		point("2025-09-02", 0),
		point("2025-09-04", 0),
		point("2025-09-06", 0),
		point("2025-09-07", 0),
	}

	insights := insight.GenerateInsights(points)
	achievement := findInsight(insights, "Excellent Training Consistency")
	if achievement == nil {
		t.Fatal("expected a single-week grouping for Monday..Sunday dates")
	}
	if len(achievement.Data) != 1 {
		t.Errorf("expected 1 week bucket, got %d", len(achievement.Data))
	}
}
