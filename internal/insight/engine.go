package insight

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// GenerateInsights runs the five analyses over the points and returns the
// results ordered by confidence descending. The function is pure: calling
// it twice with the same input yields identical output.
func GenerateInsights(points []DataPoint) []Insight {
	sorted := make([]DataPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	var insights []Insight
	insights = append(insights, analyzeConsistency(sorted)...)
	insights = append(insights, analyzeVolumeProgression(sorted)...)
	insights = append(insights, analyzeIntensityDistribution(sorted)...)
	insights = append(insights, analyzeRecoveryPatterns(sorted)...)
	insights = append(insights, analyzeLoadBearingReadiness(sorted)...)

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Confidence > insights[j].Confidence
	})
	return insights
}

type week struct {
	key    string
	points []DataPoint
}

// groupByWeek buckets points by ISO week, preserving first-seen order.
func groupByWeek(points []DataPoint) []week {
	index := make(map[string]int)
	var weeks []week
	for _, point := range points {
		key, ok := weekKey(point.Date)
		if !ok {
			continue
		}
		i, seen := index[key]
		if !seen {
			i = len(weeks)
			index[key] = i
			weeks = append(weeks, week{key: key})
		}
		weeks[i].points = append(weeks[i].points, point)
	}
	return weeks
}

// weekKey derives the grouping key from a date using the ISO-8601 week
// numbering, where a week belongs to the year of its Thursday.
func weekKey(date string) (string, bool) {
	parsed, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return "", false
	}
	year, weekNumber := parsed.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, weekNumber), true
}

func analyzeConsistency(points []DataPoint) []Insight {
	weeks := groupByWeek(points)
	if len(weeks) == 0 {
		return nil
	}

	total := 0
	for _, w := range weeks {
		total += len(w.points)
	}
	average := float64(total) / float64(len(weeks))

	data := make([]map[string]any, 0, len(weeks))
	for _, w := range weeks {
		data = append(data, map[string]any{"week": w.points[0].Date, "activities": len(w.points)})
	}

	switch {
	case average >= 5:
		return []Insight{{
			Type:       InsightAchievement,
			Confidence: 0.9,
			Title:      "Excellent Training Consistency",
			Description: fmt.Sprintf(
				"Maintaining %.1f activities per week shows exceptional commitment to Seven Summits preparation.",
				average),
			Data: data,
			ActionItems: []string{
				"Continue current consistency",
				"Consider adding one recovery session per week",
			},
		}}
	case average < 3:
		return []Insight{{
			Type:       InsightWarning,
			Confidence: 0.8,
			Title:      "Consistency Opportunity",
			Description: fmt.Sprintf(
				"Average %.1f activities per week may limit Seven Summits preparation progress.",
				average),
			Data: data,
			ActionItems: []string{
				"Aim for 4-5 activities per week",
				"Schedule training sessions in advance",
				"Include shorter sessions on busy days",
			},
		}}
	default:
		return nil
	}
}

func analyzeVolumeProgression(points []DataPoint) []Insight {
	type weeklyVolume struct {
		strength float64
		cardio   float64
	}
	index := make(map[string]int)
	var keys []string
	var volumes []weeklyVolume
	for _, point := range points {
		key, ok := weekKey(point.Date)
		if !ok {
			continue
		}
		i, seen := index[key]
		if !seen {
			i = len(volumes)
			index[key] = i
			keys = append(keys, key)
			volumes = append(volumes, weeklyVolume{})
		}
		switch {
		case point.Type == TypeStrength && nonzero(point.Metrics.Volume):
			volumes[i].strength += *point.Metrics.Volume
		case (point.Type == TypeCardio || point.Type == TypeManual) && nonzero(point.Metrics.Duration):
			volumes[i].cardio += *point.Metrics.Duration
		}
	}
	if len(volumes) < 3 {
		return nil
	}

	// Weeks in chronological key order for the trend.
	ordered := make([]string, len(keys))
	copy(ordered, keys)
	sort.Strings(ordered)

	totals := make([]float64, len(ordered))
	data := make([]map[string]any, len(ordered))
	for i, key := range ordered {
		v := volumes[index[key]]
		totals[i] = v.strength + v.cardio
		data[i] = map[string]any{
			"week":     key,
			"strength": v.strength,
			"cardio":   v.cardio,
			"total":    totals[i],
		}
	}

	trend := normalizedTrend(totals)
	switch {
	case trend > 0.1:
		return []Insight{{
			Type:       InsightPattern,
			Confidence: 0.85,
			Title:      "Positive Volume Progression",
			Description: "Training volume is increasing consistently, " +
				"indicating good periodization for Seven Summits preparation.",
			Data: data,
			ActionItems: []string{
				"Monitor for overreaching symptoms",
				"Plan deload weeks every 3-4 weeks",
			},
		}}
	case trend < -0.1:
		return []Insight{{
			Type:       InsightWarning,
			Confidence: 0.75,
			Title:      "Declining Training Volume",
			Description: "Training volume has been decreasing, " +
				"which may impact Seven Summits preparation progress.",
			Data: data,
			ActionItems: []string{
				"Identify barriers to training",
				"Gradually increase weekly volume",
				"Focus on consistency before intensity",
			},
		}}
	default:
		return nil
	}
}

// normalizedTrend is the least-squares slope divided by the mean, a
// dimensionless growth-rate proxy rather than a literal unit/week slope.
func normalizedTrend(values []float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 0
	}

	sumX := n * (n + 1) / 2
	sumXX := n * (n + 1) * (2*n + 1) / 6
	var sumY, sumXY float64
	for i, y := range values {
		sumY += y
		sumXY += float64(i+1) * y
	}

	slope := (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)
	return slope / (sumY / n)
}

func analyzeIntensityDistribution(points []DataPoint) []Insight {
	var easy, moderate, hard, total int
	for _, point := range points {
		if !nonzero(point.Metrics.Intensity) {
			continue
		}
		total++
		switch rpe := *point.Metrics.Intensity; {
		case rpe <= 4:
			easy++
		case rpe <= 7:
			moderate++
		default:
			hard++
		}
	}
	if total < 5 {
		return nil
	}

	easyPercentage := float64(easy) / float64(total) * 100
	hardPercentage := float64(hard) / float64(total) * 100
	data := []map[string]any{{"easy": easy, "moderate": moderate, "hard": hard}}

	// 80/20 rule: the warning takes precedence over the base-training
	// recommendation so only one of the two can fire.
	switch {
	case hardPercentage > 30:
		return []Insight{{
			Type:       InsightWarning,
			Confidence: 0.8,
			Title:      "High Intensity Warning",
			Description: fmt.Sprintf(
				"%.0f%% of sessions are high intensity (RPE 8+). This may lead to overtraining.",
				hardPercentage),
			Data: data,
			ActionItems: []string{
				"Reduce high-intensity sessions to 20% of total",
				"Add more recovery and base-building sessions",
				"Focus on aerobic capacity building",
			},
		}}
	case easyPercentage < 50:
		return []Insight{{
			Type:       InsightRecommendation,
			Confidence: 0.75,
			Title:      "Add More Base Training",
			Description: fmt.Sprintf(
				"Only %.0f%% of sessions are easy pace. Seven Summits requires strong aerobic base.",
				easyPercentage),
			Data: data,
			ActionItems: []string{
				"Increase easy-pace sessions to 60-70% of total",
				"Focus on building aerobic capacity",
				"Practice hiking with pack at conversational pace",
			},
		}}
	default:
		return nil
	}
}

func analyzeRecoveryPatterns(points []DataPoint) []Insight {
	var pairs []map[string]any
	for i := 0; i+1 < len(points); i++ {
		current, next := points[i], points[i+1]
		if !nonzero(current.Metrics.Intensity) || !nonzero(next.Metrics.Intensity) {
			continue
		}
		if *current.Metrics.Intensity >= 8 && *next.Metrics.Intensity >= 8 &&
			daysBetween(current.Date, next.Date) == 1 {
			pairs = append(pairs, map[string]any{"date1": current.Date, "date2": next.Date})
		}
	}
	if len(pairs) <= 2 {
		return nil
	}

	return []Insight{{
		Type:       InsightWarning,
		Confidence: 0.9,
		Title:      "Insufficient Recovery Time",
		Description: fmt.Sprintf(
			"Found %d instances of back-to-back high-intensity sessions without adequate recovery.",
			len(pairs)),
		Data: pairs,
		ActionItems: []string{
			"Schedule rest or easy days after high-intensity sessions",
			"Monitor sleep and HRV if available",
			"Consider active recovery sessions",
		},
	}}
}

func daysBetween(date1, date2 string) int {
	d1, err1 := time.Parse(time.DateOnly, date1)
	d2, err2 := time.Parse(time.DateOnly, date2)
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(math.Abs(d2.Sub(d1).Hours()) / 24)
}

func analyzeLoadBearingReadiness(points []DataPoint) []Insight {
	var weighted []DataPoint
	for _, point := range points {
		if nonzero(point.Metrics.BackpackWeight) {
			weighted = append(weighted, point)
		}
	}

	if len(weighted) < 5 {
		return []Insight{{
			Type:       InsightRecommendation,
			Confidence: 0.9,
			Title:      "Add Pack Weight Training",
			Description: "Seven Summits requires significant load carrying capacity. " +
				"Start incorporating weighted hiking into your routine.",
			Data: []map[string]any{},
			ActionItems: []string{
				"Start with 10-15kg pack weight",
				"Begin with familiar hiking routes",
				"Focus on maintaining good posture under load",
			},
		}}
	}

	maxWeight := 0.0
	data := make([]map[string]any, 0, len(weighted))
	for _, point := range weighted {
		weight := *point.Metrics.BackpackWeight
		maxWeight = math.Max(maxWeight, weight)
		data = append(data, map[string]any{"date": point.Date, "weight": weight})
	}

	switch {
	case maxWeight >= 20:
		return []Insight{{
			Type:       InsightAchievement,
			Confidence: 0.85,
			Title:      "Strong Pack Weight Progression",
			Description: fmt.Sprintf(
				"Maximum pack weight of %gkg shows good preparation for Seven Summits load carrying demands.",
				maxWeight),
			Data: data,
			ActionItems: []string{
				"Continue building to 25-30kg for Everest simulation",
				"Focus on time under load",
				"Practice technical terrain with pack",
			},
		}}
	case maxWeight < 15:
		return []Insight{{
			Type:       InsightRecommendation,
			Confidence: 0.8,
			Title:      "Increase Pack Weight Training",
			Description: fmt.Sprintf(
				"Maximum pack weight of %gkg needs progression for Seven Summits preparation.",
				maxWeight),
			Data: data,
			ActionItems: []string{
				"Gradually increase to 20-25kg",
				"Start with shorter distances",
				"Build up duration before increasing weight",
			},
		}}
	default:
		return nil
	}
}

func nonzero(value *float64) bool {
	return value != nil && *value != 0
}
