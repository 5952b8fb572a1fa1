package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/summitchronicles/summit-tracker/internal/plan"
	"github.com/summitchronicles/summit-tracker/internal/ptr"
)

func Test_application_trainingFlow(t *testing.T) {
	var (
		ctx    = t.Context()
		server = startTestServer(t)
		client = server.Client()
		date   = "2025-09-08"
	)

	var upload uploadResponse
	t.Run("upload workbook", func(t *testing.T) {
		resp, err := client.UploadFile(ctx, "/api/training/upload", "file", "week3.xlsx",
			buildTestWorkbook(t, date), map[string]string{"start_date": date}, &upload)
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}
		if upload.PlanID == 0 {
			t.Error("planId missing from response")
		}
		if upload.Empty {
			t.Error("upload flagged empty for a workbook with content")
		}
		if upload.StrengthDays != 1 {
			t.Errorf("strengthDays = %d, want 1", upload.StrengthDays)
		}
	})

	t.Run("list plans", func(t *testing.T) {
		var body struct {
			Plans []plan.Plan `json:"plans"`
		}
		if _, err := client.GetJSON(ctx, "/api/training/plans", &body); err != nil {
			t.Fatalf("list plans: %v", err)
		}
		if len(body.Plans) != 1 {
			t.Fatalf("plans = %d, want 1", len(body.Plans))
		}
		if body.Plans[0].Title != "Week 3: Base Building" {
			t.Errorf("title = %q", body.Plans[0].Title)
		}
	})

	t.Run("plan details", func(t *testing.T) {
		var details plan.PlanDetails
		if _, err := client.GetJSON(ctx, fmt.Sprintf("/api/training/plans/%d", upload.PlanID), &details); err != nil {
			t.Fatalf("plan details: %v", err)
		}
		if len(details.StrengthDays) != 1 {
			t.Fatalf("strength days = %d, want 1", len(details.StrengthDays))
		}
		if len(details.StrengthDays[0].Exercises) != 2 {
			t.Errorf("exercises = %d, want 2", len(details.StrengthDays[0].Exercises))
		}
		if details.Plan.EndDate == nil || *details.Plan.EndDate != "2025-09-14" {
			t.Errorf("end date = %v, want 2025-09-14", details.Plan.EndDate)
		}
	})

	t.Run("unknown plan is 404", func(t *testing.T) {
		resp, err := client.Get(ctx, "/api/training/plans/999999")
		if err != nil {
			t.Fatalf("get plan: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
		}
	})

	var exerciseID int
	t.Run("workout for date", func(t *testing.T) {
		var body struct {
			Workout *plan.StrengthDay `json:"workout"`
		}
		if _, err := client.GetJSON(ctx, "/api/training/workout?date="+date, &body); err != nil {
			t.Fatalf("get workout: %v", err)
		}
		if body.Workout == nil {
			t.Fatal("workout missing for planned date")
		}
		if len(body.Workout.Exercises) != 2 {
			t.Fatalf("exercises = %d, want 2", len(body.Workout.Exercises))
		}
		exerciseID = body.Workout.Exercises[0].ID
	})

	t.Run("workout for empty date is null", func(t *testing.T) {
		var body struct {
			Workout *plan.StrengthDay `json:"workout"`
		}
		if _, err := client.GetJSON(ctx, "/api/training/workout?date=2025-01-01", &body); err != nil {
			t.Fatalf("get workout: %v", err)
		}
		if body.Workout != nil {
			t.Errorf("workout = %+v, want null", body.Workout)
		}
	})

	t.Run("workout rejects malformed date", func(t *testing.T) {
		resp, err := client.Get(ctx, "/api/training/workout?date=tomorrow")
		if err != nil {
			t.Fatalf("get workout: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}
	})

	var setID int
	t.Run("log set", func(t *testing.T) {
		var set plan.ActualSet
		resp, err := client.SendJSON(ctx, http.MethodPost, "/api/training/workout", map[string]any{
			"action":     "logSet",
			"exerciseId": exerciseID,
			"set": map[string]any{
				"repsCompleted": 8,
				"weightUsed":    60.0,
			},
		}, &set)
		if err != nil {
			t.Fatalf("log set: %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}
		if set.SetNumber != 1 {
			t.Errorf("setNumber = %d, want 1", set.SetNumber)
		}
		setID = set.ID
	})

	t.Run("update set", func(t *testing.T) {
		var set plan.ActualSet
		resp, err := client.SendJSON(ctx, http.MethodPatch, fmt.Sprintf("/api/training/sets/%d", setID),
			plan.SetUpdate{WeightUsed: ptr.Ref(62.5)}, &set)
		if err != nil {
			t.Fatalf("update set: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if set.WeightUsed == nil || *set.WeightUsed != 62.5 {
			t.Errorf("weightUsed = %v, want 62.5", set.WeightUsed)
		}
		if set.RepsCompleted == nil || *set.RepsCompleted != 8 {
			t.Errorf("repsCompleted = %v, want untouched 8", set.RepsCompleted)
		}
	})

	t.Run("complete exercise", func(t *testing.T) {
		var exercise plan.Exercise
		resp, err := client.SendJSON(ctx, http.MethodPost, "/api/training/workout", map[string]any{
			"action":     "completeExercise",
			"exerciseId": exerciseID,
			"notes":      "felt strong",
		}, &exercise)
		if err != nil {
			t.Fatalf("complete exercise: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if !exercise.Completed {
			t.Error("exercise not marked completed")
		}
	})

	t.Run("unknown action is rejected", func(t *testing.T) {
		resp, err := client.SendJSON(ctx, http.MethodPost, "/api/training/workout",
			map[string]any{"action": "startWorkout"}, nil)
		if err != nil {
			t.Fatalf("post action: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}
	})

	t.Run("manual entries", func(t *testing.T) {
		var saved plan.ManualEntry
		resp, err := client.SendJSON(ctx, http.MethodPost, "/api/training/manual", plan.ManualEntry{
			Date:             date,
			ActivityType:     "hiking",
			DurationMinutes:  ptr.Ref(90.0),
			BackpackWeightKg: ptr.Ref(18.0),
		}, &saved)
		if err != nil {
			t.Fatalf("save manual entry: %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}

		var body struct {
			Entries []plan.ManualEntry `json:"entries"`
		}
		if _, err = client.GetJSON(ctx, "/api/training/manual?date="+date, &body); err != nil {
			t.Fatalf("list manual entries: %v", err)
		}
		if len(body.Entries) != 1 {
			t.Fatalf("entries = %d, want 1", len(body.Entries))
		}
		if body.Entries[0].ActivityType != "hiking" {
			t.Errorf("activityType = %q", body.Entries[0].ActivityType)
		}
	})

	t.Run("progress", func(t *testing.T) {
		var progress plan.Progress
		if _, err := client.GetJSON(ctx, "/api/training/progress?start=2025-09-01&end=2025-09-30", &progress); err != nil {
			t.Fatalf("get progress: %v", err)
		}
		if len(progress.Strength) != 1 {
			t.Errorf("strength records = %d, want 1", len(progress.Strength))
		}
		if len(progress.Manual) != 1 {
			t.Errorf("manual records = %d, want 1", len(progress.Manual))
		}
	})

	t.Run("insights", func(t *testing.T) {
		var body insightsResponse
		if _, err := client.GetJSON(ctx, "/api/training/insights?start=2025-09-01&end=2025-09-30", &body); err != nil {
			t.Fatalf("get insights: %v", err)
		}
		if len(body.DataPoints) != 2 {
			t.Errorf("data points = %d, want strength day plus manual entry", len(body.DataPoints))
		}
		if len(body.Insights) == 0 {
			t.Error("no insights for a window with training data")
		}
		if body.Narrative != "" {
			t.Errorf("narrative = %q, want empty without an API key", body.Narrative)
		}
	})
}
