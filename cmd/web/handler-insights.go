package main

import (
	"log/slog"
	"net/http"

	"github.com/summitchronicles/summit-tracker/internal/insight"
)

type insightsResponse struct {
	Insights   []insight.Insight   `json:"insights"`
	DataPoints []insight.DataPoint `json:"dataPoints"`
	Narrative  string              `json:"narrative,omitempty"`
}

// insightsGET aggregates training signals for a date range, runs the insight
// analyses and optionally narrates the result. With index=true the window's
// data points are also indexed for semantic search, best effort.
func (app *application) insightsGET(w http.ResponseWriter, r *http.Request) {
	start, end, ok := app.parseRangeQuery(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	points, err := app.aggregator.ExtractTrainingData(ctx, start, end)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if points == nil {
		points = []insight.DataPoint{}
	}

	insights := insight.GenerateInsights(points)
	if insights == nil {
		insights = []insight.Insight{}
	}

	resp := insightsResponse{
		Insights:   insights,
		DataPoints: points,
	}
	if app.narrator != nil {
		narrative, err := app.narrator.Narrate(ctx, insights)
		if err != nil {
			// Narration is decoration; the analyses stand on their own.
			app.logger.LogAttrs(ctx, slog.LevelError, "narrate insights", slog.Any("error", err))
		} else {
			resp.Narrative = narrative
		}
	}

	if r.URL.Query().Get("index") == "true" && app.indexer != nil {
		app.indexer.IndexTrainingData(ctx, points)
	}

	app.writeJSON(w, r, http.StatusOK, resp)
}
