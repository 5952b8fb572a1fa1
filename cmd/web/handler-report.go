package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/summitchronicles/summit-tracker/internal/insight"
)

const (
	reportWeeksSessionKey = "reportWeeks"
	defaultReportWeeks    = 8
	maxReportWeeks        = 52
)

type reportTemplateData struct {
	BaseTemplateData
	Weeks      int
	StartDate  string
	EndDate    string
	PointCount int
	Insights   []insight.Insight
}

// reportGET renders the insight report over the last N weeks. The window
// length is a per-session preference.
func (app *application) reportGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	weeks := app.sessionManager.GetInt(ctx, reportWeeksSessionKey)
	if weeks <= 0 || weeks > maxReportWeeks {
		weeks = defaultReportWeeks
	}

	now := time.Now()
	endDate := now.Format(time.DateOnly)
	startDate := now.AddDate(0, 0, -7*weeks).Format(time.DateOnly)

	points, err := app.aggregator.ExtractTrainingData(ctx, startDate, endDate)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	data := reportTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Weeks:            weeks,
		StartDate:        startDate,
		EndDate:          endDate,
		PointCount:       len(points),
		Insights:         insight.GenerateInsights(points),
	}

	app.render(w, r, http.StatusOK, "report", data)
}

// reportPOST stores the preferred window length in the session and redirects
// back to the report.
func (app *application) reportPOST(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.serverError(w, r, err)
		return
	}

	weeks, err := strconv.Atoi(r.PostForm.Get("weeks"))
	if err != nil || weeks <= 0 || weeks > maxReportWeeks {
		http.Error(w, "weeks must be between 1 and 52", http.StatusBadRequest)
		return
	}

	app.sessionManager.Put(r.Context(), reportWeeksSessionKey, weeks)
	redirect(w, r, "/report")
}

// redirect detects if the request is originating from a fetch API call or a top-level navigation and points the user
// to the correct URL.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("Sec-Fetch-Dest") == "empty" {
		w.Header().Set("Content-Location", path)
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, path, http.StatusSeeOther)
}
