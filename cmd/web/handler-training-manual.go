package main

import (
	"net/http"

	"github.com/summitchronicles/summit-tracker/internal/plan"
)

// manualEntryPOST logs a freeform training entry.
func (app *application) manualEntryPOST(w http.ResponseWriter, r *http.Request) {
	var entry plan.ManualEntry
	if !app.decodeJSON(w, r, &entry) {
		return
	}
	if !validDate(entry.Date) {
		app.clientError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	if entry.ActivityType == "" {
		app.clientError(w, r, http.StatusBadRequest, "activityType is required")
		return
	}

	saved, err := app.planService.SaveManualEntry(r.Context(), entry)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, saved)
}

// manualEntriesGET lists manual entries for a date, most recent first.
func (app *application) manualEntriesGET(w http.ResponseWriter, r *http.Request) {
	date, ok := app.parseDateQuery(w, r)
	if !ok {
		return
	}

	entries, err := app.planService.ManualEntries(r.Context(), date)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if entries == nil {
		entries = []plan.ManualEntry{}
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"entries": entries})
}

// progressGET returns logged sets and manual entries for a date range.
func (app *application) progressGET(w http.ResponseWriter, r *http.Request) {
	start, end, ok := app.parseRangeQuery(w, r)
	if !ok {
		return
	}

	progress, err := app.planService.TrainingProgress(r.Context(), start, end)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if progress.Strength == nil {
		progress.Strength = []plan.SetRecord{}
	}
	if progress.Manual == nil {
		progress.Manual = []plan.ManualEntry{}
	}
	app.writeJSON(w, r, http.StatusOK, progress)
}
