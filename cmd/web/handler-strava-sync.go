package main

import (
	"net/http"
	"strconv"
)

// stravaSyncPOST pulls recent activities from Strava into local storage.
// Responds 503 when the Strava credentials are not configured.
func (app *application) stravaSyncPOST(w http.ResponseWriter, r *http.Request) {
	if !app.stravaSyncer.Configured() {
		app.writeJSON(w, r, http.StatusServiceUnavailable, map[string]any{
			"error": "strava credentials not configured",
		})
		return
	}

	maxActivities := 0
	if value := r.URL.Query().Get("max"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			app.clientError(w, r, http.StatusBadRequest, "max must be a positive integer")
			return
		}
		maxActivities = parsed
	}

	count, err := app.stravaSyncer.Sync(r.Context(), maxActivities)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"synced": count})
}
