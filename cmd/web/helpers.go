package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", slog.Any("error", err))
	if strings.HasPrefix(r.URL.Path, "/api/") {
		app.writeJSON(w, r, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
		return
	}
	app.render(w, r, http.StatusInternalServerError, "error", newBaseTemplateData(r))
}

// clientError responds with a JSON error message.
func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.writeJSON(w, r, status, map[string]any{"error": message})
}

// writeJSON encodes data to the response writer with the given status.
func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "encode response", slog.Any("error", err))
	}
}

// decodeJSON decodes the request body into dst. On failure it responds with
// HTTP 400 and returns false.
func (app *application) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		app.clientError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	return true
}

// parseIDParam parses the "id" path parameter from the request URL.
// On failure, sends HTTP 404 response automatically.
func (app *application) parseIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := r.PathValue("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}

// parseDateQuery validates the "date" query parameter. On failure it responds
// with HTTP 400 and returns false.
func (app *application) parseDateQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := r.URL.Query().Get("date")
	if !validDate(date) {
		app.clientError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return "", false
	}
	return date, true
}

// parseRangeQuery validates the "start" and "end" query parameters. On
// failure it responds with HTTP 400 and returns false.
func (app *application) parseRangeQuery(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if !validDate(start) || !validDate(end) {
		app.clientError(w, r, http.StatusBadRequest, "start and end must be YYYY-MM-DD")
		return "", "", false
	}
	return start, end, true
}

func validDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}
