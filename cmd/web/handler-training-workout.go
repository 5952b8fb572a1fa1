package main

import (
	"errors"
	"net/http"

	"github.com/summitchronicles/summit-tracker/internal/plan"
)

// workoutGET returns the workout scheduled for the given date, or a null
// workout when nothing is planned.
func (app *application) workoutGET(w http.ResponseWriter, r *http.Request) {
	date, ok := app.parseDateQuery(w, r)
	if !ok {
		return
	}

	workout, err := app.planService.TodaysWorkout(r.Context(), date)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"workout": workout})
}

type workoutActionRequest struct {
	Action     string         `json:"action"`
	ExerciseID int            `json:"exerciseId"`
	SetNumber  int            `json:"setNumber"`
	Set        plan.SetUpdate `json:"set"`
	Notes      *string        `json:"notes"`
}

// workoutActionPOST dispatches workout mutations: logging a set against an
// exercise or marking an exercise completed.
func (app *application) workoutActionPOST(w http.ResponseWriter, r *http.Request) {
	var req workoutActionRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}

	switch req.Action {
	case "logSet":
		set, err := app.planService.LogActualSet(r.Context(), req.ExerciseID, req.SetNumber, req.Set)
		if err != nil {
			if errors.Is(err, plan.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			app.serverError(w, r, err)
			return
		}
		app.writeJSON(w, r, http.StatusCreated, set)
	case "completeExercise":
		exercise, err := app.planService.MarkExerciseCompleted(r.Context(), req.ExerciseID, req.Notes)
		if err != nil {
			if errors.Is(err, plan.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			app.serverError(w, r, err)
			return
		}
		app.writeJSON(w, r, http.StatusOK, exercise)
	default:
		app.clientError(w, r, http.StatusBadRequest, "action must be logSet or completeExercise")
	}
}

// setUpdatePATCH applies a partial update to a logged set.
func (app *application) setUpdatePATCH(w http.ResponseWriter, r *http.Request) {
	setID, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}

	var update plan.SetUpdate
	if !app.decodeJSON(w, r, &update) {
		return
	}

	set, err := app.planService.UpdateActualSet(r.Context(), setID, update)
	if err != nil {
		if errors.Is(err, plan.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, set)
}
