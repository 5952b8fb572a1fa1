package main

import (
	"errors"
	"net/http"

	"github.com/summitchronicles/summit-tracker/internal/plan"
)

// trainingPlansGET lists all uploaded plans, most recent first.
func (app *application) trainingPlansGET(w http.ResponseWriter, r *http.Request) {
	plans, err := app.planService.TrainingPlans(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if plans == nil {
		plans = []plan.Plan{}
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"plans": plans})
}

// trainingPlanGET returns one plan with its days, exercises and guidelines.
func (app *application) trainingPlanGET(w http.ResponseWriter, r *http.Request) {
	planID, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}

	details, err := app.planService.TrainingPlanDetails(r.Context(), planID)
	if err != nil {
		if errors.Is(err, plan.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, details)
}
