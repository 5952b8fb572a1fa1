package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/summitchronicles/summit-tracker/internal/plan"
)

// maxWorkbookSize caps uploads at 10 MB, far above any real plan workbook.
const maxWorkbookSize = 10 << 20

type uploadResponse struct {
	PlanID       int    `json:"planId"`
	Title        string `json:"title"`
	StrengthDays int    `json:"strengthDays"`
	CardioDays   int    `json:"cardioDays"`
	Guidelines   int    `json:"guidelines"`
	Empty        bool   `json:"empty"`
}

// trainingUploadPOST accepts a multipart workbook upload, parses it and
// persists the plan. A parse that yields no content is still saved but
// flagged empty so callers can detect a wrong file.
func (app *application) trainingUploadPOST(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxWorkbookSize); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, "missing file field")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	workbook, err := io.ReadAll(io.LimitReader(file, maxWorkbookSize))
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	var startDate *string
	if value := r.FormValue("start_date"); value != "" {
		if !validDate(value) {
			app.clientError(w, r, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
			return
		}
		startDate = &value
	}

	parsed, planID, err := app.planService.ImportWorkbook(r.Context(), workbook, header.Filename, startDate)
	if err != nil {
		if errors.Is(err, plan.ErrUnreadableWorkbook) {
			app.clientError(w, r, http.StatusUnprocessableEntity, "cannot read workbook")
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusCreated, uploadResponse{
		PlanID:       planID,
		Title:        parsed.Title,
		StrengthDays: len(parsed.StrengthDays),
		CardioDays:   len(parsed.CardioDays),
		Guidelines:   len(parsed.Guidelines),
		Empty:        len(parsed.StrengthDays) == 0 && len(parsed.CardioDays) == 0 && len(parsed.Guidelines) == 0,
	})
}
