package main

import (
	"net/http"
)

func (app *application) routes() (*http.ServeMux, error) {
	mux := http.NewServeMux()

	var (
		api = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.logAndTraceRequest(secureHeaders(
				app.crossOriginProtection(commonContext(app.timeout(next)))))))
		}
		// slowAPI is for handlers that call external services.
		slowAPI = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.logAndTraceRequest(secureHeaders(
				app.crossOriginProtection(commonContext(app.slowTimeout(next)))))))
		}
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(
					commonContext(app.timeout(next))))))))
		}
	)

	mux.Handle("GET /api/healthy", api(http.HandlerFunc(app.healthy)))
	mux.Handle("GET /api/test/timeout", api(http.HandlerFunc(app.testTimeout)))

	mux.Handle("POST /api/training/upload", api(http.HandlerFunc(app.trainingUploadPOST)))
	mux.Handle("GET /api/training/plans", api(http.HandlerFunc(app.trainingPlansGET)))
	mux.Handle("GET /api/training/plans/{id}", api(http.HandlerFunc(app.trainingPlanGET)))

	mux.Handle("GET /api/training/workout", api(http.HandlerFunc(app.workoutGET)))
	mux.Handle("POST /api/training/workout", api(http.HandlerFunc(app.workoutActionPOST)))
	mux.Handle("PATCH /api/training/sets/{id}", api(http.HandlerFunc(app.setUpdatePATCH)))

	mux.Handle("POST /api/training/manual", api(http.HandlerFunc(app.manualEntryPOST)))
	mux.Handle("GET /api/training/manual", api(http.HandlerFunc(app.manualEntriesGET)))
	mux.Handle("GET /api/training/progress", api(http.HandlerFunc(app.progressGET)))

	mux.Handle("GET /api/training/insights", slowAPI(http.HandlerFunc(app.insightsGET)))
	mux.Handle("POST /api/strava/sync", slowAPI(http.HandlerFunc(app.stravaSyncPOST)))

	mux.Handle("GET /report", session(http.HandlerFunc(app.reportGET)))
	mux.Handle("POST /report", session(http.HandlerFunc(app.reportPOST)))

	return mux, nil
}
