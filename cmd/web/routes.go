package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	var (
		stateless = func(next http.Handler) http.Handler {
			return app.recoverPanic(app.logAndTraceRequest(app.requestMetrics(secureHeaders(noCache(next)))))
		}
		api = func(next http.Handler) http.Handler {
			return stateless(app.timeout(next))
		}
		session = func(next http.Handler) http.Handler {
			return stateless(app.sessionManager.LoadAndSave(app.timeout(next)))
		}
	)

	mux.Handle("POST /api/generate-plan", session(http.HandlerFunc(app.generatePlanPOST)))
	mux.Handle("GET /api/plan", session(http.HandlerFunc(app.planGET)))
	mux.Handle("PUT /api/plan", session(http.HandlerFunc(app.planPUT)))
	mux.Handle("DELETE /api/plan", session(http.HandlerFunc(app.planDELETE)))
	mux.Handle("GET /api/plan/narration", session(http.HandlerFunc(app.planNarrationGET)))

	mux.Handle("POST /api/generate-image", api(http.HandlerFunc(app.generateImagePOST)))
	mux.Handle("POST /api/text-to-speech", api(http.HandlerFunc(app.textToSpeechPOST)))

	mux.Handle("GET /api/healthy", stateless(http.HandlerFunc(app.healthy)))
	mux.Handle("GET /metrics", stateless(promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))) //nolint:exhaustruct // defaults.

	mux.Handle("/", stateless(http.HandlerFunc(app.notFound)))

	return app.cors(mux)
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.clientError(w, r, http.StatusNotFound, "Not found")
}
