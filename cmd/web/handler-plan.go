package main

import (
	"log/slog"
	"net/http"

	"github.com/myrjola/fitcoach/internal/errors"
	"github.com/myrjola/fitcoach/internal/metrics"
	"github.com/myrjola/fitcoach/internal/narration"
	"github.com/myrjola/fitcoach/internal/plan"
	"github.com/myrjola/fitcoach/internal/planstore"
	"github.com/myrjola/fitcoach/internal/profile"
)

const (
	msgPlanFailed    = "Failed to generate fitness plan. Please try again."
	msgQuotaExceeded = "API quota exceeded. Please try again later."
	msgNoSavedPlan   = "No saved plan"
	msgTooLarge      = "Request body too large"
)

// generatePlanPOST validates the submitted profile, generates a plan, and saves it as the client's active plan.
func (app *application) generatePlanPOST(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := readBody(w, r)
	if err != nil {
		if isBodyTooLarge(err) {
			app.clientError(w, r, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		app.serverError(w, r, err, msgPlanFailed)
		return
	}

	p, err := profile.Parse(body)
	var missingErr *profile.MissingFieldsError
	switch {
	case errors.As(err, &missingErr):
		app.metrics.CounterPlanGenerations.WithLabelValues(metrics.PlanSourceRejected).Inc()
		app.logger.LogAttrs(ctx, slog.LevelInfo, "rejected incomplete profile",
			slog.Any("missing", missingErr.Fields))
		app.clientError(w, r, http.StatusBadRequest, missingErr.Error())
		return
	case err != nil:
		app.serverError(w, r, errors.Wrap(err, "parse profile"), msgPlanFailed)
		return
	}

	doc, source, err := app.planService.Generate(ctx, p)
	switch {
	case errors.Is(err, plan.ErrQuotaExceeded):
		app.metrics.CounterPlanGenerations.WithLabelValues(metrics.PlanSourceQuota).Inc()
		app.logger.LogAttrs(ctx, slog.LevelWarn, "model quota exceeded", errors.SlogError(err))
		app.clientError(w, r, http.StatusTooManyRequests, msgQuotaExceeded)
		return
	case err != nil:
		app.serverError(w, r, errors.Wrap(err, "generate plan"), msgPlanFailed)
		return
	}
	app.metrics.CounterPlanGenerations.WithLabelValues(string(source)).Inc()

	if err = app.planStore.Put(ctx, doc); err != nil {
		app.serverError(w, r, errors.Wrap(err, "save plan"), msgPlanFailed)
		return
	}

	app.logger.LogAttrs(ctx, slog.LevelInfo, "generated plan",
		slog.String("id", doc.ID), slog.String("source", string(source)))
	app.writeJSON(w, r, http.StatusOK, doc)
}

// planGET returns the client's active plan.
func (app *application) planGET(w http.ResponseWriter, r *http.Request) {
	doc, err := app.planStore.Get(r.Context())
	if errors.Is(err, planstore.ErrNoPlan) {
		app.clientError(w, r, http.StatusNotFound, msgNoSavedPlan)
		return
	}
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "get plan"), "Failed to load plan")
		return
	}
	app.writeJSON(w, r, http.StatusOK, doc)
}

// planPUT replaces the client's active plan, for example after the client cached image URLs in it.
func (app *application) planPUT(w http.ResponseWriter, r *http.Request) {
	var doc plan.Document
	if err := decodeBody(w, r, &doc); err != nil {
		if isBodyTooLarge(err) {
			app.clientError(w, r, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		app.clientError(w, r, http.StatusBadRequest, "Invalid plan document")
		return
	}
	if doc.ID == "" {
		app.clientError(w, r, http.StatusBadRequest, "Invalid plan document")
		return
	}
	if err := doc.Content.Validate(); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelInfo, "rejected plan document", errors.SlogError(err))
		app.clientError(w, r, http.StatusBadRequest, "Invalid plan document")
		return
	}
	if err := app.planStore.Put(r.Context(), doc); err != nil {
		app.serverError(w, r, errors.Wrap(err, "save plan"), "Failed to save plan")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// planDELETE clears the client's active plan so that the client can start over.
func (app *application) planDELETE(w http.ResponseWriter, r *http.Request) {
	app.planStore.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type narrationResponse struct {
	Section narration.Section `json:"section"`
	Text    string            `json:"text"`
}

// planNarrationGET returns the text that the client reads aloud for a section of the active plan.
func (app *application) planNarrationGET(w http.ResponseWriter, r *http.Request) {
	section, err := narration.ParseSection(r.URL.Query().Get("section"))
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, "Unknown section. Use workout, diet or coaching.")
		return
	}

	doc, err := app.planStore.Get(r.Context())
	if errors.Is(err, planstore.ErrNoPlan) {
		app.clientError(w, r, http.StatusNotFound, msgNoSavedPlan)
		return
	}
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "get plan"), "Failed to load plan")
		return
	}

	text, err := narration.Text(doc.Content, section)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "narrate plan"), "Failed to narrate plan")
		return
	}
	app.writeJSON(w, r, http.StatusOK, narrationResponse{Section: section, Text: text})
}
