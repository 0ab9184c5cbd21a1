package main

import (
	"log/slog"
	"net/http"

	"github.com/myrjola/fitcoach/internal/errors"
	"github.com/myrjola/fitcoach/internal/imagery"
)

type imageRequest struct {
	Prompt string `json:"prompt"`
	Type   string `json:"type"`
}

type imageResponse struct {
	ImageURL  string `json:"imageUrl"`
	Prompt    string `json:"prompt"`
	Type      string `json:"type"`
	Generated bool   `json:"generated"`
}

// generateImagePOST resolves an illustration for a meal or an exercise. Upstream failures degrade to stock photos,
// so only an unreadable request fails.
func (app *application) generateImagePOST(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if err := decodeBody(w, r, &req); err != nil {
		if isBodyTooLarge(err) {
			app.clientError(w, r, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "decode image request"), "Image generation failed")
		return
	}

	result := app.imageResolver.Resolve(r.Context(), req.Prompt, imagery.ParseCategory(req.Type))
	app.metrics.CounterImageResolutions.WithLabelValues(string(result.Tier)).Inc()
	app.logger.LogAttrs(r.Context(), slog.LevelDebug, "resolved image",
		slog.String("tier", string(result.Tier)), slog.String("type", req.Type))

	app.writeJSON(w, r, http.StatusOK, imageResponse{
		ImageURL:  result.URL,
		Prompt:    req.Prompt,
		Type:      req.Type,
		Generated: result.Generated(),
	})
}
