package main

import (
	"net/http"

	"github.com/myrjola/fitcoach/internal/errors"
)

type speechRequest struct {
	Text    string `json:"text"`
	Section string `json:"section"`
}

type speechResponse struct {
	Message string `json:"message"`
	Text    string `json:"text"`
	Section string `json:"section"`
}

// textToSpeechPOST acknowledges a speech request. Speech is synthesized in the browser, so the text is echoed back.
func (app *application) textToSpeechPOST(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if err := decodeBody(w, r, &req); err != nil {
		if isBodyTooLarge(err) {
			app.clientError(w, r, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		app.serverError(w, r, errors.Wrap(err, "decode speech request"), "Text-to-speech failed")
		return
	}
	app.writeJSON(w, r, http.StatusOK, speechResponse{
		Message: "TTS not configured. Using browser speech synthesis.",
		Text:    req.Text,
		Section: req.Section,
	})
}
