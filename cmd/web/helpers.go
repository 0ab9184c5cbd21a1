package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/myrjola/fitcoach/internal/errors"
)

// maxBodySize caps request bodies. Profiles and plan documents are a few kilobytes.
const maxBodySize = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON responds with v encoded as JSON.
func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "marshal response"), "Internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(body); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "failed to write response", errors.SlogError(err))
	}
}

// clientError responds with status and a message the client can show to the user.
func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.writeJSON(w, r, status, errorResponse{Error: message})
}

// serverError logs err and responds 500 with a generic message that does not leak internals.
func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error, message string) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: message})
}

// readBody reads at most maxBodySize bytes of the request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "read request body")
	}
	return body, nil
}

// isBodyTooLarge reports whether err came from exceeding maxBodySize.
func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}

// decodeBody reads the request body and decodes it as JSON into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(body, v); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}
