package main

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_application_textToSpeech(t *testing.T) {
	ctx := t.Context()
	server := startServer(t, testLookupEnv)
	client := server.Client()

	var got speechResponse
	status, err := client.DoJSON(ctx, http.MethodPost, "/api/text-to-speech",
		speechRequest{Text: "Day 1 focuses on Upper Body Strength", Section: "workout"}, &got)
	if err != nil {
		t.Fatalf("text to speech: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	want := speechResponse{
		Message: "TTS not configured. Using browser speech synthesis.",
		Text:    "Day 1 focuses on Upper Body Strength",
		Section: "workout",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}

	var errBody errorResponse
	if status, err = client.DoJSON(ctx, http.MethodPost, "/api/text-to-speech", "{", &errBody); err != nil {
		t.Fatalf("text to speech: %v", err)
	}
	if status != http.StatusInternalServerError || errBody.Error != "Text-to-speech failed" {
		t.Errorf("got %d %q, want 500 Text-to-speech failed", status, errBody.Error)
	}
}
