package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/myrjola/fitcoach/internal/e2etest"
	"github.com/myrjola/fitcoach/internal/plan"
	"github.com/myrjola/fitcoach/internal/profile"
	"github.com/myrjola/fitcoach/internal/testhelpers"
)

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "FITCOACH_SQLITE_URL":
		return ":memory:", true
	case "FITCOACH_ADDR":
		return "localhost:0", true
	case "FITCOACH_SECURE_COOKIES":
		return "false", true
	default:
		return "", false
	}
}

// lookupEnvWith layers overrides on top of testLookupEnv.
func lookupEnvWith(overrides map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if val, ok := overrides[key]; ok {
			return val, true
		}
		return testLookupEnv(key)
	}
}

func startServer(t *testing.T, lookupEnv func(string) (string, bool)) *e2etest.Server {
	t.Helper()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), lookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	return server
}

// fakeUpstream is an OpenAI-compatible API answering chat completions and image generations.
type fakeUpstream struct {
	chat  http.HandlerFunc
	image http.HandlerFunc
}

func (f fakeUpstream) start(t *testing.T) string {
	t.Helper()
	mux := http.NewServeMux()
	if f.chat != nil {
		mux.HandleFunc("POST /chat/completions", f.chat)
	}
	if f.image != nil {
		mux.HandleFunc("POST /images/generations", f.image)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL + "/"
}

func chatCompletion(t *testing.T, content string) http.HandlerFunc {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 0,
		"model":   "grok-beta",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2},
	})
	if err != nil {
		t.Fatalf("marshal chat completion: %v", err)
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}
}

func upstreamError(status int, errType, code string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "upstream says no", "type": errType, "code": code},
		})
	}
}

func anaProfile() map[string]any {
	return map[string]any{
		"name":              "Ana",
		"age":               30,
		"gender":            "female",
		"height":            165,
		"weight":            60,
		"fitnessGoal":       "fat_loss",
		"fitnessLevel":      "beginner",
		"workoutLocation":   "home",
		"dietaryPreference": "vegan",
	}
}

func modelContent(t *testing.T) string {
	t.Helper()
	c := plan.Fallback(profile.UserProfile{Name: "Ana"}) //nolint:exhaustruct // only the name is used.
	c.Motivation = "Ana, the model believes in you"
	c.WorkoutPlan.Days[0].Focus = "Mobility"
	out, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal content: %v", err)
	}
	return string(out)
}

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}
