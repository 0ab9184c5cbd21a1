package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/myrjola/fitcoach/internal/e2etest"
	"github.com/myrjola/fitcoach/internal/logging"
	"github.com/myrjola/fitcoach/internal/plan"
	"github.com/myrjola/fitcoach/internal/testhelpers"
)

var smokeProfile = map[string]any{
	"name":              "Smoke",
	"age":               "35",
	"gender":            "other",
	"height":            "175",
	"weight":            "70",
	"fitnessGoal":       "general_fitness",
	"fitnessLevel":      "beginner",
	"workoutLocation":   "home",
	"dietaryPreference": "vegetarian",
}

// TestPlan generates a plan and checks that it was saved as the active plan.
func TestPlan(client *e2etest.Client) error {
	ctx := context.Background()
	// Model generation is slow.
	ctx, cancel := context.WithTimeout(ctx, 90*time.Second) //nolint:mnd // 90 seconds
	defer cancel()

	var generated plan.Document
	status, err := client.DoJSON(ctx, http.MethodPost, "/api/generate-plan", smokeProfile, &generated)
	if err != nil {
		return fmt.Errorf("generate plan: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("generate plan: unexpected status %d", status)
	}

	var saved plan.Document
	if status, err = client.DoJSON(ctx, http.MethodGet, "/api/plan", nil, &saved); err != nil {
		return fmt.Errorf("get plan: %w", err)
	}
	if status != http.StatusOK || saved.ID != generated.ID {
		return fmt.Errorf("get plan: status %d, id %q, want %q", status, saved.ID, generated.ID)
	}

	if status, err = client.DoJSON(ctx, http.MethodDelete, "/api/plan", nil, nil); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	if status != http.StatusNoContent {
		return fmt.Errorf("delete plan: unexpected status %d", status)
	}
	return nil
}

// TestImage resolves a meal image. Any tier is fine as long as a URL comes back.
func TestImage(client *e2etest.Client) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second) //nolint:mnd // 60 seconds
	defer cancel()

	var resp struct {
		ImageURL string `json:"imageUrl"`
	}
	status, err := client.DoJSON(ctx, http.MethodPost, "/api/generate-image",
		map[string]string{"prompt": "Overnight oats with berries", "type": "meal"}, &resp)
	if err != nil {
		return fmt.Errorf("generate image: %w", err)
	}
	if status != http.StatusOK || resp.ImageURL == "" {
		return fmt.Errorf("generate image: status %d, url %q", status, resp.ImageURL)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		client   *e2etest.Client
		err      error
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}
	if err = TestPlan(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing plan", slog.Any("error", err))
		os.Exit(1)
	}
	if err = TestImage(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing image", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Duration("duration", time.Since(start)))
	os.Exit(0)
}
