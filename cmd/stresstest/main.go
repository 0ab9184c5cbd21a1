package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/myrjola/fitcoach/internal/e2etest"
	"github.com/myrjola/fitcoach/internal/logging"
	"github.com/myrjola/fitcoach/internal/narration"
	"github.com/myrjola/fitcoach/internal/plan"
	"github.com/myrjola/fitcoach/internal/testhelpers"
	"golang.org/x/sync/errgroup"
)

const (
	defaultClients          = 10
	maxConcurrentOperations = 20
	scenarioTimeout         = 2 * time.Minute
	successRateThreshold    = 95.0
	percentageMultiplier    = 100
	minArgsCount            = 2
	maxArgsCount            = 3
)

var (
	goals     = []string{"fat_loss", "muscle_gain", "strength", "flexibility", "general_fitness"}
	levels    = []string{"beginner", "intermediate", "advanced"}
	locations = []string{"home", "gym", "outdoor"}
	diets     = []string{"vegetarian", "non_vegetarian", "vegan", "keto"}
)

// virtualProfile varies the profile per client so that the model sees different prompts.
func virtualProfile(i int) map[string]any {
	return map[string]any{
		"name":              fmt.Sprintf("Client %d", i),
		"age":               strconv.Itoa(20 + i%40), //nolint:mnd // ages 20-59
		"gender":            "other",
		"height":            strconv.Itoa(155 + i%40), //nolint:mnd // heights 155-194
		"weight":            strconv.Itoa(50 + i%50),  //nolint:mnd // weights 50-99
		"fitnessGoal":       goals[i%len(goals)],
		"fitnessLevel":      levels[i%len(levels)],
		"workoutLocation":   locations[i%len(locations)],
		"dietaryPreference": diets[i%len(diets)],
	}
}

// PlanScenario walks through the flow of a front-end client: onboarding, reading the plan back, listening to every
// section, and finally starting over.
func PlanScenario(ctx context.Context, client *e2etest.Client, i int, logger *slog.Logger) error {
	var generated plan.Document
	status, err := client.DoJSON(ctx, http.MethodPost, "/api/generate-plan", virtualProfile(i), &generated)
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

	for _, section := range []narration.Section{narration.SectionWorkout, narration.SectionDiet,
		narration.SectionCoaching} {
		if status, err = client.DoJSON(ctx, http.MethodGet, "/api/plan/narration?section="+string(section), nil,
			nil); err != nil {
			return fmt.Errorf("narrate %s: %w", section, err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("narrate %s: unexpected status %d", section, status)
		}
	}

	if len(saved.DietPlan.Meals["breakfast"]) > 0 {
		meal := saved.DietPlan.Meals["breakfast"][0].Item
		if status, err = client.DoJSON(ctx, http.MethodPost, "/api/generate-image",
			map[string]string{"prompt": meal, "type": "meal"}, nil); err != nil {
			return fmt.Errorf("generate image: %w", err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("generate image: unexpected status %d", status)
		}
	}

	if status, err = client.DoJSON(ctx, http.MethodDelete, "/api/plan", nil, nil); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	if status != http.StatusNoContent {
		return fmt.Errorf("delete plan: unexpected status %d", status)
	}

	logger.LogAttrs(ctx, slog.LevelDebug, "Plan scenario completed", slog.Int("client", i),
		slog.String("plan_id", generated.ID))
	return nil
}

// RunLoadTest runs one plan scenario per virtual client, each with its own session cookie.
func RunLoadTest(ctx context.Context, url string, numClients int, logger *slog.Logger) error {
	logger.LogAttrs(ctx, slog.LevelInfo, "Starting load test", slog.Int("num_clients", numClients))

	var successCount, failureCount atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOperations)

	for i := range numClients {
		g.Go(func() error {
			client, err := e2etest.NewClient(url)
			if err != nil {
				return fmt.Errorf("create client %d: %w", i, err)
			}
			scenarioCtx, cancel := context.WithTimeout(ctx, scenarioTimeout)
			defer cancel()

			if err = PlanScenario(scenarioCtx, client, i, logger); err != nil {
				failureCount.Add(1)
				// Individual failures count against the success rate without stopping the other scenarios.
				logger.LogAttrs(scenarioCtx, slog.LevelWarn, "Scenario failed",
					slog.Int("client", i),
					slog.Any("error", err))
				return nil
			}
			successCount.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("load test failed: %w", err)
	}

	successRate := float64(successCount.Load()) / float64(numClients) * percentageMultiplier
	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed",
		slog.Int64("successful", successCount.Load()),
		slog.Int64("failed", failureCount.Load()),
		slog.Float64("success_rate", successRate))

	if successRate < successRateThreshold {
		return fmt.Errorf("load test failed: success rate %.1f%% below threshold", successRate)
	}
	return nil
}

func parseClients(args []string) (int, error) {
	if len(args) < maxArgsCount {
		return defaultClients, nil
	}
	n, err := strconv.Atoi(args[2])
	if err != nil {
		return 0, fmt.Errorf("parse client count: %w", err)
	}
	if n <= 0 {
		return 0, errors.New("client count must be positive")
	}
	return n, nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) < minArgsCount || len(os.Args) > maxArgsCount {
		logger.LogAttrs(ctx, slog.LevelError, "usage: stresstest <hostname> [clients]")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		start    = time.Now()
	)
	numClients, err := parseClients(os.Args)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "invalid arguments", slog.Any("error", err))
		os.Exit(1)
	}

	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	client, err := e2etest.NewClient(url)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}

	if err = RunLoadTest(ctx, url, numClients, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "load test failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed successfully 🙌",
		slog.Duration("total_duration", time.Since(start)),
		slog.Int("clients_tested", numClients))
}
