package plan_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/myrjola/fitcoach/internal/ai"
	"github.com/myrjola/fitcoach/internal/plan"
	"github.com/myrjola/fitcoach/internal/testhelpers"
)

type completerFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f(ctx, systemPrompt, userPrompt)
}

func TestService_Generate(t *testing.T) {
	modelContent := plan.Fallback(sampleProfile())
	modelContent.Motivation = "Model says hi, Alex"
	modelContent.WorkoutPlan.Days[0].Focus = "Model focus"

	tests := []struct {
		name           string
		completer      plan.Completer
		wantSource     plan.Source
		wantErr        error
		wantMotiv      string
		wantFirstFocus string
	}{
		{
			name:           "no credential",
			completer:      nil,
			wantSource:     plan.SourceFallback,
			wantMotiv:      plan.Fallback(sampleProfile()).Motivation,
			wantFirstFocus: "Upper Body Strength",
		},
		{
			name: "model output",
			completer: completerFunc(func(context.Context, string, string) (string, error) {
				out, err := json.Marshal(modelContent)
				return string(out), err
			}),
			wantSource:     plan.SourceModel,
			wantMotiv:      "Model says hi, Alex",
			wantFirstFocus: "Model focus",
		},
		{
			name: "upstream failure",
			completer: completerFunc(func(context.Context, string, string) (string, error) {
				return "", errors.New("connection refused")
			}),
			wantSource:     plan.SourceFallback,
			wantMotiv:      plan.Fallback(sampleProfile()).Motivation,
			wantFirstFocus: "Upper Body Strength",
		},
		{
			name: "unparseable output",
			completer: completerFunc(func(context.Context, string, string) (string, error) {
				return "Sure! Here is your plan: {", nil
			}),
			wantSource:     plan.SourceFallback,
			wantMotiv:      plan.Fallback(sampleProfile()).Motivation,
			wantFirstFocus: "Upper Body Strength",
		},
		{
			name: "quota exceeded",
			completer: completerFunc(func(context.Context, string, string) (string, error) {
				return "", fmt.Errorf("upstream: %w", ai.ErrQuotaExceeded)
			}),
			wantErr: plan.ErrQuotaExceeded,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := plan.NewService(tt.completer, testhelpers.NewLogger(testhelpers.NewWriter(t)))
			p := sampleProfile()

			doc, source, err := svc.Generate(t.Context(), p)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Generate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if source != tt.wantSource {
				t.Errorf("source = %q, want %q", source, tt.wantSource)
			}
			if doc.Motivation != tt.wantMotiv {
				t.Errorf("motivation = %q, want %q", doc.Motivation, tt.wantMotiv)
			}
			if got := doc.WorkoutPlan.Days[0].Focus; got != tt.wantFirstFocus {
				t.Errorf("day 1 focus = %q, want %q", got, tt.wantFirstFocus)
			}
			if diff := cmp.Diff(p, doc.UserProfile); diff != "" {
				t.Errorf("profile mismatch (-want +got):\n%s", diff)
			}
			id, err := uuid.Parse(doc.ID)
			if err != nil {
				t.Errorf("id %q is not a uuid: %v", doc.ID, err)
			} else if id.Version() != 7 {
				t.Errorf("id version = %d, want 7", id.Version())
			}
			if doc.CreatedAt.IsZero() {
				t.Error("createdAt is zero")
			}
		})
	}
}

func TestService_Generate_promptsModel(t *testing.T) {
	var gotSystem, gotUser string
	svc := plan.NewService(completerFunc(func(_ context.Context, systemPrompt, userPrompt string) (string, error) {
		gotSystem, gotUser = systemPrompt, userPrompt
		return "", errors.New("offline")
	}), testhelpers.NewLogger(testhelpers.NewWriter(t)))

	if _, _, err := svc.Generate(t.Context(), sampleProfile()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if gotSystem != plan.SystemPrompt {
		t.Errorf("system prompt = %q", gotSystem)
	}
	if gotUser != plan.BuildPrompt(sampleProfile()) {
		t.Error("user prompt does not match BuildPrompt")
	}
}

func TestService_Generate_uniqueIDs(t *testing.T) {
	svc := plan.NewService(nil, testhelpers.NewLogger(testhelpers.NewWriter(t)))
	seen := make(map[string]bool)
	for range 20 {
		doc, _, err := svc.Generate(t.Context(), sampleProfile())
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if seen[doc.ID] {
			t.Fatalf("duplicate id %s", doc.ID)
		}
		seen[doc.ID] = true
	}
}
