package profile_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/fitcoach/internal/profile"
)

const anaJSON = `{
	"name": "Ana",
	"age": 30,
	"gender": "female",
	"height": 165,
	"weight": 60,
	"fitnessGoal": "fat_loss",
	"fitnessLevel": "beginner",
	"workoutLocation": "home",
	"dietaryPreference": "vegan"
}`

func TestMissing(t *testing.T) {
	tests := []struct {
		name      string
		candidate map[string]any
		want      []string
	}{
		{
			name:      "empty",
			candidate: map[string]any{},
			want:      profile.RequiredFields,
		},
		{
			name: "complete",
			candidate: map[string]any{
				"name": "Ana", "age": 30.0, "gender": "female", "height": 165.0, "weight": 60.0,
				"fitnessGoal": "fat_loss", "fitnessLevel": "beginner", "workoutLocation": "home",
				"dietaryPreference": "vegan",
			},
			want: nil,
		},
		{
			name: "blank strings and zero numbers",
			candidate: map[string]any{
				"name": "  ", "age": "30", "gender": "female", "height": 0.0, "weight": "",
				"fitnessGoal": "fat_loss", "fitnessLevel": nil, "workoutLocation": "home",
				"dietaryPreference": "vegan",
			},
			want: []string{"name", "height", "weight", "fitnessLevel"},
		},
		{
			name: "optional fields do not matter",
			candidate: map[string]any{
				"name": "Ana", "age": "30", "gender": "female", "height": "165", "weight": "60",
				"fitnessGoal": "fat_loss", "fitnessLevel": "beginner", "workoutLocation": "home",
				"dietaryPreference": "vegan", "injuries": "", "stressLevel": "",
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, profile.Missing(tt.candidate)); diff != "" {
				t.Errorf("Missing() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse(t *testing.T) {
	got, err := profile.Parse([]byte(anaJSON))
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	want := profile.UserProfile{ //nolint:exhaustruct // optional fields absent.
		Name:              "Ana",
		Age:               30,
		Gender:            profile.GenderFemale,
		Height:            165,
		Weight:            60,
		FitnessGoal:       profile.GoalFatLoss,
		FitnessLevel:      profile.LevelBeginner,
		WorkoutLocation:   profile.LocationHome,
		DietaryPreference: profile.DietVegan,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_formStrings(t *testing.T) {
	body := `{"name":"Bo","age":"41","gender":"male","height":"180.5","weight":"82","fitnessGoal":"strength",
		"fitnessLevel":"advanced","workoutLocation":"gym","dietaryPreference":"keto","stressLevel":"",
		"sleepQuality":"4","injuries":"left knee"}`
	got, err := profile.Parse([]byte(body))
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if got.Height != 180.5 || got.Age != 41 {
		t.Errorf("numbers not parsed from strings: %+v", got)
	}
	if got.StressLevel != 0 {
		t.Errorf("blank stress level should be absent, got %v", got.StressLevel)
	}
	if got.SleepQuality != 4 {
		t.Errorf("sleep quality = %v, want 4", got.SleepQuality)
	}
	if got.Height.String() != "180.5" || got.Weight.String() != "82" {
		t.Errorf("unexpected formatting: %s %s", got.Height, got.Weight)
	}
}

func TestParse_missingWeight(t *testing.T) {
	body := `{"name":"Ana","age":30,"gender":"female","height":165,"fitnessGoal":"fat_loss",
		"fitnessLevel":"beginner","workoutLocation":"home","dietaryPreference":"vegan"}`
	_, err := profile.Parse([]byte(body))
	var missingErr *profile.MissingFieldsError
	if !errors.As(err, &missingErr) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}
	if diff := cmp.Diff([]string{"weight"}, missingErr.Fields); diff != "" {
		t.Errorf("missing fields mismatch (-want +got):\n%s", diff)
	}
	if got, want := err.Error(), "Missing required fields: weight"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestParse_zeroNumbers(t *testing.T) {
	body := `{"name":"Ana","age":0,"gender":"female","height":0.0,"weight":"0","fitnessGoal":"fat_loss",
		"fitnessLevel":"beginner","workoutLocation":"home","dietaryPreference":"vegan"}`
	_, err := profile.Parse([]byte(body))
	var missingErr *profile.MissingFieldsError
	if !errors.As(err, &missingErr) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}
	// JSON zeros are blank; the form string "0" counts as present.
	if diff := cmp.Diff([]string{"age", "height"}, missingErr.Fields); diff != "" {
		t.Errorf("missing fields mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_malformed(t *testing.T) {
	for _, body := range []string{"", "not json", "null", "[]", `{"name":"Ana","age":"thirty","gender":"female",
		"height":165,"weight":60,"fitnessGoal":"fat_loss","fitnessLevel":"beginner","workoutLocation":"home",
		"dietaryPreference":"vegan"}`} {
		_, err := profile.Parse([]byte(body))
		if err == nil {
			t.Errorf("Parse(%q) expected error", body)
			continue
		}
		var missingErr *profile.MissingFieldsError
		if errors.As(err, &missingErr) {
			t.Errorf("Parse(%q) malformed body reported as missing fields", body)
		}
	}
}
