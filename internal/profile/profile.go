// Package profile holds the user profile submitted through the onboarding form and validates its presence rules.
package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type FitnessGoal string

const (
	GoalFatLoss        FitnessGoal = "fat_loss"
	GoalMuscleGain     FitnessGoal = "muscle_gain"
	GoalStrength       FitnessGoal = "strength"
	GoalFlexibility    FitnessGoal = "flexibility"
	GoalGeneralFitness FitnessGoal = "general_fitness"
)

type FitnessLevel string

const (
	LevelBeginner     FitnessLevel = "beginner"
	LevelIntermediate FitnessLevel = "intermediate"
	LevelAdvanced     FitnessLevel = "advanced"
)

type WorkoutLocation string

const (
	LocationHome    WorkoutLocation = "home"
	LocationGym     WorkoutLocation = "gym"
	LocationOutdoor WorkoutLocation = "outdoor"
)

type DietaryPreference string

const (
	DietVegetarian    DietaryPreference = "vegetarian"
	DietNonVegetarian DietaryPreference = "non_vegetarian"
	DietVegan         DietaryPreference = "vegan"
	DietKeto          DietaryPreference = "keto"
)

// Number is a profile quantity that HTML forms post as a string and API clients post as a JSON number.
// The zero value means the field was left blank.
type Number float64

// UnmarshalJSON accepts 72, 72.5, "72", "" and null.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("unmarshal number string: %w", err)
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*n = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", raw, err)
	}
	*n = Number(f)
	return nil
}

// String formats the number without trailing zeros so that 72 renders as "72" and not "72.000000".
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// UserProfile is the immutable input to plan generation.
type UserProfile struct {
	Name              string            `json:"name"`
	Age               Number            `json:"age"`
	Gender            Gender            `json:"gender"`
	Height            Number            `json:"height"`
	Weight            Number            `json:"weight"`
	FitnessGoal       FitnessGoal       `json:"fitnessGoal"`
	FitnessLevel      FitnessLevel      `json:"fitnessLevel"`
	WorkoutLocation   WorkoutLocation   `json:"workoutLocation"`
	DietaryPreference DietaryPreference `json:"dietaryPreference"`
	MedicalHistory    string            `json:"medicalHistory,omitempty"`
	Injuries          string            `json:"injuries,omitempty"`
	StressLevel       Number            `json:"stressLevel,omitempty"`
	SleepQuality      Number            `json:"sleepQuality,omitempty"`
}
