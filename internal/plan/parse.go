package plan

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/myrjola/fitcoach/internal/errors"
)

// ErrInvalidPlan is returned when model output does not match the plan schema.
var ErrInvalidPlan = errors.NewSentinel("invalid plan")

// ParseContent strictly decodes model output into Content.
//
// The output must be a single JSON object with no surrounding prose. Unknown keys are tolerated, but any missing
// required key, wrong type, or broken invariant rejects the whole payload. Nothing is partially accepted.
func ParseContent(raw string) (Content, error) {
	data := []byte(strings.TrimSpace(raw))
	var c Content
	// Unmarshal rejects trailing prose after the object.
	if err := json.Unmarshal(data, &c); err != nil {
		return Content{}, fmt.Errorf("%w: decode: %w", ErrInvalidPlan, err)
	}
	missing, err := missingKeys(data)
	if err != nil {
		return Content{}, fmt.Errorf("%w: decode: %w", ErrInvalidPlan, err)
	}
	if len(missing) > 0 {
		return Content{}, fmt.Errorf("%w: missing %s", ErrInvalidPlan, strings.Join(missing, ", "))
	}
	if err = c.Validate(); err != nil {
		return Content{}, err
	}
	return c, nil
}

// Validate checks the structural invariants of plan content.
func (c Content) Validate() error {
	var problems []string
	problems = append(problems, c.WorkoutPlan.problems()...)
	problems = append(problems, c.DietPlan.problems()...)
	if strings.TrimSpace(c.Motivation) == "" {
		problems = append(problems, "motivation is empty")
	}
	if c.CoachingTips == nil {
		problems = append(problems, "coachingTips is null")
	}
	if c.SafetyNotes == nil {
		problems = append(problems, "safetyNotes is null")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPlan, strings.Join(problems, "; "))
	}
	return nil
}

func (w WorkoutPlan) problems() []string {
	var problems []string
	if w.TotalDays != TotalDays {
		problems = append(problems, fmt.Sprintf("totalDays is %d", w.TotalDays))
	}
	if len(w.Days) != TotalDays {
		problems = append(problems, fmt.Sprintf("got %d days", len(w.Days)))
	}
	if w.RestDays == nil {
		problems = append(problems, "restDays is null")
	}
	for _, restDay := range w.RestDays {
		if restDay < 1 || restDay > TotalDays {
			problems = append(problems, fmt.Sprintf("rest day %d out of range", restDay))
		}
	}

	exerciseIDs := make(map[string]bool)
	for i, d := range w.Days {
		if d.Day != i+1 {
			problems = append(problems, fmt.Sprintf("day at position %d is numbered %d", i+1, d.Day))
		}
		if strings.TrimSpace(d.Focus) == "" {
			problems = append(problems, fmt.Sprintf("day %d has no focus", d.Day))
		}
		if len(d.Exercises) == 0 {
			problems = append(problems, fmt.Sprintf("day %d has no exercises", d.Day))
		}
		for _, e := range d.Exercises {
			switch {
			case e.ID == "" || e.Name == "":
				problems = append(problems, fmt.Sprintf("day %d has an exercise without id or name", d.Day))
			case e.Sets <= 0:
				problems = append(problems, fmt.Sprintf("exercise %s has %d sets", e.ID, e.Sets))
			case exerciseIDs[e.ID]:
				problems = append(problems, fmt.Sprintf("duplicate exercise id %s", e.ID))
			case e.Alternatives == nil:
				problems = append(problems, fmt.Sprintf("exercise %s has null alternatives", e.ID))
			}
			exerciseIDs[e.ID] = true
		}
	}
	return problems
}

func (d DietPlan) problems() []string {
	var problems []string
	if d.DailyCalories <= 0 {
		problems = append(problems, fmt.Sprintf("dailyCalories is %d", d.DailyCalories))
	}
	if d.Macros.Protein == "" || d.Macros.Carbs == "" || d.Macros.Fats == "" {
		problems = append(problems, "macros are incomplete")
	}
	for _, slot := range MealSlots {
		items := d.Meals[slot]
		if len(items) == 0 {
			problems = append(problems, fmt.Sprintf("meal slot %s is empty", slot))
		}
		for _, item := range items {
			if item.ID == "" || item.Item == "" || item.Calories <= 0 {
				problems = append(problems, fmt.Sprintf("meal slot %s has an incomplete item", slot))
			}
		}
	}
	return problems
}

// Keys that every plan object must carry. Optional keys such as difficulty and supplements are not listed.
//
//nolint:gochecknoglobals // read-only tables.
var (
	contentKeys  = []string{"workoutPlan", "dietPlan", "motivation", "coachingTips", "safetyNotes"}
	workoutKeys  = []string{"totalDays", "restDays", "estimatedDuration", "days"}
	dayKeys      = []string{"day", "focus", "warmup", "exercises", "cooldown"}
	exerciseKeys = []string{"id", "name", "sets", "reps", "rest", "tips", "alternatives"}
	dietKeys     = []string{"dailyCalories", "macros", "meals", "hydration"}
	macroKeys    = []string{"protein", "carbs", "fats"}
	mealItemKeys = []string{"id", "item", "portion", "calories", "protein", "prepTime"}
)

// missingKeys walks the raw object and lists the paths of required keys that are absent or null. Decoding into
// Content alone cannot tell a missing key from a zero value.
func missingKeys(data []byte) ([]string, error) {
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("unmarshal object: %w", err)
	}

	var missing []string
	require := func(obj map[string]any, path string, keys []string) {
		for _, key := range keys {
			if val, ok := obj[key]; !ok || val == nil {
				missing = append(missing, path+key)
			}
		}
	}

	require(root, "", contentKeys)
	if workout, ok := root["workoutPlan"].(map[string]any); ok {
		require(workout, "workoutPlan.", workoutKeys)
		days, _ := workout["days"].([]any)
		for i, rawDay := range days {
			day, isObject := rawDay.(map[string]any)
			if !isObject {
				continue
			}
			dayPath := fmt.Sprintf("workoutPlan.days[%d].", i)
			require(day, dayPath, dayKeys)
			exercises, _ := day["exercises"].([]any)
			for j, rawExercise := range exercises {
				if exercise, isExercise := rawExercise.(map[string]any); isExercise {
					require(exercise, fmt.Sprintf("%sexercises[%d].", dayPath, j), exerciseKeys)
				}
			}
		}
	}
	if diet, ok := root["dietPlan"].(map[string]any); ok {
		require(diet, "dietPlan.", dietKeys)
		if macros, isObject := diet["macros"].(map[string]any); isObject {
			require(macros, "dietPlan.macros.", macroKeys)
		}
		meals, _ := diet["meals"].(map[string]any)
		for _, slot := range MealSlots {
			items, _ := meals[slot].([]any)
			for i, rawItem := range items {
				if item, isObject := rawItem.(map[string]any); isObject {
					require(item, fmt.Sprintf("dietPlan.meals.%s[%d].", slot, i), mealItemKeys)
				}
			}
		}
	}
	return missing, nil
}
