package plan

import (
	"time"

	"github.com/myrjola/fitcoach/internal/profile"
)

// TotalDays is the fixed length of a generated plan.
const TotalDays = 7

// MealSlots lists the meal keys every diet plan must contain.
//
//nolint:gochecknoglobals // read-only table.
var MealSlots = []string{"breakfast", "lunch", "dinner", "snacks"}

// Exercise is a single movement prescribed for a day.
type Exercise struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Sets         int      `json:"sets"`
	Reps         string   `json:"reps"`
	Rest         string   `json:"rest"`
	Difficulty   string   `json:"difficulty,omitempty"`
	Tips         string   `json:"tips"`
	Alternatives []string `json:"alternatives"`
}

// Day is one entry of the weekly schedule.
type Day struct {
	Day       int        `json:"day"`
	Focus     string     `json:"focus"`
	Warmup    string     `json:"warmup"`
	Exercises []Exercise `json:"exercises"`
	Cooldown  string     `json:"cooldown"`
}

// WorkoutPlan is the weekly training schedule.
type WorkoutPlan struct {
	TotalDays         int    `json:"totalDays"`
	RestDays          []int  `json:"restDays"`
	EstimatedDuration string `json:"estimatedDuration"`
	Days              []Day  `json:"days"`
}

// Macros holds the macronutrient split as percentage strings such as "25%".
type Macros struct {
	Protein string `json:"protein"`
	Carbs   string `json:"carbs"`
	Fats    string `json:"fats"`
}

// MealItem is a single food in a meal slot.
type MealItem struct {
	ID       string `json:"id"`
	Item     string `json:"item"`
	Portion  string `json:"portion"`
	Calories int    `json:"calories"`
	Protein  string `json:"protein"`
	PrepTime string `json:"prepTime"`
}

// DietPlan is the daily nutrition template.
type DietPlan struct {
	DailyCalories int                   `json:"dailyCalories"`
	Macros        Macros                `json:"macros"`
	Meals         map[string][]MealItem `json:"meals"`
	Hydration     string                `json:"hydration"`
	Supplements   string                `json:"supplements,omitempty"`
}

// Content is the plan payload produced either by the model or by the fallback generator.
type Content struct {
	WorkoutPlan  WorkoutPlan `json:"workoutPlan"`
	DietPlan     DietPlan    `json:"dietPlan"`
	Motivation   string      `json:"motivation"`
	CoachingTips []string    `json:"coachingTips"`
	SafetyNotes  []string    `json:"safetyNotes"`
}

// Source tells where the content of a document came from. It is not part of the persisted document.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Document is the persisted unit: the plan content plus generation metadata.
type Document struct {
	ID          string              `json:"id"`
	UserProfile profile.UserProfile `json:"userProfile"`
	Content
	CreatedAt time.Time `json:"createdAt"`
}
