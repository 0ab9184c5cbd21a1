package plan

import (
	"fmt"

	"github.com/myrjola/fitcoach/internal/profile"
)

const (
	standardWarmup   = "5-10 minutes light cardio + dynamic stretching"
	standardCooldown = "5-10 minutes stretching"
)

// Fallback builds the static plan used whenever the model is unavailable or its output is unusable.
//
// The result depends on the profile only through the salutation and is valid according to Content.Validate.
// Every call returns freshly allocated slices and maps so callers may modify the result.
func Fallback(p profile.UserProfile) Content {
	return Content{
		WorkoutPlan: WorkoutPlan{
			TotalDays:         TotalDays,
			RestDays:          []int{7},
			EstimatedDuration: "45-60 minutes per session",
			Days:              fallbackDays(),
		},
		DietPlan: fallbackDiet(),
		Motivation: fmt.Sprintf(
			"Hi %s! This is your personalized fitness plan. Stay consistent and you'll see great results!", p.Name),
		CoachingTips: []string{
			"Start each workout with proper warm-up",
			"Focus on form over speed",
			"Listen to your body and rest when needed",
		},
		SafetyNotes: []string{
			"Stop if you feel pain or discomfort",
			"Consult healthcare provider before starting",
		},
	}
}

func trainingDay(day int, focus string, exercises ...Exercise) Day {
	for i := range exercises {
		exercises[i].ID = fmt.Sprintf("exercise_%d_%d", day, i+1)
	}
	return Day{
		Day:       day,
		Focus:     focus,
		Warmup:    standardWarmup,
		Exercises: exercises,
		Cooldown:  standardCooldown,
	}
}

func move(name string, sets int, reps, rest, tips string, alternatives ...string) Exercise {
	return Exercise{
		ID:           "",
		Name:         name,
		Sets:         sets,
		Reps:         reps,
		Rest:         rest,
		Difficulty:   "",
		Tips:         tips,
		Alternatives: alternatives,
	}
}

func fallbackDays() []Day {
	recovery := trainingDay(7, "Rest Day",
		move("Gentle Yoga", 1, "20-30 minutes", "As needed", "Focus on breathing and flexibility",
			"Walking", "Light stretching"))
	recovery.Warmup = "Light stretching or yoga"
	recovery.Cooldown = "Meditation or relaxation"

	return []Day{
		trainingDay(1, "Upper Body Strength",
			move("Push-ups", 3, "8-12", "60 seconds", "Keep core engaged, full range of motion",
				"Knee push-ups", "Wall push-ups"),
			move("Dumbbell Rows", 3, "10-12", "60 seconds", "Keep back straight, squeeze shoulder blades",
				"Resistance band rows", "Bent-over rows")),
		trainingDay(2, "Lower Body Power",
			move("Squats", 3, "10-15", "60 seconds", "Keep knees behind toes, chest up",
				"Chair squats", "Wall sits"),
			move("Lunges", 3, "8-10 each leg", "60 seconds", "Step forward, keep front knee over ankle",
				"Stationary lunges", "Step-ups")),
		trainingDay(3, "Core & Cardio",
			move("Plank", 3, "30-60 seconds", "60 seconds", "Keep body straight, engage core",
				"Knee plank", "Wall plank"),
			move("Mountain Climbers", 3, "20-30", "60 seconds", "Keep hips level, quick movements",
				"Step-ups", "Marching in place")),
		trainingDay(4, "Upper Body Endurance",
			move("Shoulder Press", 3, "10-12", "60 seconds", "Press straight up, engage core",
				"Wall push-ups", "Resistance band press"),
			move("Tricep Dips", 3, "8-12", "60 seconds", "Keep elbows close to body",
				"Chair dips", "Wall push-ups")),
		trainingDay(5, "Lower Body Strength",
			move("Deadlifts", 3, "8-10", "90 seconds", "Keep back straight, hinge at hips",
				"Romanian deadlifts", "Glute bridges"),
			move("Calf Raises", 3, "15-20", "45 seconds", "Rise up on toes, slow controlled movement",
				"Single leg calf raises", "Wall calf raises")),
		trainingDay(6, "Full Body Circuit",
			move("Burpees", 3, "5-10", "90 seconds", "Full body movement, pace yourself",
				"Step-back burpees", "Squat to press"),
			move("Jumping Jacks", 3, "20-30", "60 seconds", "Land softly, keep rhythm",
				"Step touch", "Arm circles")),
		recovery,
	}
}

// fallbackDiet is a single day of meals that applies to every day of the week.
func fallbackDiet() DietPlan {
	return DietPlan{
		DailyCalories: 2000, //nolint:mnd // static template.
		Macros:        Macros{Protein: "25%", Carbs: "45%", Fats: "30%"},
		Meals: map[string][]MealItem{
			"breakfast": {{ID: "breakfast_1", Item: "Oatmeal with berries", Portion: "1 cup",
				Calories: 350, Protein: "12g", PrepTime: "10 minutes"}},
			"lunch": {{ID: "lunch_1", Item: "Grilled chicken salad", Portion: "150g chicken + greens",
				Calories: 400, Protein: "35g", PrepTime: "15 minutes"}},
			"dinner": {{ID: "dinner_1", Item: "Baked salmon with quinoa", Portion: "150g salmon + 1 cup quinoa",
				Calories: 500, Protein: "40g", PrepTime: "25 minutes"}},
			"snacks": {{ID: "snack_1", Item: "Greek yogurt", Portion: "1 cup",
				Calories: 200, Protein: "15g", PrepTime: "2 minutes"}},
		},
		Hydration:   "8-10 glasses of water daily",
		Supplements: "",
	}
}
