package plan

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/myrjola/fitcoach/internal/profile"
)

// SystemPrompt reinforces the JSON-only output contract of BuildPrompt.
const SystemPrompt = "You are an expert fitness coach. Always respond with valid JSON only. " +
	"No additional text or formatting."

// BuildPrompt renders the instruction sent to the chat model for p.
//
// Optional profile fields are left out entirely when absent. The prompt embeds a complete example of the output
// schema because ParseContent rejects anything that deviates from it.
func BuildPrompt(p profile.UserProfile) string {
	var b strings.Builder

	b.WriteString("You are an expert personal fitness coach with 15+ years of experience. ")
	b.WriteString("Create a personalized 7-day fitness plan for:\n\n")

	b.WriteString("USER PROFILE:\n")
	fmt.Fprintf(&b, "- Name: %s\n", p.Name)
	fmt.Fprintf(&b, "- Age: %s, Gender: %s\n", p.Age, p.Gender)
	fmt.Fprintf(&b, "- Height: %scm, Weight: %skg\n", p.Height, p.Weight)
	fmt.Fprintf(&b, "- Goal: %s\n", p.FitnessGoal)
	fmt.Fprintf(&b, "- Fitness Level: %s\n", p.FitnessLevel)
	fmt.Fprintf(&b, "- Workout Location: %s\n", p.WorkoutLocation)
	fmt.Fprintf(&b, "- Dietary Preference: %s\n", p.DietaryPreference)
	if strings.TrimSpace(p.MedicalHistory) != "" {
		fmt.Fprintf(&b, "- Medical History: %s\n", p.MedicalHistory)
	}
	if strings.TrimSpace(p.Injuries) != "" {
		fmt.Fprintf(&b, "- Current Injuries: %s\n", p.Injuries)
	}
	if p.StressLevel != 0 {
		fmt.Fprintf(&b, "- Stress Level: %s/5\n", p.StressLevel)
	}
	if p.SleepQuality != 0 {
		fmt.Fprintf(&b, "- Sleep Quality: %s/5\n", p.SleepQuality)
	}

	b.WriteString(`
REQUIREMENTS:
1. Create a 7-day workout plan with specific exercises, sets, reps, rest periods
2. Design a daily nutrition plan with meals, portions, and calories
3. Write encouraging coaching advice in a warm, professional tone
4. Consider their limitations, preferences, and safety
5. Focus on sustainable, achievable practices
6. Include form tips and exercise alternatives

RESPONSE FORMAT (Valid JSON only, exactly 7 entries in "days" numbered 1 to 7, every meal slot present):
`)
	b.WriteString(schemaExample(p.Name))

	fmt.Fprintf(&b, "\n\nBe specific, personal, and avoid generic advice. Write as if you're speaking directly to %s. "+
		"Respond with the JSON object only, without markdown code fences or any other text. "+
		"Ensure all JSON is properly formatted and valid.", p.Name)

	return b.String()
}

// schemaExample renders an abbreviated plan with a single day that shows every key the parser expects.
func schemaExample(name string) string {
	example := Content{
		WorkoutPlan: WorkoutPlan{
			TotalDays:         TotalDays,
			RestDays:          []int{7},
			EstimatedDuration: "45-60 minutes per session",
			Days: []Day{{
				Day:    1,
				Focus:  "Upper Body Strength",
				Warmup: standardWarmup,
				Exercises: []Exercise{{
					ID:           "exercise_1",
					Name:         "Push-ups",
					Sets:         3,
					Reps:         "8-12",
					Rest:         "60 seconds",
					Difficulty:   "beginner",
					Tips:         "Keep core engaged, full range of motion",
					Alternatives: []string{"Knee push-ups", "Wall push-ups"},
				}},
				Cooldown: standardCooldown,
			}},
		},
		DietPlan: DietPlan{
			DailyCalories: 2000, //nolint:mnd // example value.
			Macros:        Macros{Protein: "25%", Carbs: "45%", Fats: "30%"},
			Meals: map[string][]MealItem{
				"breakfast": {{ID: "breakfast_1", Item: "Oatmeal with berries and nuts",
					Portion: "1 cup oats + 1/2 cup berries + 1 tbsp nuts", Calories: 350, Protein: "12g",
					PrepTime: "10 minutes"}},
				"lunch": {{ID: "lunch_1", Item: "Grilled chicken salad", Portion: "150g chicken + 2 cups mixed greens",
					Calories: 400, Protein: "35g", PrepTime: "15 minutes"}},
				"dinner": {{ID: "dinner_1", Item: "Baked salmon with quinoa",
					Portion: "150g salmon + 1 cup quinoa + vegetables", Calories: 500, Protein: "40g",
					PrepTime: "25 minutes"}},
				"snacks": {{ID: "snack_1", Item: "Greek yogurt with honey", Portion: "1 cup yogurt + 1 tbsp honey",
					Calories: 200, Protein: "15g", PrepTime: "2 minutes"}},
			},
			Hydration:   "8-10 glasses of water daily",
			Supplements: "Consider multivitamin if needed",
		},
		Motivation: "Personalized encouraging message for " + name,
		CoachingTips: []string{
			"Start each workout with proper warm-up",
			"Focus on form over speed",
			"Listen to your body and rest when needed",
			"Stay consistent with your nutrition",
		},
		SafetyNotes: []string{
			"Stop if you feel pain or discomfort",
			"Consult healthcare provider before starting",
			"Progress gradually to avoid injury",
		},
	}

	out, err := json.MarshalIndent(example, "", "  ")
	if err != nil {
		// Content holds only strings, ints, slices, and maps with string keys.
		panic(fmt.Sprintf("marshal schema example: %v", err))
	}
	return string(out)
}
