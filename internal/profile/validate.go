package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNullProfile = errors.New("profile body is null")

// RequiredFields lists the required profile keys in their declared order.
//
//nolint:gochecknoglobals // read-only table.
var RequiredFields = []string{
	"name",
	"age",
	"gender",
	"height",
	"weight",
	"fitnessGoal",
	"fitnessLevel",
	"workoutLocation",
	"dietaryPreference",
}

// MissingFieldsError reports the required fields that were absent or blank.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "Missing required fields: " + strings.Join(e.Fields, ", ")
}

// Missing returns the required fields that are absent or blank in candidate, in declared order.
//
// A field counts as blank when it is null, a whitespace-only string, the number zero, or false. The web form
// posts every field as a string so "0" is present as far as this check goes; positivity is the model's concern.
func Missing(candidate map[string]any) []string {
	var missing []string
	for _, field := range RequiredFields {
		if isBlank(candidate[field]) {
			missing = append(missing, field)
		}
	}
	return missing
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case float64:
		return val == 0
	case bool:
		return !val
	default:
		return false
	}
}

// Parse validates the raw JSON body of a form submission and decodes it into a UserProfile.
//
// Parse returns a *MissingFieldsError if required fields are missing. Any other error means the body is not a
// JSON object or holds values of the wrong type.
func Parse(body []byte) (UserProfile, error) {
	var candidate map[string]any
	if err := json.Unmarshal(body, &candidate); err != nil {
		return UserProfile{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	if candidate == nil {
		return UserProfile{}, errNullProfile
	}
	if missing := Missing(candidate); len(missing) > 0 {
		return UserProfile{}, &MissingFieldsError{Fields: missing}
	}

	var p UserProfile
	if err := json.Unmarshal(body, &p); err != nil {
		return UserProfile{}, fmt.Errorf("decode profile: %w", err)
	}
	return p, nil
}
