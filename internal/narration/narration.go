// Package narration turns a plan document into text that a speech synthesizer can read aloud.
package narration

import (
	"fmt"
	"strings"

	"github.com/myrjola/fitcoach/internal/errors"
	"github.com/myrjola/fitcoach/internal/plan"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Section is the part of the plan to narrate.
type Section string

const (
	SectionWorkout  Section = "workout"
	SectionDiet     Section = "diet"
	SectionCoaching Section = "coaching"
)

// ErrUnknownSection is returned for sections other than workout, diet and coaching.
var ErrUnknownSection = errors.NewSentinel("unknown narration section")

// ParseSection validates a section name.
func ParseSection(s string) (Section, error) {
	switch section := Section(strings.ToLower(strings.TrimSpace(s))); section {
	case SectionWorkout, SectionDiet, SectionCoaching:
		return section, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSection, s)
	}
}

// Text renders the narration of one section of c.
func Text(c plan.Content, section Section) (string, error) {
	switch section {
	case SectionWorkout:
		return workout(c.WorkoutPlan), nil
	case SectionDiet:
		return diet(c.DietPlan), nil
	case SectionCoaching:
		return coaching(c), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
}

func workout(w plan.WorkoutPlan) string {
	days := make([]string, 0, len(w.Days))
	for _, d := range w.Days {
		// Focus is a short label, so a leading "1." is text and not a markdown list.
		focus := strings.Join(strings.Fields(d.Focus), " ")
		days = append(days, fmt.Sprintf("Day %d focuses on %s", d.Day, focus))
	}
	return fmt.Sprintf("Your %d-day workout plan includes: %s", len(w.Days), strings.Join(days, ", "))
}

func diet(d plan.DietPlan) string {
	return fmt.Sprintf("Your daily nutrition plan includes %d calories with balanced meals for "+
		"breakfast, lunch, dinner and snacks", d.DailyCalories)
}

func coaching(c plan.Content) string {
	sentences := make([]string, 0, len(c.CoachingTips)+1)
	for _, s := range append([]string{c.Motivation}, c.CoachingTips...) {
		s = PlainText(s)
		if s == "" {
			continue
		}
		if !strings.ContainsAny(s[len(s)-1:], ".!?") {
			s += "."
		}
		sentences = append(sentences, s)
	}
	return strings.Join(sentences, " ")
}

// PlainText strips markdown from model-authored text. Code blocks and raw HTML are dropped and whitespace is
// collapsed so the result reads as a single paragraph.
func PlainText(markdown string) string {
	source := []byte(markdown)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				b.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.Write(node.Label(source))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(b.String()), " ")
}
