// Package imagery resolves illustrative image URLs for meals and exercises.
//
// Resolution degrades through three tiers, each attempted at most once: a generated image, a stock photo search
// URL and finally a fixed pool of photos. Resolve never fails.
package imagery

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"strings"
	"unicode"

	"github.com/myrjola/fitcoach/internal/errors"
)

// Category selects the prompt framing, the search keywords and the fallback pool.
type Category string

const (
	CategoryMeal     Category = "meal"
	CategoryExercise Category = "exercise"
)

// ParseCategory maps anything that is not "meal" to CategoryExercise.
func ParseCategory(s string) Category {
	if Category(s) == CategoryMeal {
		return CategoryMeal
	}
	return CategoryExercise
}

// Tier identifies the degradation step that produced an image URL.
type Tier string

const (
	TierGenerated Tier = "generated"
	TierSearch    Tier = "search"
	TierPool      Tier = "pool"
)

// Generator creates an image for a prompt and returns its URL.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result is a resolved image.
type Result struct {
	URL  string
	Tier Tier
}

// Generated reports whether the URL points to a freshly generated image.
func (r Result) Generated() bool {
	return r.Tier == TierGenerated
}

const poolSuffix = "?w=600&h=400&fit=crop&q=80"

//nolint:gochecknoglobals // read-only tables.
var pools = map[Category][]string{
	CategoryMeal: {
		"https://images.unsplash.com/photo-1565299624946-b28f40a0ca4b" + poolSuffix,
		"https://images.unsplash.com/photo-1512621776951-a57141f2eefd" + poolSuffix,
		"https://images.unsplash.com/photo-1490645935967-10de6ba17061" + poolSuffix,
		"https://images.unsplash.com/photo-1467003909585-2f8a72700288" + poolSuffix,
	},
	CategoryExercise: {
		"https://images.unsplash.com/photo-1571019613454-1cb2f99b2d8b" + poolSuffix,
		"https://images.unsplash.com/photo-1544367567-0f2fcb009e0b" + poolSuffix,
		"https://images.unsplash.com/photo-1581009146145-b5ef050c2e1e" + poolSuffix,
		"https://images.unsplash.com/photo-1518611012118-696072aa579a" + poolSuffix,
	},
}

// Pool returns a copy of the fixed fallback photos of a category.
func Pool(c Category) []string {
	return append([]string(nil), pools[ParseCategory(string(c))]...)
}

var errEmptyQuery = errors.NewSentinel("search query is empty")

// Resolver walks the degradation tiers.
type Resolver struct {
	generator     Generator
	searchBaseURL string
	logger        *slog.Logger
	pick          func(n int) int
}

// NewResolver creates a Resolver. A nil generator skips the generated tier.
func NewResolver(generator Generator, searchBaseURL string, logger *slog.Logger) *Resolver {
	return &Resolver{
		generator:     generator,
		searchBaseURL: searchBaseURL,
		logger:        logger,
		pick:          rand.IntN,
	}
}

// Resolve returns an image URL for prompt.
func (r *Resolver) Resolve(ctx context.Context, prompt string, category Category) Result {
	category = ParseCategory(string(category))

	if r.generator != nil {
		imageURL, err := r.generator.Generate(ctx, framePrompt(prompt, category))
		if err == nil && imageURL != "" {
			return Result{URL: imageURL, Tier: TierGenerated}
		}
		if err == nil {
			err = errors.New("generated image has no url")
		}
		r.logger.LogAttrs(ctx, slog.LevelWarn, "image generation failed, using search image",
			slog.String("category", string(category)), errors.SlogError(err))
	}

	searchURL, err := r.searchURL(prompt, category)
	if err == nil {
		return Result{URL: searchURL, Tier: TierSearch}
	}
	r.logger.LogAttrs(ctx, slog.LevelWarn, "search query construction failed, using image pool",
		slog.String("category", string(category)), errors.SlogError(err))

	pool := pools[category]
	return Result{URL: pool[r.pick(len(pool))], Tier: TierPool}
}

func framePrompt(prompt string, category Category) string {
	if category == CategoryMeal {
		return fmt.Sprintf("Professional food photography: %s meal, beautifully plated, appetizing presentation, "+
			"restaurant quality, natural lighting, nutritious healthy food, clean background", prompt)
	}
	return fmt.Sprintf("Fitness demonstration photo: Person performing %s exercise with perfect form, "+
		"proper technique, gym setting, athletic wear, instructional fitness photography, clear posture", prompt)
}

// SearchQuery lower-cases prompt, drops everything except ASCII letters, digits and spaces, and appends the
// category keywords. It fails when nothing of the prompt survives.
func SearchQuery(prompt string, category Category) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, strings.ToLower(prompt))
	words := strings.Fields(cleaned)
	if len(words) == 0 {
		return "", errEmptyQuery
	}
	sanitized := strings.Join(words, " ")

	if ParseCategory(string(category)) == CategoryMeal {
		return "healthy " + sanitized + " food nutrition", nil
	}
	return sanitized + " exercise fitness workout", nil
}

func (r *Resolver) searchURL(prompt string, category Category) (string, error) {
	query, err := SearchQuery(prompt, category)
	if err != nil {
		return "", err
	}
	base, err := url.Parse(r.searchBaseURL)
	if err != nil {
		return "", errors.Wrap(err, "parse search base url", slog.String("url", r.searchBaseURL))
	}
	if base.Scheme == "" || base.Host == "" {
		return "", errors.New("search base url is not absolute", slog.String("url", r.searchBaseURL))
	}
	base.RawQuery = url.PathEscape(query)
	return base.String(), nil
}
