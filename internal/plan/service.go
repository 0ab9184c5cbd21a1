package plan

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/fitcoach/internal/ai"
	"github.com/myrjola/fitcoach/internal/errors"
	"github.com/myrjola/fitcoach/internal/profile"
)

// ErrQuotaExceeded is returned by Generate when the model account is out of credit.
var ErrQuotaExceeded = ai.ErrQuotaExceeded

// Completer produces a chat completion for a system and user prompt.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Service generates plan documents.
type Service struct {
	completer Completer
	logger    *slog.Logger
	now       func() time.Time
	newID     func() (uuid.UUID, error)
}

// NewService creates a Service. A nil completer means no model credential is configured and every plan comes
// from the fallback generator.
func NewService(completer Completer, logger *slog.Logger) *Service {
	return &Service{
		completer: completer,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewV7,
	}
}

// Generate produces a plan document for the profile.
//
// Model failures and unusable model output degrade to Fallback content. The only error surfaced from the model is
// ErrQuotaExceeded.
func (s *Service) Generate(ctx context.Context, p profile.UserProfile) (Document, Source, error) {
	content, source, err := s.content(ctx, p)
	if err != nil {
		return Document{}, "", err
	}

	id, err := s.newID()
	if err != nil {
		return Document{}, "", errors.Wrap(err, "new document id")
	}

	return Document{
		ID:          id.String(),
		UserProfile: p,
		Content:     content,
		CreatedAt:   s.now().UTC(),
	}, source, nil
}

func (s *Service) content(ctx context.Context, p profile.UserProfile) (Content, Source, error) {
	if s.completer == nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "no model credential configured, using fallback plan")
		return Fallback(p), SourceFallback, nil
	}

	raw, err := s.completer.Complete(ctx, SystemPrompt, BuildPrompt(p))
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			return Content{}, "", errors.Wrap(err, "complete plan")
		}
		s.logger.LogAttrs(ctx, slog.LevelWarn, "model request failed, using fallback plan",
			slog.String("kind", string(ai.KindOf(err))), errors.SlogError(err))
		return Fallback(p), SourceFallback, nil
	}

	content, err := ParseContent(raw)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "model output rejected, using fallback plan",
			slog.Int("output_length", len(raw)), errors.SlogError(err))
		return Fallback(p), SourceFallback, nil
	}

	return content, SourceModel, nil
}
