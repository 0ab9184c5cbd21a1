// Package planstore keeps the single active plan document of a client in its session.
//
// The store is a single slot: Put overwrites the previous document wholesale and Clear removes it. Requests of one
// client are sequential, so there is no locking beyond what the session manager does.
package planstore

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/alexedwards/scs/v2"
	"github.com/myrjola/fitcoach/internal/errors"
	"github.com/myrjola/fitcoach/internal/plan"
)

const key = "fitness-plan"

// ErrNoPlan is returned by Get when the client has no saved plan.
var ErrNoPlan = errors.NewSentinel("no saved plan")

type Store struct {
	sessions *scs.SessionManager
	logger   *slog.Logger
}

func New(sessions *scs.SessionManager, logger *slog.Logger) *Store {
	return &Store{
		sessions: sessions,
		logger:   logger,
	}
}

// Get returns the saved plan. A saved value that no longer decodes is dropped and reported as ErrNoPlan.
func (s *Store) Get(ctx context.Context) (plan.Document, error) {
	raw := s.sessions.GetBytes(ctx, key)
	if len(raw) == 0 {
		return plan.Document{}, ErrNoPlan
	}
	var doc plan.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "dropping undecodable saved plan",
			slog.Int("size", len(raw)), errors.SlogError(err))
		s.sessions.Remove(ctx, key)
		return plan.Document{}, ErrNoPlan
	}
	return doc, nil
}

// Put replaces the saved plan with doc.
func (s *Store) Put(ctx context.Context, doc plan.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "marshal plan document", slog.String("id", doc.ID))
	}
	s.sessions.Put(ctx, key, raw)
	return nil
}

// Clear removes the saved plan. Clearing an empty slot is a no-op.
func (s *Store) Clear(ctx context.Context) {
	s.sessions.Remove(ctx, key)
}
