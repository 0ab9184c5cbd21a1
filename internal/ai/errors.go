package ai

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/myrjola/fitcoach/internal/errors"
	"github.com/openai/openai-go/v3"
)

// ErrorKind categorises upstream failures for logging and for the quota decision.
type ErrorKind string

const (
	KindQuotaExceeded  ErrorKind = "quota_exceeded"
	KindRateLimit      ErrorKind = "rate_limit"
	KindAuthentication ErrorKind = "authentication"
	KindInvalidRequest ErrorKind = "invalid_request"
	KindServer         ErrorKind = "server_error"
	KindTimeout        ErrorKind = "timeout"
	KindUnknown        ErrorKind = "unknown"
)

// ErrQuotaExceeded is reported when the upstream account has run out of credit.
// It is the only upstream failure surfaced to API clients.
var ErrQuotaExceeded = errors.NewSentinel("API quota exceeded")

const quotaCode = "insufficient_quota"

// Error is an upstream failure annotated with its kind.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	err        error
}

func (e *Error) Error() string {
	return "ai upstream " + string(e.Kind) + ": " + e.err.Error()
}

func (e *Error) Unwrap() []error {
	if e.Kind == KindQuotaExceeded {
		return []error{ErrQuotaExceeded, e.err}
	}
	return []error{e.err}
}

// LogValue lets failures be logged with their kind and status.
func (e *Error) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", string(e.Kind)),
		slog.Int("status", e.StatusCode),
		slog.String("message", e.err.Error()),
	)
}

// IsQuotaExceeded reports whether err signals an exhausted upstream quota.
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

// KindOf returns the ErrorKind of err, KindUnknown for non-upstream errors.
func KindOf(err error) ErrorKind {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr.Kind
	}
	return KindUnknown
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	classified := &Error{Kind: KindUnknown, StatusCode: 0, err: err}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		classified.Kind = KindTimeout
		return classified
	}

	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return classified
	}
	classified.StatusCode = apiErr.StatusCode

	switch {
	case apiErr.Code == quotaCode || apiErr.Type == quotaCode:
		classified.Kind = KindQuotaExceeded
	case apiErr.StatusCode == http.StatusTooManyRequests:
		classified.Kind = KindRateLimit
	case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
		classified.Kind = KindAuthentication
	case apiErr.StatusCode >= http.StatusInternalServerError:
		classified.Kind = KindServer
	case apiErr.StatusCode >= http.StatusBadRequest:
		classified.Kind = KindInvalidRequest
	}
	return classified
}
