// Package flightrecorder keeps a rolling execution trace in memory and dumps it to disk when a request is slow
// enough to hit the handler timeout.
package flightrecorder

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/trace"
	"sync/atomic"
	"time"

	"github.com/myrjola/fitcoach/internal/errors"
)

const (
	defaultMinAge   = 5 * time.Minute
	defaultMaxBytes = 64 * 1024 * 1024
	defaultCooldown = 30 * time.Minute
)

// Service owns the flight recorder and writes captured traces.
type Service struct {
	logger          *slog.Logger
	flightRecorder  *trace.FlightRecorder
	tracesDirectory string
	cooldown        time.Duration
	now             func() time.Time
	lastCapture     atomic.Int64 // unix nanoseconds
}

// Config configures the flight recorder. Zero durations and sizes select the defaults.
type Config struct {
	Logger          *slog.Logger
	MinAge          time.Duration
	MaxBytes        uint64
	Cooldown        time.Duration // minimum time between two captures
	TracesDirectory string
}

// New creates the service and the traces directory.
func New(cfg Config) (*Service, error) {
	if cfg.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if cfg.TracesDirectory == "" {
		return nil, errors.New("traces directory is required")
	}

	if stat, err := os.Stat(cfg.TracesDirectory); err != nil {
		if err = os.MkdirAll(cfg.TracesDirectory, 0o700); err != nil {
			return nil, errors.Wrap(err, "create traces directory", slog.String("dir", cfg.TracesDirectory))
		}
	} else if !stat.IsDir() {
		return nil, errors.New("traces path is not a directory", slog.String("dir", cfg.TracesDirectory))
	}


	return &Service{
		logger: cfg.Logger,
		flightRecorder: trace.NewFlightRecorder(trace.FlightRecorderConfig{
			MinAge:   cmp.Or(cfg.MinAge, defaultMinAge),
			MaxBytes: cmp.Or(cfg.MaxBytes, defaultMaxBytes),
		}),
		tracesDirectory: cfg.TracesDirectory,
		cooldown:        cmp.Or(cfg.Cooldown, defaultCooldown),
		now:             time.Now,
		lastCapture:     atomic.Int64{},
	}, nil
}

// Start begins flight recording.
func (s *Service) Start(ctx context.Context) error {
	if err := s.flightRecorder.Start(); err != nil {
		return errors.Wrap(err, "start flight recorder")
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder started",
		slog.String("dir", s.tracesDirectory),
		slog.Duration("cooldown", s.cooldown))
	return nil
}

// Stop ends flight recording.
func (s *Service) Stop(ctx context.Context) {
	s.flightRecorder.Stop()
	s.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder stopped")
}

// CaptureTrace writes the recorded trace to <reason>-<timestamp>.trace in the traces directory and returns the
// file path. At most one capture happens per cooldown period. Skipped and failed captures return "".
func (s *Service) CaptureTrace(ctx context.Context, reason string, attrs ...slog.Attr) string {
	now := s.now()
	last := s.lastCapture.Load()
	if last != 0 && now.Sub(time.Unix(0, last)) < s.cooldown {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "skipping trace capture due to cooldown",
			slog.Time("last_capture", time.Unix(0, last)))
		return ""
	}
	if !s.lastCapture.CompareAndSwap(last, now.UnixNano()) {
		return ""
	}

	fPath := filepath.Join(s.tracesDirectory, fmt.Sprintf("%s-%s.trace", reason, now.UTC().Format("20060102-150405")))
	if err := s.writeTrace(fPath); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to capture trace", errors.SlogError(err))
		return ""
	}

	s.logger.LogAttrs(ctx, slog.LevelWarn, "captured trace",
		append([]slog.Attr{slog.String("reason", reason), slog.String("file", fPath)}, attrs...)...)
	return fPath
}

func (s *Service) writeTrace(fPath string) (err error) {
	file, err := os.Create(fPath)
	if err != nil {
		return errors.Wrap(err, "create trace file", slog.String("file", fPath))
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			err = errors.Join(err, errors.Wrap(closeErr, "close trace file", slog.String("file", fPath)))
		}
	}()
	if _, err = s.flightRecorder.WriteTo(file); err != nil {
		return errors.Wrap(err, "write trace", slog.String("file", fPath))
	}
	return nil
}
