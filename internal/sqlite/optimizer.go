package sqlite

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/fitcoach/internal/errors"
)

// startDatabaseOptimizer runs optimize once per interval until ctx is done.
// See https://www.sqlite.org/pragma.html#pragma_optimize.
func (db *Database) startDatabaseOptimizer(ctx context.Context) {
	if _, err := db.DB.ExecContext(ctx, "PRAGMA optimize = 0x10002;"); err != nil && ctx.Err() == nil {
		db.logger.LogAttrs(ctx, slog.LevelError, "failed to optimize database",
			errors.SlogError(errors.Wrap(err, "init optimize database")))
	}
	ticker := time.NewTicker(optimizeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		start := time.Now()
		if _, err := db.DB.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
			if ctx.Err() == nil {
				db.logger.LogAttrs(ctx, slog.LevelError, "failed to optimize database",
					errors.SlogError(errors.Wrap(err, "optimize database")))
			}
			continue
		}
		db.logger.LogAttrs(ctx, slog.LevelDebug, "optimized database", slog.Duration("duration", time.Since(start)))
	}
}
