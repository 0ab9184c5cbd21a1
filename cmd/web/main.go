package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"github.com/myrjola/fitcoach/internal/ai"
	"github.com/myrjola/fitcoach/internal/envstruct"
	"github.com/myrjola/fitcoach/internal/errors"
	"github.com/myrjola/fitcoach/internal/flightrecorder"
	"github.com/myrjola/fitcoach/internal/imagery"
	"github.com/myrjola/fitcoach/internal/logging"
	"github.com/myrjola/fitcoach/internal/metrics"
	"github.com/myrjola/fitcoach/internal/plan"
	"github.com/myrjola/fitcoach/internal/planstore"
	"github.com/myrjola/fitcoach/internal/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	planService    *plan.Service
	planStore      *planstore.Store
	imageResolver  *imagery.Resolver
	metrics        *metrics.Manager
	registry       *prometheus.Registry
	flightRecorder *flightrecorder.Service
	allowedOrigins []string
	requestTimeout time.Duration
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"FITCOACH_ADDR" envDefault:"localhost:8080"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"FITCOACH_SQLITE_URL" envDefault:"./fitcoach.sqlite3"`
	// XAIAPIKey enables model generated plans. Without it every plan comes from the static template.
	XAIAPIKey  string `env:"XAI_API_KEY" envDefault:""`
	XAIBaseURL string `env:"XAI_BASE_URL" envDefault:"https://api.x.ai/v1/"`
	XAIModel   string `env:"XAI_MODEL" envDefault:"grok-beta"`
	// OpenAIAPIKey enables generated images. Without it images come from the stock photo search.
	OpenAIAPIKey   string `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIBaseURL  string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1/"`
	ImageSearchURL string `env:"FITCOACH_IMAGE_SEARCH_URL" envDefault:"https://source.unsplash.com/600x400/"`
	// RequestTimeout bounds a single request. Plan generation waits for the model, so keep it generous.
	RequestTimeout time.Duration `env:"FITCOACH_REQUEST_TIMEOUT" envDefault:"60s"`
	// SecureCookies should only be disabled for local development over plain HTTP.
	SecureCookies bool `env:"FITCOACH_SECURE_COOKIES" envDefault:"true"`
	// AllowedOrigins is a comma separated list of front-end origins allowed to call the API.
	AllowedOrigins string `env:"FITCOACH_ALLOWED_ORIGINS" envDefault:"*"`
	// TracesDir enables the flight recorder. Traces of timed out requests are written here.
	TracesDir string `env:"FITCOACH_TRACES_DIR" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close db", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	var flightRecorder *flightrecorder.Service
	if cfg.TracesDir != "" {
		if flightRecorder, err = flightrecorder.New(flightrecorder.Config{
			Logger:          logger,
			MinAge:          0,
			MaxBytes:        0,
			Cooldown:        0,
			TracesDirectory: cfg.TracesDir,
		}); err != nil {
			return errors.Wrap(err, "new flight recorder")
		}
		if err = flightRecorder.Start(ctx); err != nil {
			return errors.Wrap(err, "start flight recorder")
		}
		defer flightRecorder.Stop(context.WithoutCancel(ctx))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	sessionStore := sqlite3store.NewWithCleanupInterval(db.DB, time.Hour)
	defer sessionStore.StopCleanup()
	sessionManager := initializeSessionManager(sessionStore, cfg.SecureCookies)

	app := application{
		logger:         logger,
		sessionManager: sessionManager,
		planService:    plan.NewService(newCompleter(ctx, cfg, logger), logger),
		planStore:      planstore.New(sessionManager, logger),
		imageResolver:  imagery.NewResolver(newImageGenerator(ctx, cfg, logger), cfg.ImageSearchURL, logger),
		metrics:        metrics.NewManager("fitcoach", "web", registry),
		registry:       registry,
		flightRecorder: flightRecorder,
		allowedOrigins: splitOrigins(cfg.AllowedOrigins),
		requestTimeout: cfg.RequestTimeout,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr, app.routes()); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

// newCompleter returns nil when no chat credential is configured. The explicit nil interface matters because
// plan.Service checks for it.
func newCompleter(ctx context.Context, cfg config, logger *slog.Logger) plan.Completer {
	if cfg.XAIAPIKey == "" {
		logger.LogAttrs(ctx, slog.LevelInfo, "no model credential configured, plans use the static template")
		return nil
	}
	return ai.NewChatClient(ai.Config{
		APIKey:     cfg.XAIAPIKey,
		BaseURL:    cfg.XAIBaseURL,
		Model:      cfg.XAIModel,
		HTTPClient: nil,
	}, logger)
}

func newImageGenerator(ctx context.Context, cfg config, logger *slog.Logger) imagery.Generator {
	if cfg.OpenAIAPIKey == "" {
		logger.LogAttrs(ctx, slog.LevelInfo, "no image credential configured, images use stock photo search")
		return nil
	}
	return ai.NewImageClient(ai.Config{
		APIKey:     cfg.OpenAIAPIKey,
		BaseURL:    cfg.OpenAIBaseURL,
		Model:      "",
		HTTPClient: nil,
	}, logger)
}

func splitOrigins(s string) []string {
	var origins []string
	for origin := range strings.SplitSeq(s, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func initializeSessionManager(store scs.Store, secure bool) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = store
	sessionManager.Lifetime = 30 * 24 * time.Hour //nolint:mnd // a month, like a saved plan in the browser.
	sessionManager.IdleTimeout = 0
	sessionManager.Cookie.Name = "fitcoach_session"
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = secure
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	logger := logging.NewLogger(os.Stdout, slog.LevelDebug, nil)

	// A missing .env file is normal in production where the environment is set by the platform.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelWarn, "failed to load .env file", errors.SlogError(err))
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
