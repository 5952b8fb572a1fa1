package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/summitchronicles/summit-tracker/internal/embedding"
	"github.com/summitchronicles/summit-tracker/internal/envstruct"
	"github.com/summitchronicles/summit-tracker/internal/errors"
	"github.com/summitchronicles/summit-tracker/internal/insight"
	"github.com/summitchronicles/summit-tracker/internal/logging"
	"github.com/summitchronicles/summit-tracker/internal/plan"
	"github.com/summitchronicles/summit-tracker/internal/pprofserver"
	"github.com/summitchronicles/summit-tracker/internal/sqlite"
	"github.com/summitchronicles/summit-tracker/internal/strava"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	templateFS     fs.FS
	planService    *plan.Service
	aggregator     *insight.Aggregator
	narrator       *insight.Narrator
	indexer        *embedding.Indexer
	stravaSyncer   *strava.Syncer
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"SUMMIT_ADDR" envDefault:"localhost:8080"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"SUMMIT_SQLITE_URL" envDefault:"./summit.sqlite3"`
	// PProfAddr is the optional address to listen on for the pprof server.
	PProfAddr string `env:"SUMMIT_PPROF_ADDR" envDefault:""`
	// TemplatePath is the path to the directory containing the HTML templates.
	TemplatePath string `env:"SUMMIT_TEMPLATE_PATH" envDefault:""`
	// OpenAIAPIKey enables insight narration and embedding indexing when set.
	OpenAIAPIKey string `env:"SUMMIT_OPENAI_API_KEY" envDefault:""`
	// StravaClientID, StravaClientSecret and StravaRefreshToken enable activity sync when all are set.
	StravaClientID     string `env:"SUMMIT_STRAVA_CLIENT_ID" envDefault:""`
	StravaClientSecret string `env:"SUMMIT_STRAVA_CLIENT_SECRET" envDefault:""`
	StravaRefreshToken string `env:"SUMMIT_STRAVA_REFRESH_TOKEN" envDefault:""`
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

	if cfg.PProfAddr != "" {
		pprofserver.Launch(ctx, cfg.PProfAddr, logger)
	}

	var htmlTemplatePath string
	if htmlTemplatePath, err = resolveAndVerifyTemplatePath(cfg.TemplatePath); err != nil {
		return errors.Wrap(err, "resolve template path")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	var (
		narrator *insight.Narrator
		indexer  *embedding.Indexer
	)
	if cfg.OpenAIAPIKey != "" {
		narrator = insight.NewNarrator(cfg.OpenAIAPIKey, logger)
		indexer = embedding.NewIndexer(cfg.OpenAIAPIKey, db, logger)
	}

	stravaClient := strava.NewClient(strava.Credentials{
		ClientID:     cfg.StravaClientID,
		ClientSecret: cfg.StravaClientSecret,
		RefreshToken: cfg.StravaRefreshToken,
	}, logger)

	app := application{
		logger:         logger,
		sessionManager: initializeSessionManager(db),
		templateFS:     os.DirFS(htmlTemplatePath),
		planService:    plan.NewService(db, logger),
		aggregator:     insight.NewAggregator(db, logger),
		narrator:       narrator,
		indexer:        indexer,
		stravaSyncer:   strava.NewSyncer(stravaClient, db, logger),
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func initializeSessionManager(dbs *sqlite.Database) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = 12 * time.Hour                                                //nolint:mnd // half a day
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
