package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/matchpulse/matchpulse/external/apifootball"
	"github.com/matchpulse/matchpulse/external/footballdata"
	"github.com/matchpulse/matchpulse/external/gateway"
	"github.com/matchpulse/matchpulse/external/predictor"
	"github.com/matchpulse/matchpulse/external/thesportsdb"
	"github.com/matchpulse/matchpulse/internal/config"
	"github.com/matchpulse/matchpulse/internal/domain/asset"
	"github.com/matchpulse/matchpulse/internal/domain/competition"
	"github.com/matchpulse/matchpulse/internal/domain/externalref"
	"github.com/matchpulse/matchpulse/internal/domain/match"
	"github.com/matchpulse/matchpulse/internal/domain/player"
	"github.com/matchpulse/matchpulse/internal/domain/prediction"
	"github.com/matchpulse/matchpulse/internal/domain/standing"
	"github.com/matchpulse/matchpulse/internal/domain/team"
	"github.com/matchpulse/matchpulse/internal/infrastructure/repository/memory"
	"github.com/matchpulse/matchpulse/internal/infrastructure/repository/postgres"
	"github.com/matchpulse/matchpulse/internal/interfaces/httpapi"
	"github.com/matchpulse/matchpulse/internal/platform/cache"
	idgen "github.com/matchpulse/matchpulse/internal/platform/id"
	"github.com/matchpulse/matchpulse/internal/platform/logging"
	"github.com/matchpulse/matchpulse/internal/platform/ratelimit"
	"github.com/matchpulse/matchpulse/internal/platform/resilience"
	"github.com/matchpulse/matchpulse/internal/usecase"
)

// App bundles the wired HTTP server with the long-lived components the
// process lifecycle has to manage itself: the broadcaster loops, the
// periodic ingestion jobs, the provider gateway pool, and the database
// handle.
type App struct {
	Server    *http.Server
	Broadcast *usecase.BroadcastService
	Ingestion *usecase.IngestionService

	gateway *gateway.Gateway
	db      *sqlx.DB
}

type repositories struct {
	uow          usecase.UnitOfWork
	refs         externalref.Repository
	teams        team.Repository
	players      player.Repository
	competitions competition.Repository
	seasons      competition.SeasonRepository
	matches      match.Repository
	standings    standing.Repository
	predictions  prediction.Repository
	teamAssets   asset.TeamAssetRepository
	playerAssets asset.PlayerAssetRepository
}

// New wires configuration into a runnable application. With DB_URL set the
// repositories are Postgres-backed; without it everything runs in memory on
// a seeded competition so the sync endpoints work out of the box.
func New(cfg config.Config, logger *logging.Logger, httpLogger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	var (
		repos repositories
		db    *sqlx.DB
	)
	if cfg.DBURL != "" {
		opened, err := openDB(cfg)
		if err != nil {
			return nil, err
		}
		db = opened
		repos = newPostgresRepositories(db)
	} else {
		mem, err := newMemoryRepositories(context.Background())
		if err != nil {
			return nil, err
		}
		repos = mem
	}

	limiter := ratelimit.NewLimiter(cfg.RateBuckets())
	gw, err := gateway.New(limiter, gateway.Config{
		PoolSize:    cfg.GatewayPoolSize,
		CallTimeout: cfg.GatewayCallTimeout,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.GatewayCircuitEnabled,
			FailureThreshold: cfg.GatewayCircuitFailureCount,
			OpenTimeout:      cfg.GatewayCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.GatewayCircuitHalfOpenMaxReq,
		},
	}, logger)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("create provider gateway: %w", err)
	}

	fixturesClient := footballdata.NewClient(footballdata.Config{
		BaseURL:    cfg.FootballDataBaseURL,
		APIKey:     cfg.FootballDataAPIKey,
		MaxRetries: cfg.FootballDataMaxRetries,
		Logger:     logger,
	}, gw)
	liveClient := apifootball.NewClient(apifootball.Config{
		BaseURL:    cfg.APIFootballBaseURL,
		APIKey:     cfg.APIFootballAPIKey,
		MaxRetries: cfg.APIFootballMaxRetries,
		Logger:     logger,
	}, gw)
	assetClient := thesportsdb.NewClient(thesportsdb.Config{
		BaseURL:    cfg.TheSportsDBBaseURL,
		APIKey:     cfg.TheSportsDBAPIKey,
		MaxRetries: cfg.TheSportsDBMaxRetries,
		Logger:     logger,
	}, gw)

	var predictorClient usecase.PredictionClient
	if cfg.PredictorEnabled {
		predictorClient = predictor.NewClient(predictor.Config{
			BaseURL: cfg.PredictorBaseURL,
			APIKey:  cfg.PredictorAPIKey,
			Logger:  logger,
		}, gw)
	}

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
	}

	reconciler := usecase.NewReconcilerService(
		repos.refs,
		repos.teams,
		repos.players,
		repos.competitions,
		repos.seasons,
		repos.uow,
		logger,
	)
	matchSvc := usecase.NewMatchService(fixturesClient, liveClient, repos.matches, reconciler, logger)
	standingsSvc := usecase.NewStandingsService(fixturesClient, repos.standings, reconciler, store, logger)
	predictionSvc := usecase.NewPredictionService(
		predictorClient,
		cfg.PredictorEnabled,
		repos.matches,
		repos.teams,
		repos.standings,
		repos.predictions,
		store,
		logger,
	)
	assetSvc := usecase.NewAssetService(
		assetClient,
		repos.teams,
		repos.players,
		repos.teamAssets,
		repos.playerAssets,
		reconciler,
		store,
		logger,
	)
	ingestionSvc := usecase.NewIngestionService(
		matchSvc,
		standingsSvc,
		repos.competitions,
		repos.seasons,
		cfg.IngestionWorkerCount,
		logger,
	)
	broadcastSvc := usecase.NewBroadcastService(
		repos.matches,
		repos.teams,
		predictionSvc,
		idgen.NewRandomGenerator(),
		usecase.BroadcastConfig{
			LiveInterval:       cfg.BroadcastLiveInterval,
			PredictionInterval: cfg.BroadcastPredictionInterval,
			ScanWindow:         cfg.BroadcastScanWindow,
			PredictionWindow:   cfg.BroadcastPredictionWindow,
		},
		logger,
	)

	handler := httpapi.NewHandler(
		matchSvc,
		standingsSvc,
		predictionSvc,
		assetSvc,
		ingestionSvc,
		broadcastSvc,
		repos.teams,
		repos.competitions,
		repos.seasons,
		logger,
	)
	router := httpapi.NewRouter(handler, httpLogger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &App{
		Server:    server,
		Broadcast: broadcastSvc,
		Ingestion: ingestionSvc,
		gateway:   gw,
		db:        db,
	}, nil
}

// Close releases everything New acquired. The HTTP server is shut down by
// the caller before Close so in-flight requests drain first.
func (a *App) Close() error {
	a.Broadcast.Stop()
	a.gateway.Close()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}
	return nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func newPostgresRepositories(db *sqlx.DB) repositories {
	return repositories{
		uow:          postgres.NewUnitOfWork(db),
		refs:         postgres.NewExternalRefRepository(db),
		teams:        postgres.NewTeamRepository(db),
		players:      postgres.NewPlayerRepository(db),
		competitions: postgres.NewCompetitionRepository(db),
		seasons:      postgres.NewSeasonRepository(db),
		matches:      postgres.NewMatchRepository(db),
		standings:    postgres.NewStandingRepository(db),
		predictions:  postgres.NewPredictionRepository(db),
		teamAssets:   postgres.NewTeamAssetRepository(db),
		playerAssets: postgres.NewPlayerAssetRepository(db),
	}
}

func newMemoryRepositories(ctx context.Context) (repositories, error) {
	competitions := memory.NewCompetitionRepository()
	seasons := memory.NewSeasonRepository()
	refs := memory.NewExternalRefRepository()
	if err := memory.Seed(ctx, competitions, seasons, refs); err != nil {
		return repositories{}, fmt.Errorf("seed in-memory repositories: %w", err)
	}

	return repositories{
		uow:          memory.NewUnitOfWork(),
		refs:         refs,
		teams:        memory.NewTeamRepository(),
		players:      memory.NewPlayerRepository(),
		competitions: competitions,
		seasons:      seasons,
		matches:      memory.NewMatchRepository(),
		standings:    memory.NewStandingRepository(),
		predictions:  memory.NewPredictionRepository(),
		teamAssets:   memory.NewTeamAssetRepository(),
		playerAssets: memory.NewPlayerAssetRepository(),
	}, nil
}
