package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4" // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-review/internal/config"   // Internal config loader
	"github.com/iliyamo/movie-review/internal/database" // connection + schema
	"github.com/iliyamo/movie-review/internal/handler"
	"github.com/iliyamo/movie-review/internal/logging"
	"github.com/iliyamo/movie-review/internal/middleware"
	"github.com/iliyamo/movie-review/internal/queue"
	"github.com/iliyamo/movie-review/internal/repository"
	"github.com/iliyamo/movie-review/internal/router" // Internal router setup
	"github.com/iliyamo/movie-review/internal/service"
	"github.com/iliyamo/movie-review/internal/session"
)

func main() {
	config.LoadDotEnv()  // .env is optional
	cfg := config.Load() // Load environment config
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("open database")
	}
	defer db.Close()
	if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
		log.Fatal().Err(err).Msg("migrate schema")
	}

	rdb := config.NewRedisClient() // nil when Redis is unreachable
	if rdb != nil {
		defer rdb.Close()
	}

	// ---- events ----
	evCfg := config.LoadEventsConfig()
	var events service.EventPublisher = service.NopPublisher{}
	if evCfg.Enabled {
		pub := service.NewAMQPPublisher(evCfg.URL, evCfg.Queue, 256)
		go pub.Run(ctx)
		events = pub
		if evCfg.ConsumerEnabled {
			consumer := &queue.Consumer{URL: evCfg.URL, Queue: evCfg.Queue, LogDir: evCfg.LogDir}
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error().Err(err).Msg("event consumer stopped")
				}
			}()
		}
	}

	// ---- repositories and services ----
	accounts := repository.NewAccountRepo(db)
	movies := repository.NewMovieRepo(db)
	reviews := repository.NewReviewRepo(db)
	sessions := repository.NewSessionRepo(db)

	authSvc := service.NewAuthService(accounts, events, cfg.BcryptCost)
	catalogSvc := service.NewCatalogService(movies, events)
	reviewSvc := service.NewReviewService(reviews, movies, events)
	activitySvc := service.NewActivityService(movies, accounts, reviews)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			log.Error().Err(err).Str("email", cfg.AdminEmail).Msg("bootstrap admin failed")
		} else if created {
			log.Info().Str("email", cfg.AdminEmail).Msg("bootstrap admin created")
		}
	}

	mgr := session.NewManager(sessionStore(cfg, rdb, sessions), cfg.SessionTTL, cfg.CookieSecure)
	go purgeSessions(ctx, sessions, time.Hour)

	// ---- HTTP ----
	renderer, err := handler.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("parse templates")
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Renderer = renderer
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Metrics())
	e.Use(middleware.LoadSession(mgr, cfg.JWTSecret))

	router.RegisterRoutes(e, &handler.HealthHandler{DB: db, Redis: rdb})
	authH := handler.NewAuthHandler(cfg, authSvc, mgr)
	router.RegisterAuth(e, authH, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, authH.Limited))
	router.RegisterPublic(e, handler.NewPublicHandler(movies, accounts, reviews, activitySvc),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterAdmin(e, handler.NewAdminHandler(catalogSvc, reviewSvc, activitySvc))
	router.RegisterUser(e, handler.NewUserHandler(authSvc, catalogSvc, reviewSvc, mgr))

	addr := ":" + cfg.Port // Address string with port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openDB connects to the configured database.  SQLite is meant for local
// development; production runs on MySQL.
func openDB(cfg config.Config) (*sql.DB, error) {
	switch cfg.DBDriver {
	case database.DriverMySQL:
		return database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	case database.DriverSQLite:
		return database.OpenSQLite(cfg.SQLitePath)
	default:
		return nil, errors.New("unsupported DB_DRIVER " + cfg.DBDriver)
	}
}

// sessionStore picks Redis when asked for and reachable, the SQL table
// otherwise.
func sessionStore(cfg config.Config, rdb *redis.Client, repo *repository.SessionRepo) session.Store {
	if cfg.SessionStore == "redis" {
		if rdb != nil {
			return session.NewRedisStore(rdb, "session")
		}
		log.Warn().Msg("redis unavailable, keeping sessions in the database")
	}
	return session.NewSQLStore(repo)
}

// purgeSessions drops expired rows from the sessions table.  Redis expires
// its keys on its own, but the table may still hold rows from an earlier
// SQL-backed run.
func purgeSessions(ctx context.Context, repo *repository.SessionRepo, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := repo.PurgeExpired(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("purge sessions failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("rows", n).Msg("purged expired sessions")
			}
		}
	}
}
