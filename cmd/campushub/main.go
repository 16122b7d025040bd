package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/campushub/campushub/internal/app"
	"github.com/campushub/campushub/internal/authz"
	"github.com/campushub/campushub/internal/catalog"
	"github.com/campushub/campushub/internal/clubs"
	"github.com/campushub/campushub/internal/content"
	"github.com/campushub/campushub/internal/forms"
	"github.com/campushub/campushub/internal/identity"
	"github.com/campushub/campushub/internal/platform/db"
	"github.com/campushub/campushub/internal/platform/storage"
	"github.com/campushub/campushub/internal/roles"
	"github.com/campushub/campushub/internal/shared"
	"github.com/campushub/campushub/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	store, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		logger.Error("init upload store", slog.Any("error", err))
		os.Exit(1)
	}

	auditLogger := shared.NewAuditLogger(dbpool)

	identityRepo := identity.NewRepository(dbpool)
	identityService := identity.NewService(identityRepo, redisClient, cfg.TokenTTL)
	identityMiddleware := &identity.Middleware{Service: identityService, Logger: logger}
	identityHandler := identity.NewHandler(logger, identityService)

	resolver := authz.NewResolver(dbpool)
	engine := authz.NewEngine(resolver)

	rolesRepo := roles.NewRepository(dbpool)
	rolesService := roles.NewService(rolesRepo, redisClient, logger, auditLogger)
	rolesHandler := roles.NewHandler(logger, rolesService, engine)

	clubsRepo := clubs.NewRepository(dbpool)
	clubsService := clubs.NewService(clubsRepo)
	clubsHandler := clubs.NewHandler(logger, clubsService, engine)

	formsRepo := forms.NewRepository(dbpool)
	formsService := forms.NewService(formsRepo, store, logger, auditLogger)
	formsHandler := forms.NewHandler(logger, formsService, engine)

	contentRepo := content.NewRepository(dbpool)
	contentService := content.NewService(contentRepo, logger, auditLogger)
	contentHandler := content.NewHandler(logger, contentService, engine)

	catalogRepo := catalog.NewRepository(dbpool)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Identity:        identityMiddleware,
		IdentityHandler: identityHandler,
		RolesHandler:    rolesHandler,
		ClubsHandler:    clubsHandler,
		FormsHandler:    formsHandler,
		ContentHandler:  contentHandler,
		CatalogHandler:  catalogHandler,
		JobHandler:      jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
