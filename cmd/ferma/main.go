package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/app"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/attendance"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/auth"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/batches"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/delegations"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/observability"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/platform/cache"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/platform/db"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/prices"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/rbac"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/roles"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/sections"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/users"
	"github.com/programmistyigit/blessing-antigravity-sub002/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)

	rolesRepo := roles.NewRepository(pool)
	usersRepo := users.NewRepository(pool)
	delegationsRepo := delegations.NewRepository(pool)

	rbacService := rbac.NewService(rolesRepo, delegationsRepo)
	rbacMiddleware := rbac.Middleware{Loader: rbacService, Logger: logger}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	denylist := auth.NewDenylist(redisClient)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens, denylist)
	authenticator := auth.Authenticator{Tokens: tokens, Denylist: denylist, Repo: authRepo, Logger: logger}
	authHandler := auth.NewHandler(logger, authService, rbacService, authenticator)

	rolesService := roles.NewService(rolesRepo, usersRepo)
	rolesHandler := roles.NewHandler(logger, rolesService, rbacMiddleware)

	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)

	delegationsService := delegations.NewService(delegationsRepo, rbacService, usersRepo, auditLogger, logger)
	delegationsHandler := delegations.NewHandler(logger, delegationsService)

	sectionsRepo := sections.NewRepository(pool)
	sectionsService := sections.NewService(sectionsRepo)
	sectionsHandler := sections.NewHandler(logger, sectionsService, rbacMiddleware)

	batchesRepo := batches.NewRepository(pool)
	batchesService := batches.NewService(batchesRepo)
	batchesHandler := batches.NewHandler(logger, batchesService, rbacMiddleware)

	attendanceRepo := attendance.NewRepository(pool)
	attendanceService := attendance.NewService(attendanceRepo, sectionsRepo)
	attendanceHandler := attendance.NewHandler(logger, attendanceService, rbacMiddleware)

	pricesRepo := prices.NewRepository(pool)
	pricesService := prices.NewService(pricesRepo, auditLogger)
	pricesHandler := prices.NewHandler(logger, pricesService, rbacMiddleware)

	permissionsHandler := rbac.NewPermissionsHandler(rbacMiddleware)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Authenticator:      authenticator,
		AuthHandler:        authHandler,
		RolesHandler:       rolesHandler,
		UsersHandler:       usersHandler,
		DelegationsHandler: delegationsHandler,
		SectionsHandler:    sectionsHandler,
		BatchesHandler:     batchesHandler,
		AttendanceHandler:  attendanceHandler,
		PricesHandler:      pricesHandler,
		PermissionsHandler: permissionsHandler,
		JobsHandler:        jobsHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
