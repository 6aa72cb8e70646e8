package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gatewarden/gatewarden/internal/app"
	"github.com/gatewarden/gatewarden/internal/auth"
	"github.com/gatewarden/gatewarden/internal/binding"
	"github.com/gatewarden/gatewarden/internal/groups"
	"github.com/gatewarden/gatewarden/internal/observability"
	"github.com/gatewarden/gatewarden/internal/permissions"
	"github.com/gatewarden/gatewarden/internal/platform/db"
	"github.com/gatewarden/gatewarden/internal/roles"
	"github.com/gatewarden/gatewarden/internal/store"
	"github.com/gatewarden/gatewarden/internal/users"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	storeDB := store.NewPoolDB(pool, cfg.StoreTimeout)

	metrics := observability.NewMetrics()

	hasher := auth.NewHasher(cfg.HashWorkers)
	codec := auth.NewTokenCodec(cfg.TokenSecret, cfg.TokenTTLDays)

	authRepo := auth.NewRepository(storeDB)
	authService := auth.NewService(logger, authRepo, hasher, codec)
	authHandler := auth.NewHandler(logger, authService, metrics)
	authMiddleware := auth.Middleware{Service: authService, Logger: logger}

	usersRepo := users.NewRepository(storeDB)
	usersService := users.NewService(usersRepo, hasher)
	usersHandler := users.NewHandler(logger, usersService, authMiddleware)

	rolePermissions := binding.NewReconciler(binding.NewRolePermissions(storeDB))
	roleMembers := binding.NewReconciler(binding.NewRoleMembers(storeDB))
	groupPermissions := binding.NewReconciler(binding.NewGroupPermissions(storeDB))
	groupMembers := binding.NewReconciler(binding.NewGroupMembers(storeDB))

	rolesRepo := roles.NewRepository(storeDB)
	rolesService := roles.NewService(rolesRepo, rolePermissions, roleMembers)
	rolesHandler := roles.NewHandler(logger, rolesService, authMiddleware)

	groupsRepo := groups.NewRepository(storeDB)
	groupsService := groups.NewService(groupsRepo, groupPermissions, groupMembers)
	groupsHandler := groups.NewHandler(logger, groupsService, authMiddleware)

	permissionsRepo := permissions.NewRepository(storeDB)
	permissionsService := permissions.NewService(permissionsRepo)
	permissionsHandler := permissions.NewHandler(logger, permissionsService, authMiddleware)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		RolesHandler:       rolesHandler,
		GroupsHandler:      groupsHandler,
		PermissionsHandler: permissionsHandler,
		AuthMiddleware:     authMiddleware,
		Pool:               pool,
		Metrics:            metrics,
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
