package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-product-catalog/internal/config"
	"go-product-catalog/internal/database"
	"go-product-catalog/internal/handler"
	"go-product-catalog/internal/middleware"
	"go-product-catalog/internal/repository"
	"go-product-catalog/internal/router"
	"go-product-catalog/internal/service"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	tokenRepo := repository.NewTokenRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	slog.Info("database ready")

	tokenService, err := service.NewTokenService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, tokenRepo)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	accountService := service.NewAccountService(userRepo, tokenService)
	catalogService := service.NewCatalogService(productRepo)

	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		User:    handler.NewUserHandler(accountService),
		Product: handler.NewProductHandler(catalogService),
	}, db.Health)

	janitorCtx, janitorCancel := context.WithCancel(context.Background())
	go runTokenJanitor(janitorCtx, tokenService, cfg.TokenPurgeInterval)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			janitorCancel,
			db.Close,
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}

// runTokenJanitor periodically removes expired refresh-token rows so the
// revocation list does not grow without bound.
func runTokenJanitor(ctx context.Context, tokens *service.TokenService, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := tokens.PurgeExpired(ctx)
			if err != nil {
				slog.Warn("token janitor purge failed", "error", err)
				continue
			}
			if purged > 0 {
				slog.Info("purged expired refresh tokens", "count", purged)
			}
		}
	}
}
