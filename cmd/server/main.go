package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/crewpay/internal/config"
	"github.com/iliyamo/crewpay/internal/database"
	"github.com/iliyamo/crewpay/internal/handler"
	"github.com/iliyamo/crewpay/internal/logger"
	"github.com/iliyamo/crewpay/internal/middleware"
	"github.com/iliyamo/crewpay/internal/queue"
	"github.com/iliyamo/crewpay/internal/repository"
	"github.com/iliyamo/crewpay/internal/router"
	"github.com/iliyamo/crewpay/internal/service"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat, "crewpay")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, zl *zap.Logger) error {
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	rdb, err := config.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		zl.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
	} else {
		defer rdb.Close()
	}

	var events service.EventPublisher
	if cfg.Events.Enabled {
		events = queue.NewPublisher(cfg.Events.URL)
		if cfg.Events.ConsumerEnabled {
			consumer := queue.NewConsumer(cfg.Events.URL, cfg.Events.LogPath, zl.Named("consumer"))
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					zl.Error("registration consumer exited", zap.Error(err))
				}
			}()
		}
	}

	stores := repository.NewMySQLStores()
	binder := service.NewBinder(db, stores)
	issuer := service.NewIssuer(db, stores, binder, service.IssuerConfig{
		Secret:         cfg.JWTSecret,
		AccessTTL:      cfg.AccessTTL(),
		RefreshTTLDays: cfg.RefreshTTLDays,
	}, zl)
	registrar := service.NewRegistrar(db, stores, cfg.BcryptCost, events, zl)
	profiles := service.NewProfileService(db, stores, binder)

	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(issuer, registrar, profiles, zl),
		Profiles:     handler.NewProfileHandler(profiles, zl),
		Flights:      handler.NewFlightHandler(service.NewFlightService(db, stores, binder), zl),
		Calculations: handler.NewCalculationHandler(service.NewCalculationService(db, stores, binder), zl),
		Settings:     handler.NewSettingsHandler(service.NewSettingsService(db, stores, binder), zl),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(zl))
	router.Register(e, handlers, cfg.JWTSecret, middleware.NewTokenBucket(cfg.RateLimit, rdb, zl))

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
