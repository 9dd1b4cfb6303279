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

	"golang.org/x/sync/errgroup"

	"github.com/campoverde/backoffice/internal/app"
	"github.com/campoverde/backoffice/internal/auth"
	"github.com/campoverde/backoffice/internal/calendar"
	"github.com/campoverde/backoffice/internal/clients"
	"github.com/campoverde/backoffice/internal/platform/cache"
	"github.com/campoverde/backoffice/internal/platform/db"
	"github.com/campoverde/backoffice/internal/products"
	"github.com/campoverde/backoffice/internal/sales"
	"github.com/campoverde/backoffice/internal/shared"
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
		logger.Error("connect database", slog.Any("error", err))
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

	tokens := shared.NewTokenManager(redisClient, cfg.TokenTTL)
	locker := shared.NewLocker(redisClient, cfg.LockTTL)

	authService := auth.NewService(auth.NewRepository(pool), tokens)
	clientsService := clients.NewService(clients.NewRepository(pool))
	productsService := products.NewService(products.NewRepository(pool))
	salesService := sales.NewService(sales.NewRepository(pool), locker)
	calendarService := calendar.NewService(calendar.NewRepository(pool))

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Tokens:          tokens,
		AuthHandler:     auth.NewHandler(logger, authService, tokens),
		ClientsHandler:  clients.NewHandler(logger, clientsService),
		ProductsHandler: products.NewHandler(logger, productsService),
		SalesHandler:    sales.NewHandler(logger, salesService),
		CalendarHandler: calendar.NewHandler(logger, calendarService),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
