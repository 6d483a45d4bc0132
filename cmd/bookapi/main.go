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
	"golang.org/x/sync/errgroup"

	"github.com/krsx/book-api/internal/app"
	"github.com/krsx/book-api/internal/auth"
	"github.com/krsx/book-api/internal/books"
	"github.com/krsx/book-api/internal/observability"
	"github.com/krsx/book-api/internal/platform/cache"
	"github.com/krsx/book-api/internal/platform/db"
	"github.com/krsx/book-api/internal/reviews"
	"github.com/krsx/book-api/jobs"
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

	codec, err := auth.NewTokenCodec(auth.CodecConfig{
		Secret:     cfg.JWTSecret,
		Algorithm:  cfg.JWTAlgorithm,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})
	if err != nil {
		logger.Error("init token codec", slog.Any("error", err))
		os.Exit(1)
	}
	actions, err := auth.NewActionCodec(cfg.JWTSecret, cfg.ActionTokenMaxAge)
	if err != nil {
		logger.Error("init action codec", slog.Any("error", err))
		os.Exit(1)
	}
	blocklist := auth.NewBlocklist(redisClient, cfg.RevocationTTL)

	mailClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := mailClient.Close(); err != nil {
			logger.Warn("asynq client close", slog.Any("error", err))
		}
	}()

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(auth.ServiceConfig{
		Repo:      authRepo,
		Codec:     codec,
		Actions:   actions,
		Blocklist: blocklist,
		Mailer:    mailClient,
		Logger:    logger,
		Domain:    cfg.Domain,
		BasePath:  cfg.BasePath(),
	})
	authMiddleware := auth.Middleware{
		Codec:     codec,
		Blocklist: blocklist,
		Repo:      authRepo,
		Logger:    logger,
	}
	authHandler := auth.NewHandler(logger, authService, authMiddleware)

	booksRepo := books.NewRepository(dbpool)
	reviewsRepo := reviews.NewRepository(dbpool)
	booksService := books.NewService(booksRepo, reviewsRepo)
	booksHandler := books.NewHandler(logger, booksService, authMiddleware)

	reviewsService := reviews.NewService(reviewsRepo, booksService, authRepo)
	reviewsHandler := reviews.NewHandler(logger, reviewsService, authMiddleware)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Metrics:        metrics,
		AuthHandler:    authHandler,
		BooksHandler:   booksHandler,
		ReviewsHandler: reviewsHandler,
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
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
