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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/artesan_shop/internal/config"
	"github.com/Skotchmaster/artesan_shop/internal/database"
	"github.com/Skotchmaster/artesan_shop/internal/es"
	"github.com/Skotchmaster/artesan_shop/internal/handlers"
	"github.com/Skotchmaster/artesan_shop/internal/imagestore"
	"github.com/Skotchmaster/artesan_shop/internal/logging"
	authmw "github.com/Skotchmaster/artesan_shop/internal/middleware/auth"
	"github.com/Skotchmaster/artesan_shop/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/artesan_shop/internal/middleware/logging"
	"github.com/Skotchmaster/artesan_shop/internal/mykafka"
	"github.com/Skotchmaster/artesan_shop/internal/service"
	"github.com/Skotchmaster/artesan_shop/internal/service/search"
	"github.com/Skotchmaster/artesan_shop/internal/storage"
	httpserver "github.com/Skotchmaster/artesan_shop/internal/transport/http"
)

type eventSink interface {
	mykafka.Publisher
	Close() error
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("config_load_failed", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	store, err := storage.Open(ctx, database.Options{
		Driver: cfg.DBDriver,
		Path:   cfg.DBPath,
		DSN:    cfg.DBURL,
	})
	if err != nil {
		logger.Error("db_init_failed", "error", err)
		os.Exit(1)
	}

	var events eventSink = mykafka.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.Error("kafka_init_failed", "error", err)
			os.Exit(1)
		}
		events = prod
	} else {
		logger.Info("kafka_disabled", "reason", "KAFKA_BROKERS empty")
	}

	esClient, err := es.NewClient(ctx, cfg)
	if err != nil {
		logger.Error("es_init_failed", "error", err)
		os.Exit(1)
	}
	searchSvc := search.New(esClient, cfg.ESIndex, store)
	if n, err := searchSvc.Reindex(ctx); err != nil {
		logger.Warn("es_reindex_failed", "indexed", n, "error", err)
	}

	images, err := imagestore.New(ctx, cfg)
	if err != nil {
		logger.Error("image_store_init_failed", "error", err)
		os.Exit(1)
	}

	auth := service.NewAuthService(store, events)
	if err := auth.EnsureDefaultAdmin(ctx); err != nil {
		logger.Error("seed_admin_failed", "error", err)
		os.Exit(1)
	}
	products := service.NewProductService(store, events, images, searchSvc)
	cart := service.NewCartService(store, events)

	sqlDB, err := store.DB().DB()
	if err != nil {
		logger.Error("db_handle_failed", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		loggingmw.RequestLogger(logger),
		middleware.BodyLimit("12M"),
		csrf.Middleware(csrf.Config{SkipPaths: []string{"/api/v1/login", "/api/v1/register"}}),
	)

	secret := []byte(cfg.JWTSecret)
	httpserver.Register(e, &httpserver.Deps{
		DB:             sqlDB,
		Auth:           authmw.New(secret, auth),
		AuthHandler:    &handlers.AuthHandler{Auth: auth, JWTSecret: secret, AccessTTL: cfg.AccessTTL},
		ProductHandler: &handlers.ProductHandler{Products: products},
		CartHandler:    &handlers.CartHandler{Cart: cart},
		UserHandler:    &handlers.UserHandler{Auth: auth},
		SearchHandler:  &handlers.SearchHandler{Search: searchSvc},
		StoreHandler: &handlers.StoreHandler{Location: handlers.StoreLocation{
			Name:      cfg.StoreName,
			Latitude:  cfg.StoreLatitude,
			Longitude: cfg.StoreLongitude,
		}},
		LoginRPS: cfg.LoginRPS,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http_listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	go func() {
		<-quit
		logger.Warn("force_exit")
		os.Exit(1)
	}()

	logger.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}
	if err := store.Close(); err != nil {
		logger.Error("db_close_failed", "error", err)
	}
	if err := events.Close(); err != nil {
		logger.Error("kafka_close_failed", "error", err)
	}

	logger.Info("shutdown_complete")
}
