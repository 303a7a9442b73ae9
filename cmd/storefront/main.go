package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/hobbyvault/storefront/internal/cart"
	"github.com/hobbyvault/storefront/internal/commerce"
	"github.com/hobbyvault/storefront/internal/config"
	"github.com/hobbyvault/storefront/internal/es"
	"github.com/hobbyvault/storefront/internal/events"
	"github.com/hobbyvault/storefront/internal/handlers"
	"github.com/hobbyvault/storefront/internal/logging"
	loggingmw "github.com/hobbyvault/storefront/internal/middleware/logging"
	"github.com/hobbyvault/storefront/internal/session"
	"github.com/hobbyvault/storefront/internal/storage"
	httpserver "github.com/hobbyvault/storefront/internal/transport/http"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.CommerceAPIURL, "COMMERCE_API_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	store, err := storage.New(storage.Config{
		Backend:  cfg.StorageBackend,
		RedisURL: cfg.RedisURL,
		Prefix:   cfg.RedisPrefix,
		DSN:      cfg.DatabaseDSN,
	})
	if err != nil {
		log.Fatalf("storage init: %v", err)
	}

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.CartTopic)
	}

	sessions := session.NewManager(store, cfg.JWTSecret)
	client := commerce.NewClient(cfg.CommerceAPIURL)
	carts := cart.NewManager(store, client)

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	deps := httpserver.Deps{
		Sessions:       sessions,
		CartHandler:    &handlers.CartHandler{Carts: carts, Sessions: sessions, Producer: producer},
		SessionHandler: &handlers.SessionHandler{Sessions: sessions, Carts: carts, Producer: producer},
		ScreenHandler:  &handlers.ScreenHandler{Sessions: sessions},
	}

	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init: %v", err)
		}
		deps.SearchHandler = &handlers.SearchHandler{ES: esClient, Index: cfg.ESIndex}
	} else {
		deps.SearchHandler = &handlers.SearchHandler{}
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if err := store.Close(); err != nil {
		log.Printf("storage close error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
