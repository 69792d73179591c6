package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/eugenenazirov/pincode-shipping/internal/api"
	"github.com/eugenenazirov/pincode-shipping/internal/calculator"
	"github.com/eugenenazirov/pincode-shipping/internal/config"
	"github.com/eugenenazirov/pincode-shipping/internal/location"
	"github.com/eugenenazirov/pincode-shipping/internal/shipping"
	"github.com/eugenenazirov/pincode-shipping/internal/storage"
)

const redisLoadTimeout = 5 * time.Second

// rateTableLoader fetches a rate table from an external source at startup.
type rateTableLoader interface {
	LoadRateTable(ctx context.Context) (shipping.RateTable, error)
}

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage    storage.Storage
	classifier location.Classifier
	calculator calculator.Calculator
	handler    *api.Handler
	router     http.Handler
	logger     *zap.Logger
	server     *http.Server
}

// New initializes the application with all dependencies from the provided
// configuration. When a Redis address is configured, the carrier rates are
// read from Redis once; configured rates are used if Redis holds none.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	var loader rateTableLoader
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() {
			_ = client.Close()
		}()
		loader = storage.NewRedisLoader(client, cfg.RedisKeyPrefix)
	}
	return newApp(ctx, cfg, logger, loader)
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger, loader rateTableLoader) (*App, error) {
	table, err := resolveRateTable(ctx, cfg, logger, loader)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewMemoryStorageWith(table, cfg.Package)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise rate storage: %w", err)
	}

	calc, err := calculator.New(cfg.Package, table)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise calculator: %w", err)
	}

	classifier := location.New()
	handler := api.NewHandler(classifier, calc, store, api.WithLogger(logger))
	router := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		storage:    store,
		classifier: classifier,
		calculator: calc,
		handler:    handler,
		router:     router,
		logger:     logger,
		server:     NewServer(cfg, router),
	}, nil
}

func resolveRateTable(ctx context.Context, cfg config.Config, logger *zap.Logger, loader rateTableLoader) (shipping.RateTable, error) {
	if loader == nil {
		return cfg.Carriers, nil
	}

	ctx, cancel := context.WithTimeout(ctx, redisLoadTimeout)
	defer cancel()

	table, err := loader.LoadRateTable(ctx)
	switch {
	case errors.Is(err, storage.ErrNoRedisRates):
		logger.Warn("no carrier rates in redis, using configured rates", zap.String("redis_addr", cfg.RedisAddr))
		return cfg.Carriers, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load carrier rates from redis: %w", err)
	}

	logger.Info("carrier rates loaded from redis",
		zap.String("redis_addr", cfg.RedisAddr),
		zap.Int("carriers", len(table)),
	)
	return table, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Handler returns the fully wired HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}
