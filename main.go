package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medbill/medbill-site/backend/api/internal/config"
	"github.com/medbill/medbill-site/backend/api/internal/database"
	"github.com/medbill/medbill-site/backend/api/internal/events"
	"github.com/medbill/medbill-site/backend/api/internal/storage"
	"github.com/medbill/medbill-site/backend/api/pkg/logger"
	"github.com/medbill/medbill-site/backend/api/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

// backends are the external systems the API talks to. Every field except
// files and pub may be nil, in which case the in-memory fallbacks are used.
type backends struct {
	mongo *mongo.Client
	db    *mongo.Database
	redis *redis.Client
	files storage.ObjectStore
	pub   events.Publisher
}

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: keycloak=%v mongo=%v redis=%v minio=%v amqp=%v",
		cfg.Keycloak.URL != "", cfg.MongoDB.URI != "", cfg.Redis.Addr() != "", cfg.Storage.Endpoint != "", cfg.Events.AMQPURL != "")

	ctx := context.Background()
	b, closeAll := connectBackends(ctx, cfg)
	defer closeAll()

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r, err := buildRouter(ctx, cfg, b)
	if err != nil {
		logger.Fatalf("failed to build router: %v", err)
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Infof("Starting medbill-site API on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

// connectBackends dials everything configured. Failures degrade to the
// in-memory fallback with a warning rather than stopping the process.
func connectBackends(ctx context.Context, cfg *config.Config) (*backends, func()) {
	b := &backends{pub: events.Noop{}}
	var closers []func()

	if addr := cfg.Redis.Addr(); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
			_ = client.Close()
		} else {
			logger.Infof("Connected to Redis: %s", addr)
			b.redis = client
			closers = append(closers, func() { _ = client.Close() })
		}
	}

	if cfg.MongoDB.URI != "" {
		client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
		if err != nil {
			logger.Warnf("MongoDB unavailable, using in-memory stores: %v", err)
		} else {
			b.mongo = client
			b.db = client.Database(cfg.MongoDB.Database)
			closers = append(closers, func() { _ = client.Disconnect(context.Background()) })
		}
	}

	if cfg.Storage.Endpoint != "" {
		st, err := storage.NewMinIOStorage(ctx, cfg.Storage)
		if err != nil {
			logger.Warnf("MinIO unavailable, keeping uploads in memory: %v", err)
		} else {
			b.files = st
		}
	}
	if b.files == nil {
		b.files = storage.NewMemoryStorage(cfg.Storage.PublicBaseURL)
	}

	if cfg.Events.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
		if err != nil {
			logger.Warnf("RabbitMQ unavailable, events disabled: %v", err)
		} else {
			b.pub = p
			closers = append(closers, func() { _ = p.Close() })
		}
	}

	return b, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}
