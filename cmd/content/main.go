// Command content serves the public read API (pages, blog, services,
// careers, sliders, settings, media) on its own, for deployments that scale
// reads separately from the form and admin API.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medbill/medbill-site/backend/api/internal/config"
	"github.com/medbill/medbill-site/backend/api/internal/content"
	"github.com/medbill/medbill-site/backend/api/internal/content/handler"
	"github.com/medbill/medbill-site/backend/api/internal/database"
	"github.com/medbill/medbill-site/backend/api/internal/storage"
	"github.com/medbill/medbill-site/backend/api/pkg/logger"
	"github.com/medbill/medbill-site/backend/api/pkg/metrics"
	"github.com/medbill/medbill-site/backend/api/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	port := os.Getenv("CONTENT_SERVICE_PORT")
	if port == "" {
		port = "5010"
	}

	ctx := context.Background()
	cols := content.NewMemoryCollections()
	if cfg.MongoDB.URI != "" {
		client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err != nil {
			logger.Warnf("cannot connect to MongoDB (%v), serving empty in-memory content", err)
		} else {
			defer func() { _ = client.Disconnect(context.Background()) }()
			cols = content.NewMongoCollections(ctx, client.Database(cfg.MongoDB.Database))
		}
	}

	var cache *content.Cache
	if cfg.Cache.Enabled && cfg.Redis.Addr() != "" {
		rc := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer func() { _ = rc.Close() }()
		cache = content.NewCache(rc, cfg.Cache.TTL)
	}

	// Reads never write objects; the store only needs URLs.
	store := content.NewStore(cols, storage.NewMemoryStorage(cfg.Storage.PublicBaseURL), cache, cfg.Upload.MediaMaxBytes)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics())
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "healthy") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handler.New(store).RegisterPublicRoutes(r.Group("/api"))

	server := &http.Server{Addr: ":" + port, Handler: r, ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second}
	logger.Infof("content service listening on :%s", port)
	if err := server.ListenAndServe(); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
