package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medbill/medbill-site/backend/api/handlers"
	"github.com/medbill/medbill-site/backend/api/internal/admins"
	bookinghandler "github.com/medbill/medbill-site/backend/api/internal/booking/handler"
	bookingrepo "github.com/medbill/medbill-site/backend/api/internal/booking/repository"
	bookingservice "github.com/medbill/medbill-site/backend/api/internal/booking/service"
	"github.com/medbill/medbill-site/backend/api/internal/config"
	"github.com/medbill/medbill-site/backend/api/internal/contact"
	"github.com/medbill/medbill-site/backend/api/internal/content"
	"github.com/medbill/medbill-site/backend/api/internal/content/collection"
	contenthandler "github.com/medbill/medbill-site/backend/api/internal/content/handler"
	"github.com/medbill/medbill-site/backend/api/internal/oidc"
	resumehandler "github.com/medbill/medbill-site/backend/api/internal/resume/handler"
	resumerepo "github.com/medbill/medbill-site/backend/api/internal/resume/repository"
	resumeservice "github.com/medbill/medbill-site/backend/api/internal/resume/service"
	"github.com/medbill/medbill-site/backend/api/internal/sessions"
	"github.com/medbill/medbill-site/backend/api/internal/storage"
	"github.com/medbill/medbill-site/backend/api/internal/tokens"
	"github.com/medbill/medbill-site/backend/api/pkg/logger"
	"github.com/medbill/medbill-site/backend/api/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// cors is permissive; the site frontend and admin panel are served from
// other origins.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

func rateLimiter(cfg config.RateLimitConfig, b *backends) []gin.HandlerFunc {
	if !cfg.Enabled {
		return nil
	}
	if cfg.UseRedis && b.redis != nil {
		win := time.Duration(cfg.WindowSeconds) * time.Second
		return []gin.HandlerFunc{middleware.RedisRateLimitMiddleware(b.redis, cfg.RPS, cfg.Burst, win)}
	}
	return []gin.HandlerFunc{middleware.RateLimitMiddleware(cfg.RPS, cfg.Burst)}
}

// buildRouter wires repositories, services and handlers onto a gin engine.
// Mongo-backed stores are used when b.db is set, in-memory ones otherwise.
func buildRouter(ctx context.Context, cfg *config.Config, b *backends) (*gin.Engine, error) {
	var (
		bookings    bookingrepo.Repository = bookingrepo.NewMemoryRepo()
		resumes     resumerepo.Repository  = resumerepo.NewMemoryRepo()
		contactCol  collection.Collection[*contact.Message]
		contentCols content.Collections
		adminRepo   admins.Repository = admins.NewMemoryRepository()
		sessionRepo sessions.Repository
	)
	if b.db != nil {
		bookings = bookingrepo.NewMongoRepo(ctx, b.db.Collection("bookings"))
		resumes = resumerepo.NewMongoRepo(ctx, b.db.Collection("resume_applications"))
		contactCol = collection.NewMongo[*contact.Message](ctx, b.db.Collection("contacts"))
		contentCols = content.NewMongoCollections(ctx, b.db)
		adminRepo = admins.NewMongoRepository(ctx, b.db.Collection("admins"))
	} else {
		contactCol = collection.NewMemory[*contact.Message]()
		contentCols = content.NewMemoryCollections()
	}
	switch {
	case b.redis != nil:
		sessionRepo = sessions.NewRedisRepository(b.redis, "session:")
		logger.Info("Using Redis for session storage")
	case b.db != nil:
		sessionRepo = sessions.NewMongoRepository(ctx, b.db.Collection("sessions"))
	default:
		sessionRepo = sessions.NewMemoryRepository()
	}

	var cache *content.Cache
	if cfg.Cache.Enabled {
		cache = content.NewCache(b.redis, cfg.Cache.TTL)
	}
	store := content.NewStore(contentCols, b.files, cache, cfg.Upload.MediaMaxBytes)

	bookingSvc := bookingservice.NewService(bookings, b.pub)
	resumeSvc := resumeservice.NewService(resumes, b.files, store, b.pub, cfg.Upload.ResumeMaxBytes)
	contactSvc := contact.NewService(contactCol, b.pub)

	adminSvc := admins.NewService(adminRepo)
	if err := adminSvc.Seed(ctx, cfg.Admin); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	sessionSvc := sessions.NewService(sessionRepo, cfg.JWT.RefreshTokenTTL)

	// Verifiers: local HS256 tokens first, then Keycloak.
	var verifiers middleware.MultiVerifier
	issuer, err := tokens.NewIssuer(cfg.JWT)
	if err != nil {
		logger.Warnf("local admin tokens disabled: %v", err)
	} else {
		verifiers = append(verifiers, issuer)
	}
	oidcReady := true
	if cfg.Keycloak.URL != "" && cfg.Keycloak.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, cfg.Keycloak.Issuer(), cfg.Keycloak.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
			oidcReady = false
		} else {
			verifiers = append(verifiers, ver)
		}
	}

	var (
		revocations middleware.RevocationChecker
		revoker     handlers.Revoker
	)
	if b.redis != nil {
		bl := sessions.NewBlacklist(b.redis)
		revocations, revoker = bl, bl
	}

	r := gin.New()
	r.Use(cors(), gin.Recovery(), gin.Logger(), middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", readiness(b, oidcReady))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterSwagger(r)

	limit := rateLimiter(cfg.RateLimit, b)
	bookingHandler := bookinghandler.New(bookingSvc)
	resumeHandler := resumehandler.New(resumeSvc)
	contactHandler := contact.NewHandler(contactSvc)
	contentHandler := contenthandler.New(store)

	api := r.Group("/api")
	bookingHandler.RegisterPublicRoutes(api, limit...)
	resumeHandler.RegisterPublicRoutes(api, limit...)
	contactHandler.RegisterPublicRoutes(api, limit...)
	contentHandler.RegisterPublicRoutes(api)

	authHandler := handlers.NewAuthHandler(adminSvc, sessionSvc, issuer, revoker)
	// login, refresh and logout sit beside the guarded admin routes
	authHandler.Register(api.Group("/admin"))

	admin := api.Group("/admin", middleware.AuthMiddleware(verifiers, revocations))
	authHandler.RegisterProtected(admin)
	bookingHandler.RegisterAdminRoutes(admin)
	resumeHandler.RegisterAdminRoutes(admin)
	contactHandler.RegisterAdminRoutes(admin)
	contentHandler.RegisterAdminRoutes(admin)

	logger.Debugf("services: mongo=%v redis=%v verifiers=%d", b.db != nil, b.redis != nil, len(verifiers))
	return r, nil
}

// readiness returns 200 only when every configured dependency answers.
// Unconfigured dependencies report "memory" and do not block readiness.
func readiness(b *backends, oidcReady bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		ready := true
		deps := gin.H{}

		if b.mongo == nil {
			deps["mongo"] = "memory"
		} else if err := b.mongo.Ping(ctx, nil); err != nil {
			deps["mongo"] = "down"
			ready = false
		} else {
			deps["mongo"] = "up"
		}

		if b.redis == nil {
			deps["redis"] = "memory"
		} else if err := b.redis.Ping(ctx).Err(); err != nil {
			deps["redis"] = "down"
			ready = false
		} else {
			deps["redis"] = "up"
		}

		if p, ok := b.files.(storage.Pinger); !ok {
			deps["storage"] = "memory"
		} else if err := p.Ping(ctx); err != nil {
			deps["storage"] = "down"
			ready = false
		} else {
			deps["storage"] = "up"
		}

		deps["oidc"] = oidcReady
		if !oidcReady {
			ready = false
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	}
}
