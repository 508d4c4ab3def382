package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/killallgit/wortschatz-api/api/audio"
	"github.com/killallgit/wortschatz-api/api/dictionary"
	"github.com/killallgit/wortschatz-api/api/health"
	"github.com/killallgit/wortschatz-api/api/transcripts"
	"github.com/killallgit/wortschatz-api/api/types"
	"github.com/killallgit/wortschatz-api/api/version"
	"github.com/killallgit/wortschatz-api/api/vocabulary"
	_ "github.com/killallgit/wortschatz-api/docs/swagger"
	"github.com/killallgit/wortschatz-api/pkg/config"
)

// Endpoint names used as keys of rate_limiting.endpoints
const (
	EndpointDefault    = "default"
	EndpointUpload     = "upload"
	EndpointDictionary = "dictionary"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, limiter *RateLimiter) error {
	if deps == nil {
		return fmt.Errorf("dependencies are nil")
	}

	cfg := deps.Config
	if cfg == nil {
		var err error
		if cfg, err = config.GetConfig(); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	if deps.TranscriptService == nil || deps.VocabularyService == nil || deps.DictionaryService == nil {
		return fmt.Errorf("transcript, vocabulary and dictionary services are required")
	}

	limit := func(endpoint string) gin.HandlerFunc {
		if !cfg.RateLimiting.Enabled || limiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rps, ok := cfg.RateLimiting.Endpoints[endpoint]
		if !ok {
			rps = cfg.RateLimiting.Endpoints[EndpointDefault]
		}
		return limiter.Limit(endpoint, rps)
	}

	// Public routes (no rate limiting)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)
	audio.RegisterRoutes(engine, deps)

	if cfg.Monitoring.Enabled {
		path := cfg.Monitoring.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, gin.WrapH(promhttp.Handler()))
	}

	// Swagger documentation
	engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
	engine.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	engine.NoRoute(NotFoundHandler())

	apiGroup := engine.Group("/api")
	apiGroup.Use(limit(EndpointDefault))

	// Uploads get their own size and rate limits
	maxUpload := cfg.Server.MaxUploadSize
	if maxUpload <= 0 {
		maxUpload = DefaultBodyLimit
	}
	transcripts.RegisterRoutes(apiGroup.Group("/transcripts"), deps,
		RequestSizeLimitWithSize(maxUpload),
		limit(EndpointUpload),
	)

	vocabularyGroup := apiGroup.Group("/vocabulary")
	vocabularyGroup.Use(RequestSizeLimit())
	vocabulary.RegisterRoutes(vocabularyGroup, deps)

	dictionaryGroup := apiGroup.Group("")
	dictionaryGroup.Use(RequestSizeLimit(), limit(EndpointDictionary))
	dictionary.RegisterRoutes(dictionaryGroup, deps)

	return nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, types.ErrorResponse{
			Error:   "The requested endpoint was not found",
			Details: gin.H{"path": c.Request.URL.Path},
		})
	}
}
