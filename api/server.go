package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/wortschatz-api/api/types"
	"github.com/killallgit/wortschatz-api/pkg/config"
)

// Server represents the HTTP server
type Server struct {
	engine      *gin.Engine
	httpServer  *http.Server
	rateLimiter *RateLimiter
	jsonLogs    bool

	// Dependencies for handlers
	dependencies *types.Dependencies
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	// Uploads larger than this spill to disk during multipart parsing
	engine.MaxMultipartMemory = 32 << 20

	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 60 * time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 15 * time.Minute
	}
	maxHeaderBytes := cfg.MaxHeaderBytes
	if maxHeaderBytes <= 0 {
		maxHeaderBytes = 1 << 20
	}

	return &Server{
		engine:      engine,
		rateLimiter: NewRateLimiter(),
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    maxHeaderBytes,
		},
	}
}

// SetDependencies sets all handler dependencies
func (s *Server) SetDependencies(deps *types.Dependencies) {
	s.dependencies = deps
}

// Engine returns the Gin engine for testing
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// UseJSONLogs switches request logs to one JSON object per line
func (s *Server) UseJSONLogs(enabled bool) {
	s.jsonLogs = enabled
}

// Initialize sets up middleware and routes
func (s *Server) Initialize() error {
	if s.dependencies == nil {
		return fmt.Errorf("server dependencies not set")
	}
	s.setupMiddleware()
	return RegisterRoutes(s.engine, s.dependencies, s.rateLimiter)
}

// setupMiddleware configures global middleware
func (s *Server) setupMiddleware() {
	// Request lines go through the standard logger's writer
	logConfig := gin.LoggerConfig{
		Output:    log.Writer(),
		SkipPaths: []string{"/health", "/metrics"},
	}
	if s.jsonLogs {
		logConfig.Formatter = jsonLogFormatter
	}
	s.engine.Use(gin.LoggerWithConfig(logConfig))

	if cfg := s.dependencies.Config; cfg == nil || cfg.Security.EnableCORS {
		var origins []string
		if cfg != nil {
			origins = cfg.Security.CORSOrigins
		}
		s.engine.Use(CORS(origins))
	}
}

// Start serves until Shutdown. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	log.Printf("[INFO] HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.Stop()
	return s.httpServer.Shutdown(ctx)
}
