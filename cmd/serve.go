package cmd

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/killallgit/wortschatz-api/api"
	"github.com/killallgit/wortschatz-api/api/types"
	"github.com/killallgit/wortschatz-api/internal/database"
	"github.com/killallgit/wortschatz-api/internal/engine"
	"github.com/killallgit/wortschatz-api/internal/metrics"
	"github.com/killallgit/wortschatz-api/internal/services/cache"
	"github.com/killallgit/wortschatz-api/internal/services/cleanup"
	"github.com/killallgit/wortschatz-api/internal/services/dictionary"
	"github.com/killallgit/wortschatz-api/internal/services/transcripts"
	"github.com/killallgit/wortschatz-api/internal/services/vocabulary"
	"github.com/killallgit/wortschatz-api/internal/services/workers"
	"github.com/killallgit/wortschatz-api/internal/storage"
	"github.com/killallgit/wortschatz-api/pkg/audio"
	"github.com/killallgit/wortschatz-api/pkg/config"
	"github.com/killallgit/wortschatz-api/pkg/ffmpeg"
)

var (
	serverHost string
	serverPort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the Wortschatz API server with the configured settings.

The transcription engine is loaded once at startup. If it cannot be
loaded the server still starts; uploads answer 503 and /health reports
the engine as unavailable.

Example:
  wortschatz-api serve
  wortschatz-api serve --port 8080
  wortschatz-api serve --config ./config/settings.yaml --log-level debug`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server flags
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger, err := setupLogging(cmd, cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logger.Close()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	server := api.NewServer(cfg.Server)
	server.SetDependencies(app.deps)
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")
	server.UseJSONLogs(jsonLogs)
	if err := server.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Println("[INFO] Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	// Start returns nil once Shutdown begins, so a listen error is the only
	// way the group fails before a signal
	if err := g.Wait(); err != nil {
		return err
	}
	log.Println("[INFO] Server gracefully stopped")
	return nil
}

// application owns every long-lived component behind the HTTP server
type application struct {
	db      *database.DB
	pool    *workers.Pool
	cache   *cache.MemoryCache
	cleanup *cleanup.Service
	deps    *types.Dependencies
}

// newApplication opens storage, loads the engine and builds the services
func newApplication(ctx context.Context, cfg *config.Config) (_ *application, err error) {
	app := &application{}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	app.db, err = database.Initialize(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err = app.db.Migrate(); err != nil {
		return nil, err
	}

	temp, err := storage.NewTemp(cfg.Storage.TempDir)
	if err != nil {
		return nil, err
	}
	library, err := storage.NewLibrary(cfg.Storage.LibraryDir)
	if err != nil {
		return nil, err
	}

	ff := ffmpeg.New(cfg.Processing.FFmpegPath, cfg.Processing.FFmpegTimeout)
	if err := ff.ValidateBinary(); err != nil {
		log.Printf("[WARN] ffmpeg unavailable, only WAV and Ogg Vorbis uploads can be decoded: %v", err)
	}

	handle := loadEngine(ctx, cfg)
	metrics.SetEngineReady(handle.Available() == nil)

	app.pool = workers.NewPool(cfg.Processing.Workers, cfg.Processing.MaxQueueSize, cfg.Processing.JobTimeout)
	if err = app.pool.Start(); err != nil {
		return nil, fmt.Errorf("failed to start worker pool: %w", err)
	}

	app.cache = cache.NewMemoryCache(cfg.Cache.MaxSizeMB, cfg.Storage.CleanupInterval)
	client := dictionary.NewClient(dictionary.Config{
		BaseURL:           cfg.Dictionary.BaseURL,
		TranslateURL:      cfg.Dictionary.TranslateURL,
		SourceLang:        cfg.Dictionary.SourceLang,
		TargetLang:        cfg.Dictionary.TargetLang,
		Timeout:           cfg.Dictionary.Timeout,
		MaxRetries:        cfg.Dictionary.RetryAttempts,
		RequestsPerSecond: cfg.Dictionary.RateLimit,
		UserAgent:         cfg.Dictionary.UserAgent,
	})

	app.cleanup = cleanup.NewService(cfg.Storage.TempDir, cfg.Storage.MaxTempAge, cfg.Storage.CleanupInterval)
	app.cleanup.Start(ctx)

	app.deps = &types.Dependencies{
		DB: app.db,
		TranscriptService: transcripts.NewService(transcripts.Options{
			Repository: transcripts.NewRepository(app.db.DB),
			Normalizer: audio.NewNormalizer(ff, ffmpeg.ErrInvalidAudioFile),
			Engine:     handle,
			Pool:       app.pool,
			Temp:       temp,
			Library:    library,
			Language:   cfg.Whisper.Language,
		}),
		VocabularyService: vocabulary.NewService(vocabulary.NewRepository(app.db.DB)),
		DictionaryService: dictionary.NewService(client, dictionary.NewGoogleTranslator(client), app.cache, cfg.Cache.DictionaryTTL),
		WorkerPool:        app.pool,
		Config:            cfg,
		Version:           Version,
	}
	return app, nil
}

// loadEngine builds the configured backend and probes it
func loadEngine(ctx context.Context, cfg *config.Config) *engine.Handle {
	var e engine.Engine
	switch cfg.Whisper.Backend {
	case config.BackendRemote:
		e = engine.NewRemote(engine.RemoteConfig{
			BaseURL:    cfg.Whisper.APIURL,
			APIKey:     cfg.Whisper.APIKey,
			Model:      cfg.Whisper.Model,
			HealthPath: cfg.Whisper.HealthPath,
			Timeout:    cfg.Whisper.Timeout,
		})
	case config.BackendWhisperCPP:
		e = engine.NewWhisperCPP(engine.WhisperCPPConfig{
			BinaryPath: cfg.Whisper.BinaryPath,
			ModelPath:  cfg.Whisper.ModelPath,
			Threads:    cfg.Whisper.Threads,
			TempDir:    cfg.Storage.TempDir,
		})
	default:
		return engine.Unavailable(fmt.Errorf("unknown whisper backend %q", cfg.Whisper.Backend))
	}
	return engine.Load(ctx, e)
}

// Close stops background work and closes the database
func (a *application) Close() {
	if a.cleanup != nil {
		a.cleanup.Stop()
	}
	if a.pool != nil {
		a.pool.Stop()
	}
	if a.cache != nil {
		a.cache.Stop()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Printf("[WARN] Failed to close database: %v", err)
		}
	}
}
