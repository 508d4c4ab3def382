package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// DefaultConfigPath is read when no --config flag is given
const DefaultConfigPath = "./config/settings.yaml"

var (
	once       sync.Once
	initErr    error
	configPath = DefaultConfigPath
)

// SetConfigPath overrides the settings file location; call before Init
func SetConfigPath(path string) {
	if path != "" {
		configPath = path
	}
}

// Init initializes the configuration system
// This should be called once at application startup
func Init() error {
	once.Do(func() {
		initErr = Load(configPath)
	})
	return initErr
}

// Load reads defaults, the optional settings file and WORTSCHATZ_* environment
// overrides into the global viper instance.
func Load(path string) error {
	setDefaults()

	viper.SetEnvPrefix("WORTSCHATZ")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	path = filepath.Clean(path)
	viper.SetConfigFile(path)

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine; defaults and env vars still apply
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Watch re-reads the settings file on change and hands the new config to fn.
// It is a no-op if the file was never found.
func Watch(fn func(*Config)) {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := GetConfig()
		if err != nil {
			log.Printf("[WARN] Ignoring config change in %s: %v", e.Name, err)
			return
		}
		log.Printf("[INFO] Config file changed: %s", e.Name)
		fn(cfg)
	})
	viper.WatchConfig()
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// validate validates the configuration using Viper values
func validate() error {
	port := viper.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %d", port)
	}

	if viper.GetString("database.path") == "" {
		return fmt.Errorf("database path is required")
	}

	switch backend := viper.GetString("whisper.backend"); backend {
	case BackendWhisperCPP, BackendRemote:
	default:
		return fmt.Errorf("unknown whisper backend: %q", backend)
	}

	if viper.GetString("storage.temp_dir") == "" || viper.GetString("storage.library_dir") == "" {
		return fmt.Errorf("storage.temp_dir and storage.library_dir are required")
	}

	// Auto-correct invalid worker count
	if viper.GetInt("processing.workers") <= 0 {
		viper.Set("processing.workers", 2)
	}

	// Auto-correct invalid queue size
	if viper.GetInt("processing.max_queue_size") <= 0 {
		viper.Set("processing.max_queue_size", 16)
	}

	// Temp uploads must outlive the normalize and transcribe stages
	if age, ok := safeTempAge(viper.GetDuration("storage.max_temp_age"), viper.GetDuration("processing.job_timeout")); !ok {
		viper.Set("storage.max_temp_age", age)
	}

	return nil
}

// safeTempAge reports whether maxAge is longer than the two job-timeout
// bounded ingest stages, and otherwise returns the corrected age
func safeTempAge(maxAge, jobTimeout time.Duration) (time.Duration, bool) {
	if jobTimeout <= 0 || maxAge > 2*jobTimeout {
		return maxAge, true
	}
	corrected := 3 * jobTimeout
	log.Printf("[WARN] storage.max_temp_age %v does not exceed twice processing.job_timeout %v, using %v", maxAge, jobTimeout, corrected)
	return corrected, false
}

// Whisper backends
const (
	BackendWhisperCPP = "whispercpp"
	BackendRemote     = "remote"
)

// Validate validates a Config struct (for testing)
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Whisper.Backend != BackendWhisperCPP && c.Whisper.Backend != BackendRemote {
		return fmt.Errorf("unknown whisper backend: %q", c.Whisper.Backend)
	}

	if c.Processing.Workers <= 0 {
		c.Processing.Workers = 2
	}

	if c.Processing.MaxQueueSize <= 0 {
		c.Processing.MaxQueueSize = 16
	}

	c.Storage.MaxTempAge, _ = safeTempAge(c.Storage.MaxTempAge, c.Processing.JobTimeout)

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("environment", "development")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.read_timeout", 60*time.Second)
	viper.SetDefault("server.write_timeout", 15*time.Minute)
	viper.SetDefault("server.shutdown_timeout", 30*time.Second)
	viper.SetDefault("server.max_header_bytes", 1048576)
	viper.SetDefault("server.max_upload_size", 200*1024*1024)

	// Database defaults
	viper.SetDefault("database.path", "./data/library.db")
	viper.SetDefault("database.max_connections", 1)
	viper.SetDefault("database.max_idle_connections", 1)
	viper.SetDefault("database.connection_max_lifetime", 0)
	viper.SetDefault("database.log_queries", false)

	// Processing defaults
	viper.SetDefault("processing.workers", 2)
	viper.SetDefault("processing.max_queue_size", 16)
	viper.SetDefault("processing.job_timeout", 10*time.Minute)
	viper.SetDefault("processing.ffmpeg_path", "ffmpeg")
	viper.SetDefault("processing.ffmpeg_timeout", 2*time.Minute)

	// Whisper defaults
	viper.SetDefault("whisper.backend", BackendWhisperCPP)
	viper.SetDefault("whisper.language", "de")
	viper.SetDefault("whisper.binary_path", "whisper-cli")
	viper.SetDefault("whisper.model_path", "./models/ggml-base.bin")
	viper.SetDefault("whisper.threads", 4)
	viper.SetDefault("whisper.api_url", "http://localhost:8000")
	viper.SetDefault("whisper.health_path", "/health")
	viper.SetDefault("whisper.model", "base")
	viper.SetDefault("whisper.timeout", 10*time.Minute)

	// Storage defaults
	viper.SetDefault("storage.temp_dir", "./data/temp_uploads")
	viper.SetDefault("storage.library_dir", "./data/audio_library")
	viper.SetDefault("storage.max_temp_age", 6*time.Hour)
	viper.SetDefault("storage.cleanup_interval", 30*time.Minute)

	// Dictionary defaults
	viper.SetDefault("dictionary.base_url", "https://api.dictionaryapi.dev")
	viper.SetDefault("dictionary.translate_url", "https://translate.googleapis.com")
	viper.SetDefault("dictionary.source_lang", "de")
	viper.SetDefault("dictionary.target_lang", "en")
	viper.SetDefault("dictionary.timeout", 5*time.Second)
	viper.SetDefault("dictionary.retry_attempts", 2)
	viper.SetDefault("dictionary.rate_limit", 5)
	viper.SetDefault("dictionary.user_agent", "WortschatzAPI/1.0")

	// Cache defaults
	viper.SetDefault("cache.max_size_mb", 16)
	viper.SetDefault("cache.dictionary_ttl", 24*time.Hour)

	// Rate limiting defaults
	viper.SetDefault("rate_limiting.enabled", true)
	viper.SetDefault("rate_limiting.endpoints", map[string]int{
		"upload":     2,
		"dictionary": 5,
		"default":    60,
	})

	// Security defaults
	viper.SetDefault("security.enable_cors", true)
	viper.SetDefault("security.cors_origins", []string{"*"})

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.output", "stdout")
	viper.SetDefault("logging.file_path", "./logs/wortschatz.log")
	viper.SetDefault("logging.max_size", 100)
	viper.SetDefault("logging.max_backups", 10)
	viper.SetDefault("logging.max_age", 30)
	viper.SetDefault("logging.compress", true)
	viper.SetDefault("logging.enable_caller", false)

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_path", "/metrics")
}
