package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Environment  string             `mapstructure:"environment" yaml:"environment"`
	Server       ServerConfig       `mapstructure:"server" yaml:"server"`
	Database     DatabaseConfig     `mapstructure:"database" yaml:"database"`
	Processing   ProcessingConfig   `mapstructure:"processing" yaml:"processing"`
	Whisper      WhisperConfig      `mapstructure:"whisper" yaml:"whisper"`
	Storage      StorageConfig      `mapstructure:"storage" yaml:"storage"`
	Dictionary   DictionaryConfig   `mapstructure:"dictionary" yaml:"dictionary"`
	Cache        CacheConfig        `mapstructure:"cache" yaml:"cache"`
	RateLimiting RateLimitConfig    `mapstructure:"rate_limiting" yaml:"rate_limiting"`
	Security     SecurityConfig     `mapstructure:"security" yaml:"security"`
	Logging      LoggingConfig      `mapstructure:"logging" yaml:"logging"`
	Monitoring   MonitoringConfig   `mapstructure:"monitoring" yaml:"monitoring"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes" yaml:"max_header_bytes"`
	MaxUploadSize   int64         `mapstructure:"max_upload_size" yaml:"max_upload_size"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path                  string        `mapstructure:"path" yaml:"path"`
	MaxConnections        int           `mapstructure:"max_connections" yaml:"max_connections"`
	MaxIdleConnections    int           `mapstructure:"max_idle_connections" yaml:"max_idle_connections"`
	ConnectionMaxLifetime time.Duration `mapstructure:"connection_max_lifetime" yaml:"connection_max_lifetime"`
	LogQueries            bool          `mapstructure:"log_queries" yaml:"log_queries"`
}

// ProcessingConfig contains settings for the normalize/transcribe worker pool
type ProcessingConfig struct {
	Workers       int           `mapstructure:"workers" yaml:"workers"`
	MaxQueueSize  int           `mapstructure:"max_queue_size" yaml:"max_queue_size"`
	JobTimeout    time.Duration `mapstructure:"job_timeout" yaml:"job_timeout"`
	FFmpegPath    string        `mapstructure:"ffmpeg_path" yaml:"ffmpeg_path"`
	FFmpegTimeout time.Duration `mapstructure:"ffmpeg_timeout" yaml:"ffmpeg_timeout"`
}

// WhisperConfig selects and configures the speech recognition backend
type WhisperConfig struct {
	Backend    string        `mapstructure:"backend" yaml:"backend"`
	Language   string        `mapstructure:"language" yaml:"language"`
	BinaryPath string        `mapstructure:"binary_path" yaml:"binary_path"`
	ModelPath  string        `mapstructure:"model_path" yaml:"model_path"`
	Threads    int           `mapstructure:"threads" yaml:"threads"`
	APIURL     string        `mapstructure:"api_url" yaml:"api_url"`
	APIKey     string        `mapstructure:"api_key" yaml:"-"`
	HealthPath string        `mapstructure:"health_path" yaml:"health_path"`
	Model      string        `mapstructure:"model" yaml:"model"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// StorageConfig contains storage settings
type StorageConfig struct {
	TempDir         string        `mapstructure:"temp_dir" yaml:"temp_dir"`
	LibraryDir      string        `mapstructure:"library_dir" yaml:"library_dir"`
	MaxTempAge      time.Duration `mapstructure:"max_temp_age" yaml:"max_temp_age"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" yaml:"cleanup_interval"`
}

// DictionaryConfig configures the dictionary and fallback translation clients
type DictionaryConfig struct {
	BaseURL       string        `mapstructure:"base_url" yaml:"base_url"`
	TranslateURL  string        `mapstructure:"translate_url" yaml:"translate_url"`
	SourceLang    string        `mapstructure:"source_lang" yaml:"source_lang"`
	TargetLang    string        `mapstructure:"target_lang" yaml:"target_lang"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	RateLimit     int           `mapstructure:"rate_limit" yaml:"rate_limit"`
	UserAgent     string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// CacheConfig contains cache settings
type CacheConfig struct {
	MaxSizeMB     int64         `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	DictionaryTTL time.Duration `mapstructure:"dictionary_ttl" yaml:"dictionary_ttl"`
}

// RateLimitConfig contains rate limiting settings
type RateLimitConfig struct {
	Enabled   bool           `mapstructure:"enabled" yaml:"enabled"`
	Endpoints map[string]int `mapstructure:"endpoints" yaml:"endpoints"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	EnableCORS  bool     `mapstructure:"enable_cors" yaml:"enable_cors"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level        string `mapstructure:"level" yaml:"level"`
	Output       string `mapstructure:"output" yaml:"output"`
	FilePath     string `mapstructure:"file_path" yaml:"file_path"`
	MaxSize      int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups   int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge       int    `mapstructure:"max_age" yaml:"max_age"`
	Compress     bool   `mapstructure:"compress" yaml:"compress"`
	EnableCaller bool   `mapstructure:"enable_caller" yaml:"enable_caller"`
}

// MonitoringConfig contains monitoring settings
type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	MetricsPath string `mapstructure:"metrics_path" yaml:"metrics_path"`
}
