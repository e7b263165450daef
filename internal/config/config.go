package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Auth      AuthConfig
	Pipeline  PipelineConfig
	Snapshot  SnapshotConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

// AuthConfig holds token issuance and credential settings
type AuthConfig struct {
	// JWTSecret signs locally issued HS256 session tokens
	JWTSecret string
	// TokenTTLMinutes is the lifetime of issued tokens
	TokenTTLMinutes int
	// BcryptCost is the cost factor for password hashing
	BcryptCost int
	// BootstrapAdminEmail and BootstrapAdminPassword seed an initial admin
	// account when the user catalog is empty at startup
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

// PipelineConfig holds the pipeline definition and its business constraints
type PipelineConfig struct {
	// TemplateFile points at the YAML pipeline definition. When empty or
	// missing, the built-in default template is used.
	TemplateFile string
	// ScheduleSpacingDays is the gap between consecutive expected dates
	// in the linear schedule assigned to new leads
	ScheduleSpacingDays int
	// DefaultTimelineInterval is the timeline axis granularity (minutes)
	// assigned to new leads
	DefaultTimelineInterval int
	// AllowedTimelineIntervals is the set of accepted interval values
	AllowedTimelineIntervals []int
	// ClearActualDateOnReopen controls whether reverting a done stage to
	// pending clears its actual date. The historical behavior keeps the
	// stale date, so this defaults to false.
	ClearActualDateOnReopen bool
}

// IntervalAllowed reports whether minutes is an accepted timeline interval.
func (p *PipelineConfig) IntervalAllowed(minutes int) bool {
	for _, v := range p.AllowedTimelineIntervals {
		if v == minutes {
			return true
		}
	}
	return false
}

// SnapshotConfig holds settings for the optional state snapshot database.
// Snapshotting is disabled by default: the canonical state is in-memory and
// lost on restart unless this is enabled.
type SnapshotConfig struct {
	Enabled bool
	// Path is the SQLite database file
	Path string
	// Cron is the schedule for the periodic snapshot job
	Cron string
	// RestoreOnStart seeds the stores from the snapshot at startup
	RestoreOnStart bool
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
	EnableMetrics  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins for CORS requests
	// Use "*" to allow all origins (not recommended for production)
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	// MaxAge is the max age (in seconds) for preflight cache
	MaxAge int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	XSSProtection         string
	ReferrerPolicy        string
	PermissionsPolicy     string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerMinute is the limit for unauthenticated requests (per IP)
	RequestsPerMinute int
	// RequestsPerMinuteAuth is the limit for authenticated requests (per user)
	RequestsPerMinuteAuth int
	// WhitelistIPs is a list of IPs that bypass rate limiting
	WhitelistIPs []string
	// WhitelistPaths is a list of paths that bypass rate limiting
	WhitelistPaths []string
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// TokenTTL returns the session token lifetime as duration
func (a *AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	// Read from config file
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Load auth secrets from environment if not in config
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = v.GetString("JWT_SECRET")
	}
	if cfg.Auth.BootstrapAdminEmail == "" {
		cfg.Auth.BootstrapAdminEmail = v.GetString("BOOTSTRAP_ADMIN_EMAIL")
	}
	if cfg.Auth.BootstrapAdminPassword == "" {
		cfg.Auth.BootstrapAdminPassword = v.GetString("BOOTSTRAP_ADMIN_PASSWORD")
	}

	if cfg.App.Environment != "development" && cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required outside development")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Arkidots Pipeline API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	// Auth defaults
	v.SetDefault("auth.tokenTTLMinutes", 480)
	v.SetDefault("auth.bcryptCost", 12)

	// Pipeline defaults
	v.SetDefault("pipeline.templateFile", "pipeline.yaml")
	v.SetDefault("pipeline.scheduleSpacingDays", 2)
	v.SetDefault("pipeline.defaultTimelineInterval", 120)
	v.SetDefault("pipeline.allowedTimelineIntervals", []int{15, 30, 60, 120, 240, 480})
	v.SetDefault("pipeline.clearActualDateOnReopen", false)

	// Snapshot defaults - disabled, state is in-memory only
	v.SetDefault("snapshot.enabled", false)
	v.SetDefault("snapshot.path", "./data/pipeline.db")
	v.SetDefault("snapshot.cron", "@every 5m")
	v.SetDefault("snapshot.restoreOnStart", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)
	v.SetDefault("server.enableMetrics", true)

	// CORS defaults - restrictive by default
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	// Security header defaults - secure by default
	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.xssProtection", "1; mode=block")
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 120)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/ready", "/metrics"})
}
