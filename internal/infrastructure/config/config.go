package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Shopify   ShopifyConfig
	Session   SessionConfig
	Crypto    CryptoConfig
	Sync      SyncConfig
	Webhook   WebhookConfig
	Insight   InsightConfig
	Storage   StorageConfig
	Log       LogConfig
	Event     EventConfig
	HTTP      HTTPConfig
	Scheduler SchedulerConfig
	Swagger   SwaggerConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ShopifyConfig holds the upstream platform app credentials and client tuning
type ShopifyConfig struct {
	APIKey           string        // App API key, audience of session tokens
	APISecret        string        // App secret, signs webhooks and session tokens
	APIVersion       string        // Admin API version, e.g. "2024-01"
	Timeout          time.Duration // Per-request timeout
	MaxRetries       int           // Attempts per call including the first
	RetryBackoffBase time.Duration // Backoff base, doubled per attempt
	RetryBackoffMax  time.Duration // Backoff cap
	MaxResponseBytes int64         // Response body size cap
	QuotaParser      string        // "graphql_cost" or "call_limit_header"
}

// SessionConfig holds App Bridge session token verification settings
type SessionConfig struct {
	Enabled   bool          // Verify session tokens on merchant-facing routes
	ClockSkew time.Duration // Allowed exp/nbf skew
}

// CryptoConfig holds credential encryption settings
type CryptoConfig struct {
	EncryptionKey    string // Passphrase the storage key is derived from
	KeySalt          string // PBKDF2 salt, fixed per deployment
	PBKDF2Iterations int
}

// SyncConfig holds sync engine tuning
type SyncConfig struct {
	PageSize         int
	OrdersWindowDays int           // Trailing window for incremental order pulls
	Lease            time.Duration // Age after which a stale syncing marker is reclaimable
}

// WebhookConfig holds webhook ingestion settings
type WebhookConfig struct {
	ArchiveEnabled   bool          // Archive raw payloads to object storage after commit
	ComplianceWindow time.Duration // Deadline for uninstall/redact purges
}

// InsightConfig holds insight engine thresholds
type InsightConfig struct {
	WindowDays            int     // Trailing analysis window
	VelocityDaysThreshold float64 // days_remaining below this triggers understocked winner
	DiscountRateThreshold float64 // Discounted-order ratio above this triggers cannibalization
	AOVChangeThreshold    float64 // Relative AOV change that counts as a trend
	RevenueShareThreshold float64 // Top-product revenue share that counts as concentration
	LowStockMax           int64   // Inventory at or below this counts as low stock
	TTL                   time.Duration
}

// StorageConfig holds object storage (S3) settings
type StorageConfig struct {
	Enabled        bool
	Bucket         string
	Region         string
	Endpoint       string // Custom endpoint for S3-compatible stores, empty for AWS
	Prefix         string // Key prefix for archived payloads
	ForcePathStyle bool   // Required by MinIO-style endpoints
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// EventConfig holds outbox processing configuration
type EventConfig struct {
	ProcessorEnabled bool
	BatchSize        int
	PollInterval     time.Duration
	MaxRetries       int
	CleanupEnabled   bool
	CleanupRetention time.Duration
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// SchedulerConfig holds background worker pool configuration
type SchedulerConfig struct {
	Enabled       bool
	Workers       int
	QueueSize     int
	JobTimeout    time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	// SweepEnabled turns on the periodic sweep that enqueues incremental
	// syncs for active shops
	SweepEnabled   bool
	SweepInterval  time.Duration
	SweepBatchSize int
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled     bool     // Whether to enable Swagger endpoint
	RequireAuth bool     // Require authentication to access Swagger
	AllowedIPs  []string // IP whitelist (empty = allow all)
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	// Database tracing options
	DBTraceEnabled    bool          // Enable database query tracing (otelgorm)
	DBLogFullSQL      bool          // Log full SQL statements (dev only)
	DBSlowQueryThresh time.Duration // Slow query threshold for warnings
	// PyroscopeEndpoint enables continuous profiling when set
	PyroscopeEndpoint string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with ECOMDASH_ prefix (e.g., ECOMDASH_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/app")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Enable environment variable override
	v.SetEnvPrefix("ECOMDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Build config struct
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Shopify: ShopifyConfig{
			APIKey:           v.GetString("shopify.api_key"),
			APISecret:        v.GetString("shopify.api_secret"),
			APIVersion:       v.GetString("shopify.api_version"),
			Timeout:          v.GetDuration("shopify.timeout"),
			MaxRetries:       v.GetInt("shopify.max_retries"),
			RetryBackoffBase: v.GetDuration("shopify.retry_backoff_base"),
			RetryBackoffMax:  v.GetDuration("shopify.retry_backoff_max"),
			MaxResponseBytes: v.GetInt64("shopify.max_response_bytes"),
			QuotaParser:      v.GetString("shopify.quota_parser"),
		},
		Session: SessionConfig{
			Enabled:   v.GetBool("session.enabled"),
			ClockSkew: v.GetDuration("session.clock_skew"),
		},
		Crypto: CryptoConfig{
			EncryptionKey:    v.GetString("crypto.encryption_key"),
			KeySalt:          v.GetString("crypto.key_salt"),
			PBKDF2Iterations: v.GetInt("crypto.pbkdf2_iterations"),
		},
		Sync: SyncConfig{
			PageSize:         v.GetInt("sync.page_size"),
			OrdersWindowDays: v.GetInt("sync.orders_window_days"),
			Lease:            v.GetDuration("sync.lease"),
		},
		Webhook: WebhookConfig{
			ArchiveEnabled:   v.GetBool("webhook.archive_enabled"),
			ComplianceWindow: v.GetDuration("webhook.compliance_window"),
		},
		Insight: InsightConfig{
			WindowDays:            v.GetInt("insight.window_days"),
			VelocityDaysThreshold: v.GetFloat64("insight.velocity_days_threshold"),
			DiscountRateThreshold: v.GetFloat64("insight.discount_rate_threshold"),
			AOVChangeThreshold:    v.GetFloat64("insight.aov_change_threshold"),
			RevenueShareThreshold: v.GetFloat64("insight.revenue_share_threshold"),
			LowStockMax:           v.GetInt64("insight.low_stock_max"),
			TTL:                   v.GetDuration("insight.ttl"),
		},
		Storage: StorageConfig{
			Enabled:        v.GetBool("storage.enabled"),
			Bucket:         v.GetString("storage.bucket"),
			Region:         v.GetString("storage.region"),
			Endpoint:       v.GetString("storage.endpoint"),
			Prefix:         v.GetString("storage.prefix"),
			ForcePathStyle: v.GetBool("storage.force_path_style"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Event: EventConfig{
			ProcessorEnabled: v.GetBool("event.processor_enabled"),
			BatchSize:        v.GetInt("event.batch_size"),
			PollInterval:     v.GetDuration("event.poll_interval"),
			MaxRetries:       v.GetInt("event.max_retries"),
			CleanupEnabled:   v.GetBool("event.cleanup_enabled"),
			CleanupRetention: v.GetDuration("event.cleanup_retention"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Scheduler: SchedulerConfig{
			Enabled:        v.GetBool("scheduler.enabled"),
			Workers:        v.GetInt("scheduler.workers"),
			QueueSize:      v.GetInt("scheduler.queue_size"),
			JobTimeout:     v.GetDuration("scheduler.job_timeout"),
			MaxRetries:     v.GetInt("scheduler.max_retries"),
			RetryDelay:     v.GetDuration("scheduler.retry_delay"),
			MaxRetryDelay:  v.GetDuration("scheduler.max_retry_delay"),
			SweepEnabled:   v.GetBool("scheduler.sweep_enabled"),
			SweepInterval:  v.GetDuration("scheduler.sweep_interval"),
			SweepBatchSize: v.GetInt("scheduler.sweep_batch_size"),
		},
		Swagger: SwaggerConfig{
			Enabled:     v.GetBool("swagger.enabled"),
			RequireAuth: v.GetBool("swagger.require_auth"),
			AllowedIPs:  v.GetStringSlice("swagger.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			PyroscopeEndpoint: v.GetString("telemetry.pyroscope_endpoint"),
		},
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "ecomdash-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "ecomdash"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Shopify.APIVersion == "" {
		cfg.Shopify.APIVersion = "2024-01"
	}
	if cfg.Shopify.Timeout == 0 {
		cfg.Shopify.Timeout = 30 * time.Second
	}
	if cfg.Shopify.MaxRetries == 0 {
		cfg.Shopify.MaxRetries = 3
	}
	if cfg.Shopify.RetryBackoffBase == 0 {
		cfg.Shopify.RetryBackoffBase = 500 * time.Millisecond
	}
	if cfg.Shopify.RetryBackoffMax == 0 {
		cfg.Shopify.RetryBackoffMax = 10 * time.Second
	}
	if cfg.Shopify.MaxResponseBytes == 0 {
		cfg.Shopify.MaxResponseBytes = 5 << 20 // 5MB
	}
	if cfg.Shopify.QuotaParser == "" {
		cfg.Shopify.QuotaParser = "graphql_cost"
	}
	if cfg.Session.ClockSkew == 0 {
		cfg.Session.ClockSkew = 5 * time.Second
	}
	if cfg.Crypto.KeySalt == "" {
		cfg.Crypto.KeySalt = "ecomdash-credential-store"
	}
	if cfg.Crypto.PBKDF2Iterations == 0 {
		cfg.Crypto.PBKDF2Iterations = 600_000
	}
	if cfg.Sync.PageSize == 0 {
		cfg.Sync.PageSize = 50
	}
	if cfg.Sync.OrdersWindowDays == 0 {
		cfg.Sync.OrdersWindowDays = 90
	}
	if cfg.Sync.Lease == 0 {
		cfg.Sync.Lease = 30 * time.Minute
	}
	if cfg.Webhook.ComplianceWindow == 0 {
		cfg.Webhook.ComplianceWindow = 48 * time.Hour
	}
	if cfg.Insight.WindowDays == 0 {
		cfg.Insight.WindowDays = 30
	}
	if cfg.Insight.VelocityDaysThreshold == 0 {
		cfg.Insight.VelocityDaysThreshold = 7
	}
	if cfg.Insight.DiscountRateThreshold == 0 {
		cfg.Insight.DiscountRateThreshold = 0.40
	}
	if cfg.Insight.AOVChangeThreshold == 0 {
		cfg.Insight.AOVChangeThreshold = 0.05
	}
	if cfg.Insight.RevenueShareThreshold == 0 {
		cfg.Insight.RevenueShareThreshold = 0.20
	}
	if cfg.Insight.LowStockMax == 0 {
		cfg.Insight.LowStockMax = 5
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = "webhooks"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Event.BatchSize == 0 {
		cfg.Event.BatchSize = 100
	}
	if cfg.Event.PollInterval == 0 {
		cfg.Event.PollInterval = 5 * time.Second
	}
	if cfg.Event.MaxRetries == 0 {
		cfg.Event.MaxRetries = 5
	}
	if cfg.Event.CleanupRetention == 0 {
		cfg.Event.CleanupRetention = 168 * time.Hour
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20 // 2MB, webhook payloads are small
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// NOTE: CORS origins are intentionally not given a default fallback to "*".
	// An empty list means no cross-origin requests are allowed until explicitly
	// configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Scheduler.Workers == 0 {
		cfg.Scheduler.Workers = 4
	}
	if cfg.Scheduler.QueueSize == 0 {
		cfg.Scheduler.QueueSize = 64
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 30 * time.Minute
	}
	if cfg.Scheduler.MaxRetries == 0 {
		cfg.Scheduler.MaxRetries = 3
	}
	if cfg.Scheduler.RetryDelay == 0 {
		cfg.Scheduler.RetryDelay = 30 * time.Second
	}
	if cfg.Scheduler.MaxRetryDelay == 0 {
		cfg.Scheduler.MaxRetryDelay = 10 * time.Minute
	}
	if cfg.Scheduler.SweepInterval == 0 {
		cfg.Scheduler.SweepInterval = 15 * time.Minute
	}
	if cfg.Scheduler.SweepBatchSize == 0 {
		cfg.Scheduler.SweepBatchSize = 20
	}
	// Telemetry defaults
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0 // 100% in development
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "ecomdash-backend"
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	// Note: DBLogFullSQL defaults to false for security (disable in production)
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	// Validate connection pool settings
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Shopify.MaxRetries < 1 {
		return fmt.Errorf("shopify.max_retries must be at least 1")
	}
	if c.Shopify.QuotaParser != "graphql_cost" && c.Shopify.QuotaParser != "call_limit_header" {
		return fmt.Errorf("shopify.quota_parser must be 'graphql_cost' or 'call_limit_header', got %q", c.Shopify.QuotaParser)
	}
	if c.Insight.VelocityDaysThreshold < 0 {
		return fmt.Errorf("insight.velocity_days_threshold cannot be negative")
	}
	if c.Insight.DiscountRateThreshold < 0 || c.Insight.DiscountRateThreshold > 1 {
		return fmt.Errorf("insight.discount_rate_threshold must be between 0 and 1")
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Shopify.APISecret == "" {
			return fmt.Errorf("shopify.api_secret is required in production")
		}
		if c.Crypto.EncryptionKey == "" {
			return fmt.Errorf("crypto.encryption_key is required in production")
		}
		if len(c.Crypto.EncryptionKey) < 32 {
			return fmt.Errorf("crypto.encryption_key must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		// CORS must not use wildcard with credentials
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		// Swagger must be disabled OR protected in production
		if c.Swagger.Enabled {
			if !c.Swagger.RequireAuth && len(c.Swagger.AllowedIPs) == 0 {
				return fmt.Errorf("swagger endpoint must be disabled, require authentication, or have IP restriction in production")
			}
		}
		// Database tracing: full SQL logging is a security risk in production
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
		}
	}

	// Validate telemetry configuration (all environments)
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// OrdersWindow returns the trailing order pull window as a duration
func (c *SyncConfig) OrdersWindow() time.Duration {
	return time.Duration(c.OrdersWindowDays) * 24 * time.Hour
}

// Window returns the trailing insight analysis window as a duration
func (c *InsightConfig) Window() time.Duration {
	return time.Duration(c.WindowDays) * 24 * time.Hour
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
