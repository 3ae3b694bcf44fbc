package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // timezone database for minimal images

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Harvest     HarvestConfig
	KPI         KPIConfig
	Retry       RetryConfig
	Storage     StorageConfig
	SFTP        SFTPConfig
	Export      ExportConfig
	Photo       PhotoConfig
	Idempotency IdempotencyConfig
	Telemetry   TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name     string
	Env      string
	Port     string
	Timezone string // IANA name used for "today" and export timestamps
}

// Location resolves the configured timezone, falling back to UTC
func (a AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
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

// Addr is host:port
func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// JWTConfig holds JWT settings. Tokens are issued by the identity gateway;
// the service only validates them.
type JWTConfig struct {
	Secret                string
	Issuer                string
	AccessTokenExpiration time.Duration // used when minting development tokens
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

// HarvestConfig holds reporting core settings
type HarvestConfig struct {
	DailyTargetKgPerHa float64       // per-hectare daily target used by achievement
	QueryTimeout       time.Duration // deadline applied to every request-scoped DB call
	ReportMaxPageSize  int
	ExportBatchSize    int
	ExportMaxRows      int // 0 means unlimited
}

// KPIConfig holds the dashboard thresholds
type KPIConfig struct {
	AchievementMinPct    float64
	ProductivityMinTonHa float64
	BJRMinKg             float64
	BJRMaxKg             float64
	BMTMaxPct            float64
	LossesMaxPct         float64
}

// RetryConfig bounds automatic retries of read-only operations
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Enabled           bool
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
}

// SFTPConfig holds the estate file-drop server settings
type SFTPConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	PrivateKeyPath string
	HostKey        string // authorized_keys formatted public key; empty skips verification in development
	BaseDir        string
	Timeout        time.Duration
}

// ExportConfig holds report export settings
type ExportConfig struct {
	Sink                 string // none, s3, sftp
	ChromeRemoteURL      string // devtools websocket; empty launches a local browser
	ChromePath           string
	RenderTimeout        time.Duration
	MaxConcurrentRenders int
}

// PhotoConfig holds harvest photo processing settings
type PhotoConfig struct {
	MaxWidth    int
	MaxHeight   int
	WebPQuality float32
	MaxBytes    int64
}

// IdempotencyConfig holds duplicate-submission guard settings
type IdempotencyConfig struct {
	Backend string // memory, redis
	TTL     time.Duration
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
	DBSlowQueryThresh time.Duration // Slow query threshold for warnings (default: 200ms)
	// Metrics options
	MetricsEnabled        bool
	MetricsExportInterval time.Duration
	// Logs options: zap output is also shipped to the collector over OTLP
	LogsEnabled bool
	// Continuous profiling options (Pyroscope)
	ProfilingEnabled       bool
	ProfilingServerAddress string   // e.g. "http://pyroscope:4040"
	ProfilingBasicAuthUser string   // Grafana Cloud only
	ProfilingBasicAuthPass string   // Grafana Cloud only
	ProfilingTypes         []string // cpu, alloc_objects, alloc_space, inuse_objects, inuse_space, goroutines
	SpanProfilesEnabled    bool     // label CPU samples with the active span id
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with PENTOL_ prefix (e.g., PENTOL_DATABASE_PASSWORD)
// 2. .env file in the working directory (copied into the process environment)
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("PENTOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := fromViper(v)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Name:     v.GetString("app.name"),
			Env:      v.GetString("app.env"),
			Port:     v.GetString("app.port"),
			Timezone: v.GetString("app.timezone"),
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
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			Issuer:                v.GetString("jwt.issuer"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
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
		Harvest: HarvestConfig{
			DailyTargetKgPerHa: v.GetFloat64("harvest.daily_target_kg_per_ha"),
			QueryTimeout:       v.GetDuration("harvest.query_timeout"),
			ReportMaxPageSize:  v.GetInt("harvest.report_max_page_size"),
			ExportBatchSize:    v.GetInt("harvest.export_batch_size"),
			ExportMaxRows:      v.GetInt("harvest.export_max_rows"),
		},
		KPI: KPIConfig{
			AchievementMinPct:    v.GetFloat64("kpi.achievement_min_pct"),
			ProductivityMinTonHa: v.GetFloat64("kpi.productivity_min_ton_ha"),
			BJRMinKg:             v.GetFloat64("kpi.bjr_min_kg"),
			BJRMaxKg:             v.GetFloat64("kpi.bjr_max_kg"),
			BMTMaxPct:            v.GetFloat64("kpi.bmt_max_pct"),
			LossesMaxPct:         v.GetFloat64("kpi.losses_max_pct"),
		},
		Retry: RetryConfig{
			MaxAttempts:     v.GetInt("retry.max_attempts"),
			InitialInterval: v.GetDuration("retry.initial_interval"),
			MaxInterval:     v.GetDuration("retry.max_interval"),
		},
		Storage: StorageConfig{
			Enabled:           v.GetBool("storage.enabled"),
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
		},
		SFTP: SFTPConfig{
			Host:           v.GetString("sftp.host"),
			Port:           v.GetInt("sftp.port"),
			User:           v.GetString("sftp.user"),
			Password:       v.GetString("sftp.password"),
			PrivateKeyPath: v.GetString("sftp.private_key_path"),
			HostKey:        v.GetString("sftp.host_key"),
			BaseDir:        v.GetString("sftp.base_dir"),
			Timeout:        v.GetDuration("sftp.timeout"),
		},
		Export: ExportConfig{
			Sink:                 v.GetString("export.sink"),
			ChromeRemoteURL:      v.GetString("export.chrome_remote_url"),
			ChromePath:           v.GetString("export.chrome_path"),
			RenderTimeout:        v.GetDuration("export.render_timeout"),
			MaxConcurrentRenders: v.GetInt("export.max_concurrent_renders"),
		},
		Photo: PhotoConfig{
			MaxWidth:    v.GetInt("photo.max_width"),
			MaxHeight:   v.GetInt("photo.max_height"),
			WebPQuality: float32(v.GetFloat64("photo.webp_quality")),
			MaxBytes:    v.GetInt64("photo.max_bytes"),
		},
		Idempotency: IdempotencyConfig{
			Backend: v.GetString("idempotency.backend"),
			TTL:     v.GetDuration("idempotency.ttl"),
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

			MetricsEnabled:        v.GetBool("telemetry.metrics_enabled"),
			MetricsExportInterval: v.GetDuration("telemetry.metrics_export_interval"),

			LogsEnabled: v.GetBool("telemetry.logs_enabled"),

			ProfilingEnabled:       v.GetBool("telemetry.profiling_enabled"),
			ProfilingServerAddress: v.GetString("telemetry.profiling_server_address"),
			ProfilingBasicAuthUser: v.GetString("telemetry.profiling_basic_auth_user"),
			ProfilingBasicAuthPass: v.GetString("telemetry.profiling_basic_auth_password"),
			ProfilingTypes:         v.GetStringSlice("telemetry.profiling_types"),
			SpanProfilesEnabled:    v.GetBool("telemetry.span_profiles_enabled"),
		},
	}
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "pentol-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.Timezone == "" {
		cfg.App.Timezone = "Asia/Jakarta"
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
		cfg.Database.DBName = "pentol"
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
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "pentol-auth"
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 12 * time.Hour
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
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// exports stream large documents
		cfg.HTTP.WriteTimeout = 60 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "Idempotency-Key"}
	}
	if cfg.Harvest.DailyTargetKgPerHa == 0 {
		cfg.Harvest.DailyTargetKgPerHa = 1000
	}
	if cfg.Harvest.QueryTimeout == 0 {
		cfg.Harvest.QueryTimeout = 10 * time.Second
	}
	if cfg.Harvest.ReportMaxPageSize == 0 {
		cfg.Harvest.ReportMaxPageSize = 500
	}
	if cfg.Harvest.ExportBatchSize == 0 {
		cfg.Harvest.ExportBatchSize = 500
	}
	if cfg.KPI.AchievementMinPct == 0 {
		cfg.KPI.AchievementMinPct = 95
	}
	if cfg.KPI.ProductivityMinTonHa == 0 {
		cfg.KPI.ProductivityMinTonHa = 22
	}
	if cfg.KPI.BJRMinKg == 0 {
		cfg.KPI.BJRMinKg = 15
	}
	if cfg.KPI.BJRMaxKg == 0 {
		cfg.KPI.BJRMaxKg = 20
	}
	if cfg.KPI.BMTMaxPct == 0 {
		cfg.KPI.BMTMaxPct = 2
	}
	if cfg.KPI.LossesMaxPct == 0 {
		cfg.KPI.LossesMaxPct = 1
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.InitialInterval == 0 {
		cfg.Retry.InitialInterval = 100 * time.Millisecond
	}
	if cfg.Retry.MaxInterval == 0 {
		cfg.Retry.MaxInterval = 2 * time.Second
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}
	if cfg.SFTP.Port == 0 {
		cfg.SFTP.Port = 22
	}
	if cfg.SFTP.BaseDir == "" {
		cfg.SFTP.BaseDir = "/laporan"
	}
	if cfg.SFTP.Timeout == 0 {
		cfg.SFTP.Timeout = 15 * time.Second
	}
	if cfg.Export.Sink == "" {
		cfg.Export.Sink = "none"
	}
	if cfg.Export.RenderTimeout == 0 {
		cfg.Export.RenderTimeout = 60 * time.Second
	}
	if cfg.Export.MaxConcurrentRenders == 0 {
		cfg.Export.MaxConcurrentRenders = 2
	}
	if cfg.Photo.MaxWidth == 0 {
		cfg.Photo.MaxWidth = 1280
	}
	if cfg.Photo.MaxHeight == 0 {
		cfg.Photo.MaxHeight = 1280
	}
	if cfg.Photo.WebPQuality == 0 {
		cfg.Photo.WebPQuality = 80
	}
	if cfg.Photo.MaxBytes == 0 {
		cfg.Photo.MaxBytes = 8 << 20
	}
	if cfg.Idempotency.Backend == "" {
		cfg.Idempotency.Backend = "memory"
	}
	if cfg.Idempotency.TTL == 0 {
		cfg.Idempotency.TTL = 24 * time.Hour
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "pentol-backend"
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Telemetry.MetricsExportInterval == 0 {
		cfg.Telemetry.MetricsExportInterval = 60 * time.Second
	}
	if len(cfg.Telemetry.ProfilingTypes) == 0 {
		cfg.Telemetry.ProfilingTypes = []string{"cpu", "alloc_space", "inuse_space", "goroutines"}
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
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

	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("app.timezone %q is not a valid IANA zone: %w", c.App.Timezone, err)
	}

	if c.Harvest.DailyTargetKgPerHa <= 0 {
		return fmt.Errorf("harvest.daily_target_kg_per_ha must be positive")
	}
	if c.Harvest.QueryTimeout < 0 {
		return fmt.Errorf("harvest.query_timeout cannot be negative")
	}
	if c.KPI.BJRMinKg > c.KPI.BJRMaxKg {
		return fmt.Errorf("kpi.bjr_min_kg (%v) cannot exceed kpi.bjr_max_kg (%v)", c.KPI.BJRMinKg, c.KPI.BJRMaxKg)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1")
	}

	switch c.Export.Sink {
	case "none":
	case "s3":
		if !c.Storage.Enabled {
			return fmt.Errorf("export.sink=s3 requires storage.enabled=true")
		}
	case "sftp":
		if c.SFTP.Host == "" || c.SFTP.User == "" {
			return fmt.Errorf("export.sink=sftp requires sftp.host and sftp.user")
		}
		if c.SFTP.Password == "" && c.SFTP.PrivateKeyPath == "" {
			return fmt.Errorf("export.sink=sftp requires sftp.password or sftp.private_key_path")
		}
	default:
		return fmt.Errorf("export.sink must be one of none, s3, sftp, got %q", c.Export.Sink)
	}

	switch c.Idempotency.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("idempotency.backend must be memory or redis, got %q", c.Idempotency.Backend)
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Export.Sink == "sftp" && c.SFTP.HostKey == "" {
			return fmt.Errorf("sftp.host_key is required in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Telemetry.ProfilingEnabled && c.Telemetry.ProfilingServerAddress == "" {
		return fmt.Errorf("telemetry.profiling_server_address is required when profiling is enabled")
	}
	if c.Telemetry.SpanProfilesEnabled && !(c.Telemetry.Enabled && c.Telemetry.ProfilingEnabled) {
		return fmt.Errorf("telemetry.span_profiles_enabled requires telemetry.enabled and telemetry.profiling_enabled")
	}

	return nil
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
