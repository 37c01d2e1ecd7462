package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the fully resolved application configuration, one field
// per TOML section.
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Cache      CacheConfig
	Projection ProjectionConfig
	Ingest     IngestConfig
	Storage    StorageConfig
	AI         AIConfig
	Scheduler  SchedulerConfig
	Telemetry  TelemetryConfig
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig identifies the service and where it listens.
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds the Postgres connection and pool settings.
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

// RedisConfig holds the Redis connection settings shared by the rate
// cache and the token blacklist.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds token signing and lifetime settings.
type JWTConfig struct {
	Secret                 string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
}

// HTTPConfig holds server timeouts, body limits, rate limiting and
// CORS settings.
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

// CacheConfig holds rate-cache configuration
type CacheConfig struct {
	Backend string        // memory, redis
	RateTTL time.Duration // how long resolved exchange rates stay cached
}

// ProjectionConfig holds cashflow projection configuration
type ProjectionConfig struct {
	DefaultWindowMonths int // horizon used when no explicit range is given
	MaxWindowMonths     int
}

// IngestConfig holds statement ingestion pipeline configuration
type IngestConfig struct {
	WorkerPoolSize  int           // extraction workers; 1 respects provider rate limits
	ChunkSize       int           // pages per extraction chunk
	ChunkDelay      time.Duration // fixed sleep between chunk submissions
	ProgressBufSize int           // per-job SSE progress channel size
}

// StorageConfig holds document storage (S3) configuration
type StorageConfig struct {
	Backend         string // s3, stub
	Bucket          string
	Region          string
	Endpoint        string // custom endpoint for MinIO-compatible stores
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool
}

// AIConfig holds statement extraction model configuration
type AIConfig struct {
	APIKey      string
	Model       string
	MaxAttempts int
	Timeout     time.Duration
}

// SchedulerConfig holds background job scheduler configuration
type SchedulerConfig struct {
	Enabled             bool
	RefreshCronSchedule string // daily projection refresh
	JobTimeout          time.Duration
	RetryAttempts       int
	RetryDelay          time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // OTEL collector endpoint, e.g. "localhost:4317"
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	Insecure          bool          // non-TLS connection (development only)
	DBTraceEnabled    bool          // database query tracing (otelgorm)
	DBSlowQueryThresh time.Duration // slow query warning threshold
}

// Load resolves the configuration from three layers: CASHFLOW_-prefixed
// environment variables win over config.toml, which wins over the
// built-in defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, env vars and defaults cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("CASHFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App:        loadApp(v),
		Database:   loadDatabase(v),
		Redis:      loadRedis(v),
		JWT:        loadJWT(v),
		Log:        loadLog(v),
		HTTP:       loadHTTP(v),
		Cache:      loadCache(v),
		Projection: loadProjection(v),
		Ingest:     loadIngest(v),
		Storage:    loadStorage(v),
		AI:         loadAI(v),
		Scheduler:  loadScheduler(v),
		Telemetry:  loadTelemetry(v),
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadApp(v *viper.Viper) AppConfig {
	return AppConfig{
		Name: v.GetString("app.name"),
		Env:  v.GetString("app.env"),
		Port: v.GetString("app.port"),
	}
}

func loadDatabase(v *viper.Viper) DatabaseConfig {
	return DatabaseConfig{
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
	}
}

func loadRedis(v *viper.Viper) RedisConfig {
	return RedisConfig{
		Host:     v.GetString("redis.host"),
		Port:     v.GetInt("redis.port"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
}

func loadJWT(v *viper.Viper) JWTConfig {
	return JWTConfig{
		Secret:                 v.GetString("jwt.secret"),
		AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
		RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
		Issuer:                 v.GetString("jwt.issuer"),
	}
}

func loadLog(v *viper.Viper) LogConfig {
	return LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
		Output: v.GetString("log.output"),
	}
}

func loadHTTP(v *viper.Viper) HTTPConfig {
	return HTTPConfig{
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
	}
}

func loadCache(v *viper.Viper) CacheConfig {
	return CacheConfig{
		Backend: v.GetString("cache.backend"),
		RateTTL: v.GetDuration("cache.rate_ttl"),
	}
}

func loadProjection(v *viper.Viper) ProjectionConfig {
	return ProjectionConfig{
		DefaultWindowMonths: v.GetInt("projection.default_window_months"),
		MaxWindowMonths:     v.GetInt("projection.max_window_months"),
	}
}

func loadIngest(v *viper.Viper) IngestConfig {
	return IngestConfig{
		WorkerPoolSize:  v.GetInt("ingest.worker_pool_size"),
		ChunkSize:       v.GetInt("ingest.chunk_size"),
		ChunkDelay:      v.GetDuration("ingest.chunk_delay"),
		ProgressBufSize: v.GetInt("ingest.progress_buf_size"),
	}
}

func loadStorage(v *viper.Viper) StorageConfig {
	return StorageConfig{
		Backend:         v.GetString("storage.backend"),
		Bucket:          v.GetString("storage.bucket"),
		Region:          v.GetString("storage.region"),
		Endpoint:        v.GetString("storage.endpoint"),
		AccessKeyID:     v.GetString("storage.access_key_id"),
		SecretAccessKey: v.GetString("storage.secret_access_key"),
		ForcePathStyle:  v.GetBool("storage.force_path_style"),
	}
}

func loadAI(v *viper.Viper) AIConfig {
	return AIConfig{
		APIKey:      v.GetString("ai.api_key"),
		Model:       v.GetString("ai.model"),
		MaxAttempts: v.GetInt("ai.max_attempts"),
		Timeout:     v.GetDuration("ai.timeout"),
	}
}

func loadScheduler(v *viper.Viper) SchedulerConfig {
	return SchedulerConfig{
		Enabled:             v.GetBool("scheduler.enabled"),
		RefreshCronSchedule: v.GetString("scheduler.refresh_cron_schedule"),
		JobTimeout:          v.GetDuration("scheduler.job_timeout"),
		RetryAttempts:       v.GetInt("scheduler.retry_attempts"),
		RetryDelay:          v.GetDuration("scheduler.retry_delay"),
	}
}

func loadTelemetry(v *viper.Viper) TelemetryConfig {
	return TelemetryConfig{
		Enabled:           v.GetBool("telemetry.enabled"),
		CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
		SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
		ServiceName:       v.GetString("telemetry.service_name"),
		Insecure:          v.GetBool("telemetry.insecure"),
		DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
		DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
	}
}

func orStr(v *string, def string) {
	if *v == "" {
		*v = def
	}
}

func orInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func orDur(v *time.Duration, def time.Duration) {
	if *v == 0 {
		*v = def
	}
}

// applyDefaults fills every zero-valued field. Zero means "not set"
// throughout: an explicit 0 in config.toml falls back to the default.
func applyDefaults(cfg *Config) {
	orStr(&cfg.App.Name, "cashflow-backend")
	orStr(&cfg.App.Env, "development")
	orStr(&cfg.App.Port, "8080")

	orStr(&cfg.Database.Host, "localhost")
	orInt(&cfg.Database.Port, 5432)
	orStr(&cfg.Database.User, "postgres")
	orStr(&cfg.Database.DBName, "cashflow")
	orStr(&cfg.Database.SSLMode, "disable")
	orInt(&cfg.Database.MaxOpenConns, 25)
	orInt(&cfg.Database.MaxIdleConns, 5)
	orInt(&cfg.Database.ConnMaxLifetime, 60)
	orInt(&cfg.Database.ConnMaxIdleTime, 30)

	orStr(&cfg.Redis.Host, "localhost")
	orInt(&cfg.Redis.Port, 6379)

	orDur(&cfg.JWT.AccessTokenExpiration, 15*time.Minute)
	orDur(&cfg.JWT.RefreshTokenExpiration, 168*time.Hour)
	orStr(&cfg.JWT.Issuer, "cashflow-backend")

	orStr(&cfg.Log.Level, "info")
	orStr(&cfg.Log.Format, "console")
	orStr(&cfg.Log.Output, "stdout")

	orDur(&cfg.HTTP.ReadTimeout, 15*time.Second)
	orDur(&cfg.HTTP.WriteTimeout, 15*time.Second)
	orDur(&cfg.HTTP.IdleTimeout, 60*time.Second)
	orInt(&cfg.HTTP.MaxHeaderBytes, 1<<20)
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 25 << 20 // statement PDFs included
	}
	orInt(&cfg.HTTP.RateLimitRequests, 100)
	orDur(&cfg.HTTP.RateLimitWindow, time.Minute)
	// CORS origins deliberately have no fallback: an empty list keeps
	// cross-origin requests off until origins are configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Company-ID"}
	}

	orStr(&cfg.Cache.Backend, "memory")
	orDur(&cfg.Cache.RateTTL, 5*time.Minute)

	orInt(&cfg.Projection.DefaultWindowMonths, 12)
	orInt(&cfg.Projection.MaxWindowMonths, 24)

	orInt(&cfg.Ingest.WorkerPoolSize, 1)
	orInt(&cfg.Ingest.ChunkSize, 5)
	orDur(&cfg.Ingest.ChunkDelay, 2*time.Second)
	orInt(&cfg.Ingest.ProgressBufSize, 64)

	orStr(&cfg.Storage.Backend, "stub")
	orStr(&cfg.Storage.Region, "me-south-1")

	orStr(&cfg.AI.Model, "gemini-2.0-flash")
	orInt(&cfg.AI.MaxAttempts, 3)
	orDur(&cfg.AI.Timeout, 2*time.Minute)

	orStr(&cfg.Scheduler.RefreshCronSchedule, "0 2 * * *")
	orDur(&cfg.Scheduler.JobTimeout, 30*time.Minute)
	orInt(&cfg.Scheduler.RetryAttempts, 3)
	orDur(&cfg.Scheduler.RetryDelay, 5*time.Minute)

	orStr(&cfg.Telemetry.CollectorEndpoint, "localhost:4317")
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	orStr(&cfg.Telemetry.ServiceName, "cashflow-backend")
	orDur(&cfg.Telemetry.DBSlowQueryThresh, 200*time.Millisecond)
}

// validate rejects configurations the server could not run with.
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

	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got %q", c.Cache.Backend)
	}
	switch c.Storage.Backend {
	case "s3", "stub":
	default:
		return fmt.Errorf("storage.backend must be 's3' or 'stub', got %q", c.Storage.Backend)
	}

	if c.Projection.DefaultWindowMonths > c.Projection.MaxWindowMonths {
		return fmt.Errorf("projection.default_window_months (%d) cannot exceed projection.max_window_months (%d)",
			c.Projection.DefaultWindowMonths, c.Projection.MaxWindowMonths)
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.Env == "production" {
		return c.validateProduction()
	}
	return nil
}

// validateProduction enforces the stricter rules for production
// deployments: real secrets, TLS to the database, no stub storage and
// no wildcard CORS.
func (c *Config) validateProduction() error {
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
	if c.Storage.Backend == "stub" {
		return fmt.Errorf("storage.backend cannot be 'stub' in production")
	}
	for _, origin := range c.HTTP.CORSAllowOrigins {
		if origin == "*" {
			return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
		}
	}
	return nil
}

// DSN builds the Postgres connection URL. Credentials are URL-escaped
// so passwords with reserved characters survive the round trip.
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

// Addr formats the Redis host and port for the client constructor.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
