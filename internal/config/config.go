package config

import (
	"fmt"
	"strings"

	"github.com/scanpesa/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
	QR       QRConfig       `mapstructure:"qr"`
	Geofence GeofenceConfig `mapstructure:"geofence"`
	Mpesa    MpesaConfig    `mapstructure:"mpesa"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig HTTP server
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig log output
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions converts to logger options
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig connection pool
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig database
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // sqlite / postgres
	DSN    string             `mapstructure:"dsn"`
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// JWTConfig admin token signing
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// RedisConfig cache and rate limit store
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig asynq queue
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig cross origin
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig abuse limits
type SecurityConfig struct {
	LoginRateLimit    RateLimitConfig `mapstructure:"login_rate_limit"`
	FeedbackRateLimit RateLimitConfig `mapstructure:"feedback_rate_limit"`
}

// RateLimitConfig fixed window limit per client ip
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
	BlockSeconds  int `mapstructure:"block_seconds"`
}

// QRConfig batch generation
type QRConfig struct {
	TotalCodes           int    `mapstructure:"total_codes"`
	BatchSize            int    `mapstructure:"batch_size"`
	ImageSize            int    `mapstructure:"image_size"`
	DefaultBaseURL       string `mapstructure:"default_base_url"`
	StatsCacheTTLSeconds int    `mapstructure:"stats_cache_ttl_seconds"`
}

// GeofenceConfig serviceable bounding box
type GeofenceConfig struct {
	North  float64 `mapstructure:"north"`
	South  float64 `mapstructure:"south"`
	East   float64 `mapstructure:"east"`
	West   float64 `mapstructure:"west"`
	Region string  `mapstructure:"region"`
}

// MpesaConfig Safaricom Daraja B2C
type MpesaConfig struct {
	Enabled               bool   `mapstructure:"enabled"`
	Environment           string `mapstructure:"environment"` // sandbox / production
	BaseURL               string `mapstructure:"base_url"`    // overrides environment when set
	ConsumerKey           string `mapstructure:"consumer_key"`
	ConsumerSecret        string `mapstructure:"consumer_secret"`
	InitiatorName         string `mapstructure:"initiator_name"`
	SecurityCredential    string `mapstructure:"security_credential"`
	ShortCode             string `mapstructure:"short_code"`
	CommandID             string `mapstructure:"command_id"`
	CallbackBaseURL       string `mapstructure:"callback_base_url"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds"`
	PaymentTimeoutMinutes int    `mapstructure:"payment_timeout_minutes"`
}

// MetricsConfig prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// envKeyReplacer maps server.port to SERVER_PORT
var envKeyReplacer = strings.NewReplacer(".", "_")

// Load reads .env, config.yml and the environment
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		logger.Infow("dotenv_loaded", "file", ".env")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("./etc")

	setDefaults(viper.GetViper())

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(envKeyReplacer)

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("config unmarshal failed: %w", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/scanpesa.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "sp")
	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.queues", map[string]int{
		"default":  10,
		"critical": 5,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
		"X-Request-ID",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.login_rate_limit.window_seconds", 300)
	v.SetDefault("security.login_rate_limit.max_attempts", 5)
	v.SetDefault("security.login_rate_limit.block_seconds", 900)
	v.SetDefault("security.feedback_rate_limit.window_seconds", 60)
	v.SetDefault("security.feedback_rate_limit.max_attempts", 10)
	v.SetDefault("security.feedback_rate_limit.block_seconds", 300)
	v.SetDefault("qr.total_codes", 1680)
	v.SetDefault("qr.batch_size", 100)
	v.SetDefault("qr.image_size", 300)
	v.SetDefault("qr.default_base_url", "http://localhost:3000")
	v.SetDefault("qr.stats_cache_ttl_seconds", 60)
	v.SetDefault("geofence.north", -1.1864)
	v.SetDefault("geofence.south", -1.4564)
	v.SetDefault("geofence.east", 37.0833)
	v.SetDefault("geofence.west", 36.6667)
	v.SetDefault("geofence.region", "nairobi")
	v.SetDefault("mpesa.enabled", false)
	v.SetDefault("mpesa.environment", "sandbox")
	v.SetDefault("mpesa.base_url", "")
	v.SetDefault("mpesa.consumer_key", "")
	v.SetDefault("mpesa.consumer_secret", "")
	v.SetDefault("mpesa.initiator_name", "")
	v.SetDefault("mpesa.security_credential", "")
	v.SetDefault("mpesa.short_code", "")
	v.SetDefault("mpesa.command_id", "BusinessPayment")
	v.SetDefault("mpesa.callback_base_url", "")
	v.SetDefault("mpesa.request_timeout_seconds", 30)
	v.SetDefault("mpesa.payment_timeout_minutes", 10)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
