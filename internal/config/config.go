package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	State     StateConfig     `mapstructure:"state"`
	Turnstile TurnstileConfig `mapstructure:"turnstile"`
	Mail      MailConfig      `mapstructure:"mail"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host                    string            `mapstructure:"host"`
	Port                    int               `mapstructure:"port"`
	Mode                    string            `mapstructure:"mode"`
	ReadTimeout             time.Duration     `mapstructure:"read_timeout"`
	WriteTimeout            time.Duration     `mapstructure:"write_timeout"`
	GracefulShutdownTimeout time.Duration     `mapstructure:"graceful_shutdown_timeout"`
	IPRateLimit             IPRateLimitConfig `mapstructure:"ip_rate_limit"`
}

// IPRateLimitConfig gates the optional in-process per-IP token bucket.
// The submitter-email fixed window is the primary admission control; this
// is a supplementary guard and is off by default.
type IPRateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	DB              string        `mapstructure:"db"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type StateConfig struct {
	Backend string `mapstructure:"backend"` // "redis" | "memory"
}

type TurnstileConfig struct {
	SiteverifyURL string        `mapstructure:"siteverify_url"`
	SecretKey     string        `mapstructure:"secret_key"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type MailConfig struct {
	Provider  string       `mapstructure:"provider"` // "resend" | "smtp" | "disabled"
	FromEmail string       `mapstructure:"from_email"`
	FromName  string       `mapstructure:"from_name"`
	TeamEmail string       `mapstructure:"team_email"`
	Resend    ResendConfig `mapstructure:"resend"`
	SMTP      SMTPConfig   `mapstructure:"smtp"`
}

type ResendConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type SMTPConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	UseSTARTTLS   bool   `mapstructure:"use_starttls"`
	SkipTLSVerify bool   `mapstructure:"skip_tls_verify"`
}

type RateLimitConfig struct {
	Window      time.Duration `mapstructure:"window"`
	MaxRequests int           `mapstructure:"max_requests"`
}

type CORSConfig struct {
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
	AllowedMethods   []string      `mapstructure:"allowed_methods"`
	AllowedHeaders   []string      `mapstructure:"allowed_headers"`
	AllowCredentials bool          `mapstructure:"allow_credentials"`
	MaxAge           time.Duration `mapstructure:"max_age"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // "json" | "console"
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Load reads config.yaml (optional), overlays a .env file if present, then
// environment variables, and returns a validated Config.
func Load(path string) (*Config, error) {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Environment variable override: TURNSTILE_SECRET_KEY -> turnstile.secret_key
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// The yaml file is optional; env vars plus defaults are enough.
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.graceful_shutdown_timeout", "10s")
	v.SetDefault("server.ip_rate_limit.enabled", false)
	v.SetDefault("server.ip_rate_limit.rps", 1.0)
	v.SetDefault("server.ip_rate_limit.burst", 5)

	// Keys with an empty default are registered so AutomaticEnv can fill
	// them when no yaml file is present; viper's Unmarshal only visits
	// known keys.
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.db", "")
	v.SetDefault("database.postgres.user", "")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.sslmode", "disable")
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.max_open_conns", 25)
	v.SetDefault("database.postgres.conn_max_lifetime", "5m")
	v.SetDefault("database.postgres.auto_migrate", true)

	v.SetDefault("database.redis.host", "localhost")
	v.SetDefault("database.redis.port", 6379)
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("database.redis.pool_size", 10)

	v.SetDefault("state.backend", "redis")

	v.SetDefault("turnstile.siteverify_url", "https://challenges.cloudflare.com/turnstile/v0/siteverify")
	v.SetDefault("turnstile.secret_key", "")
	v.SetDefault("turnstile.timeout", "10s")

	v.SetDefault("mail.provider", "resend")
	v.SetDefault("mail.from_email", "")
	v.SetDefault("mail.from_name", "STEM Gharbiya")
	v.SetDefault("mail.team_email", "")
	v.SetDefault("mail.resend.api_key", "")
	v.SetDefault("mail.resend.endpoint", "https://api.resend.com/emails")
	v.SetDefault("mail.resend.timeout", "10s")
	v.SetDefault("mail.smtp.host", "")
	v.SetDefault("mail.smtp.port", 587)
	v.SetDefault("mail.smtp.username", "")
	v.SetDefault("mail.smtp.password", "")
	v.SetDefault("mail.smtp.use_starttls", true)

	v.SetDefault("rate_limit.window", "60s")
	v.SetDefault("rate_limit.max_requests", 1)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Accept"})
	v.SetDefault("cors.max_age", "12h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}

// Validate checks every key the submission pipeline depends on. It runs once
// at startup so a misconfigured deployment fails before accepting traffic
// instead of surfacing as per-request 503s.
func (c *Config) Validate() error {
	var missing []string

	if c.Database.Postgres.DB == "" {
		missing = append(missing, "database.postgres.db")
	}
	if c.Database.Postgres.User == "" {
		missing = append(missing, "database.postgres.user")
	}
	if c.Turnstile.SecretKey == "" {
		missing = append(missing, "turnstile.secret_key")
	}

	switch c.Mail.Provider {
	case "resend":
		if c.Mail.Resend.APIKey == "" {
			missing = append(missing, "mail.resend.api_key")
		}
	case "smtp":
		if c.Mail.SMTP.Host == "" {
			missing = append(missing, "mail.smtp.host")
		}
	case "disabled":
		// Sends become logged no-ops; no credentials needed.
	default:
		return fmt.Errorf("unknown mail provider %q (want resend, smtp or disabled)", c.Mail.Provider)
	}

	if c.Mail.Provider != "disabled" {
		if c.Mail.FromEmail == "" {
			missing = append(missing, "mail.from_email")
		}
		if c.Mail.TeamEmail == "" {
			missing = append(missing, "mail.team_email")
		}
	}

	switch c.State.Backend {
	case "redis", "memory":
	default:
		return fmt.Errorf("unknown state backend %q (want redis or memory)", c.State.Backend)
	}

	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive")
	}
	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("rate_limit.max_requests must be positive")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
