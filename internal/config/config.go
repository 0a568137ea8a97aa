package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/2beens/portfolio/pkg"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	CredentialsSourceStore = "store"
	CredentialsSourceEnv   = "env"

	DefaultSessionTTL = 7 * 24 * time.Hour
)

// Config holds the non-secret settings of one environment.
// Secrets (session secret, admin password hash, db/redis passwords) come from the environment.
type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`
	RunMigrations  bool   `toml:"run_migrations"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// prometheus
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// auth
	LoginRateLimitAllowedPerMin int      `toml:"login_rate_limit_allowed_per_min"`
	SessionTTL                  Duration `toml:"session_ttl"`
	CredentialsSource           string   `toml:"credentials_source"`

	// http
	AllowedOrigins []string `toml:"allowed_origins"`
	AdminUIDir     string   `toml:"admin_ui_dir"`
	// reverse proxies (addresses or CIDR ranges) allowed to set X-Real-Ip / X-Forwarded-For
	TrustedProxies []string `toml:"trusted_proxies"`

	// public content cache
	ContentCacheSizeMB int      `toml:"content_cache_size_mb"`
	ContentCacheTTL    Duration `toml:"content_cache_ttl"`

	trustedProxyNetworks pkg.TrustedProxies
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func (c *Config) TrustedProxyNetworks() pkg.TrustedProxies {
	return c.trustedProxyNetworks
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg, env = t.Development, EnvDevelopment
	case "prod", "production":
		cfg, env = t.Production, EnvProduction
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}

	cfg.Environment = env
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", env, err)
	}

	return cfg, nil
}

// Load reads the TOML file at path and returns the section for env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return t.Get(env)
}

// Parse is like Load, but for config already in memory.
func Parse(env, data string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(data, &t); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return t.Get(env)
}

func (c *Config) setDefaults() {
	if c.SessionTTL.Duration == 0 {
		c.SessionTTL.Duration = DefaultSessionTTL
	}
	if c.CredentialsSource == "" {
		c.CredentialsSource = CredentialsSourceStore
	}
	if c.LoginRateLimitAllowedPerMin == 0 {
		c.LoginRateLimitAllowedPerMin = 5
	}
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}
	if c.ContentCacheSizeMB == 0 {
		c.ContentCacheSizeMB = 2
	}
}

func (c *Config) validate() error {
	switch c.CredentialsSource {
	case CredentialsSourceStore, CredentialsSourceEnv:
	default:
		return fmt.Errorf("unknown credentials source: %s", c.CredentialsSource)
	}
	if c.SessionTTL.Duration < time.Minute {
		return fmt.Errorf("session ttl too short: %s", c.SessionTTL)
	}
	if c.Port <= 0 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	trusted, err := pkg.ParseTrustedProxies(c.TrustedProxies)
	if err != nil {
		return err
	}
	c.trustedProxyNetworks = trusted

	return nil
}

// Duration lets TOML carry values like "168h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
