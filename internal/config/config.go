package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	Environment string `toml:"-"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresUser   string `toml:"postgres_user"`
	PostgresDBName string `toml:"postgres_db_name"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// sessions
	SecureCookies               bool `toml:"secure_cookies"`
	LoginRateLimitAllowedPerMin int  `toml:"login_rate_limit_allowed_per_min"`

	// reverse proxies (ips or cidrs) trusted to set X-Real-Ip and X-Forwarded-For,
	// headers from any other peer are ignored
	TrustedProxies []string `toml:"trusted_proxies"`
}

// PostgresConnString builds the connection string from the config parts,
// databaseURL (from the environment) takes precedence when set
func (c *Config) PostgresConnString(databaseURL string) string {
	if databaseURL != "" {
		return databaseURL
	}

	user := c.PostgresUser
	if user == "" {
		user = "postgres"
	}
	connURL := url.URL{
		Scheme: "postgres",
		User:   url.User(user),
		Host:   c.PostgresHost + ":" + c.PostgresPort,
		Path:   c.PostgresDBName,
	}
	return connURL.String()
}

type Toml struct {
	Development *Config `toml:"development"`
	Production  *Config `toml:"production"`
	DockerDev   *Config `toml:"dockerdev"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	case "ddev", "dockerdev":
		cfg = t.DockerDev
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}

	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] missing", env)
	}
	cfg.Environment = strings.ToLower(env)

	return cfg, nil
}

func Load(env, configPath string) (*Config, error) {
	var tomlConfig Toml
	if _, err := toml.DecodeFile(configPath, &tomlConfig); err != nil {
		return nil, fmt.Errorf("decode toml config [%s]: %w", configPath, err)
	}
	return tomlConfig.Get(env)
}
