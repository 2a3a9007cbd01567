package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	DB       DBConfig       `mapstructure:"db"`
	Store    StoreConfig    `mapstructure:"store"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Cron     CronConfig     `mapstructure:"cron"`
	Outbound OutboundConfig `mapstructure:"outbound"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// StoreConfig selects the document store backend: "postgres" for the
// jsonb-backed store, "memory" for the in-process store in dev mode.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
}

type AuthConfig struct {
	AdminEmail    string        `mapstructure:"admin_email"`
	AdminPassword string        `mapstructure:"admin_password"`
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
}

// CacheConfig fronts the exporter endpoints. Backend "redis" requires
// an address; anything else falls back to the in-process cache.
type CacheConfig struct {
	Backend       string        `mapstructure:"backend"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

type CronConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ExportWarm string `mapstructure:"export_warm"`
}

// OutboundConfig lists the newsletter/waitlist endpoints signups fan
// out to, fire-and-forget.
type OutboundConfig struct {
	MailchimpURL  string        `mapstructure:"mailchimp_url"`
	ConvertKitURL string        `mapstructure:"convertkit_url"`
	SheetsURL     string        `mapstructure:"sheets_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryMax      int           `mapstructure:"retry_max"`
}

type SeedConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("store.backend", "postgres")
	v.SetDefault("auth.admin_email", "")
	v.SetDefault("auth.admin_password", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "12h")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.export_warm", "@every 10m")
	v.SetDefault("outbound.mailchimp_url", "")
	v.SetDefault("outbound.convertkit_url", "")
	v.SetDefault("outbound.sheets_url", "")
	v.SetDefault("outbound.timeout", "10s")
	v.SetDefault("outbound.retry_max", 3)
	v.SetDefault("seed.enabled", false)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
