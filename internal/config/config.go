package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Exchange ExchangeConfig `mapstructure:"exchange"`
	Gamma    GammaConfig    `mapstructure:"gamma"`
	Trade    TradeConfig    `mapstructure:"trade"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Name string `mapstructure:"name"`
}

type AuthConfig struct {
	// Shared secret the HUD uses to HMAC-sign webhook bodies.
	HUDSecret string `mapstructure:"hud_secret"`
}

type ExchangeConfig struct {
	Host       string `mapstructure:"host"`
	ChainID    int64  `mapstructure:"chain_id"`
	PrivateKey string `mapstructure:"private_key"`
}

type GammaConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	CacheSeconds int    `mapstructure:"cache_seconds"`
	TimeoutMs    int    `mapstructure:"timeout_ms"`
}

type TradeConfig struct {
	DefaultSlippage float64 `mapstructure:"default_slippage"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr         string `mapstructure:"addr"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	AuditListKey string `mapstructure:"audit_list_key"`
	AuditListMax int    `mapstructure:"audit_list_max"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// Environment variables support
	// e.g. HUDGATE_AUTH_HUD_SECRET
	viper.SetEnvPrefix("hudgate")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.name", "hudgate")
	viper.SetDefault("exchange.host", "https://clob.polymarket.com")
	viper.SetDefault("exchange.chain_id", 137)
	viper.SetDefault("gamma.base_url", "https://gamma-api.polymarket.com")
	viper.SetDefault("gamma.cache_seconds", 3)
	viper.SetDefault("gamma.timeout_ms", 10000)
	viper.SetDefault("trade.default_slippage", 0.01)
	viper.SetDefault("redis.audit_list_key", "audit_logs")
	viper.SetDefault("redis.audit_list_max", 10000)
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
	viper.SetDefault("log.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
