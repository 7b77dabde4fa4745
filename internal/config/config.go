package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Redis    *RedisConfig    `mapstructure:"redis"`
	Shop     *ShopConfig     `mapstructure:"shop"`
	Admin    *AdminConfig    `mapstructure:"admin"`
	Metrics  *MetricsConfig  `mapstructure:"metrics"`
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	JWTTTL             time.Duration `mapstructure:"jwt_ttl"`
	LoginRatePerMinute int           `mapstructure:"login_rate_per_minute"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"db_name"`
	SSLMode      string `mapstructure:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig is optional. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// ShopConfig is printed on receipts and drives token numbering and the
// exchange weight deduction.
type ShopConfig struct {
	Name              string `mapstructure:"name"`
	Address           string `mapstructure:"address"`
	Phone             string `mapstructure:"phone"`
	Timezone          string `mapstructure:"timezone"`
	TokenStart        string `mapstructure:"token_start"`
	ExchangeDeduction string `mapstructure:"exchange_deduction"`
}

func (c *ShopConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}

	return loc
}

func (c *ShopConfig) Deduction() decimal.Decimal {
	d, err := decimal.NewFromString(c.ExchangeDeduction)
	if err != nil {
		return decimal.RequireFromString(defaultExchangeDeduction)
	}

	return d
}

type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

const defaultExchangeDeduction = "0.010"

// Load reads the YAML file at path. Every key can be overridden from the
// environment, e.g. API_PORT or POSTGRES_HOST.
func Load(path string) (*AppConfig, error) {
	_, conf, err := load(path)

	return conf, err
}

// Watch reloads the file at path on every write and hands the new config to
// onChange. Reload errors keep the previous config.
func Watch(path string, onChange func(*AppConfig), onError func(error)) error {
	v, _, err := load(path)
	if err != nil {
		return err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		conf, err := unmarshal(v)
		if err != nil {
			onError(fmt.Errorf("reload %s -> %w", e.Name, err))
			return
		}
		onChange(conf)
	})
	v.WatchConfig()

	return nil
}

func load(path string) (*viper.Viper, *AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf, err := unmarshal(v)
	if err != nil {
		return nil, nil, err
	}

	return v, conf, nil
}

func unmarshal(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.jwt_ttl", 12*time.Hour)
	v.SetDefault("api.login_rate_per_minute", 10)
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("redis.ttl", 10*time.Minute)
	v.SetDefault("shop.timezone", "Asia/Kolkata")
	v.SetDefault("shop.token_start", "A0001")
	v.SetDefault("shop.exchange_deduction", defaultExchangeDeduction)
	v.SetDefault("metrics.enabled", true)
}

func (c *AppConfig) validate() error {
	if c.API == nil || c.API.JWTSigningKey == "" {
		return fmt.Errorf("api.jwt_signing_key is required")
	}
	if c.Shop == nil {
		return fmt.Errorf("shop section is required")
	}
	if _, err := decimal.NewFromString(c.Shop.ExchangeDeduction); err != nil {
		return fmt.Errorf("shop.exchange_deduction %q is not a number", c.Shop.ExchangeDeduction)
	}

	return nil
}
