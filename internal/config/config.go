package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Payment  PaymentConfig
}

type ServerConfig struct {
	Port int
	Env  string // "development", "production"
}

type DatabaseConfig struct {
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

// PaymentConfig holds the gateway credentials and endpoints. APIKey is the
// single required secret: without it no payment can be verified.
type PaymentConfig struct {
	APIKey      string
	BaseURL     string
	CallbackURL string
	SuccessURL  string
	Timeout     time.Duration
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("PAYMENT_BASE_URL", "https://api.fitpay.dev/v1")
	viper.SetDefault("PAYMENT_TIMEOUT", "10s")

	timeout, err := time.ParseDuration(viper.GetString("PAYMENT_TIMEOUT"))
	if err != nil {
		timeout = 10 * time.Second
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Database: DatabaseConfig{
			Host:    viper.GetString("DB_HOST"),
			Port:    viper.GetString("DB_PORT"),
			Name:    viper.GetString("DB_NAME"),
			User:    viper.GetString("DB_USER"),
			Pass:    viper.GetString("DB_PASS"),
			Charset: viper.GetString("DB_CHARSET"),
		},
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			Pass: viper.GetString("REDIS_PASS"),
			DB:   viper.GetInt("REDIS_DB"),
		},
		Payment: PaymentConfig{
			APIKey:      viper.GetString("PAYMENT_API_KEY"),
			BaseURL:     viper.GetString("PAYMENT_BASE_URL"),
			CallbackURL: viper.GetString("PAYMENT_CALLBACK_URL"),
			SuccessURL:  viper.GetString("PAYMENT_SUCCESS_URL"),
			Timeout:     timeout,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings once at startup, so a misconfigured
// service refuses to start instead of failing per request.
func (c *Config) Validate() error {
	if c.Payment.APIKey == "" {
		return errors.New("PAYMENT_API_KEY is not set")
	}
	if c.Database.Name == "" {
		return errors.New("DB_NAME is not set")
	}
	return nil
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}
