package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DevSeed is the token secret used when SEED is not set. It is refused in production.
const DevSeed = "este-es-el-seed-desarrollo"

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config groups the application configuration (read through Viper from env and an optional file).
type Config struct {
	App      AppConfig
	Token    TokenConfig
	Store    StoreConfig
	RabbitMQ RabbitMQConfig
	Log      LogConfig
	Uploads  UploadsConfig
}

// AppConfig general application settings.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
	Port string
}

// TokenConfig identity token settings.
type TokenConfig struct {
	Seed      string
	Caducidad time.Duration
}

// StoreConfig selects and configures the ResourceStore backend.
type StoreConfig struct {
	Driver        string
	DSN           string // sqlite file / postgres DSN
	MongoURI      string
	MongoDatabase string
}

// RabbitMQConfig domain event publishing. Empty URL disables it.
type RabbitMQConfig struct {
	URL      string
	Exchange string
}

// Enabled reports whether events should be published.
func (c RabbitMQConfig) Enabled() bool { return c.URL != "" }

// LogConfig logger settings.
type LogConfig struct {
	Level string
}

// UploadsConfig where image files are served from.
type UploadsConfig struct {
	Dir string
}

// Load reads the configuration. Environment variables take precedence over
// the optional .env file in the working directory.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // the file is optional

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return FromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "cafe")
	v.SetDefault("APP_PORT", ":3000")
	v.SetDefault("SEED", DevSeed)
	v.SetDefault("CADUCIDAD_TOKEN", "48h")
	v.SetDefault("STORE_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "cafe.db")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "cafe")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "cafe.events")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("UPLOADS_DIR", "uploads")
}

// FromViper builds and validates a Config from an already populated Viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:  v.GetString("APP_ENV"),
			Name: v.GetString("APP_NAME"),
			Port: v.GetString("APP_PORT"),
		},
		Token: TokenConfig{
			Seed:      v.GetString("SEED"),
			Caducidad: v.GetDuration("CADUCIDAD_TOKEN"),
		},
		Store: StoreConfig{
			Driver:        strings.ToLower(v.GetString("STORE_DRIVER")),
			DSN:           v.GetString("DATABASE_DSN"),
			MongoURI:      v.GetString("MONGO_URI"),
			MongoDatabase: v.GetString("MONGO_DATABASE"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
		},
		Log:     LogConfig{Level: v.GetString("LOG_LEVEL")},
		Uploads: UploadsConfig{Dir: v.GetString("UPLOADS_DIR")},
	}

	if !strings.Contains(cfg.App.Port, ":") {
		cfg.App.Port = ":" + cfg.App.Port
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Token.Seed == "" {
		return errors.New("config: SEED must not be empty")
	}
	if c.App.Env == "production" && c.Token.Seed == DevSeed {
		return errors.New("config: SEED must be set explicitly in production")
	}
	if c.Token.Caducidad <= 0 {
		return fmt.Errorf("config: CADUCIDAD_TOKEN must be positive, got %s", c.Token.Caducidad)
	}
	switch c.Store.Driver {
	case DriverSQLite, DriverPostgres, DriverMongo:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.Store.Driver)
	}
	return nil
}
