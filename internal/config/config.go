package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	Database DatabaseConfig
	Pokemon  PokemonConfig
	Redis    RedisConfig

	RabbitMQURL    string
	BcryptCost     int
	MetricsEnabled bool
}

// DatabaseConfig selects and locates the user store.
type DatabaseConfig struct {
	Driver      string // "postgres" or "sqlite"
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	SQLitePath  string
	AutoMigrate bool
}

// DSN returns the postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

// URL returns the postgres URL form used by the migration runner.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// PokemonConfig configures the pokemon lookup client.
type PokemonConfig struct {
	APIURL        string
	Timeout       time.Duration
	CacheTTL      time.Duration
	CacheBackend  string // "memory" or "redis"
	StrictLookups bool
}

// RedisConfig locates the shared lookup cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Production reports whether the service runs in production mode.
func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "pokeusers")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "pokeusers.db")
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("POKEMON_API_URL", "https://pokeapi.co/api/v2")
	v.SetDefault("POKEMON_API_TIMEOUT", "5s")
	v.SetDefault("POKEMON_CACHE_TTL", "10m")
	v.SetDefault("POKEMON_CACHE_BACKEND", "memory")
	v.SetDefault("STRICT_POKEMON_LOOKUPS", false)

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("METRICS_ENABLED", true)
}

// Load reads configuration from the environment, after loading envFiles
// (missing files are ignored).
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:  v.GetString("APP_PORT"),
		AppEnv:   v.GetString("APP_ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),
		Database: DatabaseConfig{
			Driver:      v.GetString("DB_DRIVER"),
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetInt("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			Name:        v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			SQLitePath:  v.GetString("SQLITE_PATH"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Pokemon: PokemonConfig{
			APIURL:        v.GetString("POKEMON_API_URL"),
			Timeout:       v.GetDuration("POKEMON_API_TIMEOUT"),
			CacheTTL:      v.GetDuration("POKEMON_CACHE_TTL"),
			CacheBackend:  v.GetString("POKEMON_CACHE_BACKEND"),
			StrictLookups: v.GetBool("STRICT_POKEMON_LOOKUPS"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		BcryptCost:     v.GetInt("BCRYPT_COST"),
		MetricsEnabled: v.GetBool("METRICS_ENABLED"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Pokemon.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported POKEMON_CACHE_BACKEND %q", c.Pokemon.CacheBackend)
	}
	if c.Pokemon.APIURL == "" {
		return fmt.Errorf("POKEMON_API_URL is required")
	}
	if c.Pokemon.CacheTTL <= 0 {
		return fmt.Errorf("POKEMON_CACHE_TTL must be positive")
	}
	return nil
}
