package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreNone     = "none"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	RawCSVPath   string `validate:"required"`
	CleanCSVPath string `validate:"required"`

	StoreDriver      string `validate:"oneof=none postgres sqlite"`
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	SQLitePath       string `validate:"required_if=StoreDriver sqlite"`

	NormalizeWorkers int `validate:"min=1,max=64"`
	MaxRetries       int `validate:"min=1"`
	PreviewRows      int `validate:"min=0"`

	LogLevel string `validate:"oneof=debug info warn error"`
	HTTPAddr string `validate:"required"`
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		RawCSVPath:   getEnv("RAW_CSV_PATH", "./data/propertyfinder.csv"),
		CleanCSVPath: getEnv("CLEAN_CSV_PATH", "./output/cleaned_real_estate_listings.csv"),

		StoreDriver:      getEnv("STORE_DRIVER", StoreNone),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "listings"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "listings123"),
		PostgresDB:       getEnv("POSTGRES_DB", "real_estate"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		SQLitePath:       getEnv("SQLITE_PATH", "./output/listings.db"),

		NormalizeWorkers: getEnvInt("NORMALIZE_WORKERS", 4),
		MaxRetries:       getEnvInt("MAX_RETRIES", 5),
		PreviewRows:      getEnvInt("PREVIEW_ROWS", 10),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
	}
}

// Validate checks the loaded values against the struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// StoreDSN returns the connection string for the configured store driver.
func (c *Config) StoreDSN() string {
	switch c.StoreDriver {
	case StorePostgres:
		return c.DSN()
	case StoreSQLite:
		return c.SQLitePath
	default:
		return ""
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
