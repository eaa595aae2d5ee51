package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Theme holds the accent colors handed to the presentation layer. The
// core never interprets them.
type Theme struct {
	Background  string
	GuestAccent string
	HostAccent  string
	Highlight   string
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DataPath       string
	ListenAddr     string
	ReloadInterval string // "@every" duration for the periodic refresh, e.g. "5m"
	DebugLog       bool

	StorageBackend string // "none", "csv", "postgres" or "sqlite"
	CSVPath        string
	SQLitePath     string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	MaxRetries       int

	Theme Theme
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		DataPath:       getEnv("DATA_PATH", "./data/listings.csv"),
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		ReloadInterval: getEnv("RELOAD_INTERVAL", "5m"),
		DebugLog:       getEnvBool("DEBUG_LOG", false),

		StorageBackend: getEnv("STORAGE_BACKEND", "none"),
		CSVPath:        getEnv("CSV_PATH", "./output/listings_clean.csv"),
		SQLitePath:     getEnv("SQLITE_PATH", "./output/listings.sqlite"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "analytics"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "analytics123"),
		PostgresDB:       getEnv("POSTGRES_DB", "rental_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),

		Theme: Theme{
			Background:  getEnv("THEME_BACKGROUND", "#0f172a"),
			GuestAccent: getEnv("THEME_GUEST_ACCENT", "#06b6d4"),
			HostAccent:  getEnv("THEME_HOST_ACCENT", "#f97316"),
			Highlight:   getEnv("THEME_HIGHLIGHT", "#a855f7"),
		},
	}
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

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
