package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL       string
	ServerPort        string
	LogLevel          string
	LogFormat         string
	GinMode           string
	DBDebug           bool
	AutoMigrate       bool
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	ShutdownTimeout   time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	cfg := fromEnv()
	cfg.DatabaseURL = getEnv("DATABASE_URL", "sqlite://task_manager.db")
	return cfg
}

// LoadTesting returns the configuration used by test runs: an in-memory
// SQLite database unless TEST_DATABASE_URL says otherwise.
func LoadTesting() *Config {
	cfg := fromEnv()
	cfg.DatabaseURL = getEnv("TEST_DATABASE_URL", "sqlite://:memory:")
	cfg.GinMode = "test"
	cfg.AutoMigrate = true
	return cfg
}

func fromEnv() *Config {
	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		GinMode:           getEnv("GIN_MODE", "release"),
		DBDebug:           getEnvBool("DB_DEBUG", false),
		AutoMigrate:       getEnvBool("AUTO_MIGRATE", true),
		DBMaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		ShutdownTimeout:   getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("⚠️  Invalid boolean for %s=%q, using %t", key, value, defaultVal)
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("⚠️  Invalid integer for %s=%q, using %d", key, value, defaultVal)
		return defaultVal
	}
	return n
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("⚠️  Invalid duration for %s=%q, using %s", key, value, defaultVal)
		return defaultVal
	}
	return d
}
