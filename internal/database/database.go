package database

import (
	"errors"
	"fmt"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskmanager/internal/config"
	"taskmanager/internal/model"
)

var ErrUnsupportedDriver = errors.New("unsupported database url")

// Open connects to the database named by cfg.DatabaseURL, configures the
// connection pool and, when enabled, creates the schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, memory, err := Dialector(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Silent
	if cfg.DBDebug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if memory {
		// every new connection to :memory: would see an empty database
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	}

	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	return db, nil
}

// Migrate creates or updates the tasks table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Task{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// Dialector picks the GORM driver from the URL scheme. The second result
// reports an in-memory SQLite database.
func Dialector(url string) (gorm.Dialector, bool, error) {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", ErrUnsupportedDriver, url)
	}

	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return postgres.Open(url), false, nil
	case "mysql":
		dsnCfg, err := mysqldriver.ParseDSN(rest)
		if err != nil {
			return nil, false, fmt.Errorf("invalid mysql dsn: %w", err)
		}
		dsnCfg.ParseTime = true
		return mysql.Open(dsnCfg.FormatDSN()), false, nil
	case "sqlite", "sqlite3":
		// sqlite:///abs/path.db keeps the leading slash of the absolute path
		path := rest
		if path == "" {
			return nil, false, fmt.Errorf("%w: %q has no path", ErrUnsupportedDriver, url)
		}
		memory := path == ":memory:" || strings.Contains(path, "mode=memory")
		return sqlite.Open(path), memory, nil
	default:
		return nil, false, fmt.Errorf("%w: %q", ErrUnsupportedDriver, url)
	}
}
