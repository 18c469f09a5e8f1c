package config

import (
	"time"

	"github.com/spf13/viper"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"   // Embedded file database (default)
	DriverPostgres Driver = "postgres" // Client-server database, requires DATABASE_DSN
)

type (
	Config struct {
		Database
		Log
		Seed
	}

	Database struct {
		Driver       Driver
		Path         string        // SQLite file path
		DSN          string        // Postgres connection string
		MaxOpenConns int           // Shared pool size for all callers
		BusyTimeout  time.Duration // SQLite wait for a locked database
	}
	Log struct {
		Mode     string // "development" or "production"
		SQLLevel string // gorm logger level: silent, error, warn, info
	}
	Seed struct {
		Activities bool // Seed default activities on migrate
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("database_driver", string(DriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_max_open_conns", DefaultMaxOpenConns)
	v.SetDefault("database_busy_timeout", "5s")
	v.SetDefault("log_mode", "development")
	v.SetDefault("log_sql_level", "warn")
	v.SetDefault("seed_activities", true)

	return &Config{
		Database: Database{
			Driver:       Driver(v.GetString("DATABASE_DRIVER")),
			Path:         v.GetString("DATABASE_PATH"),
			DSN:          v.GetString("DATABASE_DSN"),
			MaxOpenConns: v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			BusyTimeout:  v.GetDuration("DATABASE_BUSY_TIMEOUT"),
		},
		Log: Log{
			Mode:     v.GetString("LOG_MODE"),
			SQLLevel: v.GetString("LOG_SQL_LEVEL"),
		},
		Seed: Seed{
			Activities: v.GetBool("SEED_ACTIVITIES"),
		},
	}
}
