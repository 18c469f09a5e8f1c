package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/wordstudy/internal/config"
	"github.com/mrlokans/wordstudy/internal/entities"
	applog "github.com/mrlokans/wordstudy/internal/logger"
)

var defaultActivities = []entities.Activity{
	{Name: "flashcards", URL: "https://wordstudy.local/activities/flashcards"},
	{Name: "typing", URL: "https://wordstudy.local/activities/typing"},
	{Name: "matching", URL: "https://wordstudy.local/activities/matching"},
}

type Database struct {
	DB  *gorm.DB
	log *applog.Logger
}

// NewDatabase opens the configured engine and migrates the schema.
func NewDatabase(cfg config.Database, sqlLevel string, log *applog.Logger) (*Database, error) {
	log = applog.OrNop(log).With("component", "database")

	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(sqlLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)
	}

	if err := Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info("database initialized", "driver", driverName(cfg.Driver), "path", cfg.Path)

	return &Database{DB: db, log: log}, nil
}

// Migrate creates or updates every table of the learning-record schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(entities.StudyModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SeedActivities creates the default activities that do not exist yet and
// returns how many were added.
func (d *Database) SeedActivities() (int, error) {
	created := 0
	for _, activity := range defaultActivities {
		var existing entities.Activity
		result := d.DB.Where("name = ?", activity.Name).Limit(1).Find(&existing)
		if result.Error != nil {
			return created, fmt.Errorf("failed to look up activity %s: %w", activity.Name, result.Error)
		}
		if result.RowsAffected > 0 {
			continue
		}
		if err := d.DB.Create(&activity).Error; err != nil {
			return created, fmt.Errorf("failed to create activity %s: %w", activity.Name, err)
		}
		d.log.Info("created activity", "name", activity.Name)
		created++
	}
	return created, nil
}

func openDialector(cfg config.Database) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("database path is not set")
		}
		return sqlite.Open(SQLiteDSN(cfg.Path, cfg.BusyTimeout)), nil
	case config.DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("database DSN is required for the postgres driver")
		}
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// SQLiteDSN enables foreign keys (cascading deletes rely on them), sets the
// busy timeout and makes write transactions take the lock up front.
func SQLiteDSN(path string, busyTimeout time.Duration) string {
	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_foreign_keys=1&_busy_timeout=%d&_txlock=immediate", path, sep, busyTimeout.Milliseconds())
}

func newGormLogger(level string) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogLevel(level),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func driverName(d config.Driver) string {
	if d == "" {
		return string(config.DriverSQLite)
	}
	return string(d)
}
