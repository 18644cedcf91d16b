// Package migration applies the embedded goose SQL scripts for the
// configured database driver.
package migration

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/tierworks/sellertiers/internal/shared/logger"
)

//go:embed scripts/mysql/*.sql scripts/sqlite/*.sql
var scripts embed.FS

// goose keeps its dialect and filesystem in package globals
var gooseMu sync.Mutex

type GooseStrategy struct {
	driver string
	logger logger.Interface
}

func NewGooseStrategy(driver string, log logger.Interface) *GooseStrategy {
	return &GooseStrategy{
		driver: driver,
		logger: log.With("component", "migration.goose"),
	}
}

func (s *GooseStrategy) dialect() (string, string, error) {
	switch s.driver {
	case "mysql":
		return "mysql", "scripts/mysql", nil
	case "sqlite":
		return "sqlite3", "scripts/sqlite", nil
	}
	return "", "", fmt.Errorf("unsupported database driver %q", s.driver)
}

// with prepares goose for this strategy's driver and runs fn under the
// package lock.
func (s *GooseStrategy) with(db *gorm.DB, fn func(dir string, sqlDB *sql.DB) error) error {
	dialect, dir, err := s.dialect()
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(scripts)
	goose.SetLogger(&gooseLogger{log: s.logger})
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return fn(dir, sqlDB)
}

func (s *GooseStrategy) Migrate(db *gorm.DB) error {
	return s.with(db, func(dir string, sqlDB *sql.DB) error {
		from, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			return fmt.Errorf("failed to get current version: %w", err)
		}

		if err := goose.Up(sqlDB, dir); err != nil {
			s.logger.Errorw("migration failed", "error", err)
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		to, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			return fmt.Errorf("failed to get final version: %w", err)
		}

		s.logger.Infow("migration completed", "from_version", from, "to_version", to)
		return nil
	})
}

func (s *GooseStrategy) MigrateDown(db *gorm.DB, steps int) error {
	return s.with(db, func(dir string, sqlDB *sql.DB) error {
		for i := 0; i < steps; i++ {
			if err := goose.Down(sqlDB, dir); err != nil {
				s.logger.Errorw("down migration failed", "error", err)
				return fmt.Errorf("failed to run down migration: %w", err)
			}
		}
		return nil
	})
}

func (s *GooseStrategy) GetVersion(db *gorm.DB) (int64, error) {
	var version int64
	err := s.with(db, func(_ string, sqlDB *sql.DB) error {
		v, err := goose.GetDBVersion(sqlDB)
		version = v
		return err
	})
	return version, err
}

func (s *GooseStrategy) Status(db *gorm.DB) error {
	return s.with(db, func(dir string, sqlDB *sql.DB) error {
		return goose.Status(sqlDB, dir)
	})
}

type gooseLogger struct {
	log logger.Interface
}

func (l *gooseLogger) Printf(format string, v ...any) {
	l.log.Infow(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *gooseLogger) Fatalf(format string, v ...any) {
	l.log.Errorw(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
