package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"Gin_postgres_redis_rental_kiosk/config"
	"Gin_postgres_redis_rental_kiosk/logging"
	"Gin_postgres_redis_rental_kiosk/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// ConnectDB opens the configured store and brings the schema up to date.
func ConnectDB(cfg config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:         logging.NewGormLogger(log, cfg.SlowThreshold),
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		db, err = gorm.Open(sqlite.Open(cfg.Path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"), gcfg)
	case "postgres", "postgresql", "":
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gcfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := TunePool(db, cfg); err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("database connected", "driver", db.Dialector.Name())
	return db, nil
}

func TunePool(db *gorm.DB, cfg config.DatabaseConfig) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("pool: %w", err)
	}
	if db.Dialector.Name() == "sqlite" {
		// SQLite only supports 1 writer
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		return nil
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Item{}, &models.Rental{}, &models.WaitingEntry{}); err != nil {
		return err
	}

	// 同一物品最多一条“未归还”
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_open_per_item
	  ON %s (item_id)
	  WHERE is_returned = FALSE;
	`, models.RentalTable, models.RentalTable)).Error; err != nil {
		return err
	}

	// 每日上限统计
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_user_item_date
	  ON %s (user_id, item_id, rental_date);
	`, models.RentalTable, models.RentalTable)).Error; err != nil {
		return err
	}

	// 队列按 FIFO 读取
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_item_fifo
	  ON %s (item_id, request_date, id);
	`, models.WaitingTable, models.WaitingTable)).Error; err != nil {
		return err
	}

	return nil
}

// OpenForTesting returns a private, migrated in-memory SQLite database.
func OpenForTesting() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger.Discard, TranslateError: true})
	if err != nil {
		return nil, err
	}
	if err := TunePool(db, config.DatabaseConfig{}); err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
