package database

import (
	"fmt"
	"time"

	"gira/internal/config"
	"gira/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	maxAttempts  = 10
	retryBackoff = 2 * time.Second
)

// Open подключается к БД с несколькими попытками (postgres в docker
// поднимается не сразу) и прогоняет миграции.
func Open(cfg *config.Config, log logrus.FieldLogger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	for i := 1; i <= maxAttempts; i++ {
		log.Infof("trying to connect to DB (attempt %d/%d)...", i, maxAttempts)

		db, err = gorm.Open(dialector(cfg), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			log.Info("connected to DB successfully")
			break
		}

		log.WithError(err).Warn("failed to connect to DB")
		time.Sleep(retryBackoff)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to db after %d attempts: %w", maxAttempts, err)
	}

	if cfg.DBDriver == config.DriverSQLite {
		// sqlite не любит конкурентную запись
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func dialector(cfg *config.Config) gorm.Dialector {
	if cfg.DBDriver == config.DriverSQLite {
		return sqlite.Open(cfg.DBDSN)
	}
	return postgres.Open(cfg.DBDSN)
}

// Migrate создаёт/обновляет схему.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Sprint{},
		&models.Story{},
		&models.AuditLog{},
	)
}
