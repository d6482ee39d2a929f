package db

import (
	"convenios-dashboard/internal/config"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var AppDb *gorm.DB

// dialector picks the gorm driver from the configuration.
func dialector(cfg config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf("host=%v user=%v password=%v dbname=%v port=%v sslmode=disable",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
			cfg.DBPort,
		)
		return postgres.Open(dsn), nil
	case "sqlite", "":
		return sqlite.Open(cfg.SQLitePath), nil
	}
	return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
}

func ConnectDb(cfg config.Config, zl *zap.Logger) error {
	dial, err := dialector(cfg)
	if err != nil {
		return err
	}

	level := logger.Info
	if cfg.Environment == "production" {
		level = logger.Error
	}
	sqlLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      level,
			Colorful:      cfg.Environment != "production",
		},
	)

	db, err := gorm.Open(dial, &gorm.Config{Logger: sqlLogger})
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.DBDriver, err)
	}
	AppDb = db
	zl.Info("database connected", zap.String("driver", cfg.DBDriver))
	return nil
}

func CloseDb(zl *zap.Logger) {
	if AppDb == nil {
		return
	}
	sqlDB, err := AppDb.DB()
	if err == nil {
		err = sqlDB.Close()
	}
	if err != nil {
		zl.Error("failed to close db", zap.Error(err))
		return
	}
	zl.Info("database closed")
}
