package api

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"imagehost/models"
)

// openDatabase 依照設定的 driver 建立資料庫連線
func openDatabase(config DBConfig) (*gorm.DB, error) {
	const op = "openDatabase"
	gormConfig := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}

	var dialector gorm.Dialector
	switch config.Driver {
	case DBDriverPostgres, "":
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", config.User, config.Password, config.Host, config.Port, config.Database)
		if config.Schema != "" {
			dsn += "&search_path=" + config.Schema
			gormConfig.NamingStrategy = schema.NamingStrategy{
				TablePrefix: config.Schema + ".",
			}
		}
		dialector = postgres.Open(dsn)
	case DBDriverSQLite:
		dialector = sqlite.Open(config.Database)
	default:
		return nil, fmt.Errorf("[%s] Unsupported database driver: %s", op, config.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to connect to database, err=%w", op, err)
	}
	if config.AutoMigrate {
		if err := db.AutoMigrate(&models.Image{}); err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				sqlDB.Close()
			}
			return nil, fmt.Errorf("[%s] Fail to migrate database, err=%w", op, err)
		}
	}
	return db, nil
}
