package database

import (
	"fmt"
	"time"

	"campusreq_backend/internal/config"
	"campusreq_backend/internal/logger"
	"campusreq_backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the pool and verifies it with a ping.
func Connect(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.IsProduction() {
		level = gormlogger.Error
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.Database.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}
	log.Info("database connected")
	return db, nil
}

// AutoMigrate syncs the schema from the models. Development only; deployed
// databases are managed by the versioned migrations.
func AutoMigrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}
	start := time.Now()
	err := db.AutoMigrate(
		&models.Department{},
		&models.User{},
		&models.Vehicle{},
		&models.Venue{},
		&models.Item{},
		&models.SupplyItem{},
		&models.Request{},
		&models.JobRequest{},
		&models.VenueRequest{},
		&models.TransportRequest{},
		&models.ReturnableResourceRequest{},
		&models.SupplyRequest{},
		&models.Notification{},
	)
	logger.DBLog("automigrate", "", time.Since(start), err)
	return err
}
