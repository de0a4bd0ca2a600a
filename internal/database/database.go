package database

import (
	"zilconnect/config"
	"zilconnect/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
		// Services discriminate duplicate-key failures from other write
		// errors, so driver errors must come back as gorm.ErrDuplicatedKey.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models. The unique and
// composite indexes created here are the authoritative guards for the
// pair/one-claim/one-application invariants.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Business{},
		&models.Connection{},
		&models.Message{},
		&models.Notification{},
		&models.Opportunity{},
		&models.Application{},
		&models.Product{},
		&models.Enrollment{},
		&models.CommissionTransaction{},
		&models.Offer{},
		&models.OfferClaim{},
	)
}
