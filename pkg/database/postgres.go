package database

import (
	"log"

	"github.com/MidnightMr/parking-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.LicensePlate{},
		&models.WalletTransaction{},
		&models.ParkingLot{},
		&models.SpecialRate{},
		&models.ParkingSpace{},
		&models.Reservation{},
		&models.ParkingRecord{},
	); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// Covers the conflict scan (space + live statuses + window) and the
	// sweeper's expiry lookup.
	db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reservation_conflict
		ON reservations (lot_id, space_number, start_time, expiry_time)
		WHERE status IN ('pending', 'confirmed')
	`)
	db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reservation_expiry
		ON reservations (expiry_time)
		WHERE status IN ('pending', 'confirmed')
	`)
	db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_record_unsettled
		ON parking_records (exit_time)
		WHERE is_active AND exit_time IS NOT NULL
	`)

	return db
}
