//go:build integration

package integration

import (
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/MidnightMr/parking-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("TEST_DB_HOST", "localhost"),
		getEnv("TEST_DB_PORT", "5434"),
		getEnv("TEST_DB_USER", "postgres"),
		getEnv("TEST_DB_PASSWORD", "postgres"),
		getEnv("TEST_DB_NAME", "parking_test_db"),
	)

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to test database: %v", err)
	}

	// Drop and recreate tables for clean state
	dropTables()

	if err := testDB.AutoMigrate(
		&models.User{},
		&models.LicensePlate{},
		&models.WalletTransaction{},
		&models.ParkingLot{},
		&models.SpecialRate{},
		&models.ParkingSpace{},
		&models.Reservation{},
		&models.ParkingRecord{},
	); err != nil {
		log.Fatalf("failed to auto-migrate test database: %v", err)
	}

	testDB.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reservation_conflict
		ON reservations (lot_id, space_number, start_time, expiry_time)
		WHERE status IN ('pending', 'confirmed')
	`)

	code := m.Run()

	dropTables()

	os.Exit(code)
}

func dropTables() {
	for _, table := range []string{
		"parking_records", "reservations", "parking_spaces", "special_rates",
		"parking_lots", "wallet_transactions", "license_plates", "users",
	} {
		testDB.Exec("DROP TABLE IF EXISTS " + table)
	}
}

func cleanTables() {
	for _, table := range []string{
		"parking_records", "reservations", "parking_spaces", "special_rates",
		"parking_lots", "wallet_transactions", "license_plates", "users",
	} {
		testDB.Exec("DELETE FROM " + table)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
