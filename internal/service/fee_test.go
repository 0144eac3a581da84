package service

import (
	"testing"
	"time"

	"github.com/MidnightMr/parking-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func testLot(rate float64) *models.ParkingLot {
	return &models.ParkingLot{
		ID:         1,
		Name:       "Central",
		HourlyRate: rate,
	}
}

func TestParkingFee_RoundsUpToWholeHours(t *testing.T) {
	lot := testLot(10)
	entry := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	exit := time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC)

	minutes, fee := ParkingFee(entry, exit, models.VehicleCompact, lot)

	assert.Equal(t, 65, minutes)
	assert.Equal(t, 20.0, fee)
}

func TestParkingFee_ExactHourBoundary(t *testing.T) {
	lot := testLot(10)
	entry := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	minutes, fee := ParkingFee(entry, entry.Add(time.Hour), models.VehicleCompact, lot)
	assert.Equal(t, 60, minutes)
	assert.Equal(t, 10.0, fee)

	minutes, fee = ParkingFee(entry, entry.Add(2*time.Hour), models.VehicleCompact, lot)
	assert.Equal(t, 120, minutes)
	assert.Equal(t, 20.0, fee)
}

func TestParkingFee_SubMinuteStayBillsOneHour(t *testing.T) {
	lot := testLot(10)
	entry := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	minutes, fee := ParkingFee(entry, entry.Add(30*time.Second), models.VehicleCompact, lot)

	assert.Equal(t, 1, minutes)
	assert.Equal(t, 10.0, fee)
}

func TestParkingFee_ExitBeforeEntryIsZero(t *testing.T) {
	lot := testLot(10)
	entry := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	minutes, fee := ParkingFee(entry, entry, models.VehicleCompact, lot)
	assert.Equal(t, 0, minutes)
	assert.Equal(t, 0.0, fee)

	minutes, fee = ParkingFee(entry, entry.Add(-time.Minute), models.VehicleCompact, lot)
	assert.Equal(t, 0, minutes)
	assert.Equal(t, 0.0, fee)
}

func TestParkingFee_UsesSpecialRate(t *testing.T) {
	lot := testLot(10)
	lot.SpecialRates = []models.SpecialRate{
		{LotID: 1, VehicleType: models.VehicleLarge, HourlyRate: 25},
	}
	entry := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	exit := entry.Add(90 * time.Minute)

	_, compactFee := ParkingFee(entry, exit, models.VehicleCompact, lot)
	_, largeFee := ParkingFee(entry, exit, models.VehicleLarge, lot)

	assert.Equal(t, 20.0, compactFee)
	assert.Equal(t, 50.0, largeFee)
}

func TestReservationFee_NinetyMinuteWindow(t *testing.T) {
	lot := testLot(10)
	start := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)

	// 90 minutes rounds up to two hours: 10 * 2 * 0.2.
	fee := ReservationFee(start, start.Add(90*time.Minute), models.VehicleCompact, lot)
	assert.Equal(t, 4.0, fee)
}

func TestReservationFee_OneHourWindow(t *testing.T) {
	lot := testLot(10)
	start := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)

	fee := ReservationFee(start, start.Add(time.Hour), models.VehicleCompact, lot)
	assert.Equal(t, 2.0, fee)
}

func TestReservationFee_EmptyWindowIsZero(t *testing.T) {
	lot := testLot(10)
	start := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)

	assert.Equal(t, 0.0, ReservationFee(start, start, models.VehicleCompact, lot))
}
