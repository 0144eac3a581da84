package service

import (
	"math"
	"time"

	"github.com/MidnightMr/parking-service/internal/models"
)

// HoldFeeRate is the share of the hourly rate charged for holding a space
// without parking.
const HoldFeeRate = 0.2

// ParkingFee computes the billed duration and fee for a stay. Duration rounds
// up to whole minutes, billing rounds up to whole hours: entering 09:00 and
// leaving 10:05 bills two hours.
func ParkingFee(entry, exit time.Time, vehicleType models.VehicleType, lot *models.ParkingLot) (durationMinutes int, fee float64) {
	if !exit.After(entry) {
		return 0, 0
	}
	durationMinutes = int(math.Ceil(exit.Sub(entry).Minutes()))
	billedHours := (durationMinutes + 59) / 60
	fee = float64(billedHours) * lot.RateFor(vehicleType)
	return durationMinutes, fee
}

// ReservationFee is the hold fee for a reservation window, fixed once at
// creation: hourly rate x whole hours (rounded up) x HoldFeeRate.
func ReservationFee(start, end time.Time, vehicleType models.VehicleType, lot *models.ParkingLot) float64 {
	if !end.After(start) {
		return 0
	}
	minutes := int(math.Ceil(end.Sub(start).Minutes()))
	hours := (minutes + 59) / 60
	return lot.RateFor(vehicleType) * float64(hours) * HoldFeeRate
}
