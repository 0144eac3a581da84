package dto

import (
	"time"

	"github.com/MidnightMr/parking-service/internal/models"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Password *string `json:"password,omitempty"`
}

type UpdateUserRequest struct {
	Name  *string      `json:"name,omitempty"`
	Phone *string      `json:"phone,omitempty"`
	Role  *models.Role `json:"role,omitempty"`
}

type AddPlateRequest struct {
	PlateNumber string             `json:"plate_number"`
	VehicleType models.VehicleType `json:"vehicle_type"`
	IsDefault   bool               `json:"is_default"`
}

type TopUpRequest struct {
	Amount float64              `json:"amount"`
	Method models.PaymentMethod `json:"method"`
}

type CreateLotRequest struct {
	Name         string              `json:"name"`
	Address      string              `json:"address"`
	TotalSpaces  int                 `json:"total_spaces"`
	HourlyRate   float64             `json:"hourly_rate"`
	SpecialRates []SpecialRateInput  `json:"special_rates,omitempty"`
	SpaceNumbers []string            `json:"space_numbers,omitempty"`
}

type SpecialRateInput struct {
	VehicleType models.VehicleType `json:"vehicle_type"`
	HourlyRate  float64            `json:"hourly_rate"`
	Description string             `json:"description,omitempty"`
}

type UpdateLotRequest struct {
	Name         *string             `json:"name,omitempty"`
	Address      *string             `json:"address,omitempty"`
	HourlyRate   *float64            `json:"hourly_rate,omitempty"`
	SpecialRates *[]SpecialRateInput `json:"special_rates,omitempty"`
}

type UpdateLotStatusRequest struct {
	Status models.LotStatus `json:"status"`
}

type SetSpaceStatusRequest struct {
	Status models.SpaceStatus `json:"status"`
}

type CreateReservationRequest struct {
	LotID        uint               `json:"lot_id"`
	SpaceNumber  string             `json:"space_number"`
	LicensePlate string             `json:"license_plate"`
	VehicleType  models.VehicleType `json:"vehicle_type"`
	StartTime    time.Time          `json:"start_time"`
	ExpiryTime   time.Time          `json:"expiry_time"`
}

type PayRequest struct {
	Method models.PaymentMethod `json:"method"`
}

type EntryRequest struct {
	LotID         uint               `json:"lot_id"`
	SpaceNumber   string             `json:"space_number"`
	LicensePlate  string             `json:"license_plate"`
	VehicleType   models.VehicleType `json:"vehicle_type"`
	ReservationID *uint              `json:"reservation_id,omitempty"`
	UserID        *uint              `json:"user_id,omitempty"`
}
