package dto

import (
	"time"

	"github.com/MidnightMr/parking-service/internal/models"
)

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID            uint                  `json:"id"`
	Username      string                `json:"username"`
	Name          string                `json:"name"`
	Phone         string                `json:"phone"`
	Role          models.Role           `json:"role"`
	WalletBalance float64               `json:"wallet_balance"`
	LicensePlates []models.LicensePlate `json:"license_plates,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

type WalletResponse struct {
	Balance      float64                    `json:"balance"`
	Transactions []models.WalletTransaction `json:"transactions"`
}

type LotResponse struct {
	ID              uint                  `json:"id"`
	Name            string                `json:"name"`
	Address         string                `json:"address"`
	TotalSpaces     int                   `json:"total_spaces"`
	AvailableSpaces int                   `json:"available_spaces"`
	HourlyRate      float64               `json:"hourly_rate"`
	Status          models.LotStatus      `json:"status"`
	SpecialRates    []models.SpecialRate  `json:"special_rates,omitempty"`
	Spaces          []models.ParkingSpace `json:"spaces,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Name:          u.Name,
		Phone:         u.Phone,
		Role:          u.Role,
		WalletBalance: u.WalletBalance,
		LicensePlates: u.LicensePlates,
		CreatedAt:     u.CreatedAt,
	}
}

func ToLotResponse(l *models.ParkingLot) LotResponse {
	return LotResponse{
		ID:              l.ID,
		Name:            l.Name,
		Address:         l.Address,
		TotalSpaces:     l.TotalSpaces,
		AvailableSpaces: l.AvailableSpaces,
		HourlyRate:      l.HourlyRate,
		Status:          l.Status,
		SpecialRates:    l.SpecialRates,
		Spaces:          l.Spaces,
	}
}
