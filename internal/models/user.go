package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Username      string         `gorm:"uniqueIndex;not null" json:"username"`
	Password      string         `gorm:"not null" json:"-"`
	Name          string         `gorm:"not null" json:"name"`
	Phone         string         `gorm:"uniqueIndex" json:"phone"`
	Role          Role           `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	WalletBalance float64        `gorm:"not null;default:0" json:"wallet_balance"`
	LicensePlates []LicensePlate `gorm:"foreignKey:UserID" json:"license_plates,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type LicensePlate struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      uint        `gorm:"index;not null" json:"user_id"`
	PlateNumber string      `gorm:"not null" json:"plate_number"`
	VehicleType VehicleType `gorm:"type:varchar(20);not null;default:'compact'" json:"vehicle_type"`
	IsDefault   bool        `gorm:"not null;default:false" json:"is_default"`
	CreatedAt   time.Time   `json:"created_at"`
}
