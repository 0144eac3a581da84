package models

import "time"

// ParkingRecord is the record of one physical stay, entry through settlement.
// UserID is nil for walk-ins registered at the gate. ExitTime, DurationMinutes
// and Fee are written exactly once, by the first exit-or-payment calculation.
// IsActive stays true until the space has actually been released.
type ParkingRecord struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	UserID          *uint         `gorm:"index" json:"user_id,omitempty"`
	LotID           uint          `gorm:"index;not null" json:"lot_id"`
	SpaceNumber     string        `gorm:"not null" json:"space_number"`
	LicensePlate    string        `gorm:"index;not null" json:"license_plate"`
	VehicleType     VehicleType   `gorm:"type:varchar(20);not null;default:'compact'" json:"vehicle_type"`
	EntryTime       time.Time     `gorm:"not null" json:"entry_time"`
	ExitTime        *time.Time    `json:"exit_time,omitempty"`
	DurationMinutes int           `gorm:"not null;default:0" json:"duration_minutes"`
	Fee             float64       `gorm:"not null;default:0" json:"fee"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(20);not null;default:'unpaid'" json:"payment_status"`
	PaymentMethod   PaymentMethod `gorm:"type:varchar(20)" json:"payment_method,omitempty"`
	PaymentTime     *time.Time    `json:"payment_time,omitempty"`
	PaymentID       string        `json:"payment_id,omitempty"`
	IsActive        bool          `gorm:"index;not null;default:true" json:"is_active"`
	ReservationID   *uint         `gorm:"index" json:"reservation_id,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
