package models

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationUsed      ReservationStatus = "used"
	ReservationExpired   ReservationStatus = "expired"
	ReservationCancelled ReservationStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentUnpaid    PaymentStatus = "unpaid"
	PaymentPaid      PaymentStatus = "paid"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentCancelled PaymentStatus = "cancelled"
)

type Reservation struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	UserID           uint              `gorm:"index;not null" json:"user_id"`
	LotID            uint              `gorm:"index:idx_res_space;not null" json:"lot_id"`
	SpaceNumber      string            `gorm:"index:idx_res_space;not null" json:"space_number"`
	LicensePlate     string            `gorm:"not null" json:"license_plate"`
	VehicleType      VehicleType       `gorm:"type:varchar(20);not null;default:'compact'" json:"vehicle_type"`
	StartTime        time.Time         `gorm:"not null" json:"start_time"`
	ExpiryTime       time.Time         `gorm:"index;not null" json:"expiry_time"`
	Status           ReservationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Fee              float64           `gorm:"not null" json:"fee"` // fixed at creation, never recomputed
	PaymentStatus    PaymentStatus     `gorm:"type:varchar(20);not null;default:'unpaid'" json:"payment_status"`
	PaymentMethod    PaymentMethod     `gorm:"type:varchar(20)" json:"payment_method,omitempty"`
	PaymentTime      *time.Time        `json:"payment_time,omitempty"`
	PaymentID        string            `json:"payment_id,omitempty"`
	ConfirmationCode string            `gorm:"not null" json:"confirmation_code"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

var validReservationNext = map[ReservationStatus]map[ReservationStatus]bool{
	ReservationPending:   {ReservationConfirmed: true, ReservationCancelled: true, ReservationExpired: true},
	ReservationConfirmed: {ReservationUsed: true, ReservationCancelled: true, ReservationExpired: true},
	ReservationUsed:      {},
	ReservationExpired:   {},
	ReservationCancelled: {},
}

func CanReservationTransition(from, to ReservationStatus) bool {
	return validReservationNext[from][to]
}

func (s ReservationStatus) Terminal() bool {
	return len(validReservationNext[s]) == 0
}

// EffectiveStatus applies lazy expiry: a pending or confirmed reservation past
// its expiry time counts as expired for every decision, even if the persisted
// status has not caught up yet (the sweeper does that).
func (r *Reservation) EffectiveStatus(now time.Time) ReservationStatus {
	if (r.Status == ReservationPending || r.Status == ReservationConfirmed) && now.After(r.ExpiryTime) {
		return ReservationExpired
	}
	return r.Status
}
