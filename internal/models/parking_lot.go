package models

import "time"

type LotStatus string

const (
	LotOpen       LotStatus = "open"
	LotTempClosed LotStatus = "temp_closed"
	LotClosed     LotStatus = "closed"
	LotRenovating LotStatus = "renovating"
)

type VehicleType string

const (
	VehicleCompact  VehicleType = "compact"
	VehicleMidsize  VehicleType = "midsize"
	VehicleLarge    VehicleType = "large"
	VehicleElectric VehicleType = "electric"
)

type SpaceType string

const (
	SpaceTypeStandard   SpaceType = "standard"
	SpaceTypeAccessible SpaceType = "accessible"
	SpaceTypeCharging   SpaceType = "charging"
	SpaceTypeVIP        SpaceType = "vip"
)

type SpaceStatus string

const (
	SpaceFree        SpaceStatus = "free"
	SpaceOccupied    SpaceStatus = "occupied"
	SpaceReserved    SpaceStatus = "reserved"
	SpaceMaintenance SpaceStatus = "maintenance"
)

type ParkingLot struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"not null" json:"name"`
	Address         string         `gorm:"not null" json:"address"`
	TotalSpaces     int            `gorm:"not null" json:"total_spaces"`
	AvailableSpaces int            `gorm:"not null" json:"available_spaces"`
	HourlyRate      float64        `gorm:"not null" json:"hourly_rate"`
	Status          LotStatus      `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	SpecialRates    []SpecialRate  `gorm:"foreignKey:LotID" json:"special_rates,omitempty"`
	Spaces          []ParkingSpace `gorm:"foreignKey:LotID" json:"spaces,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type SpecialRate struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	LotID       uint        `gorm:"index;not null" json:"lot_id"`
	VehicleType VehicleType `gorm:"type:varchar(20);not null" json:"vehicle_type"`
	HourlyRate  float64     `gorm:"not null" json:"hourly_rate"`
	Description string      `json:"description,omitempty"`
}

type ParkingSpace struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	LotID       uint        `gorm:"uniqueIndex:idx_lot_space;not null" json:"lot_id"`
	SpaceNumber string      `gorm:"uniqueIndex:idx_lot_space;not null" json:"space_number"`
	Type        SpaceType   `gorm:"type:varchar(20);not null;default:'standard'" json:"type"`
	Status      SpaceStatus `gorm:"type:varchar(20);not null;default:'free'" json:"status"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

var validSpaceNext = map[SpaceStatus]map[SpaceStatus]bool{
	SpaceFree:        {SpaceReserved: true, SpaceOccupied: true, SpaceMaintenance: true},
	SpaceReserved:    {SpaceOccupied: true, SpaceFree: true},
	SpaceOccupied:    {SpaceFree: true},
	SpaceMaintenance: {SpaceFree: true},
}

func CanSpaceTransition(from, to SpaceStatus) bool {
	return validSpaceNext[from][to]
}

// RateFor returns the lot's hourly rate for a vehicle type, preferring a
// special rate when one is configured.
func (l *ParkingLot) RateFor(vt VehicleType) float64 {
	for _, r := range l.SpecialRates {
		if r.VehicleType == vt {
			return r.HourlyRate
		}
	}
	return l.HourlyRate
}
