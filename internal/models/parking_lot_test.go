package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanSpaceTransition(t *testing.T) {
	assert.True(t, CanSpaceTransition(SpaceFree, SpaceReserved))
	assert.True(t, CanSpaceTransition(SpaceFree, SpaceOccupied))
	assert.True(t, CanSpaceTransition(SpaceFree, SpaceMaintenance))
	assert.True(t, CanSpaceTransition(SpaceReserved, SpaceOccupied))
	assert.True(t, CanSpaceTransition(SpaceReserved, SpaceFree))
	assert.True(t, CanSpaceTransition(SpaceOccupied, SpaceFree))
	assert.True(t, CanSpaceTransition(SpaceMaintenance, SpaceFree))

	// Occupied never moves anywhere but free.
	assert.False(t, CanSpaceTransition(SpaceOccupied, SpaceReserved))
	assert.False(t, CanSpaceTransition(SpaceOccupied, SpaceMaintenance))

	// Maintenance only reopens as free.
	assert.False(t, CanSpaceTransition(SpaceMaintenance, SpaceOccupied))
	assert.False(t, CanSpaceTransition(SpaceMaintenance, SpaceReserved))

	// No-op transitions are rejected.
	assert.False(t, CanSpaceTransition(SpaceFree, SpaceFree))
	assert.False(t, CanSpaceTransition(SpaceOccupied, SpaceOccupied))
}

func TestRateFor(t *testing.T) {
	lot := &ParkingLot{
		HourlyRate: 10,
		SpecialRates: []SpecialRate{
			{VehicleType: VehicleLarge, HourlyRate: 25},
			{VehicleType: VehicleElectric, HourlyRate: 15},
		},
	}

	assert.Equal(t, 25.0, lot.RateFor(VehicleLarge))
	assert.Equal(t, 15.0, lot.RateFor(VehicleElectric))
	assert.Equal(t, 10.0, lot.RateFor(VehicleCompact))
	assert.Equal(t, 10.0, lot.RateFor(VehicleMidsize))
}
