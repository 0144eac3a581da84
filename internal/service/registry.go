package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MidnightMr/parking-service/internal/models"
	"github.com/MidnightMr/parking-service/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrLotNotFound      = errors.New("parking lot not found")
	ErrSpaceNotFound    = errors.New("parking space not found")
	ErrSpaceUnavailable = errors.New("parking space unavailable")
)

// SpaceRegistry performs the atomic space transitions. Every method must run
// inside the caller's transaction: it locks the space row, validates the
// transition and updates space status and lot counter together, so no
// intermediate state is ever visible outside the transaction.
type SpaceRegistry struct {
	lots repository.LotRepository
}

func NewSpaceRegistry(lots repository.LotRepository) *SpaceRegistry {
	return &SpaceRegistry{lots: lots}
}

// Reserve moves a free space to reserved.
func (r *SpaceRegistry) Reserve(ctx context.Context, tx *gorm.DB, lotID uint, spaceNumber string) (*models.ParkingSpace, error) {
	return r.transition(ctx, tx, lotID, spaceNumber, models.SpaceReserved)
}

// Occupy moves a free or reserved space to occupied.
func (r *SpaceRegistry) Occupy(ctx context.Context, tx *gorm.DB, lotID uint, spaceNumber string) (*models.ParkingSpace, error) {
	return r.transition(ctx, tx, lotID, spaceNumber, models.SpaceOccupied)
}

// OccupyFrom occupies a space only if it currently has the given status.
// Walk-in entries use it with free, so they cannot take over a space a
// reservation is holding.
func (r *SpaceRegistry) OccupyFrom(ctx context.Context, tx *gorm.DB, lotID uint, spaceNumber string, from models.SpaceStatus) (*models.ParkingSpace, error) {
	space, err := r.lots.FindSpaceForUpdate(ctx, tx, lotID, spaceNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpaceNotFound
		}
		return nil, err
	}
	if space.Status != from {
		return nil, fmt.Errorf("%w: space %s is %s", ErrSpaceUnavailable, spaceNumber, space.Status)
	}
	if !models.CanSpaceTransition(space.Status, models.SpaceOccupied) {
		return nil, fmt.Errorf("%w: space %s is %s", ErrSpaceUnavailable, spaceNumber, space.Status)
	}
	return r.apply(ctx, tx, space, models.SpaceOccupied)
}

// Release returns an occupied or reserved space to free.
func (r *SpaceRegistry) Release(ctx context.Context, tx *gorm.DB, lotID uint, spaceNumber string) (*models.ParkingSpace, error) {
	return r.transition(ctx, tx, lotID, spaceNumber, models.SpaceFree)
}

// ReleaseFrom frees a space only if it currently has the given status. The
// sweeper uses it so that expiring a reservation cannot free a space an active
// session took over in the meantime.
func (r *SpaceRegistry) ReleaseFrom(ctx context.Context, tx *gorm.DB, lotID uint, spaceNumber string, from models.SpaceStatus) (*models.ParkingSpace, error) {
	space, err := r.lots.FindSpaceForUpdate(ctx, tx, lotID, spaceNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpaceNotFound
		}
		return nil, err
	}
	if space.Status != from {
		return nil, fmt.Errorf("%w: space %s is %s", ErrSpaceUnavailable, spaceNumber, space.Status)
	}
	return r.apply(ctx, tx, space, models.SpaceFree)
}

// SetStatus is the admin entry point, used for taking spaces in and out of
// maintenance. Only legal transitions pass; occupied and reserved spaces
// cannot be forced.
func (r *SpaceRegistry) SetStatus(ctx context.Context, tx *gorm.DB, lotID uint, spaceNumber string, to models.SpaceStatus) (*models.ParkingSpace, error) {
	return r.transition(ctx, tx, lotID, spaceNumber, to)
}

func (r *SpaceRegistry) transition(ctx context.Context, tx *gorm.DB, lotID uint, spaceNumber string, to models.SpaceStatus) (*models.ParkingSpace, error) {
	space, err := r.lots.FindSpaceForUpdate(ctx, tx, lotID, spaceNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpaceNotFound
		}
		return nil, err
	}
	if !models.CanSpaceTransition(space.Status, to) {
		return nil, fmt.Errorf("%w: space %s is %s", ErrSpaceUnavailable, spaceNumber, space.Status)
	}
	return r.apply(ctx, tx, space, to)
}

func (r *SpaceRegistry) apply(ctx context.Context, tx *gorm.DB, space *models.ParkingSpace, to models.SpaceStatus) (*models.ParkingSpace, error) {
	if err := r.lots.UpdateSpaceStatus(ctx, tx, space.ID, to); err != nil {
		return nil, err
	}
	// The counter tracks free spaces only, so it moves when a space leaves or
	// re-enters the free state.
	delta := 0
	if space.Status == models.SpaceFree && to != models.SpaceFree {
		delta = -1
	} else if space.Status != models.SpaceFree && to == models.SpaceFree {
		delta = 1
	}
	if delta != 0 {
		if err := r.lots.AdjustAvailable(ctx, tx, space.LotID, delta); err != nil {
			return nil, err
		}
	}
	space.Status = to
	return space, nil
}
