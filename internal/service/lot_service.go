package service

import (
	"context"
	"fmt"

	"github.com/MidnightMr/parking-service/internal/models"
	"github.com/MidnightMr/parking-service/internal/repository"
	"gorm.io/gorm"
)

type CreateLotCommand struct {
	Name         string
	Address      string
	TotalSpaces  int
	HourlyRate   float64
	SpecialRates []models.SpecialRate
	// SpaceNumbers optionally names each space; when empty, numbers are
	// generated as 001..N.
	SpaceNumbers []string
}

// UpdateLotCommand carries partial lot edits; nil fields are left untouched.
// A non-nil SpecialRates replaces the whole rate table for the lot.
type UpdateLotCommand struct {
	Name         *string
	Address      *string
	HourlyRate   *float64
	SpecialRates *[]models.SpecialRate
}

type LotService interface {
	Create(ctx context.Context, actor Actor, cmd CreateLotCommand) (*models.ParkingLot, error)
	Update(ctx context.Context, actor Actor, lotID uint, cmd UpdateLotCommand) (*models.ParkingLot, error)
	UpdateStatus(ctx context.Context, actor Actor, lotID uint, status models.LotStatus) (*models.ParkingLot, error)
	SetSpaceStatus(ctx context.Context, actor Actor, lotID uint, spaceNumber string, status models.SpaceStatus) (*models.ParkingSpace, error)
	Delete(ctx context.Context, actor Actor, lotID uint) error
	Get(ctx context.Context, id uint) (*models.ParkingLot, error)
	List(ctx context.Context, status *models.LotStatus) ([]models.ParkingLot, error)
}

type lotService struct {
	lots     repository.LotRepository
	registry *SpaceRegistry
}

func NewLotService(lots repository.LotRepository, registry *SpaceRegistry) LotService {
	return &lotService{lots: lots, registry: registry}
}

func (s *lotService) Create(ctx context.Context, actor Actor, cmd CreateLotCommand) (*models.ParkingLot, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if cmd.TotalSpaces < 1 {
		return nil, fmt.Errorf("%w: total_spaces must be at least 1", ErrInvalidState)
	}
	if cmd.HourlyRate < 0 {
		return nil, fmt.Errorf("%w: hourly_rate must not be negative", ErrInvalidState)
	}
	if len(cmd.SpaceNumbers) > 0 && len(cmd.SpaceNumbers) != cmd.TotalSpaces {
		return nil, fmt.Errorf("%w: space_numbers must match total_spaces", ErrInvalidState)
	}

	spaces := make([]models.ParkingSpace, cmd.TotalSpaces)
	for i := range spaces {
		number := fmt.Sprintf("%03d", i+1)
		if len(cmd.SpaceNumbers) > 0 {
			number = cmd.SpaceNumbers[i]
		}
		spaces[i] = models.ParkingSpace{
			SpaceNumber: number,
			Type:        models.SpaceTypeStandard,
			Status:      models.SpaceFree,
		}
	}

	lot := &models.ParkingLot{
		Name:            cmd.Name,
		Address:         cmd.Address,
		TotalSpaces:     cmd.TotalSpaces,
		AvailableSpaces: cmd.TotalSpaces,
		HourlyRate:      cmd.HourlyRate,
		Status:          models.LotOpen,
		SpecialRates:    cmd.SpecialRates,
		Spaces:          spaces,
	}
	if err := s.lots.Create(ctx, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

func (s *lotService) Update(ctx context.Context, actor Actor, lotID uint, cmd UpdateLotCommand) (*models.ParkingLot, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if cmd.HourlyRate != nil && *cmd.HourlyRate < 0 {
		return nil, fmt.Errorf("%w: hourly_rate must not be negative", ErrInvalidState)
	}
	if _, err := s.lots.FindByID(ctx, lotID); err != nil {
		return nil, ErrLotNotFound
	}

	fields := map[string]any{}
	if cmd.Name != nil {
		fields["name"] = *cmd.Name
	}
	if cmd.Address != nil {
		fields["address"] = *cmd.Address
	}
	if cmd.HourlyRate != nil {
		fields["hourly_rate"] = *cmd.HourlyRate
	}

	err := s.lots.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lots.UpdateFields(ctx, tx, lotID, fields); err != nil {
			return err
		}
		if cmd.SpecialRates != nil {
			return s.lots.ReplaceSpecialRates(ctx, tx, lotID, *cmd.SpecialRates)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.lots.FindByID(ctx, lotID)
}

func (s *lotService) UpdateStatus(ctx context.Context, actor Actor, lotID uint, status models.LotStatus) (*models.ParkingLot, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	lot, err := s.lots.FindByID(ctx, lotID)
	if err != nil {
		return nil, ErrLotNotFound
	}
	lot.Status = status
	if err := s.lots.Save(ctx, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

func (s *lotService) SetSpaceStatus(ctx context.Context, actor Actor, lotID uint, spaceNumber string, status models.SpaceStatus) (*models.ParkingSpace, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	var result *models.ParkingSpace
	err := s.lots.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		space, err := s.registry.SetStatus(ctx, tx, lotID, spaceNumber, status)
		if err != nil {
			return err
		}
		result = space
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *lotService) Delete(ctx context.Context, actor Actor, lotID uint) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	return s.lots.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.lots.FindByID(ctx, lotID); err != nil {
			return ErrLotNotFound
		}
		occupied, err := s.lots.CountSpacesByStatus(ctx, tx, lotID, models.SpaceOccupied)
		if err != nil {
			return err
		}
		reserved, err := s.lots.CountSpacesByStatus(ctx, tx, lotID, models.SpaceReserved)
		if err != nil {
			return err
		}
		if occupied+reserved > 0 {
			return fmt.Errorf("%w: lot has %d spaces in use", ErrInvalidState, occupied+reserved)
		}
		return s.lots.Delete(ctx, tx, lotID)
	})
}

func (s *lotService) Get(ctx context.Context, id uint) (*models.ParkingLot, error) {
	lot, err := s.lots.FindByID(ctx, id)
	if err != nil {
		return nil, ErrLotNotFound
	}
	return lot, nil
}

func (s *lotService) List(ctx context.Context, status *models.LotStatus) ([]models.ParkingLot, error) {
	return s.lots.FindAll(ctx, status)
}
