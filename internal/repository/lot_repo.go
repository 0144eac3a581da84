package repository

import (
	"context"
	"fmt"

	"github.com/MidnightMr/parking-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrCounterDrift is returned when a guarded counter update would push
// available_spaces outside [0, total_spaces]. It indicates the counter and the
// space statuses have diverged; the sweeper's drift check repairs it.
var ErrCounterDrift = fmt.Errorf("available_spaces counter out of range")

type LotRepository interface {
	Create(ctx context.Context, lot *models.ParkingLot) error
	Save(ctx context.Context, lot *models.ParkingLot) error
	UpdateFields(ctx context.Context, tx *gorm.DB, lotID uint, fields map[string]any) error
	ReplaceSpecialRates(ctx context.Context, tx *gorm.DB, lotID uint, rates []models.SpecialRate) error
	Delete(ctx context.Context, tx *gorm.DB, lotID uint) error
	FindByID(ctx context.Context, id uint) (*models.ParkingLot, error)
	FindAll(ctx context.Context, status *models.LotStatus) ([]models.ParkingLot, error)
	FindAllIDs(ctx context.Context) ([]uint, error)
	FindSpaceForUpdate(ctx context.Context, tx *gorm.DB, lotID uint, spaceNumber string) (*models.ParkingSpace, error)
	UpdateSpaceStatus(ctx context.Context, tx *gorm.DB, spaceID uint, status models.SpaceStatus) error
	AdjustAvailable(ctx context.Context, tx *gorm.DB, lotID uint, delta int) error
	SetAvailable(ctx context.Context, tx *gorm.DB, lotID uint, available int) error
	CountSpacesByStatus(ctx context.Context, tx *gorm.DB, lotID uint, status models.SpaceStatus) (int64, error)
	GetDB() *gorm.DB
}

type lotRepository struct {
	db *gorm.DB
}

func NewLotRepository(db *gorm.DB) LotRepository {
	return &lotRepository{db: db}
}

func (r *lotRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *lotRepository) Create(ctx context.Context, lot *models.ParkingLot) error {
	return r.db.WithContext(ctx).Create(lot).Error
}

func (r *lotRepository) Save(ctx context.Context, lot *models.ParkingLot) error {
	return r.db.WithContext(ctx).Save(lot).Error
}

func (r *lotRepository) UpdateFields(ctx context.Context, tx *gorm.DB, lotID uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return tx.WithContext(ctx).
		Model(&models.ParkingLot{}).
		Where("id = ?", lotID).
		Updates(fields).Error
}

func (r *lotRepository) ReplaceSpecialRates(ctx context.Context, tx *gorm.DB, lotID uint, rates []models.SpecialRate) error {
	if err := tx.WithContext(ctx).Where("lot_id = ?", lotID).Delete(&models.SpecialRate{}).Error; err != nil {
		return err
	}
	if len(rates) == 0 {
		return nil
	}
	for i := range rates {
		rates[i].ID = 0
		rates[i].LotID = lotID
	}
	return tx.WithContext(ctx).Create(&rates).Error
}

func (r *lotRepository) Delete(ctx context.Context, tx *gorm.DB, lotID uint) error {
	if err := tx.WithContext(ctx).Where("lot_id = ?", lotID).Delete(&models.ParkingSpace{}).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Where("lot_id = ?", lotID).Delete(&models.SpecialRate{}).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Delete(&models.ParkingLot{}, lotID).Error
}

func (r *lotRepository) FindByID(ctx context.Context, id uint) (*models.ParkingLot, error) {
	var lot models.ParkingLot
	if err := r.db.WithContext(ctx).
		Preload("SpecialRates").
		Preload("Spaces").
		First(&lot, id).Error; err != nil {
		return nil, err
	}
	return &lot, nil
}

func (r *lotRepository) FindAll(ctx context.Context, status *models.LotStatus) ([]models.ParkingLot, error) {
	var lots []models.ParkingLot
	q := r.db.WithContext(ctx).Preload("SpecialRates")
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order("id ASC").Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

func (r *lotRepository) FindAllIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.ParkingLot{}).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}

// FindSpaceForUpdate locks the (lot, space_number) row. The space row is the
// serialization point for reservation, entry and release on the same space.
func (r *lotRepository) FindSpaceForUpdate(ctx context.Context, tx *gorm.DB, lotID uint, spaceNumber string) (*models.ParkingSpace, error) {
	var space models.ParkingSpace
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("lot_id = ? AND space_number = ?", lotID, spaceNumber).
		First(&space).Error; err != nil {
		return nil, err
	}
	return &space, nil
}

func (r *lotRepository) UpdateSpaceStatus(ctx context.Context, tx *gorm.DB, spaceID uint, status models.SpaceStatus) error {
	return tx.WithContext(ctx).
		Model(&models.ParkingSpace{}).
		Where("id = ?", spaceID).
		Update("status", status).Error
}

// AdjustAvailable applies a guarded relative update so the counter can never
// leave [0, total_spaces], even if callers disagree about the current value.
func (r *lotRepository) AdjustAvailable(ctx context.Context, tx *gorm.DB, lotID uint, delta int) error {
	res := tx.WithContext(ctx).
		Model(&models.ParkingLot{}).
		Where("id = ? AND available_spaces + ? >= 0 AND available_spaces + ? <= total_spaces", lotID, delta, delta).
		Update("available_spaces", gorm.Expr("available_spaces + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCounterDrift
	}
	return nil
}

func (r *lotRepository) SetAvailable(ctx context.Context, tx *gorm.DB, lotID uint, available int) error {
	return tx.WithContext(ctx).
		Model(&models.ParkingLot{}).
		Where("id = ?", lotID).
		Update("available_spaces", available).Error
}

func (r *lotRepository) CountSpacesByStatus(ctx context.Context, tx *gorm.DB, lotID uint, status models.SpaceStatus) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.ParkingSpace{}).
		Where("lot_id = ? AND status = ?", lotID, status).
		Count(&count).Error
	return count, err
}
