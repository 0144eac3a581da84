package repository

import (
	"context"

	"github.com/MidnightMr/parking-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RecordRepository interface {
	Create(ctx context.Context, tx *gorm.DB, rec *models.ParkingRecord) error
	Save(ctx context.Context, tx *gorm.DB, rec *models.ParkingRecord) error
	FindByID(ctx context.Context, id uint) (*models.ParkingRecord, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.ParkingRecord, error)
	FindByUser(ctx context.Context, userID uint, activeOnly bool) ([]models.ParkingRecord, error)
	FindUnsettled(ctx context.Context, tx *gorm.DB, limit int) ([]models.ParkingRecord, error)
	GetDB() *gorm.DB
}

type recordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *recordRepository) Create(ctx context.Context, tx *gorm.DB, rec *models.ParkingRecord) error {
	return tx.WithContext(ctx).Create(rec).Error
}

func (r *recordRepository) Save(ctx context.Context, tx *gorm.DB, rec *models.ParkingRecord) error {
	return tx.WithContext(ctx).Save(rec).Error
}

func (r *recordRepository) FindByID(ctx context.Context, id uint) (*models.ParkingRecord, error) {
	var rec models.ParkingRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recordRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.ParkingRecord, error) {
	var rec models.ParkingRecord
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&rec, id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recordRepository) FindByUser(ctx context.Context, userID uint, activeOnly bool) ([]models.ParkingRecord, error) {
	var records []models.ParkingRecord
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("entry_time DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindUnsettled returns records that exited but still hold their space, the
// partial-settlement condition the sweeper repairs.
func (r *recordRepository) FindUnsettled(ctx context.Context, tx *gorm.DB, limit int) ([]models.ParkingRecord, error) {
	var records []models.ParkingRecord
	err := tx.WithContext(ctx).
		Where("exit_time IS NOT NULL AND is_active = ?", true).
		Order("exit_time ASC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
