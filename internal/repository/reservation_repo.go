package repository

import (
	"context"
	"time"

	"github.com/MidnightMr/parking-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReservationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, res *models.Reservation) error
	Save(ctx context.Context, tx *gorm.DB, res *models.Reservation) error
	FindByID(ctx context.Context, id uint) (*models.Reservation, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error)
	FindConflicts(ctx context.Context, tx *gorm.DB, lotID uint, spaceNumber string, start, end time.Time) ([]models.Reservation, error)
	FindByUser(ctx context.Context, userID uint, status *models.ReservationStatus) ([]models.Reservation, error)
	FindExpired(ctx context.Context, tx *gorm.DB, now time.Time, limit int) ([]models.Reservation, error)
	GetDB() *gorm.DB
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *reservationRepository) Create(ctx context.Context, tx *gorm.DB, res *models.Reservation) error {
	return tx.WithContext(ctx).Create(res).Error
}

func (r *reservationRepository) Save(ctx context.Context, tx *gorm.DB, res *models.Reservation) error {
	return tx.WithContext(ctx).Save(res).Error
}

func (r *reservationRepository) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.db.WithContext(ctx).First(&res, id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&res, id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

// FindConflicts scans live reservations for the same space whose window
// overlaps [start, end]. The overlap test is inclusive on both ends: a
// reservation ending exactly when the new one starts still conflicts.
func (r *reservationRepository) FindConflicts(ctx context.Context, tx *gorm.DB, lotID uint, spaceNumber string, start, end time.Time) ([]models.Reservation, error) {
	var conflicts []models.Reservation
	err := tx.WithContext(ctx).
		Where("lot_id = ? AND space_number = ?", lotID, spaceNumber).
		Where("status IN ?", []models.ReservationStatus{models.ReservationPending, models.ReservationConfirmed}).
		Where("start_time <= ? AND expiry_time >= ?", end, start).
		Find(&conflicts).Error
	if err != nil {
		return nil, err
	}
	return conflicts, nil
}

func (r *reservationRepository) FindByUser(ctx context.Context, userID uint, status *models.ReservationStatus) ([]models.Reservation, error) {
	var reservations []models.Reservation
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order("start_time DESC").Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepository) FindExpired(ctx context.Context, tx *gorm.DB, now time.Time, limit int) ([]models.Reservation, error) {
	var expired []models.Reservation
	err := tx.WithContext(ctx).
		Where("status IN ?", []models.ReservationStatus{models.ReservationPending, models.ReservationConfirmed}).
		Where("expiry_time < ?", now).
		Order("expiry_time ASC").
		Limit(limit).
		Find(&expired).Error
	if err != nil {
		return nil, err
	}
	return expired, nil
}
