package repository

import (
	"context"

	"github.com/MidnightMr/parking-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	UpdateBalance(ctx context.Context, tx *gorm.DB, userID uint, balance float64) error
	Save(ctx context.Context, user *models.User) error
	AddPlate(ctx context.Context, plate *models.LicensePlate) error
	RemovePlate(ctx context.Context, userID uint, plateNumber string) (int64, error)
	SetDefaultPlate(ctx context.Context, userID uint, plateNumber string) error
	Delete(ctx context.Context, userID uint) (int64, error)
	GetDB() *gorm.DB
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("LicensePlates").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Preload("LicensePlates").Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDForUpdate locks the user row; wallet movements for the same user
// serialize on this lock.
func (r *userRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateBalance(ctx context.Context, tx *gorm.DB, userID uint, balance float64) error {
	return tx.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("wallet_balance", balance).Error
}

func (r *userRepository) Save(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) AddPlate(ctx context.Context, plate *models.LicensePlate) error {
	return r.db.WithContext(ctx).Create(plate).Error
}

func (r *userRepository) RemovePlate(ctx context.Context, userID uint, plateNumber string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND plate_number = ?", userID, plateNumber).
		Delete(&models.LicensePlate{})
	return res.RowsAffected, res.Error
}

func (r *userRepository) Delete(ctx context.Context, userID uint) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.LicensePlate{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, userID)
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

func (r *userRepository) SetDefaultPlate(ctx context.Context, userID uint, plateNumber string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.LicensePlate{}).
			Where("user_id = ?", userID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		res := tx.Model(&models.LicensePlate{}).
			Where("user_id = ? AND plate_number = ?", userID, plateNumber).
			Update("is_default", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
