package repository

import (
	"context"

	"github.com/MidnightMr/parking-service/internal/models"
	"gorm.io/gorm"
)

// WalletRepository is append-only: there is no update or delete on
// transactions, corrections go in as new refund rows.
type WalletRepository interface {
	Append(ctx context.Context, tx *gorm.DB, wt *models.WalletTransaction) error
	ListByUser(ctx context.Context, userID uint) ([]models.WalletTransaction, error)
	SumByUser(ctx context.Context, userID uint) (float64, error)
}

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) Append(ctx context.Context, tx *gorm.DB, wt *models.WalletTransaction) error {
	return tx.WithContext(ctx).Create(wt).Error
}

func (r *walletRepository) ListByUser(ctx context.Context, userID uint) ([]models.WalletTransaction, error) {
	var txs []models.WalletTransaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// SumByUser re-derives the balance from the log; used for drift detection,
// never on the payment path.
func (r *walletRepository) SumByUser(ctx context.Context, userID uint) (float64, error) {
	var sum float64
	err := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}
