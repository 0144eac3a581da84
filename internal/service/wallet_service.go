package service

import (
	"context"
	"fmt"
	"log"

	"github.com/MidnightMr/parking-service/internal/models"
	"github.com/MidnightMr/parking-service/internal/repository"
	"gorm.io/gorm"
)

type WalletService interface {
	TopUp(ctx context.Context, actor Actor, amount float64, method models.PaymentMethod) (*models.User, error)
	Statement(ctx context.Context, actor Actor, userID uint) (*models.User, []models.WalletTransaction, error)
}

type walletService struct {
	users  repository.UserRepository
	wallet repository.WalletRepository
	ledger *Ledger
}

func NewWalletService(users repository.UserRepository, wallet repository.WalletRepository, ledger *Ledger) WalletService {
	return &walletService{users: users, wallet: wallet, ledger: ledger}
}

func (s *walletService) TopUp(ctx context.Context, actor Actor, amount float64, method models.PaymentMethod) (*models.User, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	err := s.users.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.ledger.Credit(ctx, tx, actor.UserID, amount, models.TxTopUp,
			fmt.Sprintf("wallet top-up via %s", method), newPaymentID())
	})
	if err != nil {
		return nil, err
	}

	return s.users.FindByID(ctx, actor.UserID)
}

func (s *walletService) Statement(ctx context.Context, actor Actor, userID uint) (*models.User, []models.WalletTransaction, error) {
	if !actor.CanAccess(&userID) {
		return nil, nil, ErrForbidden
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, ErrUserNotFound
	}

	txs, err := s.wallet.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	// The denormalized balance must equal the ledger sum; log if it ever
	// drifts so it shows up before a payment goes wrong.
	if sum, err := s.wallet.SumByUser(ctx, userID); err == nil && sum != user.WalletBalance {
		log.Printf("[Wallet] user %d balance drift: balance=%.2f ledger=%.2f", userID, user.WalletBalance, sum)
	}

	return user, txs, nil
}
