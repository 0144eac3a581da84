package service

import (
	"context"
	"errors"

	"github.com/MidnightMr/parking-service/internal/models"
	"github.com/MidnightMr/parking-service/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

// Ledger moves wallet money. Both methods run inside the caller's transaction
// and lock the user row first, so the appended transaction row and the
// denormalized balance can never diverge: a failed debit writes nothing.
type Ledger struct {
	users  repository.UserRepository
	wallet repository.WalletRepository
}

func NewLedger(users repository.UserRepository, wallet repository.WalletRepository) *Ledger {
	return &Ledger{users: users, wallet: wallet}
}

// Credit adds amount to the user's wallet and appends the matching
// transaction row.
func (l *Ledger) Credit(ctx context.Context, tx *gorm.DB, userID uint, amount float64, txType models.TransactionType, description, referenceID string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	user, err := l.lockUser(ctx, tx, userID)
	if err != nil {
		return err
	}
	if err := l.wallet.Append(ctx, tx, &models.WalletTransaction{
		UserID:      userID,
		Amount:      amount,
		Type:        txType,
		Description: description,
		ReferenceID: referenceID,
	}); err != nil {
		return err
	}
	return l.users.UpdateBalance(ctx, tx, userID, user.WalletBalance+amount)
}

// Debit removes amount from the user's wallet, failing with
// ErrInsufficientFunds before touching anything when the balance is short.
func (l *Ledger) Debit(ctx context.Context, tx *gorm.DB, userID uint, amount float64, txType models.TransactionType, description, referenceID string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	user, err := l.lockUser(ctx, tx, userID)
	if err != nil {
		return err
	}
	if user.WalletBalance < amount {
		return ErrInsufficientFunds
	}
	if err := l.wallet.Append(ctx, tx, &models.WalletTransaction{
		UserID:      userID,
		Amount:      -amount,
		Type:        txType,
		Description: description,
		ReferenceID: referenceID,
	}); err != nil {
		return err
	}
	return l.users.UpdateBalance(ctx, tx, userID, user.WalletBalance-amount)
}

func (l *Ledger) lockUser(ctx context.Context, tx *gorm.DB, userID uint) (*models.User, error) {
	user, err := l.users.FindByIDForUpdate(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
