package models

import "time"

type TransactionType string

const (
	TxTopUp  TransactionType = "topup"
	TxCharge TransactionType = "charge"
	TxRefund TransactionType = "refund"
)

type PaymentMethod string

const (
	PayWallet PaymentMethod = "wallet"
	PayCard   PaymentMethod = "card"
	PayCash   PaymentMethod = "cash"
)

// WalletTransaction rows are append-only: corrections are recorded as refunds,
// never as updates. The user's denormalized balance must equal the sum of
// amounts at all times.
type WalletTransaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"index;not null" json:"user_id"`
	Amount      float64         `gorm:"not null" json:"amount"` // negative = debit
	Type        TransactionType `gorm:"type:varchar(20);not null" json:"type"`
	Description string          `json:"description"`
	ReferenceID string          `gorm:"index" json:"reference_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
