package service

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

func newPaymentID() string {
	return "PAY-" + uuid.NewString()
}

// newConfirmationCode returns the six-digit code drivers quote at the gate.
func newConfirmationCode() string {
	return fmt.Sprintf("%06d", 100000+rand.Intn(900000))
}
