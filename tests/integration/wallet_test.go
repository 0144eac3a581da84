//go:build integration

package integration

import (
	"sync"
	"testing"
	"time"

	"github.com/MidnightMr/parking-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentTopUps_NoLostUpdate(t *testing.T) {
	cleanTables()
	env := newTestEnv()
	user := createTestUser(t, "saver", 0)
	actor := actorFor(user)

	total := 20
	var wg sync.WaitGroup
	wg.Add(total)
	for i := 0; i < total; i++ {
		go func() {
			defer wg.Done()
			_, err := env.walletSvc.TopUp(t.Context(), actor, 5, models.PayCard)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 100.0, walletBalance(t, user.ID))
	assert.Equal(t, walletBalance(t, user.ID), walletSum(t, user.ID))
}

func TestConcurrentDebits_CannotOverdraw(t *testing.T) {
	cleanTables()
	env := newTestEnv()
	lot := createTestLot(t, 3, 10)
	user := createTestUser(t, "spender", 5)
	actor := actorFor(user)

	// Three one-hour reservations at 2.0 each against a balance of 5:
	// at most two debits can land.
	start := time.Now().Add(time.Hour)
	resIDs := make([]uint, 3)
	for i, space := range []string{"001", "002", "003"} {
		res, err := env.reservationSvc.Create(t.Context(), actor, reservationCmd(lot.ID, space, start, start.Add(time.Hour)))
		require.NoError(t, err)
		require.Equal(t, 2.0, res.Fee)
		resIDs[i] = res.ID
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(resIDs))
	wg.Add(len(resIDs))
	for _, id := range resIDs {
		go func(id uint) {
			defer wg.Done()
			_, err := env.reservationSvc.Pay(t.Context(), actor, id, models.PayWallet)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	paid := 0
	for err := range errs {
		if err == nil {
			paid++
		}
	}
	assert.Equal(t, 2, paid, "the third debit must fail on funds")

	assert.Equal(t, 1.0, walletBalance(t, user.ID))
	assert.Equal(t, walletBalance(t, user.ID), walletSum(t, user.ID))
}
