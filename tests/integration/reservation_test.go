//go:build integration

package integration

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MidnightMr/parking-service/internal/models"
	"github.com/MidnightMr/parking-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reservationCmd(lotID uint, space string, start, end time.Time) service.CreateReservationCommand {
	return service.CreateReservationCommand{
		LotID:        lotID,
		SpaceNumber:  space,
		LicensePlate: "KA-01-1234",
		VehicleType:  models.VehicleCompact,
		StartTime:    start,
		ExpiryTime:   end,
	}
}

func TestCreateReservation_HoldsSpaceAndFixesFee(t *testing.T) {
	cleanTables()
	env := newTestEnv()
	lot := createTestLot(t, 3, 10)
	user := createTestUser(t, "alice", 100)

	start := time.Now().Add(time.Hour).Truncate(time.Second)
	res, err := env.reservationSvc.Create(t.Context(), actorFor(user), reservationCmd(lot.ID, "001", start, start.Add(90*time.Minute)))
	require.NoError(t, err)

	assert.Equal(t, models.ReservationPending, res.Status)
	// 90 minutes bills as two hours of hold fee: 10 * 2 * 0.2.
	assert.Equal(t, 4.0, res.Fee)
	assert.Len(t, res.ConfirmationCode, 6)

	assert.Equal(t, models.SpaceReserved, spaceStatus(t, lot.ID, "001"))
	assert.Equal(t, 2, availableSpaces(t, lot.ID))
}

func TestCreateReservation_OverlapBoundaries(t *testing.T) {
	cleanTables()
	env := newTestEnv()
	lot := createTestLot(t, 3, 10)
	user := createTestUser(t, "alice", 100)
	actor := actorFor(user)

	base := time.Now().Add(time.Hour).Truncate(time.Minute)

	_, err := env.reservationSvc.Create(t.Context(), actor, reservationCmd(lot.ID, "001", base.Add(30*time.Minute), base.Add(90*time.Minute)))
	require.NoError(t, err)

	// [base+90m, base+150m] touches the existing expiry exactly; the
	// boundary is inclusive, so it conflicts.
	_, err = env.reservationSvc.Create(t.Context(), actor, reservationCmd(lot.ID, "001", base.Add(90*time.Minute), base.Add(150*time.Minute)))
	assert.ErrorIs(t, err, service.ErrSpaceConflict)

	// A fully contained window conflicts too.
	_, err = env.reservationSvc.Create(t.Context(), actor, reservationCmd(lot.ID, "001", base.Add(40*time.Minute), base.Add(60*time.Minute)))
	assert.ErrorIs(t, err, service.ErrSpaceConflict)

	// A different space with the same window is fine.
	_, err = env.reservationSvc.Create(t.Context(), actor, reservationCmd(lot.ID, "002", base.Add(30*time.Minute), base.Add(90*time.Minute)))
	assert.NoError(t, err)
}

func TestCreateReservation_SecondWindowOnHeldSpace(t *testing.T) {
	cleanTables()
	env := newTestEnv()
	lot := createTestLot(t, 1, 10)
	user := createTestUser(t, "alice", 100)
	actor := actorFor(user)

	base := time.Now().Add(time.Hour).Truncate(time.Minute)

	res, err := env.reservationSvc.Create(t.Context(), actor, reservationCmd(lot.ID, "001", base, base.Add(time.Hour)))
	require.NoError(t, err)

	// A held space accepts no second reservation, even for a window that
	// does not overlap: the space must be free again first.
	_, err = env.reservationSvc.Create(t.Context(), actor, reservationCmd(lot.ID, "001", base.Add(61*time.Minute), base.Add(2*time.Hour)))
	assert.ErrorIs(t, err, service.ErrSpaceUnavailable)

	_, err = env.reservationSvc.Cancel(t.Context(), actor, res.ID)
	require.NoError(t, err)

	_, err = env.reservationSvc.Create(t.Context(), actor, reservationCmd(lot.ID, "001", base.Add(61*time.Minute), base.Add(2*time.Hour)))
	assert.NoError(t, err)
}

func TestCreateReservation_WindowValidation(t *testing.T) {
	cleanTables()
	env := newTestEnv()
	lot := createTestLot(t, 1, 10)
	user := createTestUser(t, "alice", 100)
	actor := actorFor(user)

	start := time.Now().Add(time.Hour)

	_, err := env.reservationSvc.Create(t.Context(), actor, reservationCmd(lot.ID, "001", time.Now().Add(-time.Minute), start))
	assert.ErrorIs(t, err, service.ErrInvalidInterval)

	_, err = env.reservationSvc.Create(t.Context(), actor, reservationCmd(lot.ID, "001", start, start))
	assert.ErrorIs(t, err, service.ErrInvalidInterval)

	// Over the two-hour cap.
	_, err = env.reservationSvc.Create(t.Context(), actor, reservationCmd(lot.ID, "001", start, start.Add(3*time.Hour)))
	assert.ErrorIs(t, err, service.ErrInvalidInterval)

	// Nothing was created and the space is untouched.
	assert.Equal(t, models.SpaceFree, spaceStatus(t, lot.ID, "001"))
	assert.Equal(t, 1, availableSpaces(t, lot.ID))
}

func TestConcurrentReservation_SameSpaceSameWindow(t *testing.T) {
	cleanTables()
	env := newTestEnv()
	lot := createTestLot(t, 1, 10)

	start := time.Now().Add(time.Hour)
	totalUsers := 10

	users := make([]*models.User, totalUsers)
	for i := 0; i < totalUsers; i++ {
		users[i] = createTestUser(t, fmt.Sprintf("racer-%02d", i), 100)
	}

	var wg sync.WaitGroup
	errs := make(chan error, totalUsers)
	wg.Add(totalUsers)
	for i := 0; i < totalUsers; i++ {
		go func(u *models.User) {
			defer wg.Done()
			_, err := env.reservationSvc.Create(t.Context(), actorFor(u), reservationCmd(lot.ID, "001", start, start.Add(time.Hour)))
			errs <- err
		}(users[i])
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one reservation should win the space")

	var count int64
	testDB.Model(&models.Reservation{}).Where("lot_id = ? AND status = ?", lot.ID, models.ReservationPending).Count(&count)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 0, availableSpaces(t, lot.ID))
}

func TestPayReservation_DebitsWalletAndConfirms(t *testing.T) {
	cleanTables()
	env := newTestEnv()
	lot := createTestLot(t, 1, 10)
	user := createTestUser(t, "alice", 100)
	actor := actorFor(user)

	start := time.Now().Add(time.Hour)
	res, err := env.reservationSvc.Create(t.Context(), actor, reservationCmd(lot.ID, "001", start, start.Add(time.Hour)))
	require.NoError(t, err)
	require.Equal(t, 2.0, res.Fee)

	paid, err := env.reservationSvc.Pay(t.Context(), actor, res.ID, models.PayWallet)
	require.NoError(t, err)

	assert.Equal(t, models.ReservationConfirmed, paid.Status)
	assert.Equal(t, models.PaymentPaid, paid.PaymentStatus)
	assert.NotEmpty(t, paid.PaymentID)
	assert.Equal(t, 98.0, walletBalance(t, user.ID))
	assert.Equal(t, walletBalance(t, user.ID), walletSum(t, user.ID))

	// Second payment is rejected and changes nothing.
	_, err = env.reservationSvc.Pay(t.Context(), actor, res.ID, models.PayWallet)
	assert.ErrorIs(t, err, service.ErrAlreadyPaid)
	assert.Equal(t, 98.0, walletBalance(t, user.ID))
}

func TestPayReservation_InsufficientFunds(t *testing.T) {
	cleanTables()
	env := newTestEnv()
	lot := createTestLot(t, 1, 10)
	user := createTestUser(t, "broke", 1)
	actor := actorFor(user)

	start := time.Now().Add(time.Hour)
	res, err := env.reservationSvc.Create(t.Context(), actor, reservationCmd(lot.ID, "001", start, start.Add(time.Hour)))
	require.NoError(t, err)

	_, err = env.reservationSvc.Pay(t.Context(), actor, res.ID, models.PayWallet)
	assert.ErrorIs(t, err, service.ErrInsufficientFunds)

	// Balance is untouched and the reservation stays pending and unpaid.
	assert.Equal(t, 1.0, walletBalance(t, user.ID))
	stored, err := env.reservationSvc.Get(t.Context(), actor, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationPending, stored.Status)
	assert.Equal(t, models.PaymentUnpaid, stored.PaymentStatus)
}

func TestCancelReservation_AfterPaymentRefunds(t *testing.T) {
	cleanTables()
	env := newTestEnv()
	lot := createTestLot(t, 1, 10)
	user := createTestUser(t, "alice", 100)
	actor := actorFor(user)

	start := time.Now().Add(time.Hour)
	res, err := env.reservationSvc.Create(t.Context(), actor, reservationCmd(lot.ID, "001", start, start.Add(time.Hour)))
	require.NoError(t, err)

	_, err = env.reservationSvc.Pay(t.Context(), actor, res.ID, models.PayWallet)
	require.NoError(t, err)
	require.Equal(t, 98.0, walletBalance(t, user.ID))

	cancelled, err := env.reservationSvc.Cancel(t.Context(), actor, res.ID)
	require.NoError(t, err)

	assert.Equal(t, models.ReservationCancelled, cancelled.Status)
	assert.Equal(t, models.PaymentRefunded, cancelled.PaymentStatus)
	assert.Equal(t, 100.0, walletBalance(t, user.ID))
	assert.Equal(t, walletBalance(t, user.ID), walletSum(t, user.ID))

	var refunds int64
	testDB.Model(&models.WalletTransaction{}).
		Where("user_id = ? AND type = ?", user.ID, models.TxRefund).Count(&refunds)
	assert.Equal(t, int64(1), refunds)

	assert.Equal(t, models.SpaceFree, spaceStatus(t, lot.ID, "001"))
	assert.Equal(t, 1, availableSpaces(t, lot.ID))

	// A terminal reservation cannot be cancelled again.
	_, err = env.reservationSvc.Cancel(t.Context(), actor, res.ID)
	assert.ErrorIs(t, err, service.ErrInvalidState)
}

func TestCancelReservation_UnpaidReleasesWithoutRefund(t *testing.T) {
	cleanTables()
	env := newTestEnv()
	lot := createTestLot(t, 1, 10)
	user := createTestUser(t, "alice", 100)
	actor := actorFor(user)

	start := time.Now().Add(time.Hour)
	res, err := env.reservationSvc.Create(t.Context(), actor, reservationCmd(lot.ID, "001", start, start.Add(time.Hour)))
	require.NoError(t, err)

	cancelled, err := env.reservationSvc.Cancel(t.Context(), actor, res.ID)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentCancelled, cancelled.PaymentStatus)
	assert.Equal(t, 100.0, walletBalance(t, user.ID))
	assert.Equal(t, models.SpaceFree, spaceStatus(t, lot.ID, "001"))
}

func TestReservation_OtherUserCannotTouchIt(t *testing.T) {
	cleanTables()
	env := newTestEnv()
	lot := createTestLot(t, 1, 10)
	owner := createTestUser(t, "owner", 100)
	stranger := createTestUser(t, "stranger", 100)

	start := time.Now().Add(time.Hour)
	res, err := env.reservationSvc.Create(t.Context(), actorFor(owner), reservationCmd(lot.ID, "001", start, start.Add(time.Hour)))
	require.NoError(t, err)

	_, err = env.reservationSvc.Pay(t.Context(), actorFor(stranger), res.ID, models.PayWallet)
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = env.reservationSvc.Cancel(t.Context(), actorFor(stranger), res.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = env.reservationSvc.Get(t.Context(), actorFor(stranger), res.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestSweeper_ExpiresStaleReservations(t *testing.T) {
	cleanTables()
	env := newTestEnv()
	lot := createTestLot(t, 1, 10)
	user := createTestUser(t, "alice", 100)
	actor := actorFor(user)

	start := time.Now().Add(200 * time.Millisecond)
	res, err := env.reservationSvc.Create(t.Context(), actor, reservationCmd(lot.ID, "001", start, start.Add(300*time.Millisecond)))
	require.NoError(t, err)
	require.Equal(t, models.SpaceReserved, spaceStatus(t, lot.ID, "001"))

	time.Sleep(600 * time.Millisecond)

	// Expired but not yet swept: the effective status already reads expired.
	stored, err := env.reservationSvc.Get(t.Context(), actor, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationExpired, stored.EffectiveStatus(time.Now()))
	assert.Equal(t, models.ReservationPending, stored.Status)

	env.sweeper.Run(t.Context())

	stored, err = env.reservationSvc.Get(t.Context(), actor, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationExpired, stored.Status)
	assert.Equal(t, models.SpaceFree, spaceStatus(t, lot.ID, "001"))
	assert.Equal(t, 1, availableSpaces(t, lot.ID))

	// Sweeping again is a no-op.
	env.sweeper.Run(t.Context())
	assert.Equal(t, 1, availableSpaces(t, lot.ID))
}
