//go:build integration

package integration

import (
	"fmt"
	"testing"
	"time"

	"github.com/MidnightMr/parking-service/internal/models"
	"github.com/MidnightMr/parking-service/internal/repository"
	"github.com/MidnightMr/parking-service/internal/service"
	"github.com/stretchr/testify/require"
)

func createTestLot(t *testing.T, spaces int, rate float64) *models.ParkingLot {
	t.Helper()
	lot := &models.ParkingLot{
		Name:            "Test Lot",
		Address:         "1 Test Street",
		TotalSpaces:     spaces,
		AvailableSpaces: spaces,
		HourlyRate:      rate,
		Status:          models.LotOpen,
	}
	require.NoError(t, testDB.Create(lot).Error)
	for i := 0; i < spaces; i++ {
		require.NoError(t, testDB.Create(&models.ParkingSpace{
			LotID:       lot.ID,
			SpaceNumber: fmt.Sprintf("%03d", i+1),
			Type:        models.SpaceTypeStandard,
			Status:      models.SpaceFree,
		}).Error)
	}
	return lot
}

func createTestUser(t *testing.T, username string, balance float64) *models.User {
	t.Helper()
	user := &models.User{
		Username:      username,
		Password:      "hashed",
		Name:          username,
		Phone:         username + "-phone",
		Role:          models.RoleUser,
		WalletBalance: balance,
	}
	require.NoError(t, testDB.Create(user).Error)
	if balance != 0 {
		// Keep the ledger invariant: balance equals the sum of amounts.
		require.NoError(t, testDB.Create(&models.WalletTransaction{
			UserID: user.ID,
			Amount: balance,
			Type:   models.TxTopUp,
		}).Error)
	}
	return user
}

type testEnv struct {
	lots         repository.LotRepository
	reservations repository.ReservationRepository
	records      repository.RecordRepository
	users        repository.UserRepository
	wallet       repository.WalletRepository
	registry     *service.SpaceRegistry
	ledger       *service.Ledger

	reservationSvc service.ReservationService
	parkingSvc     service.ParkingService
	walletSvc      service.WalletService
	sweeper        *service.Sweeper
}

func newTestEnv() *testEnv {
	lots := repository.NewLotRepository(testDB)
	reservations := repository.NewReservationRepository(testDB)
	records := repository.NewRecordRepository(testDB)
	users := repository.NewUserRepository(testDB)
	wallet := repository.NewWalletRepository(testDB)

	registry := service.NewSpaceRegistry(lots)
	ledger := service.NewLedger(users, wallet)

	return &testEnv{
		lots:         lots,
		reservations: reservations,
		records:      records,
		users:        users,
		wallet:       wallet,
		registry:     registry,
		ledger:       ledger,
		reservationSvc: service.NewReservationService(
			reservations, lots, registry, ledger, nil, 2*time.Hour),
		parkingSvc: service.NewParkingService(
			records, reservations, lots, registry, ledger, nil),
		walletSvc: service.NewWalletService(users, wallet, ledger),
		sweeper: service.NewSweeper(reservations, records, lots, registry, nil, time.Minute),
	}
}

func actorFor(u *models.User) service.Actor {
	return service.Actor{UserID: u.ID, Role: u.Role}
}

func spaceStatus(t *testing.T, lotID uint, spaceNumber string) models.SpaceStatus {
	t.Helper()
	var space models.ParkingSpace
	require.NoError(t, testDB.Where("lot_id = ? AND space_number = ?", lotID, spaceNumber).First(&space).Error)
	return space.Status
}

func availableSpaces(t *testing.T, lotID uint) int {
	t.Helper()
	var lot models.ParkingLot
	require.NoError(t, testDB.First(&lot, lotID).Error)
	return lot.AvailableSpaces
}

func walletBalance(t *testing.T, userID uint) float64 {
	t.Helper()
	var user models.User
	require.NoError(t, testDB.First(&user, userID).Error)
	return user.WalletBalance
}

func walletSum(t *testing.T, userID uint) float64 {
	t.Helper()
	var sum float64
	require.NoError(t, testDB.Model(&models.WalletTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").Scan(&sum).Error)
	return sum
}
