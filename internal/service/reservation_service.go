package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MidnightMr/parking-service/internal/models"
	"github.com/MidnightMr/parking-service/internal/repository"
	"github.com/MidnightMr/parking-service/pkg/rabbitmq"
	"gorm.io/gorm"
)

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrSpaceConflict       = errors.New("space already reserved for an overlapping window")
	ErrInvalidInterval     = errors.New("invalid reservation window")
	ErrInvalidState        = errors.New("operation not allowed in current state")
)

// CreateReservationCommand is validated wholesale before any mutation; there
// are no partial updates from request bodies.
type CreateReservationCommand struct {
	LotID        uint
	SpaceNumber  string
	LicensePlate string
	VehicleType  models.VehicleType
	StartTime    time.Time
	ExpiryTime   time.Time
}

type ReservationService interface {
	Create(ctx context.Context, actor Actor, cmd CreateReservationCommand) (*models.Reservation, error)
	Pay(ctx context.Context, actor Actor, id uint, method models.PaymentMethod) (*models.Reservation, error)
	Cancel(ctx context.Context, actor Actor, id uint) (*models.Reservation, error)
	Get(ctx context.Context, actor Actor, id uint) (*models.Reservation, error)
	List(ctx context.Context, actor Actor, status *models.ReservationStatus) ([]models.Reservation, error)
}

type reservationService struct {
	reservations repository.ReservationRepository
	lots         repository.LotRepository
	registry     *SpaceRegistry
	ledger       *Ledger
	publisher    *rabbitmq.Publisher
	maxDuration  time.Duration
}

func NewReservationService(
	reservations repository.ReservationRepository,
	lots repository.LotRepository,
	registry *SpaceRegistry,
	ledger *Ledger,
	publisher *rabbitmq.Publisher,
	maxDuration time.Duration,
) ReservationService {
	return &reservationService{
		reservations: reservations,
		lots:         lots,
		registry:     registry,
		ledger:       ledger,
		publisher:    publisher,
		maxDuration:  maxDuration,
	}
}

func (s *reservationService) Create(ctx context.Context, actor Actor, cmd CreateReservationCommand) (*models.Reservation, error) {
	now := time.Now()
	if cmd.StartTime.Before(now) {
		return nil, fmt.Errorf("%w: start time is in the past", ErrInvalidInterval)
	}
	if !cmd.ExpiryTime.After(cmd.StartTime) {
		return nil, fmt.Errorf("%w: expiry must be after start", ErrInvalidInterval)
	}
	if cmd.ExpiryTime.Sub(cmd.StartTime) > s.maxDuration {
		return nil, fmt.Errorf("%w: window exceeds %s", ErrInvalidInterval, s.maxDuration)
	}

	lot, err := s.lots.FindByID(ctx, cmd.LotID)
	if err != nil {
		return nil, ErrLotNotFound
	}
	if lot.Status != models.LotOpen {
		return nil, fmt.Errorf("%w: lot is %s", ErrSpaceUnavailable, lot.Status)
	}

	var result *models.Reservation

	err = s.reservations.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Locking the space row first serializes conflict check + reserve
		// against concurrent creates for the same space.
		if _, err := s.lots.FindSpaceForUpdate(ctx, tx, cmd.LotID, cmd.SpaceNumber); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSpaceNotFound
			}
			return err
		}

		conflicts, err := s.reservations.FindConflicts(ctx, tx, cmd.LotID, cmd.SpaceNumber, cmd.StartTime, cmd.ExpiryTime)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return ErrSpaceConflict
		}

		res := &models.Reservation{
			UserID:           actor.UserID,
			LotID:            cmd.LotID,
			SpaceNumber:      cmd.SpaceNumber,
			LicensePlate:     cmd.LicensePlate,
			VehicleType:      cmd.VehicleType,
			StartTime:        cmd.StartTime,
			ExpiryTime:       cmd.ExpiryTime,
			Status:           models.ReservationPending,
			Fee:              ReservationFee(cmd.StartTime, cmd.ExpiryTime, cmd.VehicleType, lot),
			PaymentStatus:    models.PaymentUnpaid,
			ConfirmationCode: newConfirmationCode(),
		}
		if err := s.reservations.Create(ctx, tx, res); err != nil {
			return err
		}

		if _, err := s.registry.Reserve(ctx, tx, cmd.LotID, cmd.SpaceNumber); err != nil {
			return err
		}

		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish("parking.reservation.created", result)
	return result, nil
}

func (s *reservationService) Pay(ctx context.Context, actor Actor, id uint, method models.PaymentMethod) (*models.Reservation, error) {
	var result *models.Reservation

	err := s.reservations.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := s.reservations.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return ErrReservationNotFound
		}
		if !actor.CanAccess(&res.UserID) {
			return ErrForbidden
		}
		if res.PaymentStatus == models.PaymentPaid {
			return ErrAlreadyPaid
		}
		if res.EffectiveStatus(time.Now()) != models.ReservationPending {
			return fmt.Errorf("%w: reservation is %s", ErrInvalidState, res.EffectiveStatus(time.Now()))
		}

		if method == models.PayWallet {
			err := s.ledger.Debit(ctx, tx, res.UserID, res.Fee, models.TxCharge,
				fmt.Sprintf("reservation fee for space %s", res.SpaceNumber),
				fmt.Sprintf("reservation:%d", res.ID))
			if err != nil {
				return err
			}
		}
		// Other methods are assumed settled externally; no gateway in scope.

		now := time.Now()
		res.PaymentStatus = models.PaymentPaid
		res.PaymentMethod = method
		res.PaymentTime = &now
		res.PaymentID = newPaymentID()
		res.Status = models.ReservationConfirmed
		if err := s.reservations.Save(ctx, tx, res); err != nil {
			return err
		}

		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish("parking.reservation.confirmed", result)
	return result, nil
}

func (s *reservationService) Cancel(ctx context.Context, actor Actor, id uint) (*models.Reservation, error) {
	var result *models.Reservation

	err := s.reservations.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := s.reservations.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return ErrReservationNotFound
		}
		if !actor.CanAccess(&res.UserID) {
			return ErrForbidden
		}

		eff := res.EffectiveStatus(time.Now())
		if !models.CanReservationTransition(eff, models.ReservationCancelled) {
			return fmt.Errorf("%w: reservation is %s", ErrInvalidState, eff)
		}

		res.Status = models.ReservationCancelled
		if res.PaymentStatus == models.PaymentPaid {
			if res.PaymentMethod == models.PayWallet {
				err := s.ledger.Credit(ctx, tx, res.UserID, res.Fee, models.TxRefund,
					fmt.Sprintf("reservation cancelled, space %s", res.SpaceNumber),
					fmt.Sprintf("reservation:%d", res.ID))
				if err != nil {
					return err
				}
			}
			res.PaymentStatus = models.PaymentRefunded
		} else {
			res.PaymentStatus = models.PaymentCancelled
		}

		if err := s.reservations.Save(ctx, tx, res); err != nil {
			return err
		}

		// The hold is gone either way, so the space always goes back to free.
		if _, err := s.registry.Release(ctx, tx, res.LotID, res.SpaceNumber); err != nil {
			return err
		}

		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish("parking.reservation.cancelled", result)
	return result, nil
}

func (s *reservationService) Get(ctx context.Context, actor Actor, id uint) (*models.Reservation, error) {
	res, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, ErrReservationNotFound
	}
	if !actor.CanAccess(&res.UserID) {
		return nil, ErrForbidden
	}
	return res, nil
}

func (s *reservationService) List(ctx context.Context, actor Actor, status *models.ReservationStatus) ([]models.Reservation, error) {
	return s.reservations.FindByUser(ctx, actor.UserID, status)
}

func (s *reservationService) publish(routingKey string, res *models.Reservation) {
	if s.publisher != nil {
		_ = s.publisher.Publish(routingKey, res)
	}
}
