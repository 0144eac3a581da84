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
	ErrRecordNotFound      = errors.New("parking record not found")
	ErrReservationMismatch = errors.New("entry does not match the referenced reservation")
	ErrAlreadyExited       = errors.New("vehicle has already exited")
	ErrAlreadyPaid         = errors.New("fee has already been paid")
	// ErrPartialSettlement marks a record whose fee is settled but whose space
	// could not be released; the sweeper retries the release.
	ErrPartialSettlement = errors.New("fee recorded but space not released")
)

type EntryCommand struct {
	LotID         uint
	SpaceNumber   string
	LicensePlate  string
	VehicleType   models.VehicleType
	ReservationID *uint
	// UserID overrides the record owner; admins use it to register walk-ins
	// (nil) or entries on behalf of a user. Ignored for non-admin actors.
	UserID *uint
}

type ParkingService interface {
	Entry(ctx context.Context, actor Actor, cmd EntryCommand) (*models.ParkingRecord, error)
	Exit(ctx context.Context, actor Actor, id uint) (*models.ParkingRecord, error)
	Pay(ctx context.Context, actor Actor, id uint, method models.PaymentMethod) (*models.ParkingRecord, error)
	Get(ctx context.Context, actor Actor, id uint) (*models.ParkingRecord, error)
	List(ctx context.Context, actor Actor, activeOnly bool) ([]models.ParkingRecord, error)
}

type parkingService struct {
	records      repository.RecordRepository
	reservations repository.ReservationRepository
	lots         repository.LotRepository
	registry     *SpaceRegistry
	ledger       *Ledger
	publisher    *rabbitmq.Publisher
}

func NewParkingService(
	records repository.RecordRepository,
	reservations repository.ReservationRepository,
	lots repository.LotRepository,
	registry *SpaceRegistry,
	ledger *Ledger,
	publisher *rabbitmq.Publisher,
) ParkingService {
	return &parkingService{
		records:      records,
		reservations: reservations,
		lots:         lots,
		registry:     registry,
		ledger:       ledger,
		publisher:    publisher,
	}
}

func (s *parkingService) Entry(ctx context.Context, actor Actor, cmd EntryCommand) (*models.ParkingRecord, error) {
	lot, err := s.lots.FindByID(ctx, cmd.LotID)
	if err != nil {
		return nil, ErrLotNotFound
	}
	if lot.Status != models.LotOpen {
		return nil, fmt.Errorf("%w: lot is %s", ErrSpaceUnavailable, lot.Status)
	}

	owner := &actor.UserID
	if actor.IsAdmin() {
		owner = cmd.UserID
	}

	var result *models.ParkingRecord
	var usedReservation *models.Reservation

	err = s.records.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cmd.ReservationID != nil {
			res, err := s.reservations.FindByIDForUpdate(ctx, tx, *cmd.ReservationID)
			if err != nil {
				return ErrReservationNotFound
			}
			if res.EffectiveStatus(time.Now()) != models.ReservationConfirmed {
				return fmt.Errorf("%w: reservation is %s", ErrInvalidState, res.EffectiveStatus(time.Now()))
			}
			if res.LotID != cmd.LotID || res.SpaceNumber != cmd.SpaceNumber || res.LicensePlate != cmd.LicensePlate {
				return ErrReservationMismatch
			}
			res.Status = models.ReservationUsed
			if err := s.reservations.Save(ctx, tx, res); err != nil {
				return err
			}
			usedReservation = res
		}

		// Without a reservation only a free space may be taken; a held
		// space belongs to its reservation until it expires.
		if cmd.ReservationID != nil {
			if _, err := s.registry.Occupy(ctx, tx, cmd.LotID, cmd.SpaceNumber); err != nil {
				return err
			}
		} else {
			if _, err := s.registry.OccupyFrom(ctx, tx, cmd.LotID, cmd.SpaceNumber, models.SpaceFree); err != nil {
				return err
			}
		}

		rec := &models.ParkingRecord{
			UserID:        owner,
			LotID:         cmd.LotID,
			SpaceNumber:   cmd.SpaceNumber,
			LicensePlate:  cmd.LicensePlate,
			VehicleType:   cmd.VehicleType,
			EntryTime:     time.Now(),
			PaymentStatus: models.PaymentUnpaid,
			IsActive:      true,
			ReservationID: cmd.ReservationID,
		}
		if err := s.records.Create(ctx, tx, rec); err != nil {
			return err
		}

		result = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Events go out only once the transaction is committed; a rolled-back
	// entry must not announce a used reservation.
	if usedReservation != nil {
		s.publishReservation("parking.reservation.used", usedReservation)
	}
	s.publishRecord("parking.session.entered", result)
	return result, nil
}

// Exit settles the stay in two steps: fee first, release second. If the
// release fails, the committed fee stays, is_active stays true and the caller
// gets ErrPartialSettlement; the sweeper finishes the release later.
func (s *parkingService) Exit(ctx context.Context, actor Actor, id uint) (*models.ParkingRecord, error) {
	var result *models.ParkingRecord

	err := s.records.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := s.records.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return ErrRecordNotFound
		}
		if !actor.CanAccess(rec.UserID) {
			return ErrForbidden
		}
		if rec.ExitTime != nil {
			return ErrAlreadyExited
		}
		if err := s.settleFee(ctx, tx, rec, time.Now()); err != nil {
			return err
		}
		result = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.releaseRecord(ctx, result); err != nil {
		return result, fmt.Errorf("%w: %v", ErrPartialSettlement, err)
	}

	s.publishRecord("parking.session.exited", result)
	return result, nil
}

func (s *parkingService) Pay(ctx context.Context, actor Actor, id uint, method models.PaymentMethod) (*models.ParkingRecord, error) {
	var result *models.ParkingRecord

	err := s.records.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := s.records.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return ErrRecordNotFound
		}
		if !actor.CanAccess(rec.UserID) {
			return ErrForbidden
		}
		if rec.PaymentStatus == models.PaymentPaid {
			return ErrAlreadyPaid
		}

		// Paying before driving out closes the stay as of now.
		if rec.ExitTime == nil {
			if err := s.settleFee(ctx, tx, rec, time.Now()); err != nil {
				return err
			}
		}

		if method == models.PayWallet {
			if rec.UserID == nil {
				return fmt.Errorf("%w: walk-in record has no wallet", ErrInvalidState)
			}
			err := s.ledger.Debit(ctx, tx, *rec.UserID, rec.Fee, models.TxCharge,
				fmt.Sprintf("parking fee for space %s", rec.SpaceNumber),
				fmt.Sprintf("record:%d", rec.ID))
			if err != nil {
				return err
			}
		}

		now := time.Now()
		rec.PaymentStatus = models.PaymentPaid
		rec.PaymentMethod = method
		rec.PaymentTime = &now
		rec.PaymentID = newPaymentID()

		if rec.IsActive {
			if _, err := s.registry.Release(ctx, tx, rec.LotID, rec.SpaceNumber); err != nil {
				return err
			}
			rec.IsActive = false
		}

		if err := s.records.Save(ctx, tx, rec); err != nil {
			return err
		}

		result = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishRecord("parking.session.paid", result)
	return result, nil
}

func (s *parkingService) Get(ctx context.Context, actor Actor, id uint) (*models.ParkingRecord, error) {
	rec, err := s.records.FindByID(ctx, id)
	if err != nil {
		return nil, ErrRecordNotFound
	}
	if !actor.CanAccess(rec.UserID) {
		return nil, ErrForbidden
	}
	return rec, nil
}

func (s *parkingService) List(ctx context.Context, actor Actor, activeOnly bool) ([]models.ParkingRecord, error) {
	return s.records.FindByUser(ctx, actor.UserID, activeOnly)
}

// settleFee writes exit time, duration and fee exactly once.
func (s *parkingService) settleFee(ctx context.Context, tx *gorm.DB, rec *models.ParkingRecord, exit time.Time) error {
	lot, err := s.lots.FindByID(ctx, rec.LotID)
	if err != nil {
		return ErrLotNotFound
	}
	rec.ExitTime = &exit
	rec.DurationMinutes, rec.Fee = ParkingFee(rec.EntryTime, exit, rec.VehicleType, lot)
	return s.records.Save(ctx, tx, rec)
}

func (s *parkingService) releaseRecord(ctx context.Context, rec *models.ParkingRecord) error {
	return s.records.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.registry.Release(ctx, tx, rec.LotID, rec.SpaceNumber); err != nil {
			return err
		}
		rec.IsActive = false
		return s.records.Save(ctx, tx, rec)
	})
}

func (s *parkingService) publishRecord(routingKey string, rec *models.ParkingRecord) {
	if s.publisher != nil {
		_ = s.publisher.Publish(routingKey, rec)
	}
}

func (s *parkingService) publishReservation(routingKey string, res *models.Reservation) {
	if s.publisher != nil {
		_ = s.publisher.Publish(routingKey, res)
	}
}
