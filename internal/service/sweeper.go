package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/MidnightMr/parking-service/internal/models"
	"github.com/MidnightMr/parking-service/internal/repository"
	"github.com/MidnightMr/parking-service/pkg/rabbitmq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const sweepBatchSize = 100

// Sweeper is the periodic repair pass: it persists lazy reservation expiry,
// finishes partially settled exits, and watches the available-spaces counter
// for drift. It runs outside the request path and takes the same per-space
// locks the services do.
type Sweeper struct {
	reservations repository.ReservationRepository
	records      repository.RecordRepository
	lots         repository.LotRepository
	registry     *SpaceRegistry
	publisher    *rabbitmq.Publisher
	interval     time.Duration
}

func NewSweeper(
	reservations repository.ReservationRepository,
	records repository.RecordRepository,
	lots repository.LotRepository,
	registry *SpaceRegistry,
	publisher *rabbitmq.Publisher,
	interval time.Duration,
) *Sweeper {
	return &Sweeper{
		reservations: reservations,
		records:      records,
		lots:         lots,
		registry:     registry,
		publisher:    publisher,
		interval:     interval,
	}
}

// Start runs sweep passes on a fixed interval until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Println("[Sweeper] stopping")
				return
			case <-ticker.C:
				s.Run(ctx)
			}
		}
	}()
}

// Run performs one full pass. Each item is handled in its own transaction so
// one bad row cannot wedge the whole sweep.
func (s *Sweeper) Run(ctx context.Context) {
	s.expireReservations(ctx)
	s.repairSettlements(ctx)
	s.checkCounterDrift(ctx)
}

func (s *Sweeper) expireReservations(ctx context.Context) {
	db := s.reservations.GetDB()

	var expired []models.Reservation
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		expired, err = s.reservations.FindExpired(ctx, tx, time.Now(), sweepBatchSize)
		return err
	})
	if err != nil {
		log.Printf("[Sweeper] list expired reservations: %v", err)
		return
	}

	for i := range expired {
		res := &expired[i]
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			locked, err := s.reservations.FindByIDForUpdate(ctx, tx, res.ID)
			if err != nil {
				return err
			}
			// Re-check under the lock; a racing cancel or entry may have won.
			if locked.EffectiveStatus(time.Now()) != models.ReservationExpired {
				return nil
			}
			locked.Status = models.ReservationExpired
			if err := s.reservations.Save(ctx, tx, locked); err != nil {
				return err
			}
			// Free the space only if this reservation still holds it. Expiry
			// forfeits the hold fee; no refund is issued.
			_, err = s.registry.ReleaseFrom(ctx, tx, locked.LotID, locked.SpaceNumber, models.SpaceReserved)
			if err != nil && !errors.Is(err, ErrSpaceUnavailable) {
				return err
			}
			*res = *locked
			return nil
		})
		if err != nil {
			log.Printf("[Sweeper] expire reservation %d: %v", res.ID, err)
			continue
		}
		if res.Status == models.ReservationExpired {
			if s.publisher != nil {
				_ = s.publisher.Publish("parking.reservation.expired", res)
			}
			log.Printf("[Sweeper] expired reservation %d (lot %d space %s)", res.ID, res.LotID, res.SpaceNumber)
		}
	}
}

func (s *Sweeper) repairSettlements(ctx context.Context) {
	db := s.records.GetDB()

	var stuck []models.ParkingRecord
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		stuck, err = s.records.FindUnsettled(ctx, tx, sweepBatchSize)
		return err
	})
	if err != nil {
		log.Printf("[Sweeper] list unsettled records: %v", err)
		return
	}

	for i := range stuck {
		rec := &stuck[i]
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			locked, err := s.records.FindByIDForUpdate(ctx, tx, rec.ID)
			if err != nil {
				return err
			}
			if !locked.IsActive || locked.ExitTime == nil {
				return nil
			}
			if _, err := s.registry.Release(ctx, tx, locked.LotID, locked.SpaceNumber); err != nil {
				return err
			}
			locked.IsActive = false
			return s.records.Save(ctx, tx, locked)
		})
		if err != nil {
			log.Printf("[Sweeper] repair record %d: %v", rec.ID, err)
			continue
		}
		log.Printf("[Sweeper] released stuck space for record %d (lot %d space %s)", rec.ID, rec.LotID, rec.SpaceNumber)
	}
}

// checkCounterDrift re-derives available_spaces from the space statuses. The
// services never do this on the hot path; here it is a safety net that logs
// and repairs any divergence.
func (s *Sweeper) checkCounterDrift(ctx context.Context) {
	ids, err := s.lots.FindAllIDs(ctx)
	if err != nil {
		log.Printf("[Sweeper] list lots: %v", err)
		return
	}

	for _, lotID := range ids {
		err := s.lots.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			free, err := s.lots.CountSpacesByStatus(ctx, tx, lotID, models.SpaceFree)
			if err != nil {
				return err
			}
			var lot models.ParkingLot
			if err := tx.WithContext(ctx).
				Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&lot, lotID).Error; err != nil {
				return err
			}
			if lot.AvailableSpaces != int(free) {
				log.Printf("[Sweeper] lot %d counter drift: available=%d free=%d, repairing",
					lotID, lot.AvailableSpaces, free)
				return s.lots.SetAvailable(ctx, tx, lotID, int(free))
			}
			return nil
		})
		if err != nil {
			log.Printf("[Sweeper] drift check lot %d: %v", lotID, err)
		}
	}
}
