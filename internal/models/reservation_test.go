package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanReservationTransition(t *testing.T) {
	assert.True(t, CanReservationTransition(ReservationPending, ReservationConfirmed))
	assert.True(t, CanReservationTransition(ReservationPending, ReservationCancelled))
	assert.True(t, CanReservationTransition(ReservationPending, ReservationExpired))
	assert.True(t, CanReservationTransition(ReservationConfirmed, ReservationUsed))
	assert.True(t, CanReservationTransition(ReservationConfirmed, ReservationCancelled))
	assert.True(t, CanReservationTransition(ReservationConfirmed, ReservationExpired))

	// Pending cannot skip straight to used.
	assert.False(t, CanReservationTransition(ReservationPending, ReservationUsed))

	// Terminal states never move again.
	for _, from := range []ReservationStatus{ReservationUsed, ReservationExpired, ReservationCancelled} {
		for _, to := range []ReservationStatus{ReservationPending, ReservationConfirmed, ReservationUsed, ReservationExpired, ReservationCancelled} {
			assert.False(t, CanReservationTransition(from, to), "%s -> %s should be rejected", from, to)
		}
	}
}

func TestReservationStatusTerminal(t *testing.T) {
	assert.False(t, ReservationPending.Terminal())
	assert.False(t, ReservationConfirmed.Terminal())
	assert.True(t, ReservationUsed.Terminal())
	assert.True(t, ReservationExpired.Terminal())
	assert.True(t, ReservationCancelled.Terminal())
}

func TestEffectiveStatus_LazyExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	r := &Reservation{Status: ReservationConfirmed, ExpiryTime: now.Add(-time.Minute)}
	assert.Equal(t, ReservationExpired, r.EffectiveStatus(now))

	r = &Reservation{Status: ReservationPending, ExpiryTime: now.Add(-time.Minute)}
	assert.Equal(t, ReservationExpired, r.EffectiveStatus(now))

	// At the boundary the reservation is still live.
	r = &Reservation{Status: ReservationConfirmed, ExpiryTime: now}
	assert.Equal(t, ReservationConfirmed, r.EffectiveStatus(now))

	r = &Reservation{Status: ReservationConfirmed, ExpiryTime: now.Add(time.Minute)}
	assert.Equal(t, ReservationConfirmed, r.EffectiveStatus(now))
}

func TestEffectiveStatus_TerminalStatesUnaffected(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, s := range []ReservationStatus{ReservationUsed, ReservationExpired, ReservationCancelled} {
		r := &Reservation{Status: s, ExpiryTime: now.Add(-time.Hour)}
		assert.Equal(t, s, r.EffectiveStatus(now))
	}
}
