package ride

import (
	"errors"
	"math"
	"time"
)

// CancellationPolicy prices late cancellations.
type CancellationPolicy struct {
	PenaltyRate    float64
	MinimumPenalty float64
}

// DefaultCancellationPolicy charges 15% of the fare with a floor of 5.
func DefaultCancellationPolicy() CancellationPolicy {
	return CancellationPolicy{
		PenaltyRate:    0.15,
		MinimumPenalty: 5,
	}
}

// Validate rejects a rate outside [0, 1] and a negative minimum.
func (p CancellationPolicy) Validate() error {
	if p.PenaltyRate < 0 || p.PenaltyRate > 1 {
		return errors.New("penalty rate must be between 0 and 1")
	}
	if p.MinimumPenalty < 0 {
		return errors.New("minimum penalty must not be negative")
	}
	return nil
}

// PickupReference is the time the cancellation window counts back from:
// createdAt for instant rides, scheduledAt for scheduled ones.
func PickupReference(isInstant bool, createdAt time.Time, scheduledAt *time.Time) time.Time {
	if isInstant || scheduledAt == nil {
		return createdAt
	}
	return *scheduledAt
}

// Penalty returns the charge for cancelling at now. Cancelling at least
// windowMinutes before the pickup reference is free.
func (p CancellationPolicy) Penalty(reference time.Time, windowMinutes int, estimatedFare float64, now time.Time) float64 {
	minutesUntilPickup := reference.Sub(now).Minutes()
	if minutesUntilPickup >= float64(windowMinutes) {
		return 0
	}
	return roundTo2(math.Max(p.MinimumPenalty, estimatedFare*p.PenaltyRate))
}
