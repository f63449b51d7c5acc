// Package events defines the Kafka topics, event types and payloads
// exchanged by the ride service.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicRideEvents = "ride.events"
	TopicUserEvents = "user.events"
)

// Event types.
const (
	RideBooked    = "ride.booked"
	RideCancelled = "ride.cancelled"

	UserRegistered     = "user.registered"
	UserAccountDeleted = "user.account_deleted"
)

// RideBookedEvent is published when a passenger books a ride.
type RideBookedEvent struct {
	RideID                    uuid.UUID  `json:"ride_id"`
	PassengerID               uuid.UUID  `json:"passenger_id"`
	VehicleType               string     `json:"vehicle_type"`
	Status                    string     `json:"status"`
	IsInstant                 bool       `json:"is_instant"`
	ScheduledAt               *time.Time `json:"scheduled_at,omitempty"`
	PickupAddress             string     `json:"pickup_address"`
	DestinationAddress        string     `json:"destination_address"`
	StopCount                 int        `json:"stop_count"`
	EstimatedFare             float64    `json:"estimated_fare"`
	EstimatedDistanceKm       float64    `json:"estimated_distance_km"`
	EstimatedDurationMinutes  float64    `json:"estimated_duration_minutes"`
	EstimatedArrival          time.Time  `json:"estimated_arrival"`
	CancellationWindowMinutes int        `json:"cancellation_window_minutes"`
	Currency                  string     `json:"currency"`
	OccurredAt                time.Time  `json:"occurred_at"`
}

// RideCancelledEvent is published when a ride is cancelled.
type RideCancelledEvent struct {
	RideID      uuid.UUID `json:"ride_id"`
	PassengerID uuid.UUID `json:"passenger_id"`
	CancelledBy uuid.UUID `json:"cancelled_by"`
	Reason      *string   `json:"reason,omitempty"`
	Penalty     float64   `json:"penalty"`
	Currency    string    `json:"currency"`
	CancelledAt time.Time `json:"cancelled_at"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// UserRegisteredEvent is published after signup.
type UserRegisteredEvent struct {
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurred_at"`
}

// UserAccountDeletedEvent is published when an account is soft-deleted.
type UserAccountDeletedEvent struct {
	UserID     uuid.UUID `json:"user_id"`
	DeletedAt  time.Time `json:"deleted_at"`
	OccurredAt time.Time `json:"occurred_at"`
}
