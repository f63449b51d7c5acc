package ride

import (
	"time"

	"github.com/google/uuid"

	"github.com/kilat-cab/service-ride/internal/platform/domain"
)

// RideBooking is the aggregate root for the ride domain.
type RideBooking struct {
	id          uuid.UUID
	passengerID uuid.UUID
	route       Route
	vehicleType VehicleType
	status      RideStatus

	scheduledAt *time.Time
	isInstant   bool

	estimatedFare             float64
	estimatedDistanceKm       float64
	estimatedDurationMinutes  float64
	estimatedArrival          time.Time
	cancellationWindowMinutes int
	currency                  string

	cancellationPenalty *float64
	cancellationReason  *string
	cancelledAt         *time.Time
	notes               string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewRideBooking creates a ride from a quote. The status is SCHEDULED when the
// quote classified the ride as scheduled, PENDING_DRIVER otherwise.
func NewRideBooking(
	passengerID uuid.UUID,
	route Route,
	vehicleType VehicleType,
	estimate Estimate,
	scheduledAt *time.Time,
	notes string,
	now time.Time,
) (*RideBooking, error) {
	if passengerID == uuid.Nil {
		return nil, domain.NewValidationError("passenger ID is required")
	}
	if err := route.Validate(); err != nil {
		return nil, err
	}
	if !vehicleType.IsValid() {
		return nil, domain.NewValidationError("invalid vehicle type: " + string(vehicleType))
	}
	if estimate.DistanceKm <= 0 || estimate.DurationMinutes <= 0 || estimate.Fare <= 0 {
		return nil, domain.NewValidationError("estimate is out of range")
	}

	status := StatusPendingDriver
	if estimate.IsScheduled {
		status = StatusScheduled
	}

	stops := route.Stops
	if stops == nil {
		stops = []LocationPoint{}
	}
	route.Stops = stops

	now = now.UTC()
	return &RideBooking{
		id:                        uuid.New(),
		passengerID:               passengerID,
		route:                     route,
		vehicleType:               vehicleType,
		status:                    status,
		scheduledAt:               scheduledAt,
		isInstant:                 !estimate.IsScheduled,
		estimatedFare:             estimate.Fare,
		estimatedDistanceKm:       estimate.DistanceKm,
		estimatedDurationMinutes:  estimate.DurationMinutes,
		estimatedArrival:          estimate.Arrival.UTC(),
		cancellationWindowMinutes: estimate.CancellationWindowMinutes,
		currency:                  domain.CurrencyUSD,
		notes:                     notes,
		version:                   1,
		createdAt:                 now,
		updatedAt:                 now,
	}, nil
}

// ReconstructRideBooking rebuilds a RideBooking from persistence data (no validation).
func ReconstructRideBooking(
	id uuid.UUID,
	passengerID uuid.UUID,
	route Route,
	vehicleType VehicleType,
	status RideStatus,
	scheduledAt *time.Time,
	isInstant bool,
	estimatedFare float64,
	estimatedDistanceKm float64,
	estimatedDurationMinutes float64,
	estimatedArrival time.Time,
	cancellationWindowMinutes int,
	currency string,
	cancellationPenalty *float64,
	cancellationReason *string,
	cancelledAt *time.Time,
	notes string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *RideBooking {
	return &RideBooking{
		id:                        id,
		passengerID:               passengerID,
		route:                     route,
		vehicleType:               vehicleType,
		status:                    status,
		scheduledAt:               scheduledAt,
		isInstant:                 isInstant,
		estimatedFare:             estimatedFare,
		estimatedDistanceKm:       estimatedDistanceKm,
		estimatedDurationMinutes:  estimatedDurationMinutes,
		estimatedArrival:          estimatedArrival,
		cancellationWindowMinutes: cancellationWindowMinutes,
		currency:                  currency,
		cancellationPenalty:       cancellationPenalty,
		cancellationReason:        cancellationReason,
		cancelledAt:               cancelledAt,
		notes:                     notes,
		version:                   version,
		createdAt:                 createdAt,
		updatedAt:                 updatedAt,
	}
}

// --- Getters ---

// ID returns the ride's unique identifier.
func (r *RideBooking) ID() uuid.UUID { return r.id }

// PassengerID returns the booking passenger's user ID.
func (r *RideBooking) PassengerID() uuid.UUID { return r.passengerID }

// Route returns the full route.
func (r *RideBooking) Route() Route { return r.route }

// PickupLocation returns the pickup point.
func (r *RideBooking) PickupLocation() LocationPoint { return r.route.Pickup }

// DestinationLocation returns the drop-off point.
func (r *RideBooking) DestinationLocation() LocationPoint { return r.route.Destination }

// Stops returns the intermediate stops in order.
func (r *RideBooking) Stops() []LocationPoint { return r.route.Stops }

// VehicleType returns the requested vehicle category.
func (r *RideBooking) VehicleType() VehicleType { return r.vehicleType }

// Status returns the current ride status.
func (r *RideBooking) Status() RideStatus { return r.status }

// ScheduledAt returns the requested pickup time, or nil if none was given.
func (r *RideBooking) ScheduledAt() *time.Time { return r.scheduledAt }

// IsInstant reports whether the ride was booked for immediate pickup.
func (r *RideBooking) IsInstant() bool { return r.isInstant }

// EstimatedFare returns the quoted fare.
func (r *RideBooking) EstimatedFare() float64 { return r.estimatedFare }

// EstimatedDistanceKm returns the quoted distance.
func (r *RideBooking) EstimatedDistanceKm() float64 { return r.estimatedDistanceKm }

// EstimatedDurationMinutes returns the quoted trip duration.
func (r *RideBooking) EstimatedDurationMinutes() float64 { return r.estimatedDurationMinutes }

// EstimatedArrival returns the quoted arrival time at the destination.
func (r *RideBooking) EstimatedArrival() time.Time { return r.estimatedArrival }

// CancellationWindowMinutes returns the penalty-free cancellation window.
func (r *RideBooking) CancellationWindowMinutes() int { return r.cancellationWindowMinutes }

// Currency returns the fare currency code.
func (r *RideBooking) Currency() string { return r.currency }

// CancellationPenalty returns the penalty charged, or nil if not cancelled.
func (r *RideBooking) CancellationPenalty() *float64 { return r.cancellationPenalty }

// CancellationReason returns the reason given on cancellation, if any.
func (r *RideBooking) CancellationReason() *string { return r.cancellationReason }

// CancelledAt returns the cancellation time.
func (r *RideBooking) CancelledAt() *time.Time { return r.cancelledAt }

// Notes returns the passenger's notes for the driver.
func (r *RideBooking) Notes() string { return r.notes }

// Version returns the entity version for optimistic locking.
func (r *RideBooking) Version() int64 { return r.version }

// CreatedAt returns the creation timestamp.
func (r *RideBooking) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (r *RideBooking) UpdatedAt() time.Time { return r.updatedAt }

// IsOwnedBy reports whether the ride belongs to passengerID.
func (r *RideBooking) IsOwnedBy(passengerID uuid.UUID) bool { return r.passengerID == passengerID }

// --- Behavior ---

// Cancel moves the ride to CANCELLED and records the penalty under policy.
// Terminal rides are rejected without any change.
func (r *RideBooking) Cancel(reason *string, policy CancellationPolicy, now time.Time) error {
	if !r.status.CanBeCancelled() {
		return domain.NewInvalidStateError(string(r.status), string(StatusCancelled))
	}

	reference := PickupReference(r.isInstant, r.createdAt, r.scheduledAt)
	penalty := policy.Penalty(reference, r.cancellationWindowMinutes, r.estimatedFare, now)

	now = now.UTC()
	r.status = StatusCancelled
	r.cancellationReason = reason
	r.cancellationPenalty = &penalty
	r.cancelledAt = &now
	r.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (r *RideBooking) IncrementVersion() {
	r.version++
}
