package ride

import "fmt"

// RideStatus represents the current state of a ride booking.
type RideStatus string

const (
	StatusPendingDriver  RideStatus = "PENDING_DRIVER"
	StatusScheduled      RideStatus = "SCHEDULED"
	StatusDriverAssigned RideStatus = "DRIVER_ASSIGNED"
	StatusInProgress     RideStatus = "IN_PROGRESS"
	StatusCompleted      RideStatus = "COMPLETED"
	StatusCancelled      RideStatus = "CANCELLED"
)

// validTransitions lists the transitions this service performs. Dispatch and
// trip progress are owned elsewhere, so only cancellation is modeled.
var validTransitions = map[RideStatus][]RideStatus{
	StatusPendingDriver:  {StatusCancelled},
	StatusScheduled:      {StatusCancelled},
	StatusDriverAssigned: {StatusCancelled},
	StatusInProgress:     {StatusCancelled},
	StatusCompleted:      {},
	StatusCancelled:      {},
}

// IsValid returns true if the status is a recognized ride status.
func (s RideStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s RideStatus) CanTransitionTo(target RideStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true for COMPLETED and CANCELLED.
func (s RideStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanBeCancelled returns true if the ride can be cancelled from this status.
func (s RideStatus) CanBeCancelled() bool {
	return s.CanTransitionTo(StatusCancelled)
}

// String returns the string representation of the status.
func (s RideStatus) String() string {
	return string(s)
}

// ParseRideStatus converts a string to a RideStatus, returning an error if invalid.
func ParseRideStatus(s string) (RideStatus, error) {
	status := RideStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid ride status: %s", s)
	}
	return status, nil
}
