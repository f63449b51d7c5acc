package ride

import (
	"context"

	"github.com/google/uuid"
)

// RideRepository defines the persistence contract for ride bookings.
type RideRepository interface {
	// FindByID retrieves a ride by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*RideBooking, error)

	// FindByPassengerID retrieves a passenger's rides, newest first, with pagination.
	FindByPassengerID(ctx context.Context, passengerID uuid.UUID, page, limit int) ([]*RideBooking, int64, error)

	// FindOpenByPassengerID retrieves a passenger's rides that are not yet terminal.
	FindOpenByPassengerID(ctx context.Context, passengerID uuid.UUID) ([]*RideBooking, error)

	// ListAll retrieves all rides with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*RideBooking, int64, error)

	// CountByStatus returns ride counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// SumPenalties returns the total of all cancellation penalties (admin).
	SumPenalties(ctx context.Context) (float64, error)

	// Save persists a new ride.
	Save(ctx context.Context, ride *RideBooking) error

	// Update persists changes to an existing ride with optimistic locking.
	Update(ctx context.Context, ride *RideBooking) error
}
