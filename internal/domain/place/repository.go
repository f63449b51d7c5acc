package place

import (
	"context"

	"github.com/google/uuid"
)

// PlaceRepository defines persistence operations for saved places.
type PlaceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SavedPlace, error)
	FindByPassengerID(ctx context.Context, passengerID uuid.UUID) ([]*SavedPlace, error)
	Save(ctx context.Context, place *SavedPlace) error
	Update(ctx context.Context, place *SavedPlace) error
}
