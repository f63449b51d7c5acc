package place

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kilat-cab/service-ride/internal/domain/ride"
	"github.com/kilat-cab/service-ride/internal/platform/domain"
)

// PlaceStatus represents the lifecycle state of a saved place.
type PlaceStatus string

const (
	PlaceStatusActive   PlaceStatus = "active"
	PlaceStatusArchived PlaceStatus = "archived"
)

// SavedPlace is a named location in a passenger's address book.
type SavedPlace struct {
	id          uuid.UUID
	passengerID uuid.UUID
	label       string
	location    ride.LocationPoint
	status      PlaceStatus
	version     int64
	createdAt   time.Time
	updatedAt   time.Time
}

// NewSavedPlace creates a new active saved place.
func NewSavedPlace(passengerID uuid.UUID, label string, location ride.LocationPoint) (*SavedPlace, error) {
	if passengerID == uuid.Nil {
		return nil, domain.NewValidationError("passenger ID is required")
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, domain.NewValidationError("label is required")
	}
	if err := location.Validate("place"); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &SavedPlace{
		id:          uuid.New(),
		passengerID: passengerID,
		label:       label,
		location:    location,
		status:      PlaceStatusActive,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds a SavedPlace from persistence data (no validation).
func Reconstruct(
	id, passengerID uuid.UUID,
	label string,
	location ride.LocationPoint,
	status PlaceStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *SavedPlace {
	return &SavedPlace{
		id:          id,
		passengerID: passengerID,
		label:       label,
		location:    location,
		status:      status,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

func (p *SavedPlace) ID() uuid.UUID                { return p.id }
func (p *SavedPlace) PassengerID() uuid.UUID       { return p.passengerID }
func (p *SavedPlace) Label() string                { return p.label }
func (p *SavedPlace) Location() ride.LocationPoint { return p.location }
func (p *SavedPlace) Status() PlaceStatus          { return p.status }
func (p *SavedPlace) Version() int64               { return p.version }
func (p *SavedPlace) CreatedAt() time.Time         { return p.createdAt }
func (p *SavedPlace) UpdatedAt() time.Time         { return p.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the place belongs to the given passenger.
func (p *SavedPlace) IsOwnedBy(passengerID uuid.UUID) bool {
	return p.passengerID == passengerID
}

// IsActive returns true if the place has not been archived.
func (p *SavedPlace) IsActive() bool {
	return p.status == PlaceStatusActive
}

// Update replaces the label and/or location. A nil location keeps the current one.
func (p *SavedPlace) Update(label string, location *ride.LocationPoint) error {
	if location != nil {
		if err := location.Validate("place"); err != nil {
			return err
		}
		p.location = *location
	}
	if l := strings.TrimSpace(label); l != "" {
		p.label = l
	}
	p.version++
	p.updatedAt = time.Now().UTC()
	return nil
}

// Archive marks the place as archived.
func (p *SavedPlace) Archive() {
	p.status = PlaceStatusArchived
	p.version++
	p.updatedAt = time.Now().UTC()
}
