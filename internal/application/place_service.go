package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	placeDomain "github.com/kilat-cab/service-ride/internal/domain/place"
	rideDomain "github.com/kilat-cab/service-ride/internal/domain/ride"
	"github.com/kilat-cab/service-ride/internal/platform/domain"
)

// CreatePlaceRequest is the request DTO for saving a place.
type CreatePlaceRequest struct {
	Label     string   `json:"label" binding:"required,max=100"`
	Address   string   `json:"address" binding:"required,max=500"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Note      string   `json:"note" binding:"max=500"`
}

// UpdatePlaceRequest is a partial update of a saved place. The location is
// replaced only when an address is given.
type UpdatePlaceRequest struct {
	Label     string   `json:"label" binding:"max=100"`
	Address   string   `json:"address" binding:"max=500"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Note      string   `json:"note" binding:"max=500"`
}

// PlaceDTO is the API response representation of a saved place.
type PlaceDTO struct {
	ID          uuid.UUID                `json:"id"`
	PassengerID uuid.UUID                `json:"passenger_id"`
	Label       string                   `json:"label"`
	Location    rideDomain.LocationPoint `json:"location"`
	Status      string                   `json:"status"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// PlaceService manages a passenger's saved places.
type PlaceService struct {
	repo   placeDomain.PlaceRepository
	logger *zap.Logger
}

// NewPlaceService creates a new PlaceService.
func NewPlaceService(repo placeDomain.PlaceRepository, logger *zap.Logger) *PlaceService {
	return &PlaceService{repo: repo, logger: logger}
}

// CreatePlace saves a new place for the passenger.
func (s *PlaceService) CreatePlace(ctx context.Context, passengerID uuid.UUID, req CreatePlaceRequest) (*PlaceDTO, error) {
	loc := rideDomain.LocationPoint{
		Address:   strings.TrimSpace(req.Address),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Note:      req.Note,
	}

	p, err := placeDomain.NewSavedPlace(passengerID, req.Label, loc)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, p); err != nil {
		s.logger.Error("failed to save place", zap.Error(err))
		return nil, fmt.Errorf("failed to save place: %w", err)
	}

	s.logger.Info("place saved",
		zap.String("place_id", p.ID().String()),
		zap.String("passenger_id", passengerID.String()),
	)
	result := toPlaceDTO(p)
	return &result, nil
}

// ListMyPlaces returns the passenger's active places.
func (s *PlaceService) ListMyPlaces(ctx context.Context, passengerID uuid.UUID) ([]PlaceDTO, error) {
	places, err := s.repo.FindByPassengerID(ctx, passengerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get places: %w", err)
	}
	dtos := make([]PlaceDTO, len(places))
	for i, p := range places {
		dtos[i] = toPlaceDTO(p)
	}
	return dtos, nil
}

// GetPlace returns a single place, verifying ownership.
func (s *PlaceService) GetPlace(ctx context.Context, passengerID, placeID uuid.UUID) (*PlaceDTO, error) {
	p, err := s.ownedPlace(ctx, passengerID, placeID)
	if err != nil {
		return nil, err
	}
	result := toPlaceDTO(p)
	return &result, nil
}

// UpdatePlace changes a place's label and/or location.
func (s *PlaceService) UpdatePlace(ctx context.Context, passengerID, placeID uuid.UUID, req UpdatePlaceRequest) (*PlaceDTO, error) {
	p, err := s.ownedPlace(ctx, passengerID, placeID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive() {
		return nil, domain.NewInvalidStateMessage("place is archived")
	}

	var loc *rideDomain.LocationPoint
	if addr := strings.TrimSpace(req.Address); addr != "" {
		loc = &rideDomain.LocationPoint{
			Address:   addr,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			Note:      req.Note,
		}
	}
	if err := p.Update(req.Label, loc); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.Error("failed to update place", zap.Error(err))
		return nil, fmt.Errorf("failed to update place: %w", err)
	}

	s.logger.Info("place updated", zap.String("place_id", placeID.String()))
	result := toPlaceDTO(p)
	return &result, nil
}

// ArchivePlace removes a place from the passenger's list.
func (s *PlaceService) ArchivePlace(ctx context.Context, passengerID, placeID uuid.UUID) error {
	p, err := s.ownedPlace(ctx, passengerID, placeID)
	if err != nil {
		return err
	}
	if !p.IsActive() {
		return nil
	}

	p.Archive()
	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.Error("failed to archive place", zap.Error(err))
		return fmt.Errorf("failed to archive place: %w", err)
	}

	s.logger.Info("place archived", zap.String("place_id", placeID.String()))
	return nil
}

func (s *PlaceService) ownedPlace(ctx context.Context, passengerID, placeID uuid.UUID) (*placeDomain.SavedPlace, error) {
	p, err := s.repo.FindByID(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(passengerID) {
		return nil, domain.NewForbiddenError("you do not own this place")
	}
	return p, nil
}

func toPlaceDTO(p *placeDomain.SavedPlace) PlaceDTO {
	return PlaceDTO{
		ID:          p.ID(),
		PassengerID: p.PassengerID(),
		Label:       p.Label(),
		Location:    p.Location(),
		Status:      string(p.Status()),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
}
