package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kilat-cab/service-ride/internal/domain/events"
	placeDomain "github.com/kilat-cab/service-ride/internal/domain/place"
	rideDomain "github.com/kilat-cab/service-ride/internal/domain/ride"
	userDomain "github.com/kilat-cab/service-ride/internal/domain/user"
	"github.com/kilat-cab/service-ride/internal/platform/auth"
	"github.com/kilat-cab/service-ride/internal/platform/domain"
)

// LocationInput is a route point given inline or by reference to a saved place.
type LocationInput struct {
	PlaceID   *uuid.UUID `json:"place_id"`
	Address   string     `json:"address" binding:"max=500"`
	Latitude  *float64   `json:"latitude"`
	Longitude *float64   `json:"longitude"`
	Note      string     `json:"note" binding:"max=500"`
}

// RideRequest describes a ride to quote or book.
type RideRequest struct {
	PickupLocation        LocationInput   `json:"pickup_location"`
	DestinationLocation   LocationInput   `json:"destination_location"`
	Stops                 []LocationInput `json:"stops" binding:"max=10,dive"`
	VehicleType           string          `json:"vehicle_type" binding:"required,vehicle_type"`
	ScheduledAt           *time.Time      `json:"scheduled_at"`
	ManualDistanceKm      *float64        `json:"manual_distance_km"`
	ManualDurationMinutes *float64        `json:"manual_duration_minutes"`
	Notes                 string          `json:"notes" binding:"max=1000"`
}

// CancelRideRequest carries an optional cancellation reason.
type CancelRideRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// RebookRequest optionally moves the new ride to another time.
type RebookRequest struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// RideDTO is the response representation of a ride booking.
type RideDTO struct {
	ID                        uuid.UUID                  `json:"id"`
	PassengerID               uuid.UUID                  `json:"passenger_id"`
	PickupLocation            rideDomain.LocationPoint   `json:"pickup_location"`
	DestinationLocation       rideDomain.LocationPoint   `json:"destination_location"`
	Stops                     []rideDomain.LocationPoint `json:"stops"`
	VehicleType               string                     `json:"vehicle_type"`
	Status                    string                     `json:"status"`
	ScheduledAt               *time.Time                 `json:"scheduled_at,omitempty"`
	IsInstant                 bool                       `json:"is_instant"`
	EstimatedFare             float64                    `json:"estimated_fare"`
	EstimatedDistanceKm       float64                    `json:"estimated_distance_km"`
	EstimatedDurationMinutes  float64                    `json:"estimated_duration_minutes"`
	EstimatedArrival          time.Time                  `json:"estimated_arrival"`
	CancellationWindowMinutes int                        `json:"cancellation_window_minutes"`
	CancellationPenalty       *float64                   `json:"cancellation_penalty,omitempty"`
	CancellationReason        *string                    `json:"cancellation_reason,omitempty"`
	CancelledAt               *time.Time                 `json:"cancelled_at,omitempty"`
	Currency                  string                     `json:"currency"`
	Notes                     string                     `json:"notes,omitempty"`
	Version                   int64                      `json:"version"`
	CreatedAt                 time.Time                  `json:"created_at"`
	UpdatedAt                 time.Time                  `json:"updated_at"`
}

// EstimateDTO is a quote returned without booking.
type EstimateDTO struct {
	VehicleType string `json:"vehicle_type"`
	Currency    string `json:"currency"`
	rideDomain.Estimate
}

// CancellationDTO is the outcome of a cancellation.
type CancellationDTO struct {
	Status      string    `json:"status"`
	Penalty     float64   `json:"penalty"`
	CancelledAt time.Time `json:"cancelled_at"`
	Ride        RideDTO   `json:"ride"`
}

// RideStatsDTO holds ride statistics for the admin dashboard.
type RideStatsDTO struct {
	TotalRides     int64            `json:"total_rides"`
	ByStatus       map[string]int64 `json:"by_status"`
	TotalPenalties float64          `json:"total_penalties"`
}

// RideService is the application service orchestrating ride booking use cases.
type RideService struct {
	rides     rideDomain.RideRepository
	users     userDomain.UserRepository
	places    placeDomain.PlaceRepository
	estimator *rideDomain.Estimator
	policy    rideDomain.CancellationPolicy
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewRideService creates a new RideService.
func NewRideService(
	rides rideDomain.RideRepository,
	users userDomain.UserRepository,
	places placeDomain.PlaceRepository,
	estimator *rideDomain.Estimator,
	policy rideDomain.CancellationPolicy,
	publisher EventPublisher,
	logger *zap.Logger,
) *RideService {
	return &RideService{
		rides:     rides,
		users:     users,
		places:    places,
		estimator: estimator,
		policy:    policy,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// EstimateFare quotes a ride without booking it.
func (s *RideService) EstimateFare(ctx context.Context, passengerID uuid.UUID, req RideRequest) (*EstimateDTO, error) {
	input, err := s.buildEstimateInput(ctx, passengerID, req)
	if err != nil {
		return nil, err
	}

	est, err := s.estimator.Estimate(input, s.now())
	if err != nil {
		return nil, err
	}
	return &EstimateDTO{VehicleType: string(input.VehicleType), Currency: domain.CurrencyUSD, Estimate: est}, nil
}

// BookRide quotes and books a ride for an active passenger.
func (s *RideService) BookRide(ctx context.Context, passengerID uuid.UUID, req RideRequest) (*RideDTO, error) {
	if err := s.ensureActivePassenger(ctx, passengerID); err != nil {
		return nil, err
	}

	input, err := s.buildEstimateInput(ctx, passengerID, req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	est, err := s.estimator.Estimate(input, now)
	if err != nil {
		return nil, err
	}

	rd, err := rideDomain.NewRideBooking(passengerID, input.Route, input.VehicleType, est, req.ScheduledAt, req.Notes, now)
	if err != nil {
		return nil, err
	}

	if err := s.rides.Save(ctx, rd); err != nil {
		return nil, fmt.Errorf("failed to save ride: %w", err)
	}

	s.logger.Info("ride booked",
		zap.String("ride_id", rd.ID().String()),
		zap.String("passenger_id", passengerID.String()),
		zap.String("status", rd.Status().String()),
		zap.Float64("estimated_fare", rd.EstimatedFare()),
	)
	s.publishRideBooked(ctx, rd)

	result := toRideDTO(rd)
	return &result, nil
}

// CancelRide cancels a ride on behalf of its passenger or an admin.
func (s *RideService) CancelRide(ctx context.Context, rideID, actorID uuid.UUID, actorRole string, reason string) (*CancellationDTO, error) {
	rd, err := s.rides.FindByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !rd.IsOwnedBy(actorID) && actorRole != auth.RoleAdmin {
		return nil, domain.NewForbiddenError("ride does not belong to this user")
	}

	if err := s.cancel(ctx, rd, actorID, reason); err != nil {
		return nil, err
	}

	return &CancellationDTO{
		Status:      rd.Status().String(),
		Penalty:     *rd.CancellationPenalty(),
		CancelledAt: *rd.CancelledAt(),
		Ride:        toRideDTO(rd),
	}, nil
}

// CancelOpenRidesForPassenger cancels every non-terminal ride of a passenger
// and returns how many were cancelled.
func (s *RideService) CancelOpenRidesForPassenger(ctx context.Context, passengerID uuid.UUID, reason string) (int, error) {
	rides, err := s.rides.FindOpenByPassengerID(ctx, passengerID)
	if err != nil {
		return 0, fmt.Errorf("failed to load open rides: %w", err)
	}

	cancelled := 0
	for _, rd := range rides {
		if err := s.cancel(ctx, rd, passengerID, reason); err != nil {
			if domain.IsInvalidState(err) {
				continue
			}
			return cancelled, err
		}
		cancelled++
	}
	return cancelled, nil
}

// GetRide returns a ride visible to the caller.
func (s *RideService) GetRide(ctx context.Context, rideID, actorID uuid.UUID, actorRole string) (*RideDTO, error) {
	rd, err := s.rides.FindByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !rd.IsOwnedBy(actorID) && actorRole != auth.RoleAdmin {
		return nil, domain.NewForbiddenError("ride does not belong to this user")
	}
	result := toRideDTO(rd)
	return &result, nil
}

// ListMyRides returns a passenger's rides, newest first.
func (s *RideService) ListMyRides(ctx context.Context, passengerID uuid.UUID, page, limit int) (*domain.PaginatedResult[RideDTO], error) {
	rides, total, err := s.rides.FindByPassengerID(ctx, passengerID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]RideDTO, len(rides))
	for i, rd := range rides {
		dtos[i] = toRideDTO(rd)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// Rebook books a new ride over the route and vehicle of an earlier one.
func (s *RideService) Rebook(ctx context.Context, passengerID, rideID uuid.UUID, req RebookRequest) (*RideDTO, error) {
	original, err := s.rides.FindByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !original.IsOwnedBy(passengerID) {
		return nil, domain.NewForbiddenError("ride does not belong to this user")
	}

	stops := make([]LocationInput, len(original.Stops()))
	for i, stop := range original.Stops() {
		stops[i] = locationInputFrom(stop)
	}

	return s.BookRide(ctx, passengerID, RideRequest{
		PickupLocation:      locationInputFrom(original.PickupLocation()),
		DestinationLocation: locationInputFrom(original.DestinationLocation()),
		Stops:               stops,
		VehicleType:         string(original.VehicleType()),
		ScheduledAt:         req.ScheduledAt,
		Notes:               original.Notes(),
	})
}

// --- Admin methods ---

// ListAllRides returns a paginated list of all rides (admin).
func (s *RideService) ListAllRides(ctx context.Context, page, limit int) ([]RideDTO, int64, error) {
	rides, total, err := s.rides.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rides: %w", err)
	}

	dtos := make([]RideDTO, len(rides))
	for i, rd := range rides {
		dtos[i] = toRideDTO(rd)
	}
	return dtos, total, nil
}

// GetRideStats returns aggregate ride statistics (admin).
func (s *RideService) GetRideStats(ctx context.Context) (*RideStatsDTO, error) {
	counts, err := s.rides.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get ride stats: %w", err)
	}
	penalties, err := s.rides.SumPenalties(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum penalties: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &RideStatsDTO{
		TotalRides:     total,
		ByStatus:       counts,
		TotalPenalties: penalties,
	}, nil
}

// --- Helpers ---

func (s *RideService) ensureActivePassenger(ctx context.Context, passengerID uuid.UUID) error {
	passenger, err := s.users.FindByID(ctx, passengerID)
	if err != nil {
		return err
	}
	if passenger.IsDeleted() {
		return domain.NewNotFoundError("Passenger", passengerID.String())
	}
	if !passenger.IsActive() {
		return domain.NewInvalidStateMessage("passenger account is inactive")
	}
	return nil
}

func (s *RideService) cancel(ctx context.Context, rd *rideDomain.RideBooking, actorID uuid.UUID, reason string) error {
	var reasonPtr *string
	if r := strings.TrimSpace(reason); r != "" {
		reasonPtr = &r
	}

	if err := rd.Cancel(reasonPtr, s.policy, s.now()); err != nil {
		return err
	}

	rd.IncrementVersion()
	if err := s.rides.Update(ctx, rd); err != nil {
		return err
	}

	s.logger.Info("ride cancelled",
		zap.String("ride_id", rd.ID().String()),
		zap.String("cancelled_by", actorID.String()),
		zap.Float64("penalty", *rd.CancellationPenalty()),
	)

	evt := events.RideCancelledEvent{
		RideID:      rd.ID(),
		PassengerID: rd.PassengerID(),
		CancelledBy: actorID,
		Reason:      rd.CancellationReason(),
		Penalty:     *rd.CancellationPenalty(),
		Currency:    rd.Currency(),
		CancelledAt: *rd.CancelledAt(),
		OccurredAt:  time.Now().UTC(),
	}
	publishEvent(ctx, s.publisher, s.logger, events.TopicRideEvents, events.RideCancelled, rd.ID().String(), evt)
	return nil
}

func (s *RideService) buildEstimateInput(ctx context.Context, passengerID uuid.UUID, req RideRequest) (rideDomain.EstimateInput, error) {
	vehicleType, err := rideDomain.ParseVehicleType(req.VehicleType)
	if err != nil {
		return rideDomain.EstimateInput{}, domain.NewValidationError(err.Error())
	}

	pickup, err := s.resolveLocation(ctx, passengerID, req.PickupLocation)
	if err != nil {
		return rideDomain.EstimateInput{}, err
	}
	destination, err := s.resolveLocation(ctx, passengerID, req.DestinationLocation)
	if err != nil {
		return rideDomain.EstimateInput{}, err
	}
	stops := make([]rideDomain.LocationPoint, 0, len(req.Stops))
	for _, in := range req.Stops {
		stop, err := s.resolveLocation(ctx, passengerID, in)
		if err != nil {
			return rideDomain.EstimateInput{}, err
		}
		stops = append(stops, stop)
	}

	route := rideDomain.Route{Pickup: pickup, Stops: stops, Destination: destination}
	if err := route.Validate(); err != nil {
		return rideDomain.EstimateInput{}, err
	}

	var overrides *rideDomain.Overrides
	if req.ManualDistanceKm != nil || req.ManualDurationMinutes != nil {
		overrides = &rideDomain.Overrides{
			DistanceKm:      req.ManualDistanceKm,
			DurationMinutes: req.ManualDurationMinutes,
		}
	}

	return rideDomain.EstimateInput{
		Route:       route,
		VehicleType: vehicleType,
		Overrides:   overrides,
		ScheduledAt: req.ScheduledAt,
	}, nil
}

func (s *RideService) resolveLocation(ctx context.Context, passengerID uuid.UUID, in LocationInput) (rideDomain.LocationPoint, error) {
	if in.PlaceID == nil {
		return rideDomain.LocationPoint{
			Address:   strings.TrimSpace(in.Address),
			Latitude:  in.Latitude,
			Longitude: in.Longitude,
			Note:      in.Note,
		}, nil
	}

	p, err := s.places.FindByID(ctx, *in.PlaceID)
	if err != nil {
		return rideDomain.LocationPoint{}, err
	}
	if !p.IsOwnedBy(passengerID) || !p.IsActive() {
		return rideDomain.LocationPoint{}, domain.NewNotFoundError("SavedPlace", in.PlaceID.String())
	}

	loc := p.Location()
	if in.Note != "" {
		loc.Note = in.Note
	}
	return loc, nil
}

func locationInputFrom(p rideDomain.LocationPoint) LocationInput {
	return LocationInput{
		Address:   p.Address,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Note:      p.Note,
	}
}

func (s *RideService) publishRideBooked(ctx context.Context, rd *rideDomain.RideBooking) {
	evt := events.RideBookedEvent{
		RideID:                    rd.ID(),
		PassengerID:               rd.PassengerID(),
		VehicleType:               string(rd.VehicleType()),
		Status:                    rd.Status().String(),
		IsInstant:                 rd.IsInstant(),
		ScheduledAt:               rd.ScheduledAt(),
		PickupAddress:             rd.PickupLocation().Address,
		DestinationAddress:        rd.DestinationLocation().Address,
		StopCount:                 len(rd.Stops()),
		EstimatedFare:             rd.EstimatedFare(),
		EstimatedDistanceKm:       rd.EstimatedDistanceKm(),
		EstimatedDurationMinutes:  rd.EstimatedDurationMinutes(),
		EstimatedArrival:          rd.EstimatedArrival(),
		CancellationWindowMinutes: rd.CancellationWindowMinutes(),
		Currency:                  rd.Currency(),
		OccurredAt:                time.Now().UTC(),
	}
	publishEvent(ctx, s.publisher, s.logger, events.TopicRideEvents, events.RideBooked, rd.ID().String(), evt)
}

func toRideDTO(rd *rideDomain.RideBooking) RideDTO {
	return RideDTO{
		ID:                        rd.ID(),
		PassengerID:               rd.PassengerID(),
		PickupLocation:            rd.PickupLocation(),
		DestinationLocation:       rd.DestinationLocation(),
		Stops:                     rd.Stops(),
		VehicleType:               string(rd.VehicleType()),
		Status:                    rd.Status().String(),
		ScheduledAt:               rd.ScheduledAt(),
		IsInstant:                 rd.IsInstant(),
		EstimatedFare:             rd.EstimatedFare(),
		EstimatedDistanceKm:       rd.EstimatedDistanceKm(),
		EstimatedDurationMinutes:  rd.EstimatedDurationMinutes(),
		EstimatedArrival:          rd.EstimatedArrival(),
		CancellationWindowMinutes: rd.CancellationWindowMinutes(),
		CancellationPenalty:       rd.CancellationPenalty(),
		CancellationReason:        rd.CancellationReason(),
		CancelledAt:               rd.CancelledAt(),
		Currency:                  rd.Currency(),
		Notes:                     rd.Notes(),
		Version:                   rd.Version(),
		CreatedAt:                 rd.CreatedAt(),
		UpdatedAt:                 rd.UpdatedAt(),
	}
}
