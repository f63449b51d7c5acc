package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	rideDomain "github.com/kilat-cab/service-ride/internal/domain/ride"
	"github.com/kilat-cab/service-ride/internal/platform/domain"
)

// RideModel is the GORM model for the ride_bookings table.
type RideModel struct {
	ID                        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PassengerID               uuid.UUID       `gorm:"type:uuid;index;not null"`
	PickupLocation            json.RawMessage `gorm:"type:jsonb;not null"`
	DestinationLocation       json.RawMessage `gorm:"type:jsonb;not null"`
	Stops                     json.RawMessage `gorm:"type:jsonb;not null"`
	VehicleType               string          `gorm:"not null;size:20"`
	ScheduledAt               *time.Time      `gorm:""`
	IsInstant                 bool            `gorm:"not null"`
	Status                    string          `gorm:"not null;size:30;index"`
	EstimatedFare             float64         `gorm:"type:numeric(10,2);not null"`
	EstimatedDistanceKm       float64         `gorm:"type:numeric(10,2);not null"`
	EstimatedDurationMinutes  float64         `gorm:"type:numeric(10,2);not null"`
	EstimatedArrival          time.Time       `gorm:"not null"`
	CancellationWindowMinutes int             `gorm:"not null"`
	CancellationPenalty       *float64        `gorm:"type:numeric(10,2)"`
	CancellationReason        *string         `gorm:"size:500"`
	CancelledAt               *time.Time      `gorm:""`
	Currency                  string          `gorm:"not null;size:3;default:'USD'"`
	Notes                     string          `gorm:"size:1000"`
	Version                   int64           `gorm:"not null;default:1"`
	CreatedAt                 time.Time       `gorm:"not null"`
	UpdatedAt                 time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RideModel) TableName() string {
	return "ride_bookings"
}

// GormRideRepository is the GORM-based implementation of RideRepository.
type GormRideRepository struct {
	db *gorm.DB
}

// NewGormRideRepository creates a new GormRideRepository.
func NewGormRideRepository(db *gorm.DB) *GormRideRepository {
	return &GormRideRepository{db: db}
}

// FindByID retrieves a ride by its unique identifier.
func (r *GormRideRepository) FindByID(ctx context.Context, id uuid.UUID) (*rideDomain.RideBooking, error) {
	var model RideModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("RideBooking", id.String())
		}
		return nil, fmt.Errorf("failed to find ride by ID: %w", err)
	}
	return toDomainRide(&model)
}

// FindByPassengerID retrieves a passenger's rides with pagination, newest first.
func (r *GormRideRepository) FindByPassengerID(ctx context.Context, passengerID uuid.UUID, page, limit int) ([]*rideDomain.RideBooking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&RideModel{}).Where("passenger_id = ?", passengerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count passenger rides: %w", err)
	}

	var models []RideModel
	if err := r.db.WithContext(ctx).
		Where("passenger_id = ?", passengerID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find passenger rides: %w", err)
	}

	rides, err := toDomainRides(models)
	if err != nil {
		return nil, 0, err
	}
	return rides, total, nil
}

// FindOpenByPassengerID retrieves a passenger's rides that are not yet terminal.
func (r *GormRideRepository) FindOpenByPassengerID(ctx context.Context, passengerID uuid.UUID) ([]*rideDomain.RideBooking, error) {
	var models []RideModel
	if err := r.db.WithContext(ctx).
		Where("passenger_id = ? AND status NOT IN ?", passengerID,
			[]string{rideDomain.StatusCompleted.String(), rideDomain.StatusCancelled.String()}).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find open rides: %w", err)
	}
	return toDomainRides(models)
}

// ListAll retrieves all rides with pagination (admin).
func (r *GormRideRepository) ListAll(ctx context.Context, page, limit int) ([]*rideDomain.RideBooking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&RideModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count rides: %w", err)
	}

	var models []RideModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list rides: %w", err)
	}

	rides, err := toDomainRides(models)
	if err != nil {
		return nil, 0, err
	}
	return rides, total, nil
}

// CountByStatus returns ride counts grouped by status (admin).
func (r *GormRideRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&RideModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// SumPenalties returns the total of all recorded cancellation penalties (admin).
func (r *GormRideRepository) SumPenalties(ctx context.Context) (float64, error) {
	var total float64
	if err := r.db.WithContext(ctx).Model(&RideModel{}).
		Select("COALESCE(SUM(cancellation_penalty), 0)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum penalties: %w", err)
	}
	return total, nil
}

// Save persists a new ride.
func (r *GormRideRepository) Save(ctx context.Context, rd *rideDomain.RideBooking) error {
	model, err := toRideModel(rd)
	if err != nil {
		return fmt.Errorf("failed to convert ride to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("ride already exists")
		}
		return fmt.Errorf("failed to save ride: %w", err)
	}
	return nil
}

// Update persists changes to an existing ride with optimistic locking.
func (r *GormRideRepository) Update(ctx context.Context, rd *rideDomain.RideBooking) error {
	model, err := toRideModel(rd)
	if err != nil {
		return fmt.Errorf("failed to convert ride to model: %w", err)
	}

	// IncrementVersion has already been called on the aggregate.
	expectedVersion := rd.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&RideModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":               model.Status,
			"pickup_location":      model.PickupLocation,
			"destination_location": model.DestinationLocation,
			"stops":                model.Stops,
			"cancellation_penalty": model.CancellationPenalty,
			"cancellation_reason":  model.CancellationReason,
			"cancelled_at":         model.CancelledAt,
			"notes":                model.Notes,
			"version":              model.Version,
			"updated_at":           model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update ride: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("ride was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toRideModel(rd *rideDomain.RideBooking) (*RideModel, error) {
	pickupJSON, err := json.Marshal(rd.PickupLocation())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pickup location: %w", err)
	}

	destinationJSON, err := json.Marshal(rd.DestinationLocation())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal destination location: %w", err)
	}

	stops := rd.Stops()
	if stops == nil {
		stops = []rideDomain.LocationPoint{}
	}
	stopsJSON, err := json.Marshal(stops)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stops: %w", err)
	}

	return &RideModel{
		ID:                        rd.ID(),
		PassengerID:               rd.PassengerID(),
		PickupLocation:            pickupJSON,
		DestinationLocation:       destinationJSON,
		Stops:                     stopsJSON,
		VehicleType:               string(rd.VehicleType()),
		ScheduledAt:               rd.ScheduledAt(),
		IsInstant:                 rd.IsInstant(),
		Status:                    rd.Status().String(),
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
	}, nil
}

func toDomainRide(m *RideModel) (*rideDomain.RideBooking, error) {
	var route rideDomain.Route
	if err := json.Unmarshal(m.PickupLocation, &route.Pickup); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pickup location: %w", err)
	}
	if err := json.Unmarshal(m.DestinationLocation, &route.Destination); err != nil {
		return nil, fmt.Errorf("failed to unmarshal destination location: %w", err)
	}
	route.Stops = []rideDomain.LocationPoint{}
	if len(m.Stops) > 0 {
		if err := json.Unmarshal(m.Stops, &route.Stops); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stops: %w", err)
		}
	}

	status, err := rideDomain.ParseRideStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return rideDomain.ReconstructRideBooking(
		m.ID,
		m.PassengerID,
		route,
		rideDomain.VehicleType(m.VehicleType),
		status,
		m.ScheduledAt,
		m.IsInstant,
		m.EstimatedFare,
		m.EstimatedDistanceKm,
		m.EstimatedDurationMinutes,
		m.EstimatedArrival,
		m.CancellationWindowMinutes,
		m.Currency,
		m.CancellationPenalty,
		m.CancellationReason,
		m.CancelledAt,
		m.Notes,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainRides(models []RideModel) ([]*rideDomain.RideBooking, error) {
	rides := make([]*rideDomain.RideBooking, len(models))
	for i := range models {
		rd, err := toDomainRide(&models[i])
		if err != nil {
			return nil, err
		}
		rides[i] = rd
	}
	return rides, nil
}
