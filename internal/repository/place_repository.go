package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	placeDomain "github.com/kilat-cab/service-ride/internal/domain/place"
	"github.com/kilat-cab/service-ride/internal/domain/ride"
	"github.com/kilat-cab/service-ride/internal/platform/domain"
)

// PlaceModel is the GORM model for the saved_places table.
type PlaceModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PassengerID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Label       string          `gorm:"type:varchar(100);not null"`
	Location    json.RawMessage `gorm:"type:jsonb;not null"`
	Status      string          `gorm:"type:varchar(20);not null;default:'active'"`
	Version     int64           `gorm:"not null;default:1"`
	CreatedAt   time.Time       `gorm:"type:timestamptz;not null"`
	UpdatedAt   time.Time       `gorm:"type:timestamptz;not null"`
}

func (PlaceModel) TableName() string { return "saved_places" }

// GormPlaceRepository implements PlaceRepository using GORM.
type GormPlaceRepository struct {
	db *gorm.DB
}

func NewGormPlaceRepository(db *gorm.DB) *GormPlaceRepository {
	return &GormPlaceRepository{db: db}
}

func (r *GormPlaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*placeDomain.SavedPlace, error) {
	var model PlaceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("SavedPlace", id.String())
		}
		return nil, err
	}
	return toPlaceDomain(&model)
}

func (r *GormPlaceRepository) FindByPassengerID(ctx context.Context, passengerID uuid.UUID) ([]*placeDomain.SavedPlace, error) {
	var models []PlaceModel
	if err := r.db.WithContext(ctx).
		Where("passenger_id = ? AND status = ?", passengerID, string(placeDomain.PlaceStatusActive)).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	places := make([]*placeDomain.SavedPlace, len(models))
	for i := range models {
		p, err := toPlaceDomain(&models[i])
		if err != nil {
			return nil, err
		}
		places[i] = p
	}
	return places, nil
}

func (r *GormPlaceRepository) Save(ctx context.Context, p *placeDomain.SavedPlace) error {
	model, err := toPlaceModel(p)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *GormPlaceRepository) Update(ctx context.Context, p *placeDomain.SavedPlace) error {
	model, err := toPlaceModel(p)
	if err != nil {
		return err
	}
	previousVersion := p.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&PlaceModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("place was modified by another transaction")
	}
	return nil
}

// --- Conversions ---

func toPlaceModel(p *placeDomain.SavedPlace) (*PlaceModel, error) {
	loc, err := json.Marshal(p.Location())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal place location: %w", err)
	}
	return &PlaceModel{
		ID:          p.ID(),
		PassengerID: p.PassengerID(),
		Label:       p.Label(),
		Location:    loc,
		Status:      string(p.Status()),
		Version:     p.Version(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}, nil
}

func toPlaceDomain(m *PlaceModel) (*placeDomain.SavedPlace, error) {
	var loc ride.LocationPoint
	if err := json.Unmarshal(m.Location, &loc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal place location: %w", err)
	}
	return placeDomain.Reconstruct(
		m.ID, m.PassengerID,
		m.Label,
		loc,
		placeDomain.PlaceStatus(m.Status),
		m.Version,
		m.CreatedAt, m.UpdatedAt,
	), nil
}
