package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rideDomain "github.com/kilat-cab/service-ride/internal/domain/ride"
	"github.com/kilat-cab/service-ride/internal/platform/domain"
)

func TestRideModel_RoundTripKeepsRouteAndCancellation(t *testing.T) {
	lat, lng := 3.1579, 101.7116
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	route := rideDomain.Route{
		Pickup:      rideDomain.LocationPoint{Address: "KLCC", Latitude: &lat, Longitude: &lng, Note: "lobby"},
		Destination: rideDomain.LocationPoint{Address: "KL Sentral"},
	}
	est := rideDomain.Estimate{DistanceKm: 3, DurationMinutes: 10, Fare: 8.05, Arrival: now.Add(10 * time.Minute), CancellationWindowMinutes: 5}

	rd, err := rideDomain.NewRideBooking(uuid.New(), route, rideDomain.VehicleEconomy, est, nil, "", now)
	require.NoError(t, err)
	require.NoError(t, rd.Cancel(nil, rideDomain.DefaultCancellationPolicy(), now))

	model, err := toRideModel(rd)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(model.Stops))

	back, err := toDomainRide(model)
	require.NoError(t, err)
	assert.Equal(t, rd.Route(), back.Route())
	assert.Equal(t, rideDomain.StatusCancelled, back.Status())
	require.NotNil(t, back.CancellationPenalty())
	assert.Equal(t, 5.0, *back.CancellationPenalty())
	assert.Equal(t, domain.CurrencyUSD, back.Currency())
}

func TestToDomainRide_RejectsUnknownStatus(t *testing.T) {
	model := &RideModel{
		PickupLocation:      []byte(`{"address":"a"}`),
		DestinationLocation: []byte(`{"address":"b"}`),
		Stops:               []byte(`[]`),
		Status:              "TELEPORTED",
	}
	_, err := toDomainRide(model)
	assert.Error(t, err)
}
