//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilat-cab/service-ride/internal/application"
	"github.com/kilat-cab/service-ride/internal/domain/events"
	"github.com/kilat-cab/service-ride/internal/platform/auth"
	"github.com/kilat-cab/service-ride/internal/platform/domain"
)

func bookingRequest(vehicle string) application.RideRequest {
	lat1, lng1 := 3.1579, 101.7116
	lat2, lng2 := 3.1340, 101.6869
	return application.RideRequest{
		PickupLocation:      application.LocationInput{Address: "KLCC", Latitude: &lat1, Longitude: &lng1},
		DestinationLocation: application.LocationInput{Address: "KL Sentral", Latitude: &lat2, Longitude: &lng2},
		Stops:               []application.LocationInput{{Address: "Bukit Bintang"}},
		VehicleType:         vehicle,
	}
}

// TestBookRide_PersistsAndPublishes books a ride through the real repositories,
// reloads it and checks the ride.booked event on ride.events.
func TestBookRide_PersistsAndPublishes(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRideStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ctx := context.Background()
	passenger := seedPassenger(t, stack.Users)

	booked, err := stack.Rides.BookRide(ctx, passenger.ID(), bookingRequest("PREMIUM"))
	require.NoError(t, err)

	stored, err := stack.RideRepo.FindByID(ctx, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, "PENDING_DRIVER", stored.Status().String())
	assert.Len(t, stored.Stops(), 1)
	assert.Equal(t, booked.EstimatedFare, stored.EstimatedFare())
	assert.GreaterOrEqual(t, stored.EstimatedDistanceKm(), 1.0)

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicRideEvents, events.RideBooked, 15*time.Second)
	var evt events.RideBookedEvent
	require.NoError(t, ce.ParseData(&evt))
	assert.Equal(t, booked.ID, evt.RideID)
	assert.Equal(t, 1, evt.StopCount)

	cancelled, err := stack.Rides.CancelRide(ctx, booked.ID, passenger.ID(), auth.RolePassenger, "")
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", cancelled.Status)

	_, err = stack.Rides.CancelRide(ctx, booked.ID, passenger.ID(), auth.RolePassenger, "")
	assert.True(t, domain.IsInvalidState(err))

	stats, err := stack.Rides.GetRideStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ByStatus["CANCELLED"])
	assert.Equal(t, cancelled.Penalty, stats.TotalPenalties)
}

// TestAccountDeleted_CancelsOpenRides verifies that a user.account_deleted
// event cancels every open ride of the passenger.
func TestAccountDeleted_CancelsOpenRides(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRideStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	passenger := seedPassenger(t, stack.Users)
	instant, err := stack.Rides.BookRide(ctx, passenger.ID(), bookingRequest("ECONOMY"))
	require.NoError(t, err)

	scheduledReq := bookingRequest("SUV")
	at := time.Now().Add(3 * time.Hour)
	scheduledReq.ScheduledAt = &at
	scheduled, err := stack.Rides.BookRide(ctx, passenger.ID(), scheduledReq)
	require.NoError(t, err)
	assert.Equal(t, "SCHEDULED", scheduled.Status)

	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	publishTestEvent(t, infra.KafkaBrokers, events.TopicUserEvents, "service-identity",
		events.UserAccountDeleted, events.UserAccountDeletedEvent{
			UserID:     passenger.ID(),
			DeletedAt:  time.Now().UTC(),
			OccurredAt: time.Now().UTC(),
		})

	first := waitForRideStatus(t, infra.DB, instant.ID, "CANCELLED", 15*time.Second)
	require.NotNil(t, first.CancellationPenalty)
	assert.Equal(t, 5.0, *first.CancellationPenalty)

	second := waitForRideStatus(t, infra.DB, scheduled.ID, "CANCELLED", 15*time.Second)
	require.NotNil(t, second.CancellationPenalty)
	assert.Zero(t, *second.CancellationPenalty)
	require.NotNil(t, second.CancellationReason)
	assert.Equal(t, "passenger account deleted", *second.CancellationReason)

	consumeOneEvent(t, infra.KafkaBrokers, events.TopicRideEvents, events.RideCancelled, 15*time.Second)
}
