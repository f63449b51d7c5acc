package ride

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilat-cab/service-ride/internal/platform/domain"
)

func bookAt(t *testing.T, scheduledAt *time.Time, created time.Time) *RideBooking {
	t.Helper()
	e := newTestEstimator()
	route := samePlaceRoute(0)
	est, err := e.Estimate(EstimateInput{Route: route, VehicleType: VehicleEconomy, ScheduledAt: scheduledAt}, created)
	require.NoError(t, err)

	r, err := NewRideBooking(uuid.New(), route, VehicleEconomy, est, scheduledAt, "", created)
	require.NoError(t, err)
	return r
}

func TestNewRideBooking_Status(t *testing.T) {
	instant := bookAt(t, nil, testNow)
	assert.Equal(t, StatusPendingDriver, instant.Status())
	assert.True(t, instant.IsInstant())
	assert.NotNil(t, instant.Stops())

	at := testNow.Add(2 * time.Hour)
	scheduled := bookAt(t, &at, testNow)
	assert.Equal(t, StatusScheduled, scheduled.Status())
	assert.False(t, scheduled.IsInstant())
	assert.Equal(t, 30, scheduled.CancellationWindowMinutes())
	assert.Nil(t, scheduled.CancellationPenalty())
}

func TestNewRideBooking_Validation(t *testing.T) {
	est := Estimate{DistanceKm: 1, DurationMinutes: 10, Fare: 6.35, Arrival: testNow}
	route := samePlaceRoute(0)

	_, err := NewRideBooking(uuid.Nil, route, VehicleEconomy, est, nil, "", testNow)
	assert.True(t, domain.IsValidation(err))

	_, err = NewRideBooking(uuid.New(), Route{Destination: route.Destination}, VehicleEconomy, est, nil, "", testNow)
	assert.True(t, domain.IsValidation(err))

	bad := route
	bad.Pickup.Latitude = ptr(91.0)
	_, err = NewRideBooking(uuid.New(), bad, VehicleEconomy, est, nil, "", testNow)
	assert.True(t, domain.IsValidation(err))

	_, err = NewRideBooking(uuid.New(), route, "BUS", est, nil, "", testNow)
	assert.True(t, domain.IsValidation(err))

	_, err = NewRideBooking(uuid.New(), route, VehicleEconomy, Estimate{DistanceKm: 0, DurationMinutes: 10, Fare: 1}, nil, "", testNow)
	assert.True(t, domain.IsValidation(err))
}

func TestCancel_InstantRideInsideWindow(t *testing.T) {
	r := bookAt(t, nil, testNow)
	reason := "changed my mind"

	require.NoError(t, r.Cancel(&reason, DefaultCancellationPolicy(), testNow.Add(time.Minute)))

	assert.Equal(t, StatusCancelled, r.Status())
	require.NotNil(t, r.CancellationPenalty())
	assert.Equal(t, 5.0, *r.CancellationPenalty()) // max(5, 6.35*0.15)
	assert.Equal(t, &reason, r.CancellationReason())
	require.NotNil(t, r.CancelledAt())
	assert.Equal(t, testNow.Add(time.Minute), *r.CancelledAt())
}

func TestCancel_PenaltyScalesWithFare(t *testing.T) {
	r := ReconstructRideBooking(
		uuid.New(), uuid.New(), samePlaceRoute(0), VehicleExecutive, StatusPendingDriver,
		nil, true, 100, 50, 94, testNow.Add(94*time.Minute), 5, "USD",
		nil, nil, nil, "", 1, testNow, testNow,
	)

	require.NoError(t, r.Cancel(nil, DefaultCancellationPolicy(), testNow))
	assert.Equal(t, 15.0, *r.CancellationPenalty())
	assert.Nil(t, r.CancellationReason())
}

func TestCancel_ScheduledRide(t *testing.T) {
	at := testNow.Add(time.Hour)

	t.Run("outside window is free", func(t *testing.T) {
		r := bookAt(t, &at, testNow)
		require.NoError(t, r.Cancel(nil, DefaultCancellationPolicy(), testNow.Add(10*time.Minute)))
		require.NotNil(t, r.CancellationPenalty())
		assert.Equal(t, 0.0, *r.CancellationPenalty())
	})

	t.Run("exactly at window boundary is free", func(t *testing.T) {
		r := bookAt(t, &at, testNow)
		require.NoError(t, r.Cancel(nil, DefaultCancellationPolicy(), at.Add(-30*time.Minute)))
		assert.Equal(t, 0.0, *r.CancellationPenalty())
	})

	t.Run("inside window is charged", func(t *testing.T) {
		r := bookAt(t, &at, testNow)
		require.NoError(t, r.Cancel(nil, DefaultCancellationPolicy(), at.Add(-20*time.Minute)))
		assert.Equal(t, 5.0, *r.CancellationPenalty())
	})
}

func TestCancel_ScheduledWithoutTimeFallsBackToCreatedAt(t *testing.T) {
	r := ReconstructRideBooking(
		uuid.New(), uuid.New(), samePlaceRoute(0), VehicleEconomy, StatusScheduled,
		nil, false, 40, 10, 19, testNow, 30, "USD",
		nil, nil, nil, "", 1, testNow, testNow,
	)
	require.NoError(t, r.Cancel(nil, DefaultCancellationPolicy(), testNow))
	assert.Equal(t, 6.0, *r.CancellationPenalty())
}

func TestCancel_TerminalRidesAreRejected(t *testing.T) {
	for _, status := range []RideStatus{StatusCancelled, StatusCompleted} {
		r := ReconstructRideBooking(
			uuid.New(), uuid.New(), samePlaceRoute(0), VehicleEconomy, status,
			nil, true, 6.35, 1, 10, testNow, 5, "USD",
			nil, nil, nil, "", 3, testNow, testNow,
		)
		reason := "again"

		err := r.Cancel(&reason, DefaultCancellationPolicy(), testNow)

		assert.True(t, domain.IsInvalidState(err), string(status))
		assert.Equal(t, status, r.Status())
		assert.Nil(t, r.CancellationPenalty())
		assert.Nil(t, r.CancellationReason())
		assert.Nil(t, r.CancelledAt())
		assert.Equal(t, int64(3), r.Version())
		assert.Equal(t, testNow, r.UpdatedAt())
	}
}

func TestRideStatus(t *testing.T) {
	assert.True(t, StatusDriverAssigned.CanBeCancelled())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.False(t, StatusScheduled.IsTerminal())

	_, err := ParseRideStatus("LOST")
	assert.Error(t, err)

	vt, err := ParseVehicleType(" suv ")
	require.NoError(t, err)
	assert.Equal(t, VehicleSUV, vt)
}

func TestPickupReference(t *testing.T) {
	at := testNow.Add(time.Hour)
	assert.Equal(t, testNow, PickupReference(true, testNow, &at))
	assert.Equal(t, at, PickupReference(false, testNow, &at))
	assert.Equal(t, testNow, PickupReference(false, testNow, nil))
}
