package ride

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilat-cab/service-ride/internal/platform/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func point(address string, lat, lng float64) LocationPoint {
	return LocationPoint{Address: address, Latitude: ptr(lat), Longitude: ptr(lng)}
}

func newTestEstimator() *Estimator {
	return NewEstimator(DefaultEstimatorConfig(), NewStandardFareStrategy(DefaultPricingTable()))
}

func samePlaceRoute(stops int) Route {
	r := Route{
		Pickup:      point("1 Main St", 40.7128, -74.0060),
		Destination: point("1 Main St", 40.7128, -74.0060),
	}
	for i := 0; i < stops; i++ {
		r.Stops = append(r.Stops, point("1 Main St", 40.7128, -74.0060))
	}
	return r
}

func TestHaversine_Symmetric(t *testing.T) {
	pairs := [][4]float64{
		{40.7128, -74.0060, 34.0522, -118.2437},
		{51.5074, -0.1278, 48.8566, 2.3522},
		{-33.8688, 151.2093, 35.6762, 139.6503},
		{0, 0, 0, 0},
	}
	for _, p := range pairs {
		ab := Haversine(p[0], p[1], p[2], p[3], 6371)
		ba := Haversine(p[2], p[3], p[0], p[1], 6371)
		assert.InDelta(t, ab, ba, 1e-9)
	}
}

func TestHaversine_OneDegreeOfLongitudeAtEquator(t *testing.T) {
	assert.InDelta(t, 111.195, Haversine(0, 0, 0, 1, 6371), 0.001)
}

func TestEstimate_MinimumEconomyFare(t *testing.T) {
	est, err := newTestEstimator().Estimate(EstimateInput{
		Route:       samePlaceRoute(0),
		VehicleType: VehicleEconomy,
	}, testNow)
	require.NoError(t, err)

	assert.Equal(t, 1.0, est.DistanceKm)
	assert.Equal(t, 10.0, est.DurationMinutes)
	assert.Equal(t, 6.35, est.Fare)
	assert.False(t, est.IsScheduled)
	assert.Equal(t, 5, est.CancellationWindowMinutes)
	assert.Equal(t, testNow.Add(10*time.Minute), est.Arrival)
}

func TestEstimate_PricingTable(t *testing.T) {
	cases := map[VehicleType]float64{
		VehicleEconomy:   6.35,
		VehiclePremium:   4.00 + 1.15 + 4.20,
		VehicleSUV:       4.50 + 1.30 + 4.80,
		VehicleExecutive: 6.00 + 1.60 + 6.00,
	}
	for vt, want := range cases {
		est, err := newTestEstimator().Estimate(EstimateInput{Route: samePlaceRoute(0), VehicleType: vt}, testNow)
		require.NoError(t, err)
		assert.InDelta(t, want, est.Fare, 0.001, string(vt))
	}
}

func TestEstimate_EachStopAddsSurcharge(t *testing.T) {
	e := newTestEstimator()
	none, err := e.Estimate(EstimateInput{Route: samePlaceRoute(0), VehicleType: VehicleEconomy}, testNow)
	require.NoError(t, err)
	one, err := e.Estimate(EstimateInput{Route: samePlaceRoute(1), VehicleType: VehicleEconomy}, testNow)
	require.NoError(t, err)
	two, err := e.Estimate(EstimateInput{Route: samePlaceRoute(2), VehicleType: VehicleEconomy}, testNow)
	require.NoError(t, err)

	assert.InDelta(t, 1.25, one.Fare-none.Fare, 1e-9)
	assert.InDelta(t, 1.25, two.Fare-one.Fare, 1e-9)
}

func TestEstimate_ScheduledRide(t *testing.T) {
	e := newTestEstimator()
	pickupAt := testNow.Add(time.Hour)

	instant, err := e.Estimate(EstimateInput{Route: samePlaceRoute(0), VehicleType: VehicleEconomy}, testNow)
	require.NoError(t, err)
	scheduled, err := e.Estimate(EstimateInput{
		Route:       samePlaceRoute(0),
		VehicleType: VehicleEconomy,
		ScheduledAt: &pickupAt,
	}, testNow)
	require.NoError(t, err)

	assert.True(t, scheduled.IsScheduled)
	assert.InDelta(t, 1.50, scheduled.Fare-instant.Fare, 1e-9)
	assert.Equal(t, 30, scheduled.CancellationWindowMinutes)
	assert.Equal(t, pickupAt.Add(10*time.Minute), scheduled.Arrival)
}

func TestEstimate_ScheduleThreshold(t *testing.T) {
	e := newTestEstimator()

	t.Run("exactly five minutes ahead is instant", func(t *testing.T) {
		at := testNow.Add(5 * time.Minute)
		est, err := e.Estimate(EstimateInput{Route: samePlaceRoute(0), VehicleType: VehicleEconomy, ScheduledAt: &at}, testNow)
		require.NoError(t, err)
		assert.False(t, est.IsScheduled)
		assert.Equal(t, 6.35, est.Fare)
		assert.Equal(t, 5, est.CancellationWindowMinutes)
		// A near-future time is still the arrival base.
		assert.Equal(t, at.Add(10*time.Minute), est.Arrival)
	})

	t.Run("just over five minutes is scheduled", func(t *testing.T) {
		at := testNow.Add(5*time.Minute + time.Second)
		est, err := e.Estimate(EstimateInput{Route: samePlaceRoute(0), VehicleType: VehicleEconomy, ScheduledAt: &at}, testNow)
		require.NoError(t, err)
		assert.True(t, est.IsScheduled)
	})

	t.Run("past time is instant from now", func(t *testing.T) {
		at := testNow.Add(-time.Hour)
		est, err := e.Estimate(EstimateInput{Route: samePlaceRoute(0), VehicleType: VehicleEconomy, ScheduledAt: &at}, testNow)
		require.NoError(t, err)
		assert.False(t, est.IsScheduled)
		assert.Equal(t, testNow.Add(10*time.Minute), est.Arrival)
	})
}

func TestResolveDistance_MissingCoordinatesUseDefaultSegment(t *testing.T) {
	e := newTestEstimator()

	t.Run("both endpoints without coordinates", func(t *testing.T) {
		r := Route{
			Pickup:      LocationPoint{Address: "Airport Terminal 4"},
			Destination: LocationPoint{Address: "somewhere very far away on another continent"},
		}
		assert.Equal(t, 3.0, e.ResolveDistance(r, nil))
	})

	t.Run("one endpoint missing a single coordinate", func(t *testing.T) {
		r := Route{
			Pickup:      point("A", 40.7128, -74.0060),
			Destination: LocationPoint{Address: "B", Latitude: ptr(34.0522)},
		}
		assert.Equal(t, 3.0, e.ResolveDistance(r, nil))
	})

	t.Run("stop without coordinates affects both adjacent segments", func(t *testing.T) {
		r := Route{
			Pickup:      point("A", 40.7128, -74.0060),
			Stops:       []LocationPoint{{Address: "Corner shop"}},
			Destination: point("C", 40.7128, -74.0060),
		}
		assert.Equal(t, 6.0, e.ResolveDistance(r, nil))
	})

	t.Run("mixed segments", func(t *testing.T) {
		r := Route{
			Pickup:      point("A", 0, 0),
			Stops:       []LocationPoint{point("B", 0, 1)},
			Destination: LocationPoint{Address: "C"},
		}
		assert.InDelta(t, 111.195+3, e.ResolveDistance(r, nil), 0.001)
	})
}

func TestResolveDistanceAndDuration_Overrides(t *testing.T) {
	e := newTestEstimator()

	est, err := e.Estimate(EstimateInput{
		Route:       samePlaceRoute(0),
		VehicleType: VehicleEconomy,
		Overrides:   &Overrides{DistanceKm: ptr(10.004), DurationMinutes: ptr(20.4)},
	}, testNow)
	require.NoError(t, err)

	assert.Equal(t, 10.0, est.DistanceKm)
	assert.Equal(t, 20.0, est.DurationMinutes)
	assert.InDelta(t, 2.5+8.5+6.0, est.Fare, 1e-9)

	// Non-positive overrides are ignored.
	assert.Equal(t, 3.0, e.ResolveDistance(Route{Pickup: LocationPoint{Address: "a"}, Destination: LocationPoint{Address: "b"}}, ptr(-4.0)))
	assert.Equal(t, 10.0, e.ResolveDuration(1, ptr(0.0)))
}

func TestResolveDistanceAndDuration_OverridesBelowFloor(t *testing.T) {
	e := newTestEstimator()

	est, err := e.Estimate(EstimateInput{
		Route:       samePlaceRoute(0),
		VehicleType: VehicleEconomy,
		Overrides:   &Overrides{DistanceKm: ptr(0.5), DurationMinutes: ptr(5.0)},
	}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1.0, est.DistanceKm)
	assert.Equal(t, 10.0, est.DurationMinutes)
	assert.InDelta(t, 6.35, est.Fare, 1e-9)

	assert.Equal(t, 10.0, e.ResolveDuration(1, ptr(0.3)))
	assert.Equal(t, 1.0, e.ResolveDistance(samePlaceRoute(0), ptr(0.004)))
}

func TestResolveDuration_AverageSpeed(t *testing.T) {
	e := newTestEstimator()

	assert.Equal(t, 10.0, e.ResolveDuration(1, nil))
	assert.InDelta(t, 30.0, e.ResolveDuration(16, nil), 1e-9)
	assert.InDelta(t, 60.0, e.ResolveDuration(32, nil), 1e-9)
}

func TestEstimate_Floors(t *testing.T) {
	e := newTestEstimator()
	routes := []Route{
		samePlaceRoute(0),
		{Pickup: point("A", 10, 10), Destination: point("B", 10.0001, 10.0001)},
		{Pickup: point("A", 10, 10), Destination: point("B", 11, 11)},
		{Pickup: LocationPoint{Address: "A"}, Destination: LocationPoint{Address: "B"}},
	}
	for _, r := range routes {
		est, err := e.Estimate(EstimateInput{Route: r, VehicleType: VehicleSUV}, testNow)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, est.DistanceKm, 1.0)
		assert.GreaterOrEqual(t, est.DurationMinutes, 10.0)
	}
}

func TestEstimate_InvalidVehicleType(t *testing.T) {
	_, err := newTestEstimator().Estimate(EstimateInput{Route: samePlaceRoute(0), VehicleType: "LIMO"}, testNow)
	assert.True(t, domain.IsValidation(err))
}

func TestStandardFareStrategy_UnknownVehicle(t *testing.T) {
	s := NewStandardFareStrategy(PricingTable{Rates: map[VehicleType]VehicleRate{}})
	_, err := s.Calculate(FareParams{VehicleType: VehicleEconomy, DistanceKm: 1, DurationMinutes: 10})
	assert.Error(t, err)
}

func TestEstimatorConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultEstimatorConfig().Validate())
	require.NoError(t, DefaultPricingTable().Validate())
	require.NoError(t, DefaultCancellationPolicy().Validate())

	cfg := DefaultEstimatorConfig()
	cfg.AverageSpeedKmh = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultEstimatorConfig()
	cfg.MinDistanceKm = -1
	assert.Error(t, cfg.Validate())

	table := DefaultPricingTable()
	delete(table.Rates, VehicleSUV)
	assert.Error(t, table.Validate())

	assert.Error(t, CancellationPolicy{PenaltyRate: -0.1, MinimumPenalty: 5}.Validate())
}
