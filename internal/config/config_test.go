package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilat-cab/service-ride/internal/domain/ride"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RIDE_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "ride_db", cfg.DBConfig.DBName)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, ride.DefaultEstimatorConfig(), cfg.Estimator)
	assert.Equal(t, ride.DefaultPricingTable(), cfg.Pricing)
	assert.Equal(t, ride.DefaultCancellationPolicy(), cfg.Cancellation)
	assert.False(t, cfg.EphemeralJWTSecret)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RIDE_JWT_SECRET", "secret")
	t.Setenv("RIDE_PRICING_SUV_PER_KM", "2.25")
	t.Setenv("RIDE_PRICING_STOP_SURCHARGE", "2")
	t.Setenv("RIDE_ESTIMATOR_AVERAGE_SPEED_KMH", "40")
	t.Setenv("RIDE_ESTIMATOR_SCHEDULE_THRESHOLD", "10m")
	t.Setenv("RIDE_CANCELLATION_MINIMUM_PENALTY", "7.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2.25, cfg.Pricing.Rates[ride.VehicleSUV].PerKm)
	assert.Equal(t, ride.DefaultPricingTable().Rates[ride.VehicleSUV].BaseFare, cfg.Pricing.Rates[ride.VehicleSUV].BaseFare)
	assert.Equal(t, 2.0, cfg.Pricing.StopSurcharge)
	assert.Equal(t, 40.0, cfg.Estimator.AverageSpeedKmh)
	assert.Equal(t, 10*time.Minute, cfg.Estimator.ScheduleThreshold)
	assert.Equal(t, 7.5, cfg.Cancellation.MinimumPenalty)
}

func TestLoad_JWTSecret(t *testing.T) {
	t.Run("generated in development", func(t *testing.T) {
		t.Setenv("RIDE_JWT_SECRET", "")
		cfg, err := Load()
		require.NoError(t, err)
		assert.NotEmpty(t, cfg.JWTConfig.Secret)
		assert.True(t, cfg.EphemeralJWTSecret)
	})

	t.Run("required in production", func(t *testing.T) {
		t.Setenv("RIDE_JWT_SECRET", "")
		t.Setenv("RIDE_APP_ENV", "production")
		_, err := Load()
		assert.ErrorIs(t, err, ErrMissingJWTSecret)
	})
}

func TestLoad_RejectsInvalidRideSettings(t *testing.T) {
	cases := map[string]string{
		"RIDE_ESTIMATOR_AVERAGE_SPEED_KMH":    "0",
		"RIDE_ESTIMATOR_EARTH_RADIUS_KM":      "-1",
		"RIDE_ESTIMATOR_MIN_DISTANCE_KM":      "-1",
		"RIDE_ESTIMATOR_MIN_DURATION_MINUTES": "0",
		"RIDE_PRICING_ECONOMY_PER_KM":         "-0.5",
		"RIDE_CANCELLATION_PENALTY_RATE":      "1.5",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("RIDE_JWT_SECRET", "secret")
			t.Setenv(key, value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
