package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/kilat-cab/service-ride/internal/domain/ride"
	"github.com/kilat-cab/service-ride/internal/platform/config"
)

const envPrefix = "RIDE"

// ErrMissingJWTSecret is returned when no signing secret is configured outside development.
var ErrMissingJWTSecret = errors.New("RIDE_JWT_SECRET must be set outside development")

// ServiceConfig holds all configuration for the ride service.
type ServiceConfig struct {
	Port          string
	AppEnv        string
	MigrationsDir string
	DBConfig      config.DatabaseConfig
	JWTConfig     config.JWTConfig
	KafkaConfig   config.KafkaConfig

	// EphemeralJWTSecret is set when a development run generated its own secret.
	EphemeralJWTSecret bool
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration

	Estimator    ride.EstimatorConfig
	Pricing      ride.PricingTable
	Cancellation ride.CancellationPolicy
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *ServiceConfig) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Load reads configuration from RIDE_* environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load(envPrefix)
	if err != nil {
		return nil, err
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*ServiceConfig, error) {
	setDefaults(v)

	cfg := &ServiceConfig{
		Port:            config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:          config.GetAppEnv(v),
		MigrationsDir:   v.GetString("MIGRATIONS_DIR"),
		DBConfig:        config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:       config.LoadJWTConfig(v),
		KafkaConfig:     config.LoadKafkaConfig(v),
		AccessTokenTTL:  v.GetDuration("JWT_ACCESS_TTL"),
		RefreshTokenTTL: v.GetDuration("JWT_REFRESH_TTL"),
		Estimator:       loadEstimator(v),
		Pricing:         loadPricing(v),
		Cancellation: ride.CancellationPolicy{
			PenaltyRate:    v.GetFloat64("CANCELLATION_PENALTY_RATE"),
			MinimumPenalty: v.GetFloat64("CANCELLATION_MINIMUM_PENALTY"),
		},
	}

	if err := cfg.Estimator.Validate(); err != nil {
		return nil, fmt.Errorf("invalid estimator config: %w", err)
	}
	if err := cfg.Pricing.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pricing config: %w", err)
	}
	if err := cfg.Cancellation.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cancellation config: %w", err)
	}

	if cfg.JWTConfig.Secret == "" {
		if !cfg.IsDevelopment() {
			return nil, ErrMissingJWTSecret
		}
		cfg.JWTConfig.Secret = uuid.NewString()
		cfg.EphemeralJWTSecret = true
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_NAME", "ride_db")
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("JWT_ACCESS_TTL", 15*time.Minute)
	v.SetDefault("JWT_REFRESH_TTL", 7*24*time.Hour)

	est := ride.DefaultEstimatorConfig()
	v.SetDefault("ESTIMATOR_EARTH_RADIUS_KM", est.EarthRadiusKm)
	v.SetDefault("ESTIMATOR_DEFAULT_SEGMENT_KM", est.DefaultSegmentKm)
	v.SetDefault("ESTIMATOR_MIN_DISTANCE_KM", est.MinDistanceKm)
	v.SetDefault("ESTIMATOR_AVERAGE_SPEED_KMH", est.AverageSpeedKmh)
	v.SetDefault("ESTIMATOR_MIN_DURATION_MINUTES", est.MinDurationMinutes)
	v.SetDefault("ESTIMATOR_SCHEDULE_THRESHOLD", est.ScheduleThreshold)
	v.SetDefault("ESTIMATOR_SCHEDULED_WINDOW_MINUTES", est.ScheduledWindowMinutes)
	v.SetDefault("ESTIMATOR_INSTANT_WINDOW_MINUTES", est.InstantWindowMinutes)

	table := ride.DefaultPricingTable()
	v.SetDefault("PRICING_STOP_SURCHARGE", table.StopSurcharge)
	v.SetDefault("PRICING_SCHEDULED_SURCHARGE", table.ScheduledSurcharge)
	for _, vt := range ride.VehicleTypes {
		rate := table.Rates[vt]
		prefix := pricingKey(vt)
		v.SetDefault(prefix+"_BASE_FARE", rate.BaseFare)
		v.SetDefault(prefix+"_PER_KM", rate.PerKm)
		v.SetDefault(prefix+"_PER_MINUTE", rate.PerMinute)
	}

	policy := ride.DefaultCancellationPolicy()
	v.SetDefault("CANCELLATION_PENALTY_RATE", policy.PenaltyRate)
	v.SetDefault("CANCELLATION_MINIMUM_PENALTY", policy.MinimumPenalty)
}

func loadEstimator(v *viper.Viper) ride.EstimatorConfig {
	return ride.EstimatorConfig{
		EarthRadiusKm:          v.GetFloat64("ESTIMATOR_EARTH_RADIUS_KM"),
		DefaultSegmentKm:       v.GetFloat64("ESTIMATOR_DEFAULT_SEGMENT_KM"),
		MinDistanceKm:          v.GetFloat64("ESTIMATOR_MIN_DISTANCE_KM"),
		AverageSpeedKmh:        v.GetFloat64("ESTIMATOR_AVERAGE_SPEED_KMH"),
		MinDurationMinutes:     v.GetFloat64("ESTIMATOR_MIN_DURATION_MINUTES"),
		ScheduleThreshold:      v.GetDuration("ESTIMATOR_SCHEDULE_THRESHOLD"),
		ScheduledWindowMinutes: v.GetInt("ESTIMATOR_SCHEDULED_WINDOW_MINUTES"),
		InstantWindowMinutes:   v.GetInt("ESTIMATOR_INSTANT_WINDOW_MINUTES"),
	}
}

func loadPricing(v *viper.Viper) ride.PricingTable {
	table := ride.PricingTable{
		Rates:              make(map[ride.VehicleType]ride.VehicleRate, len(ride.VehicleTypes)),
		StopSurcharge:      v.GetFloat64("PRICING_STOP_SURCHARGE"),
		ScheduledSurcharge: v.GetFloat64("PRICING_SCHEDULED_SURCHARGE"),
	}
	for _, vt := range ride.VehicleTypes {
		prefix := pricingKey(vt)
		table.Rates[vt] = ride.VehicleRate{
			BaseFare:  v.GetFloat64(prefix + "_BASE_FARE"),
			PerKm:     v.GetFloat64(prefix + "_PER_KM"),
			PerMinute: v.GetFloat64(prefix + "_PER_MINUTE"),
		}
	}
	return table
}

func pricingKey(vt ride.VehicleType) string {
	return "PRICING_" + strings.ToUpper(string(vt))
}
