package ride

import (
	"errors"
	"math"
	"time"

	"github.com/kilat-cab/service-ride/internal/platform/domain"
)

// EstimatorConfig holds the constants used to derive distance, duration and
// scheduling from a route.
type EstimatorConfig struct {
	EarthRadiusKm      float64
	DefaultSegmentKm   float64
	MinDistanceKm      float64
	AverageSpeedKmh    float64
	MinDurationMinutes float64

	// ScheduleThreshold is how far ahead a ride must be requested to count as
	// scheduled. It is unrelated to ScheduledWindowMinutes.
	ScheduleThreshold      time.Duration
	ScheduledWindowMinutes int
	InstantWindowMinutes   int
}

// DefaultEstimatorConfig returns the standard estimator settings.
func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		EarthRadiusKm:          6371,
		DefaultSegmentKm:       3,
		MinDistanceKm:          1,
		AverageSpeedKmh:        32,
		MinDurationMinutes:     10,
		ScheduleThreshold:      5 * time.Minute,
		ScheduledWindowMinutes: 30,
		InstantWindowMinutes:   5,
	}
}

// Validate rejects settings that would break the distance and duration floors
// or divide by zero.
func (c EstimatorConfig) Validate() error {
	switch {
	case c.EarthRadiusKm <= 0:
		return errors.New("earth radius must be positive")
	case c.DefaultSegmentKm <= 0:
		return errors.New("default segment distance must be positive")
	case c.MinDistanceKm <= 0:
		return errors.New("minimum distance must be positive")
	case c.AverageSpeedKmh <= 0:
		return errors.New("average speed must be positive")
	case c.MinDurationMinutes <= 0:
		return errors.New("minimum duration must be positive")
	case c.ScheduleThreshold < 0:
		return errors.New("schedule threshold must not be negative")
	case c.ScheduledWindowMinutes < 0 || c.InstantWindowMinutes < 0:
		return errors.New("cancellation windows must not be negative")
	}
	return nil
}

// Overrides lets the caller pin distance or duration instead of deriving them.
// Non-positive values are ignored.
type Overrides struct {
	DistanceKm      *float64 `json:"distance_km,omitempty"`
	DurationMinutes *float64 `json:"duration_minutes,omitempty"`
}

// EstimateInput is everything needed to quote a ride.
type EstimateInput struct {
	Route       Route
	VehicleType VehicleType
	Overrides   *Overrides
	ScheduledAt *time.Time
}

// Estimate is a fare and ETA quote.
type Estimate struct {
	DistanceKm                float64   `json:"distance_km"`
	DurationMinutes           float64   `json:"duration_minutes"`
	Fare                      float64   `json:"fare"`
	Arrival                   time.Time `json:"arrival"`
	IsScheduled               bool      `json:"is_scheduled"`
	CancellationWindowMinutes int       `json:"cancellation_window_minutes"`
}

// Estimator quotes rides. It is stateless and safe for concurrent use.
type Estimator struct {
	cfg   EstimatorConfig
	fares FareStrategy
}

// NewEstimator creates an Estimator.
func NewEstimator(cfg EstimatorConfig, fares FareStrategy) *Estimator {
	return &Estimator{cfg: cfg, fares: fares}
}

// Estimate computes distance, duration, fare, arrival and cancellation window
// for in as evaluated at now.
func (e *Estimator) Estimate(in EstimateInput, now time.Time) (Estimate, error) {
	if !in.VehicleType.IsValid() {
		return Estimate{}, domain.NewValidationError("invalid vehicle type: " + string(in.VehicleType))
	}

	var overrides Overrides
	if in.Overrides != nil {
		overrides = *in.Overrides
	}

	distance := e.ResolveDistance(in.Route, overrides.DistanceKm)
	duration := e.ResolveDuration(distance, overrides.DurationMinutes)
	scheduled := e.IsScheduled(in.ScheduledAt, now)

	fare, err := e.fares.Calculate(FareParams{
		VehicleType:     in.VehicleType,
		DistanceKm:      distance,
		DurationMinutes: duration,
		StopCount:       len(in.Route.Stops),
		IsScheduled:     scheduled,
	})
	if err != nil {
		return Estimate{}, domain.NewValidationError("pricing error: " + err.Error())
	}

	return Estimate{
		DistanceKm:                distance,
		DurationMinutes:           duration,
		Fare:                      fare,
		Arrival:                   e.Arrival(in.ScheduledAt, duration, now),
		IsScheduled:               scheduled,
		CancellationWindowMinutes: e.CancellationWindow(scheduled),
	}, nil
}

// ResolveDistance returns the override when positive, otherwise the summed
// great-circle length of the route. Either way the result is floored at
// MinDistanceKm.
func (e *Estimator) ResolveDistance(route Route, override *float64) float64 {
	if override != nil && *override > 0 {
		return math.Max(roundTo2(*override), e.cfg.MinDistanceKm)
	}

	points := route.Points()
	var total float64
	for i := 1; i < len(points); i++ {
		total += e.segmentDistance(points[i-1], points[i])
	}
	return math.Max(total, e.cfg.MinDistanceKm)
}

// ResolveDuration returns the override rounded to the minute when positive,
// otherwise the travel time at AverageSpeedKmh. Either way the result is
// floored at MinDurationMinutes.
func (e *Estimator) ResolveDuration(distanceKm float64, override *float64) float64 {
	if override != nil && *override > 0 {
		return math.Max(math.Round(*override), e.cfg.MinDurationMinutes)
	}
	minutes := distanceKm / e.cfg.AverageSpeedKmh * 60
	return math.Max(minutes, e.cfg.MinDurationMinutes)
}

// IsScheduled reports whether scheduledAt is more than ScheduleThreshold after now.
func (e *Estimator) IsScheduled(scheduledAt *time.Time, now time.Time) bool {
	return scheduledAt != nil && scheduledAt.Sub(now) > e.cfg.ScheduleThreshold
}

// Arrival is the pickup base time plus the trip duration. The base is
// scheduledAt when it lies in the future, otherwise now.
func (e *Estimator) Arrival(scheduledAt *time.Time, durationMinutes float64, now time.Time) time.Time {
	base := now
	if scheduledAt != nil && scheduledAt.After(now) {
		base = *scheduledAt
	}
	return base.Add(time.Duration(durationMinutes * float64(time.Minute)))
}

// CancellationWindow returns the penalty-free window in minutes.
func (e *Estimator) CancellationWindow(scheduled bool) int {
	if scheduled {
		return e.cfg.ScheduledWindowMinutes
	}
	return e.cfg.InstantWindowMinutes
}

func (e *Estimator) segmentDistance(from, to LocationPoint) float64 {
	if !from.HasCoordinates() || !to.HasCoordinates() {
		return e.cfg.DefaultSegmentKm
	}
	return Haversine(*from.Latitude, *from.Longitude, *to.Latitude, *to.Longitude, e.cfg.EarthRadiusKm)
}

// Haversine returns the great-circle distance between two coordinates on a
// sphere of the given radius.
func Haversine(lat1, lng1, lat2, lng2, radiusKm float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	lat1Rad := degreesToRadians(lat1)
	lat2Rad := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return radiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
