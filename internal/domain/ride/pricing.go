package ride

import (
	"fmt"
	"math"
)

// FareStrategy defines the interface for calculating ride fares.
type FareStrategy interface {
	// Calculate returns the fare for the given parameters, rounded to cents.
	Calculate(params FareParams) (float64, error)
}

// FareParams holds the inputs for fare calculation.
type FareParams struct {
	VehicleType     VehicleType
	DistanceKm      float64
	DurationMinutes float64
	StopCount       int
	IsScheduled     bool
}

// VehicleRate is the per-category price sheet.
type VehicleRate struct {
	BaseFare  float64
	PerKm     float64
	PerMinute float64
}

// PricingTable holds rates for every vehicle type plus route surcharges.
type PricingTable struct {
	Rates              map[VehicleType]VehicleRate
	StopSurcharge      float64
	ScheduledSurcharge float64
}

// DefaultPricingTable returns the standard price list.
func DefaultPricingTable() PricingTable {
	return PricingTable{
		Rates: map[VehicleType]VehicleRate{
			VehicleEconomy:   {BaseFare: 2.50, PerKm: 0.85, PerMinute: 0.30},
			VehiclePremium:   {BaseFare: 4.00, PerKm: 1.15, PerMinute: 0.42},
			VehicleSUV:       {BaseFare: 4.50, PerKm: 1.30, PerMinute: 0.48},
			VehicleExecutive: {BaseFare: 6.00, PerKm: 1.60, PerMinute: 0.60},
		},
		StopSurcharge:      1.25,
		ScheduledSurcharge: 1.50,
	}
}

// Validate checks that every vehicle type has a non-negative rate and that
// surcharges are not negative.
func (t PricingTable) Validate() error {
	if t.StopSurcharge < 0 || t.ScheduledSurcharge < 0 {
		return fmt.Errorf("surcharges must not be negative")
	}
	for _, vt := range VehicleTypes {
		rate, ok := t.Rates[vt]
		if !ok {
			return fmt.Errorf("no rate for vehicle type %s", vt)
		}
		if rate.BaseFare < 0 || rate.PerKm < 0 || rate.PerMinute < 0 {
			return fmt.Errorf("rate for vehicle type %s must not be negative", vt)
		}
		if rate.BaseFare+rate.PerKm+rate.PerMinute == 0 {
			return fmt.Errorf("rate for vehicle type %s is zero", vt)
		}
	}
	return nil
}

// StandardFareStrategy implements time-and-distance pricing from a PricingTable.
type StandardFareStrategy struct {
	table PricingTable
}

// NewStandardFareStrategy creates a StandardFareStrategy over table.
func NewStandardFareStrategy(table PricingTable) *StandardFareStrategy {
	return &StandardFareStrategy{table: table}
}

// Calculate computes the fare.
//
// Pricing formula:
//   - Base fare, per-km and per-minute rates by vehicle type
//   - Stop surcharge for every intermediate stop
//   - Scheduled surcharge for rides booked ahead
func (s *StandardFareStrategy) Calculate(params FareParams) (float64, error) {
	rate, ok := s.table.Rates[params.VehicleType]
	if !ok {
		return 0, fmt.Errorf("unknown vehicle type for pricing: %s", params.VehicleType)
	}
	if params.DistanceKm < 0 || params.DurationMinutes < 0 || params.StopCount < 0 {
		return 0, fmt.Errorf("pricing inputs cannot be negative")
	}

	fare := rate.BaseFare +
		rate.PerKm*params.DistanceKm +
		rate.PerMinute*params.DurationMinutes +
		float64(params.StopCount)*s.table.StopSurcharge

	if params.IsScheduled {
		fare += s.table.ScheduledSurcharge
	}

	return roundTo2(fare), nil
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
