package ride

import (
	"fmt"
	"strings"

	"github.com/kilat-cab/service-ride/internal/platform/domain"
)

// LocationPoint is an address with optional coordinates.
type LocationPoint struct {
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Note      string   `json:"note,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (p LocationPoint) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// Validate checks the address is present and any coordinates are in range.
func (p LocationPoint) Validate(field string) error {
	if strings.TrimSpace(p.Address) == "" {
		return domain.NewValidationError(fmt.Sprintf("%s address is required", field))
	}
	if p.Latitude != nil && (*p.Latitude < -90 || *p.Latitude > 90) {
		return domain.NewValidationError(fmt.Sprintf("%s latitude out of range", field))
	}
	if p.Longitude != nil && (*p.Longitude < -180 || *p.Longitude > 180) {
		return domain.NewValidationError(fmt.Sprintf("%s longitude out of range", field))
	}
	return nil
}

// Route is the ordered path of a ride: pickup, any stops, destination.
type Route struct {
	Pickup      LocationPoint   `json:"pickup"`
	Stops       []LocationPoint `json:"stops"`
	Destination LocationPoint   `json:"destination"`
}

// Points returns the route in travel order.
func (r Route) Points() []LocationPoint {
	points := make([]LocationPoint, 0, len(r.Stops)+2)
	points = append(points, r.Pickup)
	points = append(points, r.Stops...)
	points = append(points, r.Destination)
	return points
}

// Validate checks every point on the route.
func (r Route) Validate() error {
	if err := r.Pickup.Validate("pickup"); err != nil {
		return err
	}
	for i, stop := range r.Stops {
		if err := stop.Validate(fmt.Sprintf("stop %d", i+1)); err != nil {
			return err
		}
	}
	return r.Destination.Validate("destination")
}
