package ride

import (
	"fmt"
	"strings"
)

// VehicleType is the category of car requested for a ride.
type VehicleType string

const (
	VehicleEconomy   VehicleType = "ECONOMY"
	VehiclePremium   VehicleType = "PREMIUM"
	VehicleSUV       VehicleType = "SUV"
	VehicleExecutive VehicleType = "EXECUTIVE"
)

// VehicleTypes lists every bookable category.
var VehicleTypes = []VehicleType{VehicleEconomy, VehiclePremium, VehicleSUV, VehicleExecutive}

// IsValid returns true if the vehicle type is recognized.
func (v VehicleType) IsValid() bool {
	switch v {
	case VehicleEconomy, VehiclePremium, VehicleSUV, VehicleExecutive:
		return true
	}
	return false
}

// ParseVehicleType converts a case-insensitive string to a VehicleType.
func ParseVehicleType(s string) (VehicleType, error) {
	v := VehicleType(strings.ToUpper(strings.TrimSpace(s)))
	if !v.IsValid() {
		return "", fmt.Errorf("invalid vehicle type: %s", s)
	}
	return v, nil
}
