package enums

import "fmt"

// VehicleSegment buckets catalog entries by body style.
type VehicleSegment string

const (
	VehicleSegmentSedan     VehicleSegment = "sedan"
	VehicleSegmentSUV       VehicleSegment = "suv"
	VehicleSegmentHatchback VehicleSegment = "hatchback"
	VehicleSegmentCrossover VehicleSegment = "crossover"
	VehicleSegmentPickup    VehicleSegment = "pickup"
	VehicleSegmentVan       VehicleSegment = "van"
)

var validVehicleSegments = []VehicleSegment{
	VehicleSegmentSedan,
	VehicleSegmentSUV,
	VehicleSegmentHatchback,
	VehicleSegmentCrossover,
	VehicleSegmentPickup,
	VehicleSegmentVan,
}

// String implements fmt.Stringer.
func (s VehicleSegment) String() string {
	return string(s)
}

// IsValid reports whether the value is a known VehicleSegment.
func (s VehicleSegment) IsValid() bool {
	for _, candidate := range validVehicleSegments {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseVehicleSegment converts raw input into a VehicleSegment.
func ParseVehicleSegment(value string) (VehicleSegment, error) {
	for _, candidate := range validVehicleSegments {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vehicle segment %q", value)
}
