package enums

import "fmt"

// DealerStatus represents the standing of a dealer within the network.
type DealerStatus string

const (
	DealerStatusActive    DealerStatus = "active"
	DealerStatusInactive  DealerStatus = "inactive"
	DealerStatusSuspended DealerStatus = "suspended"
)

var validDealerStatuses = []DealerStatus{
	DealerStatusActive,
	DealerStatusInactive,
	DealerStatusSuspended,
}

// String implements fmt.Stringer.
func (s DealerStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DealerStatus.
func (s DealerStatus) IsValid() bool {
	for _, candidate := range validDealerStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDealerStatus converts raw input into a DealerStatus.
func ParseDealerStatus(value string) (DealerStatus, error) {
	for _, candidate := range validDealerStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dealer status %q", value)
}

// DealerTier segments dealers for promotion targeting.
type DealerTier string

const (
	DealerTierStandard DealerTier = "standard"
	DealerTierPremium  DealerTier = "premium"
	DealerTierFlagship DealerTier = "flagship"
)

var validDealerTiers = []DealerTier{
	DealerTierStandard,
	DealerTierPremium,
	DealerTierFlagship,
}

// String implements fmt.Stringer.
func (t DealerTier) String() string {
	return string(t)
}

// IsValid reports whether the value is a known DealerTier.
func (t DealerTier) IsValid() bool {
	for _, candidate := range validDealerTiers {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseDealerTier converts raw input into a DealerTier.
func ParseDealerTier(value string) (DealerTier, error) {
	for _, candidate := range validDealerTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dealer tier %q", value)
}
