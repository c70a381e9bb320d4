package enums

import "fmt"

// PromotionStatus tracks whether a campaign can currently discount quotes.
type PromotionStatus string

const (
	PromotionStatusDraft    PromotionStatus = "draft"
	PromotionStatusActive   PromotionStatus = "active"
	PromotionStatusPaused   PromotionStatus = "paused"
	PromotionStatusExpired  PromotionStatus = "expired"
	PromotionStatusArchived PromotionStatus = "archived"
)

var validPromotionStatuses = []PromotionStatus{
	PromotionStatusDraft,
	PromotionStatusActive,
	PromotionStatusPaused,
	PromotionStatusExpired,
	PromotionStatusArchived,
}

// String implements fmt.Stringer.
func (s PromotionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PromotionStatus.
func (s PromotionStatus) IsValid() bool {
	for _, candidate := range validPromotionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePromotionStatus converts raw input into a PromotionStatus.
func ParsePromotionStatus(value string) (PromotionStatus, error) {
	for _, candidate := range validPromotionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid promotion status %q", value)
}

// PromotionKind selects how a campaign discounts the quoted price.
type PromotionKind string

const (
	PromotionKindPercent     PromotionKind = "percent"
	PromotionKindFixedAmount PromotionKind = "fixed_amount"
)

var validPromotionKinds = []PromotionKind{
	PromotionKindPercent,
	PromotionKindFixedAmount,
}

// String implements fmt.Stringer.
func (k PromotionKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known PromotionKind.
func (k PromotionKind) IsValid() bool {
	for _, candidate := range validPromotionKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParsePromotionKind converts raw input into a PromotionKind.
func ParsePromotionKind(value string) (PromotionKind, error) {
	for _, candidate := range validPromotionKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid promotion kind %q", value)
}
