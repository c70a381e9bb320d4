package enums

import "fmt"

// AllocationStatus tracks a committed allocation through shipment.
type AllocationStatus string

const (
	AllocationStatusAllocated AllocationStatus = "allocated"
	AllocationStatusShipped   AllocationStatus = "shipped"
	AllocationStatusDelivered AllocationStatus = "delivered"
)

var validAllocationStatuses = []AllocationStatus{
	AllocationStatusAllocated,
	AllocationStatusShipped,
	AllocationStatusDelivered,
}

// String implements fmt.Stringer.
func (s AllocationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AllocationStatus.
func (s AllocationStatus) IsValid() bool {
	for _, candidate := range validAllocationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAllocationStatus converts raw input into an AllocationStatus.
func ParseAllocationStatus(value string) (AllocationStatus, error) {
	for _, candidate := range validAllocationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid allocation status %q", value)
}

// AllocationIntentStatus tracks the write-ahead intent row that guards the
// allocation saga. An intent is created as reducing before inventory is
// touched, and every terminal outcome is recorded so the reconciler can
// detect work that died mid-flight.
type AllocationIntentStatus string

const (
	// AllocationIntentReducing means the inventory decrement is in flight.
	AllocationIntentReducing AllocationIntentStatus = "reducing"
	// AllocationIntentCommitted means the allocation row exists and the
	// decrement is final.
	AllocationIntentCommitted AllocationIntentStatus = "committed"
	// AllocationIntentCompensated means the decrement was rolled back after
	// a downstream failure.
	AllocationIntentCompensated AllocationIntentStatus = "compensated"
	// AllocationIntentCompensationPending means the compensating restore
	// itself failed; inventory is decremented with no allocation recorded
	// until the reconciler re-drives the restore.
	AllocationIntentCompensationPending AllocationIntentStatus = "compensation_pending"
	// AllocationIntentAborted means the saga stopped before inventory was
	// changed; nothing to reconcile.
	AllocationIntentAborted AllocationIntentStatus = "aborted"
)

var validAllocationIntentStatuses = []AllocationIntentStatus{
	AllocationIntentReducing,
	AllocationIntentCommitted,
	AllocationIntentCompensated,
	AllocationIntentCompensationPending,
	AllocationIntentAborted,
}

// String implements fmt.Stringer.
func (s AllocationIntentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AllocationIntentStatus.
func (s AllocationIntentStatus) IsValid() bool {
	for _, candidate := range validAllocationIntentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAllocationIntentStatus converts raw input into an AllocationIntentStatus.
func ParseAllocationIntentStatus(value string) (AllocationIntentStatus, error) {
	for _, candidate := range validAllocationIntentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid allocation intent status %q", value)
}
