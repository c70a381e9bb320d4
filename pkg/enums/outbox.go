package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder      OutboxAggregateType = "order"
	AggregateAllocation OutboxAggregateType = "allocation"
	AggregateInventory  OutboxAggregateType = "inventory_item"
	AggregateDealer     OutboxAggregateType = "dealer"
	AggregatePromotion  OutboxAggregateType = "promotion"
	AggregateQuote      OutboxAggregateType = "quote"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateAllocation,
	AggregateInventory,
	AggregateDealer,
	AggregatePromotion,
	AggregateQuote,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOrderCreated            OutboxEventType = "order_created"
	EventOrderStatusChanged      OutboxEventType = "order_status_changed"
	EventOrderCancelled          OutboxEventType = "order_cancelled"
	EventAllocationCreated       OutboxEventType = "allocation_created"
	EventAllocationStatusChanged OutboxEventType = "allocation_status_changed"
	EventAllocationCompensated   OutboxEventType = "allocation_compensated"
	EventInventoryAdjusted       OutboxEventType = "inventory_adjusted"
	EventPromotionActivated      OutboxEventType = "promotion_activated"
	EventQuoteIssued             OutboxEventType = "quote_issued"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderStatusChanged,
	EventOrderCancelled,
	EventAllocationCreated,
	EventAllocationStatusChanged,
	EventAllocationCompensated,
	EventInventoryAdjusted,
	EventPromotionActivated,
	EventQuoteIssued,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
