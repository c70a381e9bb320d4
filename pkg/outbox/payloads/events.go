package payloads

import (
	"time"

	"github.com/evdock/evdock-backend/pkg/enums"
	"github.com/google/uuid"
)

// OrderCreatedEvent signals that a dealer placed a new purchase order.
type OrderCreatedEvent struct {
	OrderID      uuid.UUID           `json:"order_id"`
	DealerID     uuid.UUID           `json:"dealer_id"`
	VehicleModel string              `json:"vehicle_model"`
	Color        string              `json:"color"`
	Quantity     int                 `json:"quantity"`
	Priority     enums.OrderPriority `json:"priority"`
}

// OrderStatusChangedEvent is emitted on every order lifecycle transition.
type OrderStatusChangedEvent struct {
	OrderID  uuid.UUID         `json:"order_id"`
	DealerID uuid.UUID         `json:"dealer_id"`
	From     enums.OrderStatus `json:"from"`
	To       enums.OrderStatus `json:"to"`
}

// OrderCancelledEvent is emitted when an order reaches cancelled.
type OrderCancelledEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	DealerID    uuid.UUID `json:"dealer_id"`
	CancelledAt time.Time `json:"cancelled_at"`
	Reason      string    `json:"reason,omitempty"`
}

// AllocationCreatedEvent signals a committed allocation backed by reduced stock.
type AllocationCreatedEvent struct {
	AllocationID      uuid.UUID  `json:"allocation_id"`
	OrderID           uuid.UUID  `json:"order_id"`
	DealerID          uuid.UUID  `json:"dealer_id"`
	VehicleModel      string     `json:"vehicle_model"`
	Color             string     `json:"color"`
	Quantity          int        `json:"quantity"`
	WarehouseLocation string     `json:"warehouse_location"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
}

// AllocationStatusChangedEvent follows an allocation through shipping and delivery.
type AllocationStatusChangedEvent struct {
	AllocationID uuid.UUID              `json:"allocation_id"`
	OrderID      uuid.UUID              `json:"order_id"`
	From         enums.AllocationStatus `json:"from"`
	To           enums.AllocationStatus `json:"to"`
}

// AllocationCompensatedEvent is emitted when reduced stock is restored after a
// failed allocation attempt.
type AllocationCompensatedEvent struct {
	IntentID          uuid.UUID `json:"intent_id"`
	OrderID           uuid.UUID `json:"order_id"`
	VehicleModel      string    `json:"vehicle_model"`
	Color             string    `json:"color"`
	WarehouseLocation string    `json:"warehouse_location"`
	Quantity          int       `json:"quantity"`
	Reason            string    `json:"reason,omitempty"`
}

// InventoryAdjustedEvent reports a manual or saga-driven quantity change.
type InventoryAdjustedEvent struct {
	InventoryItemID uuid.UUID             `json:"inventory_item_id"`
	VehicleModel    string                `json:"vehicle_model"`
	Color           string                `json:"color"`
	Warehouse       string                `json:"warehouse"`
	Delta           int                   `json:"delta"`
	QuantityAfter   int                   `json:"quantity_after"`
	Status          enums.InventoryStatus `json:"status"`
	Reason          string                `json:"reason"`
}

// PromotionActivatedEvent tells downstream systems a campaign went live.
type PromotionActivatedEvent struct {
	PromotionID uuid.UUID           `json:"promotion_id"`
	Name        string              `json:"name"`
	Kind        enums.PromotionKind `json:"kind"`
	StartsAt    time.Time           `json:"starts_at"`
	EndsAt      time.Time           `json:"ends_at"`
}

// QuoteIssuedEvent carries the priced quote summary for reporting.
type QuoteIssuedEvent struct {
	QuoteID       uuid.UUID `json:"quote_id"`
	DealerID      uuid.UUID `json:"dealer_id"`
	VehicleModel  string    `json:"vehicle_model"`
	Quantity      int       `json:"quantity"`
	TotalCents    int64     `json:"total_cents"`
	DiscountCents int64     `json:"discount_cents"`
	ValidUntil    time.Time `json:"valid_until"`
}
