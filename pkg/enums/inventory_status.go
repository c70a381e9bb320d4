package enums

import "fmt"

// InventoryStatus is derived from the quantity on hand and is never
// authoritative on its own; DeriveInventoryStatus recomputes it on every
// mutation.
type InventoryStatus string

const (
	InventoryStatusInStock    InventoryStatus = "in_stock"
	InventoryStatusLowStock   InventoryStatus = "low_stock"
	InventoryStatusOutOfStock InventoryStatus = "out_of_stock"
)

// lowStockCeiling is the highest quantity still reported as low_stock.
const lowStockCeiling = 10

var validInventoryStatuses = []InventoryStatus{
	InventoryStatusInStock,
	InventoryStatusLowStock,
	InventoryStatusOutOfStock,
}

// DeriveInventoryStatus maps a quantity to its status: 0 is out_of_stock,
// 1-10 is low_stock, anything above is in_stock.
func DeriveInventoryStatus(quantity int) InventoryStatus {
	switch {
	case quantity <= 0:
		return InventoryStatusOutOfStock
	case quantity <= lowStockCeiling:
		return InventoryStatusLowStock
	default:
		return InventoryStatusInStock
	}
}

// String implements fmt.Stringer.
func (s InventoryStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known InventoryStatus.
func (s InventoryStatus) IsValid() bool {
	for _, candidate := range validInventoryStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseInventoryStatus converts raw input into an InventoryStatus.
func ParseInventoryStatus(value string) (InventoryStatus, error) {
	for _, candidate := range validInventoryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inventory status %q", value)
}
