package types

import (
	"testing"

	"github.com/google/uuid"
)

func TestAppliedDiscountsValueAndScan(t *testing.T) {
	discount := AppliedDiscount{
		Source:      stringPtr("promotion"),
		Name:        "LAUNCH10",
		PromotionID: uuid.New(),
		Value:       "10.00",
		ValueType:   "percentage",
	}

	payload := AppliedDiscounts{discount}
	val, err := payload.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}

	var decoded AppliedDiscounts
	if err := decoded.Scan(val); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(decoded) != 1 {
		t.Fatalf("expected 1 discount, got %d", len(decoded))
	}

	got := decoded[0]
	if got.Name != discount.Name {
		t.Fatalf("expected name %q, got %q", discount.Name, got.Name)
	}
	if got.Source == nil || discount.Source == nil || *got.Source != *discount.Source {
		t.Fatalf("source mismatch")
	}
	if got.PromotionID != discount.PromotionID {
		t.Fatalf("expected promotion id %s, got %s", discount.PromotionID, got.PromotionID)
	}
	if got.Value != discount.Value {
		t.Fatalf("expected value %q, got %q", discount.Value, got.Value)
	}
	if got.ValueType != discount.ValueType {
		t.Fatalf("expected value type %q, got %q", discount.ValueType, got.ValueType)
	}
}

func TestAppliedDiscountsScanNil(t *testing.T) {
	var discounts AppliedDiscounts
	if err := discounts.Scan(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if discounts != nil {
		t.Fatalf("expected nil slice, got %#v", discounts)
	}
}

func stringPtr(value string) *string {
	return &value
}
