package types

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// AppliedDiscount mirrors the applied_discount composite type. It snapshots
// the promotion terms at the moment a quote is priced so later edits to the
// campaign cannot change an issued quote.
type AppliedDiscount struct {
	Source      *string   `json:"source,omitempty"`
	Name        string    `json:"name"`
	PromotionID uuid.UUID `json:"promotion_id"`
	Value       string    `json:"value"`
	ValueType   string    `json:"value_type"`
}

// AppliedDiscounts represents a postgres array of applied_discount.
type AppliedDiscounts []AppliedDiscount

// Value implements the driver.Valuer interface so the slice can be inserted.
func (a AppliedDiscounts) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	if len(a) == 0 {
		return "{}", nil
	}
	values := make([]string, 0, len(a))
	for _, entry := range a {
		composite, err := entry.toComposite()
		if err != nil {
			return nil, err
		}
		values = append(values, composite)
	}
	return pq.Array(values).Value()
}

// Scan implements sql.Scanner for the Postgres applied_discount[] column.
func (a *AppliedDiscounts) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	var raw pq.StringArray
	if err := raw.Scan(value); err != nil {
		return err
	}

	if len(raw) == 0 {
		*a = AppliedDiscounts{}
		return nil
	}

	result := make(AppliedDiscounts, 0, len(raw))
	for _, entry := range raw {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		discount, err := parseAppliedDiscount(entry)
		if err != nil {
			return err
		}
		result = append(result, discount)
	}

	*a = result
	return nil
}

func (d AppliedDiscount) toComposite() (string, error) {
	if strings.TrimSpace(d.Name) == "" {
		return "", fmt.Errorf("applied discount: missing name")
	}
	if d.PromotionID == uuid.Nil {
		return "", fmt.Errorf("applied discount: missing promotion id")
	}
	if strings.TrimSpace(d.Value) == "" {
		return "", fmt.Errorf("applied discount: missing value")
	}
	if strings.TrimSpace(d.ValueType) == "" {
		return "", fmt.Errorf("applied discount: missing value type")
	}

	parts := []string{
		quoteCompositeNullable(d.Source),
		quoteCompositeString(d.Name),
		quoteCompositeString(d.PromotionID.String()),
		quoteCompositeString(d.Value),
		quoteCompositeString(d.ValueType),
	}
	return "(" + strings.Join(parts, ",") + ")", nil
}

func parseAppliedDiscount(raw string) (AppliedDiscount, error) {
	fields, err := parseComposite(raw, 5)
	if err != nil {
		return AppliedDiscount{}, err
	}

	var discount AppliedDiscount
	if !isCompositeNull(fields[0]) {
		value := fields[0]
		discount.Source = &value
	}

	if strings.TrimSpace(fields[1]) == "" {
		return AppliedDiscount{}, fmt.Errorf("applied discount: empty name")
	}
	discount.Name = fields[1]

	id, err := uuid.Parse(fields[2])
	if err != nil {
		return AppliedDiscount{}, fmt.Errorf("applied discount: parse promotion id %w", err)
	}
	discount.PromotionID = id

	if strings.TrimSpace(fields[3]) == "" {
		return AppliedDiscount{}, fmt.Errorf("applied discount: empty value")
	}
	if strings.TrimSpace(fields[4]) == "" {
		return AppliedDiscount{}, fmt.Errorf("applied discount: empty value type")
	}
	discount.Value = fields[3]
	discount.ValueType = fields[4]

	return discount, nil
}
