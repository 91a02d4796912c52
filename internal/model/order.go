package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// ShippingAddress is where an order is delivered. All fields are required.
type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// LineItem is one catalog item in an order. Price is the unit price captured
// when the order was placed.
type LineItem struct {
	ProductID uuid.UUID       `json:"product"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`

	// Resolved catalog entry (not always populated).
	Item *CatalogItem `json:"item,omitempty"`
}

// Subtotal returns price × quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Order is a persisted purchase request owned by a user.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user"`
	Items           []LineItem      `json:"items"`
	Status          OrderStatus     `json:"status"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Total returns the sum of all line item subtotals.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range o.Items {
		total = total.Add(li.Subtotal())
	}
	return total
}

// MarshalJSON adds the computed totalAmount to the stored fields.
func (o Order) MarshalJSON() ([]byte, error) {
	type order Order
	return json.Marshal(struct {
		order
		TotalAmount decimal.Decimal `json:"totalAmount"`
	}{order(o), o.Total()})
}

// MinorUnits converts amount into the smallest unit of cur, rounding half away
// from zero (9.995 USD is 1000 cents).
func MinorUnits(amount decimal.Decimal, cur currency.Unit) int64 {
	scale, _ := currency.Standard.Rounding(cur)
	return amount.Shift(int32(scale)).Round(0).IntPart()
}

// ParseCurrency parses an ISO 4217 code in either case.
func ParseCurrency(code string) (currency.Unit, error) {
	cur, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return currency.Unit{}, fmt.Errorf("currency %q: %w", code, err)
	}
	return cur, nil
}
