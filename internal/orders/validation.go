package orders

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/spicestory/spicestory/internal/apperr"
	"github.com/spicestory/spicestory/internal/model"
)

// validItem is a line item whose fields passed validation but whose catalog
// reference has not been resolved yet.
type validItem struct {
	index int
	item  model.LineItem
}

// validateCreate checks the payload shape and returns the parsed line items
// and address. It does not touch the store.
func validateCreate(req *CreateRequest) ([]validItem, model.ShippingAddress, error) {
	items, err := validateItems(req.Items)
	if err != nil {
		return nil, model.ShippingAddress{}, err
	}

	addr := req.ShippingAddress.Address()
	if err := validateAddress(addr); err != nil {
		return nil, model.ShippingAddress{}, err
	}
	return items, addr, nil
}

func validateItems(reqs []ItemRequest) ([]validItem, error) {
	if len(reqs) == 0 {
		return nil, apperr.Validation("items", "Order must contain at least one item")
	}

	items := make([]validItem, 0, len(reqs))
	for i, r := range reqs {
		item, err := validateItem(r, i)
		if err != nil {
			return nil, err
		}
		items = append(items, validItem{index: i, item: item})
	}
	return items, nil
}

func validateItem(r ItemRequest, index int) (model.LineItem, error) {
	id, err := uuid.Parse(strings.TrimSpace(r.Ref()))
	if err != nil {
		return model.LineItem{}, invalidProduct(index)
	}

	if r.Quantity < 1 {
		return model.LineItem{}, apperr.Validation(
			fmt.Sprintf("items[%d].quantity", index),
			"Quantity must be at least 1",
		)
	}

	if r.Price == nil {
		return model.LineItem{}, apperr.Validation(
			fmt.Sprintf("items[%d].price", index),
			"Price is required for each item",
		)
	}
	if r.Price.IsNegative() {
		return model.LineItem{}, apperr.Validation(
			fmt.Sprintf("items[%d].price", index),
			"Price must be non-negative",
		)
	}

	return model.LineItem{ProductID: id, Quantity: r.Quantity, Price: *r.Price}, nil
}

func invalidProduct(index int) error {
	return apperr.Validation(fmt.Sprintf("items[%d].product", index), "Invalid product ID in items")
}

func validateAddress(a model.ShippingAddress) error {
	fields := []struct {
		name  string
		value string
	}{
		{"street", a.Street},
		{"city", a.City},
		{"state", a.State},
		{"zip", a.Zip},
		{"country", a.Country},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return apperr.Validation("shippingAddress."+f.name, f.name+" is required")
		}
	}
	return nil
}
