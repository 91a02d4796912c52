package orders

import (
	"github.com/shopspring/decimal"

	"github.com/spicestory/spicestory/internal/model"
)

// CreateRequest is the order creation payload.
type CreateRequest struct {
	Items           []ItemRequest  `json:"items"`
	ShippingAddress AddressRequest `json:"shippingAddress"`
}

// ItemRequest is one requested line item. Product and MenuItem are aliases
// for the catalog reference; Price is nil when absent from the payload.
type ItemRequest struct {
	Product  string           `json:"product"`
	MenuItem string           `json:"menuItem"`
	Quantity int              `json:"quantity"`
	Price    *decimal.Decimal `json:"price"`
}

// Ref returns the catalog reference, preferring product.
func (r ItemRequest) Ref() string {
	if r.Product != "" {
		return r.Product
	}
	return r.MenuItem
}

// AddressRequest accepts zip under either zip or zipCode.
type AddressRequest struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// Address returns the normalized shipping address.
func (a AddressRequest) Address() model.ShippingAddress {
	zip := a.Zip
	if zip == "" {
		zip = a.ZipCode
	}
	return model.ShippingAddress{
		Street:  a.Street,
		City:    a.City,
		State:   a.State,
		Zip:     zip,
		Country: a.Country,
	}
}
