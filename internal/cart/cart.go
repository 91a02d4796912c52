// Package cart models a shopping cart as a fold of actions over an ordered
// list of items keyed by catalog id.
package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Item is one cart line.
type Item struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Cart is the response shape for a user's cart.
type Cart struct {
	Items []Item          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// New builds a Cart view over items.
func New(items []Item) Cart {
	if items == nil {
		items = []Item{}
	}
	return Cart{Items: items, Total: Total(items)}
}

// Total returns the sum of price × quantity.
func Total(items []Item) decimal.Decimal {
	return lo.Reduce(items, func(acc decimal.Decimal, it Item, _ int) decimal.Decimal {
		return acc.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}, decimal.Zero)
}

// Action is a cart state transition. The set of actions is closed.
type Action interface {
	apply(items []Item) []Item
	Type() string
}

// Add appends an item, or merges its quantity into an existing entry.
type Add struct {
	Item Item
}

// Remove drops the entry with ID.
type Remove struct {
	ID uuid.UUID
}

// UpdateQuantity sets the quantity of the entry with ID. A quantity of zero
// or less removes the entry.
type UpdateQuantity struct {
	ID       uuid.UUID
	Quantity int
}

// Action type tags used on the wire.
const (
	TypeAdd            = "ADD_ITEM"
	TypeRemove         = "REMOVE_ITEM"
	TypeUpdateQuantity = "UPDATE_QUANTITY"
)

func (Add) Type() string            { return TypeAdd }
func (Remove) Type() string         { return TypeRemove }
func (UpdateQuantity) Type() string { return TypeUpdateQuantity }

func (a Add) apply(items []Item) []Item {
	i := slices.IndexFunc(items, func(it Item) bool { return it.ID == a.Item.ID })
	if i < 0 {
		return append(slices.Clone(items), a.Item)
	}
	out := slices.Clone(items)
	out[i].Quantity += a.Item.Quantity
	return out
}

func (a Remove) apply(items []Item) []Item {
	return lo.Filter(items, func(it Item, _ int) bool { return it.ID != a.ID })
}

func (a UpdateQuantity) apply(items []Item) []Item {
	if a.Quantity <= 0 {
		return Remove{ID: a.ID}.apply(items)
	}
	return lo.Map(items, func(it Item, _ int) Item {
		if it.ID == a.ID {
			it.Quantity = a.Quantity
		}
		return it
	})
}

// Reduce folds actions over items and returns the new state. items is not
// modified.
func Reduce(items []Item, actions ...Action) []Item {
	state := slices.Clone(items)
	for _, a := range actions {
		state = a.apply(state)
	}
	return state
}

// Request is the wire form of an action before catalog resolution.
type Request struct {
	Type     string
	ID       uuid.UUID
	Quantity int
}

// ErrUnknownAction is returned for unrecognised action types.
var ErrUnknownAction = errors.New("unknown cart action")

// DecodeRequest parses {"type": ..., "payload": ...}. REMOVE_ITEM accepts the
// id either as the payload itself or as {"id": ...}.
func DecodeRequest(data []byte) (Request, error) {
	var envelope struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Request{}, fmt.Errorf("decoding cart action: %w", err)
	}

	req := Request{Type: envelope.Type}
	switch envelope.Type {
	case TypeAdd, TypeUpdateQuantity:
		var p struct {
			ID       uuid.UUID `json:"id"`
			Quantity int       `json:"quantity"`
		}
		if err := json.Unmarshal(envelope.Payload, &p); err != nil {
			return Request{}, fmt.Errorf("decoding %s payload: %w", envelope.Type, err)
		}
		req.ID, req.Quantity = p.ID, p.Quantity
		if envelope.Type == TypeAdd {
			if req.Quantity < 0 {
				return Request{}, fmt.Errorf("%s: quantity must be positive", envelope.Type)
			}
			if req.Quantity == 0 {
				req.Quantity = 1
			}
		}
	case TypeRemove:
		var id uuid.UUID
		if err := json.Unmarshal(envelope.Payload, &id); err != nil {
			var p struct {
				ID uuid.UUID `json:"id"`
			}
			if err := json.Unmarshal(envelope.Payload, &p); err != nil {
				return Request{}, fmt.Errorf("decoding %s payload: %w", envelope.Type, err)
			}
			id = p.ID
		}
		req.ID = id
	default:
		return Request{}, fmt.Errorf("%w: %q", ErrUnknownAction, envelope.Type)
	}

	if req.ID == uuid.Nil {
		return Request{}, fmt.Errorf("%s: item id required", envelope.Type)
	}
	return req, nil
}
