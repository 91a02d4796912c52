package cart

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func item(name, price string, qty int) Item {
	return Item{ID: uuid.New(), Name: name, Price: decimal.RequireFromString(price), Quantity: qty}
}

func TestReduceAddMergesExisting(t *testing.T) {
	curry := item("Butter Chicken", "12.50", 1)
	naan := item("Garlic Naan", "3.00", 2)

	got := Reduce(nil,
		Add{Item: curry},
		Add{Item: naan},
		Add{Item: Item{ID: curry.ID, Name: curry.Name, Price: curry.Price, Quantity: 2}},
	)

	want := []Item{
		{ID: curry.ID, Name: "Butter Chicken", Price: curry.Price, Quantity: 3},
		naan,
	}
	if diff := cmp.Diff(want, got, decimalEqual); diff != "" {
		t.Errorf("cart mismatch (-want +got):\n%s", diff)
	}
}

func TestReduceRemoveAndUpdate(t *testing.T) {
	a := item("Samosa", "4.00", 2)
	b := item("Lassi", "3.50", 1)
	c := item("Biryani", "14.00", 1)

	got := Reduce([]Item{a, b, c},
		Remove{ID: b.ID},
		UpdateQuantity{ID: c.ID, Quantity: 4},
		UpdateQuantity{ID: uuid.New(), Quantity: 9},
	)

	c.Quantity = 4
	want := []Item{a, c}
	if diff := cmp.Diff(want, got, decimalEqual); diff != "" {
		t.Errorf("cart mismatch (-want +got):\n%s", diff)
	}
}

func TestReduceUpdateToZeroRemoves(t *testing.T) {
	a := item("Samosa", "4.00", 2)

	got := Reduce([]Item{a}, UpdateQuantity{ID: a.ID, Quantity: 0})
	if len(got) != 0 {
		t.Errorf("expected empty cart, got %v", got)
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	a := item("Samosa", "4.00", 2)
	in := []Item{a}

	Reduce(in, Add{Item: a}, UpdateQuantity{ID: a.ID, Quantity: 7})

	if in[0].Quantity != 2 {
		t.Errorf("input mutated: quantity %d", in[0].Quantity)
	}
}

func TestTotal(t *testing.T) {
	items := []Item{item("A", "9.99", 2), item("B", "0.02", 1)}
	if got := New(items).Total; !got.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("expected 20.00, got %s", got)
	}
	if got := New(nil); got.Items == nil || !got.Total.IsZero() {
		t.Errorf("expected empty non-nil cart, got %+v", got)
	}
}

func TestDecodeRequest(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		body    string
		want    Request
		wantErr bool
	}{
		{
			name: "add",
			body: `{"type":"ADD_ITEM","payload":{"id":"` + id.String() + `","quantity":2}}`,
			want: Request{Type: TypeAdd, ID: id, Quantity: 2},
		},
		{
			name: "add defaults to one",
			body: `{"type":"ADD_ITEM","payload":{"id":"` + id.String() + `"}}`,
			want: Request{Type: TypeAdd, ID: id, Quantity: 1},
		},
		{
			name:    "add negative",
			body:    `{"type":"ADD_ITEM","payload":{"id":"` + id.String() + `","quantity":-1}}`,
			wantErr: true,
		},
		{
			name: "remove bare id",
			body: `{"type":"REMOVE_ITEM","payload":"` + id.String() + `"}`,
			want: Request{Type: TypeRemove, ID: id},
		},
		{
			name: "remove object",
			body: `{"type":"REMOVE_ITEM","payload":{"id":"` + id.String() + `"}}`,
			want: Request{Type: TypeRemove, ID: id},
		},
		{
			name: "update",
			body: `{"type":"UPDATE_QUANTITY","payload":{"id":"` + id.String() + `","quantity":0}}`,
			want: Request{Type: TypeUpdateQuantity, ID: id, Quantity: 0},
		},
		{
			name:    "missing id",
			body:    `{"type":"UPDATE_QUANTITY","payload":{"quantity":3}}`,
			wantErr: true,
		},
		{
			name:    "malformed id",
			body:    `{"type":"REMOVE_ITEM","payload":"not-an-id"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRequest([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeRequest error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DecodeRequest = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeRequestUnknownType(t *testing.T) {
	_, err := DecodeRequest([]byte(`{"type":"CLEAR","payload":null}`))
	if !errors.Is(err, ErrUnknownAction) {
		t.Errorf("expected ErrUnknownAction, got %v", err)
	}
}
