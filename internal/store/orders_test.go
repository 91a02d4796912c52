package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spicestory/spicestory/internal/db"
	"github.com/spicestory/spicestory/internal/model"
)

func newOrder(userID, productID uuid.UUID, status model.OrderStatus) *model.Order {
	return &model.Order{
		UserID: userID,
		Status: status,
		Items: []model.LineItem{
			{ProductID: productID, Quantity: 2, Price: decimal.RequireFromString("9.99")},
		},
		ShippingAddress: model.ShippingAddress{
			Street: "12 Curry Lane", City: "Leicester", State: "Leicestershire", Zip: "LE1 1AA", Country: "UK",
		},
	}
}

func TestCreateAndGetOrder(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := uuid.New()
	product := uuid.New()
	o, err := CreateOrder(ctx, database, newOrder(user, product, model.OrderStatusPending))
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if o.ID == uuid.Nil {
		t.Fatal("expected assigned id")
	}
	if o.CreatedAt.IsZero() || o.UpdatedAt.IsZero() {
		t.Error("expected timestamps")
	}

	got, err := GetOrder(ctx, database, o.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.UserID != user || got.Status != model.OrderStatusPending {
		t.Errorf("unexpected order: %+v", got)
	}
	if len(got.Items) != 1 || got.Items[0].ProductID != product || got.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
	if !got.Items[0].Price.Equal(decimal.RequireFromString("9.99")) {
		t.Errorf("expected price 9.99, got %s", got.Items[0].Price)
	}
	if got.ShippingAddress.Zip != "LE1 1AA" {
		t.Errorf("unexpected address: %+v", got.ShippingAddress)
	}
}

func TestCreateOrderRequiresItems(t *testing.T) {
	database := db.NewTestDB(t)

	o := newOrder(uuid.New(), uuid.New(), model.OrderStatusPending)
	o.Items = nil
	if _, err := CreateOrder(context.Background(), database, o); err == nil {
		t.Fatal("expected error for empty order")
	}

	orders, _ := ListOrders(context.Background(), database, OrderFilter{})
	if len(orders) != 0 {
		t.Errorf("expected nothing persisted, got %d orders", len(orders))
	}
}

func TestGetOrderMissing(t *testing.T) {
	database := db.NewTestDB(t)

	got, err := GetOrder(context.Background(), database, uuid.New())
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got != nil {
		t.Error("expected nil for missing order")
	}
}

func TestListOrdersFilter(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()
	product := uuid.New()
	first, _ := CreateOrder(ctx, database, newOrder(alice, product, model.OrderStatusPending))
	second, _ := CreateOrder(ctx, database, newOrder(alice, product, model.OrderStatusDelivered))
	third, _ := CreateOrder(ctx, database, newOrder(bob, product, model.OrderStatusPending))

	all, err := ListOrders(ctx, database, OrderFilter{})
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(all))
	}
	if all[0].ID != third.ID || all[2].ID != first.ID {
		t.Error("expected newest first")
	}
	for _, o := range all {
		if len(o.Items) != 1 {
			t.Errorf("expected items loaded for %s", o.ID)
		}
	}

	pending, _ := ListOrders(ctx, database, OrderFilter{Status: model.OrderStatusPending})
	if len(pending) != 2 {
		t.Errorf("expected 2 pending, got %d", len(pending))
	}

	mine, _ := ListOrders(ctx, database, OrderFilter{UserID: alice})
	if len(mine) != 2 || mine[0].ID != second.ID {
		t.Errorf("expected alice's 2 orders newest first, got %d", len(mine))
	}

	both, _ := ListOrders(ctx, database, OrderFilter{UserID: alice, Status: model.OrderStatusDelivered})
	if len(both) != 1 || both[0].ID != second.ID {
		t.Errorf("expected only the delivered order, got %d", len(both))
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	o, _ := CreateOrder(ctx, database, newOrder(uuid.New(), uuid.New(), model.OrderStatusPending))

	ok, err := UpdateOrderStatus(ctx, database, o.ID, model.OrderStatusShipped)
	if err != nil || !ok {
		t.Fatalf("UpdateOrderStatus: %v %v", ok, err)
	}
	got, _ := GetOrder(ctx, database, o.ID)
	if got.Status != model.OrderStatusShipped {
		t.Errorf("expected shipped, got %s", got.Status)
	}

	ok, err = UpdateOrderStatus(ctx, database, uuid.New(), model.OrderStatusShipped)
	if err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	if ok {
		t.Error("expected missing order to report not found")
	}
}
