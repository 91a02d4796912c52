// Package orders implements the order lifecycle: creation, listing and
// status transitions.
package orders

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/spicestory/spicestory/internal/apperr"
	"github.com/spicestory/spicestory/internal/events"
	"github.com/spicestory/spicestory/internal/logging"
	"github.com/spicestory/spicestory/internal/model"
	"github.com/spicestory/spicestory/internal/store"
)

// Manager applies order operations against the store.
type Manager struct {
	DB        *sql.DB
	Publisher events.Publisher
	Policy    TransitionPolicy
	Logger    *slog.Logger
}

// New returns a Manager with a permissive policy and no event publishing.
func New(db *sql.DB, logger *slog.Logger) *Manager {
	return &Manager{DB: db, Publisher: events.Nop{}, Policy: Permissive{}, Logger: logger}
}

// Create validates req and persists a pending order owned by callerID.
func (m *Manager) Create(ctx context.Context, req *CreateRequest, callerID uuid.UUID) (*model.Order, error) {
	if callerID == uuid.Nil {
		return nil, apperr.Auth("Not authorized")
	}

	items, addr, err := validateCreate(req)
	if err != nil {
		return nil, err
	}

	ids := lo.Uniq(lo.Map(items, func(v validItem, _ int) uuid.UUID { return v.item.ProductID }))
	catalog, err := store.GetCatalogItems(ctx, m.DB, ids)
	if err != nil {
		return nil, apperr.Dependency("failed to load catalog items", err)
	}
	for _, v := range items {
		if _, ok := catalog[v.item.ProductID]; !ok {
			return nil, invalidProduct(v.index)
		}
	}

	o, err := store.CreateOrder(ctx, m.DB, &model.Order{
		UserID:          callerID,
		Items:           lo.Map(items, func(v validItem, _ int) model.LineItem { return v.item }),
		Status:          model.OrderStatusPending,
		ShippingAddress: addr,
	})
	if err != nil {
		return nil, apperr.Dependency("failed to create order", err)
	}

	m.logger(ctx).Info("order created", "order_id", o.ID, "user_id", callerID, "items", len(o.Items))
	m.publish(ctx, events.KeyOrderCreated, events.NewOrderCreated(o))
	return o, nil
}

// List returns orders newest first with their catalog items expanded. An
// empty status matches every order; a zero userID matches every owner.
func (m *Manager) List(ctx context.Context, status string, userID uuid.UUID) ([]model.Order, error) {
	filter := store.OrderFilter{UserID: userID}
	if status != "" {
		s, err := model.ToOrderStatus(status)
		if err != nil {
			return nil, apperr.Validation("status", "Invalid status")
		}
		filter.Status = s
	}

	list, err := store.ListOrders(ctx, m.DB, filter)
	if err != nil {
		return nil, apperr.Dependency("failed to list orders", err)
	}
	if err := m.expand(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Get returns the order with the given id.
func (m *Manager) Get(ctx context.Context, id string) (*model.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("id", "Invalid order ID")
	}
	o, err := m.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	list := []model.Order{*o}
	if err := m.expand(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// UpdateStatus parses id and status and writes the new status.
func (m *Manager) UpdateStatus(ctx context.Context, id, status string) (*model.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("id", "Invalid order ID")
	}
	s, err := model.ToOrderStatus(status)
	if err != nil {
		return nil, apperr.Validation("status", "Invalid status")
	}
	return m.SetStatus(ctx, orderID, s, "api")
}

// SetStatus moves an existing order to status through the transition policy
// and returns the updated order. changedBy is recorded in the emitted event.
func (m *Manager) SetStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, changedBy string) (*model.Order, error) {
	o, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}

	old := o.Status
	if old == status {
		return o, nil
	}
	if err := m.policy().Allow(old, status); err != nil {
		return nil, err
	}

	found, err := store.UpdateOrderStatus(ctx, m.DB, id, status)
	if err != nil {
		return nil, apperr.Dependency("failed to update order", err)
	}
	if !found {
		return nil, apperr.NotFound("Order not found")
	}

	updated, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}

	m.logger(ctx).Info("order status changed", "order_id", id, "from", old, "to", status, "by", changedBy)
	m.publish(ctx, events.KeyOrderStatusChanged, events.NewStatusChanged(id, old, status, changedBy))
	return updated, nil
}

// Load returns the order with id or a NotFound error.
func (m *Manager) Load(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return m.load(ctx, id)
}

func (m *Manager) load(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	o, err := store.GetOrder(ctx, m.DB, id)
	if err != nil {
		return nil, apperr.Dependency("failed to get order", err)
	}
	if o == nil {
		return nil, apperr.NotFound("Order not found")
	}
	return o, nil
}

// expand attaches the current catalog entry to each line item in place.
// Items whose catalog entry was deleted are left unexpanded.
func (m *Manager) expand(ctx context.Context, list []model.Order) error {
	ids := lo.Uniq(lo.FlatMap(list, func(o model.Order, _ int) []uuid.UUID {
		return lo.Map(o.Items, func(li model.LineItem, _ int) uuid.UUID { return li.ProductID })
	}))
	if len(ids) == 0 {
		return nil
	}

	catalog, err := store.GetCatalogItems(ctx, m.DB, ids)
	if err != nil {
		return apperr.Dependency("failed to load catalog items", err)
	}
	for i := range list {
		for j := range list[i].Items {
			list[i].Items[j].Item = catalog[list[i].Items[j].ProductID]
		}
	}
	return nil
}

func (m *Manager) publish(ctx context.Context, key string, msg any) {
	if m.Publisher == nil {
		return
	}
	if err := m.Publisher.Publish(ctx, key, msg); err != nil {
		m.logger(ctx).Error("failed to publish order event", "routing_key", key, "error", err)
	}
}

func (m *Manager) policy() TransitionPolicy {
	if m.Policy == nil {
		return Permissive{}
	}
	return m.Policy
}

func (m *Manager) logger(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, m.Logger)
}
