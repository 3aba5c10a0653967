package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"barapp/order-svc/internal/domain"
	"barapp/order-svc/internal/metrics"
)

// Notifier turns lifecycle events into addressed broadcasts. Delivery is
// best-effort: channel failures are logged and never returned.
type Notifier struct {
	channel Channel
	metrics *metrics.Registry
	now     func() time.Time
}

func NewNotifier(channel Channel, reg *metrics.Registry) *Notifier {
	return &Notifier{channel: channel, metrics: reg, now: time.Now}
}

func (n *Notifier) BroadcastAll(ctx context.Context, restaurantID, name string, data any) {
	if n == nil || n.channel == nil {
		return
	}
	event := domain.Event{Name: name, RestaurantID: restaurantID, Data: data, Timestamp: n.now()}
	if err := n.channel.BroadcastAll(ctx, event); err != nil {
		log.Printf("[notifier] broadcast %s failed: %v", name, err)
		return
	}
	n.metrics.Notified("all")
}

func (n *Notifier) BroadcastToRole(ctx context.Context, restaurantID string, role domain.Role, name string, data any) {
	if n == nil || n.channel == nil {
		return
	}
	event := domain.Event{Name: name, RestaurantID: restaurantID, Role: role, Data: data, Timestamp: n.now()}
	if err := n.channel.BroadcastToRole(ctx, role, event); err != nil {
		log.Printf("[notifier] broadcast %s to %s failed: %v", name, role, err)
		return
	}
	n.metrics.Notified(string(role))
}

func (n *Notifier) OrderCreated(ctx context.Context, order *domain.Order) {
	n.BroadcastAll(ctx, order.RestaurantID, domain.EventNewOrder, order)

	notice := domain.OrderNotice{
		OrderID:  order.ID,
		Order:    order,
		Message:  fmt.Sprintf("New %s order with %d item(s)", order.Type, len(order.Items)),
		Priority: order.Priority,
	}
	n.BroadcastToRole(ctx, order.RestaurantID, domain.RoleChef, domain.EventNewOrder, notice)
	if order.HasDrinks() {
		n.BroadcastToRole(ctx, order.RestaurantID, domain.RoleBartender, domain.EventNewOrder, notice)
	}
}

func (n *Notifier) StatusChanged(ctx context.Context, order *domain.Order) {
	n.BroadcastAll(ctx, order.RestaurantID, domain.EventOrderStatusChange, domain.StatusChange{
		OrderID: order.ID,
		Status:  order.Status,
		Order:   order,
	})
}

func (n *Notifier) PreparingStarted(ctx context.Context, order *domain.Order) {
	n.BroadcastToRole(ctx, order.RestaurantID, domain.RoleWaiter, domain.EventStartPreparing, domain.OrderNotice{
		OrderID:  order.ID,
		Order:    order,
		Message:  "Kitchen started preparing the order",
		Priority: order.Priority,
	})
}

func (n *Notifier) PreparingFinished(ctx context.Context, order *domain.Order) {
	notice := domain.OrderNotice{
		OrderID:  order.ID,
		Order:    order,
		Message:  "Order is ready to be picked up",
		Priority: order.Priority,
	}
	n.BroadcastToRole(ctx, order.RestaurantID, domain.RoleWaiter, domain.EventFinishPreparing, notice)
	if order.Type == domain.OrderTypeDelivery {
		n.BroadcastToRole(ctx, order.RestaurantID, domain.RoleDelivery, domain.EventFinishPreparing, notice)
	}
}

func (n *Notifier) AnalyticsUpdated(ctx context.Context, restaurantID string, update domain.AnalyticsUpdate) {
	n.BroadcastAll(ctx, restaurantID, domain.EventAnalyticsUpdate, update)
}
