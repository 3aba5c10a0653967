package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"barapp/order-svc/internal/domain"
	"barapp/order-svc/internal/metrics"
)

const maxUpdateAttempts = 3

type OrderService struct {
	orders    OrderRepository
	workers   WorkerDirectory
	business  BusinessServiceInterface
	notifier  NotifierInterface
	qrEncoder QRGenerator
	metrics   *metrics.Registry
	now       func() time.Time
}

type OrderServiceDeps struct {
	Orders   OrderRepository
	Workers  WorkerDirectory
	Business BusinessServiceInterface
	Notifier NotifierInterface
	QR       QRGenerator
	Metrics  *metrics.Registry
	Clock    func() time.Time
}

func NewOrderService(deps OrderServiceDeps) *OrderService {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &OrderService{
		orders:    deps.Orders,
		workers:   deps.Workers,
		business:  deps.Business,
		notifier:  deps.Notifier,
		qrEncoder: deps.QR,
		metrics:   deps.Metrics,
		now:       now,
	}
}

func requireRestaurant(restaurantID string) error {
	if strings.TrimSpace(restaurantID) == "" {
		return invalid("restaurant id is required")
	}
	return nil
}

func (s *OrderService) Create(ctx context.Context, restaurantID string, order *domain.Order) (*domain.Order, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	if err := validateNewOrder(order); err != nil {
		return nil, err
	}

	created := *order
	created.ID = ""
	created.RestaurantID = restaurantID
	created.Status = domain.StatusPending
	created.CancellationReason = ""
	created.Ordered = s.now()
	created.StartedPreparing = nil
	created.FinishedPreparing = nil
	created.IsPaid = false
	created.TransactionHandlerID = ""
	created.TransactionHandlerName = ""
	created.Version = 1
	created.Change = round2(order.AmountPaid - order.Total)
	if created.Type == domain.OrderTypeTable {
		created.DeliveryFee = 0
	}
	created.Items = make([]domain.OrderItem, len(order.Items))
	copy(created.Items, order.Items)
	for i := range created.Items {
		if created.Items[i].Category == "" {
			created.Items[i].Category = domain.CategoryOther
		}
	}

	if err := s.orders.InsertOrder(ctx, &created); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	s.metrics.OrderCreated()

	if s.qrEncoder != nil {
		if qr, err := s.qrEncoder.Generate(restaurantID, created.ID); err == nil {
			if err := s.orders.SaveQRCode(ctx, restaurantID, created.ID, qr); err != nil {
				log.Printf("WARNING: failed to store QR code for order %s: %v", created.ID, err)
			}
		}
	}

	if s.notifier != nil {
		s.notifier.OrderCreated(ctx, &created)
	}
	return &created, nil
}

func (s *OrderService) FindOne(ctx context.Context, restaurantID, id string) (*domain.Order, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	return s.load(ctx, restaurantID, id)
}

func (s *OrderService) load(ctx context.Context, restaurantID, id string) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, restaurantID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, restaurantID string) ([]domain.Order, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListOrders(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (s *OrderService) Delete(ctx context.Context, restaurantID, id string) (*domain.Order, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	order, err := s.orders.DeleteOrder(ctx, restaurantID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete order: %w", err)
	}
	return order, nil
}

func (s *OrderService) ChangePriority(ctx context.Context, restaurantID, id string, priority domain.Priority) (*domain.Order, error) {
	return s.mutate(ctx, restaurantID, id, func(o domain.Order) (transition, error) {
		return planPriority(o, priority)
	})
}

func (s *OrderService) ChangeStatus(ctx context.Context, restaurantID, id string, status domain.Status, reason string) (*domain.Order, error) {
	return s.mutate(ctx, restaurantID, id, func(o domain.Order) (transition, error) {
		return planStatusChange(o, status, reason)
	})
}

func (s *OrderService) ConfirmPayment(ctx context.Context, restaurantID, id string) (*domain.Order, error) {
	return s.mutate(ctx, restaurantID, id, planConfirmPayment)
}

func (s *OrderService) StartPreparing(ctx context.Context, restaurantID, id string) (*domain.Order, error) {
	return s.mutate(ctx, restaurantID, id, func(o domain.Order) (transition, error) {
		return planStartPreparing(o, s.now())
	})
}

func (s *OrderService) FinishPreparing(ctx context.Context, restaurantID, id string) (*domain.Order, error) {
	return s.mutate(ctx, restaurantID, id, func(o domain.Order) (transition, error) {
		return planFinishPreparing(o, s.now())
	})
}

func (s *OrderService) SetTransactionHandler(ctx context.Context, restaurantID, waiterID, orderID string) (*domain.Order, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(waiterID) == "" {
		return nil, invalid("waiter id is required")
	}
	name, err := s.workers.DisplayName(ctx, restaurantID, waiterID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(ErrWorkerNotFound, waiterID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve worker: %w", err)
	}
	return s.mutate(ctx, restaurantID, orderID, func(o domain.Order) (transition, error) {
		return planTransactionHandler(o, waiterID, name)
	})
}

// ReceiptQR returns the cached ticket QR code, regenerating it when missing.
func (s *OrderService) ReceiptQR(ctx context.Context, restaurantID, id string) ([]byte, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	qr, err := s.orders.GetQRCode(ctx, restaurantID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load QR code: %w", err)
	}
	if len(qr) > 0 || s.qrEncoder == nil {
		return qr, nil
	}

	qr, err = s.qrEncoder.Generate(restaurantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	if err := s.orders.SaveQRCode(ctx, restaurantID, id, qr); err != nil {
		log.Printf("WARNING: failed to cache regenerated QR code: %v", err)
	}
	return qr, nil
}

// mutate runs read, plan, conditional write. A lost race re-reads and
// re-plans against the fresh row, so a call whose work was already done by a
// concurrent caller resolves as a no-op instead of repeating side effects.
func (s *OrderService) mutate(ctx context.Context, restaurantID, id string, plan func(domain.Order) (transition, error)) (*domain.Order, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		current, err := s.load(ctx, restaurantID, id)
		if err != nil {
			return nil, err
		}

		t, err := plan(*current)
		if err != nil {
			return nil, err
		}
		if t.noop {
			return current, nil
		}

		updated, err := s.orders.UpdateIfVersion(ctx, restaurantID, id, current.Version, t.patch)
		if err != nil {
			return nil, fmt.Errorf("failed to update order: %w", err)
		}
		if updated == nil {
			s.metrics.Conflict()
			continue
		}

		s.afterCommit(ctx, updated, t)
		return updated, nil
	}
	return nil, &ConflictError{Message: fmt.Sprintf("order %s was modified concurrently, retry after refreshing", id)}
}

// afterCommit runs the best-effort side channels of a committed transition.
func (s *OrderService) afterCommit(ctx context.Context, order *domain.Order, t transition) {
	if s.notifier != nil {
		if t.started {
			s.notifier.PreparingStarted(ctx, order)
		}
		if t.finished {
			s.notifier.PreparingFinished(ctx, order)
		}
	}
	if t.status == "" {
		return
	}

	s.metrics.Transition(string(t.status))
	if s.notifier != nil {
		s.notifier.StatusChanged(ctx, order)
	}
	if !triggersAnalytics(t.status) {
		return
	}

	if s.business != nil {
		result, err := s.business.DeriveAndStore(ctx, order, t.status)
		switch {
		case err != nil:
			log.Printf("[order-svc] analytics for order %s failed: %v", order.ID, err)
		case result.Skipped():
			log.Printf("[order-svc] analytics for order %s skipped: %s", order.ID, result.SkipReason)
		}
	}

	if s.notifier != nil {
		from, to := DayBounds(s.now())
		count, err := s.orders.CountOrdersBetween(ctx, order.RestaurantID, from, to)
		if err != nil {
			log.Printf("[order-svc] counting today's orders failed: %v", err)
			return
		}
		s.notifier.AnalyticsUpdated(ctx, order.RestaurantID, domain.AnalyticsUpdate{
			Date:        from.Format("2006-01-02"),
			TodayOrders: count,
		})
	}
}
