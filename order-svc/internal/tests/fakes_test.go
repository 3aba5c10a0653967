package tests

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"barapp/order-svc/internal/domain"
	"barapp/order-svc/internal/service"
)

// memOrders is an in-memory OrderRepository that enforces the version guard
// the same way the conditional UPDATE does.
type memOrders struct {
	mu      sync.Mutex
	orders  map[string]domain.Order
	qr      map[string][]byte
	nextID  int
	workers map[string]string
	// staleWrites makes the next n conditional updates miss.
	staleWrites int
}

func newMemOrders() *memOrders {
	return &memOrders{
		orders:  map[string]domain.Order{},
		qr:      map[string][]byte{},
		workers: map[string]string{},
	}
}

func key(restaurantID, id string) string { return restaurantID + "/" + id }

func cloneOrder(o domain.Order) *domain.Order {
	out := o
	out.Items = append([]domain.OrderItem(nil), o.Items...)
	return &out
}

func (m *memOrders) GetOrder(_ context.Context, restaurantID, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[key(restaurantID, id)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cloneOrder(o), nil
}

func (m *memOrders) InsertOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order.ID == "" {
		m.nextID++
		order.ID = fmt.Sprintf("order-%d", m.nextID)
	}
	m.orders[key(order.RestaurantID, order.ID)] = *cloneOrder(*order)
	return nil
}

func (m *memOrders) UpdateIfVersion(_ context.Context, restaurantID, id string, version int, patch domain.OrderPatch) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[key(restaurantID, id)]
	if !ok || o.Version != version {
		return nil, nil
	}
	if m.staleWrites > 0 {
		m.staleWrites--
		return nil, nil
	}
	updated := patch.Apply(o)
	m.orders[key(restaurantID, id)] = updated
	return cloneOrder(updated), nil
}

func (m *memOrders) DeleteOrder(_ context.Context, restaurantID, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[key(restaurantID, id)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	delete(m.orders, key(restaurantID, id))
	return cloneOrder(o), nil
}

func (m *memOrders) ListOrders(_ context.Context, restaurantID string) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		if o.RestaurantID == restaurantID {
			out = append(out, *cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordered.Before(out[j].Ordered) })
	return out, nil
}

func (m *memOrders) CountOrdersBetween(_ context.Context, restaurantID string, from, to time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, o := range m.orders {
		if o.RestaurantID == restaurantID && !o.Ordered.Before(from) && !o.Ordered.After(to) {
			count++
		}
	}
	return count, nil
}

func (m *memOrders) SaveQRCode(_ context.Context, restaurantID, id string, qr []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.qr[key(restaurantID, id)] = qr
	return nil
}

func (m *memOrders) GetQRCode(_ context.Context, restaurantID, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[key(restaurantID, id)]; !ok {
		return nil, sql.ErrNoRows
	}
	return m.qr[key(restaurantID, id)], nil
}

func (m *memOrders) DisplayName(_ context.Context, restaurantID, workerID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.workers[key(restaurantID, workerID)]
	if !ok {
		return "", sql.ErrNoRows
	}
	return name, nil
}

// memRecords keeps business records with the one-record-per-order rule.
type memRecords struct {
	mu      sync.Mutex
	records []domain.BusinessRecord
}

func (m *memRecords) InsertRecord(_ context.Context, record *domain.BusinessRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.RestaurantID == record.RestaurantID && r.OriginalOrderID == record.OriginalOrderID {
			return false, nil
		}
	}
	record.ID = fmt.Sprintf("record-%d", len(m.records)+1)
	m.records = append(m.records, *record)
	return true, nil
}

func (m *memRecords) all(restaurantID string) []domain.BusinessRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.BusinessRecord
	for _, r := range m.records {
		if r.RestaurantID == restaurantID {
			out = append(out, r)
		}
	}
	return out
}

func (m *memRecords) GetRecord(_ context.Context, restaurantID, id string) (*domain.BusinessRecord, error) {
	for _, r := range m.all(restaurantID) {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memRecords) GetRecordByOrder(_ context.Context, restaurantID, orderID string) (*domain.BusinessRecord, error) {
	for _, r := range m.all(restaurantID) {
		if r.OriginalOrderID == orderID {
			return &r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memRecords) FindRecords(_ context.Context, restaurantID string, filter domain.BusinessFilter) ([]domain.BusinessRecord, error) {
	var out []domain.BusinessRecord
	for _, r := range m.all(restaurantID) {
		if filter.IsCanceled != nil && r.IsCanceled != *filter.IsCanceled {
			continue
		}
		if filter.Origin != nil && r.Origin != *filter.Origin {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memRecords) DailySummary(_ context.Context, restaurantID string, from, to time.Time) (*domain.DailySummary, error) {
	summary := &domain.DailySummary{}
	for _, r := range m.all(restaurantID) {
		if r.IsCanceled || r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		summary.TotalOrders++
		summary.TotalRevenue += r.Total
		summary.TotalDiscount += r.Discount
		if r.DeliveryFee != nil {
			summary.TotalDeliveryFee += *r.DeliveryFee
		}
	}
	return summary, nil
}

func (m *memRecords) AverageTicketByWaiter(context.Context, string) ([]domain.WaiterTicket, error) {
	return nil, nil
}

func (m *memRecords) SalesByOrigin(context.Context, string) ([]domain.OriginSales, error) {
	return nil, nil
}

func (m *memRecords) TopSellingItems(context.Context, string, *time.Time, *time.Time, int) ([]domain.TopItem, error) {
	return nil, nil
}

// recordingChannel captures every broadcast.
type recordingChannel struct {
	mu     sync.Mutex
	events []domain.Event
}

func (c *recordingChannel) BroadcastAll(_ context.Context, event domain.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	event.Role = ""
	c.events = append(c.events, event)
	return nil
}

func (c *recordingChannel) BroadcastToRole(_ context.Context, role domain.Role, event domain.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	event.Role = role
	c.events = append(c.events, event)
	return nil
}

// named returns "<event>" for broadcasts and "<event>@<ROLE>" for role
// deliveries, in order.
func (c *recordingChannel) named() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, e := range c.events {
		if e.Role == "" {
			out = append(out, e.Name)
		} else {
			out = append(out, e.Name+"@"+string(e.Role))
		}
	}
	return out
}

func (c *recordingChannel) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	orders   *memOrders
	records  *memRecords
	channel  *recordingChannel
	clock    *fakeClock
	business *service.BusinessService
	service  *service.OrderService
}

func newFixture() *fixture {
	f := &fixture{
		orders:  newMemOrders(),
		records: &memRecords{},
		channel: &recordingChannel{},
		clock:   &fakeClock{now: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)},
	}
	f.business = service.NewBusinessService(f.records, nil, nil, nil).WithClock(f.clock.Now)
	f.service = service.NewOrderService(service.OrderServiceDeps{
		Orders:   f.orders,
		Workers:  f.orders,
		Business: f.business,
		Notifier: service.NewNotifier(f.channel, nil),
		Clock:    f.clock.Now,
	})
	return f
}

func intp(v int) *int { return &v }

func tableOrder() *domain.Order {
	return &domain.Order{
		Type:          domain.OrderTypeTable,
		Priority:      domain.PriorityNormal,
		TableNumber:   intp(4),
		WaiterID:      "w1",
		WaiterName:    "Ana",
		Subtotal:      50,
		Total:         50,
		AmountPaid:    60,
		PaymentMethod: domain.PaymentCash,
		Origin:        domain.OriginLocal,
		CustomerCount: intp(2),
		Items: []domain.OrderItem{
			{ItemID: "A", ItemName: "Burger", Category: domain.CategoryFood, Quantity: 2, UnitPrice: 10},
			{ItemID: "B", ItemName: "Juice", Quantity: 3, UnitPrice: 10, Observation: "no ice"},
		},
	}
}

func deliveryOrder() *domain.Order {
	return &domain.Order{
		Type:     domain.OrderTypeDelivery,
		Priority: domain.PriorityHigh,
		Address: &domain.Address{
			Zip: "01000-000", Street: "Rua A", Number: "10", Neighborhood: "Centro", City: "SP",
		},
		WaiterID:      "w2",
		WaiterName:    "Bruno",
		Subtotal:      30,
		DeliveryFee:   5,
		Total:         35,
		AmountPaid:    35,
		PaymentMethod: domain.PaymentPix,
		Origin:        domain.OriginIFood,
		Items: []domain.OrderItem{
			{ItemID: "pizza", ItemName: "Pizza", Category: domain.CategoryFood, Quantity: 1, UnitPrice: 25},
			{ItemID: "soda", ItemName: "Soda", Category: domain.CategoryDrink, Quantity: 1, UnitPrice: 5},
		},
	}
}
