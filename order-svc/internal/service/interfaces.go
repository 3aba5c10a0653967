package service

import (
	"context"
	"time"

	"barapp/order-svc/internal/domain"
)

// OrderRepository returns sql.ErrNoRows for rows missing in the tenant.
type OrderRepository interface {
	GetOrder(ctx context.Context, restaurantID, id string) (*domain.Order, error)
	InsertOrder(ctx context.Context, order *domain.Order) error
	// UpdateIfVersion applies patch only when the stored version equals
	// version. It returns (nil, nil) when no row matched.
	UpdateIfVersion(ctx context.Context, restaurantID, id string, version int, patch domain.OrderPatch) (*domain.Order, error)
	DeleteOrder(ctx context.Context, restaurantID, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, restaurantID string) ([]domain.Order, error)
	CountOrdersBetween(ctx context.Context, restaurantID string, from, to time.Time) (int, error)
	SaveQRCode(ctx context.Context, restaurantID, id string, qr []byte) error
	GetQRCode(ctx context.Context, restaurantID, id string) ([]byte, error)
}

type WorkerDirectory interface {
	DisplayName(ctx context.Context, restaurantID, workerID string) (string, error)
}

type BusinessRepository interface {
	// InsertRecord reports false when a record for the same order exists.
	InsertRecord(ctx context.Context, record *domain.BusinessRecord) (bool, error)
	GetRecord(ctx context.Context, restaurantID, id string) (*domain.BusinessRecord, error)
	GetRecordByOrder(ctx context.Context, restaurantID, orderID string) (*domain.BusinessRecord, error)
	FindRecords(ctx context.Context, restaurantID string, filter domain.BusinessFilter) ([]domain.BusinessRecord, error)
	DailySummary(ctx context.Context, restaurantID string, from, to time.Time) (*domain.DailySummary, error)
	AverageTicketByWaiter(ctx context.Context, restaurantID string) ([]domain.WaiterTicket, error)
	SalesByOrigin(ctx context.Context, restaurantID string) ([]domain.OriginSales, error)
	TopSellingItems(ctx context.Context, restaurantID string, from, to *time.Time, limit int) ([]domain.TopItem, error)
}

type BusinessPublisher interface {
	PublishRecord(ctx context.Context, msg domain.BusinessMessage) error
}

type Leaderboard interface {
	RecordItems(ctx context.Context, record domain.BusinessRecord) error
	TopItems(ctx context.Context, restaurantID string, day time.Time, limit int) ([]domain.TopItem, error)
}

// Channel delivers events to connected terminals.
type Channel interface {
	BroadcastAll(ctx context.Context, event domain.Event) error
	BroadcastToRole(ctx context.Context, role domain.Role, event domain.Event) error
}

type OrderServiceInterface interface {
	Create(ctx context.Context, restaurantID string, order *domain.Order) (*domain.Order, error)
	FindOne(ctx context.Context, restaurantID, id string) (*domain.Order, error)
	List(ctx context.Context, restaurantID string) ([]domain.Order, error)
	Delete(ctx context.Context, restaurantID, id string) (*domain.Order, error)
	ChangePriority(ctx context.Context, restaurantID, id string, priority domain.Priority) (*domain.Order, error)
	ChangeStatus(ctx context.Context, restaurantID, id string, status domain.Status, reason string) (*domain.Order, error)
	ConfirmPayment(ctx context.Context, restaurantID, id string) (*domain.Order, error)
	StartPreparing(ctx context.Context, restaurantID, id string) (*domain.Order, error)
	FinishPreparing(ctx context.Context, restaurantID, id string) (*domain.Order, error)
	SetTransactionHandler(ctx context.Context, restaurantID, waiterID, orderID string) (*domain.Order, error)
	ReceiptQR(ctx context.Context, restaurantID, id string) ([]byte, error)
}

type BusinessServiceInterface interface {
	DeriveAndStore(ctx context.Context, order *domain.Order, trigger domain.Status) (Derivation, error)
	FindOne(ctx context.Context, restaurantID, id string) (*domain.BusinessRecord, error)
	FindByOrderID(ctx context.Context, restaurantID, orderID string) (*domain.BusinessRecord, error)
	Find(ctx context.Context, restaurantID string, filter domain.BusinessFilter) ([]domain.BusinessRecord, error)
	DailySummary(ctx context.Context, restaurantID string, date time.Time) (*domain.DailySummary, error)
	AverageTicketByWaiter(ctx context.Context, restaurantID string) ([]domain.WaiterTicket, error)
	TotalSalesByOrigin(ctx context.Context, restaurantID string) ([]domain.OriginSales, error)
	TopSellingItems(ctx context.Context, restaurantID string, limit int) ([]domain.TopItem, error)
	TopSellingToday(ctx context.Context, restaurantID string, limit int) ([]domain.TopItem, error)
}

type NotifierInterface interface {
	OrderCreated(ctx context.Context, order *domain.Order)
	StatusChanged(ctx context.Context, order *domain.Order)
	PreparingStarted(ctx context.Context, order *domain.Order)
	PreparingFinished(ctx context.Context, order *domain.Order)
	AnalyticsUpdated(ctx context.Context, restaurantID string, update domain.AnalyticsUpdate)
}

var (
	_ OrderServiceInterface    = (*OrderService)(nil)
	_ BusinessServiceInterface = (*BusinessService)(nil)
	_ NotifierInterface        = (*Notifier)(nil)
)
