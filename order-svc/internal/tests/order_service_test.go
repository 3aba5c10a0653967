package tests

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"barapp/order-svc/internal/domain"
	"barapp/order-svc/internal/mocks"
	"barapp/order-svc/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const restaurant = "r1"

func TestOrderService_Create(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	input := tableOrder()
	input.Status = domain.StatusDone
	input.IsPaid = true
	started := f.clock.Now()
	input.StartedPreparing = &started
	input.DeliveryFee = 7

	created, err := f.service.Create(ctx, restaurant, input)
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, restaurant, created.RestaurantID)
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.False(t, created.IsPaid)
	assert.Nil(t, created.StartedPreparing)
	assert.Nil(t, created.FinishedPreparing)
	assert.Equal(t, 10.0, created.Change)
	assert.Equal(t, 0.0, created.DeliveryFee)
	assert.Equal(t, f.clock.Now(), created.Ordered)
	assert.Equal(t, domain.CategoryOther, created.Items[1].Category)
	assert.Equal(t, 1, created.Version)

	assert.Equal(t, []string{domain.EventNewOrder, domain.EventNewOrder + "@CHEF"}, f.channel.named())
}

func TestOrderService_CreateNotifiesBartenderForDrinks(t *testing.T) {
	f := newFixture()

	_, err := f.service.Create(context.Background(), restaurant, deliveryOrder())
	require.NoError(t, err)

	assert.Equal(t, []string{
		domain.EventNewOrder,
		domain.EventNewOrder + "@CHEF",
		domain.EventNewOrder + "@BARTENDER",
	}, f.channel.named())
}

func TestOrderService_CreateChangeRounding(t *testing.T) {
	f := newFixture()
	input := tableOrder()
	input.Total = 49.99
	input.AmountPaid = 60.004

	created, err := f.service.Create(context.Background(), restaurant, input)
	require.NoError(t, err)
	assert.Equal(t, 10.01, created.Change)
}

func TestOrderService_CreatePayLater(t *testing.T) {
	f := newFixture()
	input := tableOrder()
	input.AmountPaid = 0

	created, err := f.service.Create(context.Background(), restaurant, input)
	require.NoError(t, err)
	assert.Equal(t, -50.0, created.Change)
	assert.False(t, created.IsPaid)
}

func TestOrderService_CreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *domain.Order)
		wantMsg string
	}{
		{
			name:    "missing fields are listed together",
			mutate:  func(o *domain.Order) { o.Priority = ""; o.WaiterID = ""; o.Origin = "" },
			wantMsg: "missing required fields: priority, waiterId, origin",
		},
		{
			name:    "table order with address",
			mutate:  func(o *domain.Order) { o.Address = &domain.Address{Zip: "1"} },
			wantMsg: "address should not be provided for table orders",
		},
		{
			name:    "table order without table number",
			mutate:  func(o *domain.Order) { o.TableNumber = nil },
			wantMsg: "tableNumber is required for table orders",
		},
		{
			name: "delivery order with table number",
			mutate: func(o *domain.Order) {
				o.Type = domain.OrderTypeDelivery
				o.Address = &domain.Address{Zip: "1", Street: "s", Number: "1", Neighborhood: "n", City: "c"}
			},
			wantMsg: "tableNumber should not be provided for delivery orders",
		},
		{
			name: "delivery address fields",
			mutate: func(o *domain.Order) {
				o.Type = domain.OrderTypeDelivery
				o.TableNumber = nil
				o.Address = &domain.Address{Street: "s", Number: "1"}
			},
			wantMsg: "missing required address fields: zip, neighborhood, city",
		},
		{
			name:    "unknown payment method",
			mutate:  func(o *domain.Order) { o.PaymentMethod = "CHEQUE" },
			wantMsg: `invalid payment method "CHEQUE"`,
		},
		{
			name:    "unknown type",
			mutate:  func(o *domain.Order) { o.Type = "DRIVE_THRU" },
			wantMsg: `invalid order type "DRIVE_THRU"`,
		},
		{
			name:    "negative amount paid",
			mutate:  func(o *domain.Order) { o.AmountPaid = -1 },
			wantMsg: "amountPaid must not be negative",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newFixture()
			input := tableOrder()
			testCase.mutate(input)

			created, err := f.service.Create(context.Background(), restaurant, input)

			assert.Nil(t, created)
			require.Error(t, err)
			assert.True(t, service.IsValidation(err))
			assert.Equal(t, testCase.wantMsg, err.Error())
			assert.Empty(t, f.channel.named())
		})
	}
}

func TestOrderService_RequiresRestaurant(t *testing.T) {
	f := newFixture()

	_, err := f.service.Create(context.Background(), " ", tableOrder())
	assert.True(t, service.IsValidation(err))

	_, err = f.service.List(context.Background(), "")
	assert.True(t, service.IsValidation(err))
}

func TestOrderService_TenantIsolation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.Create(ctx, "tenant-b", tableOrder())
	require.NoError(t, err)

	_, err = f.service.FindOne(ctx, "tenant-a", created.ID)
	assert.True(t, service.IsNotFound(err))
	assert.True(t, errors.Is(err, service.ErrOrderNotFound))

	_, err = f.service.ConfirmPayment(ctx, "tenant-a", created.ID)
	assert.True(t, service.IsNotFound(err))

	_, err = f.service.Delete(ctx, "tenant-a", created.ID)
	assert.True(t, service.IsNotFound(err))

	orders, err := f.service.List(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Empty(t, orders)

	found, err := f.service.FindOne(ctx, "tenant-b", created.ID)
	require.NoError(t, err)
	assert.False(t, found.IsPaid)
}

func TestOrderService_ListOldestFirst(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.service.Create(ctx, restaurant, tableOrder())
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	second, err := f.service.Create(ctx, restaurant, deliveryOrder())
	require.NoError(t, err)

	orders, err := f.service.List(ctx, restaurant)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, first.ID, orders[0].ID)
	assert.Equal(t, second.ID, orders[1].ID)
}

func TestOrderService_DoneRejectedForDelivery(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.Create(ctx, restaurant, deliveryOrder())
	require.NoError(t, err)

	_, err = f.service.ChangeStatus(ctx, restaurant, created.ID, domain.StatusDone, "")
	require.Error(t, err)
	assert.True(t, service.IsValidation(err))
	assert.Contains(t, err.Error(), "READY_TO_DELIVER")

	stored, err := f.service.FindOne(ctx, restaurant, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Version, stored.Version)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestOrderService_FinishBeforeStart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.Create(ctx, restaurant, tableOrder())
	require.NoError(t, err)
	f.channel.reset()

	_, err = f.service.FinishPreparing(ctx, restaurant, created.ID)
	require.Error(t, err)
	assert.True(t, service.IsValidation(err))
	assert.Contains(t, err.Error(), "has not started preparing yet")

	stored, err := f.service.FindOne(ctx, restaurant, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Version, stored.Version)
	assert.Nil(t, stored.FinishedPreparing)
	assert.Empty(t, f.channel.named())
}

func TestOrderService_TableLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.Create(ctx, restaurant, tableOrder())
	require.NoError(t, err)
	assert.Equal(t, 10.0, created.Change)
	f.channel.reset()

	f.clock.Advance(4 * time.Minute)
	started, err := f.service.StartPreparing(ctx, restaurant, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, started.Status)
	require.NotNil(t, started.StartedPreparing)

	f.clock.Advance(11 * time.Minute)
	finished, err := f.service.FinishPreparing(ctx, restaurant, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, finished.Status)
	assert.Empty(t, f.records.all(restaurant))

	paid, err := f.service.ConfirmPayment(ctx, restaurant, created.ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.Equal(t, domain.StatusDone, paid.Status)

	records := f.records.all(restaurant)
	require.Len(t, records, 1)
	record := records[0]
	assert.Equal(t, created.ID, record.OriginalOrderID)
	assert.Equal(t, 4, record.TimeToStartPreparing)
	assert.Equal(t, 11, record.TimePreparing)
	assert.GreaterOrEqual(t, record.TimePreparing, 0)
	assert.Nil(t, record.TimeToDelivery)
	assert.Nil(t, record.DeliveryFee)
	assert.Equal(t, created.Ordered.In(time.Local).Hour(), record.HourSlot)
	assert.Equal(t, 5, record.TotalItemsCount)
	assert.Equal(t, 20.0, record.Items[0].TotalPrice)
	assert.Equal(t, "no ice", record.Items[1].Modifications)
	assert.False(t, record.IsCanceled)

	assert.Equal(t, []string{
		domain.EventStartPreparing + "@WAITER",
		domain.EventOrderStatusChange,
		domain.EventFinishPreparing + "@WAITER",
		domain.EventOrderStatusChange,
		domain.EventAnalyticsUpdate,
	}, f.channel.named())

	_, err = f.service.ChangeStatus(ctx, restaurant, created.ID, domain.StatusPreparing, "")
	assert.True(t, service.IsValidation(err))
}

func TestOrderService_PaymentBeforeKitchen(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.Create(ctx, restaurant, tableOrder())
	require.NoError(t, err)

	paid, err := f.service.ConfirmPayment(ctx, restaurant, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, paid.Status)

	_, err = f.service.StartPreparing(ctx, restaurant, created.ID)
	require.NoError(t, err)
	done, err := f.service.FinishPreparing(ctx, restaurant, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, done.Status)
	assert.Len(t, f.records.all(restaurant), 1)
}

func TestOrderService_DeliveryLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.Create(ctx, restaurant, deliveryOrder())
	require.NoError(t, err)
	assert.Equal(t, 5.0, created.DeliveryFee)

	_, err = f.service.StartPreparing(ctx, restaurant, created.ID)
	require.NoError(t, err)
	f.clock.Advance(20 * time.Minute)
	_, err = f.service.FinishPreparing(ctx, restaurant, created.ID)
	require.NoError(t, err)
	f.channel.reset()

	ready, err := f.service.ConfirmPayment(ctx, restaurant, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReadyToDeliver, ready.Status)
	assert.Empty(t, f.records.all(restaurant))
	assert.Equal(t, []string{domain.EventOrderStatusChange}, f.channel.named())

	f.clock.Advance(25 * time.Minute)
	delivered, err := f.service.ChangeStatus(ctx, restaurant, created.ID, domain.StatusDelivered, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, delivered.Status)

	records := f.records.all(restaurant)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].TimeToDelivery)
	assert.Equal(t, 25, *records[0].TimeToDelivery)
	require.NotNil(t, records[0].DeliveryFee)
	assert.Equal(t, 5.0, *records[0].DeliveryFee)
	assert.Equal(t, "Centro", records[0].DeliveryNeighborhood)
	assert.Equal(t, 20, records[0].TimePreparing)
}

func TestOrderService_FinishNotifiesDelivery(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.Create(ctx, restaurant, deliveryOrder())
	require.NoError(t, err)
	_, err = f.service.StartPreparing(ctx, restaurant, created.ID)
	require.NoError(t, err)
	f.channel.reset()

	_, err = f.service.FinishPreparing(ctx, restaurant, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{
		domain.EventFinishPreparing + "@WAITER",
		domain.EventFinishPreparing + "@DELIVERY",
	}, f.channel.named())
}

func TestOrderService_Cancel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.Create(ctx, restaurant, tableOrder())
	require.NoError(t, err)

	_, err = f.service.ChangeStatus(ctx, restaurant, created.ID, domain.StatusCanceled, "  ")
	assert.True(t, service.IsValidation(err))

	canceled, err := f.service.ChangeStatus(ctx, restaurant, created.ID, domain.StatusCanceled, "customer left")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCanceled, canceled.Status)
	assert.Equal(t, "customer left", canceled.CancellationReason)

	// never prepared, so no record
	assert.Empty(t, f.records.all(restaurant))

	_, err = f.service.ConfirmPayment(ctx, restaurant, created.ID)
	assert.True(t, service.IsValidation(err))

	again, err := f.service.ChangeStatus(ctx, restaurant, created.ID, domain.StatusCanceled, "other")
	require.NoError(t, err)
	assert.Equal(t, canceled.Version, again.Version)
}

func TestOrderService_PaymentAfterClosingUnpaid(t *testing.T) {
	tests := []struct {
		name       string
		closeWith  domain.Status
		wantStatus domain.Status
	}{
		{name: "served before paying", closeWith: domain.StatusServed, wantStatus: domain.StatusDone},
		{name: "marked done before paying", closeWith: domain.StatusDone, wantStatus: domain.StatusDone},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()

			created, err := f.service.Create(ctx, restaurant, tableOrder())
			require.NoError(t, err)
			_, err = f.service.StartPreparing(ctx, restaurant, created.ID)
			require.NoError(t, err)
			f.clock.Advance(10 * time.Minute)
			_, err = f.service.FinishPreparing(ctx, restaurant, created.ID)
			require.NoError(t, err)

			closed, err := f.service.ChangeStatus(ctx, restaurant, created.ID, testCase.closeWith, "")
			require.NoError(t, err)
			assert.Equal(t, testCase.closeWith, closed.Status)
			assert.Empty(t, f.records.all(restaurant))

			paid, err := f.service.ConfirmPayment(ctx, restaurant, created.ID)
			require.NoError(t, err)
			assert.True(t, paid.IsPaid)
			assert.Equal(t, testCase.wantStatus, paid.Status)

			records := f.records.all(restaurant)
			require.Len(t, records, 1)
			assert.Equal(t, created.ID, records[0].OriginalOrderID)
			assert.False(t, records[0].IsCanceled)

			again, err := f.service.ConfirmPayment(ctx, restaurant, created.ID)
			require.NoError(t, err)
			assert.Equal(t, paid.Version, again.Version)
			assert.Len(t, f.records.all(restaurant), 1)
		})
	}
}

var errDirectoryDown = errors.New("connection refused")

func TestOrderService_SetTransactionHandlerDirectoryFailure(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantErr      error
		wantNotFound bool
	}{
		{name: "unknown worker", err: sql.ErrNoRows, wantErr: service.ErrWorkerNotFound, wantNotFound: true},
		{name: "directory unavailable", err: errDirectoryDown, wantErr: errDirectoryDown},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			orders := newMemOrders()
			workers := mocks.NewWorkerDirectory(t)
			svc := service.NewOrderService(service.OrderServiceDeps{Orders: orders, Workers: workers})
			ctx := context.Background()

			created, err := svc.Create(ctx, restaurant, tableOrder())
			require.NoError(t, err)

			workers.On("DisplayName", mock.Anything, restaurant, "w9").Return("", testCase.err)

			_, err = svc.SetTransactionHandler(ctx, restaurant, "w9", created.ID)
			require.Error(t, err)
			assert.Equal(t, testCase.wantNotFound, service.IsNotFound(err))
			assert.ErrorIs(t, err, testCase.wantErr)

			stored, err := svc.FindOne(ctx, restaurant, created.ID)
			require.NoError(t, err)
			assert.Empty(t, stored.TransactionHandlerID)
		})
	}
}

func TestOrderService_CancelAfterKitchenRecordsUnpaid(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.Create(ctx, restaurant, tableOrder())
	require.NoError(t, err)
	_, err = f.service.StartPreparing(ctx, restaurant, created.ID)
	require.NoError(t, err)
	_, err = f.service.FinishPreparing(ctx, restaurant, created.ID)
	require.NoError(t, err)

	_, err = f.service.ChangeStatus(ctx, restaurant, created.ID, domain.StatusCanceled, "wrong table")
	require.NoError(t, err)

	records := f.records.all(restaurant)
	require.Len(t, records, 1)
	assert.True(t, records[0].IsCanceled)
	assert.Equal(t, "wrong table", records[0].CancellationReason)

	summary, err := f.business.DailySummary(ctx, restaurant, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalOrders)
}

func TestOrderService_ConcurrentConfirmPayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.Create(ctx, restaurant, tableOrder())
	require.NoError(t, err)
	_, err = f.service.StartPreparing(ctx, restaurant, created.ID)
	require.NoError(t, err)
	_, err = f.service.FinishPreparing(ctx, restaurant, created.ID)
	require.NoError(t, err)

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, err := f.service.ConfirmPayment(ctx, restaurant, created.ID)
			if err == nil && order.Status != domain.StatusDone {
				err = errors.New("unexpected status " + string(order.Status))
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, f.records.all(restaurant), 1)
}

func TestOrderService_ConflictAfterRetries(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.Create(ctx, restaurant, tableOrder())
	require.NoError(t, err)
	f.orders.staleWrites = 3

	_, err = f.service.ChangePriority(ctx, restaurant, created.ID, domain.PriorityHigh)
	require.Error(t, err)
	assert.True(t, service.IsConflict(err))

	f.orders.staleWrites = 2
	updated, err := f.service.ChangePriority(ctx, restaurant, created.ID, domain.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, updated.Priority)
	assert.Equal(t, created.Version+1, updated.Version)
}

func TestOrderService_ChangePriority(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.Create(ctx, restaurant, tableOrder())
	require.NoError(t, err)

	_, err = f.service.ChangePriority(ctx, restaurant, created.ID, "URGENT")
	assert.True(t, service.IsValidation(err))

	same, err := f.service.ChangePriority(ctx, restaurant, created.ID, domain.PriorityNormal)
	require.NoError(t, err)
	assert.Equal(t, created.Version, same.Version)
}

func TestOrderService_SetTransactionHandler(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.orders.workers[key(restaurant, "w9")] = "Carla"

	created, err := f.service.Create(ctx, restaurant, tableOrder())
	require.NoError(t, err)

	_, err = f.service.SetTransactionHandler(ctx, restaurant, "ghost", created.ID)
	assert.True(t, errors.Is(err, service.ErrWorkerNotFound))

	_, err = f.service.SetTransactionHandler(ctx, "other", "w9", created.ID)
	assert.True(t, service.IsNotFound(err))

	updated, err := f.service.SetTransactionHandler(ctx, restaurant, "w9", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "w9", updated.TransactionHandlerID)
	assert.Equal(t, "Carla", updated.TransactionHandlerName)
}

func TestOrderService_StartTwice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.Create(ctx, restaurant, tableOrder())
	require.NoError(t, err)
	_, err = f.service.StartPreparing(ctx, restaurant, created.ID)
	require.NoError(t, err)

	_, err = f.service.StartPreparing(ctx, restaurant, created.ID)
	assert.True(t, service.IsValidation(err))
}

func TestOrderService_Delete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.Create(ctx, restaurant, tableOrder())
	require.NoError(t, err)

	deleted, err := f.service.Delete(ctx, restaurant, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = f.service.FindOne(ctx, restaurant, created.ID)
	assert.True(t, service.IsNotFound(err))
}

func TestOrderService_ReceiptQR(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	qr := service.DefaultQRGenerator{BaseURL: "http://localhost"}
	svc := service.NewOrderService(service.OrderServiceDeps{
		Orders: f.orders,
		QR:     qr,
		Clock:  f.clock.Now,
	})

	created, err := svc.Create(ctx, restaurant, tableOrder())
	require.NoError(t, err)

	png, err := svc.ReceiptQR(ctx, restaurant, created.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, png)

	f.orders.qr[key(restaurant, created.ID)] = nil
	regenerated, err := svc.ReceiptQR(ctx, restaurant, created.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, regenerated)
	assert.NotEmpty(t, f.orders.qr[key(restaurant, created.ID)])

	_, err = svc.ReceiptQR(ctx, "other", created.ID)
	assert.True(t, service.IsNotFound(err))
}
