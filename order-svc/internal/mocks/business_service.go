package mocks

import (
	"context"
	"time"

	"barapp/order-svc/internal/domain"
	"barapp/order-svc/internal/service"

	"github.com/stretchr/testify/mock"
)

type BusinessServiceInterface struct {
	mock.Mock
}

func NewBusinessServiceInterface(t testingT) *BusinessServiceInterface {
	m := &BusinessServiceInterface{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *BusinessServiceInterface) DeriveAndStore(ctx context.Context, order *domain.Order, trigger domain.Status) (service.Derivation, error) {
	args := m.Called(ctx, order, trigger)
	return value[service.Derivation](args, 0), args.Error(1)
}

func (m *BusinessServiceInterface) FindOne(ctx context.Context, restaurantID, id string) (*domain.BusinessRecord, error) {
	args := m.Called(ctx, restaurantID, id)
	return value[*domain.BusinessRecord](args, 0), args.Error(1)
}

func (m *BusinessServiceInterface) FindByOrderID(ctx context.Context, restaurantID, orderID string) (*domain.BusinessRecord, error) {
	args := m.Called(ctx, restaurantID, orderID)
	return value[*domain.BusinessRecord](args, 0), args.Error(1)
}

func (m *BusinessServiceInterface) Find(ctx context.Context, restaurantID string, filter domain.BusinessFilter) ([]domain.BusinessRecord, error) {
	args := m.Called(ctx, restaurantID, filter)
	return value[[]domain.BusinessRecord](args, 0), args.Error(1)
}

func (m *BusinessServiceInterface) DailySummary(ctx context.Context, restaurantID string, date time.Time) (*domain.DailySummary, error) {
	args := m.Called(ctx, restaurantID, date)
	return value[*domain.DailySummary](args, 0), args.Error(1)
}

func (m *BusinessServiceInterface) AverageTicketByWaiter(ctx context.Context, restaurantID string) ([]domain.WaiterTicket, error) {
	args := m.Called(ctx, restaurantID)
	return value[[]domain.WaiterTicket](args, 0), args.Error(1)
}

func (m *BusinessServiceInterface) TotalSalesByOrigin(ctx context.Context, restaurantID string) ([]domain.OriginSales, error) {
	args := m.Called(ctx, restaurantID)
	return value[[]domain.OriginSales](args, 0), args.Error(1)
}

func (m *BusinessServiceInterface) TopSellingItems(ctx context.Context, restaurantID string, limit int) ([]domain.TopItem, error) {
	args := m.Called(ctx, restaurantID, limit)
	return value[[]domain.TopItem](args, 0), args.Error(1)
}

func (m *BusinessServiceInterface) TopSellingToday(ctx context.Context, restaurantID string, limit int) ([]domain.TopItem, error) {
	args := m.Called(ctx, restaurantID, limit)
	return value[[]domain.TopItem](args, 0), args.Error(1)
}

var _ service.BusinessServiceInterface = (*BusinessServiceInterface)(nil)
