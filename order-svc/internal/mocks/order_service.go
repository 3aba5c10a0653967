package mocks

import (
	"context"

	"barapp/order-svc/internal/domain"
	"barapp/order-svc/internal/service"

	"github.com/stretchr/testify/mock"
)

type OrderServiceInterface struct {
	mock.Mock
}

func NewOrderServiceInterface(t testingT) *OrderServiceInterface {
	m := &OrderServiceInterface{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *OrderServiceInterface) Create(ctx context.Context, restaurantID string, order *domain.Order) (*domain.Order, error) {
	args := m.Called(ctx, restaurantID, order)
	return value[*domain.Order](args, 0), args.Error(1)
}

func (m *OrderServiceInterface) FindOne(ctx context.Context, restaurantID, id string) (*domain.Order, error) {
	args := m.Called(ctx, restaurantID, id)
	return value[*domain.Order](args, 0), args.Error(1)
}

func (m *OrderServiceInterface) List(ctx context.Context, restaurantID string) ([]domain.Order, error) {
	args := m.Called(ctx, restaurantID)
	return value[[]domain.Order](args, 0), args.Error(1)
}

func (m *OrderServiceInterface) Delete(ctx context.Context, restaurantID, id string) (*domain.Order, error) {
	args := m.Called(ctx, restaurantID, id)
	return value[*domain.Order](args, 0), args.Error(1)
}

func (m *OrderServiceInterface) ChangePriority(ctx context.Context, restaurantID, id string, priority domain.Priority) (*domain.Order, error) {
	args := m.Called(ctx, restaurantID, id, priority)
	return value[*domain.Order](args, 0), args.Error(1)
}

func (m *OrderServiceInterface) ChangeStatus(ctx context.Context, restaurantID, id string, status domain.Status, reason string) (*domain.Order, error) {
	args := m.Called(ctx, restaurantID, id, status, reason)
	return value[*domain.Order](args, 0), args.Error(1)
}

func (m *OrderServiceInterface) ConfirmPayment(ctx context.Context, restaurantID, id string) (*domain.Order, error) {
	args := m.Called(ctx, restaurantID, id)
	return value[*domain.Order](args, 0), args.Error(1)
}

func (m *OrderServiceInterface) StartPreparing(ctx context.Context, restaurantID, id string) (*domain.Order, error) {
	args := m.Called(ctx, restaurantID, id)
	return value[*domain.Order](args, 0), args.Error(1)
}

func (m *OrderServiceInterface) FinishPreparing(ctx context.Context, restaurantID, id string) (*domain.Order, error) {
	args := m.Called(ctx, restaurantID, id)
	return value[*domain.Order](args, 0), args.Error(1)
}

func (m *OrderServiceInterface) SetTransactionHandler(ctx context.Context, restaurantID, waiterID, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, restaurantID, waiterID, orderID)
	return value[*domain.Order](args, 0), args.Error(1)
}

func (m *OrderServiceInterface) ReceiptQR(ctx context.Context, restaurantID, id string) ([]byte, error) {
	args := m.Called(ctx, restaurantID, id)
	return value[[]byte](args, 0), args.Error(1)
}

var _ service.OrderServiceInterface = (*OrderServiceInterface)(nil)
