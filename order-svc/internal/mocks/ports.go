package mocks

import (
	"context"
	"time"

	"barapp/order-svc/internal/domain"
	"barapp/order-svc/internal/service"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"
)

type BusinessRepository struct {
	mock.Mock
}

func NewBusinessRepository(t testingT) *BusinessRepository {
	m := &BusinessRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *BusinessRepository) InsertRecord(ctx context.Context, record *domain.BusinessRecord) (bool, error) {
	args := m.Called(ctx, record)
	return args.Bool(0), args.Error(1)
}

func (m *BusinessRepository) GetRecord(ctx context.Context, restaurantID, id string) (*domain.BusinessRecord, error) {
	args := m.Called(ctx, restaurantID, id)
	return value[*domain.BusinessRecord](args, 0), args.Error(1)
}

func (m *BusinessRepository) GetRecordByOrder(ctx context.Context, restaurantID, orderID string) (*domain.BusinessRecord, error) {
	args := m.Called(ctx, restaurantID, orderID)
	return value[*domain.BusinessRecord](args, 0), args.Error(1)
}

func (m *BusinessRepository) FindRecords(ctx context.Context, restaurantID string, filter domain.BusinessFilter) ([]domain.BusinessRecord, error) {
	args := m.Called(ctx, restaurantID, filter)
	return value[[]domain.BusinessRecord](args, 0), args.Error(1)
}

func (m *BusinessRepository) DailySummary(ctx context.Context, restaurantID string, from, to time.Time) (*domain.DailySummary, error) {
	args := m.Called(ctx, restaurantID, from, to)
	return value[*domain.DailySummary](args, 0), args.Error(1)
}

func (m *BusinessRepository) AverageTicketByWaiter(ctx context.Context, restaurantID string) ([]domain.WaiterTicket, error) {
	args := m.Called(ctx, restaurantID)
	return value[[]domain.WaiterTicket](args, 0), args.Error(1)
}

func (m *BusinessRepository) SalesByOrigin(ctx context.Context, restaurantID string) ([]domain.OriginSales, error) {
	args := m.Called(ctx, restaurantID)
	return value[[]domain.OriginSales](args, 0), args.Error(1)
}

func (m *BusinessRepository) TopSellingItems(ctx context.Context, restaurantID string, from, to *time.Time, limit int) ([]domain.TopItem, error) {
	args := m.Called(ctx, restaurantID, from, to, limit)
	return value[[]domain.TopItem](args, 0), args.Error(1)
}

type BusinessPublisher struct {
	mock.Mock
}

func NewBusinessPublisher(t testingT) *BusinessPublisher {
	m := &BusinessPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *BusinessPublisher) PublishRecord(ctx context.Context, msg domain.BusinessMessage) error {
	return m.Called(ctx, msg).Error(0)
}

type Leaderboard struct {
	mock.Mock
}

func NewLeaderboard(t testingT) *Leaderboard {
	m := &Leaderboard{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Leaderboard) RecordItems(ctx context.Context, record domain.BusinessRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *Leaderboard) TopItems(ctx context.Context, restaurantID string, day time.Time, limit int) ([]domain.TopItem, error) {
	args := m.Called(ctx, restaurantID, day, limit)
	return value[[]domain.TopItem](args, 0), args.Error(1)
}

type Channel struct {
	mock.Mock
}

func NewChannel(t testingT) *Channel {
	m := &Channel{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Channel) BroadcastAll(ctx context.Context, event domain.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *Channel) BroadcastToRole(ctx context.Context, role domain.Role, event domain.Event) error {
	return m.Called(ctx, role, event).Error(0)
}

type WorkerDirectory struct {
	mock.Mock
}

func NewWorkerDirectory(t testingT) *WorkerDirectory {
	m := &WorkerDirectory{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *WorkerDirectory) DisplayName(ctx context.Context, restaurantID, workerID string) (string, error) {
	args := m.Called(ctx, restaurantID, workerID)
	return args.String(0), args.Error(1)
}

type MessageReader struct {
	mock.Mock
}

func NewMessageReader(t testingT) *MessageReader {
	m := &MessageReader{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MessageReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	args := m.Called(ctx)
	return value[kafka.Message](args, 0), args.Error(1)
}

var (
	_ service.BusinessRepository = (*BusinessRepository)(nil)
	_ service.BusinessPublisher  = (*BusinessPublisher)(nil)
	_ service.Leaderboard        = (*Leaderboard)(nil)
	_ service.Channel            = (*Channel)(nil)
	_ service.WorkerDirectory    = (*WorkerDirectory)(nil)
	_ service.MessageReader      = (*MessageReader)(nil)
)
