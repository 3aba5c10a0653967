package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"barapp/order-svc/internal/domain"
	"barapp/order-svc/internal/metrics"
)

const defaultTopItemsLimit = 10

const (
	SkipNotStarted  = "order never started preparing"
	SkipNotFinished = "order never finished preparing"
	SkipNotPaid     = "order is not paid"
	SkipDuplicate   = "business record already exists"
)

// Derivation is the outcome of DeriveAndStore: either a stored record or the
// reason no record was written.
type Derivation struct {
	Record     *domain.BusinessRecord
	SkipReason string
}

func (d Derivation) Skipped() bool { return d.Record == nil }

type BusinessService struct {
	repository  BusinessRepository
	publisher   BusinessPublisher
	leaderboard Leaderboard
	metrics     *metrics.Registry
	now         func() time.Time
}

func NewBusinessService(repository BusinessRepository, publisher BusinessPublisher, leaderboard Leaderboard, reg *metrics.Registry) *BusinessService {
	return &BusinessService{
		repository:  repository,
		publisher:   publisher,
		leaderboard: leaderboard,
		metrics:     reg,
		now:         time.Now,
	}
}

// WithClock replaces the time source used for record dates.
func (s *BusinessService) WithClock(now func() time.Time) *BusinessService {
	s.now = now
	return s
}

func roundMinutes(d time.Duration) int {
	return int(math.Round(d.Minutes()))
}

// DeriveRecord builds the business record for an order entering trigger. It
// returns a skip reason when the order does not qualify.
func DeriveRecord(order *domain.Order, trigger domain.Status, now time.Time) (*domain.BusinessRecord, string) {
	if order.StartedPreparing == nil {
		return nil, SkipNotStarted
	}
	if order.FinishedPreparing == nil {
		return nil, SkipNotFinished
	}
	if !order.IsPaid && trigger != domain.StatusCanceled {
		return nil, SkipNotPaid
	}

	record := &domain.BusinessRecord{
		OriginalOrderID:        order.ID,
		RestaurantID:           order.RestaurantID,
		Date:                   now,
		WeekDay:                int(now.Weekday()),
		HourSlot:               order.Ordered.In(time.Local).Hour(),
		Subtotal:               order.Subtotal,
		Discount:               order.Discount,
		Total:                  order.Total,
		CustomerCount:          order.CustomerCount,
		PaymentMethod:          order.PaymentMethod,
		Origin:                 order.Origin,
		TimeToStartPreparing:   roundMinutes(order.StartedPreparing.Sub(order.Ordered)),
		TimePreparing:          roundMinutes(order.FinishedPreparing.Sub(*order.StartedPreparing)),
		OrderType:              order.Type,
		WaiterID:               order.WaiterID,
		WaiterName:             order.WaiterName,
		TransactionHandlerID:   order.TransactionHandlerID,
		TransactionHandlerName: order.TransactionHandlerName,
		IsCanceled:             trigger == domain.StatusCanceled,
	}
	if record.IsCanceled {
		record.CancellationReason = order.CancellationReason
	}
	if trigger == domain.StatusDelivered {
		minutes := roundMinutes(now.Sub(*order.FinishedPreparing))
		record.TimeToDelivery = &minutes
	}
	if order.Type == domain.OrderTypeDelivery {
		fee := order.DeliveryFee
		record.DeliveryFee = &fee
		if order.Address != nil {
			record.DeliveryNeighborhood = order.Address.Neighborhood
		}
	}

	record.Items = make([]domain.BusinessItem, 0, len(order.Items))
	for _, item := range order.Items {
		record.Items = append(record.Items, domain.BusinessItem{
			ItemID:        item.ItemID,
			ItemName:      item.ItemName,
			Category:      item.Category,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			TotalPrice:    round2(item.UnitPrice * float64(item.Quantity)),
			Modifications: item.Observation,
		})
		record.TotalItemsCount += item.Quantity
	}
	return record, ""
}

// DeriveAndStore writes the business record for order. Skips are reported in
// the Derivation, only storage failures are returned as errors.
func (s *BusinessService) DeriveAndStore(ctx context.Context, order *domain.Order, trigger domain.Status) (Derivation, error) {
	record, reason := DeriveRecord(order, trigger, s.now())
	if record == nil {
		s.metrics.RecordSkipped(reason)
		return Derivation{SkipReason: reason}, nil
	}

	inserted, err := s.repository.InsertRecord(ctx, record)
	if err != nil {
		return Derivation{}, fmt.Errorf("failed to store business record: %w", err)
	}
	if !inserted {
		s.metrics.RecordSkipped(SkipDuplicate)
		return Derivation{SkipReason: SkipDuplicate}, nil
	}
	s.metrics.RecordStored()

	if s.publisher != nil {
		msg := domain.BusinessMessage{
			Type:         domain.BusinessMessageRecorded,
			RestaurantID: record.RestaurantID,
			OrderID:      record.OriginalOrderID,
			Record:       *record,
			Timestamp:    s.now(),
		}
		if err := s.publisher.PublishRecord(ctx, msg); err != nil {
			log.Printf("[business] publish record for order %s failed: %v", record.OriginalOrderID, err)
		}
	}
	return Derivation{Record: record}, nil
}

func (s *BusinessService) FindOne(ctx context.Context, restaurantID, id string) (*domain.BusinessRecord, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	record, err := s.repository.GetRecord(ctx, restaurantID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load business record: %w", err)
	}
	return record, nil
}

func (s *BusinessService) FindByOrderID(ctx context.Context, restaurantID, orderID string) (*domain.BusinessRecord, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	record, err := s.repository.GetRecordByOrder(ctx, restaurantID, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(ErrRecordNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load business record: %w", err)
	}
	return record, nil
}

func (s *BusinessService) Find(ctx context.Context, restaurantID string, filter domain.BusinessFilter) ([]domain.BusinessRecord, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	records, err := s.repository.FindRecords(ctx, restaurantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query business records: %w", err)
	}
	if records == nil {
		records = []domain.BusinessRecord{}
	}
	return records, nil
}

// DayBounds returns the first and last millisecond of day's calendar date in
// day's location.
func DayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24*time.Hour - time.Millisecond)
	return start, end
}

// DailySummary aggregates the records of date. A zero date means today.
func (s *BusinessService) DailySummary(ctx context.Context, restaurantID string, date time.Time) (*domain.DailySummary, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = s.now()
	}
	from, to := DayBounds(date)
	summary, err := s.repository.DailySummary(ctx, restaurantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to compute daily summary: %w", err)
	}
	if summary == nil {
		summary = &domain.DailySummary{}
	}
	summary.Date = from.Format("2006-01-02")
	if summary.TotalOrders > 0 && summary.AverageTicket == 0 {
		summary.AverageTicket = round2(summary.TotalRevenue / float64(summary.TotalOrders))
	}
	return summary, nil
}

func (s *BusinessService) AverageTicketByWaiter(ctx context.Context, restaurantID string) ([]domain.WaiterTicket, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	rows, err := s.repository.AverageTicketByWaiter(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute average ticket: %w", err)
	}
	if rows == nil {
		rows = []domain.WaiterTicket{}
	}
	return rows, nil
}

func (s *BusinessService) TotalSalesByOrigin(ctx context.Context, restaurantID string) ([]domain.OriginSales, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	rows, err := s.repository.SalesByOrigin(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute sales by origin: %w", err)
	}
	if rows == nil {
		rows = []domain.OriginSales{}
	}
	return rows, nil
}

func (s *BusinessService) TopSellingItems(ctx context.Context, restaurantID string, limit int) ([]domain.TopItem, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTopItemsLimit
	}
	items, err := s.repository.TopSellingItems(ctx, restaurantID, nil, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to compute top selling items: %w", err)
	}
	if items == nil {
		items = []domain.TopItem{}
	}
	return items, nil
}

// TopSellingToday reads the Redis leaderboard and falls back to the database
// when the cache is empty or unavailable.
func (s *BusinessService) TopSellingToday(ctx context.Context, restaurantID string, limit int) ([]domain.TopItem, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTopItemsLimit
	}
	today := s.now()
	if s.leaderboard != nil {
		items, err := s.leaderboard.TopItems(ctx, restaurantID, today, limit)
		if err != nil {
			log.Printf("[business] leaderboard read failed, using database: %v", err)
		} else if len(items) > 0 {
			return items, nil
		}
	}

	from, to := DayBounds(today)
	items, err := s.repository.TopSellingItems(ctx, restaurantID, &from, &to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to compute top selling items: %w", err)
	}
	if items == nil {
		items = []domain.TopItem{}
	}
	return items, nil
}

func validateFilter(f domain.BusinessFilter) error {
	if f.PaymentMethod != nil && !f.PaymentMethod.Valid() {
		return invalid("invalid payment method %q", *f.PaymentMethod)
	}
	if f.Origin != nil && !f.Origin.Valid() {
		return invalid("invalid origin %q", *f.Origin)
	}
	if f.WeekDay != nil && (*f.WeekDay < 0 || *f.WeekDay > 6) {
		return invalid("weekDay must be between 0 and 6")
	}
	if f.HourSlot != nil {
		from, to := f.HourSlot.Bounds()
		if from < 0 || to > 23 || from > to {
			return invalid("invalid hour slot range %d-%d", from, to)
		}
	}
	if f.Date != nil && f.Date.To.Before(f.Date.From) {
		return invalid("date range end is before its start")
	}
	return nil
}
