package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"barapp/order-svc/internal/domain"

	"github.com/google/uuid"
)

const businessColumns = `id, restaurant_id, original_order_id, date, week_day, hour_slot, subtotal, discount,
	delivery_fee, total, customer_count, payment_method, origin, items, total_items_count,
	time_to_start_preparing, time_preparing, time_to_delivery, order_type, waiter_id, waiter_name,
	transaction_handler_id, transaction_handler_name, delivery_neighborhood, is_canceled, cancellation_reason`

type BusinessRepository struct {
	DB *sql.DB
}

func NewBusinessRepository(db *sql.DB) *BusinessRepository {
	return &BusinessRepository{DB: db}
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func scanRecord(row rowScanner) (*domain.BusinessRecord, error) {
	var (
		rec            domain.BusinessRecord
		deliveryFee    sql.NullFloat64
		customers      sql.NullInt64
		items          []byte
		timeToDelivery sql.NullInt64
	)
	err := row.Scan(
		&rec.ID, &rec.RestaurantID, &rec.OriginalOrderID, &rec.Date, &rec.WeekDay, &rec.HourSlot,
		&rec.Subtotal, &rec.Discount, &deliveryFee, &rec.Total, &customers, &rec.PaymentMethod,
		&rec.Origin, &items, &rec.TotalItemsCount, &rec.TimeToStartPreparing, &rec.TimePreparing,
		&timeToDelivery, &rec.OrderType, &rec.WaiterID, &rec.WaiterName, &rec.TransactionHandlerID,
		&rec.TransactionHandlerName, &rec.DeliveryNeighborhood, &rec.IsCanceled, &rec.CancellationReason,
	)
	if err != nil {
		return nil, err
	}
	if deliveryFee.Valid {
		fee := deliveryFee.Float64
		rec.DeliveryFee = &fee
	}
	rec.CustomerCount = intPtr(customers)
	rec.TimeToDelivery = intPtr(timeToDelivery)
	if err := json.Unmarshal(items, &rec.Items); err != nil {
		return nil, fmt.Errorf("decode items of record %s: %w", rec.ID, err)
	}
	return &rec, nil
}

// InsertRecord reports false when the order already has a record.
func (r *BusinessRepository) InsertRecord(ctx context.Context, rec *domain.BusinessRecord) (bool, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	items, err := json.Marshal(rec.Items)
	if err != nil {
		return false, fmt.Errorf("encode items: %w", err)
	}

	result, err := r.DB.ExecContext(ctx, `
		INSERT INTO business_records (`+businessColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26)
		ON CONFLICT (restaurant_id, original_order_id) DO NOTHING`,
		rec.ID, rec.RestaurantID, rec.OriginalOrderID, rec.Date, rec.WeekDay, rec.HourSlot,
		rec.Subtotal, rec.Discount, nullFloat(rec.DeliveryFee), rec.Total, nullInt(rec.CustomerCount),
		rec.PaymentMethod, rec.Origin, items, rec.TotalItemsCount, rec.TimeToStartPreparing,
		rec.TimePreparing, nullInt(rec.TimeToDelivery), rec.OrderType, rec.WaiterID, rec.WaiterName,
		rec.TransactionHandlerID, rec.TransactionHandlerName, rec.DeliveryNeighborhood, rec.IsCanceled,
		rec.CancellationReason,
	)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *BusinessRepository) GetRecord(ctx context.Context, restaurantID, id string) (*domain.BusinessRecord, error) {
	return scanRecord(r.DB.QueryRowContext(ctx,
		"SELECT "+businessColumns+" FROM business_records WHERE id = $1 AND restaurant_id = $2", id, restaurantID))
}

func (r *BusinessRepository) GetRecordByOrder(ctx context.Context, restaurantID, orderID string) (*domain.BusinessRecord, error) {
	return scanRecord(r.DB.QueryRowContext(ctx,
		"SELECT "+businessColumns+" FROM business_records WHERE original_order_id = $1 AND restaurant_id = $2", orderID, restaurantID))
}

// BuildFilter renders f as a WHERE clause over business_records, always
// scoped to restaurantID.
func BuildFilter(restaurantID string, f domain.BusinessFilter) (string, []any) {
	conds := []string{"restaurant_id = $1"}
	args := []any{restaurantID}
	add := func(expr string, values ...any) {
		placeholders := make([]any, len(values))
		for i, v := range values {
			args = append(args, v)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conds = append(conds, fmt.Sprintf(expr, placeholders...))
	}
	intRange := func(column string, rng *domain.IntRange) {
		if rng == nil {
			return
		}
		from, to := rng.Bounds()
		add(column+" BETWEEN %s AND %s", from, to)
	}
	floatRange := func(column string, rng *domain.FloatRange) {
		if rng == nil {
			return
		}
		from, to := rng.Bounds()
		add(column+" BETWEEN %s AND %s", from, to)
	}
	equals := func(column string, value *string) {
		if value != nil {
			add(column+" = %s", *value)
		}
	}

	if f.Date != nil {
		add("date BETWEEN %s AND %s", f.Date.From, f.Date.To)
	}
	if f.WeekDay != nil {
		add("week_day = %s", *f.WeekDay)
	}
	intRange("hour_slot", f.HourSlot)
	floatRange("discount", f.Discount)
	floatRange("delivery_fee", f.DeliveryFee)
	intRange("customer_count", f.CustomerCount)
	if f.PaymentMethod != nil {
		add("payment_method = %s", string(*f.PaymentMethod))
	}
	if f.Origin != nil {
		add("origin = %s", string(*f.Origin))
	}
	intRange("total_items_count", f.TotalItems)
	intRange("time_to_start_preparing", f.TimeToStartPreparing)
	intRange("time_preparing", f.TimePreparing)
	intRange("time_to_delivery", f.TimeToDelivery)
	equals("waiter_id", f.WaiterID)
	if f.WaiterName != nil {
		add("waiter_name ILIKE %s", "%"+*f.WaiterName+"%")
	}
	equals("transaction_handler_id", f.TransactionHandlerID)
	if f.TransactionHandlerName != nil {
		add("transaction_handler_name ILIKE %s", "%"+*f.TransactionHandlerName+"%")
	}
	if f.DeliveryNeighborhood != nil {
		add("delivery_neighborhood ILIKE %s", *f.DeliveryNeighborhood)
	}
	if f.IsCanceled != nil {
		add("is_canceled = %s", *f.IsCanceled)
	}
	if f.CancellationReason != nil {
		add("cancellation_reason ILIKE %s", "%"+*f.CancellationReason+"%")
	}

	return strings.Join(conds, " AND "), args
}

func (r *BusinessRepository) FindRecords(ctx context.Context, restaurantID string, filter domain.BusinessFilter) ([]domain.BusinessRecord, error) {
	where, args := BuildFilter(restaurantID, filter)
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+businessColumns+" FROM business_records WHERE "+where+" ORDER BY date DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.BusinessRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// DailySummary sums non-canceled records whose date is within [from, to].
func (r *BusinessRepository) DailySummary(ctx context.Context, restaurantID string, from, to time.Time) (*domain.DailySummary, error) {
	var summary domain.DailySummary
	err := r.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total), 0), COUNT(*), COALESCE(SUM(discount), 0),
			COALESCE(SUM(delivery_fee), 0), COALESCE(ROUND(AVG(total)::numeric, 2), 0)::float8
		FROM business_records
		WHERE restaurant_id = $1 AND date >= $2 AND date <= $3 AND is_canceled = FALSE
	`, restaurantID, from, to).Scan(&summary.TotalRevenue, &summary.TotalOrders, &summary.TotalDiscount,
		&summary.TotalDeliveryFee, &summary.AverageTicket)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *BusinessRepository) AverageTicketByWaiter(ctx context.Context, restaurantID string) ([]domain.WaiterTicket, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT waiter_id, MIN(waiter_name), SUM(total), COUNT(*), ROUND(AVG(total)::numeric, 2)::float8
		FROM business_records
		WHERE restaurant_id = $1 AND is_canceled = FALSE
		GROUP BY waiter_id
		ORDER BY SUM(total) DESC
	`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []domain.WaiterTicket{}
	for rows.Next() {
		var t domain.WaiterTicket
		if err := rows.Scan(&t.WaiterID, &t.WaiterName, &t.TotalRevenue, &t.TotalOrders, &t.AverageTicket); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *BusinessRepository) SalesByOrigin(ctx context.Context, restaurantID string) ([]domain.OriginSales, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT origin, SUM(total), COUNT(*), ROUND(AVG(total)::numeric, 2)::float8
		FROM business_records
		WHERE restaurant_id = $1 AND is_canceled = FALSE
		GROUP BY origin
		ORDER BY SUM(total) DESC
	`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := []domain.OriginSales{}
	for rows.Next() {
		var s domain.OriginSales
		if err := rows.Scan(&s.Origin, &s.TotalRevenue, &s.TotalOrders, &s.AverageTicket); err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

// TopSellingItems groups record lines by item id. Ties keep the item first
// sold earliest. from and to are optional bounds on the record date.
func (r *BusinessRepository) TopSellingItems(ctx context.Context, restaurantID string, from, to *time.Time, limit int) ([]domain.TopItem, error) {
	query := `
		SELECT item->>'itemId', MIN(item->>'itemName'), MIN(item->>'category'),
			SUM((item->>'quantity')::int)::float8 AS units
		FROM business_records br, jsonb_array_elements(br.items) AS item
		WHERE br.restaurant_id = $1 AND br.is_canceled = FALSE`
	args := []any{restaurantID}
	if from != nil && to != nil {
		query += " AND br.date >= $2 AND br.date <= $3"
		args = append(args, *from, *to)
	}
	args = append(args, limit)
	query += fmt.Sprintf(`
		GROUP BY item->>'itemId'
		ORDER BY units DESC, MIN(br.date) ASC
		LIMIT $%d`, len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.TopItem{}
	for rows.Next() {
		var item domain.TopItem
		if err := rows.Scan(&item.ItemID, &item.ItemName, &item.Category, &item.TotalUnitsSold); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
