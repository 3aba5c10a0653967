package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"barapp/order-svc/internal/domain"

	"github.com/google/uuid"
)

const orderColumns = `id, restaurant_id, number, type, priority, status, cancellation_reason, ordered,
	started_preparing, finished_preparing, items, table_number, address, waiter_id, waiter_name,
	transaction_handler_id, transaction_handler_name, subtotal, discount, delivery_fee, total,
	amount_paid, change_amount, payment_method, is_paid, origin, customer_count, version`

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return *v
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order       domain.Order
		started     sql.NullTime
		finished    sql.NullTime
		items       []byte
		tableNumber sql.NullInt64
		address     []byte
		customers   sql.NullInt64
	)
	err := row.Scan(
		&order.ID, &order.RestaurantID, &order.Number, &order.Type, &order.Priority, &order.Status,
		&order.CancellationReason, &order.Ordered, &started, &finished, &items, &tableNumber, &address,
		&order.WaiterID, &order.WaiterName, &order.TransactionHandlerID, &order.TransactionHandlerName,
		&order.Subtotal, &order.Discount, &order.DeliveryFee, &order.Total, &order.AmountPaid,
		&order.Change, &order.PaymentMethod, &order.IsPaid, &order.Origin, &customers, &order.Version,
	)
	if err != nil {
		return nil, err
	}

	order.StartedPreparing = timePtr(started)
	order.FinishedPreparing = timePtr(finished)
	order.TableNumber = intPtr(tableNumber)
	order.CustomerCount = intPtr(customers)
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("decode items of order %s: %w", order.ID, err)
	}
	if len(address) > 0 {
		order.Address = &domain.Address{}
		if err := json.Unmarshal(address, order.Address); err != nil {
			return nil, fmt.Errorf("decode address of order %s: %w", order.ID, err)
		}
	}
	return &order, nil
}

func (r *PostgresRepository) GetOrder(ctx context.Context, restaurantID, id string) (*domain.Order, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1 AND restaurant_id = $2", id, restaurantID)
	return scanOrder(row)
}

func (r *PostgresRepository) InsertOrder(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	var address any
	if order.Address != nil {
		encoded, err := json.Marshal(order.Address)
		if err != nil {
			return fmt.Errorf("encode address: %w", err)
		}
		address = encoded
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26, $27, $28)`,
		order.ID, order.RestaurantID, order.Number, order.Type, order.Priority, order.Status,
		order.CancellationReason, order.Ordered, nullTime(order.StartedPreparing), nullTime(order.FinishedPreparing),
		items, nullInt(order.TableNumber), address, order.WaiterID, order.WaiterName,
		order.TransactionHandlerID, order.TransactionHandlerName, order.Subtotal, order.Discount,
		order.DeliveryFee, order.Total, order.AmountPaid, order.Change, order.PaymentMethod, order.IsPaid,
		order.Origin, nullInt(order.CustomerCount), order.Version,
	)
	return err
}

// UpdateIfVersion writes patch in a single statement guarded by the row
// version. (nil, nil) means the row is gone or was changed by someone else.
func (r *PostgresRepository) UpdateIfVersion(ctx context.Context, restaurantID, id string, version int, patch domain.OrderPatch) (*domain.Order, error) {
	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Status != nil {
		set("status", *patch.Status)
	}
	if patch.CancellationReason != nil {
		set("cancellation_reason", *patch.CancellationReason)
	}
	if patch.Priority != nil {
		set("priority", *patch.Priority)
	}
	if patch.IsPaid != nil {
		set("is_paid", *patch.IsPaid)
	}
	if patch.StartedPreparing != nil {
		set("started_preparing", *patch.StartedPreparing)
	}
	if patch.FinishedPreparing != nil {
		set("finished_preparing", *patch.FinishedPreparing)
	}
	if patch.TransactionHandlerID != nil {
		set("transaction_handler_id", *patch.TransactionHandlerID)
	}
	if patch.TransactionHandlerName != nil {
		set("transaction_handler_name", *patch.TransactionHandlerName)
	}
	sets = append(sets, "version = version + 1")

	args = append(args, id, restaurantID, version)
	n := len(args)
	query := fmt.Sprintf("UPDATE orders SET %s WHERE id = $%d AND restaurant_id = $%d AND version = $%d RETURNING %s",
		strings.Join(sets, ", "), n-2, n-1, n, orderColumns)

	order, err := scanOrder(r.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *PostgresRepository) DeleteOrder(ctx context.Context, restaurantID, id string) (*domain.Order, error) {
	row := r.DB.QueryRowContext(ctx,
		"DELETE FROM orders WHERE id = $1 AND restaurant_id = $2 RETURNING "+orderColumns, id, restaurantID)
	return scanOrder(row)
}

func (r *PostgresRepository) ListOrders(ctx context.Context, restaurantID string) ([]domain.Order, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE restaurant_id = $1 ORDER BY ordered ASC", restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

func (r *PostgresRepository) CountOrdersBetween(ctx context.Context, restaurantID string, from, to time.Time) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM orders
		WHERE restaurant_id = $1 AND ordered >= $2 AND ordered <= $3
	`, restaurantID, from, to).Scan(&count)
	return count, err
}

func (r *PostgresRepository) SaveQRCode(ctx context.Context, restaurantID, id string, qr []byte) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE orders SET qr_code = $1 WHERE id = $2 AND restaurant_id = $3", qr, id, restaurantID)
	return err
}

func (r *PostgresRepository) GetQRCode(ctx context.Context, restaurantID, id string) ([]byte, error) {
	var qr []byte
	if err := r.DB.QueryRowContext(ctx,
		"SELECT qr_code FROM orders WHERE id = $1 AND restaurant_id = $2", id, restaurantID).Scan(&qr); err != nil {
		return nil, err
	}
	return qr, nil
}

func (r *PostgresRepository) DisplayName(ctx context.Context, restaurantID, workerID string) (string, error) {
	var name string
	err := r.DB.QueryRowContext(ctx,
		"SELECT display_name FROM workers WHERE id = $1 AND restaurant_id = $2", workerID, restaurantID).Scan(&name)
	return name, err
}

func (r *PostgresRepository) UpsertWorker(ctx context.Context, worker domain.Worker) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO workers (id, restaurant_id, display_name, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (restaurant_id, id) DO UPDATE SET display_name = EXCLUDED.display_name, role = EXCLUDED.role
	`, worker.ID, worker.RestaurantID, worker.DisplayName, worker.Role)
	return err
}
