package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/da-pic/coffeepos/internal/order"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a unique name is already taken
	ErrAlreadyExists = errors.New("already exists")
)

// timeLayout is how timestamps are stored. SQLite has no native datetime
// type; a fixed-width UTC text layout makes lexicographic comparison in
// SQL match chronological order under both drivers.
const timeLayout = "2006-01-02 15:04:05.000"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// Both drivers surface the constraint name in the message text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys so order_items cascade with their order
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Wait for locks instead of failing immediately
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStore) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, store: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction. Identity assignments for aggregates
// inserted inside the transaction are staged in pending and applied only
// on Commit, so a rollback leaves the callers' in-memory state untouched.
type sqliteTx struct {
	tx      *sql.Tx
	store   *SQLiteStore
	pending []func()
}

func (t *sqliteTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return err
	}
	for _, apply := range t.pending {
		apply()
	}
	t.pending = nil
	return nil
}

func (t *sqliteTx) Rollback() error {
	t.pending = nil
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStore) querier() querier {
	return s.db
}

// withTx runs fn inside a transaction and guarantees commit-or-rollback
// on every exit path, including panics.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(q querier) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "commit transaction")
}

// Order operations

// InsertOrder persists the order header and all of its line items as a
// single transaction. On any failure the whole insert rolls back and the
// in-memory order is left exactly as it was, with no persisted identity,
// so the caller can retry or abandon it.
func (s *SQLiteStore) InsertOrder(ctx context.Context, o *order.Order) error {
	var headerID int64
	itemIDs := make([]int64, len(o.Items))

	err := s.withTx(ctx, func(q querier) error {
		result, err := q.ExecContext(ctx, `
			INSERT INTO orders (actor_id, order_date, total_amount, status, note)
			VALUES (?, ?, ?, ?, ?)
		`, o.ActorID, formatTime(o.CreatedAt), o.Total, string(o.Status), o.Note)
		if err != nil {
			return errors.Wrap(err, "insert order header")
		}
		headerID, err = result.LastInsertId()
		if err != nil {
			return errors.Wrap(err, "order header id")
		}

		for i := range o.Items {
			item := &o.Items[i]
			result, err := q.ExecContext(ctx, `
				INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price)
				VALUES (?, ?, ?, ?, ?)
			`, headerID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice)
			if err != nil {
				return errors.Wrapf(err, "insert line item %d", item.ProductID)
			}
			itemIDs[i], err = result.LastInsertId()
			if err != nil {
				return errors.Wrap(err, "line item id")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Identity is assigned only after the transaction committed
	o.ID = headerID
	for i := range o.Items {
		o.Items[i].ID = itemIDs[i]
		o.Items[i].OrderID = headerID
	}
	return nil
}

// getOrderWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) getOrderWithQuerier(ctx context.Context, q querier, id int64) (*order.Order, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, actor_id, order_date, total_amount, status, note
		FROM orders
		WHERE id = ?
	`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Items, err = s.listItemsWithQuerier(ctx, q, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *SQLiteStore) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	return s.getOrderWithQuerier(ctx, s.querier(), id)
}

// queryOrders runs an order header query and attaches the full ordered
// line-item list to every result. A header is never returned without its
// items.
func (s *SQLiteStore) queryOrders(ctx context.Context, q querier, sqlQuery string, args ...interface{}) ([]*order.Order, error) {
	rows, err := q.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orders := make([]*order.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range orders {
		o.Items, err = s.listItemsWithQuerier(ctx, q, o.ID)
		if err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *SQLiteStore) ListOrders(ctx context.Context) ([]*order.Order, error) {
	return s.listOrdersWithQuerier(ctx, s.querier())
}

func (s *SQLiteStore) listOrdersWithQuerier(ctx context.Context, q querier) ([]*order.Order, error) {
	return s.queryOrders(ctx, q, `
		SELECT id, actor_id, order_date, total_amount, status, note
		FROM orders
		ORDER BY order_date DESC
	`)
}

func (s *SQLiteStore) ListOrdersByActor(ctx context.Context, actorID int64) ([]*order.Order, error) {
	return s.listOrdersByActorWithQuerier(ctx, s.querier(), actorID)
}

func (s *SQLiteStore) listOrdersByActorWithQuerier(ctx context.Context, q querier, actorID int64) ([]*order.Order, error) {
	return s.queryOrders(ctx, q, `
		SELECT id, actor_id, order_date, total_amount, status, note
		FROM orders
		WHERE actor_id = ?
		ORDER BY order_date DESC
	`, actorID)
}

func (s *SQLiteStore) ListOrdersByDateRange(ctx context.Context, start, end time.Time) ([]*order.Order, error) {
	return s.listOrdersByDateRangeWithQuerier(ctx, s.querier(), start, end)
}

func (s *SQLiteStore) listOrdersByDateRangeWithQuerier(ctx context.Context, q querier, start, end time.Time) ([]*order.Order, error) {
	return s.queryOrders(ctx, q, `
		SELECT id, actor_id, order_date, total_amount, status, note
		FROM orders
		WHERE order_date BETWEEN ? AND ?
		ORDER BY order_date DESC
	`, formatTime(start), formatTime(end))
}

func (s *SQLiteStore) ListOrdersByStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	return s.listOrdersByStatusWithQuerier(ctx, s.querier(), status)
}

func (s *SQLiteStore) listOrdersByStatusWithQuerier(ctx context.Context, q querier, status order.Status) ([]*order.Order, error) {
	return s.queryOrders(ctx, q, `
		SELECT id, actor_id, order_date, total_amount, status, note
		FROM orders
		WHERE status = ?
		ORDER BY order_date DESC
	`, string(status))
}

// updateOrderWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) updateOrderWithQuerier(ctx context.Context, q querier, o *order.Order) error {
	result, err := q.ExecContext(ctx, `
		UPDATE orders
		SET total_amount = ?, status = ?, note = ?
		WHERE id = ?
	`, o.Total, string(o.Status), o.Note, o.ID)
	if err != nil {
		return errors.Wrap(err, "update order")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateOrder updates header fields only (status, note, total). Line
// items of a persisted order are immutable.
func (s *SQLiteStore) UpdateOrder(ctx context.Context, o *order.Order) error {
	return s.updateOrderWithQuerier(ctx, s.querier(), o)
}

// deleteOrderWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) deleteOrderWithQuerier(ctx context.Context, q querier, id int64) error {
	// Line items go with the header via ON DELETE CASCADE
	result, err := q.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete order")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteOrder(ctx context.Context, id int64) error {
	return s.deleteOrderWithQuerier(ctx, s.querier(), id)
}

// listItemsWithQuerier loads the ordered line-item list for an order
func (s *SQLiteStore) listItemsWithQuerier(ctx context.Context, q querier, orderID int64) ([]order.LineItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, unit_price
		FROM order_items
		WHERE order_id = ?
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := make([]order.LineItem, 0)
	for rows.Next() {
		var item order.LineItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID,
			&item.ProductName, &item.Quantity, &item.UnitPrice,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var o order.Order
	var orderDate, status string
	var note sql.NullString
	err := row.Scan(&o.ID, &o.ActorID, &orderDate, &o.Total, &status, &note)
	if err != nil {
		return nil, err
	}
	o.CreatedAt, err = parseTime(orderDate)
	if err != nil {
		return nil, err
	}
	o.Status = order.Status(status)
	if note.Valid {
		o.Note = note.String
	}
	return &o, nil
}

// Statistics operations
//
// Every aggregate below filters on status = 'COMPLETED': pending carts
// and cancelled orders never contribute to revenue or quantity-sold
// figures.

// countOrdersBetweenWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) countOrdersBetweenWithQuerier(ctx context.Context, q querier, start, end time.Time) (int, error) {
	var count int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM orders
		WHERE order_date BETWEEN ? AND ? AND status = ?
	`, formatTime(start), formatTime(end), string(order.StatusCompleted)).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "count orders")
	}
	return count, nil
}

func (s *SQLiteStore) CountOrdersBetween(ctx context.Context, start, end time.Time) (int, error) {
	return s.countOrdersBetweenWithQuerier(ctx, s.querier(), start, end)
}

// revenueBetweenWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) revenueBetweenWithQuerier(ctx context.Context, q querier, start, end time.Time) (float64, error) {
	var revenue float64
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE order_date BETWEEN ? AND ? AND status = ?
	`, formatTime(start), formatTime(end), string(order.StatusCompleted)).Scan(&revenue)
	if err != nil {
		return 0, errors.Wrap(err, "sum revenue")
	}
	return revenue, nil
}

func (s *SQLiteStore) RevenueBetween(ctx context.Context, start, end time.Time) (float64, error) {
	return s.revenueBetweenWithQuerier(ctx, s.querier(), start, end)
}

// topSellingProductsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) topSellingProductsWithQuerier(ctx context.Context, q querier, limit int) ([]ProductSales, error) {
	// Ties break on product_id so the ranking is deterministic
	rows, err := q.QueryContext(ctx, `
		SELECT oi.product_id, oi.product_name,
		       SUM(oi.quantity) AS total_quantity,
		       SUM(oi.quantity * oi.unit_price) AS total_revenue
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		WHERE o.status = ?
		GROUP BY oi.product_id, oi.product_name
		ORDER BY total_quantity DESC, oi.product_id
		LIMIT ?
	`, string(order.StatusCompleted), limit)
	if err != nil {
		return nil, errors.Wrap(err, "top selling products")
	}
	defer func() { _ = rows.Close() }()

	sales := make([]ProductSales, 0)
	for rows.Next() {
		var ps ProductSales
		if err := rows.Scan(&ps.ProductID, &ps.ProductName, &ps.QuantitySold, &ps.Revenue); err != nil {
			return nil, err
		}
		sales = append(sales, ps)
	}
	return sales, rows.Err()
}

func (s *SQLiteStore) TopSellingProducts(ctx context.Context, limit int) ([]ProductSales, error) {
	return s.topSellingProductsWithQuerier(ctx, s.querier(), limit)
}

// Transaction implementations - delegate to the store helpers with the
// transaction querier.

func (t *sqliteTx) InsertOrder(ctx context.Context, o *order.Order) error {
	// The surrounding transaction already provides atomicity here; the
	// generated ids are staged and reach the aggregate only on Commit.
	result, err := t.tx.ExecContext(ctx, `
		INSERT INTO orders (actor_id, order_date, total_amount, status, note)
		VALUES (?, ?, ?, ?, ?)
	`, o.ActorID, formatTime(o.CreatedAt), o.Total, string(o.Status), o.Note)
	if err != nil {
		return errors.Wrap(err, "insert order header")
	}
	headerID, err := result.LastInsertId()
	if err != nil {
		return err
	}
	itemIDs := make([]int64, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		result, err := t.tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price)
			VALUES (?, ?, ?, ?, ?)
		`, headerID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice)
		if err != nil {
			return errors.Wrapf(err, "insert line item %d", item.ProductID)
		}
		itemIDs[i], err = result.LastInsertId()
		if err != nil {
			return err
		}
	}
	t.pending = append(t.pending, func() {
		o.ID = headerID
		for i := range o.Items {
			o.Items[i].ID = itemIDs[i]
			o.Items[i].OrderID = headerID
		}
	})
	return nil
}

func (t *sqliteTx) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	return t.store.getOrderWithQuerier(ctx, t.querier(), id)
}

func (t *sqliteTx) ListOrders(ctx context.Context) ([]*order.Order, error) {
	return t.store.listOrdersWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) ListOrdersByActor(ctx context.Context, actorID int64) ([]*order.Order, error) {
	return t.store.listOrdersByActorWithQuerier(ctx, t.querier(), actorID)
}

func (t *sqliteTx) ListOrdersByDateRange(ctx context.Context, start, end time.Time) ([]*order.Order, error) {
	return t.store.listOrdersByDateRangeWithQuerier(ctx, t.querier(), start, end)
}

func (t *sqliteTx) ListOrdersByStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	return t.store.listOrdersByStatusWithQuerier(ctx, t.querier(), status)
}

func (t *sqliteTx) UpdateOrder(ctx context.Context, o *order.Order) error {
	return t.store.updateOrderWithQuerier(ctx, t.querier(), o)
}

func (t *sqliteTx) DeleteOrder(ctx context.Context, id int64) error {
	return t.store.deleteOrderWithQuerier(ctx, t.querier(), id)
}

func (t *sqliteTx) CountOrdersBetween(ctx context.Context, start, end time.Time) (int, error) {
	return t.store.countOrdersBetweenWithQuerier(ctx, t.querier(), start, end)
}

func (t *sqliteTx) RevenueBetween(ctx context.Context, start, end time.Time) (float64, error) {
	return t.store.revenueBetweenWithQuerier(ctx, t.querier(), start, end)
}

func (t *sqliteTx) TopSellingProducts(ctx context.Context, limit int) ([]ProductSales, error) {
	return t.store.topSellingProductsWithQuerier(ctx, t.querier(), limit)
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
