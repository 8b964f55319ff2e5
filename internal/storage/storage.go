package storage

import (
	"context"
	"time"

	"github.com/da-pic/coffeepos/internal/catalog"
	"github.com/da-pic/coffeepos/internal/order"
	"github.com/da-pic/coffeepos/internal/user"
)

// Store defines the interface for persisting and querying orders, the
// product catalog, and staff accounts.
type Store interface {
	// Order operations. InsertOrder persists the header and all line
	// items as one transaction; readers always get the header together
	// with its full ordered item list. UpdateOrder touches header
	// fields only (status, note, total), never line items.
	InsertOrder(ctx context.Context, o *order.Order) error
	GetOrder(ctx context.Context, id int64) (*order.Order, error)
	ListOrders(ctx context.Context) ([]*order.Order, error)
	ListOrdersByActor(ctx context.Context, actorID int64) ([]*order.Order, error)
	ListOrdersByDateRange(ctx context.Context, start, end time.Time) ([]*order.Order, error)
	ListOrdersByStatus(ctx context.Context, status order.Status) ([]*order.Order, error)
	UpdateOrder(ctx context.Context, o *order.Order) error
	DeleteOrder(ctx context.Context, id int64) error

	// Statistics operations. Only COMPLETED orders count toward any of
	// these figures.
	CountOrdersBetween(ctx context.Context, start, end time.Time) (int, error)
	RevenueBetween(ctx context.Context, start, end time.Time) (float64, error)
	TopSellingProducts(ctx context.Context, limit int) ([]ProductSales, error)

	// Catalog operations
	CreateProduct(ctx context.Context, p *catalog.Product) error
	FindProduct(ctx context.Context, id int64) (*catalog.Product, error)
	ListProducts(ctx context.Context, onlyActive bool) ([]*catalog.Product, error)
	UpdateProduct(ctx context.Context, p *catalog.Product) error
	SetProductActive(ctx context.Context, id int64, active bool) error
	CreateCategory(ctx context.Context, c *catalog.Category) error
	ListCategories(ctx context.Context) ([]*catalog.Category, error)

	// User operations
	CreateUser(ctx context.Context, u *user.User) error
	GetUserByUsername(ctx context.Context, username string) (*user.User, error)
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Store // Embed Store interface for transaction operations
}

// ProductSales is one row of the top-sellers report: total quantity and
// revenue for a product across completed orders.
type ProductSales struct {
	ProductID    int64
	ProductName  string
	QuantitySold int
	Revenue      float64
}
