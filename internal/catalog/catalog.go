package catalog

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when a product does not exist or is no
// longer for sale.
var ErrUnavailable = errors.New("product not available")

// Product is a menu item. Active is a soft-delete flag: deactivated
// products stay on historical orders but can no longer be added to new
// ones.
type Product struct {
	ID         int64
	Name       string
	CategoryID int64
	Price      float64
	ImagePath  string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Available reports whether the product can be added to an order.
func (p *Product) Available() bool {
	return p != nil && p.Active
}

// Category groups products on the menu.
type Category struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

// Lookup is the read-only catalog dependency the order flow consumes.
type Lookup interface {
	FindProduct(ctx context.Context, id int64) (*Product, error)
}
