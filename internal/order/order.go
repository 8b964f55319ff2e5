package order

import (
	"errors"
	"time"
)

var (
	// ErrInvalidQuantity is returned when a quantity is zero or negative
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	// ErrItemNotFound is returned when the product is not in the order
	ErrItemNotFound = errors.New("item not found in order")
	// ErrEmptyOrder is returned when checking out an order with no items
	ErrEmptyOrder = errors.New("order has no items")
	// ErrNotPending is returned when mutating an order in a terminal status
	ErrNotPending = errors.New("order is not pending")
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted || s == StatusCancelled
}

// LineItem is one product entry within an order. Name and unit price are
// snapshots taken when the item was added; later catalog changes do not
// alter them.
type LineItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   float64
}

// Subtotal returns unit price times quantity.
func (li LineItem) Subtotal() float64 {
	return li.UnitPrice * float64(li.Quantity)
}

// Order is the in-memory cart/receipt aggregate. ID is zero until the
// order has been persisted. Total is derived from Items and is
// recalculated after every mutation; no code path sets it directly.
type Order struct {
	ID        int64
	ActorID   int64
	CreatedAt time.Time
	Total     float64
	Status    Status
	Note      string
	Items     []LineItem
}

// New creates an empty pending order owned by the given actor, stamped
// with the current time.
func New(actorID int64) *Order {
	return &Order{
		ActorID:   actorID,
		CreatedAt: time.Now(),
		Status:    StatusPending,
		Items:     []LineItem{},
	}
}

// AddItem merges quantity into an existing line for the product, or
// appends a new line with the given name/price snapshot. The order must
// still be pending.
func (o *Order) AddItem(productID int64, productName string, unitPrice float64, quantity int) error {
	if !o.IsPending() {
		return ErrNotPending
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			o.Items[i].Quantity += quantity
			o.recalculate()
			return nil
		}
	}
	o.Items = append(o.Items, LineItem{
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	})
	o.recalculate()
	return nil
}

// RemoveItem removes the line for the product.
func (o *Order) RemoveItem(productID int64) error {
	if !o.IsPending() {
		return ErrNotPending
	}
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			o.recalculate()
			return nil
		}
	}
	return ErrItemNotFound
}

// UpdateQuantity replaces the quantity on the line for the product.
func (o *Order) UpdateQuantity(productID int64, quantity int) error {
	if !o.IsPending() {
		return ErrNotPending
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			o.Items[i].Quantity = quantity
			o.recalculate()
			return nil
		}
	}
	return ErrItemNotFound
}

// recalculate derives Total from the current line items. It runs after
// every mutation; the result is always Σ(unit price × quantity).
func (o *Order) recalculate() {
	var total float64
	for _, item := range o.Items {
		total += item.Subtotal()
	}
	o.Total = total
}

// Complete transitions a pending, non-empty order to COMPLETED.
func (o *Order) Complete() error {
	if !o.IsPending() {
		return ErrNotPending
	}
	if len(o.Items) == 0 {
		return ErrEmptyOrder
	}
	o.recalculate()
	o.Status = StatusCompleted
	return nil
}

// Cancel flips the status to CANCELLED. Line items and total are left
// untouched.
func (o *Order) Cancel() {
	o.Status = StatusCancelled
}

// IsPending reports whether the order can still be mutated.
func (o *Order) IsPending() bool {
	return o.Status == StatusPending
}

// IsPersisted reports whether the order has a database identity.
func (o *Order) IsPersisted() bool {
	return o.ID != 0
}

// ItemCount returns the total quantity across all lines.
func (o *Order) ItemCount() int {
	var n int
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}
