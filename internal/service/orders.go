package service

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/da-pic/coffeepos/internal/auth"
	"github.com/da-pic/coffeepos/internal/catalog"
	"github.com/da-pic/coffeepos/internal/order"
	"github.com/da-pic/coffeepos/internal/session"
	"github.com/da-pic/coffeepos/internal/storage"
)

// OrderService drives the order lifecycle: building a pending cart in
// memory, checking it out into the store, and querying persisted
// orders. Every operation resolves the current actor from the session
// and checks the authorization policy before touching anything.
type OrderService struct {
	store   storage.Store
	catalog catalog.Lookup
	session *session.Manager
	log     *log.Logger
}

// NewOrderService wires an order service.
func NewOrderService(store storage.Store, lookup catalog.Lookup, sess *session.Manager, logger *log.Logger) *OrderService {
	return &OrderService{store: store, catalog: lookup, session: sess, log: logger}
}

// current returns the logged-in actor or ErrNotAuthenticated.
func (s *OrderService) current() (*auth.Actor, error) {
	actor, ok := s.session.Current()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	return actor, nil
}

// require returns the logged-in actor if it holds the capability.
func (s *OrderService) require(cap auth.Capability) (*auth.Actor, error) {
	actor, err := s.current()
	if err != nil {
		return nil, err
	}
	if !auth.HasCapability(actor, cap) {
		return nil, denied(cap)
	}
	return actor, nil
}

// Create starts an empty pending order owned by the current actor.
func (s *OrderService) Create(ctx context.Context) (*order.Order, error) {
	actor, err := s.require(auth.CapCreateOrder)
	if err != nil {
		return nil, err
	}
	o := order.New(actor.ID)
	s.log.WithFields(log.Fields{"actor": actor.Username}).Debug("order started")
	return o, nil
}

// AddProduct resolves the product through the catalog and adds it to
// the order with a name/price snapshot. Quantity merges into an
// existing line for the same product.
func (s *OrderService) AddProduct(ctx context.Context, o *order.Order, productID int64, quantity int) error {
	if quantity <= 0 {
		return order.ErrInvalidQuantity
	}
	p, err := s.catalog.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return catalog.ErrUnavailable
		}
		return persistence(err)
	}
	if !p.Available() {
		return catalog.ErrUnavailable
	}
	return o.AddItem(p.ID, p.Name, p.Price, quantity)
}

// RemoveProduct removes the line for the product from the order.
func (s *OrderService) RemoveProduct(ctx context.Context, o *order.Order, productID int64) error {
	return o.RemoveItem(productID)
}

// UpdateQuantity replaces the quantity on the order's line for the
// product.
func (s *OrderService) UpdateQuantity(ctx context.Context, o *order.Order, productID int64, quantity int) error {
	return o.UpdateQuantity(productID, quantity)
}

// Checkout completes a pending non-empty order and persists it
// atomically. On a persistence failure the order is restored to its
// pre-checkout state so the caller can retry or abandon it.
func (s *OrderService) Checkout(ctx context.Context, o *order.Order, note string) error {
	actor, err := s.current()
	if err != nil {
		return err
	}
	if len(o.Items) == 0 {
		// Never reaches the store
		return order.ErrEmptyOrder
	}

	prevStatus, prevNote := o.Status, o.Note
	if trimmed := strings.TrimSpace(note); trimmed != "" {
		o.Note = trimmed
	}
	if err := o.Complete(); err != nil {
		o.Note = prevNote
		return err
	}

	if err := s.store.InsertOrder(ctx, o); err != nil {
		o.Status = prevStatus
		o.Note = prevNote
		s.log.WithError(err).Warn("checkout failed, order restored")
		return persistence(err)
	}

	s.log.WithFields(log.Fields{
		"order": o.ID,
		"actor": actor.Username,
		"items": o.ItemCount(),
		"total": o.Total,
	}).Info("order completed")
	return nil
}

// Cancel flips a persisted order to CANCELLED. Only a manager or the
// actor who created the order may cancel it. Line items and total are
// left untouched.
func (s *OrderService) Cancel(ctx context.Context, orderID int64) error {
	actor, err := s.current()
	if err != nil {
		return err
	}
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return persistence(err)
	}
	if !actor.IsManager() && o.ActorID != actor.ID {
		return ErrPermissionDenied
	}

	o.Cancel()
	if err := s.store.UpdateOrder(ctx, o); err != nil {
		return persistence(err)
	}
	s.log.WithFields(log.Fields{"order": orderID, "actor": actor.Username}).Info("order cancelled")
	return nil
}

// Get returns a single order. Employees may only see their own orders;
// an attempt to read someone else's yields a permission failure, not a
// not-found.
func (s *OrderService) Get(ctx context.Context, orderID int64) (*order.Order, error) {
	actor, err := s.current()
	if err != nil {
		return nil, err
	}
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return nil, persistence(err)
	}
	if !actor.IsManager() && o.ActorID != actor.ID {
		return nil, denied(auth.CapViewAllOrders)
	}
	return o, nil
}

// All returns every order. Managers only; everyone else gets the
// policy-defined empty result together with the permission failure.
func (s *OrderService) All(ctx context.Context) ([]*order.Order, error) {
	if _, err := s.require(auth.CapViewAllOrders); err != nil {
		return []*order.Order{}, err
	}
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, persistence(err)
	}
	return orders, nil
}

// Mine returns the current actor's own orders.
func (s *OrderService) Mine(ctx context.Context) ([]*order.Order, error) {
	actor, err := s.require(auth.CapViewOwnOrders)
	if err != nil {
		return []*order.Order{}, err
	}
	orders, err := s.store.ListOrdersByActor(ctx, actor.ID)
	if err != nil {
		return nil, persistence(err)
	}
	return orders, nil
}

// ByDateRange returns orders in the window. Managers only.
func (s *OrderService) ByDateRange(ctx context.Context, start, end time.Time) ([]*order.Order, error) {
	if _, err := s.require(auth.CapViewAllOrders); err != nil {
		return []*order.Order{}, err
	}
	orders, err := s.store.ListOrdersByDateRange(ctx, start, end)
	if err != nil {
		return nil, persistence(err)
	}
	return orders, nil
}

// ByStatus returns orders with the given status. Employees see only
// their own.
func (s *OrderService) ByStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	actor, err := s.current()
	if err != nil {
		return []*order.Order{}, err
	}
	if actor.IsManager() {
		orders, err := s.store.ListOrdersByStatus(ctx, status)
		if err != nil {
			return nil, persistence(err)
		}
		return orders, nil
	}
	mine, err := s.store.ListOrdersByActor(ctx, actor.ID)
	if err != nil {
		return nil, persistence(err)
	}
	filtered := make([]*order.Order, 0)
	for _, o := range mine {
		if o.Status == status {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}

// Today returns today's orders: all of them for a manager, the actor's
// own for an employee.
func (s *OrderService) Today(ctx context.Context) ([]*order.Order, error) {
	actor, err := s.current()
	if err != nil {
		return []*order.Order{}, err
	}
	start, end := dayBounds(time.Now())
	if actor.IsManager() {
		orders, err := s.store.ListOrdersByDateRange(ctx, start, end)
		if err != nil {
			return nil, persistence(err)
		}
		return orders, nil
	}
	mine, err := s.store.ListOrdersByActor(ctx, actor.ID)
	if err != nil {
		return nil, persistence(err)
	}
	filtered := make([]*order.Order, 0)
	for _, o := range mine {
		if !o.CreatedAt.Before(start) && !o.CreatedAt.After(end) {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}

// dayBounds returns the inclusive start and end of the calendar day
// containing t, in t's zone.
func dayBounds(t time.Time) (time.Time, time.Time) {
	year, month, day := t.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	end := start.Add(24*time.Hour - time.Millisecond)
	return start, end
}
