package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/da-pic/coffeepos/internal/auth"
	"github.com/da-pic/coffeepos/internal/session"
	"github.com/da-pic/coffeepos/internal/storage"
)

// StatsService answers reporting queries over completed orders.
// Everything here is manager-only.
type StatsService struct {
	store   storage.Store
	session *session.Manager
	log     *log.Logger
}

// NewStatsService wires a stats service.
func NewStatsService(store storage.Store, sess *session.Manager, logger *log.Logger) *StatsService {
	return &StatsService{store: store, session: sess, log: logger}
}

func (s *StatsService) requireReports() error {
	actor, ok := s.session.Current()
	if !ok {
		return ErrNotAuthenticated
	}
	if !auth.HasCapability(actor, auth.CapViewReports) {
		return denied(auth.CapViewReports)
	}
	return nil
}

// CountToday returns the number of orders completed today.
func (s *StatsService) CountToday(ctx context.Context) (int, error) {
	if err := s.requireReports(); err != nil {
		return 0, err
	}
	start, end := dayBounds(time.Now())
	n, err := s.store.CountOrdersBetween(ctx, start, end)
	if err != nil {
		return 0, persistence(err)
	}
	return n, nil
}

// RevenueToday returns the revenue from orders completed today.
func (s *StatsService) RevenueToday(ctx context.Context) (float64, error) {
	if err := s.requireReports(); err != nil {
		return 0, err
	}
	start, end := dayBounds(time.Now())
	revenue, err := s.store.RevenueBetween(ctx, start, end)
	if err != nil {
		return 0, persistence(err)
	}
	return revenue, nil
}

// RevenueBetween returns the revenue from orders completed in the
// window.
func (s *StatsService) RevenueBetween(ctx context.Context, start, end time.Time) (float64, error) {
	if err := s.requireReports(); err != nil {
		return 0, err
	}
	revenue, err := s.store.RevenueBetween(ctx, start, end)
	if err != nil {
		return 0, persistence(err)
	}
	return revenue, nil
}

// TopProducts returns the best-selling products of all time, by
// quantity sold, limited to limit rows.
func (s *StatsService) TopProducts(ctx context.Context, limit int) ([]storage.ProductSales, error) {
	if err := s.requireReports(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	sales, err := s.store.TopSellingProducts(ctx, limit)
	if err != nil {
		return nil, persistence(err)
	}
	return sales, nil
}

// Snapshot is a dashboard summary for the current day.
type Snapshot struct {
	OrdersToday  int
	RevenueToday float64
	TopProducts  []storage.ProductSales
}

// Snapshot gathers the day's count, revenue, and all-time top sellers
// in one call. The three queries run concurrently.
func (s *StatsService) Snapshot(ctx context.Context) (*Snapshot, error) {
	if err := s.requireReports(); err != nil {
		return nil, err
	}
	start, end := dayBounds(time.Now())

	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.store.CountOrdersBetween(ctx, start, end)
		snap.OrdersToday = n
		return err
	})
	g.Go(func() error {
		revenue, err := s.store.RevenueBetween(ctx, start, end)
		snap.RevenueToday = revenue
		return err
	})
	g.Go(func() error {
		sales, err := s.store.TopSellingProducts(ctx, 10)
		snap.TopProducts = sales
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, persistence(err)
	}
	return &snap, nil
}
