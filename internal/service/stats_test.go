package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/da-pic/coffeepos/internal/catalog"
)

func TestStats_ManagerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.stats.CountToday(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	f.loginAs(f.alice)
	_, err = f.stats.CountToday(ctx)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = f.stats.RevenueToday(ctx)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = f.stats.TopProducts(ctx, 5)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = f.stats.Snapshot(ctx)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestStats_CountAndRevenue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 5.00 and 7.50 completed, 15.00 cancelled
	placeOrder(t, f, f.alice, []*catalog.Product{f.espresso}, []int{2})
	placeOrder(t, f, f.bob, []*catalog.Product{f.latte}, []int{2})
	cancelled := placeOrder(t, f, f.alice, []*catalog.Product{f.latte}, []int{4})

	f.loginAs(f.manager)
	require.NoError(t, f.orders.Cancel(ctx, cancelled.ID))

	n, err := f.stats.CountToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	revenue, err := f.stats.RevenueToday(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 12.50, revenue, 1e-9)
}

func TestStats_TopProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	placeOrder(t, f, f.alice, []*catalog.Product{f.espresso, f.latte}, []int{5, 1})
	placeOrder(t, f, f.bob, []*catalog.Product{f.latte}, []int{2})

	f.loginAs(f.manager)
	top, err := f.stats.TopProducts(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 2, len(top))
	assert.Equal(t, f.espresso.ID, top[0].ProductID)
	assert.Equal(t, 5, top[0].QuantitySold)
	assert.Equal(t, f.latte.ID, top[1].ProductID)
	assert.Equal(t, 3, top[1].QuantitySold)
}

func TestStats_Snapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	placeOrder(t, f, f.alice, []*catalog.Product{f.espresso}, []int{2})
	placeOrder(t, f, f.bob, []*catalog.Product{f.latte}, []int{1})

	f.loginAs(f.manager)
	snap, err := f.stats.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.OrdersToday)
	assert.InDelta(t, 8.75, snap.RevenueToday, 1e-9)
	assert.Equal(t, 2, len(snap.TopProducts))
}

func TestStats_EmptyDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.loginAs(f.manager)

	n, err := f.stats.CountToday(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	revenue, err := f.stats.RevenueToday(ctx)
	require.NoError(t, err)
	assert.Zero(t, revenue)

	top, err := f.stats.TopProducts(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}
