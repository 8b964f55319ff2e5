package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertTotalInvariant checks Total == Σ(unit price × quantity) over the
// current items.
func assertTotalInvariant(t *testing.T, o *Order) {
	t.Helper()
	var want float64
	for _, item := range o.Items {
		want += item.UnitPrice * float64(item.Quantity)
	}
	assert.Equal(t, want, o.Total)
}

func TestNew(t *testing.T) {
	o := New(7)
	assert.Equal(t, int64(7), o.ActorID)
	assert.Equal(t, StatusPending, o.Status)
	assert.False(t, o.IsPersisted())
	assert.Empty(t, o.Items)
	assert.Zero(t, o.Total)
	assert.False(t, o.CreatedAt.IsZero())
}

func TestAddItem(t *testing.T) {
	o := New(1)
	err := o.AddItem(10, "Espresso", 2.50, 2)
	require.NoError(t, err)

	require.Len(t, o.Items, 1)
	assert.Equal(t, "Espresso", o.Items[0].ProductName)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, 5.0, o.Total)
	assertTotalInvariant(t, o)
}

func TestAddItem_MergesSameProduct(t *testing.T) {
	o := New(1)
	require.NoError(t, o.AddItem(10, "Espresso", 2.50, 2))
	require.NoError(t, o.AddItem(10, "Espresso", 2.50, 3))

	// One line with summed quantity, not two lines
	require.Len(t, o.Items, 1)
	assert.Equal(t, 5, o.Items[0].Quantity)
	assert.Equal(t, 12.5, o.Total)
	assertTotalInvariant(t, o)
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	o := New(1)
	assert.ErrorIs(t, o.AddItem(10, "Espresso", 2.50, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, o.AddItem(10, "Espresso", 2.50, -1), ErrInvalidQuantity)
	// Validation errors leave the order untouched
	assert.Empty(t, o.Items)
	assert.Zero(t, o.Total)
}

func TestRemoveItem(t *testing.T) {
	o := New(1)
	require.NoError(t, o.AddItem(10, "Espresso", 2.50, 1))
	require.NoError(t, o.AddItem(11, "Latte", 3.75, 2))

	err := o.RemoveItem(10)
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, int64(11), o.Items[0].ProductID)
	assert.Equal(t, 7.5, o.Total)
	assertTotalInvariant(t, o)
}

func TestRemoveItem_NotFound(t *testing.T) {
	o := New(1)
	require.NoError(t, o.AddItem(10, "Espresso", 2.50, 1))
	assert.ErrorIs(t, o.RemoveItem(99), ErrItemNotFound)
	assert.Len(t, o.Items, 1)
}

func TestUpdateQuantity(t *testing.T) {
	o := New(1)
	require.NoError(t, o.AddItem(10, "Espresso", 2.50, 1))

	require.NoError(t, o.UpdateQuantity(10, 4))
	assert.Equal(t, 4, o.Items[0].Quantity)
	assert.Equal(t, 10.0, o.Total)
	assertTotalInvariant(t, o)
}

func TestUpdateQuantity_Errors(t *testing.T) {
	o := New(1)
	require.NoError(t, o.AddItem(10, "Espresso", 2.50, 1))

	assert.ErrorIs(t, o.UpdateQuantity(10, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, o.UpdateQuantity(99, 2), ErrItemNotFound)
	// Failed updates leave the line as it was
	assert.Equal(t, 1, o.Items[0].Quantity)
	assertTotalInvariant(t, o)
}

func TestTotalInvariant_MutationSequence(t *testing.T) {
	o := New(1)
	steps := []func() error{
		func() error { return o.AddItem(1, "Espresso", 2.50, 2) },
		func() error { return o.AddItem(2, "Latte", 3.75, 1) },
		func() error { return o.AddItem(1, "Espresso", 2.50, 1) },
		func() error { return o.UpdateQuantity(2, 5) },
		func() error { return o.RemoveItem(1) },
		func() error { return o.AddItem(3, "Mocha", 4.25, 3) },
		func() error { return o.UpdateQuantity(3, 1) },
		func() error { return o.RemoveItem(2) },
	}
	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
		assertTotalInvariant(t, o)
	}
}

func TestComplete(t *testing.T) {
	o := New(1)
	require.NoError(t, o.AddItem(10, "Espresso", 2.50, 2))

	require.NoError(t, o.Complete())
	assert.Equal(t, StatusCompleted, o.Status)
	assert.Equal(t, 5.0, o.Total)
}

func TestComplete_EmptyOrder(t *testing.T) {
	o := New(1)
	assert.ErrorIs(t, o.Complete(), ErrEmptyOrder)
	assert.Equal(t, StatusPending, o.Status)
}

func TestComplete_AlreadyCompleted(t *testing.T) {
	o := New(1)
	require.NoError(t, o.AddItem(10, "Espresso", 2.50, 1))
	require.NoError(t, o.Complete())
	assert.ErrorIs(t, o.Complete(), ErrNotPending)
}

func TestMutationAfterTerminalStatus(t *testing.T) {
	o := New(1)
	require.NoError(t, o.AddItem(10, "Espresso", 2.50, 1))
	require.NoError(t, o.Complete())

	assert.ErrorIs(t, o.AddItem(11, "Latte", 3.75, 1), ErrNotPending)
	assert.ErrorIs(t, o.RemoveItem(10), ErrNotPending)
	assert.ErrorIs(t, o.UpdateQuantity(10, 2), ErrNotPending)
}

func TestCancel_PreservesItemsAndTotal(t *testing.T) {
	o := New(1)
	require.NoError(t, o.AddItem(10, "Espresso", 2.50, 2))
	require.NoError(t, o.Complete())

	o.Cancel()
	assert.Equal(t, StatusCancelled, o.Status)
	assert.Len(t, o.Items, 1)
	assert.Equal(t, 5.0, o.Total)
}

func TestItemCount(t *testing.T) {
	o := New(1)
	require.NoError(t, o.AddItem(10, "Espresso", 2.50, 2))
	require.NoError(t, o.AddItem(11, "Latte", 3.75, 3))
	assert.Equal(t, 5, o.ItemCount())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusCompleted.Valid())
	assert.True(t, StatusCancelled.Valid())
	assert.False(t, Status("DRAFT").Valid())
}
