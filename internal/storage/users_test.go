package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/da-pic/coffeepos/internal/auth"
	"github.com/da-pic/coffeepos/internal/user"
)

func TestCreateUser(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	u := &user.User{
		Username:     "alice",
		PasswordHash: "hash",
		FullName:     "Alice A",
		Role:         auth.RoleEmployee,
	}
	err := store.CreateUser(context.Background(), u)
	require.NoError(t, err)
	assert.Greater(t, u.ID, int64(0))
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	seedUser(t, store, "alice", auth.RoleEmployee)
	dup := &user.User{Username: "alice", PasswordHash: "h", FullName: "Other", Role: auth.RoleManager}
	err := store.CreateUser(context.Background(), dup)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestGetUserByUsername(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	seedUser(t, store, "bob", auth.RoleManager)

	got, err := store.GetUserByUsername(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)
	assert.Equal(t, auth.RoleManager, got.Role)
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()

	_, err := store.GetUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUserPassword(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()
	ctx := context.Background()

	u := seedUser(t, store, "alice", auth.RoleEmployee)
	require.NoError(t, store.UpdateUserPassword(ctx, u.ID, "newhash"))

	got, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "newhash", got.PasswordHash)

	assert.ErrorIs(t, store.UpdateUserPassword(ctx, 999, "x"), ErrNotFound)
}

func TestGetUserByUsername_TimestampRoundTrip(t *testing.T) {
	store := setupTestDB(t)
	defer store.Close()
	ctx := context.Background()

	u := seedUser(t, store, "alice", auth.RoleEmployee)
	require.False(t, u.CreatedAt.IsZero())

	got, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)

	// Stored as fixed-width text with millisecond precision; the read
	// value must come back parseable and within that precision.
	assert.False(t, got.CreatedAt.IsZero())
	assert.WithinDuration(t, u.CreatedAt, got.CreatedAt, time.Millisecond)
	assert.WithinDuration(t, u.UpdatedAt, got.UpdatedAt, time.Millisecond)
}
