package service

import (
	"context"
	"io"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/da-pic/coffeepos/internal/auth"
	"github.com/da-pic/coffeepos/internal/catalog"
	"github.com/da-pic/coffeepos/internal/session"
	"github.com/da-pic/coffeepos/internal/storage"
	"github.com/da-pic/coffeepos/internal/user"
)

// fixture is a full service stack backed by an in-memory database with
// a manager, two employees, and a small menu seeded.
type fixture struct {
	store   *storage.SQLiteStore
	session *session.Manager

	auth    *AuthService
	orders  *OrderService
	stats   *StatsService
	catalog *CatalogService

	manager  *user.User
	alice    *user.User
	bob      *user.User
	espresso *catalog.Product
	latte    *catalog.Product
	retired  *catalog.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := log.New()
	logger.SetOutput(io.Discard)

	sess := session.New()
	f := &fixture{
		store:   store,
		session: sess,
		auth:    NewAuthService(store, sess, logger),
		orders:  NewOrderService(store, store, sess, logger),
		stats:   NewStatsService(store, sess, logger),
		catalog: NewCatalogService(store, sess, logger),
	}

	hash, err := user.HashPassword("secret")
	require.NoError(t, err)
	f.manager = &user.User{Username: "boss", PasswordHash: hash, FullName: "Boss", Role: auth.RoleManager}
	f.alice = &user.User{Username: "alice", PasswordHash: hash, FullName: "Alice", Role: auth.RoleEmployee}
	f.bob = &user.User{Username: "bob", PasswordHash: hash, FullName: "Bob", Role: auth.RoleEmployee}
	for _, u := range []*user.User{f.manager, f.alice, f.bob} {
		require.NoError(t, store.CreateUser(ctx, u))
	}

	cat := &catalog.Category{Name: "Coffee"}
	require.NoError(t, store.CreateCategory(ctx, cat))
	f.espresso = &catalog.Product{Name: "Espresso", CategoryID: cat.ID, Price: 2.50, Active: true}
	f.latte = &catalog.Product{Name: "Latte", CategoryID: cat.ID, Price: 3.75, Active: true}
	f.retired = &catalog.Product{Name: "Pumpkin Spice", CategoryID: cat.ID, Price: 4.25, Active: false}
	for _, p := range []*catalog.Product{f.espresso, f.latte, f.retired} {
		require.NoError(t, store.CreateProduct(ctx, p))
	}

	return f
}

// loginAs binds the given seeded user to the session directly, skipping
// the credential check.
func (f *fixture) loginAs(u *user.User) {
	f.session.Login(u.Actor())
}
