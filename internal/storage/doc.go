// Package storage provides SQLite-backed persistence for the
// point-of-sale core: orders with their line items, the product
// catalog, and staff accounts.
//
// # Drivers
//
// Two SQLite drivers are supported through build tags:
//
//   - modernc.org/sqlite (default): pure Go, no C compiler needed
//   - github.com/mattn/go-sqlite3 (tag cgo_sqlite): cgo, fastest
//
// # Transactions
//
// InsertOrder is the only multi-step write. It runs the header insert
// and every line-item insert inside one transaction through the
// internal withTx helper, which commits or rolls back on every exit
// path. A reader can never observe an order header without its line
// items, or line items without a header. The in-memory aggregate is
// given its database identity only after the transaction commits, so a
// failed checkout leaves the caller's order untouched and retryable.
//
// Callers that need to compose several operations atomically can use
// BeginTx; the returned Tx exposes the full Store interface.
//
// # Timestamps
//
// Timestamps are stored as fixed-width UTC text (see timeLayout) so
// that BETWEEN range queries compare correctly under both drivers.
//
// # Statistics
//
// The aggregate queries (CountOrdersBetween, RevenueBetween,
// TopSellingProducts) only consider COMPLETED orders. Pending carts and
// cancelled orders never contribute to revenue or quantity-sold
// figures.
package storage
