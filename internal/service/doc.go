// Package service ties the session, the authorization policy, the
// order aggregate, the catalog, and the store together. Services are
// the only layer that checks capabilities; everything below assumes the
// caller was already authorized.
package service
