package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/da-pic/coffeepos/internal/auth"
	"github.com/da-pic/coffeepos/internal/catalog"
	"github.com/da-pic/coffeepos/internal/session"
	"github.com/da-pic/coffeepos/internal/storage"
)

// CatalogService exposes the menu to everyone logged in and product
// and category management to managers.
type CatalogService struct {
	store   storage.Store
	session *session.Manager
	log     *log.Logger
}

// NewCatalogService wires a catalog service.
func NewCatalogService(store storage.Store, sess *session.Manager, logger *log.Logger) *CatalogService {
	return &CatalogService{store: store, session: sess, log: logger}
}

func (s *CatalogService) require(cap auth.Capability) (*auth.Actor, error) {
	actor, ok := s.session.Current()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	if !auth.HasCapability(actor, cap) {
		return nil, denied(cap)
	}
	return actor, nil
}

// Menu returns the active products available for ordering.
func (s *CatalogService) Menu(ctx context.Context) ([]*catalog.Product, error) {
	if _, err := s.require(auth.CapViewMenu); err != nil {
		return nil, err
	}
	products, err := s.store.ListProducts(ctx, true)
	if err != nil {
		return nil, persistence(err)
	}
	return products, nil
}

// CreateProduct adds a product to the catalog. Managers only.
func (s *CatalogService) CreateProduct(ctx context.Context, p *catalog.Product) error {
	actor, err := s.require(auth.CapManageProducts)
	if err != nil {
		return err
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return persistence(err)
	}
	s.log.WithFields(log.Fields{"product": p.Name, "actor": actor.Username}).Info("product created")
	return nil
}

// UpdateProduct rewrites a product's fields. Managers only.
func (s *CatalogService) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	if _, err := s.require(auth.CapManageProducts); err != nil {
		return err
	}
	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return persistence(err)
	}
	return nil
}

// DeactivateProduct soft-deletes a product. It disappears from the
// menu but stays referenced by historical order lines.
func (s *CatalogService) DeactivateProduct(ctx context.Context, productID int64) error {
	actor, err := s.require(auth.CapManageProducts)
	if err != nil {
		return err
	}
	if err := s.store.SetProductActive(ctx, productID, false); err != nil {
		return persistence(err)
	}
	s.log.WithFields(log.Fields{"product": productID, "actor": actor.Username}).Info("product deactivated")
	return nil
}

// CreateCategory adds a category. Managers only.
func (s *CatalogService) CreateCategory(ctx context.Context, c *catalog.Category) error {
	if _, err := s.require(auth.CapManageCategories); err != nil {
		return err
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return persistence(err)
	}
	return nil
}

// Categories lists all categories.
func (s *CatalogService) Categories(ctx context.Context) ([]*catalog.Category, error) {
	if _, err := s.require(auth.CapViewMenu); err != nil {
		return nil, err
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, persistence(err)
	}
	return categories, nil
}
