package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/da-pic/coffeepos/internal/catalog"
)

// Product operations

// createProductWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) createProductWithQuerier(ctx context.Context, q querier, p *catalog.Product) error {
	now := time.Now()
	result, err := q.ExecContext(ctx, `
		INSERT INTO products (name, category_id, price, image_path, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.Name, p.CategoryID, p.Price, p.ImagePath, p.Active, formatTime(now), formatTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return errors.Wrap(err, "create product")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) CreateProduct(ctx context.Context, p *catalog.Product) error {
	return s.createProductWithQuerier(ctx, s.querier(), p)
}

// findProductWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) findProductWithQuerier(ctx context.Context, q querier, id int64) (*catalog.Product, error) {
	var p catalog.Product
	var createdAt, updatedAt string
	var imagePath sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT id, name, category_id, price, image_path, active, created_at, updated_at
		FROM products
		WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.CategoryID, &p.Price, &imagePath, &p.Active, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if imagePath.Valid {
		p.ImagePath = imagePath.String
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindProduct returns the product by id. It also satisfies
// catalog.Lookup for the order flow.
func (s *SQLiteStore) FindProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	return s.findProductWithQuerier(ctx, s.querier(), id)
}

// listProductsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) listProductsWithQuerier(ctx context.Context, q querier, onlyActive bool) ([]*catalog.Product, error) {
	sqlQuery := `
		SELECT id, name, category_id, price, image_path, active, created_at, updated_at
		FROM products
		ORDER BY name
	`
	if onlyActive {
		sqlQuery = `
			SELECT id, name, category_id, price, image_path, active, created_at, updated_at
			FROM products
			WHERE active = 1
			ORDER BY name
		`
	}
	rows, err := q.QueryContext(ctx, sqlQuery)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	products := make([]*catalog.Product, 0)
	for rows.Next() {
		var p catalog.Product
		var createdAt, updatedAt string
		var imagePath sql.NullString
		err := rows.Scan(&p.ID, &p.Name, &p.CategoryID, &p.Price, &imagePath, &p.Active, &createdAt, &updatedAt)
		if err != nil {
			return nil, err
		}
		if imagePath.Valid {
			p.ImagePath = imagePath.String
		}
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

func (s *SQLiteStore) ListProducts(ctx context.Context, onlyActive bool) ([]*catalog.Product, error) {
	return s.listProductsWithQuerier(ctx, s.querier(), onlyActive)
}

// updateProductWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) updateProductWithQuerier(ctx context.Context, q querier, p *catalog.Product) error {
	now := time.Now()
	result, err := q.ExecContext(ctx, `
		UPDATE products
		SET name = ?, category_id = ?, price = ?, image_path = ?, active = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.CategoryID, p.Price, p.ImagePath, p.Active, formatTime(now), p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return errors.Wrap(err, "update product")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	p.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	return s.updateProductWithQuerier(ctx, s.querier(), p)
}

// setProductActiveWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) setProductActiveWithQuerier(ctx context.Context, q querier, id int64, active bool) error {
	result, err := q.ExecContext(ctx, `
		UPDATE products SET active = ?, updated_at = ? WHERE id = ?
	`, active, formatTime(time.Now()), id)
	if err != nil {
		return errors.Wrap(err, "set product active")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SetProductActive(ctx context.Context, id int64, active bool) error {
	return s.setProductActiveWithQuerier(ctx, s.querier(), id, active)
}

// Category operations

// createCategoryWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) createCategoryWithQuerier(ctx context.Context, q querier, c *catalog.Category) error {
	now := time.Now()
	result, err := q.ExecContext(ctx, `
		INSERT INTO categories (name, description, created_at)
		VALUES (?, ?, ?)
	`, c.Name, c.Description, formatTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return errors.Wrap(err, "create category")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = id
	c.CreatedAt = now
	return nil
}

func (s *SQLiteStore) CreateCategory(ctx context.Context, c *catalog.Category) error {
	return s.createCategoryWithQuerier(ctx, s.querier(), c)
}

// listCategoriesWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) listCategoriesWithQuerier(ctx context.Context, q querier) ([]*catalog.Category, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, description, created_at
		FROM categories
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	categories := make([]*catalog.Category, 0)
	for rows.Next() {
		var c catalog.Category
		var createdAt string
		var description sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &description, &createdAt); err != nil {
			return nil, err
		}
		if description.Valid {
			c.Description = description.String
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]*catalog.Category, error) {
	return s.listCategoriesWithQuerier(ctx, s.querier())
}

// Transaction delegations

func (t *sqliteTx) CreateProduct(ctx context.Context, p *catalog.Product) error {
	return t.store.createProductWithQuerier(ctx, t.querier(), p)
}

func (t *sqliteTx) FindProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	return t.store.findProductWithQuerier(ctx, t.querier(), id)
}

func (t *sqliteTx) ListProducts(ctx context.Context, onlyActive bool) ([]*catalog.Product, error) {
	return t.store.listProductsWithQuerier(ctx, t.querier(), onlyActive)
}

func (t *sqliteTx) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	return t.store.updateProductWithQuerier(ctx, t.querier(), p)
}

func (t *sqliteTx) SetProductActive(ctx context.Context, id int64, active bool) error {
	return t.store.setProductActiveWithQuerier(ctx, t.querier(), id, active)
}

func (t *sqliteTx) CreateCategory(ctx context.Context, c *catalog.Category) error {
	return t.store.createCategoryWithQuerier(ctx, t.querier(), c)
}

func (t *sqliteTx) ListCategories(ctx context.Context) ([]*catalog.Category, error) {
	return t.store.listCategoriesWithQuerier(ctx, t.querier())
}
