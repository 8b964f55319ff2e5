package main

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/da-pic/coffeepos/internal/auth"
	"github.com/da-pic/coffeepos/internal/catalog"
	"github.com/da-pic/coffeepos/internal/storage"
	"github.com/da-pic/coffeepos/internal/user"
)

// seed loads sample accounts and a starter menu. It is idempotent:
// rows that already exist are left alone.
func seed(ctx context.Context, store storage.Store, logger *log.Logger) error {
	users := []struct {
		username string
		password string
		fullName string
		role     auth.Role
	}{
		{"admin", "admin123", "Store Manager", auth.RoleManager},
		{"cashier", "cashier123", "Front Cashier", auth.RoleEmployee},
	}
	for _, u := range users {
		if _, err := store.GetUserByUsername(ctx, u.username); err == nil {
			continue
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		hash, err := user.HashPassword(u.password)
		if err != nil {
			return err
		}
		err = store.CreateUser(ctx, &user.User{
			Username:     u.username,
			PasswordHash: hash,
			FullName:     u.fullName,
			Role:         u.role,
		})
		if err != nil && !errors.Is(err, storage.ErrAlreadyExists) {
			return err
		}
		logger.WithField("user", u.username).Info("Seeded account")
	}

	menu := map[string][]catalog.Product{
		"Coffee": {
			{Name: "Espresso", Price: 2.50},
			{Name: "Americano", Price: 3.00},
			{Name: "Latte", Price: 3.75},
			{Name: "Cappuccino", Price: 3.75},
		},
		"Tea": {
			{Name: "Green Tea", Price: 2.75},
			{Name: "Milk Tea", Price: 3.25},
		},
		"Pastry": {
			{Name: "Croissant", Price: 2.25},
			{Name: "Banana Bread", Price: 2.95},
		},
	}

	existing, err := store.ListCategories(ctx)
	if err != nil {
		return err
	}
	byName := make(map[string]int64, len(existing))
	for _, c := range existing {
		byName[c.Name] = c.ID
	}

	for name, products := range menu {
		categoryID, ok := byName[name]
		if !ok {
			c := &catalog.Category{Name: name}
			if err := store.CreateCategory(ctx, c); err != nil {
				if errors.Is(err, storage.ErrAlreadyExists) {
					continue
				}
				return err
			}
			categoryID = c.ID
		}
		for _, p := range products {
			p.CategoryID = categoryID
			p.Active = true
			err := store.CreateProduct(ctx, &p)
			if err != nil && !errors.Is(err, storage.ErrAlreadyExists) {
				return err
			}
		}
	}

	logger.Info("Seed complete")
	return nil
}
