package store

import (
	"context"
	"database/sql"
	"fmt"

	"catalog-service/internal/models"
)

// GetProductByID retrieves a product with its axes and options
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadAxes(ctx, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductBySKU retrieves a product by SKU, or (nil, nil) when no product
// carries that SKU. SKU is the natural key for bulk ingestion.
func (s *Store) GetProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE sku = $1", sku)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadAxes(ctx, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductByHandle retrieves a product by its URL slug
func (s *Store) GetProductByHandle(ctx context.Context, handle string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE handle = $1", handle)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product not found: %s", handle)
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadAxes(ctx, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// HandleExists reports whether any product already uses the handle
func (s *Store) HandleExists(ctx context.Context, handle string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM products WHERE handle = $1)", handle)
	return exists, err
}

// ListProducts retrieves all products without variation detail, for export
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY id")
	return products, err
}

// InsertProduct creates a new product row
func (s *Store) InsertProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (sku, title, description, price, base_stock, is_active, category, subcategory, handle)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, product, query,
		product.SKU, product.Title, product.Description, product.Price,
		product.BaseStock, product.IsActive, product.Category,
		product.Subcategory, product.Handle)
}

// UpdateProduct updates an existing product row by ID
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET title = $1, description = $2, price = $3, base_stock = $4,
		    is_active = $5, category = $6, subcategory = $7, handle = $8,
		    updated_at = NOW()
		WHERE id = $9`

	res, err := s.db.ExecContext(ctx, query,
		product.Title, product.Description, product.Price, product.BaseStock,
		product.IsActive, product.Category, product.Subcategory,
		product.Handle, product.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("product not found: %d", product.ID)
	}
	return nil
}

// loadAxes attaches variation axes and their options in display order
func (s *Store) loadAxes(ctx context.Context, product *models.Product) error {
	err := s.db.SelectContext(ctx, &product.Axes,
		"SELECT * FROM variation_axes WHERE product_id = $1 ORDER BY position, id", product.ID)
	if err != nil {
		return fmt.Errorf("failed to load axes for product %d: %w", product.ID, err)
	}

	for i := range product.Axes {
		axis := &product.Axes[i]
		err := s.db.SelectContext(ctx, &axis.Options,
			"SELECT * FROM axis_options WHERE axis_id = $1 ORDER BY position, id", axis.ID)
		if err != nil {
			return fmt.Errorf("failed to load options for axis %d: %w", axis.ID, err)
		}
	}
	return nil
}
