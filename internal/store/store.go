// Package store provides interfaces for product and sale storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product is a stored product record. Quantity is the stock available to sell.
type Product struct {
	ID        uuid.UUID
	Name      string
	Quantity  int32
	CreatedAt time.Time
}

// SaleItem is a (product, quantity) pair belonging to a sale.
type SaleItem struct {
	ProductID uuid.UUID
	Quantity  int32
}

// Sale is a stored sale record with its line items.
type Sale struct {
	ID        uuid.UUID
	Items     []SaleItem
	CreatedAt time.Time
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByName retrieves a single product by its exact name.
	// Returns ErrProductNotFound if no product exists with the given name.
	FindByName(ctx context.Context, name string) (*Product, error)

	// FindAll returns all available products.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Product, error)

	// Create adds a new product to the system.
	// Returns error if the product cannot be created.
	Create(ctx context.Context, name string, quantity int32) (*Product, error)

	// Update modifies an existing product's details.
	// Returns the number of records modified (zero when no product matches).
	Update(ctx context.Context, id uuid.UUID, name string, quantity int32) (int64, error)

	// DeleteByID removes a product and returns its previous value.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// AdjustQuantity applies a signed delta to a product's stock quantity.
	// Returns ErrProductNotFound if no product exists with the given ID.
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int32) error
}

// SaleStore is an interface for sale storage operations.
type SaleStore interface {
	// FindByID retrieves a single sale with its items.
	// Returns ErrSaleNotFound if no sale exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindAll returns all available sales with their items.
	// Returns an empty slice if no sales exist.
	FindAll(ctx context.Context) ([]Sale, error)

	// Create adds a new sale with the given items and returns the stored record.
	Create(ctx context.Context, items []SaleItem) (*Sale, error)

	// ReplaceItems replaces the line items of an existing sale.
	// Returns the number of sales modified (zero when no sale matches).
	ReplaceItems(ctx context.Context, id uuid.UUID, items []SaleItem) (int64, error)

	// DeleteByID removes a sale and returns its previous value, items included.
	// Returns ErrSaleNotFound if no sale exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) (*Sale, error)
}
