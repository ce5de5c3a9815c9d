package store

import (
	"context"
	"errors"
	"fmt"

	serrors "github.com/dpaiva/storemanager/internal/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgProductStore implements ProductStore using PostgreSQL as the data store.
type PgProductStore struct {
	db *pgxpool.Pool
}

// NewPgProductStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgProductStore(dbp *pgxpool.Pool) *PgProductStore {
	return &PgProductStore{db: dbp}
}

const productColumns = "id, name, quantity, created_at"

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	if err := row.Scan(&p.ID, &p.Name, &p.Quantity, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgProductStore) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := p.db.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, serrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// FindByName retrieves a product by its exact name.
// Returns ErrProductNotFound if no product exists with the given name.
func (p *PgProductStore) FindByName(ctx context.Context, name string) (*Product, error) {
	row := p.db.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE name = $1 LIMIT 1", name)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, serrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by name: %w", err)
	}
	return product, nil
}

// FindAll retrieves all available products.
// It returns a slice of products, which may be empty if no products exist.
func (p *PgProductStore) FindAll(ctx context.Context) ([]Product, error) {
	rows, err := p.db.Query(ctx, "SELECT "+productColumns+" FROM products ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

// Create adds a new product to the system.
// Returns an error if the product cannot be created.
func (p *PgProductStore) Create(ctx context.Context, name string, quantity int32) (*Product, error) {
	row := p.db.QueryRow(ctx,
		"INSERT INTO products (name, quantity) VALUES ($1, $2) RETURNING "+productColumns,
		name, quantity)
	product, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// Update modifies an existing product's details.
// Returns the number of records modified, which is zero when no product matches.
func (p *PgProductStore) Update(ctx context.Context, id uuid.UUID, name string, quantity int32) (int64, error) {
	tag, err := p.db.Exec(ctx,
		"UPDATE products SET name = $2, quantity = $3 WHERE id = $1",
		id, name, quantity)
	if err != nil {
		return 0, fmt.Errorf("failed to update product: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteByID removes a product and returns its previous value.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgProductStore) DeleteByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := p.db.QueryRow(ctx,
		"DELETE FROM products WHERE id = $1 RETURNING "+productColumns, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, serrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to delete product by ID: %w", err)
	}
	return product, nil
}

// AdjustQuantity applies a signed delta to a product's stock quantity.
// Each call is atomic for its product; the quantity check constraint rejects
// adjustments that would drive stock negative.
func (p *PgProductStore) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int32) error {
	tag, err := p.db.Exec(ctx,
		"UPDATE products SET quantity = quantity + $2 WHERE id = $1",
		id, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust product quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return serrors.ErrProductNotFound
	}
	return nil
}
