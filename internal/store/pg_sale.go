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

// PgSaleStore implements SaleStore using PostgreSQL as the data store.
type PgSaleStore struct {
	db *pgxpool.Pool
}

// NewPgSaleStore creates a new instance of SaleStore using a PostgreSQL connection pool.
func NewPgSaleStore(dbp *pgxpool.Pool) *PgSaleStore {
	return &PgSaleStore{db: dbp}
}

// FindByID retrieves a sale with its items.
// Returns ErrSaleNotFound if no sale exists with the given ID.
func (p *PgSaleStore) FindByID(ctx context.Context, id uuid.UUID) (*Sale, error) {
	var sale *Sale

	// Use transaction to read the sale and its items consistently
	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		sale, err = findSaleTx(ctx, tx, id)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	return sale, nil
}

// FindAll retrieves all available sales with their items.
// It returns a slice of sales, which may be empty if no sales exist.
func (p *PgSaleStore) FindAll(ctx context.Context) ([]Sale, error) {
	rows, err := p.db.Query(ctx, "SELECT id, created_at FROM sales ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to find all sales: %w", err)
	}
	defer rows.Close()

	sales := make([]Sale, 0)
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sales: %w", err)
	}
	rows.Close()

	for i := range sales {
		items, err := findItems(ctx, p.db, sales[i].ID)
		if err != nil {
			return nil, err
		}
		sales[i].Items = items
	}
	return sales, nil
}

// Create adds a new sale with the given items and returns the stored record.
func (p *PgSaleStore) Create(ctx context.Context, items []SaleItem) (*Sale, error) {
	var created *Sale

	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		var sale Sale
		row := tx.QueryRow(ctx, "INSERT INTO sales DEFAULT VALUES RETURNING id, created_at")
		if err := row.Scan(&sale.ID, &sale.CreatedAt); err != nil {
			return fmt.Errorf("failed to create sale: %w", err)
		}
		if err := insertItemsTx(ctx, tx, sale.ID, items); err != nil {
			return err
		}
		sale.Items = items
		created = &sale
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return created, nil
}

// ReplaceItems replaces the line items of an existing sale.
// Returns the number of sales modified, which is zero when no sale matches.
func (p *PgSaleStore) ReplaceItems(ctx context.Context, id uuid.UUID, items []SaleItem) (int64, error) {
	var modified int64

	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		var found uuid.UUID
		err := tx.QueryRow(ctx, "SELECT id FROM sales WHERE id = $1 FOR UPDATE", id).Scan(&found)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Reported as zero modified records, not as a store fault
				return nil
			}
			return fmt.Errorf("failed to find sale for update: %w", err)
		}
		if _, err := tx.Exec(ctx, "DELETE FROM sale_items WHERE sale_id = $1", id); err != nil {
			return fmt.Errorf("failed to clear sale items: %w", err)
		}
		if err := insertItemsTx(ctx, tx, id, items); err != nil {
			return err
		}
		modified = 1
		return nil
	})
	if txErr != nil {
		return 0, txErr
	}

	return modified, nil
}

// DeleteByID removes a sale and returns its previous value, items included.
// Returns ErrSaleNotFound if no sale exists with the given ID.
func (p *PgSaleStore) DeleteByID(ctx context.Context, id uuid.UUID) (*Sale, error) {
	var deleted *Sale

	txErr := p.withTransaction(ctx, func(tx pgx.Tx) error {
		sale, err := findSaleTx(ctx, tx, id)
		if err != nil {
			return err
		}
		// sale_items rows go with the sale via ON DELETE CASCADE
		if _, err := tx.Exec(ctx, "DELETE FROM sales WHERE id = $1", id); err != nil {
			return fmt.Errorf("failed to delete sale: %w", err)
		}
		deleted = sale
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return deleted, nil
}

// querier is the subset of pgx query methods shared by pools and transactions.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func findItems(ctx context.Context, q querier, saleID uuid.UUID) ([]SaleItem, error) {
	rows, err := q.Query(ctx,
		"SELECT product_id, quantity FROM sale_items WHERE sale_id = $1 ORDER BY id", saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to find sale items: %w", err)
	}
	defer rows.Close()

	items := make([]SaleItem, 0)
	for rows.Next() {
		var item SaleItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sale items: %w", err)
	}
	return items, nil
}

func findSaleTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*Sale, error) {
	var sale Sale
	row := tx.QueryRow(ctx, "SELECT id, created_at FROM sales WHERE id = $1", id)
	if err := row.Scan(&sale.ID, &sale.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, serrors.ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to find sale: %w", err)
	}

	items, err := findItems(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return &sale, nil
}

func insertItemsTx(ctx context.Context, tx pgx.Tx, saleID uuid.UUID, items []SaleItem) error {
	for _, item := range items {
		_, err := tx.Exec(ctx,
			"INSERT INTO sale_items (sale_id, product_id, quantity) VALUES ($1, $2, $3)",
			saleID, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to create sale item: %w", err)
		}
	}
	return nil
}

func (p *PgSaleStore) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return serrors.ErrTransactionBegin
	}

	err = fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return serrors.ErrTransactionRollback
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return serrors.ErrTransactionCommit
	}

	return nil
}
