package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	serrors "github.com/dpaiva/storemanager/internal/errors"
	"github.com/dpaiva/storemanager/internal/outcome"
	"github.com/dpaiva/storemanager/internal/store"
	"github.com/google/uuid"
)

const (
	msgQuantityNotNumber = `"quantity" must be a number`
	msgQuantityTooSmall  = `"quantity" must be larger than or equal to 1`
)

// StockValidator runs the read-only checks ahead of sale persistence.
// The checks are deliberately separate and ordered (format, existence,
// sufficiency) so each failure keeps its own error code.
type StockValidator struct {
	products store.ProductStore
}

// NewStockValidator creates a StockValidator backed by the given product store.
func NewStockValidator(products store.ProductStore) *StockValidator {
	return &StockValidator{products: products}
}

// ValidateQuantities checks the quantity format of every item. Pure, no I/O.
// A missing quantity and a non-numeric one decode to nil and fail the same way.
func (v *StockValidator) ValidateQuantities(items []SaleItemCreateDto) error {
	if len(items) == 0 {
		return outcome.InvalidData(msgQuantityNotNumber)
	}
	for _, item := range items {
		if item.Quantity == nil {
			return outcome.InvalidData(msgQuantityNotNumber)
		}
		if *item.Quantity < 1 {
			return outcome.InvalidData(msgQuantityTooSmall)
		}
	}
	return nil
}

// CheckExistence looks up every referenced product and returns the product ids
// that do not exist. An id that does not parse as a UUID cannot reference a
// product and is reported as missing. Read-only.
func (v *StockValidator) CheckExistence(ctx context.Context, items []SaleItemCreateDto) ([]string, error) {
	missing := make([]string, 0)
	for _, item := range items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			missing = append(missing, item.ProductID)
			continue
		}
		if _, err := v.products.FindByID(ctx, id); err != nil {
			if isNotFound(err) {
				missing = append(missing, item.ProductID)
				continue
			}
			return nil, err
		}
	}
	return missing, nil
}

// CheckSufficiency compares each requested quantity against current stock and
// returns the product ids whose stock is insufficient. Read-only. Callers run
// it only after CheckExistence passed, so every id parses and resolves.
func (v *StockValidator) CheckSufficiency(ctx context.Context, items []SaleItemCreateDto) ([]string, error) {
	insufficient := make([]string, 0)
	for _, item := range items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			insufficient = append(insufficient, item.ProductID)
			continue
		}
		product, err := v.products.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if product.Quantity < *item.Quantity {
			insufficient = append(insufficient, item.ProductID)
		}
	}
	return insufficient, nil
}

// StockAdjuster applies quantity deltas to the product store after a sale has
// been durably created or deleted. Failures leave inventory inconsistent with
// the recorded sale, so they are logged with enough context for manual
// reconciliation; they are not retried and not surfaced to the caller.
type StockAdjuster struct {
	products store.ProductStore
	logger   *slog.Logger
}

// NewStockAdjuster creates a StockAdjuster backed by the given product store.
func NewStockAdjuster(products store.ProductStore, logger *slog.Logger) *StockAdjuster {
	return &StockAdjuster{
		products: products,
		logger:   logger.With("component", "stock_adjuster"),
	}
}

// Decrement reduces stock for every item of a just-created sale.
func (a *StockAdjuster) Decrement(ctx context.Context, saleID uuid.UUID, items []store.SaleItem) {
	a.apply(ctx, saleID, items, -1)
}

// Increment restores stock for every item of a just-deleted sale.
func (a *StockAdjuster) Increment(ctx context.Context, saleID uuid.UUID, items []store.SaleItem) {
	a.apply(ctx, saleID, items, +1)
}

func (a *StockAdjuster) apply(ctx context.Context, saleID uuid.UUID, items []store.SaleItem, sign int32) {
	for _, item := range items {
		delta := sign * item.Quantity
		if err := a.products.AdjustQuantity(ctx, item.ProductID, delta); err != nil {
			a.logger.ErrorContext(ctx, "Stock adjustment failed",
				"sale_id", saleID.String(),
				"product_id", item.ProductID.String(),
				"delta", delta,
				"error", err,
			)
		}
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, serrors.ErrProductNotFound)
}

func joinIDs(ids []string) string {
	return strings.Join(ids, ", ")
}
