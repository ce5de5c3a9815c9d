// Package service provides the implementation of product and sale business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	serrors "github.com/dpaiva/storemanager/internal/errors"
	"github.com/dpaiva/storemanager/internal/outcome"
	"github.com/dpaiva/storemanager/internal/store"
	"github.com/dpaiva/storemanager/pkg/messaging"
	"github.com/dpaiva/storemanager/pkg/messaging/events"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	msgSaleNotFound   = "Sale not found"
	msgSaleNotUpdated = "Wrong product ID or invalid quantity"
	msgWrongIDFormat  = "Wrong id format"
	msgStockProblem   = "Such amount is not permitted to sell"
)

// SaleService defines the methods for managing sales.
// It abstracts the underlying business logic and data access.
type SaleService interface {
	// FindByID retrieves a single sale by its identifier.
	// A malformed identifier and a missing sale report the same not-found outcome.
	FindByID(ctx context.Context, id string) (*SaleDto, error)

	// FindAll returns all available sales.
	// Returns an empty slice if no sales exist.
	FindAll(ctx context.Context) ([]SaleDto, error)

	// Create validates the items, persists the sale and decrements stock.
	Create(ctx context.Context, items []SaleItemCreateDto) (*SaleDto, error)

	// Update replaces the line items of an existing sale.
	// Product existence and stock sufficiency are not re-checked here.
	Update(ctx context.Context, id string, items []SaleItemCreateDto) (*SaleDto, error)

	// DeleteByID removes a sale and restores the stock of its items.
	DeleteByID(ctx context.Context, id string) (*SaleDto, error)
}

// Sales implements SaleService. Each operation calls the validator, the sale
// store and the adjuster in that fixed order; validation never mutates and
// adjustment runs only after the sale record is durable.
type Sales struct {
	saleStore    store.SaleStore
	validator    *StockValidator
	adjuster     *StockAdjuster
	publisher    messaging.Publisher
	logger       *slog.Logger
	salesCounter metric.Int64Counter
}

// NewSaleService creates a new instance of SaleService with the provided collaborators.
func NewSaleService(saleStore store.SaleStore, validator *StockValidator, adjuster *StockAdjuster, publisher messaging.Publisher, logger *slog.Logger) *Sales {
	meter := otel.Meter("storemanager")
	salesCounter, err := meter.Int64Counter("sales_created", metric.WithDescription("Total number of created sales"))
	if err != nil {
		panic(fmt.Sprintf("failed to create sales_created counter: %v", err))
	}
	return &Sales{
		saleStore:    saleStore,
		validator:    validator,
		adjuster:     adjuster,
		publisher:    publisher,
		logger:       logger.With("component", "sale_service"),
		salesCounter: salesCounter,
	}
}

// SaleItemCreateDto represents an inbound line item. Quantity is a pointer so
// a missing field is distinguishable from zero; both fail format validation.
type SaleItemCreateDto struct {
	ProductID string `json:"product_id"`
	Quantity  *int32 `json:"quantity"`
}

// SaleItemDto represents a stored line item.
type SaleItemDto struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

// SaleDto represents the data transfer object for a sale.
type SaleDto struct {
	ID        string        `json:"id"`
	Items     []SaleItemDto `json:"items"`
	CreatedAt string        `json:"created_at,omitempty"`
}

// FindByID retrieves a sale by its ID and returns it as a SaleDto.
// A malformed identifier is reported exactly like a missing sale.
func (s *Sales) FindByID(ctx context.Context, id string) (*SaleDto, error) {
	saleID, err := uuid.Parse(id)
	if err != nil {
		return nil, outcome.NotFound(msgSaleNotFound)
	}
	sale, err := s.saleStore.FindByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, serrors.ErrSaleNotFound) {
			return nil, outcome.NotFound(msgSaleNotFound)
		}
		return nil, fmt.Errorf("failed to fetch sale by ID %s: %w", id, err)
	}
	return toSaleDto(sale), nil
}

// FindAll retrieves a list of all sales and returns them as SaleDtos.
func (s *Sales) FindAll(ctx context.Context) ([]SaleDto, error) {
	sales, err := s.saleStore.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales: %w", err)
	}
	dtos := make([]SaleDto, len(sales))
	for i := range sales {
		dtos[i] = *toSaleDto(&sales[i])
	}
	return dtos, nil
}

// Create runs the sale-creation workflow: quantity format, product existence,
// stock sufficiency, persistence, stock decrement. Each check failure keeps its
// own error code; the decrement runs only after the sale record is durable.
func (s *Sales) Create(ctx context.Context, items []SaleItemCreateDto) (*SaleDto, error) {
	if err := s.validator.ValidateQuantities(items); err != nil {
		return nil, err
	}

	missing, err := s.validator.CheckExistence(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("failed to check product existence: %w", err)
	}
	if len(missing) > 0 {
		return nil, outcome.InvalidDataf("The following productId(s) is(are) not found: [ %s ]", joinIDs(missing))
	}

	insufficient, err := s.validator.CheckSufficiency(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("failed to check stock sufficiency: %w", err)
	}
	if len(insufficient) > 0 {
		s.logger.WarnContext(ctx, "Insufficient stock for sale", "product_ids", joinIDs(insufficient))
		return nil, outcome.StockProblem(msgStockProblem)
	}

	sale, err := s.saleStore.Create(ctx, toStoreItems(items))
	if err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	s.adjuster.Decrement(ctx, sale.ID, sale.Items)

	event := events.SaleCreatedEvent{
		SaleID:    sale.ID,
		Items:     toEventItems(sale.Items),
		CreatedAt: sale.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish SaleCreatedEvent", "sale_id", sale.ID.String(), "error", err)
	}
	s.salesCounter.Add(ctx, 1)

	return toSaleDto(sale), nil
}

// Update replaces the line items of a sale after re-validating their format.
// Unlike Create, product existence and stock sufficiency are not re-checked
// and no stock adjustment occurs.
func (s *Sales) Update(ctx context.Context, id string, items []SaleItemCreateDto) (*SaleDto, error) {
	saleID, err := uuid.Parse(id)
	if err != nil {
		return nil, outcome.NotFound(msgSaleNotFound)
	}
	if err := s.validator.ValidateQuantities(items); err != nil {
		return nil, err
	}

	storeItems, ok := parseStoreItems(items)
	if !ok {
		return nil, outcome.InvalidData(msgSaleNotUpdated)
	}
	modified, err := s.saleStore.ReplaceItems(ctx, saleID, storeItems)
	if err != nil {
		return nil, fmt.Errorf("failed to update sale %s: %w", id, err)
	}
	if modified == 0 {
		return nil, outcome.InvalidData(msgSaleNotUpdated)
	}

	return &SaleDto{ID: id, Items: toItemDtos(storeItems)}, nil
}

// DeleteByID removes a sale and restores the stock of every line item.
// The increment runs only after the sale record is durably deleted.
func (s *Sales) DeleteByID(ctx context.Context, id string) (*SaleDto, error) {
	saleID, err := uuid.Parse(id)
	if err != nil {
		return nil, outcome.InvalidData(msgWrongIDFormat)
	}
	deleted, err := s.saleStore.DeleteByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, serrors.ErrSaleNotFound) {
			return nil, outcome.InvalidData(msgWrongIDFormat)
		}
		return nil, fmt.Errorf("failed to delete sale %s: %w", id, err)
	}

	s.adjuster.Increment(ctx, deleted.ID, deleted.Items)

	return toSaleDto(deleted), nil
}

// toStoreItems converts validated inbound items. Callers run it only after
// CheckExistence passed, so every product id parses.
func toStoreItems(items []SaleItemCreateDto) []store.SaleItem {
	storeItems := make([]store.SaleItem, len(items))
	for i, item := range items {
		storeItems[i] = store.SaleItem{
			ProductID: uuid.MustParse(item.ProductID),
			Quantity:  *item.Quantity,
		}
	}
	return storeItems
}

// parseStoreItems converts inbound items on the update path, where product ids
// have not been through the existence check. Reports failure instead of panicking.
func parseStoreItems(items []SaleItemCreateDto) ([]store.SaleItem, bool) {
	storeItems := make([]store.SaleItem, len(items))
	for i, item := range items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, false
		}
		storeItems[i] = store.SaleItem{ProductID: productID, Quantity: *item.Quantity}
	}
	return storeItems, true
}

func toItemDtos(items []store.SaleItem) []SaleItemDto {
	dtos := make([]SaleItemDto, len(items))
	for i, item := range items {
		dtos[i] = SaleItemDto{ProductID: item.ProductID.String(), Quantity: item.Quantity}
	}
	return dtos
}

func toEventItems(items []store.SaleItem) []events.SaleItem {
	eventItems := make([]events.SaleItem, len(items))
	for i, item := range items {
		eventItems[i] = events.SaleItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return eventItems
}

// toSaleDto converts a store.Sale to a SaleDto.
func toSaleDto(sale *store.Sale) *SaleDto {
	return &SaleDto{
		ID:        sale.ID.String(),
		Items:     toItemDtos(sale.Items),
		CreatedAt: sale.CreatedAt.Format(time.RFC3339),
	}
}
