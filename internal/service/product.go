package service

import (
	"context"
	"errors"
	"fmt"

	serrors "github.com/dpaiva/storemanager/internal/errors"
	"github.com/dpaiva/storemanager/internal/outcome"
	"github.com/dpaiva/storemanager/internal/store"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	msgProductExists  = "Product already exists"
	msgNothingUpdated = "Ops! nothing updated"
	msgNameRequired   = `"name" is required`
	msgNameTooShort   = `"name" length must be at least 5 characters long`
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindByID retrieves a single product by its identifier.
	FindByID(ctx context.Context, id string) (*ProductDto, error)

	// FindAll returns all available products.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// Create adds a new product after validating quantity, name and uniqueness.
	Create(ctx context.Context, product ProductUpsertDto) (*ProductDto, error)

	// Update modifies an existing product's details.
	Update(ctx context.Context, id string, product ProductUpsertDto) (*ProductDto, error)

	// DeleteByID removes a product and returns its previous value.
	DeleteByID(ctx context.Context, id string) (*ProductDto, error)
}

// Products implements ProductService and provides methods to manage products.
type Products struct {
	repository store.ProductStore
	validate   *validator.Validate
}

// NewProductService creates a new instance of ProductService with the provided repository.
func NewProductService(repo store.ProductStore) *Products {
	return &Products{
		repository: repo,
		validate:   validator.New(),
	}
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int32  `json:"quantity"`
}

// ProductUpsertDto carries the mutable product fields for create and update.
// Quantity is a pointer so a missing field is distinguishable from zero.
type ProductUpsertDto struct {
	Name     string `json:"name" validate:"required,min=5"`
	Quantity *int32 `json:"quantity"`
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// A malformed identifier and a missing product report the same invalid-data outcome.
func (s *Products) FindByID(ctx context.Context, id string) (*ProductDto, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, outcome.InvalidData(msgWrongIDFormat)
	}
	product, err := s.repository.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, serrors.ErrProductNotFound) {
			return nil, outcome.InvalidData(msgWrongIDFormat)
		}
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	return toProductDto(product), nil
}

// FindAll retrieves a list of all products and returns them as ProductDtos.
func (s *Products) FindAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	dtos := make([]ProductDto, len(products))
	for i := range products {
		dtos[i] = *toProductDto(&products[i])
	}
	return dtos, nil
}

// Create validates quantity format, name format and name uniqueness, in that
// order, then persists the product. Uniqueness is enforced here only; the
// storage layer does not require unique names.
func (s *Products) Create(ctx context.Context, product ProductUpsertDto) (*ProductDto, error) {
	if err := s.validateFields(product); err != nil {
		return nil, err
	}

	_, err := s.repository.FindByName(ctx, product.Name)
	if err == nil {
		return nil, outcome.InvalidData(msgProductExists)
	}
	if !errors.Is(err, serrors.ErrProductNotFound) {
		return nil, fmt.Errorf("failed to check product name: %w", err)
	}

	created, err := s.repository.Create(ctx, product.Name, *product.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return toProductDto(created), nil
}

// Update modifies an existing product's details after re-validating the field
// formats. Name uniqueness is not re-checked here.
func (s *Products) Update(ctx context.Context, id string, product ProductUpsertDto) (*ProductDto, error) {
	if err := s.validateFields(product); err != nil {
		return nil, err
	}

	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, outcome.InvalidData(msgNothingUpdated)
	}
	modified, err := s.repository.Update(ctx, productID, product.Name, *product.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}
	if modified == 0 {
		return nil, outcome.InvalidData(msgNothingUpdated)
	}

	return &ProductDto{ID: id, Name: product.Name, Quantity: *product.Quantity}, nil
}

// DeleteByID deletes a product by its ID and returns its previous value.
func (s *Products) DeleteByID(ctx context.Context, id string) (*ProductDto, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, outcome.InvalidData(msgWrongIDFormat)
	}
	deleted, err := s.repository.DeleteByID(ctx, productID)
	if err != nil {
		if errors.Is(err, serrors.ErrProductNotFound) {
			return nil, outcome.InvalidData(msgWrongIDFormat)
		}
		return nil, fmt.Errorf("failed to delete product with ID %s: %w", id, err)
	}
	return toProductDto(deleted), nil
}

// validateFields checks quantity first, then name, mirroring the check order
// of the sale workflow's format validation.
func (s *Products) validateFields(product ProductUpsertDto) error {
	if product.Quantity == nil {
		return outcome.InvalidData(msgQuantityNotNumber)
	}
	if *product.Quantity < 1 {
		return outcome.InvalidData(msgQuantityTooSmall)
	}

	if err := s.validate.Struct(product); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			for _, fieldErr := range validationErrors {
				if fieldErr.Tag() == "required" {
					return outcome.InvalidData(msgNameRequired)
				}
				return outcome.InvalidData(msgNameTooShort)
			}
		}
		return fmt.Errorf("failed to validate product: %w", err)
	}
	return nil
}

// toProductDto converts a store.Product to a ProductDto.
func toProductDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:       product.ID.String(),
		Name:     product.Name,
		Quantity: product.Quantity,
	}
}
