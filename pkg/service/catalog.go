package service

import (
	"context"
	"errors"
	"strings"

	"github.com/example/shopfront/pkg/apperror"
	"github.com/example/shopfront/pkg/events"
	"github.com/example/shopfront/pkg/models"
	"github.com/example/shopfront/pkg/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
}

// UpdateProductInput holds the fields to change; nil means unchanged.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
}

type CatalogService struct {
	store  *repository.Store
	cache  ProductCache
	events events.Emitter
	logger *zap.Logger
}

func NewCatalogService(deps Deps) *CatalogService {
	deps = deps.withDefaults()
	return &CatalogService{
		store:  deps.Store,
		cache:  deps.Cache,
		events: deps.Events,
		logger: deps.Logger.Named("catalog"),
	}
}

func validatePriceStock(price decimal.Decimal, stock int) error {
	if price.IsNegative() {
		return apperror.Validation("price must not be negative")
	}
	if stock < 0 {
		return apperror.Validation("stock must not be negative")
	}
	return nil
}

func (s *CatalogService) Create(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.Validation("name is required")
	}
	if err := validatePriceStock(in.Price, in.Stock); err != nil {
		return nil, err
	}

	if _, err := s.store.GetProductByName(ctx, name); err == nil {
		return nil, apperror.Conflict("product %q already exists", name)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err, "look up product")
	}

	product := &models.Product{
		Name:        name,
		Description: in.Description,
		Price:       in.Price.Round(2),
		Stock:       in.Stock,
	}
	if err := s.store.CreateProduct(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("product %q already exists", name)
		}
		return nil, storeError(err, "create product")
	}

	s.events.Emit(events.New(events.ProductCreated, product.ID, map[string]interface{}{
		"name":  product.Name,
		"price": product.Price.StringFixed(2),
		"stock": product.Stock,
	}))
	return product, nil
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.cache.GetProduct(ctx, id, func(ctx context.Context) (*models.Product, error) {
		return s.store.GetProduct(ctx, id)
	})
	if err != nil {
		return nil, storeError(err, "product %d not found", id)
	}
	return product, nil
}

// Stock reads the current stock from the store, bypassing the cache.
func (s *CatalogService) Stock(ctx context.Context, id uint) (int, error) {
	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return 0, storeError(err, "product %d not found", id)
	}
	return product.Stock, nil
}

func (s *CatalogService) List(ctx context.Context, page repository.Page) ([]models.Product, int64, error) {
	products, total, err := s.store.ListProducts(ctx, page)
	if err != nil {
		return nil, 0, storeError(err, "list products")
	}
	return products, total, nil
}

func (s *CatalogService) Update(ctx context.Context, id uint, in UpdateProductInput) (*models.Product, error) {
	var product *models.Product
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		product, err = tx.LockProduct(ctx, id)
		if err != nil {
			return storeError(err, "product %d not found", id)
		}

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return apperror.Validation("name must not be empty")
			}
			if name != product.Name {
				if other, err := tx.GetProductByName(ctx, name); err == nil && other.ID != id {
					return apperror.Conflict("product %q already exists", name)
				} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
					return storeError(err, "look up product")
				}
			}
			product.Name = name
		}
		if in.Description != nil {
			product.Description = *in.Description
		}
		if in.Price != nil {
			product.Price = in.Price.Round(2)
		}
		if in.Stock != nil {
			product.Stock = *in.Stock
		}
		if err := validatePriceStock(product.Price, product.Stock); err != nil {
			return err
		}

		if err := tx.UpdateProduct(ctx, product); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperror.Conflict("product %q already exists", product.Name)
			}
			return storeError(err, "update product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, id)
	s.events.Emit(events.New(events.ProductUpdated, id, map[string]interface{}{
		"price": product.Price.StringFixed(2),
		"stock": product.Stock,
	}))
	return product, nil
}

// Delete removes the product together with every cart line pointing at it.
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	var removedLines int64
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.LockProduct(ctx, id); err != nil {
			return storeError(err, "product %d not found", id)
		}
		var err error
		if removedLines, err = tx.DeleteCartItemsByProduct(ctx, id); err != nil {
			return storeError(err, "delete cart lines")
		}
		if err := tx.DeleteProduct(ctx, id); err != nil {
			return storeError(err, "product %d not found", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, id)
	s.logger.Info("Product deleted", zap.Uint("product_id", id), zap.Int64("cart_lines_removed", removedLines))
	s.events.Emit(events.New(events.ProductDeleted, id, map[string]interface{}{"cart_lines_removed": removedLines}))
	return nil
}
