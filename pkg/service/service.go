// Package service holds the business rules of the shop. Every method returns
// an *apperror.Error on failure so the HTTP and gRPC layers can translate it
// without inspecting store errors.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/shopfront/pkg/apperror"
	"github.com/example/shopfront/pkg/events"
	"github.com/example/shopfront/pkg/models"
	"github.com/example/shopfront/pkg/repository"
	"go.uber.org/zap"
)

// ProductCache fronts product reads. repository.ProductCache satisfies it.
type ProductCache interface {
	GetProduct(ctx context.Context, id uint, load func(context.Context) (*models.Product, error)) (*models.Product, error)
	Invalidate(ctx context.Context, ids ...uint)
}

// NoCache reads straight through to the loader.
type NoCache struct{}

func (NoCache) GetProduct(ctx context.Context, _ uint, load func(context.Context) (*models.Product, error)) (*models.Product, error) {
	return load(ctx)
}

func (NoCache) Invalidate(context.Context, ...uint) {}

// Deps are the collaborators shared by every service.
type Deps struct {
	Store  *repository.Store
	Cache  ProductCache
	Events events.Emitter
	Logger *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Cache == nil {
		d.Cache = NoCache{}
	}
	if d.Events == nil {
		d.Events = events.Discard{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}

// Services bundles every service built over the same Deps.
type Services struct {
	Catalog  *CatalogService
	Accounts *AccountService
	Carts    *CartService
	Orders   *OrderService
	Coupons  *CouponService
}

type Options struct {
	Tokens              TokenIssuer
	ClearCartOnCheckout bool
}

func New(deps Deps, opts Options) *Services {
	deps = deps.withDefaults()
	return &Services{
		Catalog:  NewCatalogService(deps),
		Accounts: NewAccountService(deps, opts.Tokens),
		Carts:    NewCartService(deps),
		Orders:   NewOrderService(deps, opts.ClearCartOnCheckout),
		Coupons:  NewCouponService(deps),
	}
}

// storeError converts a store failure into a typed error. ErrNotFound
// becomes NotFound with the given message; anything else is internal.
func storeError(err error, format string, args ...any) error {
	var appErr *apperror.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound(format, args...)
	default:
		return apperror.Internal(err, "store failure: %s", fmt.Sprintf(format, args...))
	}
}
