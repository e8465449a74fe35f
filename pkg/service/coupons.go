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
)

type CouponService struct {
	store  *repository.Store
	events events.Emitter
}

func NewCouponService(deps Deps) *CouponService {
	deps = deps.withDefaults()
	return &CouponService{store: deps.Store, events: deps.Events}
}

// Create registers a discount code. discountPercent must be in (0, 100].
func (s *CouponService) Create(ctx context.Context, code string, discountPercent decimal.Decimal) (*models.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperror.Validation("code is required")
	}
	if !discountPercent.IsPositive() || discountPercent.GreaterThan(hundred) {
		return nil, apperror.Validation("discount must be greater than 0 and at most 100")
	}

	if _, err := s.store.GetCouponByCode(ctx, code); err == nil {
		return nil, apperror.Conflict("coupon %q already exists", code)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err, "look up coupon")
	}

	coupon := &models.Coupon{Code: code, DiscountPercent: discountPercent.Round(2)}
	if err := s.store.CreateCoupon(ctx, coupon); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("coupon %q already exists", code)
		}
		return nil, storeError(err, "create coupon")
	}

	s.events.Emit(events.New(events.CouponCreated, coupon.ID, map[string]interface{}{
		"code":     coupon.Code,
		"discount": coupon.DiscountPercent.String(),
	}))
	return coupon, nil
}

func (s *CouponService) List(ctx context.Context, page repository.Page) ([]models.Coupon, int64, error) {
	coupons, total, err := s.store.ListCoupons(ctx, page)
	if err != nil {
		return nil, 0, storeError(err, "list coupons")
	}
	return coupons, total, nil
}
