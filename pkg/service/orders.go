package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/example/shopfront/pkg/apperror"
	"github.com/example/shopfront/pkg/events"
	"github.com/example/shopfront/pkg/metrics"
	"github.com/example/shopfront/pkg/models"
	"github.com/example/shopfront/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

type OrderService struct {
	store     *repository.Store
	events    events.Emitter
	logger    *zap.Logger
	clearCart bool
	now       func() time.Time
}

func NewOrderService(deps Deps, clearCartOnCheckout bool) *OrderService {
	deps = deps.withDefaults()
	return &OrderService{
		store:     deps.Store,
		events:    deps.Events,
		logger:    deps.Logger.Named("orders"),
		clearCart: clearCartOnCheckout,
		now:       time.Now,
	}
}

func (s *OrderService) newReference() string {
	return s.now().UTC().Format("20060102150405") + "-" + uuid.NewString()
}

// Create snapshots the user's cart into a PENDING order priced at the
// products' current prices. The cart is left as is unless the service was
// built to clear it on checkout.
func (s *OrderService) Create(ctx context.Context, userID, cartID uint) (*models.Order, error) {
	var order *models.Order
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return storeError(err, "user %d not found", userID)
		}
		cart, err := tx.GetCart(ctx, cartID)
		if err != nil {
			return storeError(err, "cart %d not found", cartID)
		}
		if cart.UserID != userID {
			return apperror.NotFound("cart %d not found for user %d", cartID, userID)
		}

		lines, err := tx.ListCartItems(ctx, cart.ID)
		if err != nil {
			return storeError(err, "load cart lines")
		}
		if len(lines) == 0 {
			return apperror.Validation("cart %d is empty", cartID)
		}

		order = &models.Order{
			Reference: s.newReference(),
			UserID:    userID,
			Status:    models.OrderStatusPending,
			OrderDate: s.now().UTC(),
			Total:     decimal.Zero,
		}
		for _, line := range lines {
			if line.Product == nil {
				return apperror.Internal(errors.New("cart line without product"), "cart line %d", line.ID)
			}
			lineTotal := line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			order.Items = append(order.Items, models.OrderItem{
				ProductID:   line.ProductID,
				ProductName: line.Product.Name,
				UnitPrice:   line.Product.Price,
				Quantity:    line.Quantity,
				LineTotal:   lineTotal,
			})
			order.Total = order.Total.Add(lineTotal)
		}

		if err := tx.CreateOrder(ctx, order); err != nil {
			return storeError(err, "create order")
		}
		if s.clearCart {
			if err := tx.DeleteCartItems(ctx, cart.ID); err != nil {
				return storeError(err, "clear cart")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OrderCreated()
	s.logger.Info("Order created",
		zap.Uint("order_id", order.ID),
		zap.String("reference", order.Reference),
		zap.String("total", order.Total.StringFixed(2)))
	s.events.Emit(events.New(events.OrderCreated, order.ID, map[string]interface{}{
		"reference": order.Reference,
		"user_id":   userID,
		"cart_id":   cartID,
		"total":     order.Total.StringFixed(2),
		"lines":     len(order.Items),
	}))
	return s.Get(ctx, order.ID)
}

func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, storeError(err, "order %d not found", id)
	}
	return order, nil
}

// List returns every order, or only userID's when it is non-zero.
func (s *OrderService) List(ctx context.Context, userID uint, page repository.Page) ([]models.Order, int64, error) {
	if userID != 0 {
		if _, err := s.store.GetUser(ctx, userID); err != nil {
			return nil, 0, storeError(err, "user %d not found", userID)
		}
	}
	orders, total, err := s.store.ListOrders(ctx, userID, page)
	if err != nil {
		return nil, 0, storeError(err, "list orders")
	}
	return orders, total, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	next := models.OrderStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !next.Valid() {
		return nil, apperror.Validation("invalid order status %q", status)
	}

	var previous models.OrderStatus
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		order, err := tx.LockOrder(ctx, id)
		if err != nil {
			return storeError(err, "order %d not found", id)
		}
		previous = order.Status
		if err := tx.UpdateOrder(ctx, id, map[string]interface{}{"status": next}); err != nil {
			return storeError(err, "order %d not found", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Emit(events.New(events.OrderStatusUpdated, id, map[string]interface{}{
		"from": string(previous),
		"to":   string(next),
	}))
	return s.Get(ctx, id)
}

// ApplyCoupon takes discountPercent off the order total, rounded to cents,
// and marks the order DISCOUNTED. DISCOUNTED and PROCESSED orders are refused.
func (s *OrderService) ApplyCoupon(ctx context.Context, orderID uint, code string) (*models.Order, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperror.Validation("coupon code is required")
	}

	var discount, total decimal.Decimal
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return storeError(err, "order %d not found", orderID)
		}
		coupon, err := tx.GetCouponByCode(ctx, code)
		if err != nil {
			return storeError(err, "coupon %q not found", code)
		}
		if order.Status == models.OrderStatusDiscounted || order.Status == models.OrderStatusProcessed {
			return apperror.InvalidState("order %d is already discounted or processed", orderID)
		}

		discount = order.Total.Mul(coupon.DiscountPercent).Div(hundred).Round(2)
		total = order.Total.Sub(discount)
		if total.IsNegative() {
			total = decimal.Zero
		}

		return storeError(tx.UpdateOrder(ctx, orderID, map[string]interface{}{
			"total":       total,
			"status":      models.OrderStatusDiscounted,
			"coupon_code": coupon.Code,
		}), "order %d not found", orderID)
	})
	if err != nil {
		return nil, err
	}

	metrics.CouponApplied()
	s.events.Emit(events.New(events.OrderCouponApplied, orderID, map[string]interface{}{
		"code":     code,
		"discount": discount.StringFixed(2),
		"total":    total.StringFixed(2),
	}))
	return s.Get(ctx, orderID)
}
