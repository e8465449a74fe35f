package service

import (
	"context"
	"errors"

	"github.com/example/shopfront/pkg/apperror"
	"github.com/example/shopfront/pkg/events"
	"github.com/example/shopfront/pkg/metrics"
	"github.com/example/shopfront/pkg/models"
	"github.com/example/shopfront/pkg/repository"
	"go.uber.org/zap"
)

type CartItemInput struct {
	CartID    uint
	ProductID uint
	Quantity  int
}

// CartService keeps cart lines and product stock in step: every unit sitting
// in a cart has been debited from its product.
type CartService struct {
	store  *repository.Store
	cache  ProductCache
	events events.Emitter
	logger *zap.Logger
}

func NewCartService(deps Deps) *CartService {
	deps = deps.withDefaults()
	return &CartService{
		store:  deps.Store,
		cache:  deps.Cache,
		events: deps.Events,
		logger: deps.Logger.Named("carts"),
	}
}

func (s *CartService) Create(ctx context.Context, userID uint) (*models.Cart, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, storeError(err, "user %d not found", userID)
	}
	if _, err := s.store.GetCartByUser(ctx, userID); err == nil {
		return nil, apperror.Conflict("user %d already has a cart", userID)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err, "look up cart")
	}

	cart := &models.Cart{UserID: userID}
	if err := s.store.CreateCart(ctx, cart); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("user %d already has a cart", userID)
		}
		return nil, storeError(err, "create cart")
	}
	cart.Items = []models.CartItem{}

	s.events.Emit(events.New(events.CartCreated, cart.ID, map[string]interface{}{"user_id": userID}))
	return cart, nil
}

// AddItem puts quantity units of a product in the cart, merging with an
// existing line, and debits the product's stock by the same amount.
func (s *CartService) AddItem(ctx context.Context, in CartItemInput) (*models.Cart, error) {
	err := s.addItem(ctx, in)
	metrics.RecordCartOperation("add", err)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, in.ProductID)
	s.events.Emit(events.New(events.CartItemAdded, in.CartID, map[string]interface{}{
		"product_id": in.ProductID,
		"quantity":   in.Quantity,
	}))
	return s.Get(ctx, in.CartID)
}

func (s *CartService) addItem(ctx context.Context, in CartItemInput) error {
	if in.Quantity <= 0 {
		return apperror.Validation("quantity must be positive")
	}

	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.GetCart(ctx, in.CartID); err != nil {
			return storeError(err, "cart %d not found", in.CartID)
		}
		product, err := tx.LockProduct(ctx, in.ProductID)
		if err != nil {
			return storeError(err, "product %d not found", in.ProductID)
		}
		if in.Quantity > product.Stock {
			return apperror.Validation("quantity %d exceeds available stock %d", in.Quantity, product.Stock)
		}

		item, err := tx.GetCartItem(ctx, in.CartID, in.ProductID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			item = &models.CartItem{CartID: in.CartID, ProductID: in.ProductID, Quantity: in.Quantity}
			if err := tx.CreateCartItem(ctx, item); err != nil {
				return storeError(err, "create cart line")
			}
		case err != nil:
			return storeError(err, "look up cart line")
		default:
			if err := tx.SetCartItemQuantity(ctx, item.ID, item.Quantity+in.Quantity); err != nil {
				return storeError(err, "update cart line")
			}
		}

		return debit(ctx, tx, product, in.Quantity)
	})
}

// UpdateItem sets a line to an absolute quantity. The line's current
// quantity counts as available, so the bound is current + stock.
func (s *CartService) UpdateItem(ctx context.Context, in CartItemInput) (*models.Cart, error) {
	previous, err := s.updateItem(ctx, in)
	metrics.RecordCartOperation("update", err)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, in.ProductID)
	s.events.Emit(events.New(events.CartItemUpdated, in.CartID, map[string]interface{}{
		"product_id":        in.ProductID,
		"quantity":          in.Quantity,
		"previous_quantity": previous,
	}))
	return s.Get(ctx, in.CartID)
}

func (s *CartService) updateItem(ctx context.Context, in CartItemInput) (int, error) {
	if in.Quantity <= 0 {
		return 0, apperror.Validation("quantity must be positive")
	}

	var previous int
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.GetCart(ctx, in.CartID); err != nil {
			return storeError(err, "cart %d not found", in.CartID)
		}
		product, err := tx.LockProduct(ctx, in.ProductID)
		if err != nil {
			return storeError(err, "product %d not found", in.ProductID)
		}
		item, err := tx.GetCartItem(ctx, in.CartID, in.ProductID)
		if err != nil {
			return storeError(err, "product %d is not in cart %d", in.ProductID, in.CartID)
		}

		available := item.Quantity + product.Stock
		if in.Quantity > available {
			return apperror.Validation("quantity %d exceeds available stock %d", in.Quantity, available)
		}

		switch delta := in.Quantity - item.Quantity; {
		case delta > 0:
			if err := debit(ctx, tx, product, delta); err != nil {
				return err
			}
		case delta < 0:
			if err := tx.CreditStock(ctx, product.ID, -delta); err != nil {
				return storeError(err, "credit stock")
			}
		}

		previous = item.Quantity
		if err := tx.SetCartItemQuantity(ctx, item.ID, in.Quantity); err != nil {
			return storeError(err, "update cart line")
		}
		return nil
	})
	return previous, err
}

// RemoveItem deletes the line and returns its quantity to stock.
func (s *CartService) RemoveItem(ctx context.Context, cartID, productID uint) (*models.Cart, error) {
	var removed int
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.GetCart(ctx, cartID); err != nil {
			return storeError(err, "cart %d not found", cartID)
		}
		if _, err := tx.LockProduct(ctx, productID); err != nil {
			return storeError(err, "product %d not found", productID)
		}
		item, err := tx.GetCartItem(ctx, cartID, productID)
		if err != nil {
			return storeError(err, "product %d is not in cart %d", productID, cartID)
		}

		if err := tx.DeleteCartItem(ctx, item.ID); err != nil {
			return storeError(err, "delete cart line")
		}
		if err := tx.CreditStock(ctx, productID, item.Quantity); err != nil {
			return storeError(err, "credit stock")
		}
		removed = item.Quantity
		return nil
	})
	metrics.RecordCartOperation("remove", err)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, productID)
	s.events.Emit(events.New(events.CartItemRemoved, cartID, map[string]interface{}{
		"product_id": productID,
		"quantity":   removed,
	}))
	return s.Get(ctx, cartID)
}

func (s *CartService) Get(ctx context.Context, cartID uint) (*models.Cart, error) {
	cart, err := s.store.GetCart(ctx, cartID)
	if err != nil {
		return nil, storeError(err, "cart %d not found", cartID)
	}
	cart.ComputeTotal()
	return cart, nil
}

func (s *CartService) GetByUser(ctx context.Context, userID uint) (*models.Cart, error) {
	cart, err := s.store.GetCartByUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "cart for user %d not found", userID)
	}
	cart.ComputeTotal()
	return cart, nil
}

func (s *CartService) List(ctx context.Context, page repository.Page) ([]models.Cart, int64, error) {
	carts, total, err := s.store.ListCarts(ctx, page)
	if err != nil {
		return nil, 0, storeError(err, "list carts")
	}
	for i := range carts {
		carts[i].ComputeTotal()
	}
	return carts, total, nil
}

// Delete drops the cart and returns every line's quantity to stock.
func (s *CartService) Delete(ctx context.Context, cartID uint) error {
	var credited []uint
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		cart, err := tx.GetCart(ctx, cartID)
		if err != nil {
			return storeError(err, "cart %d not found", cartID)
		}
		credited, err = releaseCart(ctx, tx, cart)
		return err
	})
	metrics.RecordCartOperation("delete", err)
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, credited...)
	s.events.Emit(events.New(events.CartDeleted, cartID, map[string]interface{}{"products_credited": len(credited)}))
	return nil
}

func debit(ctx context.Context, tx *repository.Store, product *models.Product, qty int) error {
	if err := tx.DebitStock(ctx, product.ID, qty); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return apperror.Validation("quantity %d exceeds available stock %d", qty, product.Stock)
		}
		return storeError(err, "debit stock")
	}
	return nil
}

// releaseCart credits every line back to its product and deletes the cart.
// It returns the ids of the products whose stock changed.
func releaseCart(ctx context.Context, tx *repository.Store, cart *models.Cart) ([]uint, error) {
	credited := make([]uint, 0, len(cart.Items))
	for _, item := range cart.Items {
		if err := tx.CreditStock(ctx, item.ProductID, item.Quantity); err != nil {
			return nil, storeError(err, "credit stock for product %d", item.ProductID)
		}
		credited = append(credited, item.ProductID)
	}
	if err := tx.DeleteCart(ctx, cart.ID); err != nil {
		return nil, storeError(err, "cart %d not found", cart.ID)
	}
	return credited, nil
}
