package repository

import (
	"context"

	"github.com/example/shopfront/pkg/models"
	"gorm.io/gorm"
)

func (s *Store) CreateCart(ctx context.Context, cart *models.Cart) error {
	return TranslateError(s.db.WithContext(ctx).Create(cart).Error)
}

// GetCart loads the cart with its items and their products.
func (s *Store) GetCart(ctx context.Context, id uint) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.WithContext(ctx).
		Preload("Items", orderByID).
		Preload("Items.Product").
		Where("id = ?", id).
		First(&cart).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &cart, nil
}

func (s *Store) GetCartByUser(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.WithContext(ctx).
		Preload("Items", orderByID).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &cart, nil
}

func (s *Store) ListCarts(ctx context.Context, page Page) ([]models.Cart, int64, error) {
	var (
		carts []models.Cart
		total int64
	)
	db := s.db.WithContext(ctx).Model(&models.Cart{}).Session(&gorm.Session{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page.apply(db).
		Preload("Items", orderByID).
		Preload("Items.Product").
		Order("id").
		Find(&carts).Error
	if err != nil {
		return nil, 0, err
	}
	return carts, total, nil
}

// DeleteCart removes the cart and its lines. Stock is not touched here.
func (s *Store) DeleteCart(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Where("cart_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Delete(&models.Cart{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetCartItem(ctx context.Context, cartID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := s.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &item, nil
}

func (s *Store) CreateCartItem(ctx context.Context, item *models.CartItem) error {
	return TranslateError(s.db.WithContext(ctx).Omit("Product").Create(item).Error)
}

func (s *Store) SetCartItemQuantity(ctx context.Context, itemID uint, qty int) error {
	return s.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", qty).Error
}

func (s *Store) DeleteCartItem(ctx context.Context, itemID uint) error {
	return s.db.WithContext(ctx).Delete(&models.CartItem{}, itemID).Error
}

// ListCartItems returns the lines of a cart with their products loaded.
func (s *Store) ListCartItems(ctx context.Context, cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Order("id").
		Find(&items).Error
	return items, err
}

func (s *Store) DeleteCartItems(ctx context.Context, cartID uint) error {
	return s.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// DeleteCartItemsByProduct drops every cart line that points at productID.
func (s *Store) DeleteCartItemsByProduct(ctx context.Context, productID uint) (int64, error) {
	result := s.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}
