package repository

import (
	"context"

	"github.com/example/shopfront/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

// CreateOrder inserts the order together with its items.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	return TranslateError(s.db.WithContext(ctx).Create(order).Error)
}

func (s *Store) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", orderByID).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &order, nil
}

func (s *Store) LockOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &order, nil
}

// ListOrders returns orders newest first, restricted to userID when it is non-zero.
func (s *Store) ListOrders(ctx context.Context, userID uint, page Page) ([]models.Order, int64, error) {
	var (
		orders []models.Order
		total  int64
	)
	db := s.db.WithContext(ctx).Model(&models.Order{})
	if userID != 0 {
		db = db.Where("user_id = ?", userID)
	}
	db = db.Session(&gorm.Session{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page.apply(db).
		Preload("Items", orderByID).
		Order("order_date DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (s *Store) UpdateOrder(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
