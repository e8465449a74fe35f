package repository

import (
	"context"

	"github.com/example/shopfront/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	return TranslateError(s.db.WithContext(ctx).Create(product).Error)
}

func (s *Store) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &product, nil
}

// LockProduct reads the product with SELECT ... FOR UPDATE. Only meaningful
// inside Transaction.
func (s *Store) LockProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &product, nil
}

func (s *Store) GetProductByName(ctx context.Context, name string) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&product).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &product, nil
}

func (s *Store) ListProducts(ctx context.Context, page Page) ([]models.Product, int64, error) {
	var (
		products []models.Product
		total    int64
	)
	db := s.db.WithContext(ctx).Model(&models.Product{}).Session(&gorm.Session{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := page.apply(db).Order("id").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	return TranslateError(s.db.WithContext(ctx).Save(product).Error)
}

func (s *Store) DeleteProduct(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DebitStock subtracts qty from the product's stock only if enough is left.
func (s *Store) DebitStock(ctx context.Context, productID uint, qty int) error {
	result := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (s *Store) CreditStock(ctx context.Context, productID uint, qty int) error {
	result := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
