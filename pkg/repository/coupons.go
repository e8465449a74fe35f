package repository

import (
	"context"

	"github.com/example/shopfront/pkg/models"
	"gorm.io/gorm"
)

func (s *Store) CreateCoupon(ctx context.Context, coupon *models.Coupon) error {
	return TranslateError(s.db.WithContext(ctx).Create(coupon).Error)
}

func (s *Store) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&coupon).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &coupon, nil
}

func (s *Store) ListCoupons(ctx context.Context, page Page) ([]models.Coupon, int64, error) {
	var (
		coupons []models.Coupon
		total   int64
	)
	db := s.db.WithContext(ctx).Model(&models.Coupon{}).Session(&gorm.Session{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := page.apply(db).Order("id").Find(&coupons).Error; err != nil {
		return nil, 0, err
	}
	return coupons, total, nil
}
