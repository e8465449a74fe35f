package repository

import (
	"context"

	"github.com/example/shopfront/pkg/models"
	"gorm.io/gorm"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return TranslateError(s.db.WithContext(ctx).Create(user).Error)
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context, page Page) ([]models.User, int64, error) {
	var (
		users []models.User
		total int64
	)
	db := s.db.WithContext(ctx).Model(&models.User{}).Session(&gorm.Session{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := page.apply(db).Order("id").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	return TranslateError(s.db.WithContext(ctx).Save(user).Error)
}

func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
