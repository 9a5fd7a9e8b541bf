package service

import (
	"schooldesk/database/model"

	"gorm.io/gorm"
)

// CategoryService reads the seeded ticket categories. Categories are
// reference data; the panel has no create or update path for them.
type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) GetAll() ([]model.Category, error) {
	categories := make([]model.Category, 0)
	err := s.db.Order("category_id ASC").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}
