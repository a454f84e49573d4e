// internal/domain/product/category_service.go
package product

import (
	"context"
	"errors"
	"strings"

	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// CategoryService handles category browsing
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new category service
func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// CategoryWithProductCount represents category with product count
type CategoryWithProductCount struct {
	Category
	ProductCount int64 `json:"product_count"`
}

// GetCategories lists categories by name with the number of available
// products in each
func (s *CategoryService) GetCategories(ctx context.Context) ([]CategoryWithProductCount, error) {
	var result []CategoryWithProductCount

	err := s.db.WithContext(ctx).
		Model(&Category{}).
		Select("categories.*, COUNT(products.id) AS product_count").
		Joins("LEFT JOIN products ON products.category_id = categories.id AND products.is_available = ? AND products.deleted_at IS NULL", true).
		Group("categories.id").
		Order("categories.name ASC").
		Scan(&result).Error
	if err != nil {
		return nil, apperror.Persistence("list categories", err)
	}

	return result, nil
}

// GetCategoryBySlug retrieves a single category by slug
func (s *CategoryService) GetCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))

	var category Category
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("category", slug)
		}
		return nil, apperror.Persistence("find category", err)
	}

	return &category, nil
}
