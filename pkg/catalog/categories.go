package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/example/rentalshop/pkg/apperr"
	"github.com/example/rentalshop/pkg/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Name        string
	Description string
	Image       string
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := make([]models.Category, 0)
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperr.Internal("Failed to fetch categories", err)
	}
	return categories, nil
}

func (s *Service) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Category not found")
		}
		return nil, apperr.Internal("Failed to fetch category", err)
	}
	return &c, nil
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	var c models.Category
	if err := s.applyCategoryInput(ctx, &c, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, apperr.Internal("Failed to create category", err)
	}
	s.logger.Info("Category created", zap.Uint("category_id", c.ID), zap.String("name", c.Name))
	return &c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id uint, in CategoryInput) (*models.Category, error) {
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyCategoryInput(ctx, c, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, apperr.Internal("Failed to update category", err)
	}
	return c, nil
}

// DeleteCategory removes a category and detaches its products in the same
// transaction.
func (s *Service) DeleteCategory(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).
			Where("category_id = ?", id).
			Update("category_id", gorm.Expr("NULL")).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Category not found")
		}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return err
		}
		return apperr.Internal("Failed to delete category", err)
	}
	s.logger.Info("Category deleted", zap.Uint("category_id", id))
	return nil
}

func (s *Service) applyCategoryInput(ctx context.Context, c *models.Category, in CategoryInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperr.Validation("Category name is required")
	}

	var clash int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("name = ? AND id <> ?", name, c.ID).
		Count(&clash).Error; err != nil {
		return apperr.Internal("Failed to check category name", err)
	}
	if clash > 0 {
		return apperr.Validation("Category name already exists")
	}

	image, err := resolveImage(ctx, s.images, in.Image)
	if err != nil {
		return err
	}

	c.Name = name
	c.Description = strings.TrimSpace(in.Description)
	c.Image = image
	return nil
}

func (s *Service) categoryExists(ctx context.Context, id uint) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return apperr.Internal("Failed to check category", err)
	}
	if n == 0 {
		return apperr.Validation("Category does not exist")
	}
	return nil
}
