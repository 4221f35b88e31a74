package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/example/rentalshop/pkg/apperr"
	"github.com/example/rentalshop/pkg/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	SalePrice   *decimal.Decimal
	Image       string
	Images      []string
	Available   *bool
	CategoryID  *uint
}

// ProductFilter narrows the public listing. Nil fields do not filter.
type ProductFilter struct {
	CategoryID *uint
	Available  *bool
}

// ListProducts returns products that are not soft-deleted.
func (s *Service) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Preload("Category").Where("is_deleted = ?", false)
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Available != nil {
		q = q.Where("available = ?", *f.Available)
	}

	products := make([]models.Product, 0)
	if err := q.Order("id DESC").Find(&products).Error; err != nil {
		return nil, apperr.Internal("Failed to fetch products", err)
	}
	return products, nil
}

// GetProduct returns a product unless it is missing or soft-deleted.
func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).Preload("Category").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, apperr.Internal("Failed to fetch product", err)
	}
	return &p, nil
}

// DeletedProducts lists soft-deleted products for operators.
func (s *Service) DeletedProducts(ctx context.Context) ([]models.Product, error) {
	products := make([]models.Product, 0)
	if err := s.db.WithContext(ctx).Preload("Category").
		Where("is_deleted = ?", true).
		Order("updated_at DESC").
		Find(&products).Error; err != nil {
		return nil, apperr.Internal("Failed to fetch deleted products", err)
	}
	return products, nil
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	p := models.Product{Available: true}
	if err := s.applyProductInput(ctx, &p, in); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&p).Error; err != nil {
		s.logger.Error("Failed to create product", zap.Error(err))
		return nil, apperr.Internal("Failed to create product", err)
	}

	s.logger.Info("Product created", zap.Uint("product_id", p.ID), zap.String("name", p.Name))
	return &p, nil
}

// UpdateProduct replaces the editable fields of a live product.
func (s *Service) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, apperr.Internal("Failed to fetch product", err)
	}

	if err := s.applyProductInput(ctx, &p, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(&p).Error; err != nil {
		return nil, apperr.Internal("Failed to update product", err)
	}

	s.logger.Info("Product updated", zap.Uint("product_id", p.ID))
	return &p, nil
}

// DeleteProduct flips the soft-delete flag of a live product.
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	return s.setDeleted(ctx, id, true, "Product not found")
}

// RestoreProduct clears the soft-delete flag. It fails NotFound unless the
// product is currently deleted.
func (s *Service) RestoreProduct(ctx context.Context, id uint) error {
	return s.setDeleted(ctx, id, false, "Deleted product not found")
}

func (s *Service) setDeleted(ctx context.Context, id uint, deleted bool, notFound string) error {
	res := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND is_deleted = ?", id, !deleted).
		Update("is_deleted", deleted)
	if res.Error != nil {
		return apperr.Internal("Failed to update product", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(notFound)
	}
	s.logger.Info("Product deleted flag changed", zap.Uint("product_id", id), zap.Bool("is_deleted", deleted))
	return nil
}

func (s *Service) applyProductInput(ctx context.Context, p *models.Product, in ProductInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperr.Validation("Product name is required")
	}
	if !in.Price.IsPositive() {
		return apperr.Validation("Price must be a positive number")
	}
	sale := decimal.NullDecimal{}
	if in.SalePrice != nil {
		if !in.SalePrice.IsPositive() || in.SalePrice.GreaterThan(in.Price) {
			return apperr.Validation("Sale price must be positive and not above the price")
		}
		sale = decimal.NewNullDecimal(*in.SalePrice)
	}
	if in.CategoryID != nil {
		if err := s.categoryExists(ctx, *in.CategoryID); err != nil {
			return err
		}
	}

	image, err := resolveImage(ctx, s.images, in.Image)
	if err != nil {
		return err
	}
	gallery, err := resolveImages(ctx, s.images, in.Images)
	if err != nil {
		return err
	}

	p.Name = name
	p.Description = strings.TrimSpace(in.Description)
	p.Price = in.Price
	p.SalePrice = sale
	p.Image = image
	p.Images = gallery
	if in.Available != nil {
		p.Available = *in.Available
	}
	p.CategoryID = in.CategoryID
	p.Category = nil
	return nil
}
