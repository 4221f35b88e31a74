package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/example/rentalshop/pkg/apperr"
	"github.com/example/rentalshop/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PageInput struct {
	Title   string
	Content string
}

func pageName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || len(name) > 100 {
		return "", apperr.Validation("Page name is required")
	}
	return name, nil
}

func (s *Service) GetPage(ctx context.Context, name string) (*models.Page, error) {
	name, err := pageName(name)
	if err != nil {
		return nil, err
	}
	var p models.Page
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Page not found")
		}
		return nil, apperr.Internal("Failed to fetch page", err)
	}
	return &p, nil
}

func (s *Service) ListPages(ctx context.Context) ([]models.Page, error) {
	pages := make([]models.Page, 0)
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&pages).Error; err != nil {
		return nil, apperr.Internal("Failed to fetch pages", err)
	}
	return pages, nil
}

// SavePage creates the named page or replaces its title and content.
func (s *Service) SavePage(ctx context.Context, name string, in PageInput) (*models.Page, error) {
	name, err := pageName(name)
	if err != nil {
		return nil, err
	}

	page := models.Page{Name: name, Title: strings.TrimSpace(in.Title), Content: in.Content}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "content", "updated_at"}),
	}).Create(&page).Error
	if err != nil {
		return nil, apperr.Internal("Failed to save page", err)
	}
	return s.GetPage(ctx, name)
}

func (s *Service) DeletePage(ctx context.Context, name string) error {
	name, err := pageName(name)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("name = ?", name).Delete(&models.Page{})
	if res.Error != nil {
		return apperr.Internal("Failed to delete page", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Page not found")
	}
	return nil
}
