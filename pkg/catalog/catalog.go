// Package catalog manages products, categories and content pages.
package catalog

import (
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	images ImageUploader
	logger *zap.Logger
}

// NewService builds the catalog service. images may be nil, in which case
// embedded image data is rejected.
func NewService(db *gorm.DB, images ImageUploader, logger *zap.Logger) *Service {
	return &Service{db: db, images: images, logger: logger}
}
