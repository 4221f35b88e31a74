package catalog

import (
	"context"
	"io"
	"strings"

	"github.com/example/rentalshop/pkg/apperr"
	"github.com/example/rentalshop/pkg/models"
	"github.com/tealeg/xlsx"
)

const timeLayout = "2006-01-02 15:04:05"

var exportHeaders = []string{
	"ID", "Name", "Description", "Price", "SalePrice", "Available", "Deleted",
	"Category", "Image", "Images", "CreatedAt", "UpdatedAt",
}

// ExportProducts writes every product, including soft-deleted ones, as an
// xlsx workbook with a single "Products" sheet.
func (s *Service) ExportProducts(ctx context.Context, w io.Writer) error {
	var products []models.Product
	if err := s.db.WithContext(ctx).Preload("Category").Order("id ASC").Find(&products).Error; err != nil {
		return apperr.Internal("Failed to fetch products", err)
	}

	file, err := productWorkbook(products)
	if err != nil {
		return apperr.Internal("Failed to build workbook", err)
	}
	if err := file.Write(w); err != nil {
		return apperr.Internal("Failed to write workbook", err)
	}
	return nil
}

func productWorkbook(products []models.Product) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, err
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.Price.StringFixed(2))
		if p.SalePrice.Valid {
			row.AddCell().SetValue(p.SalePrice.Decimal.StringFixed(2))
		} else {
			row.AddCell().SetValue("")
		}
		row.AddCell().SetValue(p.Available)
		row.AddCell().SetValue(p.IsDeleted)
		if p.Category != nil {
			row.AddCell().SetValue(p.Category.Name)
		} else {
			row.AddCell().SetValue("")
		}
		row.AddCell().SetValue(p.Image)
		row.AddCell().SetValue(strings.Join(p.Images, ","))
		row.AddCell().SetValue(p.CreatedAt.Format(timeLayout))
		row.AddCell().SetValue(p.UpdatedAt.Format(timeLayout))
	}
	return file, nil
}
