package catalog

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/example/rentalshop/pkg/apperr"
	"github.com/example/rentalshop/pkg/database"
	"github.com/example/rentalshop/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeUploader struct {
	calls int
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "https://img.example.com/uploaded.png", nil
}

func newTestService(t *testing.T, up ImageUploader) (*Service, *gorm.DB) {
	t.Helper()
	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return NewService(db, up, zap.NewNop()), db
}

func price(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func boolPtr(b bool) *bool { return &b }

func TestProductLifecycle(t *testing.T) {
	up := &fakeUploader{}
	s, _ := newTestService(t, up)
	ctx := context.Background()

	cat, err := s.CreateCategory(ctx, CategoryInput{Name: "Outdoor"})
	require.NoError(t, err)

	sale := price(15)
	p, err := s.CreateProduct(ctx, ProductInput{
		Name:       " Kayak ",
		Price:      price(20),
		SalePrice:  &sale,
		Image:      "data:image/png;base64,AAAA",
		Images:     []string{"https://cdn.example.com/a.jpg", "data:image/png;base64,BBBB"},
		CategoryID: &cat.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Kayak", p.Name)
	assert.True(t, p.Available)
	assert.Equal(t, "https://img.example.com/uploaded.png", p.Image)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "https://img.example.com/uploaded.png"}, p.Images)
	assert.Equal(t, 2, up.calls)
	assert.True(t, p.EffectivePrice().Equal(price(15)))

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Category)
	assert.Equal(t, "Outdoor", got.Category.Name)
	assert.Len(t, got.Images, 2)

	updated, err := s.UpdateProduct(ctx, p.ID, ProductInput{Name: "Kayak XL", Price: price(30), Available: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, updated.Available)
	assert.False(t, updated.SalePrice.Valid)
	assert.Nil(t, updated.CategoryID)

	avail, err := s.ListProducts(ctx, ProductFilter{Available: boolPtr(true)})
	require.NoError(t, err)
	assert.Empty(t, avail)
}

func TestProductValidation(t *testing.T) {
	s, _ := newTestService(t, nil)
	ctx := context.Background()
	high := price(50)
	missingCat := uint(77)

	inputs := map[string]ProductInput{
		"no name":          {Price: price(10)},
		"zero price":       {Name: "x"},
		"negative price":   {Name: "x", Price: price(-1)},
		"sale above price": {Name: "x", Price: price(10), SalePrice: &high},
		"unknown category": {Name: "x", Price: price(10), CategoryID: &missingCat},
		"upload disabled":  {Name: "x", Price: price(10), Image: "data:image/png;base64,AAAA"},
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := s.CreateProduct(ctx, in)
			assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)
		})
	}

	_, err := s.UpdateProduct(ctx, 404, ProductInput{Name: "x", Price: price(1)})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestUploadFailureIsInternal(t *testing.T) {
	s, _ := newTestService(t, &fakeUploader{err: errors.New("host down")})
	_, err := s.CreateProduct(context.Background(), ProductInput{Name: "x", Price: price(1), Image: "data:image/png;base64,AAAA"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestSoftDeleteAndRestore(t *testing.T) {
	s, _ := newTestService(t, nil)
	ctx := context.Background()

	p, err := s.CreateProduct(ctx, ProductInput{Name: "Drill", Price: price(8)})
	require.NoError(t, err)
	other, err := s.CreateProduct(ctx, ProductInput{Name: "Saw", Price: price(6)})
	require.NoError(t, err)

	assert.True(t, errors.Is(s.RestoreProduct(ctx, p.ID), apperr.ErrNotFound), "restoring a live product")

	require.NoError(t, s.DeleteProduct(ctx, p.ID))
	assert.True(t, errors.Is(s.DeleteProduct(ctx, p.ID), apperr.ErrNotFound))

	public, err := s.ListProducts(ctx, ProductFilter{})
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, other.ID, public[0].ID)

	_, err = s.GetProduct(ctx, p.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	deleted, err := s.DeletedProducts(ctx)
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, p.ID, deleted[0].ID)

	require.NoError(t, s.RestoreProduct(ctx, p.ID))
	assert.True(t, errors.Is(s.RestoreProduct(ctx, p.ID), apperr.ErrNotFound), "restore happens once")

	public, err = s.ListProducts(ctx, ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, public, 2)
}

func TestCategories(t *testing.T) {
	s, db := newTestService(t, nil)
	ctx := context.Background()

	tools, err := s.CreateCategory(ctx, CategoryInput{Name: "Tools", Description: "Hand tools"})
	require.NoError(t, err)
	_, err = s.CreateCategory(ctx, CategoryInput{Name: "Tools"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	_, err = s.CreateCategory(ctx, CategoryInput{Name: " "})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	renamed, err := s.UpdateCategory(ctx, tools.ID, CategoryInput{Name: "Tools"})
	require.NoError(t, err, "keeping its own name is not a clash")
	assert.Equal(t, "", renamed.Description)

	p, err := s.CreateProduct(ctx, ProductInput{Name: "Hammer", Price: price(3), CategoryID: &tools.ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteCategory(ctx, tools.ID))
	assert.True(t, errors.Is(s.DeleteCategory(ctx, tools.ID), apperr.ErrNotFound))

	var stored models.Product
	require.NoError(t, db.First(&stored, p.ID).Error)
	assert.Nil(t, stored.CategoryID)

	list, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = s.GetCategory(ctx, tools.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestPages(t *testing.T) {
	s, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := s.GetPage(ctx, "about")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	page, err := s.SavePage(ctx, "About", PageInput{Title: "About us", Content: `{"blocks":[]}`})
	require.NoError(t, err)
	assert.Equal(t, "about", page.Name)

	page, err = s.SavePage(ctx, "about", PageInput{Title: "About", Content: "v2"})
	require.NoError(t, err)
	assert.Equal(t, "About", page.Title)
	assert.Equal(t, "v2", page.Content)

	pages, err := s.ListPages(ctx)
	require.NoError(t, err)
	assert.Len(t, pages, 1)

	require.NoError(t, s.DeletePage(ctx, "about"))
	assert.True(t, errors.Is(s.DeletePage(ctx, "about"), apperr.ErrNotFound))
	assert.True(t, errors.Is(s.DeletePage(ctx, ""), apperr.ErrValidation))
}

func TestExportProducts(t *testing.T) {
	s, _ := newTestService(t, nil)
	ctx := context.Background()

	p, err := s.CreateProduct(ctx, ProductInput{Name: "Tent", Price: price(20)})
	require.NoError(t, err)
	_, err = s.CreateProduct(ctx, ProductInput{Name: "Stove", Price: price(5)})
	require.NoError(t, err)
	require.NoError(t, s.DeleteProduct(ctx, p.ID))

	var buf bytes.Buffer
	require.NoError(t, s.ExportProducts(ctx, &buf))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	sheet := file.Sheets[0]
	assert.Equal(t, "Products", sheet.Name)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "Name", sheet.Rows[0].Cells[1].Value)
	assert.Equal(t, "Tent", sheet.Rows[1].Cells[1].Value)
	assert.Equal(t, "20.00", sheet.Rows[1].Cells[3].Value)
	assert.Equal(t, "Stove", sheet.Rows[2].Cells[1].Value)
}
