package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/rentalshop/pkg/apperr"
	"github.com/example/rentalshop/pkg/models"
	"github.com/example/rentalshop/pkg/pricing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AddRequest struct {
	ProductID uint
	StartDate string
	EndDate   string
	Quantity  int
}

// Line is a cart row as shown to its owner: current product display fields
// with the price captured when the item was added.
type Line struct {
	ID           uint            `json:"id"`
	ProductID    uint            `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	CreatedAt    time.Time       `json:"created_at"`
}

// AdminLine is a cart row with its owner and the live product prices.
type AdminLine struct {
	Line
	UserID         *uint               `json:"user_id,omitempty"`
	GuestSessionID *string             `json:"guest_session_id,omitempty"`
	CurrentPrice   decimal.Decimal     `json:"current_price"`
	CurrentSale    decimal.NullDecimal `json:"current_sale_price"`
}

type Store struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger, now: time.Now}
}

// Add validates the request and stores a new item with the product's
// effective price as snapshot.
func (s *Store) Add(ctx context.Context, owner models.Owner, req AddRequest) (uint, error) {
	if owner.IsZero() {
		return 0, apperr.MissingIdentity()
	}
	if err := pricing.ValidateQuantity(req.Quantity); err != nil {
		return 0, err
	}
	start, err := pricing.ParseDate("start_date", req.StartDate)
	if err != nil {
		return 0, err
	}
	end, err := pricing.ParseDate("end_date", req.EndDate)
	if err != nil {
		return 0, err
	}
	if err := pricing.ValidateRange(start, end); err != nil {
		return 0, err
	}
	if start.Before(pricing.StartOfDay(s.now())) {
		return 0, apperr.Validation("Start date cannot be in the past")
	}

	var product models.Product
	if err := s.db.WithContext(ctx).
		Where("id = ? AND available = ? AND is_deleted = ?", req.ProductID, true, false).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperr.NotFound("Product not found or unavailable")
		}
		return 0, apperr.Internal("Failed to load product", err)
	}

	item := models.CartItem{
		ProductID: product.ID,
		StartDate: start,
		EndDate:   end,
		Quantity:  req.Quantity,
		Price:     product.EffectivePrice(),
	}
	item.SetOwner(owner)

	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		s.logger.Error("Failed to add cart item", zap.Stringer("owner", owner), zap.Error(err))
		return 0, apperr.Internal("Failed to add item to cart", err)
	}

	s.logger.Info("Cart item added",
		zap.Stringer("owner", owner),
		zap.Uint("cart_id", item.ID),
		zap.Uint("product_id", product.ID))
	return item.ID, nil
}

// List returns the owner's items, oldest first.
func (s *Store) List(ctx context.Context, owner models.Owner) ([]Line, error) {
	if owner.IsZero() {
		return nil, apperr.MissingIdentity()
	}

	var items []models.CartItem
	if err := owner.Scope(s.db.WithContext(ctx)).
		Preload("Product").
		Order("created_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, apperr.Internal("Failed to fetch cart", err)
	}

	lines := make([]Line, 0, len(items))
	for i := range items {
		lines = append(lines, toLine(&items[i]))
	}
	return lines, nil
}

// ListAll returns every cart row for operators.
func (s *Store) ListAll(ctx context.Context) ([]AdminLine, error) {
	var items []models.CartItem
	if err := s.db.WithContext(ctx).
		Preload("Product").
		Order("created_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, apperr.Internal("Failed to fetch carts", err)
	}

	lines := make([]AdminLine, 0, len(items))
	for i := range items {
		it := &items[i]
		line := AdminLine{
			Line:           toLine(it),
			UserID:         it.UserID,
			GuestSessionID: it.GuestSessionID,
		}
		if it.Product != nil {
			line.CurrentPrice = it.Product.Price
			line.CurrentSale = it.Product.SalePrice
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// UpdateQuantity changes the quantity of an item owned by owner.
func (s *Store) UpdateQuantity(ctx context.Context, owner models.Owner, id uint, quantity int) error {
	if owner.IsZero() {
		return apperr.MissingIdentity()
	}
	if err := pricing.ValidateQuantity(quantity); err != nil {
		return err
	}

	res := owner.Scope(s.db.WithContext(ctx).Model(&models.CartItem{})).
		Where("id = ?", id).
		Update("quantity", quantity)
	if res.Error != nil {
		return apperr.Internal("Failed to update cart item", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Cart item not found")
	}
	return nil
}

// Remove deletes an item owned by owner.
func (s *Store) Remove(ctx context.Context, owner models.Owner, id uint) error {
	if owner.IsZero() {
		return apperr.MissingIdentity()
	}

	res := owner.Scope(s.db.WithContext(ctx)).
		Where("id = ?", id).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return apperr.Internal("Failed to delete cart item", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Cart item not found")
	}
	return nil
}

// AdoptGuestCart moves a guest's items to a user after login and returns the
// number of rows moved.
func (s *Store) AdoptGuestCart(ctx context.Context, guestSessionID string, userID uint) (int64, error) {
	if guestSessionID == "" || userID == 0 {
		return 0, nil
	}

	res := s.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("guest_session_id = ?", guestSessionID).
		Updates(map[string]interface{}{
			"user_id":          userID,
			"guest_session_id": gorm.Expr("NULL"),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to adopt guest cart: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		s.logger.Info("Guest cart adopted",
			zap.String("guest_session_id", guestSessionID),
			zap.Uint("user_id", userID),
			zap.Int64("items", res.RowsAffected))
	}
	return res.RowsAffected, nil
}

func toLine(it *models.CartItem) Line {
	line := Line{
		ID:         it.ID,
		ProductID:  it.ProductID,
		StartDate:  it.StartDate,
		EndDate:    it.EndDate,
		Quantity:   it.Quantity,
		Price:      it.Price,
		TotalPrice: pricing.LineTotal(it.StartDate, it.EndDate, it.Price, it.Quantity),
		CreatedAt:  it.CreatedAt,
	}
	if it.Product != nil {
		line.ProductName = it.Product.Name
		line.ProductImage = it.Product.Image
	}
	return line
}
