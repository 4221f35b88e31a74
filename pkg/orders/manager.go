package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/rentalshop/pkg/apperr"
	"github.com/example/rentalshop/pkg/models"
	"github.com/example/rentalshop/pkg/pricing"
	"github.com/example/rentalshop/pkg/repository"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const auditService = "order-service"

// Auditor receives order events after they are committed.
type Auditor interface {
	CreateAuditLog(ctx context.Context, log *repository.AuditLog) error
}

// Contact is the delivery contact supplied by a guest.
type Contact struct {
	Name    string
	Email   string
	Address string
	Phone   string
}

// Line is one requested order line. A line either references a cart item
// or names a product with its own period and quantity.
type Line struct {
	CartID    uint
	ProductID uint
	StartDate string
	EndDate   string
	Quantity  int
}

type Manager struct {
	db       *gorm.DB
	audit    Auditor
	validate *validator.Validate
	logger   *zap.Logger
}

// NewManager builds a Manager. audit may be nil.
func NewManager(db *gorm.DB, audit Auditor, logger *zap.Logger) *Manager {
	return &Manager{
		db:       db,
		audit:    audit,
		validate: validator.New(),
		logger:   logger,
	}
}

// PlaceOrder converts lines into one pending order. Either every line is
// stored and every referenced cart item removed, or nothing is.
func (m *Manager) PlaceOrder(ctx context.Context, owner models.Owner, contact Contact, lines []Line) (uint, error) {
	if owner.IsZero() {
		return 0, apperr.MissingIdentity()
	}

	contact, err := m.resolveContact(ctx, owner, contact)
	if err != nil {
		return 0, err
	}

	if len(lines) == 0 {
		return 0, apperr.Validation("At least one cart item is required")
	}

	order := models.Order{
		Name:    contact.Name,
		Email:   contact.Email,
		Address: contact.Address,
		Phone:   contact.Phone,
		Status:  models.OrderStatusPending,
	}
	order.SetOwner(owner)

	var total int
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		for i, line := range lines {
			if err := placeLine(tx, owner, order.ID, i+1, line); err != nil {
				return err
			}
			total++
		}
		return nil
	})
	if err != nil {
		m.logger.Warn("Order placement rolled back",
			zap.Stringer("owner", owner),
			zap.Int("lines", len(lines)),
			zap.Error(err))
		return 0, apperr.TransactionFailure(err)
	}

	m.logger.Info("Order placed",
		zap.Uint("order_id", order.ID),
		zap.Stringer("owner", owner),
		zap.Int("items", total))

	m.record(order.ID, owner, "create_order", bson.M{
		"owner": owner.String(),
		"items": total,
		"email": order.Email,
	})

	return order.ID, nil
}

func (m *Manager) resolveContact(ctx context.Context, owner models.Owner, in Contact) (Contact, error) {
	if userID, ok := owner.UserID(); ok {
		var user models.User
		if err := m.db.WithContext(ctx).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Contact{}, apperr.NotFound("User not found")
			}
			return Contact{}, apperr.Internal("Failed to load user", err)
		}
		if strings.TrimSpace(user.Email) == "" {
			return Contact{}, apperr.Validation("User email is required to place an order")
		}
		return Contact{Name: user.Username, Email: user.Email, Address: user.Address, Phone: user.Phone}, nil
	}

	c := Contact{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Address: strings.TrimSpace(in.Address),
		Phone:   strings.TrimSpace(in.Phone),
	}
	if c.Name == "" || c.Email == "" || c.Address == "" || c.Phone == "" {
		return Contact{}, apperr.Validation("Name, email, address and phone are required for guest orders")
	}
	if err := m.validate.Var(c.Email, "email"); err != nil {
		return Contact{}, apperr.Validation("Invalid email format")
	}
	return c, nil
}

// placeLine runs every per-line step inside tx. n is the 1-based line
// number used in messages.
func placeLine(tx *gorm.DB, owner models.Owner, orderID uint, n int, line Line) error {
	var (
		cartItem  *models.CartItem
		productID = line.ProductID
	)

	if line.CartID != 0 {
		var item models.CartItem
		if err := owner.Scope(tx).Where("id = ?", line.CartID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(fmt.Sprintf("Cart item %d not found", line.CartID))
			}
			return fmt.Errorf("failed to load cart item %d: %w", line.CartID, err)
		}
		cartItem = &item
		productID = item.ProductID
	}
	if productID == 0 {
		return apperr.Validation(fmt.Sprintf("Line %d: cartId or productId is required", n))
	}

	var product models.Product
	if err := tx.Where("id = ?", productID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(fmt.Sprintf("Product %d not found", productID))
		}
		return fmt.Errorf("failed to load product %d: %w", productID, err)
	}
	if !product.Rentable() {
		return apperr.NotFound(fmt.Sprintf("Product %d is not available", productID))
	}

	start, end, quantity, unitPrice, err := lineTerms(n, line, cartItem, &product)
	if err != nil {
		return err
	}

	item := models.OrderItem{
		OrderID:      orderID,
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductImage: product.Image,
		StartDate:    start,
		EndDate:      end,
		Quantity:     quantity,
		PricePerDay:  unitPrice,
		TotalPrice:   pricing.LineTotal(start, end, unitPrice, quantity),
	}
	if err := tx.Create(&item).Error; err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}

	if cartItem != nil {
		res := owner.Scope(tx).Where("id = ?", cartItem.ID).Delete(&models.CartItem{})
		if res.Error != nil {
			return fmt.Errorf("failed to remove cart item %d: %w", cartItem.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound(fmt.Sprintf("Cart item %d not found", cartItem.ID))
		}
	}
	return nil
}

// lineTerms resolves the period, quantity and unit price of a line. Cart
// items carry their own terms and snapshot price; ad-hoc lines use the
// request fields and the current effective price.
func lineTerms(n int, line Line, cartItem *models.CartItem, product *models.Product) (start, end time.Time, quantity int, unitPrice decimal.Decimal, err error) {
	if cartItem != nil {
		start, end, quantity, unitPrice = cartItem.StartDate, cartItem.EndDate, cartItem.Quantity, cartItem.Price
	} else {
		if line.StartDate == "" || line.EndDate == "" || line.Quantity == 0 {
			err = apperr.Validation(fmt.Sprintf("Line %d: start_date, end_date and quantity are required", n))
			return
		}
		if start, err = pricing.ParseDate("start_date", line.StartDate); err != nil {
			return
		}
		if end, err = pricing.ParseDate("end_date", line.EndDate); err != nil {
			return
		}
		quantity = line.Quantity
		unitPrice = product.EffectivePrice()
	}
	if err = pricing.ValidateQuantity(quantity); err != nil {
		return
	}
	err = pricing.ValidateRange(start, end)
	return
}

func (m *Manager) record(orderID uint, owner models.Owner, action string, data bson.M) {
	if m.audit == nil {
		return
	}
	entry := &repository.AuditLog{
		Service:  auditService,
		Action:   action,
		EntityID: fmt.Sprintf("order:%d", orderID),
		Actor:    owner.String(),
		Data:     data,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.audit.CreateAuditLog(ctx, entry); err != nil {
			m.logger.Warn("Failed to write audit log",
				zap.String("action", action),
				zap.Uint("order_id", orderID),
				zap.Error(err))
		}
	}()
}
