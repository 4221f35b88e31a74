package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         *uint           `gorm:"index" json:"user_id,omitempty"`
	GuestSessionID *string         `gorm:"type:varchar(64);index" json:"guest_session_id,omitempty"`
	ProductID      uint            `gorm:"not null;index" json:"product_id"`
	Product        *Product        `json:"-"`
	StartDate      time.Time       `gorm:"not null" json:"start_date"`
	EndDate        time.Time       `gorm:"not null" json:"end_date"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	Price          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

func (c *CartItem) SetOwner(o Owner) { c.UserID, c.GuestSessionID = o.columns() }

func (c *CartItem) Owner() Owner { return ownerFromColumns(c.UserID, c.GuestSessionID) }

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusApproved  OrderStatus = "approved"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus accepts only the four known statuses.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case OrderStatusPending, OrderStatusApproved, OrderStatusCompleted, OrderStatusCancelled:
		return st, true
	}
	return "", false
}

type Order struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	UserID         *uint       `gorm:"index" json:"user_id,omitempty"`
	GuestSessionID *string     `gorm:"type:varchar(64);index" json:"guest_session_id,omitempty"`
	Name           string      `gorm:"type:varchar(200)" json:"name"`
	Email          string      `gorm:"type:varchar(191);not null" json:"email"`
	Address        string      `gorm:"type:varchar(255)" json:"address"`
	Phone          string      `gorm:"type:varchar(30)" json:"phone"`
	Status         OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Items          []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt      time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) SetOwner(owner Owner) { o.UserID, o.GuestSessionID = owner.columns() }

func (o *Order) Owner() Owner { return ownerFromColumns(o.UserID, o.GuestSessionID) }

// OrderItem keeps the product name and image as they were at order time.
type OrderItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      uint            `gorm:"not null;index" json:"order_id"`
	ProductID    uint            `gorm:"not null;index" json:"product_id"`
	ProductName  string          `gorm:"type:varchar(200)" json:"product_name"`
	ProductImage string          `gorm:"type:varchar(500)" json:"product_image"`
	StartDate    time.Time       `gorm:"not null" json:"start_date"`
	EndDate      time.Time       `gorm:"not null" json:"end_date"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	PricePerDay  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_per_day"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// All returns every model managed by AutoMigrate, parents first.
func All() []interface{} {
	return []interface{}{
		&User{}, &Category{}, &Product{}, &Page{}, &CartItem{}, &Order{}, &OrderItem{},
	}
}
