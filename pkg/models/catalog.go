package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Image       string    `gorm:"type:varchar(500)" json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

type Product struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	Name        string              `gorm:"type:varchar(200);not null" json:"name"`
	Description string              `gorm:"type:text" json:"description"`
	Price       decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"price"`
	SalePrice   decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"sale_price"`
	Image       string              `gorm:"type:varchar(500)" json:"image"`
	Images      []string            `gorm:"serializer:json;type:text" json:"images"`
	Available   bool                `gorm:"not null" json:"available"`
	IsDeleted   bool                `gorm:"not null;index" json:"is_deleted"`
	CategoryID  *uint               `gorm:"index" json:"category_id"`
	Category    *Category           `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// EffectivePrice is the sale price when set, the regular price otherwise.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice.Valid {
		return p.SalePrice.Decimal
	}
	return p.Price
}

// Rentable reports whether the product may enter a cart or an order.
func (p *Product) Rentable() bool {
	return p.Available && !p.IsDeleted
}

// Page is an editable content page addressed by its name.
type Page struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Title     string    `gorm:"type:varchar(200)" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Page) TableName() string {
	return "pages"
}
