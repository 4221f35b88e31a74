package gateway

import (
	"github.com/example/rentalshop/pkg/catalog"
	"github.com/example/rentalshop/pkg/orders"
	"github.com/shopspring/decimal"
)

type addToCartRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Quantity  int    `json:"quantity"`
}

type updateCartRequest struct {
	Quantity int `json:"quantity"`
}

type orderLineRequest struct {
	CartID    uint   `json:"cartId"`
	ProductID uint   `json:"productId"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Quantity  int    `json:"quantity"`
}

type placeOrderRequest struct {
	CartItems      []orderLineRequest `json:"cartItems"`
	GuestSessionID string             `json:"guestSessionId"`
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	Address        string             `json:"address"`
	Phone          string             `json:"phone"`
}

func (r *placeOrderRequest) contact() orders.Contact {
	return orders.Contact{Name: r.Name, Email: r.Email, Address: r.Address, Phone: r.Phone}
}

func (r *placeOrderRequest) lines() []orders.Line {
	lines := make([]orders.Line, 0, len(r.CartItems))
	for _, l := range r.CartItems {
		lines = append(lines, orders.Line{
			CartID:    l.CartID,
			ProductID: l.ProductID,
			StartDate: l.StartDate,
			EndDate:   l.EndDate,
			Quantity:  l.Quantity,
		})
	}
	return lines
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type productRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"sale_price"`
	Image       string           `json:"image"`
	Images      []string         `json:"images"`
	Available   *bool            `json:"available"`
	CategoryID  *uint            `json:"category_id"`
}

func (r *productRequest) input() catalog.ProductInput {
	return catalog.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		SalePrice:   r.SalePrice,
		Image:       r.Image,
		Images:      r.Images,
		Available:   r.Available,
		CategoryID:  r.CategoryID,
	}
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type pageRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	Username string `json:"username"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
