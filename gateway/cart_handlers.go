package gateway

import (
	"net/http"

	"github.com/example/rentalshop/pkg/cart"
	"github.com/gin-gonic/gin"
)

func (g *Gateway) addToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, bindError(err))
		return
	}

	id, err := g.services.Cart.Add(c.Request.Context(), ownerFrom(c), cart.AddRequest{
		ProductID: req.ProductID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Quantity:  req.Quantity,
	})
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"cartId": id})
}

func (g *Gateway) getCart(c *gin.Context) {
	lines, err := g.services.Cart.List(c.Request.Context(), ownerFrom(c))
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func (g *Gateway) updateCartItem(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		g.fail(c, err)
		return
	}
	var req updateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, bindError(err))
		return
	}

	if err := g.services.Cart.UpdateQuantity(c.Request.Context(), ownerFrom(c), id, req.Quantity); err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart item updated"})
}

func (g *Gateway) removeCartItem(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		g.fail(c, err)
		return
	}
	if err := g.services.Cart.Remove(c.Request.Context(), ownerFrom(c), id); err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart item removed"})
}
