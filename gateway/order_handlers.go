package gateway

import (
	"net/http"

	"github.com/example/rentalshop/pkg/models"
	"github.com/gin-gonic/gin"
)

func (g *Gateway) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, bindError(err))
		return
	}

	owner := ownerFrom(c)
	if c.GetString(ctxIdentity) == sourceIssued && req.GuestSessionID != "" {
		owner = models.GuestOwner(req.GuestSessionID)
	}

	id, err := g.services.Orders.PlaceOrder(c.Request.Context(), owner, req.contact(), req.lines())
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"orderId": id})
}

func (g *Gateway) myOrders(c *gin.Context) {
	list, err := g.services.Orders.MyOrders(c.Request.Context(), ownerFrom(c))
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (g *Gateway) allOrders(c *gin.Context) {
	list, err := g.services.Orders.AllOrders(c.Request.Context())
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (g *Gateway) ordersByUser(c *gin.Context) {
	userID, err := idParam(c, "userId")
	if err != nil {
		g.fail(c, err)
		return
	}
	list, err := g.services.Orders.OrdersByUser(c.Request.Context(), userID)
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (g *Gateway) updateOrderStatus(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		g.fail(c, err)
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, bindError(err))
		return
	}

	order, err := g.services.Orders.UpdateStatus(c.Request.Context(), id, req.Status, ownerFrom(c))
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
