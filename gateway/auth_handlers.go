package gateway

import (
	"net/http"

	"github.com/example/rentalshop/pkg/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (g *Gateway) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, bindError(err))
		return
	}
	user, err := g.services.Auth.Register(c.Request.Context(), auth.RegisterInput(req))
	if err != nil {
		g.fail(c, err)
		return
	}
	token, err := g.services.Auth.Tokens().Issue(user)
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// login issues a token and moves any cart built under the guest cookie to
// the user.
func (g *Gateway) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, bindError(err))
		return
	}
	token, user, err := g.services.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		g.fail(c, err)
		return
	}

	if guestID, err := c.Cookie(guestCookie); err == nil && guestID != "" {
		if _, err := g.services.Cart.AdoptGuestCart(c.Request.Context(), guestID, user.ID); err != nil {
			g.logger.Warn("Failed to adopt guest cart", zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (g *Gateway) me(c *gin.Context) {
	user, err := g.services.Auth.Me(c.Request.Context(), claimsFrom(c).UserID)
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (g *Gateway) updateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, bindError(err))
		return
	}
	user, err := g.services.Auth.UpdateProfile(c.Request.Context(), claimsFrom(c).UserID, auth.ProfileInput(req))
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (g *Gateway) changePassword(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, bindError(err))
		return
	}
	if err := g.services.Auth.ChangePassword(c.Request.Context(), claimsFrom(c).UserID, req.CurrentPassword, req.NewPassword); err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
