package gateway

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/rentalshop/pkg/apperr"
	"github.com/example/rentalshop/pkg/auth"
	"github.com/example/rentalshop/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	guestCookie = "guestSessionId"

	ctxOwner    = "owner"
	ctxClaims   = "claims"
	ctxIdentity = "identity_source"
)

// Where the request identity came from.
const (
	sourceToken  = "token"
	sourceCookie = "cookie"
	sourceQuery  = "query"
	sourceIssued = "issued"
)

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		logger.Info("HTTP request", fields...)
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != "" && token != header
}

// authenticate verifies a bearer token when one is sent. ok is false when the
// request was aborted.
func (g *Gateway) authenticate(c *gin.Context) (claims *auth.Claims, ok bool) {
	raw, present := bearerToken(c)
	if !present {
		if c.GetHeader("Authorization") != "" {
			g.abort(c, apperr.AuthFailure("Invalid authorization header"))
			return nil, false
		}
		return nil, true
	}
	claims, err := g.services.Auth.Tokens().Verify(raw)
	if err != nil {
		g.abort(c, err)
		return nil, false
	}
	c.Set(ctxClaims, claims)
	return claims, true
}

// identityMiddleware resolves the request owner: a registered user from the
// bearer token, otherwise a guest session from the cookie or query string.
// A new guest session cookie is issued when none is present.
func (g *Gateway) identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := g.authenticate(c)
		if !ok {
			return
		}
		if claims != nil {
			c.Set(ctxOwner, models.UserOwner(claims.UserID))
			c.Set(ctxIdentity, sourceToken)
			c.Next()
			return
		}

		if id, err := c.Cookie(guestCookie); err == nil && id != "" {
			c.Set(ctxOwner, models.GuestOwner(id))
			c.Set(ctxIdentity, sourceCookie)
			c.Next()
			return
		}
		if id := c.Query(guestCookie); id != "" {
			c.Set(ctxOwner, models.GuestOwner(id))
			c.Set(ctxIdentity, sourceQuery)
			c.Next()
			return
		}

		id := uuid.NewString()
		g.setGuestCookie(c, id)
		c.Set(ctxOwner, models.GuestOwner(id))
		c.Set(ctxIdentity, sourceIssued)
		c.Next()
	}
}

func (g *Gateway) setGuestCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(guestCookie, id, int(g.config.Auth.GuestTTL.Seconds()), "/", "", g.config.Auth.CookieSecure, true)
}

// requireUser rejects requests without a valid bearer token.
func (g *Gateway) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := g.authenticate(c)
		if !ok {
			return
		}
		if claims == nil {
			g.abort(c, apperr.AuthFailure("Authentication required"))
			return
		}
		c.Set(ctxOwner, models.UserOwner(claims.UserID))
		c.Set(ctxIdentity, sourceToken)
		c.Next()
	}
}

// requireAdmin rejects requests whose token does not carry the admin role.
func (g *Gateway) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := g.authenticate(c)
		if !ok {
			return
		}
		if claims == nil {
			g.abort(c, apperr.AuthFailure("Authentication required"))
			return
		}
		if claims.Role != models.RoleAdmin {
			g.abort(c, apperr.Forbidden("Admin access required"))
			return
		}
		c.Set(ctxOwner, models.UserOwner(claims.UserID))
		c.Set(ctxIdentity, sourceToken)
		c.Next()
	}
}

// rateLimitMiddleware allows a fixed number of requests per client IP and
// window. Counter failures let the request through.
func (g *Gateway) rateLimitMiddleware() gin.HandlerFunc {
	limit := g.config.RateLimit.Requests
	window := g.config.RateLimit.Window
	return func(c *gin.Context) {
		key := "ratelimit:" + c.ClientIP()
		count, err := g.services.Limiter.IncrWindow(c.Request.Context(), key, window)
		if err != nil {
			g.logger.Warn("Rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if count > limit {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}

func ownerFrom(c *gin.Context) models.Owner {
	if v, ok := c.Get(ctxOwner); ok {
		if o, ok := v.(models.Owner); ok {
			return o
		}
	}
	return models.Owner{}
}

func claimsFrom(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ctxClaims); ok {
		if cl, ok := v.(*auth.Claims); ok {
			return cl
		}
	}
	return nil
}
