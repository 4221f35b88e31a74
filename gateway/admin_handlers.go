package gateway

import (
	"net/http"
	"strconv"

	"github.com/example/rentalshop/pkg/apperr"
	"github.com/example/rentalshop/pkg/repository"
	"github.com/example/rentalshop/pkg/stats"
	"github.com/gin-gonic/gin"
)

func (g *Gateway) adminStats(c *gin.Context) {
	period, err := stats.ParsePeriod(c.Query("period"))
	if err != nil {
		g.fail(c, err)
		return
	}
	summary, err := g.services.Stats.Summary(c.Request.Context(), period)
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (g *Gateway) adminCart(c *gin.Context) {
	lines, err := g.services.Cart.ListAll(c.Request.Context())
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func (g *Gateway) adminUsers(c *gin.Context) {
	users, err := g.services.Auth.ListUsers(c.Request.Context())
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// adminAudit returns the audit trail of an entity such as "order:12".
func (g *Gateway) adminAudit(c *gin.Context) {
	if g.services.Audit == nil {
		c.JSON(http.StatusOK, []*repository.AuditLog{})
		return
	}

	limit := repository.MaxAuditEntries
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 || n > repository.MaxAuditEntries {
			g.fail(c, apperr.Validation("Invalid limit"))
			return
		}
		limit = n
	}

	logs, err := g.services.Audit.GetAuditLogs(c.Request.Context(), c.Param("entityId"), limit)
	if err != nil {
		g.fail(c, apperr.Internal("Failed to fetch audit logs", err))
		return
	}
	c.JSON(http.StatusOK, logs)
}
