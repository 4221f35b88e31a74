package gateway

import (
	"net/http"
	"strconv"

	"github.com/example/rentalshop/pkg/apperr"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errorBody builds the error envelope. details is only exposed outside
// production.
func (g *Gateway) errorBody(err error) (int, gin.H) {
	status := apperr.KindOf(err).Status()
	message, details := apperr.Public(err)
	body := gin.H{"error": message}
	if details != "" && !g.config.App.IsProduction() {
		body["details"] = details
	}
	return status, body
}

func (g *Gateway) fail(c *gin.Context, err error) {
	status, body := g.errorBody(err)
	if status >= http.StatusInternalServerError {
		g.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, body)
}

func (g *Gateway) abort(c *gin.Context, err error) {
	g.fail(c, err)
	c.Abort()
}

func bindError(err error) error {
	return &apperr.Error{Kind: apperr.KindValidation, Message: "Invalid request body", Err: err}
}

func idParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid " + name)
	}
	return uint(id), nil
}
