package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "gin-gorm-scaffold/internal/transport/http/response"
)

// abort ends the chain with the envelope; HTTP status stays 200.
func abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(http.StatusOK, resp.Error(code, msg))
}
