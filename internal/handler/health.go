package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func Health(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ok":   true,
			"name": name,
			"time": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// NotFound responds in the same envelope as other failures so callers
// never have to special-case unknown routes.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"ok":    false,
		"error": "not found",
		"code":  "NOT_FOUND",
	})
}
