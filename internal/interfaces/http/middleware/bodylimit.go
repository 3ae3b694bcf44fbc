package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pentol/backend/internal/interfaces/http/dto"
)

// BodyLimit caps request bodies at limit bytes. An oversized Content-Length
// is refused before the handler runs; bodies of unknown length fail on read.
// A non-positive limit disables the check.
func BodyLimit(limit int64) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	message := "Request body exceeds the " + strconv.FormatInt(limit, 10) + " byte limit"

	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			abortWithError(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, message)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
