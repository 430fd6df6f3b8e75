package respond

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Page reads limit and offset query parameters. Missing or malformed values
// use defLimit and 0; limit is capped at maxLimit.
func Page(c *gin.Context, defLimit, maxLimit int) (limit, offset int) {
	limit = defLimit
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			offset = parsed
		}
	}
	return limit, offset
}
