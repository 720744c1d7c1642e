package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetLimit reads ?limit=, falling back to def for missing or invalid values and capping at max.
func GetLimit(c *gin.Context, def, max int) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// GetFloatQuery reports whether key was present and parsed as a float.
func GetFloatQuery(c *gin.Context, key string) (float64, bool) {
	raw, ok := c.GetQuery(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
