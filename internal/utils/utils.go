package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Listing page sizes. MaxPageSize mirrors the row cap of the dashboard
// table.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

func GetPaginationParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(DefaultPageSize)))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return page, pageSize
}

// QueryBool reads a checkbox-style query flag: "true", "1" or "on".
func QueryBool(c *gin.Context, key string) bool {
	switch c.Query(key) {
	case "true", "1", "on":
		return true
	}
	return false
}
