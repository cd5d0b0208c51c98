package products

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/acme/catalog-admin/models"
)

// PerPage is the fixed page size for product listings.
const PerPage = 10

// ParseFilters reads the search, category_id and enabled query
// parameters. Invalid numeric or boolean values are silently ignored
// rather than rejected, so a bad filter never fails the request.
func ParseFilters(c *gin.Context) models.ProductFilters {
	var filters models.ProductFilters

	filters.Search = c.Query("search")

	if raw := c.Query("category_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			v := uint(id)
			filters.CategoryID = &v
		}
	}

	if raw := c.Query("enabled"); raw != "" {
		if enabled, err := strconv.ParseBool(raw); err == nil {
			filters.Enabled = &enabled
		}
	}

	return filters
}

// ParsePage reads the page query parameter, defaulting to 1.
func ParsePage(c *gin.Context) int {
	page := 1
	if raw := c.Query("page"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil && p >= 1 {
			page = p
		}
	}
	return page
}
