package admin

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/acme/catalog-admin/models"
)

// ProductForm is the raw admin form submission. Values stay strings so
// the form can be redisplayed exactly as entered when validation
// fails.
type ProductForm struct {
	Name        string
	CategoryID  string
	Description string
	Price       string
	Stock       string
	Enabled     bool
}

func BindProductForm(c *gin.Context) ProductForm {
	enabled := c.PostForm("enabled")
	return ProductForm{
		Name:        c.PostForm("name"),
		CategoryID:  c.PostForm("category_id"),
		Description: c.PostForm("description"),
		Price:       c.PostForm("price"),
		Stock:       c.PostForm("stock"),
		Enabled:     enabled == "1" || enabled == "on",
	}
}

// productValues is the typed result of a valid form.
type productValues struct {
	Name        string
	CategoryID  uint
	Description *string
	Price       decimal.Decimal
	Stock       uint
	Enabled     bool
}

func (v productValues) product() *models.Product {
	return &models.Product{
		Name:        v.Name,
		CategoryID:  v.CategoryID,
		Description: v.Description,
		Price:       v.Price,
		Stock:       v.Stock,
		Enabled:     v.Enabled,
	}
}

func (v productValues) changes() map[string]any {
	return map[string]any{
		"name":        v.Name,
		"category_id": v.CategoryID,
		"description": v.Description,
		"price":       v.Price,
		"stock":       v.Stock,
		"enabled":     v.Enabled,
	}
}

// Validate applies the create rule set; the admin form always submits
// every field, so web updates use the same rules.
func (f ProductForm) Validate(categories CategoryChecker) (productValues, map[string]string) {
	values := productValues{Name: f.Name, Enabled: f.Enabled}
	errs := make(map[string]string)

	if f.Name == "" {
		errs["name"] = "The name field is required."
	} else if len(f.Name) > 255 {
		errs["name"] = "The name may not be greater than 255 characters."
	}

	if f.CategoryID == "" {
		errs["category_id"] = "The category field is required."
	} else if id, err := strconv.ParseUint(f.CategoryID, 10, 32); err != nil {
		errs["category_id"] = "The selected category is invalid."
	} else {
		exists, err := categories.Exists(uint(id))
		if err != nil || !exists {
			errs["category_id"] = "The selected category is invalid."
		} else {
			values.CategoryID = uint(id)
		}
	}

	if f.Description != "" {
		desc := f.Description
		values.Description = &desc
	}

	if f.Price == "" {
		errs["price"] = "The price field is required."
	} else if price, err := decimal.NewFromString(f.Price); err != nil {
		errs["price"] = "The price must be a number."
	} else if price.IsNegative() {
		errs["price"] = "The price must be at least 0."
	} else {
		values.Price = price
	}

	if f.Stock == "" {
		errs["stock"] = "The stock field is required."
	} else if stock, err := strconv.ParseUint(f.Stock, 10, 32); err != nil {
		errs["stock"] = "The stock must be a non-negative integer."
	} else {
		values.Stock = uint(stock)
	}

	return values, errs
}
