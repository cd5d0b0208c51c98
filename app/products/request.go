package products

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"

	"github.com/acme/catalog-admin/models"
)

// CreateProductRequest carries the create payload. Fields are pointers
// so that false and zero values still satisfy their required rules.
type CreateProductRequest struct {
	Name        *string  `json:"name" binding:"required,min=1,max=255"`
	CategoryID  *uint    `json:"category_id" binding:"required"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"required,gte=0"`
	Stock       *uint    `json:"stock" binding:"required"`
	Enabled     *bool    `json:"enabled" binding:"required"`
}

// Product builds the model from a validated create request.
func (r *CreateProductRequest) Product() *models.Product {
	return &models.Product{
		Name:        *r.Name,
		CategoryID:  *r.CategoryID,
		Description: r.Description,
		Price:       decimal.NewFromFloat(*r.Price),
		Stock:       *r.Stock,
		Enabled:     *r.Enabled,
	}
}

// UpdateProductRequest carries a partial update. A nil field may mean
// "not supplied" or "supplied as null"; the present set, built from the
// raw body, tells the two apart.
type UpdateProductRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=255"`
	CategoryID  *uint    `json:"category_id"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Stock       *uint    `json:"stock"`
	Enabled     *bool    `json:"enabled"`

	present map[string]bool
}

// Has reports whether the request body supplied the field at all.
func (r *UpdateProductRequest) Has(field string) bool {
	return r.present[field]
}

// Changes returns the column→value map of supplied fields only.
func (r *UpdateProductRequest) Changes() map[string]any {
	changes := make(map[string]any)
	if r.Has("name") {
		changes["name"] = *r.Name
	}
	if r.Has("category_id") {
		changes["category_id"] = *r.CategoryID
	}
	if r.Has("description") {
		changes["description"] = r.Description
	}
	if r.Has("price") {
		changes["price"] = decimal.NewFromFloat(*r.Price)
	}
	if r.Has("stock") {
		changes["stock"] = *r.Stock
	}
	if r.Has("enabled") {
		changes["enabled"] = *r.Enabled
	}
	return changes
}

// BindUpdateRequest decodes and validates a partial update body,
// recording which fields were supplied.
func BindUpdateRequest(c *gin.Context) (*UpdateProductRequest, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	var req UpdateProductRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, err
	}

	req.present = make(map[string]bool, len(raw))
	for key, value := range raw {
		// A supplied null counts as present only for the nullable
		// description field; for every other field it means "leave
		// unchanged" rather than "set to zero".
		if string(value) == "null" && key != "description" {
			continue
		}
		req.present[key] = true
	}

	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// BulkDeleteRequest is the strict bulk-delete payload: a non-empty list
// of integer ids.
type BulkDeleteRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}
