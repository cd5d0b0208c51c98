package products

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/acme/catalog-admin/app/requests"
	"github.com/acme/catalog-admin/models"
)

// ProductProvider is the storage surface the handlers need.
type ProductProvider interface {
	ListFiltered(offset, limit int, filters models.ProductFilters) ([]models.Product, int64, error)
	GetByID(id uint) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product, changes map[string]any) error
	SoftDelete(id uint) error
	SoftDeleteAll(ids []uint) error
}

// CategoryChecker answers whether a referenced category exists.
type CategoryChecker interface {
	Exists(id uint) (bool, error)
}

type ProductsHandler struct {
	repo       ProductProvider
	categories CategoryChecker
}

func NewProductsHandler(repo ProductProvider, categories CategoryChecker) *ProductsHandler {
	return &ProductsHandler{
		repo:       repo,
		categories: categories,
	}
}

// HandleList returns one page of the filtered collection with the
// data/links/meta envelope.
func (h *ProductsHandler) HandleList(c *gin.Context) {
	filters := ParseFilters(c)
	page := ParsePage(c)

	items, total, err := h.repo.ListFiltered((page-1)*PerPage, PerPage, filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get products"})
		return
	}

	c.JSON(http.StatusOK, NewListResponse(items, total, page, c.Request.URL.Path, c.Request.URL.Query()))
}

func (h *ProductsHandler) HandleCreate(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": requests.ValidationMessage,
			"errors":  requests.FieldMessages(err),
		})
		return
	}

	if ok := h.checkCategory(c, *req.CategoryID); !ok {
		return
	}

	product := req.Product()
	if err := h.repo.Create(product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": NewProductResource(*product)})
}

func (h *ProductsHandler) HandleShow(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": NewProductResource(*product)})
}

// HandleUpdate applies a partial update: only supplied fields change.
func (h *ProductsHandler) HandleUpdate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get product"})
		return
	}

	req, err := BindUpdateRequest(c)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": requests.ValidationMessage,
			"errors":  requests.FieldMessages(err),
		})
		return
	}

	// omitempty skips "" entirely, so a supplied-but-blank name has to
	// be rejected here.
	if req.Has("name") && *req.Name == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": requests.ValidationMessage,
			"errors": map[string][]string{
				"name": {"The name field is required."},
			},
		})
		return
	}

	if req.Has("category_id") {
		if ok := h.checkCategory(c, *req.CategoryID); !ok {
			return
		}
	}

	if err := h.repo.Update(product, req.Changes()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": NewProductResource(*product)})
}

func (h *ProductsHandler) HandleDelete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.repo.SoftDelete(id); err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
		return
	}

	c.Status(http.StatusNoContent)
}

// HandleBulkDelete soft-deletes the given ids all-or-nothing: if any id
// does not exist, nothing is deleted and the missing ids are reported.
func (h *ProductsHandler) HandleBulkDelete(c *gin.Context) {
	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": requests.ValidationMessage,
			"errors":  requests.FieldMessages(err),
		})
		return
	}

	if err := h.repo.SoftDeleteAll(req.IDs); err != nil {
		var missing *models.ErrMissingProducts
		if errors.As(err, &missing) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"message":     "Some IDs do not exist",
				"missing_ids": missing.Missing,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": req.IDs})
}

func (h *ProductsHandler) checkCategory(c *gin.Context, id uint) bool {
	exists, err := h.categories.Exists(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check category"})
		return false
	}
	if !exists {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": requests.ValidationMessage,
			"errors": map[string][]string{
				"category_id": {"The selected category_id is invalid."},
			},
		})
		return false
	}
	return true
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
		return 0, false
	}
	return uint(id), true
}
