// Package admin serves the server-rendered product administration
// pages.
package admin

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/acme/catalog-admin/app/products"
	"github.com/acme/catalog-admin/models"
)

// CategoryChecker answers whether a referenced category exists.
type CategoryChecker interface {
	Exists(id uint) (bool, error)
}

// CategoryProvider also lists categories for selects and filters.
type CategoryProvider interface {
	CategoryChecker
	GetAll() ([]models.Category, error)
}

type AdminHandler struct {
	repo       products.ProductProvider
	categories CategoryProvider
}

func NewAdminHandler(repo products.ProductProvider, categories CategoryProvider) *AdminHandler {
	return &AdminHandler{
		repo:       repo,
		categories: categories,
	}
}

// Pager drives the rendered pagination controls.
type Pager struct {
	CurrentPage int
	LastPage    int
	Total       int64
	PrevURL     string
	NextURL     string
}

// HandleIndex renders the filtered, paginated product list.
func (h *AdminHandler) HandleIndex(c *gin.Context) {
	filters := products.ParseFilters(c)
	page := products.ParsePage(c)

	items, total, err := h.repo.ListFiltered((page-1)*products.PerPage, products.PerPage, filters)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load products")
		return
	}

	categories, err := h.categories.GetAll()
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load categories")
		return
	}

	lastPage := int((total + int64(products.PerPage) - 1) / int64(products.PerPage))
	if lastPage < 1 {
		lastPage = 1
	}
	pager := Pager{CurrentPage: page, LastPage: lastPage, Total: total}
	if page > 1 {
		pager.PrevURL = pageURL(c.Request.URL, page-1)
	}
	if page < lastPage {
		pager.NextURL = pageURL(c.Request.URL, page+1)
	}

	c.HTML(http.StatusOK, "products_index.html", gin.H{
		"Products":   items,
		"Categories": categories,
		"Search":     c.Query("search"),
		"CategoryID": c.Query("category_id"),
		"Enabled":    c.Query("enabled"),
		"Pager":      pager,
		"Success":    popFlash(c, "success"),
		"Error":      popFlash(c, "error"),
		"ExportURL":  exportURL(c.Request.URL),
	})
}

func (h *AdminHandler) HandleCreateForm(c *gin.Context) {
	categories, err := h.categories.GetAll()
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load categories")
		return
	}
	c.HTML(http.StatusOK, "products_create.html", gin.H{
		"Categories": categories,
		"Form":       ProductForm{Enabled: true},
		"Errors":     map[string]string{},
	})
}

// HandleStore validates and persists a new product; failures re-render
// the form with the entered values preserved.
func (h *AdminHandler) HandleStore(c *gin.Context) {
	form := BindProductForm(c)
	values, errs := form.Validate(h.categories)
	if len(errs) > 0 {
		categories, _ := h.categories.GetAll()
		c.HTML(http.StatusUnprocessableEntity, "products_create.html", gin.H{
			"Categories": categories,
			"Form":       form,
			"Errors":     errs,
		})
		return
	}

	if err := h.repo.Create(values.product()); err != nil {
		c.String(http.StatusInternalServerError, "failed to create product")
		return
	}

	addFlash(c, "success", "Product created.")
	c.Redirect(http.StatusFound, "/admin/products")
}

func (h *AdminHandler) HandleEditForm(c *gin.Context) {
	product, ok := h.findProduct(c)
	if !ok {
		return
	}

	categories, err := h.categories.GetAll()
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to load categories")
		return
	}

	form := ProductForm{
		Name:       product.Name,
		CategoryID: strconv.FormatUint(uint64(product.CategoryID), 10),
		Price:      product.Price.StringFixed(2),
		Stock:      strconv.FormatUint(uint64(product.Stock), 10),
		Enabled:    product.Enabled,
	}
	if product.Description != nil {
		form.Description = *product.Description
	}

	c.HTML(http.StatusOK, "products_edit.html", gin.H{
		"Product":    product,
		"Categories": categories,
		"Form":       form,
		"Errors":     map[string]string{},
	})
}

func (h *AdminHandler) HandleUpdate(c *gin.Context) {
	product, ok := h.findProduct(c)
	if !ok {
		return
	}

	form := BindProductForm(c)
	values, errs := form.Validate(h.categories)
	if len(errs) > 0 {
		categories, _ := h.categories.GetAll()
		c.HTML(http.StatusUnprocessableEntity, "products_edit.html", gin.H{
			"Product":    product,
			"Categories": categories,
			"Form":       form,
			"Errors":     errs,
		})
		return
	}

	if err := h.repo.Update(product, values.changes()); err != nil {
		c.String(http.StatusInternalServerError, "failed to update product")
		return
	}

	addFlash(c, "success", "Product updated.")
	c.Redirect(http.StatusFound, "/admin/products")
}

func (h *AdminHandler) HandleDestroy(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.String(http.StatusNotFound, "Not Found")
		return
	}

	if err := h.repo.SoftDelete(uint(id)); err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			c.String(http.StatusNotFound, "Not Found")
			return
		}
		c.String(http.StatusInternalServerError, "failed to delete product")
		return
	}

	addFlash(c, "success", "Product deleted.")
	c.Redirect(http.StatusFound, "/admin/products")
}

// HandleBulkDelete applies the same all-or-nothing policy as the API:
// if any submitted id does not exist, nothing is deleted.
func (h *AdminHandler) HandleBulkDelete(c *gin.Context) {
	var ids []uint
	for _, raw := range c.PostFormArray("ids") {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			addFlash(c, "error", "Invalid selection.")
			c.Redirect(http.StatusFound, "/admin/products")
			return
		}
		ids = append(ids, uint(id))
	}
	if len(ids) == 0 {
		addFlash(c, "error", "Select at least one product.")
		c.Redirect(http.StatusFound, "/admin/products")
		return
	}

	if err := h.repo.SoftDeleteAll(ids); err != nil {
		var missing *models.ErrMissingProducts
		if errors.As(err, &missing) {
			addFlash(c, "error", fmt.Sprintf("Some products no longer exist: %s. Nothing was deleted.", joinIDs(missing.Missing)))
			c.Redirect(http.StatusFound, "/admin/products")
			return
		}
		c.String(http.StatusInternalServerError, "failed to delete products")
		return
	}

	addFlash(c, "success", "Selected products deleted.")
	c.Redirect(http.StatusFound, "/admin/products")
}

func (h *AdminHandler) findProduct(c *gin.Context) (*models.Product, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.String(http.StatusNotFound, "Not Found")
		return nil, false
	}
	product, err := h.repo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			c.String(http.StatusNotFound, "Not Found")
			return nil, false
		}
		c.String(http.StatusInternalServerError, "failed to load product")
		return nil, false
	}
	return product, true
}

func addFlash(c *gin.Context, kind, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, kind)
	_ = session.Save()
}

func popFlash(c *gin.Context, kind string) string {
	session := sessions.Default(c)
	flashes := session.Flashes(kind)
	if len(flashes) == 0 {
		return ""
	}
	_ = session.Save()
	if msg, ok := flashes[0].(string); ok {
		return msg
	}
	return ""
}

// pageURL rewrites the page parameter while keeping the applied
// filters in the query string.
func pageURL(u *url.URL, page int) string {
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	return u.Path + "?" + q.Encode()
}

// exportURL carries the current category/enabled filters over to the
// export route.
func exportURL(u *url.URL) string {
	q := url.Values{}
	for _, key := range []string{"category_id", "enabled"} {
		if v := u.Query().Get(key); v != "" {
			q.Set(key, v)
		}
	}
	if len(q) == 0 {
		return "/admin/products/export"
	}
	return "/admin/products/export?" + q.Encode()
}

func joinIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ", ")
}
