package products

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/acme/catalog-admin/models"
)

// --- Mock repositories ---

type MockProductsRepo struct {
	Products []models.Product
	Err      error

	// Fields to capture call arguments
	lastOffset  int
	lastLimit   int
	lastFilters models.ProductFilters
	lastChanges map[string]any
	created     *models.Product
	deletedID   uint
	bulkIDs     []uint

	MissingOnBulk []uint
}

func (m *MockProductsRepo) ListFiltered(offset, limit int, filters models.ProductFilters) ([]models.Product, int64, error) {
	m.lastOffset = offset
	m.lastLimit = limit
	m.lastFilters = filters

	if m.Err != nil {
		return nil, 0, m.Err
	}

	// Simulate filtering
	var filtered []models.Product
	for _, p := range m.Products {
		if filters.Search != "" && !strings.Contains(p.Name, filters.Search) {
			continue
		}
		if filters.CategoryID != nil && p.CategoryID != *filters.CategoryID {
			continue
		}
		if filters.Enabled != nil && p.Enabled != *filters.Enabled {
			continue
		}
		filtered = append(filtered, p)
	}

	total := int64(len(filtered))

	start := offset
	if start > len(filtered) {
		start = len(filtered)
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}

	return filtered[start:end], total, nil
}

func (m *MockProductsRepo) GetByID(id uint) (*models.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.Products {
		if p.ID == id {
			product := p
			return &product, nil
		}
	}
	return nil, models.ErrProductNotFound
}

func (m *MockProductsRepo) Create(product *models.Product) error {
	m.created = product
	if m.Err != nil {
		return m.Err
	}
	product.ID = 101
	product.Category = models.Category{ID: product.CategoryID, Name: "Clothing"}
	return nil
}

func (m *MockProductsRepo) Update(product *models.Product, changes map[string]any) error {
	m.lastChanges = changes
	if m.Err != nil {
		return m.Err
	}
	for key, value := range changes {
		switch key {
		case "name":
			product.Name = value.(string)
		case "category_id":
			product.CategoryID = value.(uint)
		case "description":
			if v, ok := value.(*string); ok {
				product.Description = v
			}
		case "price":
			product.Price = value.(decimal.Decimal)
		case "stock":
			product.Stock = value.(uint)
		case "enabled":
			product.Enabled = value.(bool)
		}
	}
	return nil
}

func (m *MockProductsRepo) SoftDelete(id uint) error {
	m.deletedID = id
	if m.Err != nil {
		return m.Err
	}
	for _, p := range m.Products {
		if p.ID == id {
			return nil
		}
	}
	return models.ErrProductNotFound
}

func (m *MockProductsRepo) SoftDeleteAll(ids []uint) error {
	m.bulkIDs = ids
	if m.Err != nil {
		return m.Err
	}
	if len(m.MissingOnBulk) > 0 {
		return &models.ErrMissingProducts{Missing: m.MissingOnBulk}
	}
	return nil
}

type MockCategoryChecker struct {
	Existing map[uint]bool
	Err      error
}

func (m *MockCategoryChecker) Exists(id uint) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	return m.Existing[id], nil
}

// --- Helpers ---

func newTestProduct(id uint, name string, categoryID uint, price float64, enabled bool) models.Product {
	return models.Product{
		ID:         id,
		Name:       name,
		CategoryID: categoryID,
		Category:   models.Category{ID: categoryID, Name: "Clothing"},
		Price:      decimal.NewFromFloat(price),
		Stock:      3,
		Enabled:    enabled,
	}
}

func newTestRouter(h *ProductsHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/products", h.HandleList)
	r.POST("/api/products", h.HandleCreate)
	r.POST("/api/products/bulk-delete", h.HandleBulkDelete)
	r.GET("/api/products/:id", h.HandleShow)
	r.PATCH("/api/products/:id", h.HandleUpdate)
	r.DELETE("/api/products/:id", h.HandleDelete)
	return r
}

func doJSON(r *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, url, nil)
	} else {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestHandleList(t *testing.T) {
	allProducts := []models.Product{
		newTestProduct(4, "Desk Lamp", 1, 19.90, true),
		newTestProduct(3, "Desk Chair", 1, 95.50, false),
		newTestProduct(2, "Socks", 2, 4.99, true),
		newTestProduct(1, "Shirt", 2, 24.99, true),
	}

	testCases := []struct {
		name           string
		url            string
		repoSetup      func() *MockProductsRepo
		expectedStatus int
		checkResponse  func(t *testing.T, rec *httptest.ResponseRecorder)
		checkRepoCalls func(t *testing.T, repo *MockProductsRepo)
	}{
		{
			name: "Default page with meta",
			url:  "/api/products",
			repoSetup: func() *MockProductsRepo {
				return &MockProductsRepo{Products: allProducts}
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp ListResponse
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Len(t, resp.Data, 4)
				assert.Equal(t, int64(4), resp.Meta.Total)
				assert.Equal(t, 1, resp.Meta.CurrentPage)
				assert.Equal(t, 10, resp.Meta.PerPage)
				assert.Equal(t, 1, resp.Meta.LastPage)
				assert.Nil(t, resp.Links.Prev)
				assert.Nil(t, resp.Links.Next)
			},
			checkRepoCalls: func(t *testing.T, repo *MockProductsRepo) {
				assert.Equal(t, 0, repo.lastOffset)
				assert.Equal(t, 10, repo.lastLimit)
			},
		},
		{
			name: "Filters narrow the total, not just the page",
			url:  "/api/products?enabled=true&category_id=2",
			repoSetup: func() *MockProductsRepo {
				return &MockProductsRepo{Products: allProducts}
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp ListResponse
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Len(t, resp.Data, 2)
				assert.Equal(t, int64(2), resp.Meta.Total)
				assert.Equal(t, 1, resp.Meta.CurrentPage)
			},
			checkRepoCalls: func(t *testing.T, repo *MockProductsRepo) {
				assert.NotNil(t, repo.lastFilters.CategoryID)
				assert.Equal(t, uint(2), *repo.lastFilters.CategoryID)
				assert.NotNil(t, repo.lastFilters.Enabled)
				assert.True(t, *repo.lastFilters.Enabled)
			},
		},
		{
			name: "Page parameter moves the offset and links echo filters",
			url:  "/api/products?page=2&enabled=true",
			repoSetup: func() *MockProductsRepo {
				return &MockProductsRepo{Products: allProducts}
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp ListResponse
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, 2, resp.Meta.CurrentPage)
				assert.NotNil(t, resp.Links.Prev)
				assert.Contains(t, *resp.Links.Prev, "enabled=true")
				assert.Contains(t, *resp.Links.Prev, "page=1")
				assert.Contains(t, resp.Links.First, "enabled=true")
			},
			checkRepoCalls: func(t *testing.T, repo *MockProductsRepo) {
				assert.Equal(t, 10, repo.lastOffset)
			},
		},
		{
			name: "Invalid filter values are ignored",
			url:  "/api/products?category_id=abc&enabled=maybe&page=xyz",
			repoSetup: func() *MockProductsRepo {
				return &MockProductsRepo{Products: allProducts}
			},
			expectedStatus: http.StatusOK,
			checkRepoCalls: func(t *testing.T, repo *MockProductsRepo) {
				assert.Nil(t, repo.lastFilters.CategoryID)
				assert.Nil(t, repo.lastFilters.Enabled)
				assert.Equal(t, 0, repo.lastOffset)
			},
		},
		{
			name: "Search filter is passed through",
			url:  "/api/products?search=Desk",
			repoSetup: func() *MockProductsRepo {
				return &MockProductsRepo{Products: allProducts}
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp ListResponse
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, int64(2), resp.Meta.Total)
			},
			checkRepoCalls: func(t *testing.T, repo *MockProductsRepo) {
				assert.Equal(t, "Desk", repo.lastFilters.Search)
			},
		},
		{
			name: "Repository error",
			url:  "/api/products",
			repoSetup: func() *MockProductsRepo {
				return &MockProductsRepo{Err: errors.New("db down")}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := tc.repoSetup()
			handler := NewProductsHandler(repo, &MockCategoryChecker{})
			router := newTestRouter(handler)

			rec := doJSON(router, "GET", tc.url, "")

			assert.Equal(t, tc.expectedStatus, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
			if tc.checkRepoCalls != nil {
				tc.checkRepoCalls(t, repo)
			}
		})
	}
}

func TestHandleShow(t *testing.T) {
	repo := &MockProductsRepo{Products: []models.Product{
		newTestProduct(7, "Desk Lamp", 1, 19.90, true),
	}}
	handler := NewProductsHandler(repo, &MockCategoryChecker{})
	router := newTestRouter(handler)

	t.Run("Found", func(t *testing.T) {
		rec := doJSON(router, "GET", "/api/products/7", "")
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data ProductResource `json:"data"`
		}
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, uint(7), resp.Data.ID)
		assert.Equal(t, "Desk Lamp", resp.Data.Name)
		assert.Equal(t, "19.90", resp.Data.Price)
		assert.Equal(t, uint(1), resp.Data.Category.ID)
		assert.Equal(t, "Clothing", resp.Data.Category.Name)
	})

	t.Run("Missing id", func(t *testing.T) {
		rec := doJSON(router, "GET", "/api/products/999", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Non-numeric id", func(t *testing.T) {
		rec := doJSON(router, "GET", "/api/products/abc", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleDelete(t *testing.T) {
	t.Run("Soft deletes and returns 204", func(t *testing.T) {
		repo := &MockProductsRepo{Products: []models.Product{
			newTestProduct(5, "Desk Lamp", 1, 19.90, true),
		}}
		router := newTestRouter(NewProductsHandler(repo, &MockCategoryChecker{}))

		rec := doJSON(router, "DELETE", "/api/products/5", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, uint(5), repo.deletedID)
	})

	t.Run("Missing product returns 404", func(t *testing.T) {
		repo := &MockProductsRepo{}
		router := newTestRouter(NewProductsHandler(repo, &MockCategoryChecker{}))

		rec := doJSON(router, "DELETE", "/api/products/5", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleBulkDelete(t *testing.T) {
	testCases := []struct {
		name           string
		body           string
		repoSetup      func() *MockProductsRepo
		expectedStatus int
		checkResponse  func(t *testing.T, rec *httptest.ResponseRecorder)
		checkRepoCalls func(t *testing.T, repo *MockProductsRepo)
	}{
		{
			name: "All ids exist",
			body: `{"ids":[1,2,3]}`,
			repoSetup: func() *MockProductsRepo {
				return &MockProductsRepo{}
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp struct {
					Deleted []uint `json:"deleted"`
				}
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, []uint{1, 2, 3}, resp.Deleted)
			},
			checkRepoCalls: func(t *testing.T, repo *MockProductsRepo) {
				assert.Equal(t, []uint{1, 2, 3}, repo.bulkIDs)
			},
		},
		{
			name: "Missing ids delete nothing and are listed",
			body: `{"ids":[1,2,999]}`,
			repoSetup: func() *MockProductsRepo {
				return &MockProductsRepo{MissingOnBulk: []uint{999}}
			},
			expectedStatus: http.StatusUnprocessableEntity,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp struct {
					Message    string `json:"message"`
					MissingIDs []uint `json:"missing_ids"`
				}
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "Some IDs do not exist", resp.Message)
				assert.Equal(t, []uint{999}, resp.MissingIDs)
			},
		},
		{
			name: "Empty ids list is rejected",
			body: `{"ids":[]}`,
			repoSetup: func() *MockProductsRepo {
				return &MockProductsRepo{}
			},
			expectedStatus: http.StatusUnprocessableEntity,
			checkRepoCalls: func(t *testing.T, repo *MockProductsRepo) {
				assert.Nil(t, repo.bulkIDs, "nothing should be deleted")
			},
		},
		{
			name: "Non-integer ids are rejected",
			body: `{"ids":["abc",2]}`,
			repoSetup: func() *MockProductsRepo {
				return &MockProductsRepo{}
			},
			expectedStatus: http.StatusUnprocessableEntity,
			checkRepoCalls: func(t *testing.T, repo *MockProductsRepo) {
				assert.Nil(t, repo.bulkIDs, "nothing should be deleted")
			},
		},
		{
			name: "Missing ids key is rejected",
			body: `{}`,
			repoSetup: func() *MockProductsRepo {
				return &MockProductsRepo{}
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := tc.repoSetup()
			router := newTestRouter(NewProductsHandler(repo, &MockCategoryChecker{}))

			rec := doJSON(router, "POST", "/api/products/bulk-delete", tc.body)

			assert.Equal(t, tc.expectedStatus, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
			if tc.checkRepoCalls != nil {
				tc.checkRepoCalls(t, repo)
			}
		})
	}
}
