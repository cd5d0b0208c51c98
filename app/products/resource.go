package products

import (
	"net/url"
	"strconv"
	"time"

	"github.com/acme/catalog-admin/models"
)

// CategoryResource is the category shape embedded in a product
// resource.
type CategoryResource struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ProductResource is the canonical JSON shape for a product, decoupled
// from the storage schema.
type ProductResource struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	Price       string           `json:"price"`
	Stock       uint             `json:"stock"`
	Enabled     bool             `json:"enabled"`
	Category    CategoryResource `json:"category"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func NewProductResource(p models.Product) ProductResource {
	return ProductResource{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Stock:       p.Stock,
		Enabled:     p.Enabled,
		Category: CategoryResource{
			ID:   p.CategoryID,
			Name: p.Category.Name,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type PageLinks struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

type PageMeta struct {
	CurrentPage int   `json:"current_page"`
	From        *int  `json:"from"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	To          *int  `json:"to"`
	Total       int64 `json:"total"`
}

// ListResponse is the paginated collection envelope.
type ListResponse struct {
	Data  []ProductResource `json:"data"`
	Links PageLinks         `json:"links"`
	Meta  PageMeta          `json:"meta"`
}

// NewListResponse builds the paginated envelope. Applied query-string
// filters are echoed into every page link.
func NewListResponse(items []models.Product, total int64, page int, path string, query url.Values) ListResponse {
	data := make([]ProductResource, len(items))
	for i, p := range items {
		data[i] = NewProductResource(p)
	}

	lastPage := int((total + int64(PerPage) - 1) / int64(PerPage))
	if lastPage < 1 {
		lastPage = 1
	}

	pageURL := func(n int) string {
		q := url.Values{}
		for k, vs := range query {
			if k == "page" {
				continue
			}
			q[k] = vs
		}
		q.Set("page", strconv.Itoa(n))
		return path + "?" + q.Encode()
	}

	links := PageLinks{
		First: pageURL(1),
		Last:  pageURL(lastPage),
	}
	if page > 1 {
		prev := pageURL(page - 1)
		links.Prev = &prev
	}
	if page < lastPage {
		next := pageURL(page + 1)
		links.Next = &next
	}

	meta := PageMeta{
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     PerPage,
		Total:       total,
	}
	if len(data) > 0 {
		from := (page-1)*PerPage + 1
		to := from + len(data) - 1
		meta.From = &from
		meta.To = &to
	}

	return ListResponse{Data: data, Links: links, Meta: meta}
}
