package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrProductNotFound is returned when a product is not found.
var ErrProductNotFound = errors.New("product not found")

// ErrMissingProducts is returned by SoftDeleteAll when some of the
// requested ids do not reference existing (non-deleted) products.
// Nothing is deleted in that case.
type ErrMissingProducts struct {
	Missing []uint
}

func (e *ErrMissingProducts) Error() string {
	return fmt.Sprintf("products not found: %v", e.Missing)
}

// ProductFilters narrows product queries. Nil / empty fields are not
// applied.
type ProductFilters struct {
	Search     string
	CategoryID *uint
	Enabled    *bool
}

type ProductsRepository struct {
	db *gorm.DB
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

func (r *ProductsRepository) filtered(f ProductFilters) *gorm.DB {
	query := r.db.Model(&Product{}).Preload("Category")

	if f.Search != "" {
		query = query.Where("name LIKE ?", "%"+f.Search+"%")
	}
	if f.CategoryID != nil {
		query = query.Where("category_id = ?", *f.CategoryID)
	}
	if f.Enabled != nil {
		query = query.Where("enabled = ?", *f.Enabled)
	}
	return query
}

// ListFiltered returns one page of non-deleted products, most recent
// first, along with the total count after filtering.
func (r *ProductsRepository) ListFiltered(offset, limit int, f ProductFilters) ([]Product, int64, error) {
	var products []Product
	var total int64

	query := r.filtered(f)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *ProductsRepository) GetByID(id uint) (*Product, error) {
	var product Product
	if err := r.db.
		Preload("Category").
		First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// Create persists a new product and reloads it with its category
// relation populated.
func (r *ProductsRepository) Create(product *Product) error {
	if err := r.db.Create(product).Error; err != nil {
		return err
	}
	return r.db.Preload("Category").First(product, product.ID).Error
}

// Update applies only the given columns to the product and reloads it
// with its category relation populated.
func (r *ProductsRepository) Update(product *Product, changes map[string]any) error {
	if len(changes) > 0 {
		if err := r.db.Model(product).Updates(changes).Error; err != nil {
			return err
		}
	}
	return r.db.Preload("Category").First(product, product.ID).Error
}

// SoftDelete marks the product as deleted, keeping the row in storage.
func (r *ProductsRepository) SoftDelete(id uint) error {
	res := r.db.Delete(&Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// MissingIDs returns the subset of ids that do not reference existing
// non-deleted products.
func (r *ProductsRepository) MissingIDs(ids []uint) ([]uint, error) {
	var found []uint
	if err := r.db.Model(&Product{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}

	existing := make(map[uint]bool, len(found))
	for _, id := range found {
		existing[id] = true
	}

	var missing []uint
	for _, id := range ids {
		if !existing[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// SoftDeleteAll soft-deletes every given id in one transaction. If any
// id does not reference an existing non-deleted product, nothing is
// deleted and an *ErrMissingProducts listing the missing ids is
// returned.
func (r *ProductsRepository) SoftDeleteAll(ids []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		repo := &ProductsRepository{db: tx}

		missing, err := repo.MissingIDs(ids)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return &ErrMissingProducts{Missing: missing}
		}

		return tx.Delete(&Product{}, "id IN ?", ids).Error
	})
}

// ForEachBatch feeds non-deleted products matching the filters to fn in
// ascending id batches, so large result sets are never held in memory
// at once.
func (r *ProductsRepository) ForEachBatch(f ProductFilters, batchSize int, fn func([]Product) error) error {
	var batch []Product
	res := r.filtered(f).Order("id ASC").FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
		return fn(batch)
	})
	return res.Error
}
