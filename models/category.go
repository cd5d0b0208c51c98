package models

// Category represents a product category.
// Products hold a non-owning reference to it; category lifetime is
// independent of the products that point at it.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`
}

func (c *Category) TableName() string {
	return "categories"
}
