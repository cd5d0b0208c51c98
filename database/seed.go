package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/acme/catalog-admin/models"
)

// SeedAdminUser upserts the default admin account used to reach the
// admin area on a fresh install.
func SeedAdminUser(db *gorm.DB) error {
	var user models.User
	err := db.Where("email = ?", "admin@example.com").First(&user).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	user = models.User{
		Name:    "System Admin",
		Email:   "admin@example.com",
		IsAdmin: true,
	}
	if err := user.SetPassword("password"); err != nil {
		return err
	}
	return db.Create(&user).Error
}

// SeedDemoCategories inserts a handful of categories when the table is
// empty, so product forms have something to select.
func SeedDemoCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	categories := []models.Category{
		{Name: "Accessories"},
		{Name: "Clothing"},
		{Name: "Electronics"},
		{Name: "Home"},
	}
	return db.Create(&categories).Error
}
