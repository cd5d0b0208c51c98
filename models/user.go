package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is the authentication principal. Only admins may reach the
// product surfaces; IsAdmin is the authorization input for that gate.
type User struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"not null"`
	Email         string `gorm:"uniqueIndex;not null"`
	Password      string `gorm:"not null" json:"-"`
	IsAdmin       bool   `gorm:"not null;default:false"`
	RememberToken string `gorm:"size:100" json:"-"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (u *User) TableName() string {
	return "users"
}

// SetPassword stores a bcrypt hash of the given plaintext password.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}
