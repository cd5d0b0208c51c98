package models

import (
	"errors"

	"gorm.io/gorm"
)

// ErrUserNotFound is returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

type UsersRepository struct {
	db *gorm.DB
}

func NewUsersRepository(db *gorm.DB) *UsersRepository {
	return &UsersRepository{
		db: db,
	}
}

func (r *UsersRepository) GetByEmail(email string) (*User, error) {
	var user User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UsersRepository) GetByID(id uint) (*User, error) {
	var user User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByRememberToken resolves the long-lived "remember me" cookie back
// to a user.
func (r *UsersRepository) GetByRememberToken(token string) (*User, error) {
	if token == "" {
		return nil, ErrUserNotFound
	}
	var user User
	if err := r.db.Where("remember_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UsersRepository) Create(user *User) error {
	return r.db.Create(user).Error
}

func (r *UsersRepository) UpdateRememberToken(user *User, token string) error {
	user.RememberToken = token
	return r.db.Model(user).Update("remember_token", token).Error
}
