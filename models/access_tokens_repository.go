package models

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrTokenNotFound is returned when an access token record does not
// exist, either because it was never issued or has been revoked.
var ErrTokenNotFound = errors.New("access token not found")

type AccessTokensRepository struct {
	db *gorm.DB
}

func NewAccessTokensRepository(db *gorm.DB) *AccessTokensRepository {
	return &AccessTokensRepository{
		db: db,
	}
}

// Create issues a new token record for the user with a random id.
func (r *AccessTokensRepository) Create(userID uint) (*AccessToken, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	token := &AccessToken{
		ID:     hex.EncodeToString(buf),
		UserID: userID,
	}
	if err := r.db.Create(token).Error; err != nil {
		return nil, err
	}
	return token, nil
}

// GetByID loads a token record with its user. Revoked tokens are gone
// from storage, so a miss means the bearer token is no longer valid.
func (r *AccessTokensRepository) GetByID(id string) (*AccessToken, error) {
	var token AccessToken
	if err := r.db.Preload("User").Where("id = ?", id).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

// Delete revokes the token.
func (r *AccessTokensRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&AccessToken{}).Error
}

func (r *AccessTokensRepository) TouchLastUsed(token *AccessToken) error {
	now := time.Now()
	return r.db.Model(token).Update("last_used_at", &now).Error
}
