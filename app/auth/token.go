package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/acme/catalog-admin/middleware"
)

// Claims are the bearer-token claims. The jti (RegisteredClaims.ID)
// references the access_tokens row; the token is only accepted while
// that row exists, which makes issued tokens revocable.
type Claims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    24 * time.Hour,
	}
}

func (m *TokenManager) Generate(userID uint, tokenID string) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *TokenManager) Validate(signed string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(signed, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// ValidateToken adapts Validate to the middleware's interface.
func (m *TokenManager) ValidateToken(signed string) (middleware.TokenClaims, error) {
	claims, err := m.Validate(signed)
	if err != nil {
		return middleware.TokenClaims{}, err
	}
	return middleware.TokenClaims{UserID: claims.UserID, TokenID: claims.ID}, nil
}
