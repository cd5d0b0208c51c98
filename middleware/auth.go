package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/acme/catalog-admin/models"
)

const (
	// SessionUserKey is the session key holding the authenticated
	// user id.
	SessionUserKey = "user_id"
	// RememberCookie is the long-lived login cookie name.
	RememberCookie = "remember_token"

	ctxUserKey  = "auth_user"
	ctxTokenKey = "auth_token_id"
)

// TokenClaims is what a validated bearer token resolves to.
type TokenClaims struct {
	UserID  uint
	TokenID string
}

// TokenValidator checks a signed bearer token and extracts its claims.
type TokenValidator interface {
	ValidateToken(signed string) (TokenClaims, error)
}

// TokenStore resolves a token id to its server-side record. A missing
// record means the token was revoked.
type TokenStore interface {
	GetByID(id string) (*models.AccessToken, error)
	TouchLastUsed(token *models.AccessToken) error
}

// UserStore resolves session and remember-cookie principals.
type UserStore interface {
	GetByID(id uint) (*models.User, error)
	GetByRememberToken(token string) (*models.User, error)
}

// CurrentUser returns the authenticated principal set by one of the
// auth middlewares.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// CurrentTokenID returns the access token id used to authenticate this
// request, if bearer auth was used.
func CurrentTokenID(c *gin.Context) string {
	return c.GetString(ctxTokenKey)
}

// TokenAuth authenticates API requests from an Authorization bearer
// token. The token must verify and its server-side record must still
// exist.
func TokenAuth(validator TokenValidator, tokens TokenStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
			return
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
			return
		}

		record, err := tokens.GetByID(claims.TokenID)
		if err != nil {
			if errors.Is(err, models.ErrTokenNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to check token"})
			return
		}

		_ = tokens.TouchLastUsed(record)

		user := record.User
		c.Set(ctxUserKey, &user)
		c.Set(ctxTokenKey, record.ID)
		c.Next()
	}
}

// SessionAuth authenticates web requests from the session, falling
// back to the remember cookie. Browsers are redirected to the login
// page; JSON clients get a bare 401.
func SessionAuth(users UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		if id, ok := session.Get(SessionUserKey).(uint); ok {
			if user, err := users.GetByID(id); err == nil {
				c.Set(ctxUserKey, user)
				c.Next()
				return
			}
		}

		if cookie, err := c.Cookie(RememberCookie); err == nil && cookie != "" {
			if user, err := users.GetByRememberToken(cookie); err == nil {
				session.Set(SessionUserKey, user.ID)
				_ = session.Save()
				c.Set(ctxUserKey, user)
				c.Next()
				return
			}
		}

		if wantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
			return
		}
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

// AdminOnly gates admin-area routes: the authenticated principal must
// carry the admin flag. Missing principal means 401, a non-admin
// principal 403.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
			return
		}
		if !user.IsAdmin {
			if wantsJSON(c) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
				return
			}
			c.String(http.StatusForbidden, "Forbidden")
			c.Abort()
			return
		}
		c.Next()
	}
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
