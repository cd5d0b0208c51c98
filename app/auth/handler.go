package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/acme/catalog-admin/app/requests"
	"github.com/acme/catalog-admin/middleware"
	"github.com/acme/catalog-admin/models"
)

// UserProvider is the user lookup surface login needs.
type UserProvider interface {
	GetByEmail(email string) (*models.User, error)
	UpdateRememberToken(user *models.User, token string) error
}

// TokenStore issues and revokes API access token records.
type TokenStore interface {
	Create(userID uint) (*models.AccessToken, error)
	Delete(id string) error
}

type AuthHandler struct {
	users  UserProvider
	tokens TokenStore
	tm     *TokenManager
}

func NewAuthHandler(users UserProvider, tokens TokenStore, tm *TokenManager) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		tm:     tm,
	}
}

type LoginInput struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
	Remember bool   `json:"remember" form:"remember"`
}

// HandleAPILogin verifies credentials and issues a revocable bearer
// token.
func (h *AuthHandler) HandleAPILogin(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": requests.ValidationMessage,
			"errors":  requests.FieldMessages(err),
		})
		return
	}

	user, ok := h.attempt(input.Email, input.Password)
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid credentials"})
		return
	}

	record, err := h.tokens.Create(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	signed, err := h.tm.Generate(user.ID, record.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": signed})
}

// HandleAPILogout revokes the bearer token used on this request.
func (h *AuthHandler) HandleAPILogout(c *gin.Context) {
	tokenID := middleware.CurrentTokenID(c)
	if tokenID != "" {
		if err := h.tokens.Delete(tokenID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
			return
		}
	}
	c.Status(http.StatusNoContent)
}

// HandleShowLogin renders the login form.
func (h *AuthHandler) HandleShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

// HandleWebLogin authenticates the session. The session is rebuilt
// from scratch on success to defend against fixation, and a long-lived
// remember token is set when requested.
func (h *AuthHandler) HandleWebLogin(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBind(&input); err != nil {
		h.loginFailed(c, input.Email, requests.ValidationMessage, requests.FieldMessages(err))
		return
	}

	user, ok := h.attempt(input.Email, input.Password)
	if !ok {
		h.loginFailed(c, input.Email, "Invalid credentials", map[string][]string{"email": {"Invalid credentials"}})
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		c.String(http.StatusInternalServerError, "failed to start session")
		return
	}

	if input.Remember {
		token, err := randomToken()
		if err == nil {
			err = h.users.UpdateRememberToken(user, token)
		}
		if err == nil {
			c.SetCookie(middleware.RememberCookie, token, 30*24*3600, "/", "", false, true)
		}
	}

	if requests.WantsJSON(c) {
		c.Status(http.StatusNoContent)
		return
	}
	c.Redirect(http.StatusFound, "/admin/products")
}

// HandleWebLogout invalidates the session and rotates the remember
// token so outstanding remember cookies die with it.
func (h *AuthHandler) HandleWebLogout(c *gin.Context) {
	if user, ok := middleware.CurrentUser(c); ok && user.RememberToken != "" {
		if token, err := randomToken(); err == nil {
			_ = h.users.UpdateRememberToken(user, token)
		}
	}

	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{MaxAge: -1, Path: "/"})
	_ = session.Save()
	c.SetCookie(middleware.RememberCookie, "", -1, "/", "", false, true)

	if requests.WantsJSON(c) {
		c.Status(http.StatusNoContent)
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) attempt(email, password string) (*models.User, bool) {
	user, err := h.users.GetByEmail(email)
	if err != nil || !user.CheckPassword(password) {
		return nil, false
	}
	return user, true
}

func (h *AuthHandler) loginFailed(c *gin.Context, oldEmail, message string, errs map[string][]string) {
	if requests.WantsJSON(c) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": message,
			"errors":  errs,
		})
		return
	}
	c.HTML(http.StatusUnprocessableEntity, "login.html", gin.H{
		"Errors": errs,
		"Old":    gin.H{"email": oldEmail},
	})
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
