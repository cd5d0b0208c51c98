package routes

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/acme/catalog-admin/app/admin"
	"github.com/acme/catalog-admin/app/auth"
	"github.com/acme/catalog-admin/app/export"
	"github.com/acme/catalog-admin/app/products"
	"github.com/acme/catalog-admin/config"
	"github.com/acme/catalog-admin/middleware"
	"github.com/acme/catalog-admin/models"
)

// SetupRoutes wires repositories, handlers and middleware into the web
// and API surfaces.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg config.Config) {
	productsRepo := models.NewProductsRepository(db)
	categoriesRepo := models.NewCategoriesRepository(db)
	usersRepo := models.NewUsersRepository(db)
	tokensRepo := models.NewAccessTokensRepository(db)

	tm := auth.NewTokenManager(cfg.JWTSecret)
	authHandler := auth.NewAuthHandler(usersRepo, tokensRepo, tm)
	apiHandler := products.NewProductsHandler(productsRepo, categoriesRepo)
	adminHandler := admin.NewAdminHandler(productsRepo, categoriesRepo)
	exporter := export.NewExporter(productsRepo)

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	router.Use(sessions.Sessions("catalog_session", store))

	// Web surface
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/login")
	})
	router.GET("/login", authHandler.HandleShowLogin)
	router.POST("/login", authHandler.HandleWebLogin)
	router.POST("/logout", middleware.SessionAuth(usersRepo), authHandler.HandleWebLogout)

	adminGroup := router.Group("/admin")
	adminGroup.Use(middleware.SessionAuth(usersRepo), middleware.AdminOnly())
	{
		adminGroup.GET("", func(c *gin.Context) {
			c.Redirect(http.StatusFound, "/admin/products")
		})
		adminGroup.GET("/products", adminHandler.HandleIndex)
		adminGroup.GET("/products/create", adminHandler.HandleCreateForm)
		adminGroup.POST("/products", adminHandler.HandleStore)
		adminGroup.GET("/products/export", exporter.HandleDownload)
		adminGroup.POST("/products/bulk-delete", adminHandler.HandleBulkDelete)
		adminGroup.GET("/products/:id/edit", adminHandler.HandleEditForm)
		adminGroup.POST("/products/:id", adminHandler.HandleUpdate)
		adminGroup.POST("/products/:id/delete", adminHandler.HandleDestroy)
	}

	// API surface
	api := router.Group("/api")
	api.POST("/login", authHandler.HandleAPILogin)

	authenticated := api.Group("")
	authenticated.Use(middleware.TokenAuth(tm, tokensRepo))
	authenticated.POST("/logout", authHandler.HandleAPILogout)

	productsAPI := authenticated.Group("/products")
	productsAPI.Use(middleware.AdminOnly())
	{
		productsAPI.GET("", apiHandler.HandleList)
		productsAPI.POST("", apiHandler.HandleCreate)
		productsAPI.GET("/export", exporter.HandleDownload)
		productsAPI.POST("/bulk-delete", apiHandler.HandleBulkDelete)
		productsAPI.GET("/:id", apiHandler.HandleShow)
		productsAPI.PUT("/:id", apiHandler.HandleUpdate)
		productsAPI.PATCH("/:id", apiHandler.HandleUpdate)
		productsAPI.DELETE("/:id", apiHandler.HandleDelete)
	}
}
