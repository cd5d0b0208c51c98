package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/acme/catalog-admin/config"
	"github.com/acme/catalog-admin/database"
	"github.com/acme/catalog-admin/routes"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, relying on environment")
	}

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET is not set")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}

	if cfg.Seed {
		if err := database.SeedAdminUser(db); err != nil {
			log.Fatal("failed to seed admin user: ", err)
		}
		if err := database.SeedDemoCategories(db); err != nil {
			log.Fatal("failed to seed categories: ", err)
		}
	}

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Accept"},
		AllowCredentials: true,
	}))

	router.LoadHTMLGlob("templates/*.html")

	routes.SetupRoutes(router, db, cfg)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
