// Package app assembles the HTTP server from its stores and services.
package app

import (
	"fmt"
	"log"
	"time"

	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// UploadsPrefix is the URL path product images are served under.
const UploadsPrefix = "/uploads"

// Dependencies are the collaborators New wires together. Publisher may be nil.
type Dependencies struct {
	Config    *config.Config
	Store     *repositories.Store
	Images    services.ImageStore
	Publisher services.EventPublisher
}

// New builds the Fiber app with every route registered under /api.
func New(deps Dependencies) (*fiber.App, error) {
	cfg := deps.Config

	policy, err := services.ParseCartPolicy(cfg.CartPolicy)
	if err != nil {
		return nil, err
	}

	authService, err := services.NewAuthService(deps.Store.Users(), services.AuthConfig{
		JWTSecret:     cfg.JWTSecret,
		TokenTTL:      cfg.TokenTTL,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	}, deps.Publisher)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}
	productService := services.NewProductService(deps.Store.Products(), deps.Images, deps.Publisher)
	userService := services.NewUserService(deps.Store.Users(), deps.Publisher)
	cartService := services.NewCartService(deps.Store.Carts(), deps.Store.Products(), deps.Publisher)

	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	userHandler := handlers.NewUserHandler(userService)
	cartHandler := handlers.NewCartHandler(cartService, policy)

	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{Output: log.Writer()}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Static(UploadsPrefix, cfg.UploadDir)

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := deps.Store.Ping(c.UserContext()); err != nil {
			log.Printf("Health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
		}
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := app.Group("/api")
	admin := middleware.Require(authService, services.RoleAdmin)
	user := middleware.Require(authService, services.RoleUser)

	authHandler.RegisterRoutes(api)
	productHandler.RegisterRoutes(api, admin)
	userHandler.RegisterRoutes(api, admin)
	cartHandler.RegisterRoutes(api, user)

	return app, nil
}
