package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/005ishan/backend-jerseypasal/internal/handlers"
	"github.com/005ishan/backend-jerseypasal/internal/middleware"
	"github.com/005ishan/backend-jerseypasal/internal/models"
	"github.com/005ishan/backend-jerseypasal/internal/repositories"
	"github.com/005ishan/backend-jerseypasal/internal/services"
	"github.com/005ishan/backend-jerseypasal/pkg/mailer"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("RESET_LINK_BASE", "http://localhost:3000/reset-password")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	jwtSecret := viper.GetString("JWT_SECRET")
	databaseURL := viper.GetString("DATABASE_URL")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")
	resetLinkBase := viper.GetString("RESET_LINK_BASE")

	// --- Database ---
	var (
		db  *gorm.DB
		err error
	)
	if databaseURL != "" {
		db, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	} else {
		log.Println("DATABASE_URL not set, using in-memory SQLite")
		db, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.FavouriteItem{}, &models.CartItem{}, &models.Product{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Mailer ---
	// Password-reset emails go through RabbitMQ when a broker is
	// configured; otherwise they are logged.
	var appMailer mailer.Mailer
	if rabbitMQURL != "" {
		mqClient, err := mailer.NewClient(mailer.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		appMailer = mqClient

		// Delivery worker. A real deployment would hand jobs to an SMTP
		// relay here; transport selection is outside this service.
		if err := mqClient.ConsumeEmailJobs(func(job mailer.EmailJob) error {
			log.Printf("Delivering email %q to %s", job.Subject, job.To)
			return nil
		}); err != nil {
			log.Printf("Failed to start email consumer: %v", err)
		}
	} else {
		log.Println("RABBITMQ_URL not set, email dispatch will be logged only")
		appMailer = mailer.NewLogMailer()
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)

	// The in-memory dev database starts empty; give it a small catalog.
	if databaseURL == "" {
		seedProducts(productRepo)
	}

	// --- Services ---
	tokens, err := services.NewTokenService(jwtSecret)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	hasher := services.NewPasswordHasher()
	authService := services.NewAuthService(userRepo, hasher, tokens, appMailer, resetLinkBase)
	userService := services.NewUserService(userRepo)
	cartService := services.NewCartService(userRepo)
	productService := services.NewProductService(productRepo)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(authService, userService, cartService)
	productHandler := handlers.NewProductHandler(productService)

	// --- Fiber App ---
	app := fiber.New()
	app.Use(logger.New())

	auth := middleware.AuthRequired(tokens)
	admin := middleware.AdminRequired()

	api := app.Group("/api")
	authHandler.RegisterRoutes(api, auth)
	userHandler.RegisterRoutes(api, auth)
	userHandler.RegisterAdminRoutes(api, auth, admin)
	productHandler.RegisterRoutes(api, auth, admin)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// seedProducts populates the catalog with some initial jerseys.
func seedProducts(repo repositories.ProductRepository) {
	products := []models.Product{
		{Name: "Home Jersey 2026", Description: "Official home kit", Price: 89.99, Stock: 40},
		{Name: "Away Jersey 2026", Description: "Official away kit", Price: 79.99, Stock: 25},
		{Name: "Goalkeeper Jersey 2026", Description: "Keeper kit, long sleeve", Price: 74.99, Stock: 15},
	}

	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
		} else {
			log.Printf("Seeded product: %s (ID: %s)", products[i].Name, products[i].ID)
		}
	}
}
