package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"exelix/internal/config"
	"exelix/internal/handler"
	"exelix/internal/middleware"
	"exelix/internal/repository"
	"exelix/internal/service"
	"exelix/internal/service/auth"
)

// 5MB photo plus multipart overhead.
const bodyLimit = 6 * 1024 * 1024

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := config.RunMigrations(cfg); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	var redisClient *redis.Client
	if client, err := config.NewRedisClient(cfg); err != nil {
		if cfg.ThrottleBackend == "redis" {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Printf("Warning: Failed to connect to Redis: %v (stats cache disabled)", err)
	} else {
		redisClient = client
		defer redisClient.Close()
	}

	var minioClient *minio.Client
	if cfg.MinIOEnabled {
		minioClient, err = config.NewMinIOClient(cfg)
		if err != nil {
			log.Printf("Warning: Failed to connect to MinIO: %v (photo upload will not work)", err)
			minioClient = nil
		}
	}

	repos := repository.NewRepositories(db)
	if cfg.ThrottleBackend == "redis" && redisClient != nil {
		repos.Throttle = repository.NewRedisThrottleRepository(redisClient)
	}

	services := service.NewServices(repos, redisClient, minioClient, cfg)
	if err := services.Auth.EnsureAdmin(context.Background()); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}
	handlers := handler.NewHandlers(services, cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    bodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, OPTIONS",
		AllowCredentials: cfg.CORSOrigins != "*",
	}))
	app.Use(middleware.RequestInfo(cfg.ProxyHeader))

	limiter := middleware.NewIPRateLimiter(cfg.APIRateLimitRPS, cfg.APIRateLimitBurst)
	setupRoutes(app, handlers, services.Auth, limiter)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	services.Dispatch.Wait()
	log.Println("Server stopped")
}

func setupRoutes(app *fiber.App, h *handler.Handlers, authService auth.Service, limiter *middleware.IPRateLimiter) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	limited := middleware.RateLimit(limiter, nil)
	api := app.Group("/api")

	api.Get("/qr/q/:code", limited, middleware.OptionalOwner(authService), h.QR.Gate)
	api.Post("/register", limited, h.Register.Register)

	// Limited sends count as failed attempts in the admin stats.
	notify := api.Group("/notify")
	notify.Get("/types", limited, h.Notify.Types)
	notify.Post("/send", middleware.RateLimit(limiter, h.Notify.RecordLimited), h.Notify.Send)

	owner := api.Group("/owner", limited, middleware.OwnerRequired(authService))
	owner.Get("/me", h.Owner.Me)
	owner.Put("/me", h.Owner.UpdateMe)
	owner.Post("/telegram", h.Owner.SetTelegram)
	owner.Post("/at-car", h.Owner.AtCar)
	owner.Post("/at-car-off", h.Owner.AtCarOff)
	owner.Post("/push-subscription", h.Owner.PushSubscription)

	admin := api.Group("/admin", limited)
	admin.Post("/login", h.Admin.Login)

	protected := admin.Group("", middleware.AdminRequired(authService))
	protected.Get("/stats", h.Admin.Stats)
	protected.Get("/users", h.Admin.Users)
	protected.Post("/qr-codes", h.Admin.GenerateCodes)
}
