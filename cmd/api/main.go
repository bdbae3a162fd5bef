package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"jobportal/internal/auth"
	"jobportal/internal/cache"
	"jobportal/internal/config"
	"jobportal/internal/handlers"
	"jobportal/internal/mailer"
	"jobportal/internal/middleware"
	"jobportal/internal/models"
	"jobportal/internal/otp"
	"jobportal/internal/repositories"
	"jobportal/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize cache
	store, err := cache.NewRedisStore(cfg.Redis)
	if err != nil {
		log.Fatalf("❌ Failed to initialize redis: %v", err)
	}
	defer store.Close()
	log.Println("✅ Redis connected successfully")

	// Initialize repositories
	appRepo := repositories.NewApplicationRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	eduRepo := repositories.NewEducationRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	userRepo := repositories.NewUserRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	matcher := services.NewQualificationMatcher(nil)
	extractor := services.NewTextExtractor()
	atsService := services.NewATSService(cfg.OpenRouter)
	storageGateway := services.NewStorageGateway(cfg.Storage)
	notificationService := services.NewNotificationService(notificationRepo)

	applicationService := services.NewApplicationService(
		appRepo,
		jobRepo,
		eduRepo,
		matcher,
		extractor,
		atsService,
		storageGateway,
		notificationService,
		cfg.Storage,
		cfg.Upload.MaxFileSize,
	)
	log.Println("✅ Services initialized successfully")

	// Initialize auth
	tokenService := auth.NewTokenService(cfg.JWT)
	otpService := otp.NewService(store, cfg.OTP)
	mailService := mailer.NewSMTPMailer(cfg.SMTP)

	// Initialize handlers
	applicationHandler := handlers.NewApplicationHandler(applicationService, cfg.Server.IsDevelopment())
	authHandler := handlers.NewAuthHandler(otpService, mailService, userRepo, tokenService)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Job Portal API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Upload.MaxFileSize) * 2,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Auth endpoints
	authGroup := api.Group("/auth")
	authGroup.Post("/otp/request",
		middleware.RateLimit(store, "ratelimit:otp", 10, time.Minute),
		authHandler.HandleRequestOTP,
	)
	authGroup.Post("/otp/verify", authHandler.HandleVerifyOTP)

	// Applicant endpoints
	requireAuth := middleware.RequireAuth(tokenService)
	applications := api.Group("/applications", requireAuth)
	applications.Post("/",
		middleware.RequireRole(models.RoleJobSeeker),
		applicationHandler.HandleApply,
	)
	applications.Get("/", middleware.RequireRole(models.RoleJobSeeker), applicationHandler.HandleListMine)
	applications.Get("/stats", middleware.RequireRole(models.RoleJobSeeker), applicationHandler.HandleStats)
	applications.Get("/:id", middleware.RequireRole(models.RoleJobSeeker), applicationHandler.HandleGet)
	applications.Patch("/:id/withdraw", middleware.RequireRole(models.RoleJobSeeker), applicationHandler.HandleWithdraw)

	// Company endpoints
	applications.Put("/:id/status",
		middleware.RequireRole(models.RoleCompany, models.RoleAdmin),
		applicationHandler.HandleUpdateStatus,
	)
	api.Get("/companies/:companyId/candidates",
		requireAuth,
		middleware.RequireRole(models.RoleCompany, models.RoleAdmin),
		applicationHandler.HandleCompanyCandidates,
	)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
		"code":    code,
	})
}
