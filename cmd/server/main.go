package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"portal-service/internal/api"
	"portal-service/internal/clock"
	"portal-service/internal/events"
	"portal-service/internal/repository"
	"portal-service/internal/s3"
	"portal-service/internal/service"
	"portal-service/internal/tracing"
	_ "portal-service/migrations"
)

func main() {
	if err := godotenv.Load(".env.dev"); err != nil {
		fmt.Println("No .env.dev file found, reading from environment variables provided by Docker")
	}

	api.SetupGlobalHandler("portal-service")

	shutdownTracer, err := tracing.InitTracerProvider("portal-service")
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}
	}()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		handleMigrations()
		return
	}

	db := connectDB()
	defer db.Close()

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}
	eventPublisher, err := events.NewNatsPublisher(natsURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	log.Println("Successfully connected to NATS.")

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	leaderboardRepo, err := repository.NewRedisLeaderboard(&repository.LeaderboardConfig{
		RedisClient: redisClient,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("Successfully connected to Redis.")

	presigner, err := s3.NewFilePresigner()
	if err != nil {
		log.Fatalf("Failed to initialize S3 presigner: %v", err)
	}

	userRepo := repository.NewPostgresUserRepository(db)
	sessionRepo := repository.NewPostgresSessionRepository(db)
	bookingRepo := repository.NewPostgresBookingRepository(db)
	tokenRepo := repository.NewPostgresTokenRepository(db)
	deviceTokenRepo := repository.NewPostgresDeviceTokenRepository(db)

	clk := &clock.DefaultClock{}

	authService := service.NewAuthService(userRepo, tokenRepo)
	sessionService := service.NewSessionService(sessionRepo, eventPublisher, clk)
	pointsService := service.NewPointsService(userRepo, leaderboardRepo)
	bookingService := service.NewBookingService(sessionRepo, bookingRepo, pointsService, eventPublisher, clk)

	authHandler := api.NewAuthHandler(authService)
	sessionHandler := api.NewSessionHandler(sessionService)
	bookingHandler := api.NewBookingHandler(bookingService)
	pointsHandler := api.NewPointsHandler(pointsService)
	userHandler := api.NewUserHandler(deviceTokenRepo, presigner)

	app := fiber.New()
	app.Use(otelfiber.Middleware())
	app.Use(api.PrometheusMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "portal-service"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/v1")

	authRoutes := v1.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/verify-email", authHandler.VerifyEmail)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/refresh", authHandler.Refresh)
	authRoutes.Post("/logout", authHandler.Logout)

	userRoutes := v1.Group("/users")
	userRoutes.Use(api.AuthMiddleware())
	userRoutes.Get("/me", authHandler.GetUserProfile)
	userRoutes.Post("/device-tokens", userHandler.RegisterDeviceToken)
	userRoutes.Post("/avatar-upload-url", userHandler.GetAvatarUploadURL)

	sessionsRoutes := v1.Group("/sessions")
	sessionsRoutes.Use(api.AuthMiddleware())
	sessionsRoutes.Get("/", sessionHandler.ListSessions)
	sessionsRoutes.Post("/", api.AdminOnly(), sessionHandler.CreateSession)
	sessionsRoutes.Get("/:id", sessionHandler.GetSessionDetails)
	sessionsRoutes.Delete("/:id", api.AdminOnly(), sessionHandler.CancelSession)
	sessionsRoutes.Get("/:id/participants", api.AdminOnly(), sessionHandler.ListParticipants)
	sessionsRoutes.Post("/:id/book", bookingHandler.BookSlot)
	sessionsRoutes.Post("/:id/join", bookingHandler.JoinGroup)

	bookingRoutes := v1.Group("/bookings")
	bookingRoutes.Use(api.AuthMiddleware())
	bookingRoutes.Get("/", bookingHandler.ListMyBookings)

	pointsRoutes := v1.Group("/points")
	pointsRoutes.Use(api.AuthMiddleware())
	pointsRoutes.Post("/claim", pointsHandler.ClaimDaily)

	v1.Get("/leaderboard", api.AuthMiddleware(), pointsHandler.Leaderboard)

	uploadsRoutes := v1.Group("/uploads")
	uploadsRoutes.Use(api.AuthMiddleware())
	uploadsRoutes.Post("/proof", userHandler.GetProofUploadURL)

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8001"
	}

	log.Printf("Listening portal-service on port %s", port)
	log.Fatal(app.Listen(":" + port))
}

func connectDB() *sqlx.DB {
	db, err := sqlx.Connect("pgx", databaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Successfully connected to the database.")
	return db
}

func databaseURL() string {
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbName := os.Getenv("DB_NAME")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPassword, dbHost, dbPort, dbName,
	)
}

func handleMigrations() {
	fmt.Println("Running database migrations...")

	db, err := sql.Open("pgx", databaseURL())
	if err != nil {
		log.Fatalf("failed to connect to database for migration: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatalf("goose: failed to run migrations: %v", err)
	}

	fmt.Println("Migrations applied successfully!")
}
