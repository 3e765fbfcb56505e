package main // Entry point package

import (
	"log" // Logging library
	"os"

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/sury19/ExamPaperPortal/internal/config"     // Internal config loader
	"github.com/sury19/ExamPaperPortal/internal/database"   // Database connection and migrations
	"github.com/sury19/ExamPaperPortal/internal/handler"    // HTTP handlers
	"github.com/sury19/ExamPaperPortal/internal/mailer"     // SMTP delivery
	"github.com/sury19/ExamPaperPortal/internal/middleware" // Rate limiting and response cache
	"github.com/sury19/ExamPaperPortal/internal/queue"      // Email consumer
	"github.com/sury19/ExamPaperPortal/internal/repository" // Data access layer
	"github.com/sury19/ExamPaperPortal/internal/router"     // Route registration
)

func main() {
	// A missing .env is fine in production where real env vars are set.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	migrationsDir := os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}
	if err := database.Migrate(db, migrationsDir, cfg.DBName); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Redis is optional: without it rate limiting, the response cache and
	// cache purging all degrade to no-ops.
	rdb := config.NewRedisClient()
	cacheCfg := config.LoadCacheConfig()

	users := repository.NewUserRepo(db)
	otps := repository.NewOtpRepo(db)
	courses := repository.NewCourseRepo(db)
	papers := repository.NewPaperRepo(db)

	auth := handler.NewAuthHandler(cfg, users, otps)
	admin := handler.NewAdminHandler(users, papers, courses, rdb, cacheCfg)
	student := handler.NewStudentHandler(cfg, papers)
	public := handler.NewPublicHandler(papers)

	otpLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	listCache := middleware.NewRedisCache(cacheCfg, rdb)

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, cfg.JWTSecret, otpLimit)
	router.RegisterPublic(e, public, admin, listCache)
	router.RegisterStudent(e, student, cfg.JWTSecret)
	router.RegisterAdmin(e, admin, cfg.JWTSecret)

	// The consumer owns its own reconnect loop; a missing broker only
	// degrades OTP mail to the delivery log.
	go func() {
		if err := queue.StartEmailConsumer(mailer.New()); err != nil {
			log.Printf("email consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
