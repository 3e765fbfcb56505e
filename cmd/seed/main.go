// Command seed provisions a fresh installation: it runs migrations,
// creates the initial admin account and inserts a handful of starter
// courses. Safe to re-run; existing rows are left alone.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/sury19/ExamPaperPortal/internal/config"
	"github.com/sury19/ExamPaperPortal/internal/database"
	"github.com/sury19/ExamPaperPortal/internal/model"
	"github.com/sury19/ExamPaperPortal/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPass := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPass == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	users := repository.NewUserRepo(db)
	id, err := users.CreateAdmin(ctx, adminEmail, "Administrator", adminPass, cfg.BcryptCost)
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		log.Printf("admin %s already exists, skipping", adminEmail)
	case err != nil:
		log.Fatalf("create admin: %v", err)
	default:
		log.Printf("created admin %s (id=%d)", adminEmail, id)
	}

	courses := repository.NewCourseRepo(db)
	for _, c := range starterCourses() {
		c := c
		if err := courses.Create(ctx, &c); err != nil {
			if errors.Is(err, repository.ErrCourseCodeExists) {
				continue
			}
			log.Fatalf("create course %s: %v", c.Code, err)
		}
		log.Printf("created course %s (%s)", c.Code, c.Name)
	}

	log.Println("seed complete")
}

func starterCourses() []model.Course {
	desc := func(s string) *string { return &s }
	return []model.Course{
		{Code: "CS101", Name: "Introduction to Programming", Description: desc("Fundamentals of programming and problem solving")},
		{Code: "CS201", Name: "Data Structures", Description: desc("Lists, trees, graphs and their algorithms")},
		{Code: "CS301", Name: "Database Systems", Description: desc("Relational modelling, SQL and transactions")},
		{Code: "MA101", Name: "Calculus I", Description: desc("Limits, derivatives and integrals")},
		{Code: "PH101", Name: "Physics I", Description: desc("Mechanics, waves and thermodynamics")},
	}
}
