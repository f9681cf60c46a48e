package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"driveshare/internal/config"
	"driveshare/internal/repository/postgres"
)

// Seeds demo accounts for local development. The service never creates users
// itself (accounts belong to the identity service), so a fresh database needs
// a few rows to exercise sharing flows against.

type seedUser struct {
	name     string
	lastName string
	email    string
	role     string
}

var seedUsers = []seedUser{
	{"Olivia", "Owner", "owner@example.com", "user"},
	{"Alice", "Reader", "alice@example.com", "user"},
	{"Bob", "Editor", "bob@example.com", "user"},
	{"Ada", "Admin", "admin@example.com", "admin"},
}

func main() {
	migrate := flag.Bool("migrate", true, "Apply schema migrations before seeding")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.Environment == "prod" {
		log.Fatalf("BLOCKED: refusing to seed demo users in production")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *migrate {
		if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
		logger.Info("migrations applied")
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	query := `
		INSERT INTO users (name, last_name, email, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING
		RETURNING id
	`

	for _, u := range seedUsers {
		var id string
		err := pool.QueryRow(ctx, query, u.name, u.lastName, u.email, u.role).Scan(&id)
		if err != nil {
			// No row returned means the account already existed.
			logger.Info("user already present", "email", u.email)
			continue
		}
		logger.Info("user seeded", "id", id, "email", u.email, "role", u.role)
	}

	logger.Info("seed complete", "users", len(seedUsers))
}
