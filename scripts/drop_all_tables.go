package main

import (
	"database/sql"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Drops every table the service owns, migration bookkeeping included. Dev
// convenience only.
func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	if os.Getenv("ENVIRONMENT") == "prod" {
		log.Fatal("BLOCKED: refusing to drop tables in production")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }()

	dropSQL := `
		DROP TABLE IF EXISTS user_folders CASCADE;
		DROP TABLE IF EXISTS files CASCADE;
		DROP TABLE IF EXISTS folders CASCADE;
		DROP TABLE IF EXISTS users CASCADE;
		DROP TABLE IF EXISTS goose_db_version CASCADE;
	`

	if _, err := db.Exec(dropSQL); err != nil {
		log.Fatalf("Failed to drop tables: %v", err)
	}

	log.Println("All tables dropped")
}
