package config

import (
	"os"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	JWKSURL     string
	CORSOrigins string
	// Storage configuration
	StorageBackend string // "disk" or "s3"
	StorageRoot    string // root directory for the disk backend
	S3Bucket       string
	S3Region       string
	S3Endpoint     string // optional, for S3-compatible stores (MinIO)
	// Migrate applies pending schema migrations on startup.
	Migrate bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    env,
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		JWKSURL:        getEnv("JWKS_URL", ""),
		CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:3000"),
		StorageBackend: getEnv("STORAGE_BACKEND", "disk"),
		StorageRoot:    getEnv("STORAGE_ROOT", "./uploads"),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3Region:       getEnv("S3_REGION", ""),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		// Default on outside prod; prod schemas are managed by the deploy.
		Migrate: getEnv("MIGRATE", getDefaultMigrate(env)) == "true",
	}
}

func getDefaultMigrate(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
