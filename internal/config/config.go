package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	JWTSecret     string
	MongoURI      string
	DBName        string
	SkipAuth      bool
	Environment   string
	AppId         string
	AuditSchedule string        // cron spec for scheduled consistency audits, empty disables
	AuditTimeout  time.Duration // upper bound for one full-scan audit
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:        getEnv("DB_NAME", "go-opsdesk"),
		SkipAuth:      getEnv("SKIP_AUTH", "false") == "true",
		Environment:   getEnv("ENVIRONMENT", "development"),
		AppId:         getEnv("APP_ID", "go-opsdesk"),
		AuditSchedule: getEnv("AUDIT_SCHEDULE", ""),
		AuditTimeout:  getDurationEnv("AUDIT_TIMEOUT_SECONDS", 60),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallbackSeconds int) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(fallbackSeconds) * time.Second
}
