package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreDriverMemory = "memory"
	StoreDriverMongo  = "mongo"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	StoreDriver string // "memory" or "mongo"
	SkipAuth    bool
	DevRole     string // Role injected for every request when SkipAuth is set
	Environment string
	AppId       string

	StagesFile       string // Optional YAML stage table replacing the built-in one
	VisibilityFile   string // Optional YAML capability matrix replacing the built-in one
	SLASweepSchedule string // Cron spec for the overdue ticket sweep; empty disables it
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		JWTSecret:        getEnv("JWT_SECRET", "secret"),
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:           getEnv("DB_NAME", "go-crm-funnel"),
		StoreDriver:      strings.ToLower(getEnv("STORE_DRIVER", StoreDriverMemory)),
		SkipAuth:         getEnv("SKIP_AUTH", "false") == "true",
		DevRole:          getEnv("DEV_ROLE", "ADMIN"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		AppId:            getEnv("APP_ID", "go-crm-funnel"),
		StagesFile:       getEnv("STAGES_FILE", ""),
		VisibilityFile:   getEnv("VISIBILITY_FILE", ""),
		SLASweepSchedule: getEnv("SLA_SWEEP_SCHEDULE", "*/5 * * * *"),
	}, nil
}

// UsesMongo reports whether repositories should be backed by MongoDB.
func (c *Config) UsesMongo() bool {
	return c.StoreDriver == StoreDriverMongo
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
