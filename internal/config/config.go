package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string

	// OTP tuning
	OTPLength      int
	OTPTTL         time.Duration
	OTPMaxAttempts int

	// External collaborators (object storage, payment gateway).
	// Only credentials are carried; the clients live outside this process.
	StorageBucket string
	StorageKey    string
	StorageSecret string
	GatewayKey    string
	GatewaySecret string
}

// ErrMissingMongoURI aborts startup: the process must not run without a datastore.
var ErrMissingMongoURI = errors.New("MONGO_URI is not set")

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		return nil, ErrMissingMongoURI
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		MongoURI:    mongoURI,
		DBName:      getEnv("DB_NAME", "theater-pos"),
		SkipAuth:    getEnv("SKIP_AUTH", "false") == "true",
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "theater-pos"),

		OTPLength:      getEnvInt("OTP_LENGTH", 6),
		OTPTTL:         time.Duration(getEnvInt("OTP_TTL_MINUTES", 10)) * time.Minute,
		OTPMaxAttempts: getEnvInt("OTP_MAX_ATTEMPTS", 5),

		StorageBucket: getEnv("STORAGE_BUCKET", ""),
		StorageKey:    getEnv("STORAGE_KEY", ""),
		StorageSecret: getEnv("STORAGE_SECRET", ""),
		GatewayKey:    getEnv("GATEWAY_KEY", ""),
		GatewaySecret: getEnv("GATEWAY_SECRET", ""),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
