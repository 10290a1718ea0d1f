package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort         string
	AppMode         string
	CORSOrigin      string
	MongoURI        string
	MongoDatabase   string
	JWTSecret       string
	JWTExpiryMin    int
	SecretRegion    string
	SecretName      string
	SecretAccessKey string
	SecretSecretKey string
	SecretEndpoint  string
	SecretCacheTTL  int
	RedisHost       string
	RedisPort       string
	RedisPassword   string
	StoreTimeoutSec int
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppPort:         getEnv("APP_PORT", "3001"),
		AppMode:         getEnv("APP_MODE", "debug"),
		CORSOrigin:      getEnv("CORS_ORIGIN", "https://chat.onrender.com"),
		MongoURI:        getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGODB_DATABASE", "pairchat"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTExpiryMin:    getEnvAsInt("JWT_EXPIRY_MIN", 60),
		SecretRegion:    getEnv("SECRETS_REGION", "us-east-1"),
		SecretName:      getEnv("SECRETS_NAME", ""),
		SecretAccessKey: getEnv("SECRETS_ACCESS_KEY", ""),
		SecretSecretKey: getEnv("SECRETS_SECRET_KEY", ""),
		SecretEndpoint:  getEnv("SECRETS_ENDPOINT", ""),
		SecretCacheTTL:  getEnvAsInt("SECRETS_CACHE_TTL_SEC", 300),
		RedisHost:       getEnv("REDIS_HOST", "localhost"),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		StoreTimeoutSec: getEnvAsInt("STORE_TIMEOUT_SEC", 5),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
