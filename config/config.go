package config

import (
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Cache       CacheConfig
	Trending    TrendingConfig
	Places      PlacesConfig
	TripAdvisor TripAdvisorConfig
	CORS        CORSConfig
	S3          S3Config
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type CacheConfig struct {
	MemoryTTL    time.Duration // tier 1, process-local
	PersistedTTL time.Duration // tier 2, Redis
}

type TrendingConfig struct {
	// Fraction of restaurants flagged as trending per batch run.
	// 0.10 and 0.15 are both in use upstream; 0.15 is the default.
	TopPercent float64
	// Number of top-scored restaurants that get a trending dish synthesized.
	TopDishes int
	Schedule  string // cron expression
	Secret    string // shared secret for the manual recompute endpoint
}

type PlacesConfig struct {
	APIKey  string
	BaseURL string
}

type TripAdvisorConfig struct {
	BaseURL string
	Timeout time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "viraleats"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		Cache: CacheConfig{
			MemoryTTL:    parseDuration(getEnv("CACHE_MEMORY_TTL", "30m"), 30*time.Minute),
			PersistedTTL: parseDuration(getEnv("CACHE_PERSISTED_TTL", "168h"), 168*time.Hour),
		},
		Trending: TrendingConfig{
			TopPercent: parsePercent(getEnv("TRENDING_TOP_PERCENT", "0.15"), 0.15),
			TopDishes:  parseInt(getEnv("TRENDING_TOP_DISHES", "5"), 5),
			Schedule:   getEnv("TRENDING_CRON_SCHEDULE", "0 3 * * *"),
			Secret:     getEnv("TRENDING_CRON_SECRET", ""),
		},
		Places: PlacesConfig{
			APIKey:  getEnv("GOOGLE_PLACES_API_KEY", ""),
			BaseURL: getEnv("GOOGLE_PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		},
		TripAdvisor: TripAdvisorConfig{
			BaseURL: getEnv("TRIPADVISOR_BASE_URL", "https://www.tripadvisor.com.my"),
			Timeout: parseDuration(getEnv("TRIPADVISOR_TIMEOUT", "3s"), 3*time.Second),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "ap-southeast-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, defaultValue)
		return defaultValue
	}
	return duration
}

func parseInt(s string, defaultValue int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, defaultValue)
		return defaultValue
	}
	return n
}

func parsePercent(s string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f <= 0 || f > 1 {
		log.Printf("Invalid percentage %s, using default %.2f", s, defaultValue)
		return defaultValue
	}
	return f
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
