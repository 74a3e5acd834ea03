package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DatabaseURL     string
	JWTSecret       string
	GoogleAudience  string
	AdminEmail      string
	AllowOrigins    []string
	LogstashTCPAddr string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MinIOEndpoint     string
	MinIOAccessKey    string
	MinIOSecretKey    string
	MinIOUseSSL       bool
	MinIOBucketReview string
	MinIOPublicURL    string

	SessionTTL time.Duration

	MapMarkerLimit    int
	MapCacheTTL       time.Duration
	SearchCacheTTL    time.Duration
	PopularCacheTTL   time.Duration
	PopularLimit      int
	PopularityCron    string
	ReviewPhotoMax    int
	ReviewPhotoBytes  int64
	ReviewMaxDim      int
	RateLimitGeneral  int
	RateLimitReviews  int
	RateLimitWishlist int
	RateLimitWindow   time.Duration
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	return Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     must("DATABASE_URL"),
		JWTSecret:       must("JWT_SECRET"),
		GoogleAudience:  getenv("GOOGLE_AUDIENCE", ""),
		AdminEmail:      getenv("ADMIN_EMAIL", ""),
		AllowOrigins:    splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       intenv("REDIS_DB", 0),

		MinIOEndpoint:     must("MINIO_ENDPOINT"),
		MinIOAccessKey:    must("MINIO_ACCESS_KEY"),
		MinIOSecretKey:    must("MINIO_SECRET_KEY"),
		MinIOUseSSL:       getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketReview: getenv("MINIO_BUCKET_REVIEWS", "campthai-reviews"),
		MinIOPublicURL:    getenv("MINIO_PUBLIC_URL", ""),

		SessionTTL: durenv("SESSION_TTL", 24*time.Hour),

		MapMarkerLimit:    intenv("MAP_MARKER_LIMIT", 500),
		MapCacheTTL:       durenv("MAP_CACHE_TTL", 30*time.Second),
		SearchCacheTTL:    durenv("SEARCH_CACHE_TTL", time.Minute),
		PopularCacheTTL:   durenv("POPULAR_CACHE_TTL", 10*time.Minute),
		PopularLimit:      intenv("POPULAR_LIMIT", 12),
		PopularityCron:    getenv("POPULARITY_CRON", "30 2 * * *"),
		ReviewPhotoMax:    intenv("REVIEW_PHOTO_MAX", 5),
		ReviewPhotoBytes:  int64env("REVIEW_PHOTO_MAX_BYTES", 5*1024*1024),
		ReviewMaxDim:      intenv("REVIEW_PHOTO_MAX_DIMENSION", 2560),
		RateLimitGeneral:  intenv("RATE_LIMIT_GENERAL", 100),
		RateLimitReviews:  intenv("RATE_LIMIT_REVIEWS", 10),
		RateLimitWishlist: intenv("RATE_LIMIT_WISHLIST", 30),
		RateLimitWindow:   durenv("RATE_LIMIT_WINDOW", time.Minute),
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func intenv(k string, d int) int {
	if v, err := strconv.Atoi(getenv(k, "")); err == nil {
		return v
	}
	return d
}

func int64env(k string, d int64) int64 {
	if v, err := strconv.ParseInt(getenv(k, ""), 10, 64); err == nil && v > 0 {
		return v
	}
	return d
}

func durenv(k string, d time.Duration) time.Duration {
	if v, err := time.ParseDuration(getenv(k, "")); err == nil && v > 0 {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
