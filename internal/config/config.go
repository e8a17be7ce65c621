package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env              string
	HTTPPort         string
	JWTIssuer        string
	JWTSigningKey    string
	AccessTTL        time.Duration
	AuthDelay        time.Duration
	TargetHours      float64
	PageSize         int
	RateLimitPerMin  int
	RateLimitBackend string
	RedisAddr        string
	Seed             bool
}

// Load returns application config populated from environment variables with sensible defaults.
func Load() App {
	return App{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPPort:         getEnv("HTTP_PORT", "8082"),
		JWTIssuer:        getEnv("JWT_ISSUER", "trainlog"),
		JWTSigningKey:    getEnv("JWT_SIGNING_KEY", "dev-signing-secret-change"),
		AccessTTL:        durationEnv("ACCESS_TTL", 12*time.Hour),
		AuthDelay:        durationEnv("AUTH_DELAY", time.Second),
		TargetHours:      floatEnv("TARGET_HOURS", 65),
		PageSize:         intEnv("PAGE_SIZE", 10),
		RateLimitPerMin:  intEnv("RATE_LIMIT_PER_MIN", 120),
		RateLimitBackend: getEnv("RATE_LIMIT_BACKEND", "memory"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		Seed:             boolEnv("SEED", true),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if val == "1" || val == "true" || val == "TRUE" {
			return true
		}
		if val == "0" || val == "false" || val == "FALSE" {
			return false
		}
		log.Printf("invalid bool for %s, using fallback %v", key, fallback)
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.Atoi(val)
		if err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}

func floatEnv(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return parsed
		}
		log.Printf("invalid float for %s, using fallback %g", key, fallback)
	}
	return fallback
}
