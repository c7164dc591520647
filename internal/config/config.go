package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string // empty: in-memory ratings and static word bank

	RedisAddr     string // empty: in-memory queue and session store
	RedisPassword string
	RedisDB       int

	JWTSecret   string
	RequireAuth bool

	LogLevel string
	LogJSON  bool

	QueueTTL      time.Duration
	SessionTTL    time.Duration
	StartDelay    time.Duration
	DefaultRating int

	APIRateLimit  int
	APIRateWindow time.Duration

	AllowedOrigin string
	InstanceID    string
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	instanceID := os.Getenv("INSTANCE_ID")
	if instanceID == "" {
		instanceID, _ = os.Hostname()
	}
	if instanceID == "" {
		instanceID = "local"
	}

	return &Config{
		AppPort:       port,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       intEnv("REDIS_DB", 0),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RequireAuth:   boolEnv("REQUIRE_AUTH", false),
		LogLevel:      strings.ToLower(os.Getenv("LOG_LEVEL")),
		LogJSON:       boolEnv("LOG_JSON", false),
		QueueTTL:      durationEnv("QUEUE_TTL", 10*time.Minute),
		SessionTTL:    durationEnv("SESSION_TTL", 30*time.Minute),
		StartDelay:    durationEnv("START_DELAY", 5*time.Second),
		DefaultRating: intEnv("DEFAULT_RATING", 1000),
		APIRateLimit:  intEnv("API_RATE_LIMIT", 60),
		APIRateWindow: time.Duration(intEnv("API_RATE_WINDOW_SECONDS", 60)) * time.Second,
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
		InstanceID:    instanceID,
	}
}

func intEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func boolEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// durationEnv accepts Go durations ("90s") or plain seconds ("90").
func durationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}
