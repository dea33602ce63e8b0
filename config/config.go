package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerAddr string
	GinMode    string

	DBDriver string
	DBDSN    string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	FriendRequestLimit  int
	FriendRequestWindow time.Duration

	AuthRateLimit float64
	AuthRateBurst int

	CORSAllowedOrigins []string

	LogLevel  string
	LogFormat string

	MetricsUser string
	MetricsPass string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found")
	}

	return &Config{
		ServerAddr: ":" + getEnv("PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "release"),

		DBDriver: getEnv("DB_DRIVER", "mysql"),
		DBDSN:    getEnv("DB_DSN", "root:root@tcp(localhost:3306)/socialnet?charset=utf8mb4&parseTime=True&loc=UTC"),

		JWTSecret:       getEnv("JWT_SECRET", "socialnet-secret-key-change-in-production"),
		AccessTokenTTL:  time.Duration(getEnvAsInt("ACCESS_TOKEN_EXPIRE_SECONDS", 36000)) * time.Second,
		RefreshTokenTTL: time.Duration(getEnvAsInt("REFRESH_TOKEN_EXPIRE_SECONDS", 14*24*3600)) * time.Second,

		FriendRequestLimit:  getEnvAsInt("FRIEND_REQUEST_LIMIT", 3),
		FriendRequestWindow: getEnvAsDuration("FRIEND_REQUEST_WINDOW", time.Minute),

		AuthRateLimit: getEnvAsFloat("AUTH_RATE_LIMIT", 1),
		AuthRateBurst: getEnvAsInt("AUTH_RATE_BURST", 10),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		MetricsUser: os.Getenv("METRICS_USER"),
		MetricsPass: os.Getenv("METRICS_PASS"),
	}
}

// ConfigureLogging applies the log level and format to the standard logrus logger.
func (c *Config) ConfigureLogging() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.WithField("level", c.LogLevel).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if c.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		logrus.WithField("key", key).Warn("Invalid integer in environment, using default")
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		logrus.WithField("key", key).Warn("Invalid number in environment, using default")
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.WithField("key", key).Warn("Invalid duration in environment, using default")
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
