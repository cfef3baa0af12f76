package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"socialfeed/utils"
)

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether a media store was configured at all.
func (c MinioConfig) Enabled() bool {
	return c.Endpoint != ""
}

type Config struct {
	// Backend selects the storage strategy: memory, postgres or hybrid.
	Backend    string
	ListenAddr string
	LogLevel   string

	DBUsername string
	DBPassword string
	DBName     string
	DBHost     string
	DBPort     string

	RedisHost string
	RedisPort string

	JWTSecret string

	BackendTimeout     time.Duration
	StatisticsInterval time.Duration

	Minio MinioConfig
}

// Load reads configuration from the environment, with .env support for local
// development.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Debugf("No .env file loaded: %v", err)
	}

	return Config{
		Backend:    getEnv("BACKEND", "memory"),
		ListenAddr: getEnv("LISTEN_ADDR", ":3333"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DBUsername: getEnv("DB_USERNAME", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "socialfeed"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),

		RedisHost: getEnv("REDIS_HOST", "localhost"),
		RedisPort: getEnv("REDIS_PORT", "6379"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		BackendTimeout: time.Duration(
			utils.IntFromString(os.Getenv("BACKEND_TIMEOUT_SECONDS"), 5),
		) * time.Second,
		StatisticsInterval: time.Duration(
			utils.IntFromString(os.Getenv("STATISTICS_INTERVAL_MINUTES"), 5),
		) * time.Minute,

		Minio: MinioConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getEnv("MINIO_BUCKET", "socialfeed"),
			UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		},
	}
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s sslmode=disable host=%s port=%s",
		c.DBUsername, c.DBPassword, c.DBName, c.DBHost, c.DBPort,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
