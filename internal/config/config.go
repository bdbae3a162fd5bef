package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Storage    StorageConfig
	OpenRouter OpenRouterConfig
	Upload     UploadConfig
	JWT        JWTConfig
	OTP        OTPConfig
	SMTP       SMTPConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

func (s ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Addr     string
	Password string
}

// StorageConfig points at a Supabase-compatible object storage endpoint.
type StorageConfig struct {
	URL               string
	ServiceKey        string
	ResumeBucket      string
	CoverLetterBucket string
}

type OpenRouterConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type UploadConfig struct {
	MaxFileSize int64
}

type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

type OTPConfig struct {
	TTL        time.Duration
	RateLimit  int
	RateWindow time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "job_portal"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Storage: StorageConfig{
			URL:               getEnv("SUPABASE_URL", ""),
			ServiceKey:        getEnv("SUPABASE_ANON_KEY", ""),
			ResumeBucket:      getEnv("BUCKET_RESUMES", "resumes"),
			CoverLetterBucket: getEnv("BUCKET_COVERLETTERS", "coverletters"),
		},
		OpenRouter: OpenRouterConfig{
			APIKey:      getEnv("OPENROUTER_API_KEY", ""),
			BaseURL:     getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			Model:       getEnv("OPENROUTER_MODEL", "mistralai/mistral-7b-instruct"),
			MaxTokens:   getEnvAsInt("OPENROUTER_MAX_TOKENS", 300),
			Temperature: getEnvAsFloat("OPENROUTER_TEMPERATURE", 0.3),
			Timeout:     getEnvAsDuration("OPENROUTER_TIMEOUT", "30s"),
		},
		Upload: UploadConfig{
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 5*1024*1024),
		},
		JWT: JWTConfig{
			Secret:    getEnv("JWT_SECRET", ""),
			ExpiresIn: getEnvAsDuration("JWT_EXPIRES_IN", "24h"),
		},
		OTP: OTPConfig{
			TTL:        getEnvAsDuration("OTP_TTL", "10m"),
			RateLimit:  getEnvAsInt("OTP_RATE_LIMIT", 3),
			RateWindow: getEnvAsDuration("OTP_RATE_WINDOW", "15m"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@jobportal.local"),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
