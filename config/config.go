package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// DefaultJWTSecret is only meant for development; production refuses to start with it
const DefaultJWTSecret = "techlympics-2025-secret-key"

var ErrInsecureJWTSecret = errors.New("JWT_SECRET must be set to a non-default value in production")

var (
	Environment    string
	ServerPort     string
	ClientUrl      string
	AllowedOrigins []string

	DBDriver         string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	MySQLDSN         string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret       string
	JWTExpiry       time.Duration
	CookieName      string
	DefaultPassword string

	MailHost     string
	MailPort     string
	MailUsername string
	MailPassword string
	MailFrom     string

	PublicDir       string
	UploadsDir      string
	SerialPrefix    string
	TrackingBaseUrl string
)

// LoadConfig loads the .env file (when present) and fills the package variables
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, relying on process environment")
	}

	Environment = getEnv("ENV", "development")
	ServerPort = getEnv("SERVER_PORT", "8080")
	ClientUrl = getEnv("CLIENT_URL", "http://localhost:3000")
	AllowedOrigins = splitList(getEnv("ALLOWED_ORIGINS", ClientUrl))

	DBDriver = strings.ToLower(getEnv("DB_DRIVER", "postgres"))
	PostgresHost = getEnv("POSTGRES_HOST", "localhost")
	PostgresPort = getEnv("POSTGRES_PORT", "5432")
	PostgresUser = getEnv("POSTGRES_USER", "postgres")
	PostgresPassword = getEnv("POSTGRES_PASSWORD", "postgres")
	PostgresDB = getEnv("POSTGRES_DB", "techlympics")
	MySQLDSN = getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/techlympics?charset=utf8mb4&parseTime=True&loc=Local")

	RedisAddr = getEnv("REDIS_ADDR", "")
	RedisPassword = getEnv("REDIS_PASSWORD", "")
	RedisDB = getEnvInt("REDIS_DB", 0)

	JWTSecret = getEnv("JWT_SECRET", DefaultJWTSecret)
	JWTExpiry = time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 8)) * time.Hour
	CookieName = getEnv("COOKIE_NAME", "techlympics-auth")
	DefaultPassword = getEnv("DEFAULT_PASSWORD", "")

	MailHost = getEnv("SMTP_HOST", "")
	MailPort = getEnv("SMTP_PORT", "587")
	MailUsername = getEnv("EMAIL_USER", "")
	MailPassword = getEnv("EMAIL_PASS", "")
	MailFrom = getEnv("EMAIL_FROM", MailUsername)

	PublicDir = getEnv("PUBLIC_DIR", "public")
	UploadsDir = getEnv("UPLOADS_DIR", "public/uploads/certificates")
	SerialPrefix = getEnv("CERT_SERIAL_PREFIX", "MT")
	TrackingBaseUrl = getEnv("TRACKING_BASE_URL", "http://localhost:"+ServerPort+"/api/v1")
}

// IsProduction reports whether the API runs with ENV=production
func IsProduction() bool {
	return Environment == "production"
}

// Validate checks the loaded settings the server cannot run without
func Validate() error {
	if IsProduction() && (JWTSecret == "" || JWTSecret == DefaultJWTSecret) {
		return ErrInsecureJWTSecret
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logrus.WithField("key", key).Warn("Invalid integer in environment, using default")
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
