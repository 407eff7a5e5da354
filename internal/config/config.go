// Package config reads service configuration from the environment.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/joho/godotenv"
)

// Config holds everything the server, CLI and snapshot job need
type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	JWTSecret string
	AWSRegion string

	CORSAllowOrigins []string

	Database  DatabaseConfig
	Dashboard DashboardConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL       string
	SecretARN string
	Host      string
	Port      int
	User      string
	Password  string
	Name      string
	SSLMode   string
}

// DashboardConfig configures the module API client and snapshot publishers
type DashboardConfig struct {
	APIBaseURL       string
	APIToken         string
	RequestTimeout   time.Duration
	SnapshotBucket   string
	SnapshotPrefix   string
	MetricsNamespace string
}

// Load reads a .env file when present, then the process environment
func Load() Config {
	// .env is optional; the environment wins over it
	_ = godotenv.Load()

	return Config{
		Port:      getEnv("PORT", "8080"),
		GinMode:   os.Getenv("GIN_MODE"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		AWSRegion: awsRegion(),

		CORSAllowOrigins: getEnvList("CORS_ALLOW_ORIGINS"),

		Database: DatabaseConfig{
			URL:       os.Getenv("DATABASE_URL"),
			SecretARN: os.Getenv("DATABASE_SECRET_ARN"),
			Host:      getEnv("DB_HOST", "localhost"),
			Port:      getEnvInt("DB_PORT", 5432),
			User:      getEnv("DB_USER", "bizsuite"),
			Password:  os.Getenv("DB_PASSWORD"),
			Name:      getEnv("DB_NAME", "bizsuite"),
			SSLMode:   getEnv("DB_SSLMODE", "disable"),
		},
		Dashboard: DashboardConfig{
			APIBaseURL:       getEnv("DASHBOARD_API_BASE_URL", "http://localhost:3000/api"),
			APIToken:         os.Getenv("DASHBOARD_API_TOKEN"),
			RequestTimeout:   getEnvDuration("DASHBOARD_REQUEST_TIMEOUT", 5*time.Second),
			SnapshotBucket:   os.Getenv("DASHBOARD_S3_BUCKET"),
			SnapshotPrefix:   getEnv("DASHBOARD_S3_PREFIX", "dashboard/"),
			MetricsNamespace: os.Getenv("DASHBOARD_METRICS_NAMESPACE"),
		},
	}
}

// DSN returns the connection string: DATABASE_URL when set, otherwise one
// composed from the discrete DB_* values
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	if c.Password == "" {
		u.User = url.User(c.User)
	} else {
		u.User = url.UserPassword(c.User, c.Password)
	}
	return u.String()
}

type secretPayload struct {
	DatabaseURL string `json:"DATABASE_URL"`
}

// ResolveSecrets replaces the database URL with the one stored in Secrets
// Manager when DATABASE_SECRET_ARN is set
func (c *Config) ResolveSecrets(ctx context.Context) error {
	if c.Database.SecretARN == "" {
		return nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(c.AWSRegion))
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}
	sm := secretsmanager.NewFromConfig(awsCfg)
	out, err := sm.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: &c.Database.SecretARN})
	if err != nil {
		return fmt.Errorf("get secret: %w", err)
	}
	if out.SecretString == nil {
		return fmt.Errorf("secret %s has no string value", c.Database.SecretARN)
	}
	var payload secretPayload
	if err := json.Unmarshal([]byte(*out.SecretString), &payload); err != nil {
		return fmt.Errorf("parse secret json: %w", err)
	}
	if payload.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL missing in secret")
	}
	c.Database.URL = payload.DatabaseURL
	return nil
}

func awsRegion() string {
	if r := os.Getenv("AWS_REGION"); r != "" {
		return r
	}
	return getEnv("AWS_DEFAULT_REGION", "eu-central-1")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// getEnvList splits a comma separated variable, dropping empty entries
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
