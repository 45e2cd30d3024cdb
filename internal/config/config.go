// Package config reads settings for the client and the development API from
// environment variables, after loading a .env file if one exists.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the client settings.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	CachePath      string
	Cloudinary     Cloudinary
}

// Cloudinary holds image hosting credentials. Image upload is disabled when
// any of them is empty.
type Cloudinary struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Enabled reports whether all credentials are set.
func (c Cloudinary) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// ServerConfig holds the development API settings.
type ServerConfig struct {
	Port      int
	DBPath    string
	JWTSecret string
	TokenTTL  time.Duration
}

// Load reads the client configuration.
func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	timeout, err := getDuration("REQUEST_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	return &Config{
		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:3333"),
		RequestTimeout: timeout,
		CachePath:      getEnv("CACHE_PATH", "./data/session.db"),
		Cloudinary: Cloudinary{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		},
	}, nil
}

// LoadServer reads the development API configuration. JWT_SECRET is required.
func LoadServer() (*ServerConfig, error) {
	godotenv.Load()

	port, err := strconv.Atoi(getEnv("DEVAPI_PORT", "3333"))
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid DEVAPI_PORT %q", os.Getenv("DEVAPI_PORT"))
	}
	ttl, err := getDuration("TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	config := &ServerConfig{
		Port:      port,
		DBPath:    getEnv("DEVAPI_DB_PATH", "./data/devapi.db"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  ttl,
	}

	if config.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required")
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration like 15s", key, value)
	}
	return d, nil
}
