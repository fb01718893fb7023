package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	OpenAIAPIKey           string
	EmbeddingModel         string
	SimilarityThreshold    float64
	RejectLateUploads      bool
	StatusCacheTTL         time.Duration
	UploadMaxMB            int
	UploadRateMax          int
	UploadRateWindow       time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// MaxUploadBytes converts the configured upload cap to bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.UploadMaxMB) << 20
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("INTEGRITY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Integrity API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "integrity/submissions")
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("similarity.threshold", 0.8)
	v.SetDefault("reject_late_uploads", false)
	v.SetDefault("status.cache_ttl", "1m")
	v.SetDefault("upload.max_mb", 10)
	v.SetDefault("upload.rate_max", 5)
	v.SetDefault("upload.rate_window", "1m")

	ttlString := v.GetString("status.cache_ttl")
	if ttlString == "" {
		ttlString = "1m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid status cache ttl: %w", err)
	}

	windowString := v.GetString("upload.rate_window")
	if windowString == "" {
		windowString = "1m"
	}

	window, err := time.ParseDuration(windowString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid upload rate window: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		OpenAIAPIKey:           v.GetString("openai_api_key"),
		EmbeddingModel:         v.GetString("embedding.model"),
		SimilarityThreshold:    v.GetFloat64("similarity.threshold"),
		RejectLateUploads:      v.GetBool("reject_late_uploads"),
		StatusCacheTTL:         ttl,
		UploadMaxMB:            v.GetInt("upload.max_mb"),
		UploadRateMax:          v.GetInt("upload.rate_max"),
		UploadRateWindow:       window,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 1 {
		cfg.SimilarityThreshold = 0.8
	}

	if cfg.UploadMaxMB <= 0 {
		cfg.UploadMaxMB = 10
	}

	return cfg, nil
}
