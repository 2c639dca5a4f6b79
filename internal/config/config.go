// Package config loads runtime settings from the environment, an optional .env file and an
// optional stepwise.yaml.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env  string
	Port string

	PostgresURL string
	AutoMigrate bool

	JWTSecret     string
	SessionTTL    time.Duration
	PortalTTL     time.Duration
	SecureCookies bool

	CORSOrigins []string

	PayPal     PayPalConfig
	Cloudinary CloudinaryConfig
	UploadDir  string
	PublicURL  string

	PortalRateLimit float64
	PortalBurst     int
}

type PayPalConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	WebhookID    string
	Timeout      time.Duration
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("auto_migrate", true)
	v.SetDefault("session_ttl", "24h")
	v.SetDefault("portal_ttl", "12h")
	v.SetDefault("cors_origins", "http://localhost:3000")
	v.SetDefault("paypal_base_url", "https://api-m.sandbox.paypal.com")
	v.SetDefault("paypal_timeout", "15s")
	v.SetDefault("cloudinary_folder", "stepwise")
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("public_url", "http://localhost:8080")
	v.SetDefault("portal_rate_limit", 5.0)
	v.SetDefault("portal_burst", 20)
}

// Load reads settings. Environment variables win over stepwise.yaml, which wins over defaults.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("stepwise")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read stepwise.yaml: %w", err)
		}
	}
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:           v.GetString("env"),
		Port:          v.GetString("port"),
		PostgresURL:   v.GetString("postgres_url"),
		AutoMigrate:   v.GetBool("auto_migrate"),
		JWTSecret:     v.GetString("jwt_secret"),
		SessionTTL:    v.GetDuration("session_ttl"),
		PortalTTL:     v.GetDuration("portal_ttl"),
		SecureCookies: v.GetBool("secure_cookies"),
		CORSOrigins:   splitList(v.GetString("cors_origins")),
		PayPal: PayPalConfig{
			BaseURL:      v.GetString("paypal_base_url"),
			ClientID:     v.GetString("paypal_client_id"),
			ClientSecret: v.GetString("paypal_client_secret"),
			WebhookID:    v.GetString("paypal_webhook_id"),
			Timeout:      v.GetDuration("paypal_timeout"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: v.GetString("cloudinary_cloud_name"),
			APIKey:    v.GetString("cloudinary_api_key"),
			APISecret: v.GetString("cloudinary_api_secret"),
			Folder:    v.GetString("cloudinary_folder"),
		},
		UploadDir:       v.GetString("upload_dir"),
		PublicURL:       strings.TrimRight(v.GetString("public_url"), "/"),
		PortalRateLimit: v.GetFloat64("portal_rate_limit"),
		PortalBurst:     v.GetInt("portal_burst"),
	}
	if cfg.PostgresURL == "" {
		return nil, errors.New("config: POSTGRES_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET is required")
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
