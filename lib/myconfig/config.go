package myconfig

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	BaseURL  string `env:"BASE_URL"`

	GoogleCloudProject string `env:"GOOGLE_CLOUD_PROJECT"`
	LocationID         string `env:"LOCATION_ID" envDefault:"europe-west1"`
	QueueName          string `env:"QUEUE_NAME" envDefault:"default"`

	DatabaseURL string        `env:"DATABASE_URL"`
	RedisAddr   string        `env:"REDIS_ADDR"`
	CartTTL     time.Duration `env:"CART_TTL" envDefault:"24h"`

	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	StripeAPIKey string `env:"STRIPE_API_KEY"`
	Currency     string `env:"CURRENCY" envDefault:"usd"`

	ResendAPIKey    string `env:"RESEND_API_KEY"`
	ResendFromEmail string `env:"RESEND_FROM_EMAIL" envDefault:"Crave'N <onboarding@resend.dev>"`
	ResendURL       string `env:"RESEND_URL"`
	OnboardingURL   string `env:"ONBOARDING_URL" envDefault:"/craver-hub"`
	DriverGuideURL  string `env:"DRIVER_GUIDE_URL" envDefault:"/driver-guide"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port
	}
	return cfg, nil
}
