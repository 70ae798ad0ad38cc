package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	JWT      JWTConfig
	Gateway  GatewayConfig
	Checkout CheckoutConfig
}

type ServerConfig struct {
	Port string
}

type JWTConfig struct {
	Secret string
}

// GatewayConfig holds the payment gateway credentials. CallbackToken is the
// optional shared secret for the notification endpoint; empty means the
// endpoint runs in open mode and only the signature check applies. Timezone
// is the gateway's wall clock for bare settlement_time values.
type GatewayConfig struct {
	BaseURL       string
	ServerKey     string
	ClientKey     string
	CallbackToken string
	Timezone      string
}

type CheckoutConfig struct {
	// PendingTTLHours is how long a PENDING checkout pair may linger before
	// the expiry sweep claims it.
	PendingTTLHours int
}

func Load() *Config {
	godotenv.Load() // .env dosyasını yükle

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key"),
		},
		Gateway: GatewayConfig{
			BaseURL:       getEnv("GATEWAY_BASE_URL", "https://app.sandbox.midtrans.com"),
			ServerKey:     getEnv("GATEWAY_SERVER_KEY", ""),
			ClientKey:     getEnv("GATEWAY_CLIENT_KEY", ""),
			CallbackToken: getEnv("GATEWAY_CALLBACK_TOKEN", ""),
			Timezone:      getEnv("GATEWAY_TIMEZONE", "Asia/Jakarta"),
		},
		Checkout: CheckoutConfig{
			PendingTTLHours: getEnvInt("CHECKOUT_PENDING_TTL_HOURS", 24),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
