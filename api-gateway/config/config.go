package config

import (
	"os"
	"time"
)

// UpstreamConfig holds configuration for a proxied backend
type UpstreamConfig struct {
	Name        string
	BaseURL     string
	Timeout     time.Duration
	HealthCheck string
}

// GatewayConfig holds the main gateway configuration
type GatewayConfig struct {
	Port      string
	Upstreams map[string]UpstreamConfig
}

// LoadConfig loads the gateway configuration
func LoadConfig() *GatewayConfig {
	return &GatewayConfig{
		Port: getEnv("GATEWAY_PORT", "8000"),
		Upstreams: map[string]UpstreamConfig{
			"commerce": {
				Name:        "commerce-service",
				BaseURL:     getEnv("COMMERCE_SERVICE_URL", "http://localhost:8080"),
				Timeout:     30 * time.Second,
				HealthCheck: "/health",
			},
			"catalog": {
				Name:        "catalog-service",
				BaseURL:     getEnv("CATALOG_SERVICE_URL", "http://localhost:8083"),
				Timeout:     10 * time.Second,
				HealthCheck: "/health",
			},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
