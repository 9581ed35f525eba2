package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is the application configuration
type Config struct {
	Server   ServerConfig
	Shopify  ShopifyConfig
	Workflow WorkflowConfig
	Kafka    KafkaConfig
	Telegram TelegramConfig
	Logging  LoggingConfig
}

// ServerConfig is the HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// ShopifyConfig is the Admin API configuration of the installed shop
type ShopifyConfig struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
	APISecret   string
}

// WorkflowConfig holds the behavioral flags of the upsert workflow.
// The flags replace the divergent handler copies the app accumulated.
type WorkflowConfig struct {
	AllowGuest           bool
	SendInvite           bool
	VerifyProxySignature bool
}

// KafkaConfig is the event producer configuration
type KafkaConfig struct {
	Enabled bool
	Brokers []string
}

// TelegramConfig is the ops alert bot configuration
type TelegramConfig struct {
	Token  string
	ChatID string
}

// LoggingConfig is the logger configuration
type LoggingConfig struct {
	Level string
}

// Installed reports whether an Admin API context is configured for the shop
func (c *ShopifyConfig) Installed() bool {
	return strings.TrimSpace(c.ShopDomain) != "" && strings.TrimSpace(c.AccessToken) != ""
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SERVER_SHUTDOWN_TIMEOUT", 30),
		},
		Shopify: ShopifyConfig{
			ShopDomain:  getEnv("SHOPIFY_SHOP_DOMAIN", ""),
			AccessToken: getEnv("SHOPIFY_ACCESS_TOKEN", ""),
			APIVersion:  getEnv("SHOPIFY_API_VERSION", "2024-10"),
			APISecret:   getEnv("SHOPIFY_API_SECRET", ""),
		},
		Workflow: WorkflowConfig{
			AllowGuest:           getEnvAsBool("ALLOW_GUEST", true),
			SendInvite:           getEnvAsBool("SEND_INVITE", true),
			VerifyProxySignature: getEnvAsBool("PROXY_VERIFY_SIGNATURE", true),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvAsBool("KAFKA_ENABLED", false),
			Brokers: getEnvAsSlice("KAFKA_BROKERS", []string{"kafka:9092"}),
		},
		Telegram: TelegramConfig{
			Token:  getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID: getEnv("TELEGRAM_CHAT_ID", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// getEnv reads an environment variable or returns the default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as int or returns the default value
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool reads an environment variable as bool or returns the default value
func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsSlice reads a comma-separated environment variable or returns the default value
func getEnvAsSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
