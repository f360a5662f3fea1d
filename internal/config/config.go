package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/prefeitura-rio/app-subscribe/internal/models"
)

// Config holds all configuration values
type Config struct {
	// Server configuration
	Port        int    `json:"port"`
	Environment string `json:"environment"`

	// HubSpot configuration
	HubSpotAPIKey  string `json:"hubspot_api_key"`
	HubSpotBaseURL string `json:"hubspot_base_url"`
	PortalID       string `json:"portal_id"`
	SubscriptionID string `json:"subscription_id"`

	// Workflow ids, empty when not configured
	SignupWorkflowID string `json:"signup_workflow_id"`
	UpdateWorkflowID string `json:"update_workflow_id"`

	// Token configuration; an empty encryption key disables the
	// token-based entry path
	EncryptionKey string `json:"-"`

	// Form configuration
	FormContainer  string                `json:"form_container"`
	PropertySchema models.PropertySchema `json:"property_schema"`
	Messages       models.Messages       `json:"messages"`

	// Nonce configuration
	NonceTTL time.Duration `json:"nonce_ttl"`

	// Redis configuration
	RedisURI      string `json:"redis_uri"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`

	// MongoDB configuration
	MongoURI        string `json:"mongo_uri"`
	MongoDatabase   string `json:"mongo_database"`
	AuditCollection string `json:"mongo_audit_collection"`

	// Tracing configuration
	TracingEnabled  bool   `json:"tracing_enabled"`
	TracingEndpoint string `json:"tracing_endpoint"`
}

var (
	AppConfig *Config
)

// LoadConfig loads configuration from environment variables
func LoadConfig() error {
	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	nonceTTL, err := time.ParseDuration(getEnvOrDefault("NONCE_TTL", "24h"))
	if err != nil {
		return fmt.Errorf("invalid NONCE_TTL: %w", err)
	}

	// The API key is the one setting without which no request can be
	// served; refuse to start without it.
	apiKey := os.Getenv("HUBSPOT_API_KEY")
	if apiKey == "" {
		return models.ErrMissingAPIKey
	}

	schema, err := models.ParsePropertySchema(os.Getenv("PROPERTY_SCHEMA"))
	if err != nil {
		return fmt.Errorf("invalid PROPERTY_SCHEMA: %w", err)
	}

	messages := models.DefaultMessages()
	if raw := os.Getenv("MESSAGE_OVERRIDES"); raw != "" {
		var overrides models.Messages
		if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
			return fmt.Errorf("invalid MESSAGE_OVERRIDES: %w", err)
		}
		messages = messages.Merge(overrides)
	}

	AppConfig = &Config{
		// Server configuration
		Port:        port,
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),

		// HubSpot configuration
		HubSpotAPIKey:  apiKey,
		HubSpotBaseURL: getEnvOrDefault("HUBSPOT_BASE_URL", "https://api.hubapi.com"),
		PortalID:       os.Getenv("HUBSPOT_PORTAL_ID"),
		SubscriptionID: os.Getenv("HUBSPOT_SUBSCRIPTION_ID"),

		SignupWorkflowID: os.Getenv("HUBSPOT_SIGNUP_WORKFLOW_ID"),
		UpdateWorkflowID: os.Getenv("HUBSPOT_UPDATE_WORKFLOW_ID"),

		EncryptionKey: os.Getenv("TOKEN_ENCRYPTION_KEY"),

		// Form configuration
		FormContainer:  getEnvOrDefault("FORM_CONTAINER", "hubspot_contact"),
		PropertySchema: schema,
		Messages:       messages,

		// Nonce configuration
		NonceTTL: nonceTTL,

		// Redis configuration
		RedisURI:      getEnvOrDefault("REDIS_URI", "localhost:6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		// MongoDB configuration
		MongoURI:        getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnvOrDefault("MONGODB_DATABASE", "subscribe"),
		AuditCollection: getEnvOrDefault("MONGODB_AUDIT_COLLECTION", "subscription_audit"),

		// Tracing configuration
		TracingEnabled:  getEnvOrDefault("TRACING_ENABLED", "false") == "true",
		TracingEndpoint: getEnvOrDefault("TRACING_ENDPOINT", "localhost:4317"),
	}

	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
