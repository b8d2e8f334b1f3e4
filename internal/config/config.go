package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Strategy selector values for the decision engine
const (
	StrategyStateful = "stateful"
	StrategyClassify = "classify"
)

// Config holds all runtime configuration, loaded once at startup
type Config struct {
	Port     string
	TenantID string `validate:"required"`

	// Decision engine
	DecisionStrategy string `validate:"oneof=stateful classify"`
	AnsweringEnabled bool

	// Conversation state cache + channel dedup
	ConversationTTL     time.Duration `validate:"gt=0"`
	DedupWindow         time.Duration `validate:"gt=0"`
	OrchestratorTimeout time.Duration `validate:"gt=0"`
	UpstreamTimeout     time.Duration `validate:"gt=0"`

	// Upstream service base URLs. An empty ConversationServiceURL selects the
	// built-in store (memory or Postgres). An empty ConsentServiceURL disables
	// the consent gate.
	ConversationServiceURL string `validate:"omitempty,url"`
	AIServiceURL           string `validate:"omitempty,url"`
	RAGServiceURL          string `validate:"omitempty,url"`
	ConsentServiceURL      string `validate:"omitempty,url"`

	// Twilio WhatsApp transport
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
	TwilioSandboxCode  string

	// PostgreSQL, used when no external conversation service is configured.
	// A non-empty InstanceConnectionName selects the Cloud SQL unix socket.
	DBUser                 string
	DBPassword             string
	DBName                 string
	InstanceConnectionName string

	// Admin endpoints
	AdminJWTSecret string

	UseMemoryStore           bool
	DisableWebhookValidation bool
}

// Load reads .env (local development) and environment variables into a Config
func Load() (*Config, error) {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		if err := godotenv.Load(".env"); err != nil {
			if err = godotenv.Load("environments/.env.development"); err != nil {
				log.Println("⚠️  No .env file found - checking environment variables")
			}
		}
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		TenantID:         getEnv("TENANT_ID", "consultorio-juridico"),
		DecisionStrategy: getEnv("DECISION_STRATEGY", StrategyStateful),
		AnsweringEnabled: getBoolEnv("ANSWERING_ENABLED", true),

		ConversationTTL:     time.Duration(getIntEnv("CONVERSATION_TTL_MINUTES", 30)) * time.Minute,
		DedupWindow:         time.Duration(getIntEnv("DEDUP_WINDOW_SECONDS", 60)) * time.Second,
		OrchestratorTimeout: time.Duration(getIntEnv("ORCHESTRATOR_TIMEOUT_SECONDS", 15)) * time.Second,
		UpstreamTimeout:     time.Duration(getIntEnv("UPSTREAM_TIMEOUT_SECONDS", 10)) * time.Second,

		ConversationServiceURL: os.Getenv("CONVERSATION_SERVICE_URL"),
		AIServiceURL:           getEnv("AI_SERVICE_URL", "http://localhost:3040"),
		RAGServiceURL:          getEnv("RAG_SERVICE_URL", "http://localhost:8000"),
		ConsentServiceURL:      os.Getenv("CONSENT_SERVICE_URL"),

		TwilioAccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppFrom: os.Getenv("TWILIO_WHATSAPP_FROM"),
		TwilioSandboxCode:  os.Getenv("TWILIO_SANDBOX_CODE"),

		DBUser:                 getEnv("DB_USER", "postgres"),
		DBPassword:             os.Getenv("DB_PASS"),
		DBName:                 getEnv("DB_NAME", "sofia"),
		InstanceConnectionName: os.Getenv("INSTANCE_CONNECTION_NAME"),

		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),

		UseMemoryStore:           getBoolEnv("USE_MEMORY_STORE", false),
		DisableWebhookValidation: getBoolEnv("DISABLE_WEBHOOK_VALIDATION", false),
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️  Invalid value for %s (%q), using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func getBoolEnv(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v == "true" || v == "1"
}
