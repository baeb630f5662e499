package config

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderTwilio   = "twilio"
	ProviderCloudAPI = "cloudapi"
)

type Config struct {
	Port string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	MessagingProvider  string
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
	WhatsAppToken      string
	PhoneNumberID      string

	// AutomationFlows is the raw JSON array read by the webhook. It is parsed on
	// every inbound call, never cached.
	AutomationFlows string

	ActivityHeartbeat time.Duration
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4.1-mini"),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		MessagingProvider:  getEnv("MESSAGING_PROVIDER", ProviderTwilio),
		TwilioAccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:    getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioWhatsAppFrom: getEnv("TWILIO_WHATSAPP_FROM", ""),
		WhatsAppToken:      getEnv("WHATSAPP_TOKEN", ""),
		PhoneNumberID:      getEnv("PHONE_NUMBER_ID", ""),
		AutomationFlows:    getEnv("AUTOMATION_FLOWS", ""),
		ActivityHeartbeat:  getDuration("ACTIVITY_HEARTBEAT", 30*time.Second),
	}
}

// GenerationError describes missing language model credentials, or nil
func (c *Config) GenerationError() error {
	if c.OpenAIAPIKey == "" {
		return errors.New("OPENAI_API_KEY is not configured.")
	}
	return nil
}

// MessagingError describes missing messaging provider credentials, or nil
func (c *Config) MessagingError() error {
	switch c.MessagingProvider {
	case ProviderCloudAPI:
		if c.WhatsAppToken == "" || c.PhoneNumberID == "" {
			return errors.New("WhatsApp Cloud API credentials are not configured. Set WHATSAPP_TOKEN and PHONE_NUMBER_ID.")
		}
	case ProviderTwilio, "":
		if c.TwilioAccountSID == "" || c.TwilioAuthToken == "" || c.TwilioWhatsAppFrom == "" {
			return errors.New("Twilio credentials are not configured. Set TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, and TWILIO_WHATSAPP_FROM.")
		}
	default:
		return errors.New("Unknown MESSAGING_PROVIDER " + c.MessagingProvider + ". Use twilio or cloudapi.")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getDuration parses a Go duration. Zero is returned as is and means disabled.
func getDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		log.Printf("Warning: invalid %s %q, using %s", key, value, fallback)
		return fallback
	}
	return d
}
