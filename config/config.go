package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DeliverySMTP = "smtp"
	DeliveryLog  = "log"
)

type Config struct {
	Port        string
	GinMode     string
	FrontendURL string
	// SMTP Configuration
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	SMTPFromEmail  string
	ContactEmailTo string
	// Contact form behaviour
	ContactDelivery  string        // "smtp" or "log"
	ContactEndpoint  string        // optional upstream for the server-rendered page
	SubmitTimeout    time.Duration // outbound submission timeout
	SimulatedDelay   time.Duration // only used by log delivery
	MessageMaxLength int
	NoticeDuration   time.Duration
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds    int
	RateLimitContactThreshold int
	RateLimitGlobalThreshold  int
}

func LoadConfig() (*Config, error) {
	// .env is optional; production reads the real environment
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// SMTP Configuration
		SMTPHost:       getEnv("SMTP_HOST", "smtp-relay.brevo.com"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail:  getEnv("SMTP_FROM_EMAIL", "noreply@ratioanalytics.com"),
		ContactEmailTo: getEnv("CONTACT_EMAIL_TO", "hola@ratioanalytics.com"),
		// Contact form behaviour
		ContactDelivery:  strings.ToLower(getEnv("CONTACT_DELIVERY", DeliveryLog)),
		ContactEndpoint:  strings.TrimSpace(getEnv("CONTACT_ENDPOINT", "")),
		SubmitTimeout:    getEnvDuration("SUBMIT_TIMEOUT_SECONDS", time.Second, 10*time.Second),
		SimulatedDelay:   getEnvDuration("SIMULATED_DELAY_MS", time.Millisecond, 1500*time.Millisecond),
		MessageMaxLength: getEnvInt("MESSAGE_MAX_LENGTH", 500),
		NoticeDuration:   getEnvDuration("NOTICE_SECONDS", time.Second, 5*time.Second),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Rate Limiting Configuration (with sensible defaults)
		RateLimitWindowSeconds:    getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),    // 1 minute window
		RateLimitContactThreshold: getEnvInt("RATE_LIMIT_CONTACT_THRESHOLD", 5),  // 5 submissions per window
		RateLimitGlobalThreshold:  getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100), // 100 requests per window
	}

	if cfg.ContactDelivery != DeliverySMTP && cfg.ContactDelivery != DeliveryLog {
		log.Printf("WARNING: unknown CONTACT_DELIVERY %q, falling back to %q", cfg.ContactDelivery, DeliveryLog)
		cfg.ContactDelivery = DeliveryLog
	}

	if cfg.ContactDelivery == DeliverySMTP && (cfg.SMTPUsername == "" || cfg.SMTPPassword == "") {
		log.Println("WARNING: CONTACT_DELIVERY=smtp but SMTP credentials are missing. Contact form will be unavailable.")
	}

	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// IsProduction reports whether gin runs in release mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvDuration reads an integer count of unit. Negative values fall back.
func getEnvDuration(key string, unit, fallback time.Duration) time.Duration {
	n := getEnvInt(key, -1)
	if n < 0 {
		return fallback
	}
	return time.Duration(n) * unit
}
