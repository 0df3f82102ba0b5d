package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string
	CORSOrigins string

	// Mail delivery
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPass       string
	MailFrom       string
	MailMaxRetries int

	// Text generation
	GeminiAPIKey string
	GeminiModels []string // Tried in order; the next one is used only when a model is not found
	AIMaxRetries int
	AIBaseDelay  time.Duration
	AITimeout    time.Duration

	// Scheduler is disabled in request-scoped deployments where background timers cannot live.
	SchedulerEnabled  bool
	SchedulerTimezone string

	// Workforce data (employee roster, contract costs) can live outside mongo.
	WorkforceDriver string // mongo, postgres, mysql
	WorkforceDSN    string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "hr-platform"),
		SkipAuth:    getEnv("SKIP_AUTH", "false") == "true",
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "hr-platform"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000, http://localhost:5173"),

		SMTPHost:       getEnv("SMTP_HOST", "localhost"),
		SMTPPort:       getEnvInt("SMTP_PORT", 1025),
		SMTPUser:       getEnv("SMTP_USER", "user"),
		SMTPPass:       getEnv("SMTP_PASS", "pass"),
		MailFrom:       getEnv("MAIL_FROM", "no-reply@example.com"),
		MailMaxRetries: getEnvInt("MAIL_MAX_RETRIES", 2),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModels: splitList(getEnv("GEMINI_MODELS", "gemini-2.0-flash,gemini-1.5-flash-latest")),
		AIMaxRetries: getEnvInt("AI_MAX_RETRIES", 2),
		AIBaseDelay:  getEnvDuration("AI_BASE_DELAY", 200*time.Millisecond),
		AITimeout:    getEnvDuration("AI_TIMEOUT", 15*time.Second),

		SchedulerEnabled:  getEnv("SCHEDULER_ENABLED", "true") == "true",
		SchedulerTimezone: getEnv("SCHEDULER_TIMEZONE", "UTC"),

		WorkforceDriver: getEnv("WORKFORCE_DRIVER", "mongo"),
		WorkforceDSN:    getEnv("WORKFORCE_DSN", ""),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		log.Printf("Invalid integer for %s (%q), using %d", key, value, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		log.Printf("Invalid duration for %s (%q), using %s", key, value, fallback)
		return fallback
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
