package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	SaltRound int

	EmailSender string
	Password    string // SMTP Password

	EscalationWebhookURL string // Posted to when an enrollment escalates
	ComplianceCron       string // Cron spec for the daily compliance sweep
	SweepBatchSize       int    // Enrollments processed per batch during a sweep
	ExpireAfterLevel     int    // Escalation level at which the sweep expires an enrollment (0 disables)

	InstructorFallback string // Instructor name on certificates when none is assigned
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		EmailSender: getEnv("EMAIL_SENDER", "defaultSecret"),
		Password:    getEnv("PASSWORD", "defaultSecret"),

		EscalationWebhookURL: getEnv("ESCALATION_WEBHOOK_URL", ""),
		ComplianceCron:       getEnv("COMPLIANCE_CRON", "0 6 * * *"),
		SweepBatchSize:       getEnvInt("SWEEP_BATCH_SIZE", 100),
		ExpireAfterLevel:     getEnvInt("EXPIRE_AFTER_LEVEL", 5),

		InstructorFallback: getEnv("INSTRUCTOR_FALLBACK", "Training Department"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
