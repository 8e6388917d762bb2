package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string

	ServerHost string
	ServerPort string

	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string
	DatabaseSSLMode  string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	SMSCountryCode   string

	CronSecret         string
	NotificationAPIKey string
	AdminJWTSecret     string

	Timezone string

	KafkaURL                          string
	AppointmentsCreatedKafkaTopic     string
	AppointmentsCancelledKafkaTopic   string

	AWSRegion          string
	AWSEndpoint        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	SQSReminderScanQueueURL string
	SQSReminderScanQueueARN string
	SchedulerRoleARN        string
	SchedulerGroupName      string

	ScanInterval     time.Duration
	TwoHourTolerance time.Duration
	AtTimeTolerance  time.Duration

	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// LoadEnv loads environment variables from .env files
func LoadEnv() {
	envPaths := []string{
		".env",    // Current directory
		"../.env", // One level up
	}

	for _, path := range envPaths {
		err := godotenv.Load(path)
		if err == nil {
			log.Printf("Loaded environment variables from %s", path)
			return
		}
	}

	log.Println("No .env file found, using environment variables")
}

func Load() Config {
	// Load environment variables from .env file first
	LoadEnv()

	log.Println("Loading configuration from environment variables")
	return Config{
		Environment: getEnv("APP_ENV", "development"),

		ServerHost: getEnv("SERVER_HOST", ""),
		ServerPort: getEnv("SERVER_PORT", "8085"),

		DatabaseHost:     getEnv("DATABASE_HOST", "localhost"),
		DatabasePort:     getEnv("DATABASE_PORT", "5432"),
		DatabaseUser:     getEnv("DATABASE_USER", "postgres"),
		DatabasePassword: getEnv("DATABASE_PASSWORD", ""),
		DatabaseName:     getEnv("DATABASE_NAME", "apnadoctor"),
		DatabaseSSLMode:  getEnv("DATABASE_SSL_MODE", "disable"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@apnadoctor.com"),
		FromName:     getEnv("FROM_NAME", "ApnaDoctor"),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
		SMSCountryCode:   getEnv("SMS_COUNTRY_CODE", "+92"),

		CronSecret:         getEnv("CRON_SECRET", ""),
		NotificationAPIKey: getEnv("NOTIFICATION_API_KEY", ""),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),

		Timezone: getEnv("APP_TIMEZONE", "Asia/Karachi"),

		KafkaURL:                        getEnv("KAFKA_URL", ""),
		AppointmentsCreatedKafkaTopic:   getEnv("KAFKA_TOPIC_APPOINTMENTS_CREATED", "apnadoctor.appointments.created"),
		AppointmentsCancelledKafkaTopic: getEnv("KAFKA_TOPIC_APPOINTMENTS_CANCELLED", "apnadoctor.appointments.cancelled"),

		AWSRegion:          getEnv("AWS_REGION", "ap-south-1"),
		AWSEndpoint:        getEnv("AWS_LOCAL_ENDPOINT_URL", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		SQSReminderScanQueueURL: getEnv("AWS_SQS_REMINDER_SCAN_URL", ""),
		SQSReminderScanQueueARN: getEnv("AWS_SQS_REMINDER_SCAN_QUEUE_ARN", ""),
		SchedulerRoleARN:        getEnv("AWS_SCHEDULER_ROLE_ARN", ""),
		SchedulerGroupName:      getEnv("AWS_SCHEDULER_GROUP_NAME", "default"),

		ScanInterval:     getDurationEnv("REMINDER_SCAN_INTERVAL", 5*time.Minute),
		TwoHourTolerance: getDurationEnv("REMINDER_TWO_HOUR_TOLERANCE", 15*time.Minute),
		AtTimeTolerance:  getDurationEnv("REMINDER_AT_TIME_TOLERANCE", 7*time.Minute+30*time.Second),

		AllowedOrigins: []string{getEnv("CORS_ALLOWED_ORIGINS", "*")},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "x-api-key"},
		MaxAge:         300,
	}
}

// ValidateReminderWindows checks that each reminder window half-width is at
// least as wide as the scan trigger interval. A narrower window means an
// appointment could fall between two consecutive scans and never be seen.
func (c Config) ValidateReminderWindows() error {
	if c.TwoHourTolerance < c.ScanInterval {
		return fmt.Errorf("two-hour reminder tolerance %s is narrower than scan interval %s",
			c.TwoHourTolerance, c.ScanInterval)
	}
	if c.AtTimeTolerance < c.ScanInterval {
		return fmt.Errorf("at-time reminder tolerance %s is narrower than scan interval %s",
			c.AtTimeTolerance, c.ScanInterval)
	}
	return nil
}

// IsDevelopment reports whether the service runs in local-development mode
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	log.Printf("Env var %s not set, using fallback: %s", key, fallback)
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err != nil {
			log.Printf("Env var %s has invalid duration %q, using fallback: %s", key, value, fallback)
			return fallback
		}
		return d
	}
	return fallback
}
