package main

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsscheduler "github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/gorilla/mux"

	auth "ms-notifications/internal/auth"
	"ms-notifications/internal/config"
	"ms-notifications/internal/eventbridge"
	"ms-notifications/internal/handlers"
	"ms-notifications/internal/kafka"
	"ms-notifications/internal/reminder"
	"ms-notifications/internal/services"
)

// Main application loop
func main() {
	cfg := config.Load()

	if err := cfg.ValidateReminderWindows(); err != nil {
		log.Fatalf("Invalid reminder window configuration: %v", err)
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("Failed to load timezone %s: %v", cfg.Timezone, err)
	}

	// Load AWS configuration with credentials from environment variables
	awsOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}

	// Add credentials if they are provided
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		log.Println("Using AWS credentials from environment variables")
		awsOptions = append(awsOptions, awsconfig.WithCredentialsProvider(
			aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     cfg.AWSAccessKeyID,
					SecretAccessKey: cfg.AWSSecretAccessKey,
				}, nil
			}),
		))
	} else {
		log.Println("No AWS credentials provided in environment variables, falling back to default credentials")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsOptions...)
	if err != nil {
		log.Fatalf("unable to load AWS SDK config, %v", err)
	}
	sqsClient := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.AWSEndpoint != "" {
			log.Printf("Using LocalStack endpoint for AWS services: %s", cfg.AWSEndpoint)
			o.BaseEndpoint = &cfg.AWSEndpoint
		}
	})
	schedulerClient := awsscheduler.NewFromConfig(awsCfg, func(o *awsscheduler.Options) {
		if cfg.AWSEndpoint != "" {
			o.BaseEndpoint = &cfg.AWSEndpoint
		}
	})
	log.Println("Clients initialized")

	// Initialize database service
	dbService, err := services.NewDatabaseService(services.DatabaseConfig{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		DBName:   cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatalf("Failed to initialize database service: %v", err)
	}
	defer dbService.Close()

	if err := dbService.RunMigrations(); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize repositories and channel services
	appointmentRepo := services.NewAppointmentRepository(dbService.DB)
	logRepo := services.NewNotificationLogRepository(dbService.DB)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.FromEmail, cfg.FromName)
	smsService := services.NewSMSService(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, cfg.SMSCountryCode)

	// Initialize the dispatch service and the reminder scanner
	notificationService := services.NewNotificationService(appointmentRepo, logRepo, emailService, smsService, location)
	scanner := reminder.NewScanner(appointmentRepo, logRepo, notificationService, location, cfg.TwoHourTolerance, cfg.AtTimeTolerance)

	// Provision the recurring scan schedule if the queue target is configured
	if cfg.SQSReminderScanQueueARN != "" && cfg.SchedulerRoleARN != "" {
		schedulerService := eventbridge.NewService(cfg, schedulerClient)
		if err := schedulerService.EnsureScanSchedule(); err != nil {
			log.Printf("Failed to ensure reminder scan schedule: %v", err)
		}
	} else {
		log.Println("Reminder scan queue ARN or scheduler role ARN not configured, skipping schedule provisioning")
	}

	// Start Kafka consumers in a separate goroutine if Kafka URL is configured
	if cfg.KafkaURL != "" {
		log.Printf("Starting booking consumer for topics (created: %s, cancelled: %s) at %s",
			cfg.AppointmentsCreatedKafkaTopic, cfg.AppointmentsCancelledKafkaTopic, cfg.KafkaURL)
		bookingConsumer := kafka.NewBookingConsumer(cfg, notificationService)
		var wg sync.WaitGroup
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := bookingConsumer.StartConsuming(ctx); err != nil {
				log.Printf("Error in booking consumer: %v", err)
			}
		}()
		// We don't wait for wg.Wait() so the SQS processing can continue
	} else {
		log.Println("Kafka URL not configured, skipping Kafka consumers setup")
	}

	// Start reminder scan processor in a separate goroutine if queue URL is configured
	if cfg.SQSReminderScanQueueURL != "" {
		log.Printf("Starting reminder scan processor for queue: %s", cfg.SQSReminderScanQueueURL)
		scanProcessor := reminder.NewProcessor(sqsClient, cfg, scanner)
		var scanWg sync.WaitGroup
		scanWg.Add(1)
		go func() {
			defer scanWg.Done()
			err := scanProcessor.ProcessMessages(context.Background())
			if err != nil {
				log.Printf("Error processing reminder scan messages: %v", err)
			}
		}()
		// We don't wait for scanWg.Wait() so other processing can continue
	} else {
		log.Println("Reminder scan queue URL not configured, skipping scan processor setup")
	}

	// Set up the HTTP server for the notification API
	setupHTTPServer(cfg, scanner, notificationService, emailService, smsService, logRepo, dbService)
}

// setupHTTPServer configures and starts the HTTP server
func setupHTTPServer(cfg config.Config, scanner *reminder.Scanner,
	notificationService *services.NotificationService, emailService *services.EmailService,
	smsService *services.SMSService, logRepo *services.NotificationLogRepository,
	dbService *services.DatabaseService) {
	router := mux.NewRouter()

	// Apply CORS middleware to all routes
	router.Use(auth.CORSMiddleware(cfg))

	reminderHandler := handlers.NewReminderHandler(scanner, cfg)
	notificationHandler := handlers.NewNotificationHandler(notificationService, emailService, smsService, logRepo, cfg)

	// Cron trigger endpoint, guarded by the shared cron secret
	cronRouter := router.PathPrefix("/api/notifications/cron").Subrouter()
	cronRouter.Use(auth.CronAuthMiddleware(cfg))
	cronRouter.HandleFunc("/send-reminders", reminderHandler.HandleSendReminders).Methods("GET")

	// Direct dispatch API for internal service callers
	apiRouter := router.PathPrefix("/api/notifications/v1").Subrouter()
	apiRouter.Use(auth.APIKeyMiddleware(cfg))
	apiRouter.HandleFunc("/send", notificationHandler.HandleSend).Methods("POST")
	apiRouter.HandleFunc("/test", notificationHandler.HandleTest).Methods("POST")

	// Admin endpoints for notification log inspection with additional middleware
	adminRouter := router.PathPrefix("/api/notifications/admin/v1").Subrouter()
	adminRouter.Use(auth.AdminMiddleware(cfg))
	adminRouter.HandleFunc("/log", notificationHandler.HandleRecentLog).Methods("GET")
	adminRouter.HandleFunc("/log/{appointmentId}", notificationHandler.HandleAppointmentLog).Methods("GET")

	// Create health handler for health check endpoints
	healthHandler := handlers.NewHealthHandler(dbService)

	// Healthcheck endpoints (no authentication required)
	router.HandleFunc("/api/notifications/health", healthHandler.HandleHealth).Methods("GET")

	// K8s probe endpoints
	router.HandleFunc("/healthz", healthHandler.HandleHealth).Methods("GET")
	router.HandleFunc("/readyz", healthHandler.HandleReadiness).Methods("GET")
	router.HandleFunc("/livez", healthHandler.HandleLiveness).Methods("GET")

	serverAddr := cfg.ServerHost + ":" + cfg.ServerPort
	log.Printf("Starting HTTP server on %s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	log.Fatal(server.ListenAndServe())
}
