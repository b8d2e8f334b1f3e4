package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/database"
	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/clients/aiclient"
	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/clients/consentapi"
	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/clients/convoapi"
	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/clients/ragclient"
	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/config"
	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/handlers"
	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/jobs"
	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/models"
	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/routes"
	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/services"
	"github.com/cabrero10001/Back-ms-Sofia-IA-sub000/internal/storage"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Context persistence: a dedicated service when configured, otherwise the
	// built-in store (memory or PostgreSQL)
	var convoClient convoapi.Client
	var store storage.Store

	if cfg.ConversationServiceURL != "" {
		log.Printf("🔗 Using conversation service at %s", cfg.ConversationServiceURL)
		convoClient = convoapi.NewHTTPClient(cfg.ConversationServiceURL, cfg.UpstreamTimeout)
	} else if cfg.UseMemoryStore {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
		storage.SetStore(store)
		convoClient = convoapi.NewLocalClient(store)
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect(cfg)

		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.Contact{},
			&models.Conversation{},
			&models.ChatMessage{},
			&models.ContextVersion{},
			&models.ConsentRecord{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		storage.SetStore(store)
		convoClient = convoapi.NewLocalClient(store)
		log.Println("✅ Using PostgreSQL database storage")
	}

	// Consent gate: external service, built-in store, or disabled
	var consentChecker consentapi.Checker
	switch {
	case cfg.ConsentServiceURL != "":
		consentChecker = consentapi.NewHTTPClient(cfg.ConsentServiceURL, cfg.UpstreamTimeout)
		log.Printf("🔗 Consent gate backed by %s", cfg.ConsentServiceURL)
	case store != nil:
		consentChecker = consentapi.NewLocalChecker(store, cfg.TenantID)
		log.Println("✅ Consent gate backed by local storage")
	default:
		log.Println("⚠️  Consent gate disabled (no consent backend configured)")
	}

	// Twilio WhatsApp transport. Missing credentials degrade to webchat-only.
	var twilioService *services.TwilioService
	var transportSession services.TransportSession

	twilioService, err = services.NewTwilioService(cfg)
	if err != nil {
		log.Printf("⚠️  Warning: Twilio service not initialized: %v", err)
		twilioService = nil
	} else {
		log.Println("✅ Twilio service initialized")
		services.SetTwilioService(twilioService)

		session := services.NewTwilioSession(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioSandboxCode)
		session.OnConnectionStateChange(func(state string) {
			log.Printf("📡 Transport session state: %s", state)
		})
		go func() {
			if err := session.Connect(context.Background()); err != nil {
				log.Printf("❌ Transport session failed to connect: %v", err)
			}
		}()
		transportSession = session
	}

	// Decision engine
	sessionManager := services.NewSessionManager(cfg.ConversationTTL)
	dedupTracker := services.NewDedupTracker(cfg.DedupWindow)

	ragClient := ragclient.NewClient(cfg.RAGServiceURL, cfg.UpstreamTimeout)
	answerService := services.NewAnswerService(ragClient, cfg.UpstreamTimeout)

	var strategy services.DecisionStrategy
	if cfg.DecisionStrategy == config.StrategyClassify {
		aiClient := aiclient.NewClient(cfg.AIServiceURL, cfg.UpstreamTimeout)
		strategy = services.NewClassifyStrategy(aiClient, answerService, cfg.AnsweringEnabled)
	} else {
		strategy = services.NewStatefulStrategy(sessionManager, answerService, cfg.AnsweringEnabled)
	}
	log.Printf("🧠 Decision strategy: %s (answering enabled: %v)", strategy.Name(), cfg.AnsweringEnabled)

	orchestrator := services.NewOrchestratorService(cfg.TenantID, convoClient, consentChecker, strategy)

	// Housekeeping
	maintenanceJob := jobs.NewMaintenanceJob(sessionManager, dedupTracker, time.Minute)
	maintenanceJob.Start()

	log.Println("✅ All services initialized")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "SOFIA Orchestrator v" + version,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-Id",
		AllowMethods: "GET, POST, PATCH, DELETE, OPTIONS",
	}))

	routes.SetupRoutes(app, cfg, &routes.Handlers{
		Health:       handlers.NewHealthHandler(version, transportSession),
		Orchestrator: handlers.NewOrchestratorHandler(orchestrator),
		Webchat:      handlers.NewWebchatHandler(cfg, orchestrator),
		WhatsApp:     handlers.NewWhatsAppHandler(cfg, orchestrator, twilioService, dedupTracker),
		Admin:        handlers.NewAdminHandler(cfg.TenantID, sessionManager, dedupTracker, convoClient, transportSession),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("🚀 SOFIA Orchestrator listening on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("Server failed:", err)
		}
	}()

	<-quit
	log.Println("🛑 Shutting down...")
	maintenanceJob.Stop()
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("👋 Goodbye")
}
