package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"easy-invoice.backend/internal/config"
	"easy-invoice.backend/internal/infrastructure/gateway"
	"easy-invoice.backend/internal/infrastructure/jobs"
	"easy-invoice.backend/internal/infrastructure/models"
	"easy-invoice.backend/internal/infrastructure/repositories"
	"easy-invoice.backend/internal/interfaces/http/handlers"
	"easy-invoice.backend/internal/interfaces/http/middleware"
	"easy-invoice.backend/internal/usecases"
	"easy-invoice.backend/pkg/crypto"
	"easy-invoice.backend/pkg/googleauth"
	"easy-invoice.backend/pkg/logger"
	"easy-invoice.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis
	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	dsn := cfg.Database.URL()
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("⚠️ Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("✅ Connected to PostgreSQL via GORM")
	}

	// Initialize field encryption for bank account columns
	fieldCipher, err := crypto.NewFieldCipher(
		cfg.Security.FieldEncryptionKey,
		cfg.Security.EncryptionVersion,
		crypto.VersionV1, crypto.VersionV2,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize field encryption: %w", err)
	}
	models.SetFieldCipher(fieldCipher)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	invoiceRepo := repositories.NewInvoiceRepository(db)
	invoiceMeRepo := repositories.NewInvoiceMeRepository(db)
	paymentDetailsRepo := repositories.NewPaymentDetailsRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Initialize external gateways
	googleAuth := googleauth.NewService(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
	requestNetwork := gateway.NewRequestNetworkClient(cfg.RequestNetwork.BaseURL, cfg.RequestNetwork.APIKey)
	compliance := gateway.NewComplianceClient(cfg.Compliance.BaseURL, cfg.Compliance.APIKey)

	// Initialize usecases
	authUsecase := usecases.NewAuthUsecase(userRepo, sessionRepo, googleAuth, cfg.Session.TTL, cfg.Session.RenewWithin)
	invoiceUsecase := usecases.NewInvoiceUsecase(invoiceRepo, requestNetwork)
	invoiceMeUsecase := usecases.NewInvoiceMeUsecase(invoiceMeRepo, invoiceUsecase)
	paymentUsecase := usecases.NewPaymentUsecase(invoiceRepo, requestNetwork)
	complianceUsecase := usecases.NewComplianceUsecase(userRepo, paymentDetailsRepo, compliance, cfg.Compliance.StatusCache)
	webhookUsecase := usecases.NewWebhookUsecase(invoiceRepo, userRepo, paymentDetailsRepo, uow)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authUsecase, cfg.Server.FrontendURL, cfg.Session.TTL, cfg.Server.SecureCookies)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceUsecase)
	invoiceMeHandler := handlers.NewInvoiceMeHandler(invoiceMeUsecase)
	paymentHandler := handlers.NewPaymentHandler(paymentUsecase)
	complianceHandler := handlers.NewComplianceHandler(complianceUsecase)
	webhookHandler := handlers.NewWebhookHandler(webhookUsecase, cfg.RequestNetwork.WebhookSecret)

	authMiddleware := middleware.AuthMiddleware(authUsecase)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cleanupJob := jobs.NewSessionCleanupJob(sessionRepo)
	go cleanupJob.Start(ctx)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerRoutes(r, routeDeps{
		authHandler:       authHandler,
		invoiceHandler:    invoiceHandler,
		invoiceMeHandler:  invoiceMeHandler,
		paymentHandler:    paymentHandler,
		complianceHandler: complianceHandler,
		webhookHandler:    webhookHandler,
		authMiddleware:    authMiddleware,
	})

	// Print all registered routes for debugging
	log.Println("📋 Registered Routes:")
	for _, route := range r.Routes() {
		log.Printf("   %s %s", route.Method, route.Path)
	}

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		cleanupJob.Stop()
		cancel()
	}()

	// Start server
	log.Printf("🚀 Easy Invoice Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
