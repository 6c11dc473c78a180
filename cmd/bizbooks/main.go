package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bizbooks/internal/api"
	"bizbooks/internal/api/handlers"
	"bizbooks/internal/repository"
	"bizbooks/internal/service"
	"bizbooks/pkg/auth"
	"bizbooks/pkg/config"
	"bizbooks/pkg/logger"
	"bizbooks/pkg/postgres"

	"go.uber.org/zap"
)

// @title BizBooks API
// @version 1.0
// @description Bookkeeping service: bank statement extraction, review and ledger persistence for small businesses
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@bizbooks.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting BizBooks service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	companyRepo := repository.NewCompanyRepository(db, appLogger)
	statementRepo := repository.NewStatementRepository(db, appLogger)
	ledgerRepo := repository.NewLedgerRepository(db, appLogger)
	billRepo := repository.NewBillRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize services
	authService := service.NewAuthService(userRepo, companyRepo, jwtManager, appLogger)

	// Without a GigaChat key the server still runs: the sample statement path
	// works, real document extraction reports a configuration error.
	var generator service.DocumentGenerator
	visionService, err := service.NewVisionService(&cfg.GigaChat, appLogger)
	if err != nil {
		var configErr *service.ConfigurationError
		if !errors.As(err, &configErr) {
			appLogger.Fatal("Failed to initialize vision service", zap.Error(err))
		}
		appLogger.Warn("Vision service disabled", zap.Error(err))
	} else {
		generator = visionService
		defer visionService.Close()
	}

	intakeService := service.NewIntakeService(cfg.Upload.MaxSizeBytes, appLogger)
	extractionService := service.NewExtractionService(generator, appLogger)
	reviewBuffer := service.NewReviewBuffer(appLogger)

	statementService := service.NewStatementService(intakeService, extractionService, reviewBuffer, statementRepo, ledgerRepo, companyRepo, appLogger)
	billService := service.NewBillService(billRepo, ledgerRepo, companyRepo, appLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	statementHandler := handlers.NewStatementHandler(statementService, appLogger)
	billHandler := handlers.NewBillHandler(billService, appLogger)

	// Setup router
	app := api.SetupRouter(authHandler, statementHandler, billHandler, jwtManager, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
