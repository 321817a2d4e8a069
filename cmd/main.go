package main

import (
	"fmt"
	"os"

	"github.com/cathealth/cathealth-backend/internal/data/db"
	"github.com/cathealth/cathealth-backend/internal/data/repos"
	"github.com/cathealth/cathealth-backend/internal/document"
	"github.com/cathealth/cathealth-backend/internal/formstate"
	httpapi "github.com/cathealth/cathealth-backend/internal/http"
	httpH "github.com/cathealth/cathealth-backend/internal/http/handlers"
	httpMW "github.com/cathealth/cathealth-backend/internal/http/middleware"
	"github.com/cathealth/cathealth-backend/internal/pkg/logger"
	"github.com/cathealth/cathealth-backend/internal/platform/envutil"
	"github.com/cathealth/cathealth-backend/internal/platform/openai"
	"github.com/cathealth/cathealth-backend/internal/platform/sendgrid"
	"github.com/cathealth/cathealth-backend/internal/services"
	"github.com/cathealth/cathealth-backend/internal/wizard"
)

func main() {
	// Logger
	logMode := envutil.String("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	planRepo := repos.NewPlanRepo(thePG, log)
	callLogRepo := repos.NewCallLogRepo(thePG, log)

	// Clients
	log.Info("Setting up clients from main...")
	openaiClient, err := openai.NewClient(log)
	if err != nil {
		log.Error("Could not init OpenAIClient", "error", err)
		os.Exit(1)
	}
	mailer, err := sendgrid.NewFromEnv(log)
	if err != nil {
		log.Error("Could not init SendGrid client", "error", err)
		os.Exit(1)
	}

	// Form state store (Redis when configured, in-process otherwise)
	store, err := formstate.NewStore(log)
	if err != nil {
		log.Error("Could not init form state store", "error", err)
		os.Exit(1)
	}

	// Services
	log.Info("Setting up services from main...")
	verifier, err := services.NewTokenVerifier(log, os.Getenv("JWT_SECRET"))
	if err != nil {
		log.Error("Could not init token verifier", "error", err)
		os.Exit(1)
	}
	synthesizer, err := document.NewSynthesizer(log)
	if err != nil {
		log.Error("Could not init document synthesizer", "error", err)
		os.Exit(1)
	}
	planService := services.NewPlanService(thePG, log, openaiClient, planRepo, callLogRepo)
	diagnosisService := services.NewDiagnosisService(thePG, log, openaiClient, callLogRepo)
	emailService := services.NewEmailService(log, mailer, planRepo, synthesizer)

	// Wizard sessions
	wizardManager := wizard.NewManager(log, verifier, planService, store)

	// Handlers
	log.Info("Setting up handlers from main...")
	healthHandler := httpH.NewHealthHandler()
	diagnoseHandler := httpH.NewDiagnoseHandler(log, diagnosisService)
	wellnessHandler := httpH.NewWellnessHandler(log, planService, emailService, synthesizer)
	wizardHandler := httpH.NewWizardHandler(log, wizardManager)

	// Middleware
	authMiddleware := httpMW.NewAuthMiddleware(log, verifier)

	// Router
	log.Info("Setting up router from main...")
	server := httpapi.NewServer(httpapi.RouterConfig{
		Log:             log,
		AuthMiddleware:  authMiddleware,
		DiagnoseHandler: diagnoseHandler,
		WellnessHandler: wellnessHandler,
		WizardHandler:   wizardHandler,
		HealthHandler:   healthHandler,
	})

	port := envutil.String("PORT", "8080")
	log.Info("Server listening", "port", port)
	if err := server.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
