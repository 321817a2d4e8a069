package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/cathealth/cathealth-backend/internal/http/handlers"
	httpMW "github.com/cathealth/cathealth-backend/internal/http/middleware"
	"github.com/cathealth/cathealth-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	DiagnoseHandler *httpH.DiagnoseHandler
	WellnessHandler *httpH.WellnessHandler
	WizardHandler   *httpH.WizardHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.CORS())
	r.Use(httpMW.AttachRequestContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLog(cfg.Log))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Diagnosis (public; identity attached when present so audit rows
		// can be attributed)
		if cfg.DiagnoseHandler != nil && cfg.AuthMiddleware != nil {
			api.POST("/diagnose", cfg.AuthMiddleware.OptionalAuth(), cfg.DiagnoseHandler.Diagnose)
		}

		// Wellness plans (the service reports AuthRequired when the
		// identity is missing at call time)
		if cfg.WellnessHandler != nil && cfg.AuthMiddleware != nil {
			api.POST("/wellness", cfg.AuthMiddleware.OptionalAuth(), cfg.WellnessHandler.Generate)
			api.POST("/wellness/email", cfg.AuthMiddleware.OptionalAuth(), cfg.WellnessHandler.Email)
			api.POST("/wellness/export", cfg.AuthMiddleware.RequireAuth(), cfg.WellnessHandler.Export)

			saved := api.Group("/wellness/plans")
			saved.Use(cfg.AuthMiddleware.RequireAuth())
			saved.GET("", cfg.WellnessHandler.ListPlans)
			saved.GET("/:catName", cfg.WellnessHandler.GetPlan)
		}

		// Wizard (session-scoped; auth state rides on each request's token)
		if cfg.WizardHandler != nil {
			api.GET("/wizard", cfg.WizardHandler.GetState)
			api.PUT("/wizard/profile", cfg.WizardHandler.UpdateProfile)
			api.POST("/wizard/next", cfg.WizardHandler.Next)
			api.POST("/wizard/prev", cfg.WizardHandler.Prev)
			api.POST("/wizard/reset", cfg.WizardHandler.Reset)
			api.POST("/wizard/submit", cfg.WizardHandler.Submit)
			api.POST("/wizard/signin", cfg.WizardHandler.SignIn)
			api.POST("/wizard/resume", cfg.WizardHandler.Resume)
		}
	}

	return r
}
