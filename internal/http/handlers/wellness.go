package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cathealth/cathealth-backend/internal/document"
	"github.com/cathealth/cathealth-backend/internal/domain/cat"
	"github.com/cathealth/cathealth-backend/internal/http/response"
	"github.com/cathealth/cathealth-backend/internal/pkg/logger"
	"github.com/cathealth/cathealth-backend/internal/platform/apierr"
	"github.com/cathealth/cathealth-backend/internal/services"
)

type WellnessHandler struct {
	log   *logger.Logger
	plans services.PlanService
	email services.EmailService
	docs  *document.Synthesizer
}

func NewWellnessHandler(log *logger.Logger, plans services.PlanService, email services.EmailService, docs *document.Synthesizer) *WellnessHandler {
	return &WellnessHandler{
		log:   log.With("Handler", "WellnessHandler"),
		plans: plans,
		email: email,
		docs:  docs,
	}
}

// Generate runs the two-call plan generation for the posted profile.
func (h *WellnessHandler) Generate(c *gin.Context) {
	ident := identityFromContext(c)
	profile := profileFromForm(c)

	plan, err := h.plans.Generate(c.Request.Context(), ident, profile)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"wellnessPlan":     plan.Content,
		"wellnessPlanData": plan.Data,
		"isAuthenticated":  ident != nil,
	})
}

type emailRequest struct {
	UserEmail    string `json:"userEmail"`
	WellnessPlan string `json:"wellnessPlan"`
	PlanID       string `json:"planId"`
	CatName      string `json:"catName"`
}

// Email sends the plan to the owner with the PDF attached.
func (h *WellnessHandler) Email(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAppError(c, apierr.BadRequest(apierr.CodeValidation, fmt.Errorf("invalid request body: %w", err)))
		return
	}

	in := services.SendPlanInput{
		UserEmail:   req.UserEmail,
		CatName:     req.CatName,
		PlanContent: req.WellnessPlan,
		AttachPDF:   true,
	}
	if req.PlanID != "" {
		id, err := uuid.Parse(req.PlanID)
		if err != nil {
			response.RespondAppError(c, apierr.BadRequest(apierr.CodeValidation, fmt.Errorf("invalid plan id")))
			return
		}
		in.PlanID = id
	}

	msg, err := h.email.SendPlan(c.Request.Context(), identityFromContext(c), in)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "message": msg})
}

type exportRequest struct {
	WellnessPlan string `json:"wellnessPlan"`
	CatName      string `json:"catName"`
}

// Export returns the plan as a downloadable PDF.
func (h *WellnessHandler) Export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAppError(c, apierr.BadRequest(apierr.CodeValidation, fmt.Errorf("invalid request body: %w", err)))
		return
	}

	catName := req.CatName
	if catName == "" {
		catName = "Your Cat"
	}

	pdf, err := h.docs.RenderPlanPDF(catName, req.WellnessPlan)
	if err != nil {
		response.RespondAppError(c, apierr.Internal(fmt.Errorf("rendering pdf: %w", err)))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", document.PlanFilename(catName)))
	c.Data(200, "application/pdf", pdf)
}

// ListPlans returns the caller's saved plans, most recent first.
func (h *WellnessHandler) ListPlans(c *gin.Context) {
	rows, err := h.plans.ListSaved(c.Request.Context(), identityFromContext(c))
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"plans": rows})
}

// GetPlan returns one saved plan by cat name.
func (h *WellnessHandler) GetPlan(c *gin.Context) {
	row, err := h.plans.GetSaved(c.Request.Context(), identityFromContext(c), c.Param("catName"))
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"plan": row})
}

func profileFromForm(c *gin.Context) cat.Profile {
	return cat.Profile{
		Name:               c.PostForm("catName"),
		Age:                c.PostForm("catAge"),
		Breed:              c.PostForm("catBreed"),
		Sex:                c.PostForm("catSex"),
		Neutered:           c.PostForm("catNeutered"),
		Weight:             c.PostForm("catWeight"),
		Diet:               c.PostForm("catDiet"),
		Feeding:            c.PostForm("catFeeding"),
		Activity:           c.PostForm("catActivity"),
		Environment:        c.PostForm("catEnvironment"),
		BehaviorIssues:     c.PostFormArray("behaviorIssues"),
		BehaviorDetails:    c.PostForm("behaviorDetails"),
		Training:           c.PostForm("catTraining"),
		PlayTime:           c.PostForm("playTime"),
		FavoriteActivities: c.PostFormArray("favoriteActivities"),
		HomeEnrichment:     c.PostFormArray("homeEnrichment"),
		OtherPets:          c.PostForm("otherPets"),
		PrimaryGoal:        c.PostForm("primaryGoal"),
	}
}
