package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/cathealth/cathealth-backend/internal/http/middleware"
	"github.com/cathealth/cathealth-backend/internal/http/response"
	"github.com/cathealth/cathealth-backend/internal/pkg/logger"
	"github.com/cathealth/cathealth-backend/internal/platform/apierr"
	"github.com/cathealth/cathealth-backend/internal/wizard"
)

type WizardHandler struct {
	log     *logger.Logger
	manager *wizard.Manager
}

func NewWizardHandler(log *logger.Logger, manager *wizard.Manager) *WizardHandler {
	return &WizardHandler{log: log.With("Handler", "WizardHandler"), manager: manager}
}

// session resolves the caller's wizard session and syncs its auth state with
// the token on this request, so sign-in and sign-out are observed as they
// happen.
func (h *WizardHandler) session(c *gin.Context) (*wizard.Session, bool) {
	sid := c.GetHeader("X-Wizard-Session")
	if sid == "" {
		sid = c.Query("session")
	}
	if sid == "" {
		response.RespondAppError(c, apierr.BadRequest(apierr.CodeValidation, fmt.Errorf("missing wizard session id")))
		return nil, false
	}

	s := h.manager.Session(sid)
	s.Auth.SetToken(middleware.ExtractToken(c))
	return s, true
}

func (h *WizardHandler) GetState(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	response.RespondOK(c, s.Machine.State(c.Request.Context()))
}

// UpdateProfile merges the posted fields onto the accumulated profile;
// fields absent from the body keep their value.
func (h *WizardHandler) UpdateProfile(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	profile := s.Machine.Profile()
	if err := c.ShouldBindJSON(&profile); err != nil {
		response.RespondAppError(c, apierr.BadRequest(apierr.CodeValidation, fmt.Errorf("invalid profile body: %w", err)))
		return
	}
	s.Machine.SetProfile(profile)
	response.RespondOK(c, s.Machine.State(c.Request.Context()))
}

func (h *WizardHandler) Next(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Machine.Next(c.Request.Context()); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, s.Machine.State(c.Request.Context()))
}

func (h *WizardHandler) Prev(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Machine.Prev(c.Request.Context()); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, s.Machine.State(c.Request.Context()))
}

func (h *WizardHandler) Reset(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.Machine.Reset(c.Request.Context())
	response.RespondOK(c, s.Machine.State(c.Request.Context()))
}

func (h *WizardHandler) Submit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if _, err := s.Machine.Submit(c.Request.Context()); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, s.Machine.State(c.Request.Context()))
}

// SignIn persists the wizard progress and returns the external sign-in URL
// carrying the resume marker.
func (h *WizardHandler) SignIn(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	response.RespondOK(c, gin.H{"signInUrl": s.Resume.SignIn(c.Request.Context())})
}

type resumeRequest struct {
	Marker string `json:"marker"`
}

// Resume consumes the single-use marker handed out by SignIn.
func (h *WizardHandler) Resume(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req resumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAppError(c, apierr.BadRequest(apierr.CodeValidation, fmt.Errorf("invalid request body: %w", err)))
		return
	}
	if err := s.Resume.Resume(c.Request.Context(), req.Marker); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, s.Machine.State(c.Request.Context()))
}
