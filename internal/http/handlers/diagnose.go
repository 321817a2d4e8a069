package handlers

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cathealth/cathealth-backend/internal/http/response"
	"github.com/cathealth/cathealth-backend/internal/pkg/ctxutil"
	"github.com/cathealth/cathealth-backend/internal/pkg/logger"
	"github.com/cathealth/cathealth-backend/internal/platform/apierr"
	"github.com/cathealth/cathealth-backend/internal/services"
)

const maxImageBytes = 10 << 20

type DiagnoseHandler struct {
	log *logger.Logger
	svc services.DiagnosisService
}

func NewDiagnoseHandler(log *logger.Logger, svc services.DiagnosisService) *DiagnoseHandler {
	return &DiagnoseHandler{log: log.With("Handler", "DiagnoseHandler"), svc: svc}
}

// Diagnose accepts a multipart form with the cat's name, optional age, a
// symptoms description, and an optional photo.
func (h *DiagnoseHandler) Diagnose(c *gin.Context) {
	in := services.DiagnoseInput{
		PetName:  c.PostForm("petName"),
		PetAge:   c.PostForm("petAge"),
		Symptoms: c.PostForm("symptoms"),
	}

	imageURI, err := imageDataURI(c)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	in.ImageDataURI = imageURI

	report, err := h.svc.Diagnose(c.Request.Context(), identityFromContext(c), in)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, report)
}

// imageDataURI reads the optional "image" part into a base64 data URI; an
// absent part is not an error.
func imageDataURI(c *gin.Context) (string, error) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return "", nil
		}
		return "", apierr.BadRequest(apierr.CodeValidation, fmt.Errorf("reading image upload: %w", err))
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		return "", apierr.BadRequest(apierr.CodeValidation, fmt.Errorf("image exceeds the %dMB limit", maxImageBytes>>20))
	}

	raw, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return "", apierr.BadRequest(apierr.CodeValidation, fmt.Errorf("reading image upload: %w", err))
	}
	if len(raw) > maxImageBytes {
		return "", apierr.BadRequest(apierr.CodeValidation, fmt.Errorf("image exceeds the %dMB limit", maxImageBytes>>20))
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(raw)
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(raw)), nil
}

func identityFromContext(c *gin.Context) *services.Identity {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		return nil
	}
	return &services.Identity{UserID: rd.UserID, Email: rd.UserEmail}
}
