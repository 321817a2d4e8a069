package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cathealth/cathealth-backend/internal/data/repos"
	"github.com/cathealth/cathealth-backend/internal/domain/ailog"
	"github.com/cathealth/cathealth-backend/internal/domain/diagnosis"
	"github.com/cathealth/cathealth-backend/internal/pkg/logger"
	"github.com/cathealth/cathealth-backend/internal/platform/apierr"
	"github.com/cathealth/cathealth-backend/internal/platform/envutil"
	"github.com/cathealth/cathealth-backend/internal/platform/openai"
)

// DiagnoseInput is the symptom report submitted by an owner. ImageDataURI is
// an optional data: URI of a photo of the affected area.
type DiagnoseInput struct {
	PetName      string
	PetAge       string
	Symptoms     string
	ImageDataURI string
}

// DiagnosisService produces a preliminary assessment from symptoms and an
// optional photo. It requires no authentication.
type DiagnosisService interface {
	Diagnose(ctx context.Context, ident *Identity, in DiagnoseInput) (*diagnosis.Report, error)
}

type diagnosisService struct {
	db       *gorm.DB
	log      *logger.Logger
	ai       openai.Client
	callRepo repos.CallLogRepo
	model    string
}

func NewDiagnosisService(
	db *gorm.DB,
	log *logger.Logger,
	ai openai.Client,
	callRepo repos.CallLogRepo,
) DiagnosisService {
	serviceLog := log.With("service", "DiagnosisService")
	return &diagnosisService{
		db:       db,
		log:      serviceLog,
		ai:       ai,
		callRepo: callRepo,
		model:    envutil.String("OPENAI_MODEL", "gpt-4o"),
	}
}

func (ds *diagnosisService) Diagnose(ctx context.Context, ident *Identity, in DiagnoseInput) (*diagnosis.Report, error) {
	hasImage := strings.TrimSpace(in.ImageDataURI) != ""
	if !hasImage && strings.TrimSpace(in.Symptoms) == "" {
		return nil, apierr.BadRequest(apierr.CodeValidation, fmt.Errorf("either an image or symptoms description is required"))
	}

	var userID *uuid.UUID
	if ident != nil {
		userID = &ident.UserID
	}

	system := buildDiagnosisSystemPrompt(hasImage)
	user := buildDiagnosisUserPrompt(in.PetName, in.PetAge, in.Symptoms, hasImage)

	start := time.Now()
	var (
		content string
		usage   openai.Usage
		err     error
	)
	if hasImage {
		images := []openai.ImageInput{{ImageURL: in.ImageDataURI}}
		content, usage, err = ds.ai.GenerateTextWithImages(ctx, system, user, images)
	} else {
		content, usage, err = ds.ai.GenerateText(ctx, system, user)
	}
	ds.recordCall(ctx, userID, ailog.KindDiagnosisNarrative, start, usage, err)
	if err != nil {
		return nil, apierr.Upstream(fmt.Errorf("diagnosis generation: %w", err))
	}

	start = time.Now()
	dataText, usage, err := ds.ai.GenerateText(ctx, diagnosisDataSystemPrompt, buildDiagnosisDataPrompt(content))
	ds.recordCall(ctx, userID, ailog.KindDiagnosisData, start, usage, err)
	if err != nil {
		return nil, apierr.Upstream(fmt.Errorf("diagnosis data generation: %w", err))
	}

	var data diagnosis.Data
	if uErr := json.Unmarshal([]byte(dataText), &data); uErr != nil {
		ds.log.Warn("Diagnosis data unparseable, using fallback", "error", uErr)
		data = diagnosis.FallbackData()
	}

	return &diagnosis.Report{Content: content, Data: data}, nil
}

func (ds *diagnosisService) recordCall(ctx context.Context, userID *uuid.UUID, kind string, start time.Time, usage openai.Usage, callErr error) {
	entry := &ailog.CallLog{
		UserID:       userID,
		Kind:         kind,
		Model:        ds.model,
		DurationMS:   time.Since(start).Milliseconds(),
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		Success:      callErr == nil,
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	}
	if err := ds.callRepo.Create(ctx, nil, entry); err != nil {
		ds.log.Warn("AI call log write failed", "kind", kind, "error", err)
	}
}
