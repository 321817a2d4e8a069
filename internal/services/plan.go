package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cathealth/cathealth-backend/internal/data/repos"
	"github.com/cathealth/cathealth-backend/internal/domain/ailog"
	"github.com/cathealth/cathealth-backend/internal/domain/cat"
	"github.com/cathealth/cathealth-backend/internal/domain/wellness"
	"github.com/cathealth/cathealth-backend/internal/pkg/logger"
	"github.com/cathealth/cathealth-backend/internal/platform/apierr"
	"github.com/cathealth/cathealth-backend/internal/platform/envutil"
	"github.com/cathealth/cathealth-backend/internal/platform/openai"
)

// PlanService generates a personalized wellness plan for an authenticated
// owner and persists one plan row per (user, cat name).
type PlanService interface {
	Generate(ctx context.Context, ident *Identity, profile cat.Profile) (*wellness.GeneratedPlan, error)
	GetSaved(ctx context.Context, ident *Identity, catName string) (*wellness.Plan, error)
	ListSaved(ctx context.Context, ident *Identity) ([]*wellness.Plan, error)
}

type planService struct {
	db       *gorm.DB
	log      *logger.Logger
	ai       openai.Client
	planRepo repos.PlanRepo
	callRepo repos.CallLogRepo
	model    string
}

func NewPlanService(
	db *gorm.DB,
	log *logger.Logger,
	ai openai.Client,
	planRepo repos.PlanRepo,
	callRepo repos.CallLogRepo,
) PlanService {
	serviceLog := log.With("service", "PlanService")
	return &planService{
		db:       db,
		log:      serviceLog,
		ai:       ai,
		planRepo: planRepo,
		callRepo: callRepo,
		model:    envutil.String("OPENAI_MODEL", "gpt-4o"),
	}
}

func (ps *planService) Generate(ctx context.Context, ident *Identity, profile cat.Profile) (*wellness.GeneratedPlan, error) {
	if ident == nil {
		return nil, apierr.Unauthorized(fmt.Errorf("authentication required to generate a wellness plan"))
	}
	if !profile.HasName() {
		return nil, apierr.BadRequest(apierr.CodeValidation, fmt.Errorf("cat name is required"))
	}

	ps.log.Info("Generating wellness plan", "user_email", ident.Email, "cat_name", profile.Name)

	// First call: the narrative plan.
	start := time.Now()
	content, usage, err := ps.ai.GenerateText(ctx, wellnessSystemPrompt, buildWellnessUserPrompt(profile))
	ps.recordCall(ctx, &ident.UserID, ailog.KindWellnessNarrative, start, usage, err)
	if err != nil {
		return nil, apierr.Upstream(fmt.Errorf("wellness plan generation: %w", err))
	}

	// Second call: structured data derived from the narrative. Bad JSON from
	// the model falls back to generic structured data rather than failing.
	start = time.Now()
	dataText, usage, err := ps.ai.GenerateText(ctx, wellnessDataSystemPrompt, buildWellnessDataPrompt(content))
	ps.recordCall(ctx, &ident.UserID, ailog.KindWellnessData, start, usage, err)
	if err != nil {
		return nil, apierr.Upstream(fmt.Errorf("wellness plan data generation: %w", err))
	}

	var data wellness.PlanData
	if uErr := json.Unmarshal([]byte(dataText), &data); uErr != nil {
		ps.log.Warn("Wellness plan data unparseable, using fallback", "error", uErr)
		data = wellness.FallbackPlanData()
	}

	plan := &wellness.GeneratedPlan{Content: content, Data: data}
	ps.persist(ctx, ident, profile, plan)
	return plan, nil
}

// persist is best-effort: a storage failure is logged but the generated plan
// is still returned to the caller.
func (ps *planService) persist(ctx context.Context, ident *Identity, profile cat.Profile, plan *wellness.GeneratedPlan) {
	catData, err := json.Marshal(profile)
	if err != nil {
		ps.log.Error("Wellness plan cat data marshal failed", "error", err)
		return
	}
	planData, err := json.Marshal(plan.Data)
	if err != nil {
		ps.log.Error("Wellness plan data marshal failed", "error", err)
		return
	}

	row := &wellness.Plan{
		UserID:      ident.UserID,
		UserEmail:   ident.Email,
		CatName:     profile.Name,
		CatData:     datatypes.JSON(catData),
		PlanContent: plan.Content,
		PlanData:    datatypes.JSON(planData),
	}
	if _, err := ps.planRepo.Upsert(ctx, nil, row); err != nil {
		ps.log.Error("Wellness plan save failed", "user_id", ident.UserID, "cat_name", profile.Name, "error", err)
	}
}

func (ps *planService) GetSaved(ctx context.Context, ident *Identity, catName string) (*wellness.Plan, error) {
	if ident == nil {
		return nil, apierr.Unauthorized(fmt.Errorf("authentication required"))
	}
	plan, err := ps.planRepo.GetByUserAndCat(ctx, nil, ident.UserID, catName)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apierr.New(404, apierr.CodeNotFound, fmt.Errorf("no plan for %q", catName))
		}
		return nil, apierr.Internal(err)
	}
	return plan, nil
}

func (ps *planService) ListSaved(ctx context.Context, ident *Identity) ([]*wellness.Plan, error) {
	if ident == nil {
		return nil, apierr.Unauthorized(fmt.Errorf("authentication required"))
	}
	list, err := ps.planRepo.ListByUser(ctx, nil, ident.UserID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return list, nil
}

func (ps *planService) recordCall(ctx context.Context, userID *uuid.UUID, kind string, start time.Time, usage openai.Usage, callErr error) {
	entry := &ailog.CallLog{
		UserID:       userID,
		Kind:         kind,
		Model:        ps.model,
		DurationMS:   time.Since(start).Milliseconds(),
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		Success:      callErr == nil,
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	}
	if err := ps.callRepo.Create(ctx, nil, entry); err != nil {
		ps.log.Warn("AI call log write failed", "kind", kind, "error", err)
	}
}
