package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/cathealth/cathealth-backend/internal/domain/ailog"
	"github.com/cathealth/cathealth-backend/internal/domain/cat"
	"github.com/cathealth/cathealth-backend/internal/domain/wellness"
	"github.com/cathealth/cathealth-backend/internal/platform/apierr"
)

func newPlanService(t *testing.T, ai *fakeAI, planRepo *fakePlanRepo, callRepo *fakeCallRepo) PlanService {
	t.Helper()
	return NewPlanService(nil, testLogger(t), ai, planRepo, callRepo)
}

func TestGenerateRequiresIdentity(t *testing.T) {
	svc := newPlanService(t, &fakeAI{}, &fakePlanRepo{}, &fakeCallRepo{})

	_, err := svc.Generate(context.Background(), nil, cat.Profile{Name: "Misha"})
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeAuthRequired {
		t.Fatalf("expected auth required, got %v", err)
	}
}

func TestGenerateRequiresCatName(t *testing.T) {
	svc := newPlanService(t, &fakeAI{}, &fakePlanRepo{}, &fakeCallRepo{})

	_, err := svc.Generate(context.Background(), testIdentity(), cat.Profile{})
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateFallbackOnUnparseableData(t *testing.T) {
	ai := &fakeAI{responses: []string{
		"## Overview\nMisha is in fine shape.",
		"this is not json at all",
	}}
	planRepo := &fakePlanRepo{}
	callRepo := &fakeCallRepo{}
	svc := newPlanService(t, ai, planRepo, callRepo)

	plan, err := svc.Generate(context.Background(), testIdentity(), cat.Profile{Name: "Misha"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if plan.Content != "## Overview\nMisha is in fine shape." {
		t.Fatalf("narrative altered: %q", plan.Content)
	}
	if !reflect.DeepEqual(plan.Data, wellness.FallbackPlanData()) {
		t.Fatalf("expected verbatim fallback data, got %+v", plan.Data)
	}
	if len(planRepo.upserted) != 1 || planRepo.upserted[0].CatName != "Misha" {
		t.Fatalf("plan row not persisted: %+v", planRepo.upserted)
	}
	if len(callRepo.entries) != 2 {
		t.Fatalf("expected 2 audit rows, got %d", len(callRepo.entries))
	}
	if callRepo.entries[0].Kind != ailog.KindWellnessNarrative || callRepo.entries[1].Kind != ailog.KindWellnessData {
		t.Fatalf("audit kinds wrong: %s, %s", callRepo.entries[0].Kind, callRepo.entries[1].Kind)
	}
}

func TestGenerateParsesStructuredData(t *testing.T) {
	ai := &fakeAI{responses: []string{
		"## Overview\nA thorough plan.",
		`{"healthRecommendations":{"nutrition":"Wet food twice daily","exercise":"20 minutes of play","preventiveCare":"Annual exam","environment":"Quiet resting spots"},"behaviorTraining":{"scratching":"Provide posts"},"enrichmentPlan":{"play":"Wand toys","toys":"Puzzle feeders","environment":"Cat tree","social":"Gentle handling","rest":"Warm bed"},"followUpSchedule":[{"week":1,"tasks":["Weigh in"]}]}`,
	}}
	svc := newPlanService(t, ai, &fakePlanRepo{}, &fakeCallRepo{})

	plan, err := svc.Generate(context.Background(), testIdentity(), cat.Profile{Name: "Misha"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if plan.Data.HealthRecommendations.Nutrition != "Wet food twice daily" {
		t.Fatalf("structured data not parsed: %+v", plan.Data)
	}
	if plan.Data.BehaviorTraining["scratching"] != "Provide posts" {
		t.Fatalf("behavior training lost: %+v", plan.Data.BehaviorTraining)
	}
	if len(plan.Data.FollowUpSchedule) != 1 || plan.Data.FollowUpSchedule[0].Week != 1 {
		t.Fatalf("follow-up schedule lost: %+v", plan.Data.FollowUpSchedule)
	}
}

func TestGenerateUpstreamFailure(t *testing.T) {
	ai := &fakeAI{errs: []error{errors.New("model offline")}}
	planRepo := &fakePlanRepo{}
	callRepo := &fakeCallRepo{}
	svc := newPlanService(t, ai, planRepo, callRepo)

	_, err := svc.Generate(context.Background(), testIdentity(), cat.Profile{Name: "Misha"})
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeUpstream {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if len(planRepo.upserted) != 0 {
		t.Fatalf("failed generation must not persist")
	}
	if len(callRepo.entries) != 1 || callRepo.entries[0].Success {
		t.Fatalf("failed call should be audited as unsuccessful: %+v", callRepo.entries)
	}
}

func TestGenerateSurvivesPersistFailure(t *testing.T) {
	ai := &fakeAI{responses: []string{"## Overview\nPlan.", "{}"}}
	planRepo := &fakePlanRepo{fail: errors.New("db down")}
	svc := newPlanService(t, ai, planRepo, &fakeCallRepo{})

	plan, err := svc.Generate(context.Background(), testIdentity(), cat.Profile{Name: "Misha"})
	if err != nil {
		t.Fatalf("persist failure must not fail generation: %v", err)
	}
	if plan == nil || plan.Content == "" {
		t.Fatalf("plan missing despite successful generation")
	}
}

func TestGeneratePromptsCarryProfileDetails(t *testing.T) {
	ai := &fakeAI{responses: []string{"narrative", "{}"}}
	svc := newPlanService(t, ai, &fakePlanRepo{}, &fakeCallRepo{})

	profile := cat.Profile{
		Name:           "Misha",
		Age:            "3 years",
		BehaviorIssues: []string{"scratching furniture"},
	}
	if _, err := svc.Generate(context.Background(), testIdentity(), profile); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(ai.users) < 1 || !strings.Contains(ai.users[0], "Misha") || !strings.Contains(ai.users[0], "scratching furniture") {
		t.Fatalf("profile details missing from prompt: %q", ai.users[0])
	}
	if len(ai.users) < 2 || !strings.Contains(ai.users[1], "narrative") {
		t.Fatalf("data prompt should embed the narrative: %q", ai.users[1])
	}
}
