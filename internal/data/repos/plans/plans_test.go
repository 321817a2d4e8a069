package plans

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/cathealth/cathealth-backend/internal/domain"
	"github.com/cathealth/cathealth-backend/internal/data/repos/testutil"
)

func TestPlanRepo_UpsertInsertsThenUpdates(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewPlanRepo(db, testutil.Logger(t))
	ctx := context.Background()

	userID := uuid.New()
	plan := &types.WellnessPlan{
		UserID:      userID,
		UserEmail:   "owner@example.com",
		CatName:     "Misha",
		CatData:     datatypes.JSON([]byte(`{"catName":"Misha","catAge":"3 years"}`)),
		PlanContent: "# Misha's Wellness Plan\n\nFirst version.",
		PlanData:    datatypes.JSON([]byte(`{"behaviorTraining":{"general":"ok"}}`)),
	}

	created, err := repo.Upsert(ctx, tx, plan)
	if err != nil {
		t.Fatalf("upsert insert: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}
	if created.PlanContent != plan.PlanContent {
		t.Fatalf("plan content mismatch: %q", created.PlanContent)
	}

	second := &types.WellnessPlan{
		UserID:      userID,
		UserEmail:   "owner@example.com",
		CatName:     "Misha",
		CatData:     datatypes.JSON([]byte(`{"catName":"Misha","catAge":"4 years"}`)),
		PlanContent: "# Misha's Wellness Plan\n\nRegenerated.",
		PlanData:    datatypes.JSON([]byte(`{"behaviorTraining":{"scratching":"redirect"}}`)),
	}
	updated, err := repo.Upsert(ctx, tx, second)
	if err != nil {
		t.Fatalf("upsert update: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("expected same row, got %s vs %s", updated.ID, created.ID)
	}
	if updated.PlanContent != second.PlanContent {
		t.Fatalf("expected regenerated content, got %q", updated.PlanContent)
	}

	all, err := repo.ListByUser(ctx, tx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 plan, got %d", len(all))
	}
}

func TestPlanRepo_SeparateCatsSeparateRows(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewPlanRepo(db, testutil.Logger(t))
	ctx := context.Background()

	userID := uuid.New()
	for _, name := range []string{"Misha", "Tuna"} {
		_, err := repo.Upsert(ctx, tx, &types.WellnessPlan{
			UserID:      userID,
			UserEmail:   "owner@example.com",
			CatName:     name,
			PlanContent: "plan for " + name,
		})
		if err != nil {
			t.Fatalf("upsert %s: %v", name, err)
		}
	}

	all, err := repo.ListByUser(ctx, tx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(all))
	}
}

func TestPlanRepo_MarkEmailed(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewPlanRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Upsert(ctx, tx, &types.WellnessPlan{
		UserID:      uuid.New(),
		UserEmail:   "owner@example.com",
		CatName:     "Misha",
		PlanContent: "plan",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if created.EmailedAt != nil {
		t.Fatalf("fresh plan should not be marked emailed")
	}

	at := time.Now().UTC().Truncate(time.Second)
	if err := repo.MarkEmailed(ctx, tx, created.ID, at); err != nil {
		t.Fatalf("mark emailed: %v", err)
	}

	got, err := repo.GetByUserAndCat(ctx, tx, created.UserID, created.CatName)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.EmailedAt == nil {
		t.Fatalf("expected emailed_at to be set")
	}
}
