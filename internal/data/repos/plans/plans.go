package plans

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/cathealth/cathealth-backend/internal/domain"
	"github.com/cathealth/cathealth-backend/internal/pkg/logger"
)

type PlanRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, plan *types.WellnessPlan) (*types.WellnessPlan, error)
	GetByUserAndCat(ctx context.Context, tx *gorm.DB, userID uuid.UUID, catName string) (*types.WellnessPlan, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.WellnessPlan, error)
	MarkEmailed(ctx context.Context, tx *gorm.DB, planID uuid.UUID, at time.Time) error
}

type planRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanRepo(db *gorm.DB, baseLog *logger.Logger) PlanRepo {
	repoLog := baseLog.With("repo", "PlanRepo")
	return &planRepo{db: db, log: repoLog}
}

// Upsert inserts a plan row, or replaces the content of the existing row for
// the same (user, cat name).
func (pr *planRepo) Upsert(ctx context.Context, tx *gorm.DB, plan *types.WellnessPlan) (*types.WellnessPlan, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if plan == nil {
		return nil, errors.New("plan required")
	}

	now := time.Now().UTC()
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "cat_name"}},
			DoUpdates: clause.Assignments(map[string]any{
				"user_email":   plan.UserEmail,
				"cat_data":     datatypes.JSON(plan.CatData),
				"plan_content": plan.PlanContent,
				"plan_data":    datatypes.JSON(plan.PlanData),
				"updated_at":   now,
			}),
		}).
		Create(plan).Error; err != nil {
		return nil, err
	}

	return pr.GetByUserAndCat(ctx, transaction, plan.UserID, plan.CatName)
}

func (pr *planRepo) GetByUserAndCat(ctx context.Context, tx *gorm.DB, userID uuid.UUID, catName string) (*types.WellnessPlan, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var result types.WellnessPlan
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND cat_name = ?", userID, catName).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (pr *planRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.WellnessPlan, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.WellnessPlan
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *planRepo) MarkEmailed(ctx context.Context, tx *gorm.DB, planID uuid.UUID, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	return transaction.WithContext(ctx).
		Model(&types.WellnessPlan{}).
		Where("id = ?", planID).
		Update("emailed_at", at).Error
}
