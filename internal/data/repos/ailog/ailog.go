package ailog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/cathealth/cathealth-backend/internal/domain"
	"github.com/cathealth/cathealth-backend/internal/pkg/logger"
)

type CallLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.AICallLog) error
	ListRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.AICallLog, error)
}

type callLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCallLogRepo(db *gorm.DB, baseLog *logger.Logger) CallLogRepo {
	repoLog := baseLog.With("repo", "CallLogRepo")
	return &callLogRepo{db: db, log: repoLog}
}

func (cr *callLogRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.AICallLog) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if entry == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(entry).Error
}

func (cr *callLogRepo) ListRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.AICallLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if limit <= 0 {
		limit = 50
	}

	var results []*types.AICallLog
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
