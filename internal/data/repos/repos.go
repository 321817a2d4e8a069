package repos

import (
	"github.com/cathealth/cathealth-backend/internal/data/repos/ailog"
	"github.com/cathealth/cathealth-backend/internal/data/repos/plans"
	"github.com/cathealth/cathealth-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type PlanRepo = plans.PlanRepo
type CallLogRepo = ailog.CallLogRepo

func NewPlanRepo(db *gorm.DB, baseLog *logger.Logger) PlanRepo {
	return plans.NewPlanRepo(db, baseLog)
}

func NewCallLogRepo(db *gorm.DB, baseLog *logger.Logger) CallLogRepo {
	return ailog.NewCallLogRepo(db, baseLog)
}
