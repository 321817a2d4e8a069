package domain

import (
	"github.com/cathealth/cathealth-backend/internal/domain/ailog"
	"github.com/cathealth/cathealth-backend/internal/domain/cat"
	"github.com/cathealth/cathealth-backend/internal/domain/diagnosis"
	"github.com/cathealth/cathealth-backend/internal/domain/wellness"
)

type CatProfile = cat.Profile

type WellnessPlan = wellness.Plan
type WellnessPlanData = wellness.PlanData
type GeneratedPlan = wellness.GeneratedPlan

type DiagnosisReport = diagnosis.Report
type DiagnosisData = diagnosis.Data

type AICallLog = ailog.CallLog

// Models lists every persisted entity for migration.
func Models() []any {
	return []any{
		&wellness.Plan{},
		&ailog.CallLog{},
	}
}
