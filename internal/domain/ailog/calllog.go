package ailog

import (
	"time"

	"github.com/google/uuid"
)

const (
	KindDiagnosisNarrative = "diagnosis_narrative"
	KindDiagnosisData      = "diagnosis_data"
	KindWellnessNarrative  = "wellness_narrative"
	KindWellnessData       = "wellness_data"
)

// CallLog is one upstream model call. Rows are written best-effort; a failed
// insert never fails the request that produced it.
type CallLog struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID *uuid.UUID `gorm:"type:uuid;index;column:user_id" json:"user_id,omitempty"`

	Kind  string `gorm:"not null;index;column:kind" json:"kind"`
	Model string `gorm:"column:model" json:"model"`

	DurationMS   int64 `gorm:"column:duration_ms" json:"duration_ms"`
	InputTokens  int   `gorm:"column:input_tokens" json:"input_tokens"`
	OutputTokens int   `gorm:"column:output_tokens" json:"output_tokens"`

	Success bool   `gorm:"not null;column:success" json:"success"`
	Error   string `gorm:"type:text;column:error" json:"error,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (CallLog) TableName() string { return "ai_call_logs" }
