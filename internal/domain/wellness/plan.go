package wellness

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// HealthRecommendations is the health section of the structured plan data.
type HealthRecommendations struct {
	Nutrition      string `json:"nutrition"`
	Exercise       string `json:"exercise"`
	PreventiveCare string `json:"preventiveCare"`
	Environment    string `json:"environment"`
}

// EnrichmentPlan is the enrichment section of the structured plan data.
type EnrichmentPlan struct {
	Play        string `json:"play"`
	Toys        string `json:"toys"`
	Environment string `json:"environment"`
	Social      string `json:"social"`
	Rest        string `json:"rest"`
}

// FollowUpWeek is a single week of the follow-up schedule.
type FollowUpWeek struct {
	Week  int      `json:"week"`
	Tasks []string `json:"tasks"`
}

// PlanData is the structured companion to the narrative plan text. The
// behaviorTraining keys are the behavior issues the model chose to address.
type PlanData struct {
	HealthRecommendations HealthRecommendations `json:"healthRecommendations"`
	BehaviorTraining      map[string]string     `json:"behaviorTraining"`
	EnrichmentPlan        EnrichmentPlan        `json:"enrichmentPlan"`
	FollowUpSchedule      []FollowUpWeek        `json:"followUpSchedule"`
}

// GeneratedPlan pairs the narrative markdown with its structured data.
type GeneratedPlan struct {
	Content string   `json:"wellnessPlan"`
	Data    PlanData `json:"wellnessPlanData"`
}

// FallbackPlanData is the structured data used when the model returns
// unparseable JSON. The text is generic on purpose.
func FallbackPlanData() PlanData {
	return PlanData{
		HealthRecommendations: HealthRecommendations{
			Nutrition:      "Feed a balanced, high-quality cat food appropriate for your cat's age and weight.",
			Exercise:       "Engage in daily play sessions to keep your cat active and healthy.",
			PreventiveCare: "Schedule regular veterinary check-ups and keep vaccinations current.",
			Environment:    "Provide a clean, safe environment with appropriate scratching surfaces.",
		},
		BehaviorTraining: map[string]string{
			"general": "Use positive reinforcement to encourage good behavior.",
		},
		EnrichmentPlan: EnrichmentPlan{
			Play:        "Regular interactive play sessions with wand toys or laser pointers.",
			Toys:        "Rotate toys weekly to maintain interest.",
			Environment: "Provide climbing spaces, scratching posts, and hiding spots.",
			Social:      "Spend quality time with your cat daily for bonding.",
			Rest:        "Ensure quiet spaces for undisturbed rest and relaxation.",
		},
		FollowUpSchedule: []FollowUpWeek{
			{Week: 1, Tasks: []string{"Implement new feeding schedule", "Introduce new toys"}},
			{Week: 2, Tasks: []string{"Increase play time", "Begin training exercises"}},
			{Week: 3, Tasks: []string{"Evaluate progress", "Adjust plan as needed"}},
		},
	}
}

// Plan is the persisted wellness plan row. One row per (user, cat name);
// regenerating a plan for the same cat updates the existing row.
type Plan struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_wellness_plans_user_cat;column:user_id" json:"user_id"`
	UserEmail string         `gorm:"not null;column:user_email" json:"user_email"`
	CatName   string         `gorm:"not null;uniqueIndex:idx_wellness_plans_user_cat;column:cat_name" json:"cat_name"`
	CatData   datatypes.JSON `gorm:"type:jsonb;column:cat_data" json:"cat_data"`

	PlanContent string         `gorm:"type:text;column:plan_content" json:"plan_content"`
	PlanData    datatypes.JSON `gorm:"type:jsonb;column:plan_data" json:"plan_data"`

	EmailedAt *time.Time `gorm:"column:emailed_at" json:"emailed_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Plan) TableName() string { return "wellness_plans" }
