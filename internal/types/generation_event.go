package types

import (
	"time"

	"github.com/google/uuid"
)

// GenerationEvent records token usage and estimated cost for one
// successful generation call. Rows are append-only: they are never
// mutated, and deleting a material keeps its events (usage accounting
// is historical), so MaterialID carries no foreign key constraint.
type GenerationEvent struct {
	ID               uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	MaterialID       uuid.UUID `gorm:"type:uuid;not null;index" json:"material_id"`
	Model            string    `gorm:"column:model;not null" json:"model"`
	PromptTokens     int       `gorm:"column:prompt_tokens;not null;default:0" json:"prompt_tokens"`
	CompletionTokens int       `gorm:"column:completion_tokens;not null;default:0" json:"completion_tokens"`
	TotalTokens      int       `gorm:"column:total_tokens;not null;default:0" json:"total_tokens"`
	EstimatedCost    float64   `gorm:"column:estimated_cost;not null;default:0" json:"estimated_cost"`
	CreatedAt        time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (GenerationEvent) TableName() string {
	return "generation_event"
}
