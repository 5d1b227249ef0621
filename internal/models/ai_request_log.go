package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AIRequestLog struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id"`
	Prompt           string         `gorm:"type:text" json:"prompt"`
	Response         string         `gorm:"type:text" json:"response"`
	PromptTokens     int            `json:"prompt_tokens"`
	CompletionTokens int            `json:"completion_tokens"`
	TotalTokens      int            `json:"total_tokens"`
	Meta             datatypes.JSON `gorm:"type:jsonb" json:"meta,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}
