package models

import (
	"time"

	"github.com/google/uuid"
)

// EarningEntry is the ledger row behind FreelancerProfile.TotalEarnings.
// One row per approved task.
type EarningEntry struct {
	ID                  uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FreelancerProfileID uuid.UUID `gorm:"type:uuid;index;not null" json:"freelancer_profile_id"`
	TaskID              uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"task_id"`
	Amount              int64     `gorm:"not null" json:"amount"`
	Description         string    `gorm:"type:text" json:"description"`
	CreatedAt           time.Time `json:"created_at"`

	FreelancerProfile *FreelancerProfile `gorm:"foreignKey:FreelancerProfileID" json:"-"`
}
