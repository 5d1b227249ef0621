package models

import (
	"time"

	"github.com/google/uuid"
)

type BadgeType string

const (
	BadgeApplication BadgeType = "application"
	BadgeAcceptance  BadgeType = "acceptance"
	BadgeProfile     BadgeType = "profile"
	BadgeLogin       BadgeType = "login"
)

type Badge struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Type        BadgeType `gorm:"column:badge_type;type:varchar(20);not null;uniqueIndex:idx_badge_type_level" json:"badge_type"`
	Level       int       `gorm:"not null;uniqueIndex:idx_badge_type_level" json:"level"`
	Name        string    `gorm:"type:varchar(120)" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"type:varchar(80)" json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
}

type FreelancerBadge struct {
	ID                  uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FreelancerProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_freelancer_badge" json:"freelancer_profile_id"`
	BadgeID             uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_freelancer_badge" json:"badge_id"`
	EarnedAt            time.Time `gorm:"autoCreateTime" json:"earned_at"`

	Badge *Badge `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
}
