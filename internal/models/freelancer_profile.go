// internal/models/freelancer_profile.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type ExperienceLevel string

const (
	ExperienceEntry        ExperienceLevel = "entry"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceExpert       ExperienceLevel = "expert"
)

type FreelancerProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`

	FullName          string          `gorm:"type:varchar(120)" json:"full_name"`
	ProfessionalTitle string          `gorm:"type:varchar(120)" json:"professional_title"`
	Bio               string          `gorm:"type:text" json:"bio"`
	Skills            string          `gorm:"type:text" json:"skills"` // comma separated
	ExperienceLevel   ExperienceLevel `gorm:"type:varchar(30)" json:"experience_level"`
	ProfilePicture    string          `gorm:"type:text" json:"profile_picture"`
	Resume            string          `gorm:"type:text" json:"resume"`
	Location          string          `gorm:"type:varchar(120)" json:"location"`

	// Derived, written only by the stats recompute and the earnings ledger.
	TotalEarnings      int64      `gorm:"not null;default:0" json:"total_earnings"`
	TaskCompletionRate float64    `gorm:"not null;default:0" json:"task_completion_rate"`
	RankPosition       int        `gorm:"not null;default:0" json:"rank_position"`
	ProfileCompletion  int        `gorm:"not null;default:0" json:"profile_completion"`
	LoginStreak        int        `gorm:"not null;default:0" json:"login_streak"`
	LastLoginDate      *time.Time `gorm:"type:date" json:"last_login_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// SkillList splits the comma separated skills, lowercased and trimmed.
func (p FreelancerProfile) SkillList() []string {
	return splitSkills(p.Skills)
}

type RecruiterProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`

	CompanyName        string `gorm:"type:varchar(150)" json:"company_name"`
	CompanyWebsite     string `gorm:"type:text" json:"company_website"`
	CompanyDescription string `gorm:"type:text" json:"company_description"`
	Location           string `gorm:"type:varchar(120)" json:"location"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
