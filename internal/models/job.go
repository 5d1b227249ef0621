package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Job struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RecruiterProfileID uuid.UUID `gorm:"type:uuid;index;not null" json:"recruiter_profile_id"`

	Title          string `gorm:"type:varchar(200);not null" json:"title"`
	Description    string `gorm:"type:text" json:"description"`
	SkillsRequired string `gorm:"type:text" json:"skills_required"`
	Location       string `gorm:"type:varchar(120)" json:"location"`
	JobType        string `gorm:"type:varchar(30)" json:"job_type"`
	// Salary is the annual package in lakhs.
	Salary   int64 `gorm:"not null;default:0" json:"salary"`
	IsActive bool  `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Recruiter *RecruiterProfile `gorm:"foreignKey:RecruiterProfileID" json:"recruiter,omitempty"`
}

func (j Job) SkillList() []string {
	return splitSkills(j.SkillsRequired)
}

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "Pending"
	ApplicationAccepted ApplicationStatus = "Accepted"
	ApplicationRejected ApplicationStatus = "Rejected"
)

type Application struct {
	ID                  uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	JobID               uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_application_job_freelancer" json:"job_id"`
	FreelancerProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_application_job_freelancer" json:"freelancer_profile_id"`

	CandidateName  string            `gorm:"type:varchar(120)" json:"candidate_name"`
	CandidateEmail string            `gorm:"type:varchar(150)" json:"candidate_email"`
	CoverLetter    string            `gorm:"type:text" json:"cover_letter"`
	Resume         string            `gorm:"type:text" json:"resume"`
	Status         ApplicationStatus `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`

	AppliedAt time.Time `gorm:"autoCreateTime" json:"applied_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Job        *Job               `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Freelancer *FreelancerProfile `gorm:"foreignKey:FreelancerProfileID" json:"freelancer,omitempty"`
}

func splitSkills(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
