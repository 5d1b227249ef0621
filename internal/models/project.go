package models

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

type Project struct {
	ID                  uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RecruiterProfileID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_project_triple" json:"recruiter_profile_id"`
	FreelancerProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_project_triple" json:"freelancer_profile_id"`
	JobID               uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_project_triple" json:"job_id"`

	Title       string        `gorm:"type:varchar(250)" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Recruiter  *RecruiterProfile  `gorm:"foreignKey:RecruiterProfileID" json:"recruiter,omitempty"`
	Freelancer *FreelancerProfile `gorm:"foreignKey:FreelancerProfileID" json:"freelancer,omitempty"`
	Job        *Job               `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Tasks      []Task             `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskApproved   TaskStatus = "approved"
)

type ApprovalStatus string

const (
	ApprovalPending     ApprovalStatus = "pending"
	ApprovalApproved    ApprovalStatus = "approved"
	ApprovalDisapproved ApprovalStatus = "disapproved"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

type Task struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;index;not null" json:"project_id"`

	Title       string       `gorm:"type:varchar(200);not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	DueDate     *time.Time   `gorm:"type:date" json:"due_date,omitempty"`
	Priority    TaskPriority `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`

	Status         TaskStatus     `gorm:"type:varchar(20);not null;default:'todo'" json:"status"`
	ApprovalStatus ApprovalStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"approval_status"`

	ReferenceFile  string `gorm:"type:text" json:"reference_file,omitempty"`
	FreelancerFile string `gorm:"type:text" json:"freelancer_file,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}
