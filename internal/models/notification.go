package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotifApplicationAccepted NotificationType = "application_accepted"
	NotifApplicationRejected NotificationType = "application_rejected"
	NotifNewJob              NotificationType = "new_job"
	NotifNewApplication      NotificationType = "new_application"
	NotifMessage             NotificationType = "message"
	NotifSystem              NotificationType = "system"
)

type Notification struct {
	ID     uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID        `gorm:"type:uuid;index;not null" json:"user_id"`
	Type   NotificationType `gorm:"column:notification_type;type:varchar(30);not null" json:"notification_type"`

	Message              string     `gorm:"type:text" json:"message"`
	RelatedJobID         *uuid.UUID `gorm:"type:uuid" json:"related_job_id,omitempty"`
	RelatedApplicationID *uuid.UUID `gorm:"type:uuid" json:"related_application_id,omitempty"`
	IsRead               bool       `gorm:"default:false;index" json:"is_read"`

	Data datatypes.JSON `gorm:"type:jsonb" json:"data,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
