// internal/models/chat.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Side string

const (
	SideRecruiter  Side = "recruiter"
	SideFreelancer Side = "freelancer"
)

// ChatRoom is the single conversation between a recruiter and a freelancer.
type ChatRoom struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	RecruiterID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chat_room_pair" json:"recruiter_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chat_room_pair" json:"freelancer_id"`

	LastMessage           string `gorm:"type:text" json:"last_message"`
	RecruiterUnreadCount  int    `gorm:"not null;default:0" json:"recruiter_unread_count"`
	FreelancerUnreadCount int    `gorm:"not null;default:0" json:"freelancer_unread_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Recruiter  *User `gorm:"foreignKey:RecruiterID" json:"recruiter,omitempty"`
	Freelancer *User `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
}

// SideOf reports which side userID sits on, false for outsiders.
func (r ChatRoom) SideOf(userID uuid.UUID) (Side, bool) {
	switch userID {
	case r.RecruiterID:
		return SideRecruiter, true
	case r.FreelancerID:
		return SideFreelancer, true
	}
	return "", false
}

func (r ChatRoom) Counterpart(userID uuid.UUID) uuid.UUID {
	if userID == r.RecruiterID {
		return r.FreelancerID
	}
	return r.RecruiterID
}

func (r ChatRoom) UnreadFor(side Side) int {
	if side == SideRecruiter {
		return r.RecruiterUnreadCount
	}
	return r.FreelancerUnreadCount
}

// UnreadColumn is the counter column owned by side.
func UnreadColumn(side Side) string {
	if side == SideRecruiter {
		return "recruiter_unread_count"
	}
	return "freelancer_unread_count"
}

func (s Side) Other() Side {
	if s == SideRecruiter {
		return SideFreelancer
	}
	return SideRecruiter
}

const (
	MessageText   = "text"
	MessageSystem = "system"
)

// Message is append-only.
type Message struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ChatRoomID uuid.UUID `gorm:"type:uuid;index:idx_message_room_created,priority:1" json:"chat_room_id"`
	SenderID   uuid.UUID `gorm:"type:uuid;index" json:"sender_id"`
	Type       string    `gorm:"type:varchar(20);default:'text'" json:"type"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"index:idx_message_room_created,priority:2" json:"created_at"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}
