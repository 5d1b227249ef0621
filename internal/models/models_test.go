package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestChatRoomSides(t *testing.T) {
	rec, fr, outsider := uuid.New(), uuid.New(), uuid.New()
	room := ChatRoom{RecruiterID: rec, FreelancerID: fr, RecruiterUnreadCount: 2, FreelancerUnreadCount: 5}

	side, ok := room.SideOf(rec)
	assert.True(t, ok)
	assert.Equal(t, SideRecruiter, side)
	assert.Equal(t, SideFreelancer, side.Other())
	assert.Equal(t, 2, room.UnreadFor(side))
	assert.Equal(t, 5, room.UnreadFor(side.Other()))
	assert.Equal(t, fr, room.Counterpart(rec))
	assert.Equal(t, rec, room.Counterpart(fr))

	_, ok = room.SideOf(outsider)
	assert.False(t, ok)

	assert.Equal(t, "recruiter_unread_count", UnreadColumn(SideRecruiter))
	assert.Equal(t, "freelancer_unread_count", UnreadColumn(SideFreelancer))
}

func TestSkillList(t *testing.T) {
	p := FreelancerProfile{Skills: " Go, React ,, SQL "}
	assert.Equal(t, []string{"go", "react", "sql"}, p.SkillList())

	j := Job{}
	assert.Empty(t, j.SkillList())
}

func TestFirstName(t *testing.T) {
	assert.Equal(t, "Rina", User{Name: "Rina Kusuma"}.FirstName())
	assert.Equal(t, "Budi", User{Name: "Budi"}.FirstName())
}
