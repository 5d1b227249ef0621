package chat

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
)

type fixture struct {
	repo       *memRepo
	rec        *recorder
	gw         *Gateway
	recruiter  uuid.UUID
	freelancer uuid.UUID
	room       *models.ChatRoom
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log, _ := test.NewNullLogger()
	repo := newMemRepo()
	rec := &recorder{}
	f := &fixture{repo: repo, rec: rec}
	f.recruiter = repo.addUser("Alice Recruiter", models.RoleRecruiter)
	f.freelancer = repo.addUser("Bob Freelancer", models.RoleFreelancer)
	f.room = repo.addRoom(f.recruiter, f.freelancer)
	f.gw = NewGateway(repo, rec, rec, log)

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	f.gw.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return f
}

func TestSendHelloScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg, err := f.gw.Send(ctx, f.room.ID, f.recruiter, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)

	room := f.repo.room(f.room.ID)
	assert.Equal(t, 1, room.FreelancerUnreadCount)
	assert.Equal(t, 0, room.RecruiterUnreadCount)
	assert.Equal(t, "hello", room.LastMessage)

	history, err := f.gw.Join(ctx, f.room.ID, f.freelancer)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "hello", history[0].Message)
	assert.Equal(t, f.recruiter.String(), history[0].SenderID)
	assert.Equal(t, "Alice Recruiter", history[0].Sender)
	assert.Equal(t, "2025-03-01 09:00:01", history[0].Timestamp)
}

func TestSendBroadcastsAndNotifiesRecipient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.gw.Send(ctx, f.room.ID, f.freelancer, "  first  ")
	require.NoError(t, err)
	_, err = f.gw.Send(ctx, f.room.ID, f.freelancer, "second")
	require.NoError(t, err)

	require.Len(t, f.rec.rooms, 2)
	ev, ok := f.rec.rooms[0].Event.(NewMessageEvent)
	require.True(t, ok)
	assert.Equal(t, "new_message", ev.Type)
	assert.Equal(t, "first", ev.Message)
	assert.Equal(t, "Bob Freelancer", ev.Sender)
	assert.Equal(t, f.room.ID, f.rec.rooms[0].RoomID)

	require.Len(t, f.rec.pushes, 2)
	for i, p := range f.rec.pushes {
		assert.Equal(t, f.recruiter, p.UserID)
		n, ok := p.Event.(NotificationEvent)
		require.True(t, ok)
		assert.Equal(t, "notification", n.Type)
		assert.Equal(t, i+1, n.UnreadCount)
		assert.Equal(t, f.room.ID.String(), n.RoomID)
	}

	room := f.repo.room(f.room.ID)
	assert.Equal(t, 2, room.RecruiterUnreadCount)
	assert.Equal(t, 0, room.FreelancerUnreadCount)
}

func TestSendDropsBlankText(t *testing.T) {
	f := newFixture(t)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := f.gw.Send(context.Background(), f.room.ID, f.recruiter, text)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}
	assert.Empty(t, f.repo.messages)
	assert.Empty(t, f.rec.rooms)
	assert.Empty(t, f.rec.pushes)
	assert.Equal(t, 0, f.repo.room(f.room.ID).FreelancerUnreadCount)
}

func TestOutsiderIsRejected(t *testing.T) {
	f := newFixture(t)
	outsider := f.repo.addUser("Mallory", models.RoleFreelancer)
	ctx := context.Background()

	_, err := f.gw.Join(ctx, f.room.ID, outsider)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = f.gw.Send(ctx, f.room.ID, outsider, "hi")
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = f.gw.Join(ctx, uuid.New(), f.recruiter)
	assert.ErrorIs(t, err, ErrNotParticipant)

	assert.ErrorIs(t, f.gw.MarkRead(ctx, f.room.ID, outsider), ErrNotParticipant)
	assert.Empty(t, f.repo.messages)
}

func TestJoinResetsOnlyJoiner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.gw.Send(ctx, f.room.ID, f.recruiter, "to bob")
	require.NoError(t, err)
	_, err = f.gw.Send(ctx, f.room.ID, f.freelancer, "to alice")
	require.NoError(t, err)

	room := f.repo.room(f.room.ID)
	require.Equal(t, 1, room.FreelancerUnreadCount)
	require.Equal(t, 1, room.RecruiterUnreadCount)

	_, err = f.gw.Join(ctx, f.room.ID, f.freelancer)
	require.NoError(t, err)

	room = f.repo.room(f.room.ID)
	assert.Equal(t, 0, room.FreelancerUnreadCount)
	assert.Equal(t, 1, room.RecruiterUnreadCount)
}

func TestHistoryIsCappedOldestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < HistoryLimit+7; i++ {
		_, err := f.gw.Send(ctx, f.room.ID, f.recruiter, fmt.Sprintf("m%02d", i))
		require.NoError(t, err)
	}

	history, err := f.gw.Join(ctx, f.room.ID, f.freelancer)
	require.NoError(t, err)
	require.Len(t, history, HistoryLimit)
	assert.Equal(t, "m07", history[0].Message)
	assert.Equal(t, fmt.Sprintf("m%02d", HistoryLimit+6), history[HistoryLimit-1].Message)
	for i := 1; i < len(history); i++ {
		assert.True(t, history[i-1].Timestamp <= history[i].Timestamp)
	}
}

func TestPostCreatesRoomLazily(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	otherFreelancer := f.repo.addUser("Cici", models.RoleFreelancer)

	msg, err := f.gw.Post(ctx, f.recruiter, otherFreelancer, f.recruiter, "✅ Task Approved", models.MessageSystem)
	require.NoError(t, err)
	assert.Equal(t, models.MessageSystem, msg.Type)

	room, err := f.repo.GetOrCreateRoom(ctx, f.recruiter, otherFreelancer)
	require.NoError(t, err)
	assert.Equal(t, room.ID, msg.ChatRoomID)
	assert.Equal(t, 1, room.FreelancerUnreadCount)
	assert.Equal(t, 0, room.RecruiterUnreadCount)

	// a second post reuses the same room
	_, err = f.gw.Post(ctx, f.recruiter, otherFreelancer, f.recruiter, "again", "")
	require.NoError(t, err)
	again, _ := f.repo.GetOrCreateRoom(ctx, f.recruiter, otherFreelancer)
	assert.Equal(t, room.ID, again.ID)
	assert.Equal(t, 2, again.FreelancerUnreadCount)
}

func TestHandleFrame(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.NoError(t, f.gw.HandleFrame(ctx, f.room.ID, f.recruiter, []byte("not json")))
	assert.NoError(t, f.gw.HandleFrame(ctx, f.room.ID, f.recruiter, []byte(`{"type":"typing"}`)))
	assert.NoError(t, f.gw.HandleFrame(ctx, f.room.ID, f.recruiter, []byte(`{"type":"send_message"}`)))
	assert.NoError(t, f.gw.HandleFrame(ctx, f.room.ID, f.recruiter, []byte(`{"message":"   "}`)))
	assert.Empty(t, f.repo.messages)

	assert.NoError(t, f.gw.HandleFrame(ctx, f.room.ID, f.recruiter, []byte(`{"type":"send_message","message":"ping"}`)))
	assert.NoError(t, f.gw.HandleFrame(ctx, f.room.ID, f.recruiter, []byte(`{"message":"pong"}`)))
	require.Len(t, f.repo.messages, 2)

	outsider := f.repo.addUser("Eve", models.RoleRecruiter)
	err := f.gw.HandleFrame(ctx, f.room.ID, outsider, []byte(`{"message":"hi"}`))
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestPreviewFailureStillDelivers(t *testing.T) {
	f := newFixture(t)
	f.repo.failTouch = true

	_, err := f.gw.Send(context.Background(), f.room.ID, f.recruiter, "still sent")
	require.NoError(t, err)
	assert.Len(t, f.rec.rooms, 1)
	assert.Equal(t, 1, f.repo.room(f.room.ID).FreelancerUnreadCount)
}

func TestRoomsAndPreview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	long := strings.Repeat("é", previewRunes+20)
	_, err := f.gw.Send(ctx, f.room.ID, f.recruiter, long)
	require.NoError(t, err)

	rooms, err := f.gw.Rooms(ctx, f.freelancer)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Alice Recruiter", rooms[0].CounterpartName)
	assert.Equal(t, 1, rooms[0].UnreadCount)
	assert.Equal(t, previewRunes, len([]rune(rooms[0].LastMessage)))

	require.NoError(t, f.gw.MarkRead(ctx, f.room.ID, f.freelancer))
	rooms, _ = f.gw.Rooms(ctx, f.freelancer)
	assert.Equal(t, 0, rooms[0].UnreadCount)
}
