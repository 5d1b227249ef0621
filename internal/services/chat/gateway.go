package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
)

// HistoryLimit caps the replay sent on join.
const HistoryLimit = 50

const (
	timestampLayout = "2006-01-02 15:04:05"
	previewRunes    = 200
)

var (
	ErrNotParticipant = errors.New("chat: user is not a participant of this room")
	ErrEmptyMessage   = errors.New("chat: empty message")
)

type Repository interface {
	RoomByID(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error)
	GetOrCreateRoom(ctx context.Context, recruiterID, freelancerID uuid.UUID) (*models.ChatRoom, error)
	RoomsForUser(ctx context.Context, userID uuid.UUID) ([]models.ChatRoom, error)
	// RecentMessages returns at most limit of the newest messages, oldest first.
	RecentMessages(ctx context.Context, roomID uuid.UUID, limit int) ([]models.Message, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
	TouchRoom(ctx context.Context, roomID uuid.UUID, preview string, at time.Time) error
	IncrementUnread(ctx context.Context, roomID uuid.UUID, side models.Side) (int, error)
	ResetUnread(ctx context.Context, roomID uuid.UUID, side models.Side) error
	UserName(ctx context.Context, userID uuid.UUID) (string, error)
}

// Broadcaster reaches every socket joined to a room.
type Broadcaster interface {
	BroadcastRoom(roomID uuid.UUID, v interface{})
}

// Pusher reaches a user's personal channel.
type Pusher interface {
	Push(ctx context.Context, userID uuid.UUID, event interface{})
}

type Gateway struct {
	repo  Repository
	rooms Broadcaster
	push  Pusher
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewGateway(repo Repository, rooms Broadcaster, push Pusher, log logrus.FieldLogger) *Gateway {
	return &Gateway{repo: repo, rooms: rooms, push: push, log: log, now: time.Now}
}

type HistoryEntry struct {
	SenderID  string `json:"sender_id"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Kind      string `json:"kind"`
	Timestamp string `json:"timestamp"`
}

type HistoryEvent struct {
	Type     string         `json:"type"`
	RoomID   string         `json:"room_id"`
	Messages []HistoryEntry `json:"messages"`
}

type NewMessageEvent struct {
	Type      string `json:"type"`
	RoomID    string `json:"room_id"`
	MessageID string `json:"message_id"`
	Message   string `json:"message"`
	Kind      string `json:"kind"`
	Sender    string `json:"sender"`
	SenderID  string `json:"sender_id"`
	Timestamp string `json:"timestamp"`
}

type NotificationEvent struct {
	Type        string `json:"type"`
	RoomID      string `json:"room_id"`
	Sender      string `json:"sender"`
	Message     string `json:"message"`
	UnreadCount int    `json:"unread_count"`
}

// InboundFrame is the only message a client sends on a room socket.
type InboundFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type RoomSummary struct {
	ID              string    `json:"id"`
	CounterpartID   string    `json:"counterpart_id"`
	CounterpartName string    `json:"counterpart_name"`
	LastMessage     string    `json:"last_message"`
	UnreadCount     int       `json:"unread_count"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Join checks membership, resets the joiner's unread counter and returns
// the replay of the newest messages, oldest first.
func (g *Gateway) Join(ctx context.Context, roomID, userID uuid.UUID) ([]HistoryEntry, error) {
	room, err := g.participantRoom(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	side, _ := room.SideOf(userID)

	msgs, err := g.repo.RecentMessages(ctx, roomID, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	if err := g.repo.ResetUnread(ctx, roomID, side); err != nil {
		g.log.WithError(err).WithFields(logrus.Fields{"room_id": roomID, "user_id": userID}).Warn("reset unread failed")
	}

	entries := make([]HistoryEntry, 0, len(msgs))
	for _, m := range msgs {
		name := ""
		if m.Sender != nil {
			name = m.Sender.Name
		}
		entries = append(entries, HistoryEntry{
			SenderID:  m.SenderID.String(),
			Sender:    name,
			Message:   m.Content,
			Kind:      m.Type,
			Timestamp: m.CreatedAt.Format(timestampLayout),
		})
	}
	return entries, nil
}

// Send delivers a participant's message inside an existing room.
func (g *Gateway) Send(ctx context.Context, roomID, senderID uuid.UUID, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	room, err := g.participantRoom(ctx, roomID, senderID)
	if err != nil {
		return nil, err
	}
	return g.deliver(ctx, room, senderID, text, models.MessageText)
}

// Post delivers a message between a recruiter and a freelancer, creating
// their room on first use.
func (g *Gateway) Post(ctx context.Context, recruiterID, freelancerID, senderID uuid.UUID, text, kind string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	room, err := g.repo.GetOrCreateRoom(ctx, recruiterID, freelancerID)
	if err != nil {
		return nil, fmt.Errorf("get or create room: %w", err)
	}
	if kind == "" {
		kind = models.MessageText
	}
	return g.deliver(ctx, room, senderID, text, kind)
}

// HandleFrame applies one raw inbound socket frame. Frames that are not
// JSON, carry another type or an empty text are ignored.
func (g *Gateway) HandleFrame(ctx context.Context, roomID, senderID uuid.UUID, raw []byte) error {
	var frame InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil
	}
	if frame.Type != "" && frame.Type != "send_message" {
		return nil
	}
	_, err := g.Send(ctx, roomID, senderID, frame.Message)
	if errors.Is(err, ErrEmptyMessage) {
		return nil
	}
	return err
}

func (g *Gateway) MarkRead(ctx context.Context, roomID, userID uuid.UUID) error {
	room, err := g.participantRoom(ctx, roomID, userID)
	if err != nil {
		return err
	}
	side, _ := room.SideOf(userID)
	return g.repo.ResetUnread(ctx, roomID, side)
}

func (g *Gateway) Rooms(ctx context.Context, userID uuid.UUID) ([]RoomSummary, error) {
	rooms, err := g.repo.RoomsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		side, ok := r.SideOf(userID)
		if !ok {
			continue
		}
		other := r.Recruiter
		if side == models.SideRecruiter {
			other = r.Freelancer
		}
		name := ""
		if other != nil {
			name = other.Name
		}
		out = append(out, RoomSummary{
			ID:              r.ID.String(),
			CounterpartID:   r.Counterpart(userID).String(),
			CounterpartName: name,
			LastMessage:     r.LastMessage,
			UnreadCount:     r.UnreadFor(side),
			UpdatedAt:       r.UpdatedAt,
		})
	}
	return out, nil
}

func (g *Gateway) participantRoom(ctx context.Context, roomID, userID uuid.UUID) (*models.ChatRoom, error) {
	room, err := g.repo.RoomByID(ctx, roomID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotParticipant
	}
	if err != nil {
		return nil, err
	}
	if _, ok := room.SideOf(userID); !ok {
		return nil, ErrNotParticipant
	}
	return room, nil
}

// deliver persists the message, then updates preview and the recipient's
// unread counter. Failures after the insert are logged, not returned: the
// counters are allowed to drift.
func (g *Gateway) deliver(ctx context.Context, room *models.ChatRoom, senderID uuid.UUID, text, kind string) (*models.Message, error) {
	side, ok := room.SideOf(senderID)
	if !ok {
		return nil, ErrNotParticipant
	}
	recipient := room.Counterpart(senderID)
	entry := g.log.WithFields(logrus.Fields{"room_id": room.ID, "sender_id": senderID})

	msg := &models.Message{
		ChatRoomID: room.ID,
		SenderID:   senderID,
		Type:       kind,
		Content:    text,
		CreatedAt:  g.now(),
	}
	if err := g.repo.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	if err := g.repo.TouchRoom(ctx, room.ID, preview(text), msg.CreatedAt); err != nil {
		entry.WithError(err).Warn("update room preview failed")
	}
	unread, err := g.repo.IncrementUnread(ctx, room.ID, side.Other())
	if err != nil {
		entry.WithError(err).Warn("increment unread failed")
	}

	senderName, err := g.repo.UserName(ctx, senderID)
	if err != nil {
		entry.WithError(err).Debug("sender name lookup failed")
	}

	ts := msg.CreatedAt.Format(timestampLayout)
	g.rooms.BroadcastRoom(room.ID, NewMessageEvent{
		Type:      "new_message",
		RoomID:    room.ID.String(),
		MessageID: msg.ID.String(),
		Message:   text,
		Kind:      kind,
		Sender:    senderName,
		SenderID:  senderID.String(),
		Timestamp: ts,
	})
	g.push.Push(ctx, recipient, NotificationEvent{
		Type:        "notification",
		RoomID:      room.ID.String(),
		Sender:      senderName,
		Message:     text,
		UnreadCount: unread,
	})

	entry.WithField("kind", kind).Debug("message delivered")
	return msg, nil
}

func preview(text string) string {
	r := []rune(text)
	if len(r) <= previewRunes {
		return text
	}
	return string(r[:previewRunes])
}
