// internal/realtime/hub.go
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RoomGroup is the group joined by every socket open on a chat room.
func RoomGroup(roomID uuid.UUID) string { return "room:" + roomID.String() }

// UserGroup is the personal notification channel of a user.
func UserGroup(userID uuid.UUID) string { return "user:" + userID.String() }

type Client struct {
	ID     string
	UserID uuid.UUID
	Group  string
	Conn   *WebSocketConn
	Send   chan []byte
}

func NewClient(userID uuid.UUID, group string, conn *WebSocketConn) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Group:  group,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}
}

type Hub struct {
	groups     map[string]map[string]*Client
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
	log        logrus.FieldLogger
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		groups:     make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		log:        log,
	}
}

// RegisterClient and UnregisterClient return at once after Stop, so a
// socket handler still unwinding at shutdown never blocks on the hub.
func (h *Hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
	}
}

func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns how many live sockets sit in group.
func (h *Hub) ClientCount(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// SendToGroup marshals v once and hands it to every client of group.
// A client whose buffer is full misses the frame.
func (h *Hub) SendToGroup(group string, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		h.log.WithError(err).WithField("group", group).Error("marshal realtime payload")
		return
	}
	h.SendRaw(group, payload)
}

func (h *Hub) SendRaw(group string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.groups[group] {
		select {
		case client.Send <- payload:
		default:
			h.log.WithFields(logrus.Fields{"group": group, "client_id": client.ID}).Warn("client buffer full, frame dropped")
		}
	}
}

func (h *Hub) BroadcastRoom(roomID uuid.UUID, v interface{}) {
	h.SendToGroup(RoomGroup(roomID), v)
}

func (h *Hub) SendToUser(userID uuid.UUID, v interface{}) {
	h.SendToGroup(UserGroup(userID), v)
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			members, ok := h.groups[client.Group]
			if !ok {
				members = make(map[string]*Client)
				h.groups[client.Group] = members
			}
			members[client.ID] = client
			h.mu.Unlock()
			h.log.WithFields(logrus.Fields{"client_id": client.ID, "user_id": client.UserID, "group": client.Group}).Debug("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if members, ok := h.groups[client.Group]; ok {
				if old, ok := members[client.ID]; ok {
					delete(members, client.ID)
					close(old.Send)
				}
				if len(members) == 0 {
					delete(h.groups, client.Group)
				}
			}
			h.mu.Unlock()
			h.log.WithFields(logrus.Fields{"client_id": client.ID, "group": client.Group}).Debug("client unregistered")

		case <-h.quit:
			return
		}
	}
}
