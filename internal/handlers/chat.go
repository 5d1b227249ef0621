package handlers

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/services/chat"
)

type ChatHandler struct {
	Gateway *chat.Gateway
	Hub     *realtime.Hub
	Log     logrus.FieldLogger
}

func NewChatHandler(gw *chat.Gateway, hub *realtime.Hub, log logrus.FieldLogger) *ChatHandler {
	return &ChatHandler{Gateway: gw, Hub: hub, Log: log}
}

func (h *ChatHandler) GetRooms(c *fiber.Ctx) error {
	uid, ok := currentUser(c)
	if !ok {
		return nil
	}
	rooms, err := h.Gateway.Rooms(c.UserContext(), uid)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return success(c, "OK", rooms)
}

// GetMessages returns the same replay a socket join gets, and likewise
// clears the caller's unread counter.
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	uid, roomID, ok := userAndParam(c, "id")
	if !ok {
		return nil
	}
	history, err := h.Gateway.Join(c.UserContext(), roomID, uid)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return success(c, "OK", history)
}

func (h *ChatHandler) MarkAsRead(c *fiber.Ctx) error {
	uid, roomID, ok := userAndParam(c, "id")
	if !ok {
		return nil
	}
	if err := h.Gateway.MarkRead(c.UserContext(), roomID, uid); err != nil {
		return serviceError(c, h.Log, err)
	}
	return success(c, "Messages marked as read", nil)
}

// UpgradeOnly rejects plain HTTP requests on websocket routes.
func UpgradeOnly(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// RoomSocket serves /ws/chat/:room_id. Outsiders are disconnected without
// a single frame; members get the history replay first, then live traffic.
func (h *ChatHandler) RoomSocket(c *websocket.Conn) {
	userID, ok := localUUID(c.Locals("userId"))
	roomID, err := uuid.Parse(c.Params("room_id"))
	if !ok || err != nil {
		c.Close()
		return
	}
	entry := h.Log.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID})
	ctx := context.Background()

	history, err := h.Gateway.Join(ctx, roomID, userID)
	if err != nil {
		entry.WithError(err).Info("room join refused")
		c.Close()
		return
	}

	conn := realtime.NewWebSocketConn(c)
	client := realtime.NewClient(userID, realtime.RoomGroup(roomID), conn)
	replay, err := json.Marshal(chat.HistoryEvent{Type: "history", RoomID: roomID.String(), Messages: history})
	if err != nil {
		entry.WithError(err).Error("marshal history")
		c.Close()
		return
	}
	// Queued before registering so the replay precedes any broadcast.
	client.Send <- replay

	h.Hub.RegisterClient(client)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := conn.WritePump(client.Send); err != nil {
			entry.WithError(err).Debug("room socket write")
		}
	}()
	defer func() {
		h.Hub.UnregisterClient(client)
		<-done
		entry.Debug("room socket closed")
	}()

	entry.Info("room socket joined")
	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			return
		}
		if err := h.Gateway.HandleFrame(ctx, roomID, userID, raw); err != nil {
			entry.WithError(err).Warn("handle chat frame")
		}
	}
}

// NotificationSocket serves /ws/notifications, the caller's personal channel.
// Inbound frames are read only to notice the disconnect.
func (h *ChatHandler) NotificationSocket(c *websocket.Conn) {
	userID, ok := localUUID(c.Locals("userId"))
	if !ok {
		c.Close()
		return
	}
	entry := h.Log.WithField("user_id", userID)

	conn := realtime.NewWebSocketConn(c)
	client := realtime.NewClient(userID, realtime.UserGroup(userID), conn)
	h.Hub.RegisterClient(client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := conn.WritePump(client.Send); err != nil {
			entry.WithError(err).Debug("notification socket write")
		}
	}()
	defer func() {
		h.Hub.UnregisterClient(client)
		<-done
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
