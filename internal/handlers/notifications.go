package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
)

const notificationPage = 50

type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	ClearAll(ctx context.Context, userID uuid.UUID) error
}

type NotificationHandler struct {
	Notify NotificationService
	Log    logrus.FieldLogger
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	uid, ok := currentUser(c)
	if !ok {
		return nil
	}
	ctx := c.UserContext()
	items, err := h.Notify.List(ctx, uid, c.QueryInt("limit", notificationPage))
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	unread, err := h.Notify.UnreadCount(ctx, uid)
	if err != nil {
		return serviceError(c, h.Log, err)
	}
	return success(c, "OK", fiber.Map{
		"notifications": items,
		"unread_count":  unread,
	})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	uid, id, ok := userAndParam(c, "id")
	if !ok {
		return nil
	}
	if err := h.Notify.MarkRead(c.UserContext(), id, uid); err != nil {
		return serviceError(c, h.Log, err)
	}
	return success(c, "Notification marked as read", nil)
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	uid, ok := currentUser(c)
	if !ok {
		return nil
	}
	if err := h.Notify.MarkAllRead(c.UserContext(), uid); err != nil {
		return serviceError(c, h.Log, err)
	}
	return success(c, "All notifications marked as read", nil)
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	uid, id, ok := userAndParam(c, "id")
	if !ok {
		return nil
	}
	if err := h.Notify.Delete(c.UserContext(), id, uid); err != nil {
		return serviceError(c, h.Log, err)
	}
	return success(c, "Notification deleted", nil)
}

func (h *NotificationHandler) Clear(c *fiber.Ctx) error {
	uid, ok := currentUser(c)
	if !ok {
		return nil
	}
	if err := h.Notify.ClearAll(c.UserContext(), uid); err != nil {
		return serviceError(c, h.Log, err)
	}
	return success(c, "Notifications cleared", nil)
}
