package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
)

type Repository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int64, error)
	// The per-notification calls return gorm.ErrRecordNotFound when the row
	// does not belong to userID.
	MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) error
	DeleteNotification(ctx context.Context, id, userID uuid.UUID) error
	ClearNotifications(ctx context.Context, userID uuid.UUID) error
}

type Pusher interface {
	Push(ctx context.Context, userID uuid.UUID, event interface{})
}

// Event is the live frame sent for a stored notification.
type Event struct {
	Type             string    `json:"type"`
	NotificationID   string    `json:"notification_id"`
	NotificationType string    `json:"notification_type"`
	Message          string    `json:"message"`
	UnreadCount      int64     `json:"unread_count"`
	CreatedAt        time.Time `json:"created_at"`
}

type Service struct {
	repo   Repository
	fanout Pusher
	log    logrus.FieldLogger
}

func NewService(repo Repository, fanout Pusher, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, fanout: fanout, log: log}
}

// Create stores n and pushes it to its owner.
func (s *Service) Create(ctx context.Context, n *models.Notification) error {
	if n.UserID == uuid.Nil {
		return fmt.Errorf("notification without recipient")
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}

	unread, err := s.repo.CountUnreadNotifications(ctx, n.UserID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", n.UserID).Warn("count unread notifications")
	}

	s.fanout.Push(ctx, n.UserID, Event{
		Type:             "notification",
		NotificationID:   n.ID.String(),
		NotificationType: string(n.Type),
		Message:          n.Message,
		UnreadCount:      unread,
		CreatedAt:        n.CreatedAt,
	})
	return nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListNotifications(ctx, userID, limit)
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnreadNotifications(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkNotificationRead(ctx, id, userID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllNotificationsRead(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.DeleteNotification(ctx, id, userID)
}

func (s *Service) ClearAll(ctx context.Context, userID uuid.UUID) error {
	return s.repo.ClearNotifications(ctx, userID)
}
