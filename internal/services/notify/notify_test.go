package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/realtime"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockRepository) ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockRepository) CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *MockRepository) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockRepository) DeleteNotification(ctx context.Context, id, userID uuid.UUID) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *MockRepository) ClearNotifications(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type MockPusher struct {
	mock.Mock
}

func (m *MockPusher) Push(ctx context.Context, userID uuid.UUID, event interface{}) {
	m.Called(ctx, userID, event)
}

type captureLocal struct {
	group   string
	payload []byte
}

func (c *captureLocal) SendRaw(group string, payload []byte) {
	c.group, c.payload = group, payload
}

func TestFanoutDeliversLocallyWithoutRedis(t *testing.T) {
	log, _ := test.NewNullLogger()
	local := &captureLocal{}
	f := NewFanout(nil, local, log)
	user := uuid.New()

	f.Push(context.Background(), user, map[string]interface{}{"type": "notification", "unread_count": 3})

	assert.Equal(t, realtime.UserGroup(user), local.group)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(local.payload, &got))
	assert.Equal(t, "notification", got["type"])
	assert.EqualValues(t, 3, got["unread_count"])
}

func TestFanoutSkipsUnmarshalable(t *testing.T) {
	log, hook := test.NewNullLogger()
	local := &captureLocal{}
	f := NewFanout(nil, local, log)

	f.Push(context.Background(), uuid.New(), func() {})
	assert.Nil(t, local.payload)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "marshal push", hook.LastEntry().Message)
}

func TestServiceCreate(t *testing.T) {
	log, _ := test.NewNullLogger()
	user := uuid.New()

	tests := []struct {
		name      string
		n         *models.Notification
		setup     func(r *MockRepository, p *MockPusher)
		expectErr bool
	}{
		{
			name: "stores and pushes",
			n:    &models.Notification{UserID: user, Type: models.NotifNewJob, Message: "New job posted: Go dev - matches your skills!"},
			setup: func(r *MockRepository, p *MockPusher) {
				r.On("CreateNotification", mock.Anything, mock.AnythingOfType("*models.Notification")).
					Run(func(args mock.Arguments) { args.Get(1).(*models.Notification).ID = uuid.New() }).
					Return(nil)
				r.On("CountUnreadNotifications", mock.Anything, user).Return(int64(4), nil)
				p.On("Push", mock.Anything, user, mock.MatchedBy(func(ev Event) bool {
					return ev.Type == "notification" && ev.NotificationType == "new_job" && ev.UnreadCount == 4
				})).Return()
			},
		},
		{
			name: "store failure does not push",
			n:    &models.Notification{UserID: user, Type: models.NotifSystem, Message: "x"},
			setup: func(r *MockRepository, p *MockPusher) {
				r.On("CreateNotification", mock.Anything, mock.Anything).Return(errors.New("db down"))
			},
			expectErr: true,
		},
		{
			name:      "no recipient",
			n:         &models.Notification{Type: models.NotifSystem},
			setup:     func(r *MockRepository, p *MockPusher) {},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockRepository{}
			push := &MockPusher{}
			tt.setup(repo, push)

			err := NewService(repo, push, log).Create(context.Background(), tt.n)
			if tt.expectErr {
				assert.Error(t, err)
				push.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			push.AssertExpectations(t)
		})
	}
}

func TestServiceOwnerScopedCalls(t *testing.T) {
	log, _ := test.NewNullLogger()
	repo := &MockRepository{}
	svc := NewService(repo, &MockPusher{}, log)
	user, other := uuid.New(), uuid.New()
	id := uuid.New()

	repo.On("MarkNotificationRead", mock.Anything, id, other).Return(gorm.ErrRecordNotFound)
	repo.On("MarkNotificationRead", mock.Anything, id, user).Return(nil)
	repo.On("ListNotifications", mock.Anything, user, 50).Return([]models.Notification{{ID: id, UserID: user}}, nil)

	assert.ErrorIs(t, svc.MarkRead(context.Background(), id, other), gorm.ErrRecordNotFound)
	assert.NoError(t, svc.MarkRead(context.Background(), id, user))

	list, err := svc.List(context.Background(), user, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	repo.AssertExpectations(t)
}
