package notify

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/realtime"
)

// LocalDeliverer hands raw frames to sockets held by this process.
type LocalDeliverer interface {
	SendRaw(group string, payload []byte)
}

// Fanout pushes live events onto a user's personal channel. Delivery is
// best effort: a user without an open socket simply misses the push.
type Fanout struct {
	rdb   *redis.Client
	local LocalDeliverer
	log   logrus.FieldLogger
}

// NewFanout publishes through redis when rdb is non-nil so every API
// instance can reach the socket; otherwise it delivers in-process.
func NewFanout(rdb *redis.Client, local LocalDeliverer, log logrus.FieldLogger) *Fanout {
	return &Fanout{rdb: rdb, local: local, log: log}
}

func (f *Fanout) Push(ctx context.Context, userID uuid.UUID, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		f.log.WithError(err).WithField("user_id", userID).Error("marshal push")
		return
	}

	if f.rdb != nil {
		err := f.rdb.Publish(ctx, realtime.NotificationChannel(userID), payload).Err()
		if err == nil {
			return
		}
		f.log.WithError(err).WithField("user_id", userID).Warn("redis publish failed, delivering locally")
	}
	f.local.SendRaw(realtime.UserGroup(userID), payload)
}
