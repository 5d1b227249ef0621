package realtime

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NotificationChannelPrefix prefixes the redis channel of each personal feed.
const NotificationChannelPrefix = "notifications:"

func NotificationChannel(userID uuid.UUID) string {
	return NotificationChannelPrefix + userID.String()
}

// NewRedis creates a new Redis client
func NewRedis(addr, password string, db int, log logrus.FieldLogger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	log.WithField("addr", addr).Info("redis client created")
	return rdb
}

// RedisBridge relays pushes published on any instance to the sockets held
// by this instance.
type RedisBridge struct {
	RDB *redis.Client
	Hub *Hub
	Log logrus.FieldLogger
}

func (b *RedisBridge) Run(ctx context.Context) {
	sub := b.RDB.PSubscribe(ctx, NotificationChannelPrefix+"*")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			userID, ok := userFromChannel(msg.Channel)
			if !ok {
				b.Log.WithField("channel", msg.Channel).Warn("ignoring push on malformed channel")
				continue
			}
			b.Hub.SendRaw(UserGroup(userID), []byte(msg.Payload))
		}
	}
}

func userFromChannel(channel string) (uuid.UUID, bool) {
	if !strings.HasPrefix(channel, NotificationChannelPrefix) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimPrefix(channel, NotificationChannelPrefix))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
