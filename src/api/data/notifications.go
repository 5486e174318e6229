package data

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/roadway-app/roadway/src/api/types"
)

const streamNotifications = "roadway.notifications"

// dedupWindow suppresses duplicate like/comment/repost notifications for the
// same (target, source, post, type) tuple within this lookback.
const dedupWindow = time.Hour

// PublishNotification enqueues a notification event on the Redis stream.
// Delivery is best-effort; callers must not fail their own operation when
// this errors.
func PublishNotification(ctx context.Context, rdb *redis.Client, typ, targetUserID, sourceUserID, postID string) error {
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamNotifications,
		Values: map[string]interface{}{
			"type":   typ,
			"target": targetUserID,
			"source": sourceUserID,
			"post":   postID,
		},
	}).Result()
	return err
}

// NotificationSink adapts the stream publisher to the moderation gate's
// fire-and-forget notifier boundary.
type NotificationSink struct {
	rdb *redis.Client
}

func NewNotificationSink(rdb *redis.Client) *NotificationSink {
	return &NotificationSink{rdb: rdb}
}

func (s *NotificationSink) Notify(ctx context.Context, typ, targetUserID, sourceUserID, postID string) {
	if err := PublishNotification(ctx, s.rdb, typ, targetUserID, sourceUserID, postID); err != nil {
		log.Printf("notifications: publish %s for %s failed: %v", typ, targetUserID, err)
	}
}

// NotificationConsumer reads the notification stream and materializes rows
// in the notifications table, skipping duplicates inside the dedup window.
// Runs until ctx is cancelled.
func NotificationConsumer(ctx context.Context, db *gorm.DB, rdb *redis.Client) {
	lastID := "$"

	for {
		select {
		case <-ctx.Done():
			return
		default:
			streams, err := rdb.XRead(ctx, &redis.XReadArgs{
				Streams: []string{streamNotifications, lastID},
				Count:   10,
				Block:   5 * time.Second,
			}).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					log.Printf("notifications: stream read: %v", err)
				}
				continue
			}

			for _, stream := range streams {
				for _, msg := range stream.Messages {
					lastID = msg.ID
					storeNotification(ctx, db, msg.Values)
				}
			}
		}
	}
}

func storeNotification(ctx context.Context, db *gorm.DB, values map[string]interface{}) {
	field := func(key string) string {
		if v, ok := values[key].(string); ok {
			return v
		}
		return ""
	}

	n := types.Notification{
		ID:           uuid.NewString(),
		Type:         field("type"),
		UserID:       field("target"),
		SourceUserID: field("source"),
		PostID:       field("post"),
		CreatedAt:    time.Now(),
	}
	if n.Type == "" || n.UserID == "" {
		log.Printf("notifications: dropping malformed event %v", values)
		return
	}

	// Duplicate suppression: identical event inside the lookback window.
	var existing types.Notification
	err := db.WithContext(ctx).
		Where("user_id = ? AND source_user_id = ? AND post_id = ? AND type = ? AND created_at > ?",
			n.UserID, n.SourceUserID, n.PostID, n.Type, time.Now().Add(-dedupWindow)).
		First(&existing).Error
	if err == nil {
		return
	}
	if err != gorm.ErrRecordNotFound {
		log.Printf("notifications: dedup lookup: %v", err)
		return
	}

	if err := db.WithContext(ctx).Create(&n).Error; err != nil {
		log.Printf("notifications: store %s for %s: %v", n.Type, n.UserID, err)
	}
}
