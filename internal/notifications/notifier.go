// Package notifications fans engagement events out to websocket subscribers.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"tecnopronto/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	postChannelPrefix  = "engagement:post:"
	postChannelPattern = postChannelPrefix + "*"
)

// Event is the envelope delivered to websocket clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Encode marshals an event envelope.
func Encode(eventType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", eventType, err)
	}
	return data, nil
}

// PostChannel is the Redis channel carrying events for one post.
func PostChannel(postID uint) string {
	return fmt.Sprintf("%s%d", postChannelPrefix, postID)
}

// Notifier publishes engagement events into Redis so every instance can
// deliver them to its own websocket clients.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Enabled reports whether events leave this process.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil
}

// PublishPost sends an encoded event to the post's channel.
func (n *Notifier) PublishPost(ctx context.Context, postID uint, message []byte) error {
	if !n.Enabled() {
		return nil
	}
	return n.rdb.Publish(ctx, PostChannel(postID), message).Err()
}

// StartSubscriber subscribes to every post channel and calls onMessage for
// each incoming message until ctx is cancelled.
func (n *Notifier) StartSubscriber(ctx context.Context, onMessage func(postID uint, payload string)) error {
	if !n.Enabled() {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, postChannelPattern)
	// wait for the subscription so no publish is missed after we return
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", postChannelPattern, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var postID uint
				if _, err := fmt.Sscanf(msg.Channel, postChannelPrefix+"%d", &postID); err != nil {
					middleware.Logger.Warn("invalid engagement channel", slog.String("channel", msg.Channel))
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in engagement subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(postID, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
