package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisNotifier publishes events to a Redis channel consumed by the push
// delivery tier. Publishing never blocks the booking workflow: failures are
// logged and dropped.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) Publish(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event_type", ev.Type).Msg("Failed to marshal booking event")
		return
	}

	// Detached context with its own deadline: the caller may already be done,
	// and the event should still go out
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()

	if err := n.client.Publish(pubCtx, n.channel, payload).Err(); err != nil {
		log.Error().Err(err).
			Str("event_type", ev.Type).
			Str("booking_id", ev.BookingID.String()).
			Msg("Failed to publish booking event")
		return
	}

	log.Debug().
		Str("event_type", ev.Type).
		Str("booking_id", ev.BookingID.String()).
		Msg("Booking event published")
}
