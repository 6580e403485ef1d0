// Package notify decouples email delivery from request handling. Services
// enqueue notification payloads; the worker drains the queue and sends mail.
// Delivery failures are logged and never surface to candidates.
package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/testgest/testgest-backend/internal/config"
)

// Notification kinds.
const (
	KindRegistered = "registered"
	KindValidated  = "validated"
	KindResult     = "result"
)

// Payload is one queued notification.
type Payload struct {
	Kind       string  `json:"kind"`
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	AccessCode string  `json:"access_code,omitempty"`
	ScoreTotal int     `json:"score_total,omitempty"`
	ScoreMax   int     `json:"score_max,omitempty"`
	Percentage float64 `json:"percentage,omitempty"`
}

// QueueNotifier pushes payloads onto the Redis notification queue.
type QueueNotifier struct {
	rdb *redis.Client
}

// NewQueueNotifier creates a new QueueNotifier.
func NewQueueNotifier(rdb *redis.Client) *QueueNotifier {
	return &QueueNotifier{rdb: rdb}
}

// Notify enqueues the payload. Errors are logged, not returned: a failed
// notification must never fail the operation that triggered it.
func (n *QueueNotifier) Notify(ctx context.Context, p Payload) {
	data, err := json.Marshal(p)
	if err != nil {
		log.Error().Err(err).Str("kind", p.Kind).Msg("Failed to marshal notification")
		return
	}
	if err := n.rdb.RPush(ctx, config.WorkerKey.NotificationQueue, data).Err(); err != nil {
		log.Error().Err(err).
			Str("kind", p.Kind).
			Str("email", p.Email).
			Msg("Failed to enqueue notification")
	}
}
