package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testgest/testgest-backend/internal/config"
	"github.com/testgest/testgest-backend/internal/notify"
	"gopkg.in/gomail.v2"
)

const (
	// NotifyPollTimeout bounds each BLPop wait so shutdown is responsive.
	NotifyPollTimeout = 1 * time.Second
	// NotifyMaxRetries bounds redelivery of a failing notification.
	NotifyMaxRetries = 3
)

// NotifyWorker drains the notification queue and delivers emails over SMTP.
// Delivery failures are requeued a bounded number of times and then dropped
// with an error log; candidates are never blocked on email.
type NotifyWorker struct {
	rdb    *redis.Client
	dialer *gomail.Dialer
	from   string
	log    zerolog.Logger
}

// queuedNotification wraps the payload with its redelivery count.
type queuedNotification struct {
	notify.Payload
	Attempts int `json:"attempts,omitempty"`
}

// NewNotifyWorker creates a new NotifyWorker.
func NewNotifyWorker(rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *NotifyWorker {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	return &NotifyWorker{
		rdb:    rdb,
		dialer: dialer,
		from:   cfg.MailFrom,
		log:    log.With().Str("component", "notify_worker").Logger(),
	}
}

// Start runs the worker loop until the context is canceled.
func (w *NotifyWorker) Start(ctx context.Context) {
	w.log.Info().Msg("NotifyWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("NotifyWorker stopped")
			return
		default:
			item, err := w.rdb.BLPop(ctx, NotifyPollTimeout, config.WorkerKey.NotificationQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			var q queuedNotification
			if err := json.Unmarshal([]byte(item[1]), &q); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			if err := w.deliver(q.Payload); err != nil {
				w.retry(ctx, q, err)
				continue
			}
			w.log.Info().Str("kind", q.Kind).Str("email", q.Email).Msg("Notification delivered")
		}
	}
}

// retry requeues the notification or drops it after NotifyMaxRetries.
func (w *NotifyWorker) retry(ctx context.Context, q queuedNotification, cause error) {
	q.Attempts++
	if q.Attempts >= NotifyMaxRetries {
		w.log.Error().Err(cause).
			Str("kind", q.Kind).
			Str("email", q.Email).
			Int("attempts", q.Attempts).
			Msg("Notification dropped after retries")
		return
	}
	raw, err := json.Marshal(q)
	if err != nil {
		w.log.Error().Err(err).Msg("Failed to marshal notification for requeue")
		return
	}
	if err := w.rdb.RPush(ctx, config.WorkerKey.NotificationQueue, raw).Err(); err != nil {
		w.log.Error().Err(err).Msg("Failed to requeue notification")
	}
}

func (w *NotifyWorker) deliver(p notify.Payload) error {
	subject, body, err := renderMail(p)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", w.from)
	m.SetHeader("To", p.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return w.dialer.DialAndSend(m)
}

// renderMail produces the subject and plain-text body for a notification.
func renderMail(p notify.Payload) (string, string, error) {
	switch p.Kind {
	case notify.KindRegistered:
		return "Registration received",
			fmt.Sprintf("Hello %s,\n\nYour registration has been received. You will get your access code once an administrator validates it.\n", p.Name),
			nil
	case notify.KindValidated:
		return "Your test access code",
			fmt.Sprintf("Hello %s,\n\nYour registration has been validated. Your access code is: %s\n\nKeep it safe; you will need it to start your test.\n", p.Name, p.AccessCode),
			nil
	case notify.KindResult:
		return "Your test result",
			fmt.Sprintf("Hello %s,\n\nYour test has been scored: %d/%d (%.2f%%).\n", p.Name, p.ScoreTotal, p.ScoreMax, p.Percentage),
			nil
	default:
		return "", "", fmt.Errorf("unknown notification kind %q", p.Kind)
	}
}
