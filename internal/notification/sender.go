// Package notification dispatches buyer-facing messages. Sending is
// always best-effort: callers log failures and carry on, a failed
// notification never fails the operation that triggered it.
package notification

import (
	"context"

	"github.com/rs/zerolog/log"
)

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender is the fallback when no broker is configured: it records
// the message and reports success.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("notification (log only)")
	return nil
}
