package email

import (
	"context"
	"errors"

	"github.com/Domenick1991/skyline/internal/domain"
	"go.uber.org/zap"
)

var ErrNoRecipient = errors.New("notification has no recipient")

// Transport delivers one message. Real SMTP/API transports live outside
// this module.
type Transport interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogTransport writes messages to the log instead of sending them.
type LogTransport struct {
	log *zap.Logger
}

func NewLogTransport(log *zap.Logger) *LogTransport {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogTransport{log: log}
}

func (t *LogTransport) Send(ctx context.Context, to, subject, body string) error {
	t.log.Info("send email",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)))
	return nil
}

type Sender struct {
	transport Transport
}

func NewSender(transport Transport) *Sender {
	return &Sender{transport: transport}
}

// Send delivers n through the transport. Its signature matches
// notification.Subscriber.
func (s *Sender) Send(ctx context.Context, n domain.Notification) error {
	if n.RecipientEmail == "" {
		return ErrNoRecipient
	}
	return s.transport.Send(ctx, n.RecipientEmail, n.Subject, n.Body)
}
