package notification

import (
	"context"
	"fmt"
	"sync"

	"github.com/Domenick1991/skyline/internal/domain"
	"github.com/Domenick1991/skyline/internal/logger"
	"github.com/Domenick1991/skyline/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Subscriber receives every published notification.
type Subscriber func(ctx context.Context, n domain.Notification) error

type subscription struct {
	name string
	fn   Subscriber
}

// Dispatcher fans a notification out to its subscribers in subscription
// order. A failing subscriber is logged and skipped.
type Dispatcher struct {
	log *zap.Logger

	mu   sync.RWMutex
	subs []subscription
}

func NewDispatcher(log *zap.Logger) *Dispatcher {
	log = logger.OrNop(log)
	return &Dispatcher{log: log}
}

func (d *Dispatcher) Subscribe(name string, fn Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = append(d.subs, subscription{name: name, fn: fn})
}

// Publish stamps n with a fresh ID when it has none and returns the number of
// subscribers that failed. Failures never reach the caller as errors.
func (d *Dispatcher) Publish(ctx context.Context, n domain.Notification) int {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}

	d.mu.RLock()
	subs := make([]subscription, len(d.subs))
	copy(subs, d.subs)
	d.mu.RUnlock()

	failed := 0
	for _, s := range subs {
		if err := deliver(ctx, s.fn, n); err != nil {
			failed++
			metrics.NotificationFailuresTotal.WithLabelValues(s.name).Inc()
			d.log.Warn("notification subscriber failed",
				zap.String("subscriber", s.name),
				zap.String("notification_id", n.ID),
				zap.String("type", string(n.Type)),
				zap.Error(err))
		}
	}
	return failed
}

func deliver(ctx context.Context, fn Subscriber, n domain.Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panic: %v", r)
		}
	}()
	return fn(ctx, n)
}
