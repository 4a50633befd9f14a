package syncqueue

import (
	"context"
	"sync"
	"time"

	"github.com/Domenick1991/skyline/internal/logger"
	"go.uber.org/zap"
)

const DefaultInterval = 5 * time.Second

// Flusher is implemented by Queue.
type Flusher interface {
	Flush(ctx context.Context) FlushReport
}

// Scheduler flushes a queue on start, then every interval, and once more when
// stopped.
type Scheduler struct {
	queue        Flusher
	interval     time.Duration
	finalTimeout time.Duration
	log          *zap.Logger

	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

func NewScheduler(queue Flusher, interval time.Duration, log *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	log = logger.OrNop(log)
	return &Scheduler{
		queue:        queue,
		interval:     interval,
		finalTimeout: defaultUpsertTimeout,
		log:          log,
		done:         make(chan struct{}),
	}
}

// Start runs the flush loop until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("starting sync scheduler", zap.Duration("interval", s.interval))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.queue.Flush(ctx)
		for {
			select {
			case <-ticker.C:
				s.queue.Flush(ctx)
			case <-ctx.Done():
				s.finalFlush()
				return
			case <-s.done:
				s.finalFlush()
				return
			}
		}
	}()
}

func (s *Scheduler) finalFlush() {
	ctx, cancel := context.WithTimeout(context.Background(), s.finalTimeout)
	defer cancel()
	report := s.queue.Flush(ctx)
	s.log.Info("sync scheduler stopped", zap.Int("final_flush", report.Attempted))
}

// Stop ends the loop and waits for the final flush.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
	s.wg.Wait()
}
