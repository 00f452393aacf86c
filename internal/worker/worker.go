package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"inventory-service/internal/util"
)

// PublishFunc performs a single event publish against the broker.
type PublishFunc func(ctx context.Context) error

// EventPump decouples request handling from broker publishes. Services
// enqueue publish jobs; a background goroutine drains them so a slow or
// unavailable broker never blocks an inventory operation.
type EventPump struct {
	jobs    chan PublishFunc
	logger  *zap.Logger
	wg      sync.WaitGroup
	stopped chan struct{}
}

func NewEventPump(bufferSize int) *EventPump {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &EventPump{
		jobs:    make(chan PublishFunc, bufferSize),
		logger:  util.GetLogger(),
		stopped: make(chan struct{}),
	}
}

// Start launches the drain goroutine. Each job gets its own timeout so
// one stuck publish cannot stall the queue indefinitely.
func (p *EventPump) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stopped:
				// drain what is already queued before exiting
				for {
					select {
					case job := <-p.jobs:
						p.run(job)
					default:
						return
					}
				}
			case job := <-p.jobs:
				p.run(job)
			}
		}
	}()
}

func (p *EventPump) run(job PublishFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := job(ctx); err != nil {
		p.logger.Warn("event publish failed", zap.Error(err))
	}
}

// Enqueue schedules a publish job. It never blocks: if the pump is nil
// (broker disabled) the job is discarded, and if the buffer is full the
// job is dropped with a warning. Events are best-effort notifications;
// the ledger in SQLite remains the source of truth.
func (p *EventPump) Enqueue(job PublishFunc) {
	if p == nil {
		return
	}
	select {
	case p.jobs <- job:
	default:
		p.logger.Warn("event queue full, dropping event")
	}
}

// Stop drains queued jobs and waits for the goroutine to exit.
func (p *EventPump) Stop() {
	if p == nil {
		return
	}
	close(p.stopped)
	p.wg.Wait()
}
