package outbox

import (
	"context"
	"time"
)

const defaultPollInterval = 1 * time.Second

// Deliverer hands a pending entry to its destination, typically a message
// broker client. An error leaves the entry unprocessed so a later poll picks
// it up again, which makes delivery at-least-once.
type Deliverer interface {
	Deliver(ctx context.Context, entry Entry) error
}

// DelivererFunc adapts a plain function to the Deliverer interface.
type DelivererFunc func(ctx context.Context, entry Entry) error

func (f DelivererFunc) Deliver(ctx context.Context, entry Entry) error {
	return f(ctx, entry)
}

// Logger is a subset of the log/slog Logger used by the poller.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Poller drains the outbox in the background. Entries are delivered in
// creation order and marked processed only after a successful delivery.
type Poller struct {
	store     Store
	deliverer Deliverer
	interval  time.Duration
	batchSize int
	logger    Logger
}

// PollerOption configures a Poller built with NewPoller.
type PollerOption func(*Poller)

// WithPollInterval overrides the default interval of one second.
func WithPollInterval(interval time.Duration) PollerOption {
	return func(p *Poller) {
		p.interval = interval
	}
}

// WithBatchSize caps how many entries a single poll picks up. Zero means
// no cap.
func WithBatchSize(size int) PollerOption {
	return func(p *Poller) {
		p.batchSize = size
	}
}

// WithPollerLogger attaches a logger for delivery failures and progress.
func WithPollerLogger(logger Logger) PollerOption {
	return func(p *Poller) {
		p.logger = logger
	}
}

// NewPoller creates a Poller over the given store and deliverer.
func NewPoller(store Store, deliverer Deliverer, options ...PollerOption) *Poller {
	poller := &Poller{
		store:     store,
		deliverer: deliverer,
		interval:  defaultPollInterval,
	}

	for _, option := range options {
		option(poller)
	}

	return poller
}

// Run polls until the context is canceled. It blocks, so callers usually run
// it in its own goroutine.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce drains one batch of pending entries. It stops at the first
// delivery failure so entries behind it keep their order on the next poll.
// It returns the number of entries delivered and marked processed.
func (p *Poller) PollOnce(ctx context.Context) int {
	entries, err := p.store.FindUnprocessed(ctx, p.batchSize)
	if err != nil {
		p.logError("finding unprocessed outbox entries failed", "error", err)

		return 0
	}

	delivered := 0

	for _, entry := range entries {
		if err := p.deliverer.Deliver(ctx, entry); err != nil {
			p.logError("delivering outbox entry failed",
				"entryID", entry.ID.String(),
				"eventType", entry.EventType,
				"error", err)

			return delivered
		}

		if err := p.store.MarkProcessed(ctx, entry.ID); err != nil {
			p.logError("marking outbox entry as processed failed",
				"entryID", entry.ID.String(),
				"error", err)

			return delivered
		}

		delivered++
	}

	if delivered > 0 {
		p.logDebug("outbox entries delivered", "count", delivered)
	}

	return delivered
}

func (p *Poller) logError(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}

func (p *Poller) logDebug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
