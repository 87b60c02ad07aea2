package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
)

// captureTransport keeps events in memory instead of sending them
type captureTransport struct {
	mu     sync.Mutex
	events []*sentry.Event
}

//nolint:gocritic // signature fixed by sentry.Transport
func (t *captureTransport) Configure(sentry.ClientOptions) {}

func (t *captureTransport) SendEvent(event *sentry.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
}

func (t *captureTransport) Flush(time.Duration) bool { return true }

func (t *captureTransport) FlushWithContext(ctx context.Context) bool { return ctx.Err() == nil }

func (t *captureTransport) Close() {}

func (t *captureTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.events)
}

// last returns the newest event, or nil
func (t *captureTransport) last() *sentry.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.events) == 0 {
		return nil
	}
	return t.events[len(t.events)-1]
}
