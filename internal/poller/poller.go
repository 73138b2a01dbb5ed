// Package poller drives progress polling for one in-flight generation job.
// It turns discrete status snapshots into observer callbacks and guarantees
// that nothing is observed after deactivation.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fozagtx/adMat/internal/domain"
	"github.com/fozagtx/adMat/internal/status"
)

// ErrGenerationFailed is reported through OnError when the job reaches the
// failed terminal state.
var ErrGenerationFailed = errors.New("video generation failed")

const defaultInterval = time.Second

// Fetcher supplies progress snapshots. The handlers' /progress endpoint and
// the upstream clients both satisfy it.
type Fetcher interface {
	FetchProgress(ctx context.Context, id string) (*domain.GenerationProgress, error)
}

// Observer receives poll outcomes. Nil callbacks are skipped. OnComplete is
// invoked exactly once per activation, and never after Stop.
type Observer struct {
	OnProgress func(domain.GenerationProgress)
	OnComplete func(domain.GenerationProgress)
	OnError    func(error)
}

// Poller polls a single job at a fixed cadence until a terminal status or
// Stop. At most one activation is live at a time; starting a new id replaces
// the previous activation.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	observer Observer

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs a poller. A non-positive interval falls back to one second.
func New(fetcher Fetcher, interval time.Duration, observer Observer) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{fetcher: fetcher, interval: interval, observer: observer}
}

// Start begins polling the given id: one immediate fetch, then one per
// interval. Any previous activation is stopped first and fully drained
// before the new one begins.
func (p *Poller) Start(id string) {
	p.Stop()

	p.mu.Lock()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	go p.run(ctx, id, done)
}

// Stop deactivates the current polling loop, if any, and waits for it to
// wind down. Results from a fetch still in flight are discarded.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (p *Poller) run(ctx context.Context, id string, done chan struct{}) {
	defer close(done)

	if p.poll(ctx, id) {
		return
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if p.poll(ctx, id) {
				return
			}
		}
	}
}

// poll performs one fetch and dispatches observer callbacks. It reports
// whether the loop should stop. The context is re-checked after the fetch so
// a result that resolves after deactivation is dropped without any callback.
func (p *Poller) poll(ctx context.Context, id string) bool {
	progress, err := p.fetcher.FetchProgress(ctx, id)
	if ctx.Err() != nil {
		return true
	}
	if err != nil {
		// Transient by policy: only terminal statuses and Stop end the
		// loop, so the next tick retries unconditionally.
		p.notifyError(err)
		return false
	}

	p.notifyProgress(*progress)
	switch progress.Status {
	case status.StatusCompleted:
		if p.observer.OnComplete != nil {
			p.observer.OnComplete(*progress)
		}
		return true
	case status.StatusFailed:
		p.notifyError(fmt.Errorf("%w: %s", ErrGenerationFailed, progress.CurrentStep))
		return true
	default:
		return false
	}
}

func (p *Poller) notifyProgress(progress domain.GenerationProgress) {
	if p.observer.OnProgress != nil {
		p.observer.OnProgress(progress)
	}
}

func (p *Poller) notifyError(err error) {
	if p.observer.OnError != nil {
		p.observer.OnError(err)
	}
}
