package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/snapshot"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/id"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/logging"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/metrics"
	"github.com/sourcegraph/conc/panics"
)

const (
	DefaultPollInterval = 60 * time.Second

	readyFailureThreshold = 3
)

// Aggregator produces one snapshot per call.
type Aggregator interface {
	Aggregate(ctx context.Context) (snapshot.Snapshot, error)
}

// PublisherStatus describes the recent health of the refresh loop.
type PublisherStatus struct {
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastError           string    `json:"lastError,omitempty"`
	LastAttempt         time.Time `json:"lastAttempt"`
	LastSuccess         time.Time `json:"lastSuccess"`
	Cycles              int64     `json:"cycles"`
	SkippedTicks        int64     `json:"skippedTicks"`
	Interval            string    `json:"interval"`
}

// IsReady reports whether a snapshot has been published and the loop is not failing repeatedly.
func (s PublisherStatus) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < readyFailureThreshold
}

// SnapshotPublisher owns the published snapshot. It is the single writer: one refresh runs
// at a time and the result is swapped in whole, so readers never see a partial snapshot.
type SnapshotPublisher struct {
	aggregator Aggregator
	interval   time.Duration
	logger     *logging.Logger
	metrics    *metrics.Recorder
	now        func() time.Time
	ids        id.Generator

	current  atomic.Pointer[snapshot.Snapshot]
	inFlight atomic.Bool
	skipped  atomic.Int64

	subMu       sync.Mutex
	subscribers map[uint64]func(snapshot.Snapshot)
	nextSubID   uint64

	statusMu sync.RWMutex
	status   PublisherStatus

	startMu  sync.Mutex
	started  bool
	cancel   context.CancelFunc
	loopDone chan struct{}
	cycles   sync.WaitGroup
	stopOnce sync.Once
}

func NewSnapshotPublisher(aggregator Aggregator, interval time.Duration, logger *logging.Logger, recorder *metrics.Recorder) *SnapshotPublisher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SnapshotPublisher{
		aggregator:  aggregator,
		interval:    interval,
		logger:      logger.Named("publisher"),
		metrics:     recorder,
		now:         time.Now,
		ids:         id.NewTimeOrderedGenerator(),
		subscribers: make(map[uint64]func(snapshot.Snapshot)),
		loopDone:    make(chan struct{}),
	}
}

// Start runs one refresh immediately and then one per interval until Stop is called or ctx
// is cancelled. Calling Start more than once has no effect.
func (p *SnapshotPublisher) Start(ctx context.Context) {
	p.startMu.Lock()
	if p.started {
		p.startMu.Unlock()
		return
	}
	p.started = true
	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.startMu.Unlock()

	ticker := time.NewTicker(p.interval)
	go func() {
		defer close(p.loopDone)
		defer ticker.Stop()

		p.logger.InfoContext(loopCtx, "snapshot publisher started", "interval", p.interval)
		p.tick(loopCtx)
		for {
			select {
			case <-loopCtx.Done():
				p.logger.InfoContext(loopCtx, "snapshot publisher stopped")
				return
			case <-ticker.C:
				p.tick(loopCtx)
			}
		}
	}()
}

// Stop cancels the loop and any in-flight cycle, then waits for both to exit or for ctx to
// expire.
func (p *SnapshotPublisher) Stop(ctx context.Context) error {
	p.startMu.Lock()
	started := p.started
	cancel := p.cancel
	p.startMu.Unlock()
	if !started {
		return nil
	}

	p.stopOnce.Do(cancel)

	done := make(chan struct{})
	go func() {
		<-p.loopDone
		p.cycles.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return crerr.Wrap(ctx.Err(), "wait for snapshot publisher to stop")
	}
}

// tick starts a refresh in the background. A tick that lands while a refresh is still
// running is skipped rather than queued.
func (p *SnapshotPublisher) tick(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.recordSkip(ctx)
		return
	}

	p.cycles.Add(1)
	go func() {
		defer p.cycles.Done()
		defer p.inFlight.Store(false)
		_ = p.refresh(ctx)
	}()
}

// Refresh runs one cycle synchronously. It returns ErrRefreshInFlight if another cycle is
// already running.
func (p *SnapshotPublisher) Refresh(ctx context.Context) error {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.recordSkip(ctx)
		return ErrRefreshInFlight
	}
	defer p.inFlight.Store(false)
	return p.refresh(ctx)
}

func (p *SnapshotPublisher) recordSkip(ctx context.Context) {
	p.skipped.Add(1)
	p.metrics.RecordSkippedTick()
	p.logger.WarnContext(ctx, "snapshot refresh skipped, previous cycle still running")
}

func (p *SnapshotPublisher) refresh(ctx context.Context) error {
	start := p.now()
	p.recordAttempt(start)

	var (
		next snapshot.Snapshot
		err  error
	)
	var catcher panics.Catcher
	catcher.Try(func() {
		next, err = p.aggregator.Aggregate(ctx)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		err = crerr.Wrap(recovered.AsError(), "aggregation cycle panicked")
	}
	if err == nil && ctx.Err() != nil {
		err = crerr.Wrap(ctx.Err(), "aggregation cycle cancelled")
	}
	if err == nil {
		next.ID, err = p.ids.NewID()
		err = crerr.Wrap(err, "assign snapshot id")
	}

	elapsed := p.now().Sub(start)
	p.metrics.RecordCycle(elapsed, err)

	if err != nil {
		if errors.Is(err, context.Canceled) {
			p.logger.InfoContext(ctx, "snapshot cycle discarded", "reason", "cancelled")
		} else {
			p.recordFailure(err)
			p.logger.ErrorContext(ctx, "snapshot cycle failed, keeping previous snapshot", "duration", elapsed, "error", err)
		}
		return err
	}

	next.IsLoading = false
	p.current.Store(&next)
	p.recordSuccess(start)
	p.metrics.RecordPublished(len(next.Games), len(next.News), len(next.Transactions), len(next.Injuries))
	p.logger.InfoContext(ctx, "snapshot published",
		"snapshot_id", next.ID,
		"games", len(next.Games),
		"news", len(next.News),
		"transactions", len(next.Transactions),
		"injuries", len(next.Injuries),
		"duration", elapsed,
	)

	p.notify(ctx, next)
	return nil
}

// Snapshot returns the last published snapshot with the current loading flag. Before the
// first publish it returns an empty snapshot.
func (p *SnapshotPublisher) Snapshot() snapshot.Snapshot {
	out := snapshot.Empty()
	if current := p.current.Load(); current != nil {
		out = *current
	}
	out.IsLoading = p.inFlight.Load()
	return out
}

// Current returns the last published snapshot or ErrSnapshotUnavailable before the first one.
func (p *SnapshotPublisher) Current() (snapshot.Snapshot, error) {
	current := p.current.Load()
	if current == nil {
		return snapshot.Snapshot{}, fmt.Errorf("%w: no cycle has completed yet", ErrSnapshotUnavailable)
	}
	out := *current
	out.IsLoading = p.inFlight.Load()
	return out, nil
}

func (p *SnapshotPublisher) IsLoading() bool {
	return p.inFlight.Load()
}

// Subscribe registers fn to be called after every successful publish. The returned func
// removes the subscription.
func (p *SnapshotPublisher) Subscribe(fn func(snapshot.Snapshot)) func() {
	if fn == nil {
		return func() {}
	}

	p.subMu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn
	p.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.subMu.Lock()
			delete(p.subscribers, id)
			p.subMu.Unlock()
		})
	}
}

func (p *SnapshotPublisher) notify(ctx context.Context, snap snapshot.Snapshot) {
	p.subMu.Lock()
	subs := make([]func(snapshot.Snapshot), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	p.subMu.Unlock()

	for _, fn := range subs {
		var catcher panics.Catcher
		catcher.Try(func() { fn(snap) })
		if recovered := catcher.Recovered(); recovered != nil {
			p.logger.ErrorContext(ctx, "snapshot subscriber panicked", "error", recovered.AsError())
		}
	}
}

func (p *SnapshotPublisher) recordAttempt(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.LastAttempt = at
	p.status.Cycles++
}

func (p *SnapshotPublisher) recordSuccess(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures = 0
	p.status.LastError = ""
	p.status.LastSuccess = at
}

func (p *SnapshotPublisher) recordFailure(err error) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures++
	p.status.LastError = err.Error()
}

// Status returns a copy of the loop's recent health.
func (p *SnapshotPublisher) Status() PublisherStatus {
	p.statusMu.RLock()
	status := p.status
	p.statusMu.RUnlock()

	status.SkippedTicks = p.skipped.Load()
	status.Interval = p.interval.String()
	return status
}
