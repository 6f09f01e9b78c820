package recognition

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"eduvid/internal/frame"
)

// TickResult is delivered for every completed inference.
type TickResult struct {
	Tick    uint64
	Frame   frame.Frame
	Results []Result
	Elapsed time.Duration
}

// SamplerStats counts what the sampler did with its ticks.
type SamplerStats struct {
	Ticks      uint64 `json:"ticks"`
	Dispatched uint64 `json:"dispatched"`
	Gated      uint64 `json:"gated"`
	NotReady   uint64 `json:"not_ready"`
	Busy       uint64 `json:"busy"`
	Errors     uint64 `json:"errors"`
	Stale      uint64 `json:"stale"`
}

// SamplerConfig wires a sampler.
type SamplerConfig struct {
	Interval   time.Duration
	Source     frame.Source
	Recognizer Recognizer
	// Active gates each tick; inference only runs while it returns true.
	Active   func() bool
	OnResult func(TickResult)
	OnError  func(tick uint64, err error)
}

// Sampler pulls the latest frame on a fixed period and runs it through the
// recognizer. At most one inference is in flight; ticks arriving while it runs
// are counted as busy and skipped. Results are delivered in tick order and an
// older result never overwrites a newer one.
type Sampler struct {
	cfg SamplerConfig

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	inFlight  atomic.Bool
	tickSeq   atomic.Uint64
	deliverMu sync.Mutex
	delivered uint64

	ticks, dispatched, gated, notReady, busy, errs, stale atomic.Uint64
}

// NewSampler builds a sampler. A non-positive interval defaults to 700ms.
func NewSampler(cfg SamplerConfig) *Sampler {
	if cfg.Interval <= 0 {
		cfg.Interval = 700 * time.Millisecond
	}
	if cfg.Active == nil {
		cfg.Active = func() bool { return true }
	}
	return &Sampler{cfg: cfg}
}

// Start launches the ticker loop. Calling Start on a running sampler is a no-op.
func (s *Sampler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.wg.Add(1)
	go s.loop(loopCtx)
}

// Stop cancels the loop and any in-flight inference and waits for both to
// return. Safe to call more than once.
func (s *Sampler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
}

// Stats returns a snapshot of the tick counters.
func (s *Sampler) Stats() SamplerStats {
	return SamplerStats{
		Ticks:      s.ticks.Load(),
		Dispatched: s.dispatched.Load(),
		Gated:      s.gated.Load(),
		NotReady:   s.notReady.Load(),
		Busy:       s.busy.Load(),
		Errors:     s.errs.Load(),
		Stale:      s.stale.Load(),
	}
}

func (s *Sampler) loop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one sampling step and reports whether inference was dispatched.
func (s *Sampler) tick(ctx context.Context) bool {
	s.ticks.Add(1)
	if !s.cfg.Active() {
		s.gated.Add(1)
		return false
	}
	f, ok := s.cfg.Source.Latest()
	if !ok {
		s.notReady.Add(1)
		return false
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		s.busy.Add(1)
		return false
	}
	seq := s.tickSeq.Add(1)
	s.dispatched.Add(1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		start := time.Now()
		results, err := s.cfg.Recognizer.Recognize(ctx, f)
		s.inFlight.Store(false)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.errs.Add(1)
			if s.cfg.OnError != nil {
				s.cfg.OnError(seq, err)
			}
			return
		}
		s.deliver(TickResult{Tick: seq, Frame: f, Results: results, Elapsed: time.Since(start)})
	}()
	return true
}

func (s *Sampler) deliver(res TickResult) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if res.Tick <= s.delivered {
		s.stale.Add(1)
		return
	}
	s.delivered = res.Tick
	if s.cfg.OnResult != nil {
		s.cfg.OnResult(res)
	}
}
