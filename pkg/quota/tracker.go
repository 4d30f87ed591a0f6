package quota

import (
	"io"
	"log/slog"
	"sync"
	"time"
)

// Scope names the quota axis that produced a denial.
type Scope string

const (
	// ScopeUser means the caller's own ceiling is exhausted.
	ScopeUser Scope = "user"
	// ScopeGlobal means the system-wide ceiling is exhausted.
	ScopeGlobal Scope = "global"
)

// Result is an admission decision. Quota exhaustion is a normal outcome, not
// an error: callers branch on Allowed and use ResetIn and Scope to build a
// user-facing message.
type Result struct {
	Allowed   bool
	Remaining int
	// ResetIn is the time until the relevant window resets: the denying
	// window on a denial, the caller's own window on an admission.
	ResetIn time.Duration
	// Scope is set only on denials.
	Scope Scope
}

// entry is one identity's fixed-window counter. The count is meaningful only
// while now < resetAt; a lapsed entry is logically absent even if the
// janitor has not swept it yet.
type entry struct {
	count   int
	resetAt time.Time
}

func (e *entry) lapsed(now time.Time) bool {
	return !now.Before(e.resetAt)
}

// Tracker enforces fixed-window request quotas in process memory, along two
// independent axes: per identity (guest IP, user id) and, optionally, global
// across all identities.
//
// Fixed window means admission is bursty at window boundaries: a caller can
// spend the whole quota in the first instant of a window and again right
// after reset. That is the intended behavior, not request smoothing.
//
// All methods are safe for concurrent use; the check-then-increment sequence
// is atomic under the tracker mutex, so racing callers can never overshoot a
// ceiling.
type Tracker struct {
	limit           int
	window          time.Duration
	globalLimit     int
	globalWindow    time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
	log             *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
	global  entry
	closed  bool

	done chan struct{}
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithClock overrides the time source. Useful for testing window lapse
// without sleeping.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithTrackerLogger sets the logger for janitor diagnostics.
func WithTrackerLogger(log *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		if log != nil {
			t.log = log
		}
	}
}

// NewTracker creates a tracker for one quota axis pair. The config is
// normalized first, so invalid ceilings and windows fall back to defaults.
// Call Close to stop the background janitor.
func NewTracker(cfg Config, opts ...TrackerOption) *Tracker {
	cfg = cfg.Normalize()

	t := &Tracker{
		limit:           cfg.Limit,
		window:          cfg.Window,
		globalLimit:     cfg.GlobalLimit,
		globalWindow:    cfg.GlobalWindow,
		cleanupInterval: cfg.CleanupInterval,
		now:             time.Now,
		log:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		entries:         make(map[string]*entry),
		done:            make(chan struct{}),
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.cleanupInterval > 0 {
		go t.janitor()
	}

	return t
}

// Limit returns the per-identity ceiling.
func (t *Tracker) Limit() int {
	return t.limit
}

// Check records one action for identity and returns the admission decision.
//
// The global axis is evaluated first: a spent global window denies
// immediately without touching the identity's own counter. Otherwise the
// identity's window is created, reset, or incremented as needed, and the
// global counter advances alongside every admission.
func (t *Tracker) Check(identity string) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()

	if t.globalLimit > 0 {
		if t.global.lapsed(now) {
			t.global = entry{resetAt: now.Add(t.globalWindow)}
		}
		if t.global.count >= t.globalLimit {
			return Result{ResetIn: t.global.resetAt.Sub(now), Scope: ScopeGlobal}
		}
	}

	e, ok := t.entries[identity]
	if !ok || e.lapsed(now) {
		t.entries[identity] = &entry{count: 1, resetAt: now.Add(t.window)}
		if t.globalLimit > 0 {
			t.global.count++
		}
		return Result{Allowed: true, Remaining: t.limit - 1, ResetIn: t.window}
	}

	if e.count < t.limit {
		e.count++
		if t.globalLimit > 0 {
			t.global.count++
		}
		return Result{Allowed: true, Remaining: t.limit - e.count, ResetIn: e.resetAt.Sub(now)}
	}

	return Result{ResetIn: e.resetAt.Sub(now), Scope: ScopeUser}
}

// Status reports what Check would decide without consuming any quota. Lapsed
// windows are treated as fresh but never written back.
func (t *Tracker) Status(identity string) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()

	if t.globalLimit > 0 && !t.global.lapsed(now) && t.global.count >= t.globalLimit {
		return Result{ResetIn: t.global.resetAt.Sub(now), Scope: ScopeGlobal}
	}

	e, ok := t.entries[identity]
	if !ok || e.lapsed(now) {
		return Result{Allowed: true, Remaining: t.limit, ResetIn: t.window}
	}

	if e.count < t.limit {
		return Result{Allowed: true, Remaining: t.limit - e.count, ResetIn: e.resetAt.Sub(now)}
	}

	return Result{ResetIn: e.resetAt.Sub(now), Scope: ScopeUser}
}

// Close stops the janitor. Idempotent. The tracker remains usable after
// Close; only the background sweep stops.
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	close(t.done)
	return nil
}

// janitor periodically removes lapsed identity entries. Memory hygiene only:
// enforcement never depends on the sweep, since Check and Status already
// treat lapsed entries as absent.
func (t *Tracker) janitor() {
	ticker := time.NewTicker(t.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			t.sweep()
		}
	}
}

func (t *Tracker) sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	removed := 0
	for identity, e := range t.entries {
		if e.lapsed(now) {
			delete(t.entries, identity)
			removed++
		}
	}

	if removed > 0 {
		t.log.Debug("quota: swept lapsed entries", "removed", removed, "remaining", len(t.entries))
	}
}

// size returns the number of tracked identity entries, lapsed or not.
func (t *Tracker) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
