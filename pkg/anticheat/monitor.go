// Package anticheat detects and durably records suspicious behavior during a
// timed test attempt: the app losing foreground beyond a grace period, and the
// user navigating away from the test screen. The host forwards OS lifecycle
// and navigation focus transitions; the monitor exposes a sticky
// caught-cheating flag and a counter that survive app restarts via the
// persistent store.
package anticheat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-mobile-core/pkg/store"
)

// AppState mirrors the process lifecycle states the host reports.
type AppState string

const (
	AppStateForeground AppState = "foreground"
	AppStateBackground AppState = "background"
	AppStateInactive   AppState = "inactive"
)

// DefaultGracePeriod is how long a background transition is tolerated before
// it counts as a suspicious event. Short interruptions (phone call, system
// dialog) are not penalized.
const DefaultGracePeriod = 5 * time.Second

// Config tunes monitor behavior. The zero value uses defaults.
type Config struct {
	GracePeriod time.Duration
}

// State is the host-visible snapshot of a monitoring session.
type State struct {
	CaughtCheating        bool `json:"caught_cheating"`
	VisibilityChangeTimes int  `json:"visibility_change_times"`
	IsMonitoring          bool `json:"is_monitoring"`
}

// Monitor tracks one test attempt at a time, identified by an Identity.
// In-memory state updates synchronously on detection; persistence is
// best-effort and never blocks the caller. Safe for concurrent use — the
// grace timer fires off the host goroutine.
type Monitor struct {
	store store.Store
	log   zerolog.Logger
	grace time.Duration

	mu               sync.Mutex
	id               Identity
	started          bool
	monitoring       bool
	caught           bool
	visibilityCount  int
	flaggedThisCycle bool
	graceTimer       *time.Timer
	events           []Event
}

// New creates a Monitor backed by the given store.
func New(st store.Store, cfg Config, log zerolog.Logger) *Monitor {
	grace := cfg.GracePeriod
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	return &Monitor{
		store: st,
		grace: grace,
		log:   log.With().Str("component", "cheating_monitor").Logger(),
	}
}

// Start begins observing lifecycle and focus transitions for the identity.
// Idempotent per identity; starting again for the same identity only
// re-confirms monitoring. Starting for a different identity begins a fresh
// session. The persisted record is read and merged before Start returns, so
// prior detections survive a process kill mid-attempt.
func (m *Monitor) Start(ctx context.Context, id Identity) {
	m.mu.Lock()
	if m.started && m.id == id {
		m.monitoring = true
		m.mu.Unlock()
		return
	}
	m.stopTimerLocked()
	m.id = id
	m.started = true
	m.monitoring = true
	m.caught = false
	m.visibilityCount = 0
	m.flaggedThisCycle = false
	m.events = nil
	m.mu.Unlock()

	m.log.Debug().
		Str("student_id", id.StudentID).
		Str("test_type", id.TestType).
		Str("test_id", id.TestID).
		Msg("monitoring started")

	m.reconcile(ctx)
}

// Stop ends the session without touching persisted state. The last in-memory
// state remains readable via State.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTimerLocked()
	m.started = false
	m.monitoring = false
}

// OnAppStateChange handles process-lifecycle transitions. Background or
// inactive arms a single-shot grace timer; returning to foreground before it
// fires cancels it with no event recorded.
func (m *Monitor) OnAppStateChange(next AppState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return
	}

	switch next {
	case AppStateBackground, AppStateInactive:
		// App state transitions are mutually exclusive, so at most one
		// timer is ever outstanding.
		if m.graceTimer == nil {
			m.graceTimer = time.AfterFunc(m.grace, m.onGraceExpired)
		}
	case AppStateForeground:
		m.stopTimerLocked()
	}
}

// onGraceExpired fires when the app stayed backgrounded for the full grace
// period. Exactly one increment per timer firing, not per tick.
func (m *Monitor) onGraceExpired() {
	m.mu.Lock()
	if m.graceTimer == nil || !m.started {
		m.mu.Unlock()
		return
	}
	m.graceTimer = nil
	key, count := m.recordDetectionLocked(EventMinimizedTooLong, map[string]string{
		"grace_period": m.grace.String(),
	})
	m.mu.Unlock()

	m.log.Warn().
		Str("event", string(EventMinimizedTooLong)).
		Int("visibility_change_times", count).
		Msg("app backgrounded beyond grace period")

	m.persistAsync(key, count, string(EventMinimizedTooLong))
}

// OnFocusLost handles screen-level navigation focus loss (the user stays
// in-app but leaves the test screen). Counts at most once per focus cycle.
func (m *Monitor) OnFocusLost() {
	m.mu.Lock()
	if !m.started || !m.monitoring || m.flaggedThisCycle {
		m.mu.Unlock()
		return
	}
	m.flaggedThisCycle = true
	m.monitoring = false
	key, count := m.recordDetectionLocked(EventNavigatedAway, nil)
	m.mu.Unlock()

	m.log.Warn().
		Str("event", string(EventNavigatedAway)).
		Int("visibility_change_times", count).
		Msg("navigated away from test screen")

	m.persistAsync(key, count, string(EventNavigatedAway))
}

// OnFocusGained resumes monitoring, resets the focus-cycle guard, and
// re-merges the persisted record.
func (m *Monitor) OnFocusGained(ctx context.Context) {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.monitoring = true
	m.flaggedThisCycle = false
	m.mu.Unlock()

	m.reconcile(ctx)
}

// State returns the current reconciled state. Never blocks on the store;
// before the initial read resolves it reports best-known in-memory state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{
		CaughtCheating:        m.caught,
		VisibilityChangeTimes: m.visibilityCount,
		IsMonitoring:          m.monitoring,
	}
}

// Events returns a copy of the events detected this session. Event detail is
// in-memory only; the persisted record carries just the count and flag.
func (m *Monitor) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Reset clears persisted and in-memory state for the identity. Used on a
// fresh attempt (retest) so a previous attempt's flags do not carry over.
func (m *Monitor) Reset(ctx context.Context, id Identity) {
	m.clearIdentity(ctx, id)
}

// Clear removes the persisted record after successful submission and resets
// in-memory state.
func (m *Monitor) Clear(ctx context.Context, id Identity) {
	m.clearIdentity(ctx, id)
}

func (m *Monitor) clearIdentity(ctx context.Context, id Identity) {
	m.mu.Lock()
	if m.id == id {
		m.stopTimerLocked()
		m.started = false
		m.monitoring = false
		m.caught = false
		m.visibilityCount = 0
		m.flaggedThisCycle = false
		m.events = nil
	}
	m.mu.Unlock()

	if err := m.store.Remove(ctx, RecordKey(id)); err != nil {
		m.log.Error().Err(err).Str("key", RecordKey(id)).Msg("remove cheating record failed")
	}
}

// recordDetectionLocked increments the counter, sets the sticky flag, and
// appends an event. Caller holds the mutex.
func (m *Monitor) recordDetectionLocked(t EventType, details map[string]string) (key string, count int) {
	m.visibilityCount++
	m.caught = true
	m.events = append(m.events, newEvent(t, SeverityHigh, details))
	return RecordKey(m.id), m.visibilityCount
}

// reconcile reads the persisted record and merges it into memory: counts take
// the maximum, the flag ORs. The merge never decreases the counter.
func (m *Monitor) reconcile(ctx context.Context) {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	key := RecordKey(m.id)
	m.mu.Unlock()

	raw, err := m.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			// Fail open: a transient read error must not flag a student
			// without evidence.
			m.log.Error().Err(err).Str("key", key).Msg("read cheating record failed")
		}
		return
	}

	rec, ok := decodeRecord(raw)

	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	if !ok {
		// Legacy or corrupt record: conservatively one prior event.
		m.visibilityCount++
		m.caught = true
		count := m.visibilityCount
		m.mu.Unlock()

		m.log.Warn().Str("key", key).Msg("legacy cheating record, counting one prior event")
		m.persistAsync(key, count, "legacy_record")
		return
	}
	if rec.VisibilityChangeTimes > m.visibilityCount {
		m.visibilityCount = rec.VisibilityChangeTimes
	}
	m.caught = m.caught || rec.CaughtCheating
	m.mu.Unlock()
}

// persistAsync writes the record without blocking the caller. A failed write
// is logged and not retried; in-memory state stays authoritative.
func (m *Monitor) persistAsync(key string, count int, reason string) {
	raw := encodeRecord(count, true, reason)
	go func() {
		if err := m.store.Set(context.Background(), key, raw); err != nil {
			m.log.Error().Err(err).Str("key", key).Msg("persist cheating record failed")
		}
	}()
}

func (m *Monitor) stopTimerLocked() {
	if m.graceTimer != nil {
		m.graceTimer.Stop()
		m.graceTimer = nil
	}
}
