package anticheat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/exstem-mobile-core/pkg/store"
)

const testGrace = 30 * time.Millisecond

var testIdentity = Identity{StudentID: "s1", TestType: "Word-Matching", TestID: "t1"}

// notifyStore wraps a Store and signals every completed Set, so tests can
// wait for the monitor's fire-and-forget persistence.
type notifyStore struct {
	store.Store
	sets chan string
}

func newNotifyStore(inner store.Store) *notifyStore {
	return &notifyStore{Store: inner, sets: make(chan string, 16)}
}

func (s *notifyStore) Set(ctx context.Context, key, value string) error {
	err := s.Store.Set(ctx, key, value)
	s.sets <- key
	return err
}

func (s *notifyStore) waitSet(t *testing.T) {
	t.Helper()
	select {
	case <-s.sets:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for persist")
	}
}

// failStore errors on every operation.
type failStore struct{}

func (failStore) Get(context.Context, string) (string, error) { return "", errors.New("store down") }
func (failStore) Set(context.Context, string, string) error   { return errors.New("store down") }
func (failStore) Remove(context.Context, string) error        { return errors.New("store down") }
func (failStore) Keys(context.Context) ([]string, error)      { return nil, errors.New("store down") }

func newTestMonitor(st store.Store) *Monitor {
	return New(st, Config{GracePeriod: testGrace}, zerolog.Nop())
}

func TestRecordKey_Normalization(t *testing.T) {
	key := RecordKey(testIdentity)
	assert.Equal(t, "cheating:s1:word_matching:t1", key)
	assert.Equal(t, key, RecordKey(Identity{StudentID: "s1", TestType: "word_matching", TestID: "t1"}))
}

func TestMonitor_StartIsClean(t *testing.T) {
	m := newTestMonitor(store.NewMemoryStore())
	m.Start(context.Background(), testIdentity)

	st := m.State()
	assert.False(t, st.CaughtCheating)
	assert.Zero(t, st.VisibilityChangeTimes)
	assert.True(t, st.IsMonitoring)
}

func TestMonitor_BriefBackgroundTolerated(t *testing.T) {
	m := newTestMonitor(store.NewMemoryStore())
	m.Start(context.Background(), testIdentity)

	m.OnAppStateChange(AppStateBackground)
	time.Sleep(testGrace / 3)
	m.OnAppStateChange(AppStateForeground)

	// The cancelled timer must not fire later.
	time.Sleep(2 * testGrace)

	st := m.State()
	assert.False(t, st.CaughtCheating)
	assert.Zero(t, st.VisibilityChangeTimes)
}

func TestMonitor_LongBackgroundCountsOnce(t *testing.T) {
	ns := newNotifyStore(store.NewMemoryStore())
	m := newTestMonitor(ns)
	m.Start(context.Background(), testIdentity)

	m.OnAppStateChange(AppStateBackground)
	// Stay backgrounded well past the grace period: still exactly one event.
	time.Sleep(4 * testGrace)
	m.OnAppStateChange(AppStateForeground)
	ns.waitSet(t)

	st := m.State()
	assert.True(t, st.CaughtCheating)
	assert.Equal(t, 1, st.VisibilityChangeTimes)

	events := m.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventMinimizedTooLong, events[0].Type)
	assert.NotEqual(t, [16]byte{}, [16]byte(events[0].ID))
}

func TestMonitor_EachBackgroundEpisodeCounts(t *testing.T) {
	ns := newNotifyStore(store.NewMemoryStore())
	m := newTestMonitor(ns)
	m.Start(context.Background(), testIdentity)

	for i := 0; i < 2; i++ {
		m.OnAppStateChange(AppStateBackground)
		time.Sleep(2 * testGrace)
		ns.waitSet(t)
		m.OnAppStateChange(AppStateForeground)
	}

	assert.Equal(t, 2, m.State().VisibilityChangeTimes)
}

func TestMonitor_InactiveArmsTimer(t *testing.T) {
	ns := newNotifyStore(store.NewMemoryStore())
	m := newTestMonitor(ns)
	m.Start(context.Background(), testIdentity)

	m.OnAppStateChange(AppStateInactive)
	time.Sleep(2 * testGrace)
	ns.waitSet(t)

	assert.Equal(t, 1, m.State().VisibilityChangeTimes)
}

func TestMonitor_FocusLossCountsOncePerCycle(t *testing.T) {
	ns := newNotifyStore(store.NewMemoryStore())
	m := newTestMonitor(ns)
	ctx := context.Background()
	m.Start(ctx, testIdentity)

	// Repeated callbacks within one away cycle count once.
	m.OnFocusLost()
	ns.waitSet(t)
	m.OnFocusLost()
	m.OnFocusLost()

	st := m.State()
	assert.Equal(t, 1, st.VisibilityChangeTimes)
	assert.True(t, st.CaughtCheating)
	assert.False(t, st.IsMonitoring)

	// A new cycle counts again.
	m.OnFocusGained(ctx)
	assert.True(t, m.State().IsMonitoring)

	m.OnFocusLost()
	ns.waitSet(t)
	assert.Equal(t, 2, m.State().VisibilityChangeTimes)

	events := m.Events()
	require.Len(t, events, 2)
	assert.Equal(t, EventNavigatedAway, events[0].Type)
}

func TestMonitor_PersistedStateSurvivesRestart(t *testing.T) {
	mem := store.NewMemoryStore()
	ns := newNotifyStore(mem)
	ctx := context.Background()

	first := newTestMonitor(ns)
	first.Start(ctx, testIdentity)
	first.OnFocusLost()
	ns.waitSet(t)
	first.OnFocusGained(ctx)
	first.OnFocusLost()
	ns.waitSet(t)
	first.Stop()

	// Fresh monitor, same store: the persisted count is the source of truth.
	second := newTestMonitor(mem)
	second.Start(ctx, testIdentity)

	st := second.State()
	assert.True(t, st.CaughtCheating)
	assert.Equal(t, 2, st.VisibilityChangeTimes)
}

func TestMonitor_ReconcileTakesMaximum(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, RecordKey(testIdentity), encodeRecord(5, true, "navigated_away")))

	m := newTestMonitor(mem)
	m.Start(ctx, testIdentity)
	assert.Equal(t, 5, m.State().VisibilityChangeTimes)

	// Focus-gain re-reads; the merge never decreases the counter.
	require.NoError(t, mem.Set(ctx, RecordKey(testIdentity), encodeRecord(3, true, "navigated_away")))
	m.OnFocusGained(ctx)
	assert.Equal(t, 5, m.State().VisibilityChangeTimes)
}

func TestMonitor_LegacyRecordCountsOneEvent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "unparseable", raw: "not-json{"},
		{name: "unversioned shape", raw: `{"timestamp":"2024-01-01T00:00:00Z","visibility_change_times":7,"caught_cheating":true,"reason":"tab_switch"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mem := store.NewMemoryStore()
			ns := newNotifyStore(mem)
			ctx := context.Background()
			require.NoError(t, mem.Set(ctx, RecordKey(testIdentity), tc.raw))

			m := newTestMonitor(ns)
			m.Start(ctx, testIdentity)
			ns.waitSet(t) // legacy record is rewritten in the current schema

			st := m.State()
			assert.True(t, st.CaughtCheating)
			assert.Equal(t, 1, st.VisibilityChangeTimes)

			raw, err := mem.Get(ctx, RecordKey(testIdentity))
			require.NoError(t, err)
			_, ok := decodeRecord(raw)
			assert.True(t, ok)
		})
	}
}

func TestMonitor_ReadErrorFailsOpen(t *testing.T) {
	m := newTestMonitor(failStore{})
	m.Start(context.Background(), testIdentity)

	st := m.State()
	assert.False(t, st.CaughtCheating)
	assert.Zero(t, st.VisibilityChangeTimes)
	assert.True(t, st.IsMonitoring)
}

func TestMonitor_WriteErrorKeepsMemoryAuthoritative(t *testing.T) {
	ns := newNotifyStore(failStore{})
	m := newTestMonitor(ns)
	m.Start(context.Background(), testIdentity)

	m.OnFocusLost()
	ns.waitSet(t)

	st := m.State()
	assert.True(t, st.CaughtCheating)
	assert.Equal(t, 1, st.VisibilityChangeTimes)
}

func TestMonitor_StartSameIdentityIdempotent(t *testing.T) {
	ns := newNotifyStore(store.NewMemoryStore())
	m := newTestMonitor(ns)
	ctx := context.Background()

	m.Start(ctx, testIdentity)
	m.OnFocusLost()
	ns.waitSet(t)

	m.Start(ctx, testIdentity)

	st := m.State()
	assert.Equal(t, 1, st.VisibilityChangeTimes)
	assert.True(t, st.IsMonitoring)
}

func TestMonitor_ResetClearsEverything(t *testing.T) {
	mem := store.NewMemoryStore()
	ns := newNotifyStore(mem)
	m := newTestMonitor(ns)
	ctx := context.Background()

	m.Start(ctx, testIdentity)
	m.OnFocusLost()
	ns.waitSet(t)

	m.Reset(ctx, testIdentity)

	st := m.State()
	assert.False(t, st.CaughtCheating)
	assert.Zero(t, st.VisibilityChangeTimes)
	assert.False(t, st.IsMonitoring)
	assert.Empty(t, m.Events())

	_, err := mem.Get(ctx, RecordKey(testIdentity))
	assert.ErrorIs(t, err, store.ErrNotFound)

	// A fresh attempt starts clean.
	m.Start(ctx, testIdentity)
	st = m.State()
	assert.False(t, st.CaughtCheating)
	assert.Zero(t, st.VisibilityChangeTimes)
}

func TestMonitor_ClearRemovesPersistedRecord(t *testing.T) {
	mem := store.NewMemoryStore()
	ns := newNotifyStore(mem)
	m := newTestMonitor(ns)
	ctx := context.Background()

	m.Start(ctx, testIdentity)
	m.OnFocusLost()
	ns.waitSet(t)

	m.Clear(ctx, testIdentity)

	_, err := mem.Get(ctx, RecordKey(testIdentity))
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Zero(t, m.State().VisibilityChangeTimes)
}

func TestMonitor_StopCancelsGraceTimer(t *testing.T) {
	m := newTestMonitor(store.NewMemoryStore())
	m.Start(context.Background(), testIdentity)

	m.OnAppStateChange(AppStateBackground)
	m.Stop()
	time.Sleep(2 * testGrace)

	st := m.State()
	assert.Zero(t, st.VisibilityChangeTimes)
	assert.False(t, st.IsMonitoring)
}

func TestMonitor_EventsBeforeStartIgnored(t *testing.T) {
	m := newTestMonitor(store.NewMemoryStore())

	m.OnFocusLost()
	m.OnAppStateChange(AppStateBackground)
	time.Sleep(2 * testGrace)

	assert.Zero(t, m.State().VisibilityChangeTimes)
}
