package study

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/xiaot623/gogo/foodshare/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type idSet map[int]bool

func (s idSet) Contains(id int) bool { return s[id] }

var catalogIDs = idSet{1: true, 2: true, 3: true, 4: true}

type eventLog struct {
	mu     sync.Mutex
	events []domain.Event
}

func (l *eventLog) record(ev domain.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) types() []domain.EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.EventType, len(l.events))
	for i, ev := range l.events {
		out[i] = ev.Type
	}
	return out
}

func twoMethodConfig() *Config {
	return &Config{
		Participant: "P07",
		MethodOrder: []domain.Method{domain.MethodSearch, domain.MethodFilter},
		Trials: map[domain.Method][]TrialConfig{
			domain.MethodSearch: {
				{ID: 1, TargetID: 1, Prompt: "Find the bananas", Phase: domain.PhaseTraining},
				{ID: 2, TargetID: 2, Prompt: "Find the bread", Phase: domain.PhaseMain},
			},
			domain.MethodFilter: {
				{ID: 3, TargetID: 3, Prompt: "Find vegan potatoes nearby", Phase: domain.PhaseTraining},
				{ID: 4, TargetID: 4, Prompt: "Find the tomatoes", Phase: domain.PhaseMain},
			},
		},
	}
}

const testFlagDelay = 100 * time.Millisecond

func newTestSequencer(t *testing.T, cfg *Config, clock Clock, log *eventLog) *Sequencer {
	t.Helper()
	return newTestSequencerWithDelay(t, cfg, clock, log, testFlagDelay)
}

func newTestSequencerWithDelay(t *testing.T, cfg *Config, clock Clock, log *eventLog, delay time.Duration) *Sequencer {
	t.Helper()
	opts := Options{Clock: clock, FlagDelay: delay}
	if log != nil {
		opts.Notify = log.record
	}
	s, err := NewSequencer(cfg, catalogIDs, opts)
	if err != nil {
		t.Fatalf("NewSequencer failed: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func newResult(id int) domain.TrialResult {
	return domain.TrialResult{TrialSpec: domain.TrialSpec{ID: id, TargetID: id}, SelectedID: id, Success: true}
}
