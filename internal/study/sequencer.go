package study

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/foodshare/internal/domain"
)

// Gate decides whether a control input is live in the current state.
type Gate interface {
	AllowControl(ctx context.Context, state domain.SessionState, method domain.Method, control domain.Control) (bool, error)
}

// Options tunes a Sequencer. Zero values pick defaults; the default
// distance is only defaulted when the maximum is too.
type Options struct {
	Clock             Clock
	FlagDelay         time.Duration
	DefaultDistanceKm float64
	MaxDistanceKm     float64
	Gate              Gate
	Notify            func(domain.Event)
	Logger            *zap.Logger
}

// Default distance bounds of the filter slider.
const (
	DefaultDistanceKm = 10.0
	DefaultMaxKm      = 20.0
)

// ParamsUpdate carries the parameter fields a client changed.
type ParamsUpdate struct {
	Query         *string
	Tags          []string
	SetTags       bool
	MaxDistanceKm *float64
}

// Outcome reports what a selection did.
type Outcome struct {
	Ignored bool                `json:"ignored"`
	Hit     bool                `json:"hit"`
	Result  *domain.TrialResult `json:"result,omitempty"`
	State   domain.SessionState `json:"state"`
}

// Sequencer is the study session state machine. It exclusively owns the
// session state; every event is serialised behind mu.
type Sequencer struct {
	mu sync.Mutex

	id          string
	participant string
	methodOrder []domain.Method
	trials      []domain.TrialSpec
	boundaries  map[int]bool

	state       domain.SessionState
	index       int
	run         *domain.TrialRun
	params      domain.FilterParameters
	scrollToken int

	timer    *Timer
	recorder *Recorder
	flags    *Flags
	clock    Clock

	defaultDistance float64
	maxDistance     float64
	gate            Gate
	notify          func(domain.Event)
	logger          *zap.Logger
	closed          bool
}

// NewSequencer validates cfg against targets and returns a session waiting
// for the first trial to start.
func NewSequencer(cfg *Config, targets TargetSet, opts Options) (*Sequencer, error) {
	if err := cfg.Validate(targets); err != nil {
		return nil, err
	}
	trials, boundaries, err := cfg.Plan()
	if err != nil {
		return nil, err
	}

	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.MaxDistanceKm <= 0 {
		opts.MaxDistanceKm = DefaultMaxKm
		if opts.DefaultDistanceKm == 0 {
			opts.DefaultDistanceKm = DefaultDistanceKm
		}
	}
	if opts.DefaultDistanceKm < 0 || opts.DefaultDistanceKm > opts.MaxDistanceKm {
		return nil, fmt.Errorf("%w: default distance %g km is outside [0, %g]",
			ErrConfiguration, opts.DefaultDistanceKm, opts.MaxDistanceKm)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Sequencer{
		id:              "ses_" + uuid.New().String()[:8],
		participant:     cfg.Participant,
		methodOrder:     append([]domain.Method(nil), cfg.MethodOrder...),
		trials:          trials,
		boundaries:      make(map[int]bool, len(boundaries)),
		state:           domain.SessionStateAwaitingStart,
		timer:           NewTimer(opts.Clock),
		recorder:        NewRecorder(),
		flags:           NewFlags(opts.FlagDelay),
		clock:           opts.Clock,
		defaultDistance: opts.DefaultDistanceKm,
		maxDistance:     opts.MaxDistanceKm,
		gate:            opts.Gate,
		notify:          opts.Notify,
		logger:          opts.Logger,
	}
	for _, b := range boundaries {
		s.boundaries[b] = true
	}
	s.params = s.freshParams()
	return s, nil
}

func (s *Sequencer) freshParams() domain.FilterParameters {
	return domain.FilterParameters{Query: "", Tags: []string{}, MaxDistanceKm: s.defaultDistance}
}

// ID returns the session id.
func (s *Sequencer) ID() string { return s.id }

// Participant returns the participant id.
func (s *Sequencer) Participant() string { return s.participant }

// MethodOrder returns the configured method order.
func (s *Sequencer) MethodOrder() []domain.Method {
	return append([]domain.Method(nil), s.methodOrder...)
}

// Start activates the current trial. It is a no-op unless the session is
// awaiting a start.
func (s *Sequencer) Start() bool {
	s.mu.Lock()
	if s.closed || s.state != domain.SessionStateAwaitingStart {
		s.mu.Unlock()
		return false
	}

	next := s.trials[s.index]
	s.flags.ClearAll()
	s.params = s.freshParams()
	s.scrollToken++
	s.timer.Start()
	s.run = &domain.TrialRun{
		TrialSpec:      next,
		Active:         true,
		FailedAttempts: 0,
		StartedAt:      s.timer.StartedAt(),
	}
	s.state = domain.SessionStateActive
	ev := s.event(domain.EventTypeTrialStarted)
	s.mu.Unlock()

	s.logger.Info("trial started",
		zap.String("session_id", s.id),
		zap.Int("trial_index", ev.TrialIndex),
		zap.Int("trial_id", next.ID),
		zap.String("method", string(next.Method)),
		zap.String("phase", string(next.Phase)))
	s.emit(ev)
	return true
}

// Select handles a listing selection. Outside an active trial it is
// ignored. A wrong listing counts a failed attempt and flags the listing;
// the target completes the trial.
func (s *Sequencer) Select(ctx context.Context, listingID int) Outcome {
	s.mu.Lock()
	if s.closed || s.state != domain.SessionStateActive || !s.allowLocked(ctx, domain.ControlSelect) {
		out := Outcome{Ignored: true, State: s.state}
		s.mu.Unlock()
		return out
	}

	if listingID != s.run.TargetID {
		s.run.FailedAttempts++
		s.flags.Raise(s.index, listingID, s.expireFlag)
		ev := s.listingEvent(domain.EventTypeMissFlagged, listingID)
		attempts := s.run.FailedAttempts
		s.mu.Unlock()

		s.logger.Debug("trial miss",
			zap.String("session_id", s.id),
			zap.Int("trial_index", ev.TrialIndex),
			zap.Int("listing_id", listingID),
			zap.Int("failed_attempts", attempts))
		s.emit(ev)
		return Outcome{State: domain.SessionStateActive}
	}

	events, result := s.completeLocked(listingID)
	state := s.state
	s.mu.Unlock()

	s.logger.Info("trial completed",
		zap.String("session_id", s.id),
		zap.Int("trial_id", result.ID),
		zap.Float64("time_taken_ms", result.TimeTakenMs),
		zap.Int("failed_attempts", result.FailedAttempts),
		zap.String("next_state", string(state)))
	for _, ev := range events {
		s.emit(ev)
	}
	return Outcome{Hit: true, Result: &result, State: state}
}

func (s *Sequencer) completeLocked(listingID int) ([]domain.Event, domain.TrialResult) {
	elapsed, _ := s.timer.StopAndMeasure()
	result := s.recorder.Append(domain.TrialResult{
		TrialSpec:      s.run.TrialSpec,
		SelectedID:     listingID,
		TimeTakenMs:    elapsed,
		Success:        true,
		FailedAttempts: s.run.FailedAttempts,
		Timestamp:      s.clock.Now(),
	})

	events := []domain.Event{s.listingEvent(domain.EventTypeTrialCompleted, listingID)}
	s.flags.ClearAll()
	s.run = nil
	s.index++

	switch {
	case s.index >= len(s.trials):
		s.state = domain.SessionStateComplete
		events = append(events, s.event(domain.EventTypeSessionComplete))
	case s.boundaries[s.index]:
		s.state = domain.SessionStateOnBreak
		events = append(events, s.event(domain.EventTypeBreakStarted))
	default:
		s.state = domain.SessionStateAwaitingStart
	}
	return events, result
}

// Continue ends a break. The break does not consume a trial index: the
// next trial is the first trial of the next method.
func (s *Sequencer) Continue() bool {
	s.mu.Lock()
	if s.closed || s.state != domain.SessionStateOnBreak {
		s.mu.Unlock()
		return false
	}
	s.state = domain.SessionStateAwaitingStart
	ev := s.event(domain.EventTypeBreakEnded)
	s.mu.Unlock()

	s.emit(ev)
	return true
}

// UpdateParams changes the live discovery inputs. Fields whose control is
// not live for the current trial are ignored; it reports whether anything
// changed.
func (s *Sequencer) UpdateParams(ctx context.Context, upd ParamsUpdate) (domain.FilterParameters, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state != domain.SessionStateActive {
		return s.copyParams(), false
	}

	changed := false
	if upd.Query != nil && s.allowLocked(ctx, domain.ControlQuery) {
		s.params.Query = *upd.Query
		changed = true
	}
	if upd.SetTags && s.allowLocked(ctx, domain.ControlTags) {
		s.params.Tags = dedupe(upd.Tags)
		changed = true
	}
	if upd.MaxDistanceKm != nil && s.allowLocked(ctx, domain.ControlDistance) {
		d := *upd.MaxDistanceKm
		if d < 0 {
			d = 0
		}
		if d > s.maxDistance {
			d = s.maxDistance
		}
		s.params.MaxDistanceKm = d
		changed = true
	}
	return s.copyParams(), changed
}

// allowLocked asks the gate, or falls back to the built-in rule: a
// control is live only during an active trial of its method.
func (s *Sequencer) allowLocked(ctx context.Context, control domain.Control) bool {
	method := s.currentMethodLocked()
	if s.gate != nil {
		ok, err := s.gate.AllowControl(ctx, s.state, method, control)
		if err != nil {
			s.logger.Warn("control gate failed", zap.String("control", string(control)), zap.Error(err))
			return false
		}
		return ok
	}
	if s.state != domain.SessionStateActive {
		return false
	}
	switch control {
	case domain.ControlSelect:
		return true
	case domain.ControlQuery:
		return method == domain.MethodSearch
	case domain.ControlTags, domain.ControlDistance:
		return method == domain.MethodFilter
	}
	return false
}

func (s *Sequencer) currentMethodLocked() domain.Method {
	if s.index < len(s.trials) && s.state != domain.SessionStateOnBreak {
		return s.trials[s.index].Method
	}
	return ""
}

// Params returns the live discovery inputs and the method they apply to.
func (s *Sequencer) Params() (domain.FilterParameters, domain.Method) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyParams(), s.currentMethodLocked()
}

func (s *Sequencer) copyParams() domain.FilterParameters {
	p := s.params
	p.Tags = append([]string{}, s.params.Tags...)
	return p
}

// Snapshot returns a consistent read model of the session.
func (s *Sequencer) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domain.SessionSnapshot{
		SessionID:         s.id,
		Participant:       s.participant,
		MethodOrder:       append([]domain.Method(nil), s.methodOrder...),
		State:             s.state,
		CurrentTrialIndex: s.index,
		TotalTrials:       len(s.trials),
		BreakIndices:      s.breakIndicesLocked(),
		Method:            s.currentMethodLocked(),
		Params:            s.copyParams(),
		FlaggedListings:   s.flags.Flagged(),
		ScrollToken:       s.scrollToken,
		ResultsRecorded:   s.recorder.Len(),
	}
	switch {
	case s.run != nil:
		run := *s.run
		snap.Trial = &run
	case s.index < len(s.trials) && s.state == domain.SessionStateAwaitingStart:
		snap.Trial = &domain.TrialRun{TrialSpec: s.trials[s.index]}
	}
	return snap
}

func (s *Sequencer) breakIndicesLocked() []int {
	out := make([]int, 0, len(s.boundaries))
	for b := range s.boundaries {
		out = append(out, b)
	}
	sort.Ints(out)
	return out
}

// Results returns the completed trial results in completion order.
func (s *Sequencer) Results() []domain.TrialResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorder.Results()
}

// Close cancels pending flag timers. The session accepts no further events.
func (s *Sequencer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags.ClearAll()
	s.closed = true
}

func (s *Sequencer) expireFlag(key FlagKey) {
	s.mu.Lock()
	if s.closed || key.Trial != s.index || !s.flags.Expire(key) {
		s.mu.Unlock()
		return
	}
	ev := s.listingEvent(domain.EventTypeMissCleared, key.Listing)
	s.mu.Unlock()

	s.emit(ev)
}

func (s *Sequencer) event(t domain.EventType) domain.Event {
	ev := domain.Event{
		Type:       t,
		Ts:         s.clock.Now().UnixMilli(),
		SessionID:  s.id,
		TrialIndex: s.index,
	}
	if s.run != nil {
		ev.TrialID = s.run.ID
	}
	return ev
}

func (s *Sequencer) listingEvent(t domain.EventType, listingID int) domain.Event {
	ev := s.event(t)
	ev.ListingID = &listingID
	return ev
}

func (s *Sequencer) emit(ev domain.Event) {
	if s.notify != nil {
		s.notify(ev)
	}
}

func dedupe(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
