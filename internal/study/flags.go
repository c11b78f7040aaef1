package study

import (
	"sort"
	"time"
)

// DefaultFlagDelay is how long a missed listing stays flagged.
const DefaultFlagDelay = 500 * time.Millisecond

// FlagKey identifies one raised miss flag. Gen distinguishes re-raises of
// the same listing within a trial.
type FlagKey struct {
	Trial   int
	Listing int
	Gen     uint64
}

type flagEntry struct {
	key   FlagKey
	timer *time.Timer
}

// Flags tracks transient miss flags. Each flag clears itself after a delay
// through the expire callback; callers must hold the owning lock when
// calling any method, and the callback must re-acquire it and call Expire.
type Flags struct {
	delay   time.Duration
	gen     uint64
	entries map[int]*flagEntry
}

// NewFlags creates an empty flag set.
func NewFlags(delay time.Duration) *Flags {
	if delay <= 0 {
		delay = DefaultFlagDelay
	}
	return &Flags{
		delay:   delay,
		entries: make(map[int]*flagEntry),
	}
}

// Raise flags listing for trial and arms a timer that calls expire with
// the flag key. Re-raising a flagged listing restarts its delay.
func (f *Flags) Raise(trial, listing int, expire func(FlagKey)) FlagKey {
	if old, ok := f.entries[listing]; ok {
		old.timer.Stop()
	}
	f.gen++
	key := FlagKey{Trial: trial, Listing: listing, Gen: f.gen}
	f.entries[listing] = &flagEntry{
		key:   key,
		timer: time.AfterFunc(f.delay, func() { expire(key) }),
	}
	return key
}

// Expire clears the flag named by key if it is still the current one.
// Stale keys from earlier trials or earlier raises are ignored.
func (f *Flags) Expire(key FlagKey) bool {
	entry, ok := f.entries[key.Listing]
	if !ok || entry.key != key {
		return false
	}
	delete(f.entries, key.Listing)
	return true
}

// ClearAll cancels every pending flag.
func (f *Flags) ClearAll() {
	for id, entry := range f.entries {
		entry.timer.Stop()
		delete(f.entries, id)
	}
}

// Flagged returns the flagged listing ids in ascending order.
func (f *Flags) Flagged() []int {
	out := make([]int, 0, len(f.entries))
	for id := range f.entries {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// IsFlagged reports whether listing is currently flagged.
func (f *Flags) IsFlagged(listing int) bool {
	_, ok := f.entries[listing]
	return ok
}
