// Package loading tracks in-flight requests by fingerprint and exposes a
// single "anything loading" flag.
package loading

import (
	"slices"
	"sort"
	"sync"
)

// Tracker maps request fingerprints to an in-flight marker.
//
// There is no reference counting: starting the same fingerprint twice
// overwrites the first entry, so the first FinishLoading of two identical
// concurrent requests clears the entry and may drop the global flag early.
type Tracker struct {
	// notifyMu is taken before mu and held until watchers return, so
	// watchers see flag changes in the order they happened.
	notifyMu sync.Mutex
	mu       sync.Mutex
	pending  map[string]bool
	loading  bool
	watchers []func(bool)
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{pending: make(map[string]bool)}
}

// StartLoading marks fingerprint as in flight and raises the global flag.
func (t *Tracker) StartLoading(fingerprint string) {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()
	t.mu.Lock()
	t.pending[fingerprint] = true
	notify := t.setLoading(true)
	t.mu.Unlock()
	notify()
}

// FinishLoading removes fingerprint and recomputes the global flag.
func (t *Tracker) FinishLoading(fingerprint string) {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()
	t.mu.Lock()
	delete(t.pending, fingerprint)
	notify := t.setLoading(len(t.pending) > 0)
	t.mu.Unlock()
	notify()
}

// IsRequestLoading reports whether fingerprint is currently in flight.
func (t *Tracker) IsRequestLoading(fingerprint string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending[fingerprint]
}

// IsLoading reports the global flag.
func (t *Tracker) IsLoading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

// Pending returns the outstanding fingerprints in sorted order.
func (t *Tracker) Pending() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.pending))
	for fp := range t.pending {
		out = append(out, fp)
	}
	sort.Strings(out)
	return out
}

// Watch registers fn to be called whenever the global flag changes.
// Calls are delivered one at a time in change order. fn may read the
// tracker but must not start or finish requests.
func (t *Tracker) Watch(fn func(loading bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.watchers = append(t.watchers, fn)
}

// setLoading must be called with notifyMu and mu held. The returned func
// runs the watchers and must be called after mu is released but before
// notifyMu is.
func (t *Tracker) setLoading(v bool) func() {
	if t.loading == v {
		return func() {}
	}
	t.loading = v
	watchers := slices.Clone(t.watchers)
	return func() {
		for _, fn := range watchers {
			fn(v)
		}
	}
}
