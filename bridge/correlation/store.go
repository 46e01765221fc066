package correlation

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/feedbridge/feedbridge/bridge/common"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Keyed Waiters
// --------------------------------------------------------------------------

// Key identifies what a keyed waiter is waiting for: the request kind plus
// the application identifier the matching reply will carry.
type Key struct {
	Action common.Action
	ID     string
}

// Waiter tracks one caller's pending request. It is completed at most once,
// the stored reply is handed out through Store.TakeKeyed.
type Waiter struct {
	done  chan struct{}
	once  sync.Once
	reply common.Reply
}

func newWaiter() *Waiter {
	return &Waiter{done: make(chan struct{})}
}

// Done returns the completion signal. It is closed exactly once, when a
// matching reply has been stored.
func (w *Waiter) Done() <-chan struct{} {
	return w.done
}

// complete stores the reply and fires the signal. Later calls are no-ops.
func (w *Waiter) complete(reply common.Reply) {
	w.once.Do(func() {
		w.reply = reply
		close(w.done)
	})
}

// completed reports whether a reply has been stored.
func (w *Waiter) completed() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// --------------------------------------------------------------------------
// Store
// --------------------------------------------------------------------------

// Store is the correlation table shared between the inbound router and all
// dispatching callers. All methods are safe for concurrent use.
type Store struct {
	keyed *xsync.MapOf[Key, *Waiter]

	mu        sync.Mutex // guards the broadcast snapshot below
	items     []json.RawMessage
	updatedAt time.Time
	signal    chan struct{}
}

// NewStore creates an empty store. The broadcast snapshot starts out as an
// empty item list so timed-out refreshes can still answer with cached data.
func NewStore() *Store {
	return &Store{
		keyed:  xsync.NewMapOf[Key, *Waiter](),
		items:  []json.RawMessage{},
		signal: make(chan struct{}),
	}
}

// RegisterKeyed inserts a fresh waiter for (action, id) and returns it. A
// waiter already registered under the same key is overwritten, its signal
// then never fires and that caller runs into its timeout. See the package
// documentation for this caveat.
func (s *Store) RegisterKeyed(action common.Action, id string) *Waiter {
	w := newWaiter()
	s.keyed.Store(Key{Action: action, ID: id}, w)
	return w
}

// CompleteKeyed stores the reply for (action, id) and fires the completion
// signal. It reports whether a waiter was registered, a late or unsolicited
// reply is dropped.
func (s *Store) CompleteKeyed(action common.Action, id string, reply common.Reply) bool {
	w, ok := s.keyed.Load(Key{Action: action, ID: id})
	if !ok {
		return false
	}
	w.complete(reply)
	return true
}

// TakeKeyed removes the waiter for (action, id) and returns its reply. The
// read consumes the entry: a second take for the same registration reports
// absence, as does a waiter that was never completed.
func (s *Store) TakeKeyed(action common.Action, id string) (common.Reply, bool) {
	w, ok := s.keyed.LoadAndDelete(Key{Action: action, ID: id})
	if !ok || !w.completed() {
		return common.Reply{}, false
	}
	return w.reply, true
}

// CleanupKeyed removes any waiter for (action, id) unconditionally. Called
// after a timeout so a reply arriving past the deadline cannot be handed to
// a later caller reusing the same id.
func (s *Store) CleanupKeyed(action common.Action, id string) {
	s.keyed.Delete(Key{Action: action, ID: id})
}

// PendingKeyed returns the number of registered keyed waiters.
func (s *Store) PendingKeyed() int {
	return s.keyed.Size()
}

// --------------------------------------------------------------------------
// Broadcast Snapshot
// --------------------------------------------------------------------------

// SubscribeBroadcast returns the signal channel of the current broadcast
// round. Subscribers must grab it before sending their refresh request, the
// returned channel is closed by the next UpdateBroadcast and is never one
// that has already fired.
func (s *Store) SubscribeBroadcast() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signal
}

// UpdateBroadcast replaces the snapshot wholesale, wakes all current
// subscribers and starts a fresh round.
func (s *Store) UpdateBroadcast(items []json.RawMessage) {
	if items == nil {
		items = []json.RawMessage{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.updatedAt = time.Now()
	close(s.signal)
	s.signal = make(chan struct{})
}

// ReadBroadcast returns the current snapshot and its update time without
// blocking. The returned slice is replaced, never mutated, by updates and
// may be retained by the caller.
func (s *Store) ReadBroadcast() ([]json.RawMessage, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items, s.updatedAt
}
