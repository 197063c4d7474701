// Package notify provides change notification for configuration updates.
//
// The notify package implements an observer pattern that allows components
// to subscribe to configuration changes and receive callbacks when a new
// configuration is published, an edit is rejected, or the declarative file
// is reloaded.
package notify

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ChangeType represents the type of configuration change.
type ChangeType int

const (
	// ChangeApplied indicates an edit produced a new configuration.
	ChangeApplied ChangeType = iota

	// ChangeRejected indicates an edit failed to resolve or compile; the
	// previous configuration stays active.
	ChangeRejected

	// ChangeReload indicates the declarative file was reloaded.
	ChangeReload
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeApplied:
		return "applied"
	case ChangeRejected:
		return "rejected"
	case ChangeReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Change represents a configuration change event.
type Change struct {
	// Type is the type of change.
	Type ChangeType

	// Paths lists the dot-separated paths whose resolved values changed,
	// sorted. For rejected changes it lists the paths the edit touched.
	Paths []string

	// Revision identifies the configuration active after the change.
	Revision uuid.UUID

	// Edit identifies the edit that caused the change, if any.
	Edit uuid.UUID

	// Source identifies where the change came from ("session", "file").
	Source string

	// Err is the reason a change was rejected.
	Err error
}

// Affects reports whether the change touches path: a changed path equal
// to path, below it, or above it.
func (c Change) Affects(path string) bool {
	if path == "" {
		return true
	}
	for _, p := range c.Paths {
		if p == path || isParentPath(path, p) || isParentPath(p, path) {
			return true
		}
	}
	return false
}

// broadcast reports whether the change reaches every observer regardless
// of path. Only a reload that does not name its changed paths does.
func (c Change) broadcast() bool {
	return c.Type == ChangeReload && len(c.Paths) == 0
}

// Observer is called when configuration changes occur.
type Observer func(change Change)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	path     string
	notifier *Notifier
}

// Path returns the subscribed path, empty for global subscriptions.
func (s *Subscription) Path() string {
	return s.path
}

// Unsubscribe removes this subscription.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

type entry struct {
	path     string
	global   bool
	observer Observer
}

// Notifier manages configuration change subscriptions.
type Notifier struct {
	mu sync.RWMutex

	// Observers keyed by subscription ID
	observers map[uint64]entry

	// Next subscription ID
	nextID uint64

	// Whether to notify synchronously or asynchronously
	async bool

	// Buffer for async notifications
	buffer chan Change

	// Done channel for shutdown
	done chan struct{}

	// Wait group for async goroutine
	wg sync.WaitGroup

	// Closed flag for idempotent Close
	closed bool
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAsync enables asynchronous notification delivery.
func WithAsync(bufferSize int) Option {
	return func(n *Notifier) {
		if bufferSize > 0 {
			n.async = true
			n.buffer = make(chan Change, bufferSize)
		}
	}
}

// New creates a new Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		observers: make(map[uint64]entry),
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(n)
	}

	if n.async {
		n.wg.Add(1)
		go n.processAsync()
	}

	return n
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	return n.add(entry{global: true, observer: observer})
}

// SubscribePath registers an observer for changes that affect path.
// Subscribing to "transfer_function" receives changes to
// "transfer_function.lighting.ambient", and subscribing to
// "transfer_function.lighting.ambient" receives a change that replaced
// the whole "transfer_function" section.
func (n *Notifier) SubscribePath(path string, observer Observer) *Subscription {
	return n.add(entry{path: path, observer: observer})
}

func (n *Notifier) add(e entry) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.observers[id] = e

	return &Subscription{
		id:       id,
		path:     e.path,
		notifier: n,
	}
}

// Notify sends a change notification to all relevant observers.
// Observers are called in subscription order.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}
	n.mu.RUnlock()

	if n.async {
		select {
		case n.buffer <- change:
		case <-n.done:
		}
		return
	}

	n.deliverChange(change)
}

// Len returns the number of active subscriptions.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.observers)
}

// Close shuts down the notifier. It is safe to call Close multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

// unsubscribe removes an observer by ID.
func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}

// deliverChange sends a change to all matching observers.
func (n *Notifier) deliverChange(change Change) {
	n.mu.RLock()

	ids := make([]uint64, 0, len(n.observers))
	for id, e := range n.observers {
		if e.global || change.broadcast() || change.Affects(e.path) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	observers := make([]Observer, len(ids))
	for i, id := range ids {
		observers[i] = n.observers[id].observer
	}

	n.mu.RUnlock()

	// Call observers outside the lock
	for _, obs := range observers {
		obs(change)
	}
}

// processAsync handles asynchronous notification delivery.
func (n *Notifier) processAsync() {
	defer n.wg.Done()

	for {
		select {
		case change := <-n.buffer:
			n.deliverChange(change)
		case <-n.done:
			// Drain remaining buffered changes
			for {
				select {
				case change := <-n.buffer:
					n.deliverChange(change)
				default:
					return
				}
			}
		}
	}
}

// isParentPath checks if parent is a parent path of child.
// e.g., "transfer_function" is parent of "transfer_function.stops".
func isParentPath(parent, child string) bool {
	if parent == "" {
		return child != ""
	}
	return strings.HasPrefix(child, parent) && len(child) > len(parent) && child[len(parent)] == '.'
}
