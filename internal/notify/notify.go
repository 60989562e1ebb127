package notify

import (
	"log/slog"
	"sync"
)

// Signal identifies a kind of change to the image collection. Signals carry
// no payload; subscribers re-read the store to learn what changed.
type Signal int

const (
	// SignalItemAdded fires after a record has been appended to the store.
	SignalItemAdded Signal = iota

	// SignalContentChanged fires after a fetch settles or the store is
	// cleared. It is the less chatty of the two and drives full refreshes.
	SignalContentChanged

	numSignals
)

// String returns the signal name.
func (s Signal) String() string {
	switch s {
	case SignalItemAdded:
		return "item-added"
	case SignalContentChanged:
		return "content-changed"
	default:
		return "unknown"
	}
}

type subscriber struct {
	id      uint64
	fn      func(Signal)
	signals [numSignals]bool
	since   uint64 // publish sequence at subscribe time
}

// Notifier broadcasts signals to subscribers.
//
// All deliveries happen on one dispatch goroutine owned by the Notifier, so
// a subscriber is never called concurrently with itself or with any other
// subscriber. Publish never blocks: signals of the same kind published
// before the dispatcher gets to them are merged into one delivery.
//
// There is no replay. A subscriber only sees signals published after it
// subscribed, and no order is guaranteed between different kinds.
type Notifier struct {
	mu      sync.Mutex
	subs    []*subscriber
	nextID  uint64
	closed  bool

	// seq numbers every Publish; pending holds, per kind, the seq of the
	// latest undelivered publish, or 0.
	seq     uint64
	pending [numSignals]uint64

	wake      chan struct{}
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	logger *slog.Logger
}

// NewNotifier creates a Notifier and starts its dispatch goroutine.
// Call Close to stop it.
func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	n := &Notifier{
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		logger:  logger,
	}
	go n.run()
	return n
}

// Subscribe registers fn for the given signals, or for every signal if
// none are given. The returned function removes the subscription; after it
// returns fn sees no further signals, apart from a delivery already under
// way on the dispatch goroutine.
func (n *Notifier) Subscribe(fn func(Signal), signals ...Signal) (unsubscribe func()) {
	sub := &subscriber{fn: fn}
	if len(signals) == 0 {
		for i := range sub.signals {
			sub.signals[i] = true
		}
	}
	for _, sig := range signals {
		if sig >= 0 && sig < numSignals {
			sub.signals[sig] = true
		}
	}

	n.mu.Lock()
	n.nextID++
	sub.id = n.nextID
	sub.since = n.seq
	n.subs = append(n.subs, sub)
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { n.remove(sub.id) })
	}
}

// Publish schedules sig for delivery. Signals published after Close are
// dropped.
func (n *Notifier) Publish(sig Signal) {
	if sig < 0 || sig >= numSignals {
		return
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.seq++
	n.pending[sig] = n.seq
	n.mu.Unlock()

	select {
	case n.wake <- struct{}{}:
	default: // dispatcher already woken
	}
}

// Close stops the dispatch goroutine and waits for it to exit. Pending
// signals that were not yet delivered are dropped. Close is idempotent.
func (n *Notifier) Close() {
	n.closeOnce.Do(func() {
		n.mu.Lock()
		n.closed = true
		n.mu.Unlock()
		close(n.done)
	})
	<-n.stopped
}

func (n *Notifier) remove(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, s := range n.subs {
		if s.id == id {
			n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
			return
		}
	}
}

func (n *Notifier) run() {
	defer close(n.stopped)
	defer n.logger.Debug("notifier stopped")

	for {
		select {
		case <-n.done:
			return
		case <-n.wake:
		}

		n.mu.Lock()
		pending := n.pending
		n.pending = [numSignals]uint64{}
		subs := n.subs
		n.mu.Unlock()

		for sig, seq := range pending {
			if seq == 0 {
				continue
			}
			for _, s := range subs {
				// A subscriber that joined after this publish must not see it.
				if s.signals[sig] && seq > s.since && n.subscribed(s.id) {
					s.fn(Signal(sig))
				}
			}
		}
	}
}

// subscribed reports whether id is still registered. Checked right before
// each delivery so an unsubscribe takes effect immediately.
func (n *Notifier) subscribed(id uint64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, s := range n.subs {
		if s.id == id {
			return true
		}
	}
	return false
}
