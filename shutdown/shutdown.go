// Package shutdown provides the broadcast-closure primitive used to fan
// a single shutdown signal out to many independent listeners, modeled on
// the register/broadcast/done channel shape of a connection hub.
package shutdown

import "sync"

// Notifier announces a single shutdown event to every Listener derived
// from it. Firing is idempotent and safe for concurrent use.
type Notifier struct {
	mu     sync.Mutex
	ch     chan struct{}
	closed bool
}

// New returns a Notifier that has not yet fired.
func New() *Notifier {
	return &Notifier{ch: make(chan struct{})}
}

// Notify announces shutdown to every existing and future Listener. It is
// safe to call more than once; only the first call has an effect.
func (n *Notifier) Notify() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	close(n.ch)
}

// Listen returns a Listener that observes this Notifier's shutdown event.
func (n *Notifier) Listen() *Listener {
	return &Listener{ch: n.ch}
}

// Listener tracks whether shutdown has been observed yet, so calls to
// Shutdown and Wait after the first observation return without touching
// the channel.
type Listener struct {
	ch       <-chan struct{}
	shutdown bool
}

// Shutdown reports whether shutdown has been announced, without blocking.
func (l *Listener) Shutdown() bool {
	if l.shutdown {
		return true
	}
	select {
	case <-l.ch:
		l.shutdown = true
		return true
	default:
		return false
	}
}

// Wait blocks until shutdown is announced. If shutdown was already
// observed, it returns immediately.
func (l *Listener) Wait() {
	if l.shutdown {
		return
	}
	<-l.ch
	l.shutdown = true
}

// Chan exposes the underlying channel for use in a select statement
// alongside other suspension points (e.g. a frame read).
func (l *Listener) Chan() <-chan struct{} { return l.ch }
