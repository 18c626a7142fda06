package poller

import (
	"context"
	"sync"
)

// Watcher owns at most one active Session. Watching a new payment cancels
// the previous session and waits for it to release its timers first.
type Watcher struct {
	mu      sync.Mutex
	current *Session
	opts    []Option
}

func NewWatcher(opts ...Option) *Watcher {
	return &Watcher{opts: opts}
}

// Watch replaces the current session with a new one for paymentID.
// Per-call options are applied after the watcher's own.
func (w *Watcher) Watch(ctx context.Context, paymentID string, checker StatusChecker, onSuccess func(), opts ...Option) (*Session, error) {
	all := make([]Option, 0, len(w.opts)+len(opts))
	all = append(all, w.opts...)
	all = append(all, opts...)

	s, err := New(paymentID, checker, onSuccess, all...)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if prev := w.current; prev != nil {
		prev.Cancel()
		<-prev.Done()
	}
	if err := s.Start(ctx); err != nil {
		w.current = nil
		return nil, err
	}
	w.current = s
	return s, nil
}

// Current returns the active or most recently finished session.
func (w *Watcher) Current() *Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Stop cancels the current session and waits for it to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return
	}
	w.current.Cancel()
	<-w.current.Done()
	w.current = nil
}
