package runner

import "sync"

// Dispatcher schedules a callback on the thread that owns the UI.
// Implementations must run callbacks in the order they were dispatched.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function such as glib.IdleAdd to a Dispatcher.
type DispatcherFunc func(fn func())

// Dispatch calls f(fn).
func (f DispatcherFunc) Dispatch(fn func()) {
	f(fn)
}

// Serial runs callbacks immediately on the calling goroutine, one at a time.
// It suits front-ends without an event loop, such as the CLI and tests.
type Serial struct {
	mu sync.Mutex
}

// Dispatch runs fn while holding the dispatcher lock.
func (s *Serial) Dispatch(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}
