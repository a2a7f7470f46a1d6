package drag

import "sync"

// Surface is an in-memory ReleaseSource. A host that owns the real input
// events calls NotifyRelease whenever the pointer is released anywhere on
// its surface; subscribed selectors complete their drags in response.
type Surface struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

// NewSurface returns an empty Surface.
func NewSurface() *Surface {
	return &Surface{subs: make(map[int]func())}
}

// SubscribeRelease registers fn and returns its unsubscribe func.
// Unsubscribing twice is harmless.
func (s *Surface) SubscribeRelease(fn func()) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// NotifyRelease invokes every subscribed handler.
func (s *Surface) NotifyRelease() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len reports the number of live subscriptions.
func (s *Surface) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
