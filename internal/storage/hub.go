package storage

import (
	"sync"
)

// Subscription delivers change events in publish order. Events queue without bound
// so a publisher never blocks on a slow consumer and nothing is dropped.
type Subscription struct {
	hub   *eventHub
	mu    sync.Mutex
	queue []ChangeEvent
	wake  chan struct{}
	out   chan ChangeEvent
	done  chan struct{}
	once  sync.Once

	// Closed by the hub when the store closes: deliver what is queued, then stop.
	ending  chan struct{}
	endOnce sync.Once
}

// Events is closed after Close, or when the store closes and every queued event
// has been received.
func (s *Subscription) Events() <-chan ChangeEvent {
	return s.out
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		if s.hub != nil {
			s.hub.remove(s)
		}
		close(s.done)
	})
}

func (s *Subscription) finish() {
	s.endOnce.Do(func() {
		close(s.ending)
	})
}

func (s *Subscription) push(events []ChangeEvent) {
	s.mu.Lock()
	s.queue = append(s.queue, events...)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) next() (ChangeEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return ChangeEvent{}, false
	}
	ev := s.queue[0]
	s.queue[0] = ChangeEvent{}
	s.queue = s.queue[1:]
	return ev, true
}

func (s *Subscription) run() {
	defer close(s.out)
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		case <-s.ending:
		}

		for {
			ev, ok := s.next()
			if !ok {
				break
			}
			select {
			case s.out <- ev:
			case <-s.done:
				return
			}
		}

		select {
		case <-s.ending:
			if s.drained() {
				return
			}
		default:
		}
	}
}

func (s *Subscription) drained() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) == 0
}

type eventHub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

func newEventHub() *eventHub {
	return &eventHub{subs: make(map[*Subscription]struct{})}
}

func (h *eventHub) subscribe() *Subscription {
	sub := &Subscription{
		hub:    h,
		wake:   make(chan struct{}, 1),
		out:    make(chan ChangeEvent),
		done:   make(chan struct{}),
		ending: make(chan struct{}),
	}
	go sub.run()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		sub.hub = nil
		sub.finish()
		return sub
	}
	h.subs[sub] = struct{}{}
	return sub
}

func (h *eventHub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, sub)
}

func (h *eventHub) publish(events ...ChangeEvent) {
	if len(events) == 0 {
		return
	}

	h.mu.Lock()
	subs := make([]*Subscription, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.push(events)
	}
}

func (h *eventHub) close() {
	h.mu.Lock()
	subs := make([]*Subscription, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	h.subs = make(map[*Subscription]struct{})
	h.closed = true
	h.mu.Unlock()

	for _, sub := range subs {
		sub.finish()
	}
}
