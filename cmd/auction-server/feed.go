package main

import "sync"

// listener is one attached consumer of a feed. Values arrive on C. A
// listener that falls behind misses values rather than stalling the
// producer, so auction operations never block on a slow client.
type listener[T any] struct {
	C      chan T
	closed bool
}

// feed delivers every posted value to all attached listeners.
type feed[T any] struct {
	mu        sync.Mutex
	listeners map[*listener[T]]struct{}
}

func newFeed[T any]() *feed[T] {
	return &feed[T]{listeners: make(map[*listener[T]]struct{})}
}

// Attach registers a new listener whose channel buffers up to size values.
func (f *feed[T]) Attach(size int) *listener[T] {
	l := &listener[T]{C: make(chan T, size)}
	f.mu.Lock()
	f.listeners[l] = struct{}{}
	f.mu.Unlock()
	return l
}

// Detach removes the listener and closes its channel. Detaching an
// already detached listener is harmless.
func (f *feed[T]) Detach(l *listener[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	delete(f.listeners, l)
	close(l.C)
}

// Post hands the value to every attached listener with buffer room.
func (f *feed[T]) Post(value T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for l := range f.listeners {
		select {
		case l.C <- value:
		default:
		}
	}
}

// Count reports how many listeners are currently attached.
func (f *feed[T]) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}
