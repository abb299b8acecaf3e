package pubsub

import (
	"context"
)

// Listener wraps a broker subscription with a blocking receive helper.
// It is a convenience for consumers that drain events in a plain loop
// rather than selecting on the raw channel.
type Listener[T any] struct {
	ctx context.Context
	ch  <-chan Event[T]
}

// NewListener subscribes to the broker and returns a listener.
// The subscription is cleaned up when ctx is cancelled.
func NewListener[T any](ctx context.Context, broker *Broker[T]) *Listener[T] {
	return &Listener[T]{
		ctx: ctx,
		ch:  broker.Subscribe(ctx),
	}
}

// Next blocks until the next event arrives.
// It returns ok=false when the context is cancelled or the broker closes.
func (l *Listener[T]) Next() (Event[T], bool) {
	select {
	case <-l.ctx.Done():
		return Event[T]{}, false
	case event, ok := <-l.ch:
		if !ok {
			return Event[T]{}, false
		}
		return event, true
	}
}

// Chan exposes the underlying subscription channel for select loops.
func (l *Listener[T]) Chan() <-chan Event[T] {
	return l.ch
}
