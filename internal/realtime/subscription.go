// Package realtime turns snapshot feeds into cancellable subscriptions.
//
// A source delivers the complete current result set on every change. The
// consumer replaces its whole view with each delivery; nothing is patched.
package realtime

import (
	"context"
	"sync"
	"sync/atomic"
)

// Source yields full snapshots. Next blocks until the next snapshot or until
// the context the source was opened with is done. Stop releases resources and
// is only called from the goroutine that calls Next.
type Source[T any] interface {
	Next() ([]T, error)
	Stop()
}

// Opener starts a Source bound to ctx.
type Opener[T any] func(ctx context.Context) Source[T]

// Subscription is the handle returned by Watch.
type Subscription struct {
	cancel  context.CancelFunc
	stopped atomic.Bool
	once    sync.Once
	done    chan struct{}
}

// Watch opens a source and delivers each snapshot to next on a dedicated
// goroutine. The first error is passed to onErr and ends the subscription.
func Watch[T any](ctx context.Context, open Opener[T], next func([]T), onErr func(error)) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	src := open(ctx)
	go func() {
		defer close(sub.done)
		defer src.Stop()
		for {
			items, err := src.Next()
			if sub.stopped.Load() || ctx.Err() != nil {
				return
			}
			if err != nil {
				if onErr != nil {
					onErr(err)
				}
				return
			}
			next(items)
		}
	}()
	return sub
}

// Cancel tears the subscription down and waits for the delivery goroutine to
// exit, so no handler runs once it returns. Calling it more than once is a
// no-op. It must not be called from inside next or onErr.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.stopped.Store(true)
		s.cancel()
	})
	<-s.done
}

// Done is closed once the subscription has ended for any reason.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}
