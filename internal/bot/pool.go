package bot

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Handler processes one event
type Handler interface {
	Handle(ctx context.Context, ev Event) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, ev Event) error

func (f HandlerFunc) Handle(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Pool runs events on a fixed set of workers. All events of one user go
// to the same worker, so they are handled one at a time in arrival order.
type Pool struct {
	handler Handler
	queues  []chan Event
}

// NewPool creates a pool of n workers, at least one
func NewPool(handler Handler, n int) *Pool {
	if n < 1 {
		n = 1
	}
	queues := make([]chan Event, n)
	for i := range queues {
		queues[i] = make(chan Event, 64)
	}
	return &Pool{handler: handler, queues: queues}
}

// Run dispatches events until the channel is closed or ctx is done,
// then waits for queued events to drain. Queued events still run to
// completion after ctx is done.
func (p *Pool) Run(ctx context.Context, events <-chan Event) error {
	var g errgroup.Group
	hctx := context.WithoutCancel(ctx)

	for _, q := range p.queues {
		q := q
		g.Go(func() error {
			for ev := range q {
				// Handler errors are reported per event and never stop the worker
				_ = p.handler.Handle(hctx, ev)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer func() {
			for _, q := range p.queues {
				close(q)
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				p.queues[p.worker(ev.UserID)] <- ev
			}
		}
	})

	return g.Wait()
}

func (p *Pool) worker(userID int64) int {
	return int(uint64(userID) % uint64(len(p.queues)))
}
