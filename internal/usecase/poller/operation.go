package poller

import (
	"context"
	"errors"
	"sync"
)

var ErrAlreadyStarted = errors.New("operation already started")

// Operation is a single cancellable polling run. Start and Cancel are its
// only mutators; Wait and Done observe the outcome. The run owns its own
// context, so cancelling it stops the loop and every timer the loop holds.
type Operation[T any] struct {
	run func(ctx context.Context) (T, error)

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	result  T
	err     error
}

func NewOperation[T any](run func(ctx context.Context) (T, error)) *Operation[T] {
	return &Operation[T]{
		run:  run,
		done: make(chan struct{}),
	}
}

func (o *Operation[T]) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.started {
		return ErrAlreadyStarted
	}
	o.started = true

	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	go func() {
		defer cancel()
		result, err := o.run(runCtx)

		o.mu.Lock()
		o.result, o.err = result, err
		o.mu.Unlock()
		close(o.done)
	}()

	return nil
}

// Cancel stops a running operation. Cancelling one that never started
// settles it with context.Canceled; cancelling a finished one is a no-op.
func (o *Operation[T]) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.started {
		o.started = true
		o.err = context.Canceled
		close(o.done)
		return
	}
	o.cancel()
}

func (o *Operation[T]) Done() <-chan struct{} {
	return o.done
}

func (o *Operation[T]) Wait() (T, error) {
	<-o.done

	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result, o.err
}
