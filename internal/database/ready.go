package database

import (
	"context"
	"fmt"
	"sync"
)

// Readiness is the signal the stores wait on before touching the schema.
// The bootstrap routine resolves it exactly once with its outcome.
type Readiness struct {
	once sync.Once
	done chan struct{}
	err  error
}

func NewReadiness() *Readiness {
	return &Readiness{done: make(chan struct{})}
}

// Resolve records the bootstrap outcome and releases every waiter.
// Calls after the first are ignored.
func (r *Readiness) Resolve(err error) {
	r.once.Do(func() {
		r.err = err
		close(r.done)
	})
}

// Wait blocks until Resolve has been called or ctx ends.
func (r *Readiness) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		if r.err != nil {
			return fmt.Errorf("database not ready: %w", r.err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready reports whether Resolve has been called without an error.
func (r *Readiness) Ready() bool {
	select {
	case <-r.done:
		return r.err == nil
	default:
		return false
	}
}
