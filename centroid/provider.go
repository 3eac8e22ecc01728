package centroid

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrLoad wraps every failure to materialize a centroid table. It is fatal:
// once a Provider has failed, every later Get returns the same error.
var ErrLoad = errors.New("centroid load failed")

// LoadFunc materializes a Table.
type LoadFunc func(ctx context.Context) (*Table, error)

// Provider loads a Table at most once and shares it with every caller.
//
// The first Get starts the load; concurrent callers wait for it. The load runs
// detached from the caller's cancellation so a canceled first caller does not
// poison the worker, but waiters may still give up through their own context.
type Provider struct {
	load LoadFunc

	once  sync.Once
	done  chan struct{}
	table *Table
	err   error
}

// NewProvider returns a Provider backed by load.
func NewProvider(load LoadFunc) *Provider {
	return &Provider{
		load: load,
		done: make(chan struct{}),
	}
}

// Static returns a Provider that always yields t. Useful for tests and for
// callers that materialized the table themselves.
func Static(t *Table) *Provider {
	p := &Provider{done: make(chan struct{})}
	p.once.Do(func() {
		p.table = t
		close(p.done)
	})
	return p
}

// Get returns the shared table, loading it on first use.
func (p *Provider) Get(ctx context.Context) (*Table, error) {
	p.once.Do(func() {
		go p.run(context.WithoutCancel(ctx))
	})

	select {
	case <-p.done:
		return p.table, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Loaded reports whether a load has completed, successfully or not.
func (p *Provider) Loaded() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *Provider) run(ctx context.Context) {
	defer close(p.done)

	defer func() {
		if r := recover(); r != nil {
			p.table = nil
			p.err = fmt.Errorf("%w: panic: %v", ErrLoad, r)
		}
	}()

	t, err := p.load(ctx)
	switch {
	case err != nil:
		p.err = fmt.Errorf("%w: %w", ErrLoad, err)
	case t == nil:
		p.err = fmt.Errorf("%w: loader returned no table", ErrLoad)
	default:
		p.table = t
	}
}
