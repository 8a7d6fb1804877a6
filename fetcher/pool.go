package fetcher

import (
	"context"
	"errors"
	"fmt"
)

// Pool hands out sessions for exclusive use. Pool itself is safe for
// concurrent use and implements Fetcher by borrowing a session per call.
type Pool struct {
	sessions chan Fetcher
	all      []Fetcher
}

// NewPool creates size sessions with newSession
func NewPool(size int, newSession func() (Fetcher, error)) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid pool size %d", size)
	}

	p := &Pool{sessions: make(chan Fetcher, size)}
	for i := 0; i < size; i++ {
		f, err := newSession()
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("failed to create session %d: %w", i+1, err)
		}
		p.all = append(p.all, f)
		p.sessions <- f
	}
	return p, nil
}

// Size returns the number of sessions
func (p *Pool) Size() int {
	return len(p.all)
}

// Acquire blocks until a session is free or ctx is done
func (p *Pool) Acquire(ctx context.Context) (Fetcher, error) {
	select {
	case f := <-p.sessions:
		return f, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a session taken with Acquire
func (p *Pool) Release(f Fetcher) {
	p.sessions <- f
}

// WithSession runs fn with a session held for its whole duration
func (p *Pool) WithSession(ctx context.Context, fn func(Fetcher) error) error {
	f, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer p.Release(f)
	return fn(f)
}

// Fetch implements the Fetcher interface
func (p *Pool) Fetch(ctx context.Context, url string) (*Page, error) {
	var page *Page
	err := p.WithSession(ctx, func(f Fetcher) error {
		var err error
		page, err = f.Fetch(ctx, url)
		return err
	})
	return page, err
}

// Close closes every session
func (p *Pool) Close() error {
	var errs []error
	for _, f := range p.all {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
