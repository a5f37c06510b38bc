// Package aggregate runs the independent lookups a view needs as one
// logical read.
//
// Every lookup starts at once and the fetch waits for all of them. A failing
// lookup does not cancel its siblings; the first failure is returned once
// everything has finished and nothing is written to the destinations. The
// destinations are only assigned when every lookup succeeded:
//
//	var book *models.Book
//	var copies []models.BookInstance
//	err := fetcher.Fetch(ctx, "book_detail",
//	    aggregate.One("book", &book, findBook),
//	    aggregate.Many("copies", &copies, listCopies))
package aggregate

import (
	"context"
	"fmt"
	"time"

	"locallibrary/pkg/apperrors"

	"golang.org/x/sync/errgroup"
)

// ErrPrimaryNotFound is returned by Fetch when the primary lookup found
// nothing. It matches apperrors.ErrNotFound.
var ErrPrimaryNotFound = apperrors.NotFound("primary entity not found")

// Observer receives the duration and result of every fetch.
type Observer interface {
	ObserveFetch(name string, elapsed time.Duration, err error)
}

// Lookup is one independent read. Build lookups with One, Many and Count.
type Lookup struct {
	name string
	run  func(ctx context.Context) (commit func(), found bool, err error)
}

// One looks up a single entity into dst. A nil result counts as not found.
func One[T any](name string, dst **T, find func(ctx context.Context) (*T, error)) Lookup {
	return Lookup{name: name, run: func(ctx context.Context) (func(), bool, error) {
		v, err := find(ctx)
		if err != nil {
			return nil, false, err
		}
		return func() { *dst = v }, v != nil, nil
	}}
}

// Many lists entities into dst. An empty result is a normal outcome.
func Many[T any](name string, dst *[]T, find func(ctx context.Context) ([]T, error)) Lookup {
	return Lookup{name: name, run: func(ctx context.Context) (func(), bool, error) {
		v, err := find(ctx)
		if err != nil {
			return nil, false, err
		}
		if v == nil {
			v = []T{}
		}
		return func() { *dst = v }, true, nil
	}}
}

// Count stores a number into dst.
func Count(name string, dst *int64, count func(ctx context.Context) (int64, error)) Lookup {
	return Lookup{name: name, run: func(ctx context.Context) (func(), bool, error) {
		n, err := count(ctx)
		if err != nil {
			return nil, false, err
		}
		return func() { *dst = n }, true, nil
	}}
}

// Fetcher joins concurrent lookups.
type Fetcher struct {
	timeout  time.Duration
	observer Observer
}

type Option func(*Fetcher)

// WithTimeout bounds every lookup. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

func WithObserver(o Observer) Option {
	return func(f *Fetcher) { f.observer = o }
}

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch runs primary and deps concurrently. It returns ErrPrimaryNotFound
// when primary found nothing and no lookup failed.
func (f *Fetcher) Fetch(ctx context.Context, name string, primary Lookup, deps ...Lookup) error {
	return f.run(ctx, name, append([]Lookup{primary}, deps...), true)
}

// Gather runs lookups concurrently without a primary. Absent single
// entities are left nil.
func (f *Fetcher) Gather(ctx context.Context, name string, lookups ...Lookup) error {
	return f.run(ctx, name, lookups, false)
}

func (f *Fetcher) run(ctx context.Context, name string, lookups []Lookup, hasPrimary bool) (err error) {
	start := time.Now()
	if f.observer != nil {
		defer func() { f.observer.ObserveFetch(name, time.Since(start), err) }()
	}

	commits := make([]func(), len(lookups))
	found := make([]bool, len(lookups))

	var g errgroup.Group
	for i, l := range lookups {
		g.Go(func() error {
			lctx, cancel := f.lookupContext(ctx)
			defer cancel()

			commit, ok, err := l.run(lctx)
			if err != nil {
				return fmt.Errorf("%s: %w", l.name, err)
			}
			commits[i] = commit
			found[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if hasPrimary && !found[0] {
		return ErrPrimaryNotFound
	}
	for _, commit := range commits {
		commit()
	}
	return nil
}

func (f *Fetcher) lookupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout > 0 {
		return context.WithTimeout(ctx, f.timeout)
	}
	return context.WithCancel(ctx)
}
