// Package future provides a small maybe-async value.
//
// A Future that is already settled behaves like a plain value: Then runs its
// callback synchronously and Result never blocks. Only futures produced by Go
// (or chained on one) involve goroutines. Goroutines waiting on a chained
// future exit once their context is done; the function given to Go runs to
// completion regardless.
package future

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// ErrPending is returned by Result when the future has not settled yet.
var ErrPending = errors.New("future: pending")

// Future holds a value of type T or an error, available once settled.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func settled[T any](v T, err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), val: v, err: err}
	close(f.done)
	return f
}

// Resolved returns a settled future holding v.
func Resolved[T any](v T) *Future[T] {
	return settled(v, nil)
}

// Rejected returns a settled future holding err.
func Rejected[T any](err error) *Future[T] {
	var zero T
	return settled(zero, err)
}

// From returns a settled future holding v and err.
func From[T any](v T, err error) *Future[T] {
	return settled(v, err)
}

// Go runs fn in a new goroutine and returns a future settled by its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = fn()
	}()
	return f
}

// Ready tells whether f has settled.
func (f *Future[T]) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Result returns the settled value of f without blocking.
// It returns ErrPending if f has not settled.
func (f *Future[T]) Result() (T, error) {
	if !f.Ready() {
		var zero T
		return zero, ErrPending
	}
	return f.val, f.err
}

// Await blocks until f settles or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then returns a future settled by fn applied to the value of f.
// Errors of f propagate without calling fn. If f has already settled,
// fn runs synchronously. Otherwise the result is rejected with ctx.Err()
// if ctx is done before f settles.
func Then[T, U any](ctx context.Context, f *Future[T], fn func(T) (U, error)) *Future[U] {
	return Chain(ctx, f, func(v T) *Future[U] {
		return From(fn(v))
	})
}

// Chain is like Then, but fn itself returns a future.
func Chain[T, U any](ctx context.Context, f *Future[T], fn func(T) *Future[U]) *Future[U] {
	if f.Ready() {
		if f.err != nil {
			return Rejected[U](f.err)
		}
		return fn(f.val)
	}
	return Go(func() (U, error) {
		v, err := f.Await(ctx)
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(v).Await(ctx)
	})
}

// All returns a future holding the values of fs in order. It is rejected
// with the first error encountered. If all of fs have settled, the result
// is computed synchronously.
func All[T any](ctx context.Context, fs []*Future[T]) *Future[[]T] {
	ready := true
	for _, f := range fs {
		if !f.Ready() {
			ready = false
			break
		}
	}
	if ready {
		vals := make([]T, len(fs))
		for i, f := range fs {
			if f.err != nil {
				return Rejected[[]T](f.err)
			}
			vals[i] = f.val
		}
		return Resolved(vals)
	}
	return Go(func() ([]T, error) {
		vals := make([]T, len(fs))
		g, ctx := errgroup.WithContext(ctx)
		for i, f := range fs {
			i, f := i, f
			g.Go(func() error {
				v, err := f.Await(ctx)
				vals[i] = v
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return vals, nil
	})
}

// MapErr returns a future holding the value of f, with any error of f
// replaced by fn(err). It stops waiting for f when ctx is done.
func MapErr[T any](ctx context.Context, f *Future[T], fn func(error) error) *Future[T] {
	if f.Ready() {
		if f.err != nil {
			return Rejected[T](fn(f.err))
		}
		return f
	}
	return Go(func() (T, error) {
		select {
		case <-f.done:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
		if f.err != nil {
			return f.val, fn(f.err)
		}
		return f.val, nil
	})
}
