// Package worker runs slow collaborator calls off the conversation goroutine.
package worker

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many heavy calls (PDF parsing, grammar checks, model
// generation) run at once across all conversations.
type Pool struct {
	sem *semaphore.Weighted
}

func NewPool(concurrency int) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(concurrency))}
}

type result[T any] struct {
	val T
	err error
}

// Do runs fn on its own goroutine once a slot is free and waits for it. If ctx
// ends first Do returns ctx.Err(); fn keeps its slot until it returns.
func Do[T any](ctx context.Context, p *Pool, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return zero, err
	}

	resultCh := make(chan result[T], 1)
	go func() {
		defer p.sem.Release(1)
		defer func() {
			if rec := recover(); rec != nil {
				resultCh <- result[T]{err: fmt.Errorf("worker panic: %v", rec)}
			}
		}()
		val, err := fn(ctx)
		resultCh <- result[T]{val: val, err: err}
	}()

	select {
	case r := <-resultCh:
		return r.val, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
