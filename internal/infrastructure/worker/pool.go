// Package worker runs CPU-bound jobs on a fixed set of goroutines
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// ErrClosed is returned by Do after Close
var ErrClosed = errors.New("worker pool closed")

// Job is a unit of work. It should return promptly once ctx is done.
type Job func(ctx context.Context) error

type task struct {
	ctx  context.Context
	job  Job
	done chan error
}

// Pool is a bounded pool of workers. Callers block until their job
// finishes or their context expires, whichever comes first.
type Pool struct {
	tasks     chan *task
	quit      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	size      int
}

// NewPool starts size workers; size <= 0 uses runtime.NumCPU()
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}

	p := &Pool{
		tasks: make(chan *task),
		quit:  make(chan struct{}),
		size:  size,
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.loop()
	}

	return p
}

// Size returns the number of workers
func (p *Pool) Size() int {
	return p.size
}

// Do runs job on a worker and waits for its result. If ctx expires first
// the context error is returned; the job keeps its worker until it notices.
func (p *Pool) Do(ctx context.Context, job Job) error {
	t := &task{ctx: ctx, job: job, done: make(chan error, 1)}

	select {
	case p.tasks <- t:
	case <-ctx.Done():
		return ctx.Err()
	case <-p.quit:
		return ErrClosed
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the workers after their current jobs and waits for them
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}

func (p *Pool) loop() {
	defer p.wg.Done()

	for {
		select {
		case t := <-p.tasks:
			t.done <- run(t)
		case <-p.quit:
			return
		}
	}
}

func run(t *task) (err error) {
	if err := t.ctx.Err(); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()

	return t.job(t.ctx)
}
