// Package worker runs the core's fork-join job passes on a fixed pool of
// goroutines.
package worker

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/getsentry/sentry-go"

	"github.com/stride-engine/stride/serror"
)

// Pool is a fixed-size job pool with a barrier-style Run. With fewer than two
// workers every job runs inline on the caller, and the scheduler elides its
// locks.
type Pool struct {
	queue   chan func()
	workers int
}

// NewPool starts a pool of n workers. n below 2 yields an inline pool.
func NewPool(n int) *Pool {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	p := &Pool{workers: n}
	if n <= 1 {
		return p
	}
	p.queue = make(chan func(), n)
	for i := 0; i < n; i++ {
		go p.worker()
	}
	return p
}

// Workers returns the pool size.
func (p *Pool) Workers() int { return p.workers }

// Concurrent reports whether jobs can observe each other running.
func (p *Pool) Concurrent() bool { return p.workers > 1 }

func (p *Pool) worker() {
	for f := range p.queue {
		f()
	}
}

// Close stops the workers after in-flight jobs finish.
func (p *Pool) Close() {
	if p.queue != nil {
		close(p.queue)
		p.queue = nil
	}
}

// Run dispatches all jobs and blocks until every one of them finished. A
// panicking job is captured through sentry and reported as a job-pool failure;
// the remaining jobs still run to completion so the barrier never deadlocks.
func (p *Pool) Run(jobs []func()) error {
	if len(jobs) == 0 {
		return nil
	}

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	runOne := func(job func()) {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				sentry.CurrentHub().Recover(r)
				errMu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%w: %v", serror.ErrJobPoolFailure, r)
				}
				errMu.Unlock()
			}
		}()
		job()
	}

	wg.Add(len(jobs))
	for _, job := range jobs {
		job := job
		if p.workers <= 1 {
			runOne(job)
			continue
		}
		p.queue <- func() { runOne(job) }
	}
	wg.Wait()
	return firstErr
}
