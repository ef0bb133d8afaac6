// Package worker provides the bounded fire-and-forget pool used for work that
// must never block or fail the request path (analytics records, cache warms).
package worker

import (
	"sync"

	"go.uber.org/zap"
)

type Pool struct {
	tasks  chan func()
	wg     sync.WaitGroup
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

// NewPool starts size workers sharing a queue of queueDepth pending tasks.
func NewPool(size, queueDepth int, logger *zap.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	if queueDepth < 1 {
		queueDepth = 1
	}
	p := &Pool{
		tasks:  make(chan func(), queueDepth),
		logger: logger,
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.run()
	}
	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.invoke(task)
	}
}

func (p *Pool) invoke(task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("background task panicked", zap.Any("panic", r))
		}
	}()
	task()
}

// Submit enqueues a task without blocking. When the queue is full or the pool
// is shut down the task is dropped and logged; submitters never wait.
func (p *Pool) Submit(task func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.logger.Warn("background task dropped: pool is shut down")
		return false
	}
	select {
	case p.tasks <- task:
		return true
	default:
		p.logger.Warn("background task dropped: queue full")
		return false
	}
}

// Shutdown stops accepting tasks and waits for in-flight ones to finish.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}
