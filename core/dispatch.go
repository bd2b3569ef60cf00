package core

import (
	"fmt"
	"runtime/debug"
	"sync"

	glog "github.com/goliatone/go-logger/glog"
)

// SerialQueue runs tasks one at a time, in submission order, on a single
// goroutine. Dispatch never blocks, including from inside a running task.
type SerialQueue struct {
	mu      sync.Mutex
	pending []func()
	closed  bool
	wake    chan struct{}
	done    chan struct{}
	logger  Logger
}

type SerialQueueOption func(*SerialQueue)

// WithQueueLogger sets where panics recovered from tasks are reported.
func WithQueueLogger(logger Logger) SerialQueueOption {
	return func(q *SerialQueue) {
		q.logger = logger
	}
}

func NewSerialQueue(opts ...SerialQueueOption) *SerialQueue {
	q := &SerialQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(q)
		}
	}
	q.logger = glog.Ensure(q.logger)
	go q.run()
	return q
}

func (q *SerialQueue) Dispatch(task func()) error {
	if q == nil {
		return ErrQueueClosed
	}
	if task == nil {
		return nil
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.pending = append(q.pending, task)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// Close stops accepting tasks and waits until everything already queued ran.
// Calling Close from inside a task would deadlock and is not supported.
func (q *SerialQueue) Close() error {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	<-q.done
	return nil
}

func (q *SerialQueue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			closed := q.closed
			q.mu.Unlock()
			if closed {
				return
			}
			<-q.wake
			continue
		}
		task := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.runTask(task)
	}
}

// runTask keeps the queue alive when a task panics.
func (q *SerialQueue) runTask(task func()) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		q.logger.Error("main queue task panicked",
			"panic", fmt.Sprint(recovered),
			"stack", string(debug.Stack()),
		)
	}()
	task()
}

