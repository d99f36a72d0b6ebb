package display

import (
	"fmt"
	"sync"

	"github.com/mmdatafocus/ledger_backend/config"
)

// MainLoop runs posted tasks one at a time on a single goroutine, in the
// order they were posted.
type MainLoop struct {
	mu      sync.Mutex
	queue   []func()
	stopped bool
	wake    chan struct{}
	done    chan struct{}
}

func NewMainLoop() *MainLoop {
	l := &MainLoop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

// Post reports false once the loop is stopped; the task is dropped.
func (l *MainLoop) Post(task func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()
	l.signal()
	return true
}

// Flush waits until every task posted before it has run. Do not call it
// from a task.
func (l *MainLoop) Flush() {
	flushed := make(chan struct{})
	if !l.Post(func() { close(flushed) }) {
		<-l.done
		return
	}
	<-flushed
}

// Stop runs the tasks already queued, then ends the loop. Do not call it
// from a task.
func (l *MainLoop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()
	l.signal()
	<-l.done
}

func (l *MainLoop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *MainLoop) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		tasks := l.queue
		l.queue = nil
		stopped := l.stopped
		l.mu.Unlock()

		for _, task := range tasks {
			l.runTask(task)
		}
		if len(tasks) > 0 {
			continue
		}
		if stopped {
			return
		}
		<-l.wake
	}
}

func (l *MainLoop) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			config.LogError(config.GetLogger(), "MainLoop", "run", "task panicked", nil, fmt.Errorf("%v", r))
		}
	}()
	task()
}
