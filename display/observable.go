package display

import "sync"

type delivery[T any] struct {
	value T
	// target is a single subscriber id, or -1 for everyone.
	target int
}

// Observable holds one value and pushes every new value to subscribers,
// in Set order. Subscribers run without the lock held, so they may read,
// Set, subscribe or unsubscribe from inside a callback; values set from a
// callback are delivered after the current one.
type Observable[T any] struct {
	mu          sync.Mutex
	value       T
	nextId      int
	subscribers map[int]func(T)
	order       []int
	pending     []delivery[T]
	delivering  bool
}

func NewObservable[T any](initial T) *Observable[T] {
	return &Observable[T]{value: initial, subscribers: map[int]func(T){}}
}

func (o *Observable[T]) Get() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

// Set returns once value and everything queued before it has been
// delivered, unless another goroutine is already delivering.
func (o *Observable[T]) Set(value T) {
	if o.enqueue(value) {
		o.drain()
	}
}

// enqueue stores value and queues its delivery. It reports whether the
// caller has to drain.
func (o *Observable[T]) enqueue(value T) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.value = value
	o.pending = append(o.pending, delivery[T]{value: value, target: -1})
	return o.claim()
}

func (o *Observable[T]) claim() bool {
	if o.delivering {
		return false
	}
	o.delivering = true
	return true
}

func (o *Observable[T]) drain() {
	for {
		o.mu.Lock()
		if len(o.pending) == 0 {
			o.delivering = false
			o.mu.Unlock()
			return
		}
		d := o.pending[0]
		o.pending = o.pending[1:]
		var fns []func(T)
		if d.target >= 0 {
			if fn, ok := o.subscribers[d.target]; ok {
				fns = append(fns, fn)
			}
		} else {
			for _, id := range o.order {
				fns = append(fns, o.subscribers[id])
			}
		}
		o.mu.Unlock()

		for _, fn := range fns {
			fn(d.value)
		}
	}
}

// Subscribe calls fn with the current value right away, ahead of any
// value set later.
func (o *Observable[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	o.mu.Lock()
	id := o.nextId
	o.nextId++
	o.subscribers[id] = fn
	o.order = append(o.order, id)
	o.pending = append(o.pending, delivery[T]{value: o.value, target: id})
	mustDrain := o.claim()
	o.mu.Unlock()
	if mustDrain {
		o.drain()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			delete(o.subscribers, id)
			for i, v := range o.order {
				if v == id {
					o.order = append(o.order[:i:i], o.order[i+1:]...)
					break
				}
			}
		})
	}
}
