package models

import "sync"

// ModelChangedListener receives every batch of models a repository wrote.
type ModelChangedListener[M Model] interface {
	OnModelAdded(models []M)
	OnModelUpdated(models []M)
	OnModelDeleted(models []M)
	OnModelUpserted(models []M)
}

// ListenerFuncs adapts plain functions; nil fields are skipped.
type ListenerFuncs[M Model] struct {
	Added    func([]M)
	Updated  func([]M)
	Deleted  func([]M)
	Upserted func([]M)
}

func (f *ListenerFuncs[M]) OnModelAdded(models []M) {
	if f.Added != nil {
		f.Added(models)
	}
}

func (f *ListenerFuncs[M]) OnModelUpdated(models []M) {
	if f.Updated != nil {
		f.Updated(models)
	}
}

func (f *ListenerFuncs[M]) OnModelDeleted(models []M) {
	if f.Deleted != nil {
		f.Deleted(models)
	}
}

func (f *ListenerFuncs[M]) OnModelUpserted(models []M) {
	if f.Upserted != nil {
		f.Upserted(models)
	}
}

// ChangeRegistry fans out repository changes. Listeners are compared by
// identity, so register pointers.
type ChangeRegistry[M Model] struct {
	mu        sync.RWMutex
	listeners []ModelChangedListener[M]
}

func NewChangeRegistry[M Model]() *ChangeRegistry[M] {
	return &ChangeRegistry[M]{}
}

// AddListener is a no-op for a listener already registered.
func (r *ChangeRegistry[M]) AddListener(l ModelChangedListener[M]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.listeners {
		if existing == l {
			return
		}
	}
	r.listeners = append(r.listeners, l)
}

func (r *ChangeRegistry[M]) RemoveListener(l ModelChangedListener[M]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.listeners {
		if existing == l {
			// copy so a snapshot taken by an in-flight notify stays intact
			next := make([]ModelChangedListener[M], 0, len(r.listeners)-1)
			next = append(next, r.listeners[:i]...)
			r.listeners = append(next, r.listeners[i+1:]...)
			return
		}
	}
}

func (r *ChangeRegistry[M]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}

func (r *ChangeRegistry[M]) snapshot() []ModelChangedListener[M] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listeners
}

func (r *ChangeRegistry[M]) NotifyAdded(models []M) {
	if len(models) == 0 {
		return
	}
	for _, l := range r.snapshot() {
		l.OnModelAdded(models)
	}
}

func (r *ChangeRegistry[M]) NotifyUpdated(models []M) {
	if len(models) == 0 {
		return
	}
	for _, l := range r.snapshot() {
		l.OnModelUpdated(models)
	}
}

func (r *ChangeRegistry[M]) NotifyDeleted(models []M) {
	if len(models) == 0 {
		return
	}
	for _, l := range r.snapshot() {
		l.OnModelDeleted(models)
	}
}

func (r *ChangeRegistry[M]) NotifyUpserted(models []M) {
	if len(models) == 0 {
		return
	}
	for _, l := range r.snapshot() {
		l.OnModelUpserted(models)
	}
}
