package display

import (
	"context"
	"errors"
	"sync"

	"github.com/mmdatafocus/ledger_backend/models"
)

var ErrViewClosed = errors.New("view closed")

// Source is the repository side of a view.
type Source[M models.Model] interface {
	SelectAll(ctx context.Context) ([]M, error)
	AddListener(l models.ModelChangedListener[M])
	RemoveListener(l models.ModelChangedListener[M])
}

// View keeps a pipeline in step with a repository. Its source copy and
// pipeline are only touched from the loop.
type View[M models.Model, F Filters[M], S comparable] struct {
	source   Source[M]
	pipeline *Pipeline[M, F, S]
	loop     *MainLoop

	mu      sync.Mutex
	closed  bool
	items   []M
	onClose []func()
}

// NewView registers the view as a listener of source right away.
func NewView[M models.Model, F Filters[M], S comparable](source Source[M], pipeline *Pipeline[M, F, S], loop *MainLoop) *View[M, F, S] {
	v := &View[M, F, S]{source: source, pipeline: pipeline, loop: loop}
	source.AddListener(v)
	return v
}

func (v *View[M, F, S]) Pipeline() *Pipeline[M, F, S] {
	return v.pipeline
}

// Load selects on a background goroutine and hands the result to the loop.
// The channel gets the outcome once the loop applied it.
func (v *View[M, F, S]) Load(ctx context.Context) <-chan error {
	result := make(chan error, 1)
	go func() {
		list, err := v.source.SelectAll(ctx)
		posted := !v.isClosed() && v.loop.Post(func() {
			if v.isClosed() {
				result <- ErrViewClosed
				return
			}
			if err == nil {
				v.setItems(list)
			}
			result <- err
		})
		if !posted {
			result <- ErrViewClosed
		}
	}()
	return result
}

// Close deregisters the view. Loads still running finish, but their
// result is dropped.
func (v *View[M, F, S]) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	v.source.RemoveListener(v)
	for _, fn := range v.onClose {
		fn()
	}
}

// Items returns the source list the view holds, read on the loop. The slice
// is shared; callers must not modify it.
func (v *View[M, F, S]) Items(ctx context.Context) ([]M, error) {
	result := make(chan []M, 1)
	if v.isClosed() || !v.loop.Post(func() { result <- v.items }) {
		return nil, ErrViewClosed
	}
	select {
	case items := <-result:
		return items, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (v *View[M, F, S]) isClosed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

func (v *View[M, F, S]) post(task func()) bool {
	if v.isClosed() {
		return false
	}
	return v.loop.Post(func() {
		if v.isClosed() {
			return
		}
		task()
	})
}

func (v *View[M, F, S]) setItems(items []M) {
	v.items = items
	v.pipeline.OnSourceChanged(items)
}

// update maps the source list on the loop.
func (v *View[M, F, S]) update(fn func([]M) []M) {
	v.post(func() { v.setItems(fn(v.items)) })
}

func (v *View[M, F, S]) OnModelAdded(added []M) {
	v.post(func() { v.setItems(AddModels(v.items, added)) })
}

func (v *View[M, F, S]) OnModelUpdated(updated []M) {
	v.post(func() { v.setItems(UpdateModels(v.items, updated)) })
}

func (v *View[M, F, S]) OnModelDeleted(deleted []M) {
	v.post(func() { v.setItems(DeleteModels(v.items, deleted)) })
}

func (v *View[M, F, S]) OnModelUpserted(upserted []M) {
	v.post(func() { v.setItems(UpsertModels(v.items, upserted)) })
}
