package display

import (
	"sync"
	"time"

	"github.com/mmdatafocus/ledger_backend/models"
)

// Pipeline turns a source list into its display list: filter, then sort.
// Every change recomputes both under one lock and publishes a single new
// slice, so subscribers never see a half-applied change.
type Pipeline[T any, F Filters[T], S comparable] struct {
	mu         sync.Mutex
	source     []T
	filters    F
	sortMethod SortMethod[S]
	sorter     Sorter[T, S]
	display    *Observable[[]T]
}

func NewPipeline[T any, F Filters[T], S comparable](filters F, sortMethod SortMethod[S], sorter Sorter[T, S]) *Pipeline[T, F, S] {
	return &Pipeline[T, F, S]{
		filters:    filters,
		sortMethod: sortMethod,
		sorter:     sorter,
		display:    NewObservable([]T{}),
	}
}

func NewCustomerPipeline() *Pipeline[models.Customer, CustomerFilters, CustomerSortBy] {
	return NewPipeline[models.Customer](NewCustomerFilters(), NewCustomerSortMethod(), CustomerSorter{})
}

func NewProductPipeline() *Pipeline[models.Product, ProductFilters, ProductSortBy] {
	return NewPipeline[models.Product](NewProductFilters(), NewProductSortMethod(), ProductSorter{})
}

func NewQueuePipeline(now time.Time) *Pipeline[models.Queue, QueueFilters, QueueSortBy] {
	return NewPipeline[models.Queue](NewQueueFilters(now), NewQueueSortMethod(), QueueSorter{})
}

func (p *Pipeline[T, F, S]) CurrentFilters() F {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filters
}

func (p *Pipeline[T, F, S]) CurrentSortMethod() SortMethod[S] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sortMethod
}

func (p *Pipeline[T, F, S]) DisplayList() *Observable[[]T] {
	return p.display
}

func (p *Pipeline[T, F, S]) OnFiltersChanged(filters F) {
	p.update(func() { p.filters = filters })
}

func (p *Pipeline[T, F, S]) OnSortMethodChanged(method SortMethod[S]) {
	p.update(func() { p.sortMethod = method })
}

// OnSortByChanged toggles the sort method, see SortMethod.Toggle.
func (p *Pipeline[T, F, S]) OnSortByChanged(by S) {
	p.update(func() { p.sortMethod = p.sortMethod.Toggle(by) })
}

// OnSourceChanged takes ownership of source; callers must not modify it after.
func (p *Pipeline[T, F, S]) OnSourceChanged(source []T) {
	p.update(func() { p.source = source })
}

// Apply runs list through the current filters and sort without touching
// the pipeline's own state.
func (p *Pipeline[T, F, S]) Apply(list []T) []T {
	p.mu.Lock()
	filters, method := p.filters, p.sortMethod
	p.mu.Unlock()
	return p.sorter.Sort(filters.Filter(list), method)
}

// update mutates and recomputes under p.mu, queueing the result on the
// display list in the same critical section, and delivers it after the
// lock is released. Subscribers can read the pipeline back.
func (p *Pipeline[T, F, S]) update(mutate func()) {
	p.mu.Lock()
	mutate()
	mustDrain := p.display.enqueue(p.sorter.Sort(p.filters.Filter(p.source), p.sortMethod))
	p.mu.Unlock()
	if mustDrain {
		p.display.drain()
	}
}
