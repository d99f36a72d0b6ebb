package display

import (
	"slices"

	"github.com/mmdatafocus/ledger_backend/models"
)

// Listenable is the change side of a repository.
type Listenable[M models.Model] interface {
	AddListener(l models.ModelChangedListener[M])
	RemoveListener(l models.ModelChangedListener[M])
}

type QueueView = View[models.Queue, QueueFilters, QueueSortBy]

// NewQueueView is a queue view that also follows customer changes, so
// customer names and balances on its queues stay current.
func NewQueueView(queues Source[models.Queue], customers Listenable[models.Customer], pipeline *Pipeline[models.Queue, QueueFilters, QueueSortBy], loop *MainLoop) *QueueView {
	v := NewView(queues, pipeline, loop)
	l := &queueCustomerListener{view: v}
	customers.AddListener(l)
	v.onClose = append(v.onClose, func() { customers.RemoveListener(l) })
	return v
}

// queueCustomerListener copies customer changes into the snapshots held by
// a view's queues. A new customer owns no queue yet, so adds are ignored.
type queueCustomerListener struct {
	view *QueueView
}

func (l *queueCustomerListener) OnModelAdded([]models.Customer) {}

func (l *queueCustomerListener) OnModelUpdated(updated []models.Customer) {
	l.view.update(func(queues []models.Queue) []models.Queue {
		return WithCustomers(queues, updated)
	})
}

func (l *queueCustomerListener) OnModelDeleted(deleted []models.Customer) {
	l.view.update(func(queues []models.Queue) []models.Queue {
		return WithoutCustomers(queues, deleted)
	})
}

func (l *queueCustomerListener) OnModelUpserted(upserted []models.Customer) {
	l.OnModelUpdated(upserted)
}

// WithCustomers returns queues with the customer snapshot of every queue
// owned by one of customers replaced.
func WithCustomers(queues []models.Queue, customers []models.Customer) []models.Queue {
	out := slices.Clone(queues)
	for _, c := range customers {
		for i, q := range out {
			if q.HasCustomer(c.ID) {
				q = q.Clone()
				customer := c
				q.Customer = &customer
				out[i] = q
			}
		}
	}
	return out
}

// WithoutCustomers detaches queues from deleted customers.
func WithoutCustomers(queues []models.Queue, customers []models.Customer) []models.Queue {
	out := slices.Clone(queues)
	for _, c := range customers {
		for i, q := range out {
			if q.HasCustomer(c.ID) {
				q = q.Clone()
				q.CustomerId = nil
				q.Customer = nil
				out[i] = q
			}
		}
	}
	return out
}
