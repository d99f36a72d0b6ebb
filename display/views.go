package display

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/ledger_backend/models"
)

// Views keeps one long-lived view per repository on a shared loop.
type Views struct {
	loop      *MainLoop
	Customers *View[models.Customer, CustomerFilters, CustomerSortBy]
	Products  *View[models.Product, ProductFilters, ProductSortBy]
	Queues    *QueueView
}

func NewViews(customers Source[models.Customer], products Source[models.Product], queues Source[models.Queue], now time.Time) *Views {
	loop := NewMainLoop()
	return &Views{
		loop:      loop,
		Customers: NewView(customers, NewCustomerPipeline(), loop),
		Products:  NewView(products, NewProductPipeline(), loop),
		Queues:    NewQueueView(queues, customers, NewQueuePipeline(now), loop),
	}
}

// Load waits until every view holds its first list.
func (v *Views) Load(ctx context.Context) error {
	customers, products, queues := v.Customers.Load(ctx), v.Products.Load(ctx), v.Queues.Load(ctx)
	if err := <-customers; err != nil {
		return fmt.Errorf("load customers: %w", err)
	}
	if err := <-products; err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	if err := <-queues; err != nil {
		return fmt.Errorf("load queues: %w", err)
	}
	return nil
}

// Close deregisters every view and stops the loop.
func (v *Views) Close() {
	v.Customers.Close()
	v.Products.Close()
	v.Queues.Close()
	v.loop.Stop()
}
