package models

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"
)

type ctxKey string

const loadersKey = ctxKey("dataloaders")

// Loaders batch the associations of queues read in the same request.
type Loaders struct {
	customerLoader     *dataloader.Loader[int64, *Customer]
	productOrderLoader *dataloader.Loader[int64, []ProductOrder]
}

func NewLoaders(db *gorm.DB) *Loaders {
	cr := &customerReader{db: db}
	por := &productOrderReader{db: db}
	return &Loaders{
		customerLoader:     dataloader.NewBatchedLoader(cr.getCustomers, dataloader.WithWait[int64, *Customer](time.Millisecond)),
		productOrderLoader: dataloader.NewBatchedLoader(por.getProductOrdersByQueueId, dataloader.WithWait[int64, []ProductOrder](time.Millisecond)),
	}
}

// WithLoaders attaches loaders to ctx; loaders cache for their whole life,
// so attach a fresh set per request.
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

func loadersFor(ctx context.Context, db *gorm.DB) *Loaders {
	if loaders, ok := ctx.Value(loadersKey).(*Loaders); ok && loaders != nil {
		return loaders
	}
	return NewLoaders(db)
}

// forget drops cached rows a write just changed.
func forget(ctx context.Context, queueIds []int64, customerIds []int64) {
	loaders, ok := ctx.Value(loadersKey).(*Loaders)
	if !ok || loaders == nil {
		return
	}
	for _, id := range queueIds {
		loaders.productOrderLoader.Clear(ctx, id)
	}
	for _, id := range customerIds {
		loaders.customerLoader.Clear(ctx, id)
	}
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}

type customerReader struct {
	db *gorm.DB
}

// missing customers load as nil, the queue keeps its dangling id
func (r *customerReader) getCustomers(ctx context.Context, ids []int64) []*dataloader.Result[*Customer] {
	var results []Customer
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*Customer](len(ids), err)
	}
	if err := fillDebts(ctx, r.db, results); err != nil {
		return handleError[*Customer](len(ids), err)
	}

	resultMap := make(map[int64]*Customer, len(results))
	for i := range results {
		resultMap[results[i].ID] = &results[i]
	}
	loaderResults := make([]*dataloader.Result[*Customer], 0, len(ids))
	for _, id := range ids {
		loaderResults = append(loaderResults, &dataloader.Result[*Customer]{Data: resultMap[id]})
	}
	return loaderResults
}

type productOrderReader struct {
	db *gorm.DB
}

// each queue id has many orders
func (r *productOrderReader) getProductOrdersByQueueId(ctx context.Context, queueIds []int64) []*dataloader.Result[[]ProductOrder] {
	var results []ProductOrder
	err := r.db.WithContext(ctx).Where("queue_id IN ?", queueIds).Order("id").Find(&results).Error
	if err != nil {
		return handleError[[]ProductOrder](len(queueIds), err)
	}

	byQueue := make(map[int64][]ProductOrder, len(queueIds))
	for _, result := range results {
		byQueue[result.QueueId] = append(byQueue[result.QueueId], result)
	}
	loaderResults := make([]*dataloader.Result[[]ProductOrder], 0, len(queueIds))
	for _, id := range queueIds {
		loaderResults = append(loaderResults, &dataloader.Result[[]ProductOrder]{Data: byQueue[id]})
	}
	return loaderResults
}

// mapQueueFields fills customer and orders of every queue through the loaders.
func mapQueueFields(ctx context.Context, loaders *Loaders, queues []Queue) error {
	if len(queues) == 0 {
		return nil
	}

	orderThunks := make([]dataloader.Thunk[[]ProductOrder], len(queues))
	customerThunks := make([]dataloader.Thunk[*Customer], len(queues))
	for i, q := range queues {
		orderThunks[i] = loaders.productOrderLoader.Load(ctx, q.ID)
		if q.CustomerId != nil {
			customerThunks[i] = loaders.customerLoader.Load(ctx, *q.CustomerId)
		}
	}
	for i := range queues {
		orders, err := orderThunks[i]()
		if err != nil {
			return err
		}
		queues[i].ProductOrders = orders
		queues[i].Customer = nil
		if customerThunks[i] != nil {
			customer, err := customerThunks[i]()
			if err != nil {
				return err
			}
			if customer != nil {
				c := *customer
				queues[i].Customer = &c
			}
		}
	}
	return nil
}
