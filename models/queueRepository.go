package models

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueueRepository also moves customer balances, so customer listeners hear
// about every balance or debt a queue write changed.
type QueueRepository struct {
	db        *gorm.DB
	customers *CustomerRepository
	changes   *ChangeRegistry[Queue]
	now       func() time.Time
}

func NewQueueRepository(db *gorm.DB, customers *CustomerRepository) *QueueRepository {
	return &QueueRepository{
		db:        db,
		customers: customers,
		changes:   NewChangeRegistry[Queue](),
		now:       time.Now,
	}
}

func (r *QueueRepository) Changes() *ChangeRegistry[Queue] {
	return r.changes
}

func (r *QueueRepository) AddListener(l ModelChangedListener[Queue]) {
	r.changes.AddListener(l)
}

func (r *QueueRepository) RemoveListener(l ModelChangedListener[Queue]) {
	r.changes.RemoveListener(l)
}

func (r *QueueRepository) SelectAll(ctx context.Context) ([]Queue, error) {
	cached, ok, err := utils.RetrieveRedisList[Queue](ctx)
	if err != nil {
		config.LogError(config.GetLogger(), "Queue", "SelectAll", "retrieve cache", nil, err)
	} else if ok {
		return cached, nil
	}

	var results []Queue
	if err := r.db.WithContext(ctx).Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	if err := mapQueueFields(ctx, loadersFor(ctx, r.db), results); err != nil {
		return nil, err
	}
	if err := utils.StoreRedisList(ctx, results); err != nil {
		config.LogError(config.GetLogger(), "Queue", "SelectAll", "store cache", nil, err)
	}
	return results, nil
}

// SelectAllInRange returns queues dated within [start, end].
func (r *QueueRepository) SelectAllInRange(ctx context.Context, start time.Time, end time.Time) ([]Queue, error) {
	var results []Queue
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", start, end).
		Order("date").Order("id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	if err := mapQueueFields(ctx, loadersFor(ctx, r.db), results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *QueueRepository) SelectById(ctx context.Context, id int64) (*Queue, error) {
	return selectQueue(ctx, r.db, loadersFor(ctx, r.db), id)
}

// SelectByIds keeps the order of ids and skips ids with no row.
func (r *QueueRepository) SelectByIds(ctx context.Context, ids []int64) ([]Queue, error) {
	return selectQueues(ctx, r.db, loadersFor(ctx, r.db), ids)
}

func selectQueue(ctx context.Context, db *gorm.DB, loaders *Loaders, id int64) (*Queue, error) {
	var queue Queue
	err := db.WithContext(ctx).Where("id = ?", id).First(&queue).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	} else if err != nil {
		return nil, err
	}
	queues := []Queue{queue}
	if err := mapQueueFields(ctx, loaders, queues); err != nil {
		return nil, err
	}
	return &queues[0], nil
}

func selectQueues(ctx context.Context, db *gorm.DB, loaders *Loaders, ids []int64) ([]Queue, error) {
	results := []Queue{}
	if len(ids) == 0 {
		return results, nil
	}
	var rows []Queue
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	if err := mapQueueFields(ctx, loaders, rows); err != nil {
		return nil, err
	}
	byId := make(map[int64]Queue, len(rows))
	for _, q := range rows {
		byId[q.ID] = q
	}
	for _, id := range utils.UniqueSlice(ids) {
		if q, ok := byId[id]; ok {
			results = append(results, q)
		}
	}
	return results, nil
}

func (r *QueueRepository) Add(ctx context.Context, input *NewQueue) (result *Queue, err error) {
	ctx, span := tracer.Start(ctx, "QueueRepository.Add")
	defer func() { endSpan(span, err) }()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	queue := input.ToQueue(0, r.now())

	release, err := lockCustomerBalances(ctx, customerIdsOf(queue)...)
	if err != nil {
		return nil, err
	}
	defer release()

	tx := r.db.Begin()
	err = tx.WithContext(ctx).Omit("Customer").Create(&queue).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	balances := map[int64]int64{}
	if queue.CustomerId != nil {
		customer, err := selectCustomer(ctx, tx, *queue.CustomerId)
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("queue customer: %w", err)
		}
		if err = customer.CheckBalanceFor(nil, queue); err != nil {
			tx.Rollback()
			return nil, err
		}
		if balance := customer.BalanceOnMadePayment(queue); balance != customer.Balance {
			balances[customer.ID] = balance
		}
	}
	if err = setBalances(ctx, tx, balances); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err = tx.Commit().Error; err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("queue.id", queue.ID))

	added, err := r.afterWrite(ctx, queue.ID, customerIdsOf(queue))
	if err != nil {
		return nil, err
	}
	r.changes.NotifyAdded([]Queue{*added})
	return added, nil
}

// Update reverts the old queue from its customer when the customer changed,
// then applies the updated queue to the new one. Orders keep their ids when
// input carries an id of this queue; others are created, missing ones deleted.
func (r *QueueRepository) Update(ctx context.Context, id int64, input *NewQueue) (result *Queue, err error) {
	ctx, span := tracer.Start(ctx, "QueueRepository.Update", trace.WithAttributes(attribute.Int64("queue.id", id)))
	defer func() { endSpan(span, err) }()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	read, release, err := r.lockedQueue(ctx, id, customerIdsOf(input.ToQueue(id, time.Time{}))...)
	if err != nil {
		return nil, err
	}
	defer release()

	tx := r.db.Begin()
	old, err := reloadForUpdate(ctx, tx, read)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	updated := input.ToQueue(id, old.Date)
	affected := append(customerIdsOf(*old), customerIdsOf(updated)...)

	res := tx.WithContext(ctx).Model(&Queue{}).Where("id = ?", id).Updates(map[string]interface{}{
		"CustomerId":    updated.CustomerId,
		"Status":        updated.Status,
		"PaymentMethod": updated.PaymentMethod,
		"Date":          updated.Date,
	})
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}
	if err = upsertProductOrders(ctx, tx, *old, updated.ProductOrders); err != nil {
		tx.Rollback()
		return nil, err
	}
	balances, err := updatedBalances(ctx, tx, *old, updated)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err = setBalances(ctx, tx, balances); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err = tx.Commit().Error; err != nil {
		return nil, err
	}

	queue, err := r.afterWrite(ctx, id, affected)
	if err != nil {
		return nil, err
	}
	r.changes.NotifyUpdated([]Queue{*queue})
	return queue, nil
}

func (r *QueueRepository) Delete(ctx context.Context, id int64) (result *Queue, err error) {
	ctx, span := tracer.Start(ctx, "QueueRepository.Delete", trace.WithAttributes(attribute.Int64("queue.id", id)))
	defer func() { endSpan(span, err) }()

	read, release, err := r.lockedQueue(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	tx := r.db.Begin()
	old, err := reloadForUpdate(ctx, tx, read)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err = tx.WithContext(ctx).Where("queue_id = ?", id).Delete(&ProductOrder{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	res := tx.WithContext(ctx).Delete(&Queue{}, id)
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}
	balances := map[int64]int64{}
	if old.CustomerId != nil {
		customer, err := selectCustomer(ctx, tx, *old.CustomerId)
		if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
			tx.Rollback()
			return nil, err
		}
		if customer != nil {
			if balance := customer.BalanceOnRevertedPayment(*old); balance != customer.Balance {
				balances[customer.ID] = balance
			}
		}
	}
	if err = setBalances(ctx, tx, balances); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err = tx.Commit().Error; err != nil {
		return nil, err
	}

	r.invalidate(ctx, []int64{id}, customerIdsOf(*old))
	r.changes.NotifyDeleted([]Queue{*old})
	r.notifyCustomers(ctx, customerIdsOf(*old))
	return old, nil
}

// Search matches customer names through customer_fts and product names of orders.
func (r *QueueRepository) Search(ctx context.Context, query string) ([]Queue, error) {
	results := []Queue{}
	if utils.FtsNormalize(query) == "" {
		return results, nil
	}
	customerCond := "MATCH(customer_fts.name) AGAINST (? IN BOOLEAN MODE)"
	customerArg := utils.FtsPhrase(query)
	if utils.FtsIsShortQuery(query) {
		customerCond = "customer_fts.name LIKE ?"
		customerArg = utils.FtsLikePattern(query)
	}
	customerIds := r.db.Table("customer_fts").Select("rowid").Where(customerCond, customerArg)
	orderQueueIds := r.db.Table("product_order").Select("queue_id").Where("LOWER(product_name) LIKE ?", utils.FtsLikePattern(query))

	err := r.db.WithContext(ctx).
		Where("customer_id IN (?) OR id IN (?)", customerIds, orderQueueIds).
		Order("date DESC").Order("id DESC").
		Limit(config.SearchLimit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	if err := mapQueueFields(ctx, loadersFor(ctx, r.db), results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *QueueRepository) afterWrite(ctx context.Context, id int64, customerIds []int64) (*Queue, error) {
	r.invalidate(ctx, []int64{id}, customerIds)
	queue, err := selectQueue(ctx, r.db, NewLoaders(r.db), id)
	if err != nil {
		return nil, err
	}
	r.notifyCustomers(ctx, customerIds)
	return queue, nil
}

func (r *QueueRepository) invalidate(ctx context.Context, queueIds []int64, customerIds []int64) {
	if err := utils.RemoveRedisList[Queue](ctx); err != nil {
		config.LogError(config.GetLogger(), "Queue", "invalidate", "remove cache", nil, err)
	}
	// balances and debts are part of the cached customer list
	if len(customerIds) > 0 {
		r.customers.invalidate(ctx)
	}
	forget(ctx, queueIds, customerIds)
}

func (r *QueueRepository) notifyCustomers(ctx context.Context, ids []int64) {
	if r.customers == nil || len(ids) == 0 {
		return
	}
	customers, err := selectCustomers(ctx, r.db, ids)
	if err != nil {
		config.LogError(config.GetLogger(), "Queue", "notifyCustomers", "select customers", ids, err)
		return
	}
	r.customers.changes.NotifyUpdated(customers)
}

const lockedQueueAttempts = 3

// lockedQueue takes the balance locks of queue id's customer and of extra,
// and returns the queue as read once they are held. It tries again when the
// queue moved to another customer in between.
func (r *QueueRepository) lockedQueue(ctx context.Context, id int64, extra ...int64) (*Queue, func(), error) {
	for attempt := 0; attempt < lockedQueueAttempts; attempt++ {
		before, err := selectQueue(ctx, r.db, NewLoaders(r.db), id)
		if err != nil {
			return nil, nil, err
		}
		release, err := lockCustomerBalances(ctx, append(customerIdsOf(*before), extra...)...)
		if err != nil {
			return nil, nil, err
		}
		queue, err := selectQueue(ctx, r.db, NewLoaders(r.db), id)
		if err != nil {
			release()
			return nil, nil, err
		}
		if slices.Equal(customerIdsOf(*queue), customerIdsOf(*before)) {
			return queue, release, nil
		}
		release()
	}
	return nil, nil, ErrBalanceLocked
}

// reloadForUpdate reads the queue row and its orders again under a row lock
// in tx, keeping the customer snapshot of read. Writers without a redis
// lock queue up here; a writer that finds the customer changed backs off.
func reloadForUpdate(ctx context.Context, tx *gorm.DB, read *Queue) (*Queue, error) {
	var queue Queue
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", read.ID).First(&queue).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	} else if err != nil {
		return nil, err
	}
	if err := tx.WithContext(ctx).Where("queue_id = ?", queue.ID).Order("id").Find(&queue.ProductOrders).Error; err != nil {
		return nil, err
	}
	if !slices.Equal(customerIdsOf(queue), customerIdsOf(*read)) {
		return nil, ErrBalanceLocked
	}
	queue.Customer = read.Customer
	return &queue, nil
}

func customerIdsOf(q Queue) []int64 {
	if q.CustomerId == nil {
		return nil
	}
	return []int64{*q.CustomerId}
}

// updatedBalances computes the balances an update moves. Untouched
// balances are left out.
func updatedBalances(ctx context.Context, tx *gorm.DB, old Queue, updated Queue) (map[int64]int64, error) {
	balances := map[int64]int64{}
	if old.CustomerId != nil && (updated.CustomerId == nil || *old.CustomerId != *updated.CustomerId) {
		oldCustomer, err := selectCustomer(ctx, tx, *old.CustomerId)
		if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, err
		}
		if oldCustomer != nil {
			if balance := oldCustomer.BalanceOnRevertedPayment(old); balance != oldCustomer.Balance {
				balances[oldCustomer.ID] = balance
			}
		}
	}
	if updated.CustomerId != nil {
		customer, err := selectCustomer(ctx, tx, *updated.CustomerId)
		if err != nil {
			return nil, fmt.Errorf("queue customer: %w", err)
		}
		if err := customer.CheckBalanceFor(&old, updated); err != nil {
			return nil, err
		}
		if balance := customer.BalanceOnUpdatedPayment(old, updated); balance != customer.Balance {
			balances[customer.ID] = balance
		}
	}
	return balances, nil
}

// upsertProductOrders writes orders in place, assigning ids to new ones.
func upsertProductOrders(ctx context.Context, tx *gorm.DB, old Queue, orders []ProductOrder) error {
	existing := make(map[int64]bool, len(old.ProductOrders))
	for _, o := range old.ProductOrders {
		existing[o.ID] = true
	}
	kept := make(map[int64]bool, len(orders))
	for i := range orders {
		orders[i].QueueId = old.ID
		if orders[i].ID != 0 && existing[orders[i].ID] {
			if err := tx.WithContext(ctx).Omit("Product").Save(&orders[i]).Error; err != nil {
				return err
			}
			kept[orders[i].ID] = true
			continue
		}
		orders[i].ID = 0
		if err := tx.WithContext(ctx).Omit("Product").Create(&orders[i]).Error; err != nil {
			return err
		}
	}
	var removed []int64
	for _, o := range old.ProductOrders {
		if !kept[o.ID] {
			removed = append(removed, o.ID)
		}
	}
	if len(removed) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Where("id IN ?", removed).Delete(&ProductOrder{}).Error
}
