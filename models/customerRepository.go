package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type CustomerBalanceInfo struct {
	ID      int64 `json:"id"`
	Balance int64 `json:"balance"`
}

type CustomerDebtInfo struct {
	ID   int64           `json:"id"`
	Debt decimal.Decimal `json:"debt"`
}

type CustomerRepository struct {
	db      *gorm.DB
	changes *ChangeRegistry[Customer]
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db, changes: NewChangeRegistry[Customer]()}
}

func (r *CustomerRepository) Changes() *ChangeRegistry[Customer] {
	return r.changes
}

func (r *CustomerRepository) AddListener(l ModelChangedListener[Customer]) {
	r.changes.AddListener(l)
}

func (r *CustomerRepository) RemoveListener(l ModelChangedListener[Customer]) {
	r.changes.RemoveListener(l)
}

func (r *CustomerRepository) SelectAll(ctx context.Context) ([]Customer, error) {
	cached, ok, err := utils.RetrieveRedisList[Customer](ctx)
	if err != nil {
		config.LogError(config.GetLogger(), "Customer", "SelectAll", "retrieve cache", nil, err)
	} else if ok {
		return cached, nil
	}

	var results []Customer
	if err := r.db.WithContext(ctx).Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	if err := fillDebts(ctx, r.db, results); err != nil {
		return nil, err
	}
	if err := utils.StoreRedisList(ctx, results); err != nil {
		config.LogError(config.GetLogger(), "Customer", "SelectAll", "store cache", nil, err)
	}
	return results, nil
}

func (r *CustomerRepository) SelectById(ctx context.Context, id int64) (*Customer, error) {
	return selectCustomer(ctx, r.db, id)
}

// SelectByIds keeps the order of ids and skips ids with no row.
func (r *CustomerRepository) SelectByIds(ctx context.Context, ids []int64) ([]Customer, error) {
	return selectCustomers(ctx, r.db, ids)
}

func selectCustomer(ctx context.Context, db *gorm.DB, id int64) (*Customer, error) {
	var customer Customer
	err := db.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	} else if err != nil {
		return nil, err
	}
	debts := []Customer{customer}
	if err := fillDebts(ctx, db, debts); err != nil {
		return nil, err
	}
	return &debts[0], nil
}

func selectCustomers(ctx context.Context, db *gorm.DB, ids []int64) ([]Customer, error) {
	if len(ids) == 0 {
		return []Customer{}, nil
	}
	var rows []Customer
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	if err := fillDebts(ctx, db, rows); err != nil {
		return nil, err
	}
	byId := make(map[int64]Customer, len(rows))
	for _, c := range rows {
		byId[c.ID] = c
	}
	results := make([]Customer, 0, len(rows))
	for _, id := range utils.UniqueSlice(ids) {
		if c, ok := byId[id]; ok {
			results = append(results, c)
		}
	}
	return results, nil
}

func (r *CustomerRepository) Add(ctx context.Context, input *NewCustomer) (result *Customer, err error) {
	ctx, span := tracer.Start(ctx, "CustomerRepository.Add")
	defer func() { endSpan(span, err) }()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	customer := input.ToCustomer(0)

	tx := r.db.Begin()
	err = tx.WithContext(ctx).Create(&customer).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	err = tx.WithContext(ctx).Create(&CustomerFts{RowId: customer.ID, Name: utils.FtsNormalize(customer.Name)}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err = tx.Commit().Error; err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("customer.id", customer.ID))

	r.invalidate(ctx)
	r.changes.NotifyAdded([]Customer{customer})
	return &customer, nil
}

// Update replaces name and balance; debt is never written.
func (r *CustomerRepository) Update(ctx context.Context, id int64, input *NewCustomer) (result *Customer, err error) {
	ctx, span := tracer.Start(ctx, "CustomerRepository.Update", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer func() { endSpan(span, err) }()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	release, err := lockCustomerBalances(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	tx := r.db.Begin()
	res := tx.WithContext(ctx).Model(&Customer{}).Where("id = ?", id).Updates(map[string]interface{}{
		"Name":    input.Name,
		"Balance": input.Balance,
	})
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}
	if err = replaceCustomerFts(ctx, tx, id, input.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err = tx.Commit().Error; err != nil {
		return nil, err
	}

	return r.afterUpdate(ctx, id)
}

func (r *CustomerRepository) Delete(ctx context.Context, id int64) (result *Customer, err error) {
	ctx, span := tracer.Start(ctx, "CustomerRepository.Delete", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer func() { endSpan(span, err) }()

	customer, err := selectCustomer(ctx, r.db, id)
	if err != nil {
		return nil, err
	}

	tx := r.db.Begin()
	if err = tx.WithContext(ctx).Where("rowid = ?", id).Delete(&CustomerFts{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	res := tx.WithContext(ctx).Delete(&Customer{}, id)
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}
	if err = tx.Commit().Error; err != nil {
		return nil, err
	}

	r.invalidate(ctx)
	// queues keep their rows with a null customer
	_ = utils.RemoveRedisList[Queue](ctx)
	forget(ctx, nil, []int64{id})
	r.changes.NotifyDeleted([]Customer{*customer})
	return customer, nil
}

func (r *CustomerRepository) AddBalance(ctx context.Context, id int64, amount int64) (*Customer, error) {
	return r.changeBalance(ctx, id, func(c Customer) (int64, error) { return c.AddBalance(amount) })
}

func (r *CustomerRepository) WithdrawBalance(ctx context.Context, id int64, amount int64) (*Customer, error) {
	return r.changeBalance(ctx, id, func(c Customer) (int64, error) { return c.WithdrawBalance(amount) })
}

func (r *CustomerRepository) changeBalance(ctx context.Context, id int64, next func(Customer) (int64, error)) (result *Customer, err error) {
	ctx, span := tracer.Start(ctx, "CustomerRepository.changeBalance", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer func() { endSpan(span, err) }()

	release, err := lockCustomerBalances(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	customer, err := selectCustomer(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	balance, err := next(*customer)
	if err != nil {
		return nil, err
	}

	tx := r.db.Begin()
	if err = setBalances(ctx, tx, map[int64]int64{id: balance}); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err = tx.Commit().Error; err != nil {
		return nil, err
	}
	return r.afterUpdate(ctx, id)
}

func (r *CustomerRepository) afterUpdate(ctx context.Context, ids ...int64) (*Customer, error) {
	r.invalidate(ctx)
	_ = utils.RemoveRedisList[Queue](ctx)
	forget(ctx, nil, ids)

	updated, err := selectCustomers(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	r.changes.NotifyUpdated(updated)
	if len(updated) == 0 {
		return nil, utils.ErrorRecordNotFound
	}
	return &updated[0], nil
}

// Search matches names through the customer_fts shadow table.
func (r *CustomerRepository) Search(ctx context.Context, query string) ([]Customer, error) {
	results := []Customer{}
	if utils.FtsNormalize(query) == "" {
		return results, nil
	}
	dbCtx := r.db.WithContext(ctx).
		Table("customer").
		Select("customer.*").
		Joins("JOIN customer_fts ON customer_fts.rowid = customer.id")
	if utils.FtsIsShortQuery(query) {
		dbCtx = dbCtx.Where("customer_fts.name LIKE ?", utils.FtsLikePattern(query))
	} else {
		dbCtx = dbCtx.Where("MATCH(customer_fts.name) AGAINST (? IN BOOLEAN MODE)", utils.FtsPhrase(query))
	}
	err := dbCtx.Order("customer.name").Limit(config.SearchLimit).Find(&results).Error
	if err != nil {
		return nil, err
	}
	if err := fillDebts(ctx, r.db, results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *CustomerRepository) SelectAllIdsWithBalance(ctx context.Context) ([]CustomerBalanceInfo, error) {
	var results []CustomerBalanceInfo
	err := r.db.WithContext(ctx).Model(&Customer{}).
		Select("id, balance").
		Where("balance > 0").
		Order("id").
		Scan(&results).Error
	return results, err
}

func (r *CustomerRepository) SelectAllIdsWithDebt(ctx context.Context) ([]CustomerDebtInfo, error) {
	rows, err := uncompletedTotals(ctx, r.db, nil)
	if err != nil {
		return nil, err
	}
	results := make([]CustomerDebtInfo, 0, len(rows))
	for _, row := range rows {
		if debt := row.Total.Neg(); debt.IsNegative() {
			results = append(results, CustomerDebtInfo{ID: row.CustomerId, Debt: debt})
		}
	}
	return results, nil
}

// TotalDebtById is minus the sum of order totals of the customer's
// uncompleted queues; zero for a customer without any.
func (r *CustomerRepository) TotalDebtById(ctx context.Context, id int64) (decimal.Decimal, error) {
	rows, err := uncompletedTotals(ctx, r.db, []int64{id})
	if err != nil {
		return decimal.Zero, err
	}
	if len(rows) == 0 {
		return decimal.Zero, nil
	}
	return rows[0].Total.Neg(), nil
}

func (r *CustomerRepository) TotalBalance(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&Customer{}).Select("COALESCE(SUM(balance), 0)").Scan(&total).Error
	return total, err
}

func (r *CustomerRepository) invalidate(ctx context.Context) {
	if err := utils.RemoveRedisList[Customer](ctx); err != nil {
		config.LogError(config.GetLogger(), "Customer", "invalidate", "remove cache", nil, err)
	}
}

type customerTotalRow struct {
	CustomerId int64
	Total      decimal.Decimal
}

// uncompletedTotals sums order totals of uncompleted queues per customer;
// nil ids means every customer.
func uncompletedTotals(ctx context.Context, db *gorm.DB, ids []int64) ([]customerTotalRow, error) {
	var rows []customerTotalRow
	dbCtx := db.WithContext(ctx).
		Table("product_order").
		Select("queue.customer_id AS customer_id, COALESCE(SUM(product_order.total_price), 0) AS total").
		Joins("JOIN queue ON queue.id = product_order.queue_id").
		Where("queue.customer_id IS NOT NULL AND queue.status <> ?", QueueStatusCompleted)
	if ids != nil {
		dbCtx = dbCtx.Where("queue.customer_id IN ?", ids)
	}
	err := dbCtx.Group("queue.customer_id").Order("queue.customer_id").Scan(&rows).Error
	return rows, err
}

func fillDebts(ctx context.Context, db *gorm.DB, customers []Customer) error {
	if len(customers) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(customers))
	for _, c := range customers {
		ids = append(ids, c.ID)
	}
	rows, err := uncompletedTotals(ctx, db, ids)
	if err != nil {
		return fmt.Errorf("customer debts: %w", err)
	}
	totals := make(map[int64]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.CustomerId] = row.Total
	}
	for i := range customers {
		customers[i].Debt = totals[customers[i].ID].Neg()
	}
	return nil
}

func replaceCustomerFts(ctx context.Context, tx *gorm.DB, id int64, name string) error {
	if err := tx.WithContext(ctx).Where("rowid = ?", id).Delete(&CustomerFts{}).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Create(&CustomerFts{RowId: id, Name: utils.FtsNormalize(name)}).Error
}

// setBalances writes balances inside tx; callers hold the balance lock.
func setBalances(ctx context.Context, tx *gorm.DB, balances map[int64]int64) error {
	for id, balance := range balances {
		res := tx.WithContext(ctx).Model(&Customer{}).Where("id = ?", id).Update("balance", balance)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("customer %d: %w", id, utils.ErrorRecordNotFound)
		}
	}
	return nil
}
