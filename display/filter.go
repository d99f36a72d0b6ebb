package display

import (
	"slices"
	"time"

	"github.com/mmdatafocus/ledger_backend/models"
	"github.com/shopspring/decimal"
)

// Filters keeps the elements of list that match; list is never modified.
type Filters[T any] interface {
	Filter(list []T) []T
}

func filterFunc[T any](list []T, keep func(T) bool) []T {
	out := make([]T, 0, len(list))
	for _, v := range list {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

type CustomerFilters struct {
	Balance Range[int64] `json:"balance"`
	// Debt bounds and values compare as absolute amounts.
	Debt Range[decimal.Decimal] `json:"debt"`
}

func NewCustomerFilters() CustomerFilters {
	return CustomerFilters{}
}

func (f CustomerFilters) Matches(c models.Customer) bool {
	if !InRange(f.Balance, c.Balance) {
		return false
	}
	debt := Range[decimal.Decimal]{Min: absPtr(f.Debt.Min), Max: absPtr(f.Debt.Max)}
	return InDecimalRange(debt, c.Debt.Abs())
}

func (f CustomerFilters) Filter(list []models.Customer) []models.Customer {
	return filterFunc(list, f.Matches)
}

func absPtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := d.Abs()
	return &v
}

type ProductFilters struct {
	Price Range[int64] `json:"price"`
}

func NewProductFilters() ProductFilters {
	return ProductFilters{}
}

func (f ProductFilters) Matches(p models.Product) bool {
	return InRange(f.Price, p.Price)
}

func (f ProductFilters) Filter(list []models.Product) []models.Product {
	return filterFunc(list, f.Matches)
}

// QueueFilters: a queue without a customer passes the customer constraints
// only when IsNullCustomerShown. An empty CustomerIds allows every customer.
type QueueFilters struct {
	CustomerIds         []int64                `json:"customer_ids"`
	ExcludedCustomerIds []int64                `json:"excluded_customer_ids"`
	IsNullCustomerShown bool                   `json:"is_null_customer_shown"`
	Statuses            []models.QueueStatus   `json:"statuses"`
	TotalPrice          Range[decimal.Decimal] `json:"total_price"`
	CustomerBalance     Range[int64]           `json:"customer_balance"`
	Date                QueueDate              `json:"date"`
}

func NewQueueFilters(now time.Time) QueueFilters {
	return QueueFilters{
		IsNullCustomerShown: true,
		Statuses:            slices.Clone(models.AllQueueStatus),
		Date:                QueueDateWithRange(DateRangeAllTime, now),
	}
}

func (f QueueFilters) Matches(q models.Queue) bool {
	return f.matchesCustomer(q) &&
		slices.Contains(f.Statuses, q.Status) &&
		f.Date.Contains(q.Date) &&
		InDecimalRange(f.TotalPrice, q.GrandTotalPrice())
}

func (f QueueFilters) matchesCustomer(q models.Queue) bool {
	if q.CustomerId == nil {
		return f.IsNullCustomerShown
	}
	id := *q.CustomerId
	if len(f.CustomerIds) > 0 && !slices.Contains(f.CustomerIds, id) {
		return false
	}
	if slices.Contains(f.ExcludedCustomerIds, id) {
		return false
	}
	// A dangling id has no balance to compare, so only an unbounded
	// balance range keeps it.
	if q.Customer == nil {
		return f.CustomerBalance.IsUnbounded()
	}
	return InRange(f.CustomerBalance, q.Customer.Balance)
}

func (f QueueFilters) Filter(list []models.Queue) []models.Queue {
	return filterFunc(list, f.Matches)
}
