package display

import (
	"cmp"
	"errors"
	"slices"
	"strconv"

	"github.com/mmdatafocus/ledger_backend/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortMethod[S comparable] struct {
	SortBy      S    `json:"sort_by"`
	IsAscending bool `json:"is_ascending"`
}

// Toggle flips direction when by is already the sort field; a new field
// keeps the current direction.
func (m SortMethod[S]) Toggle(by S) SortMethod[S] {
	if m.SortBy == by {
		return SortMethod[S]{SortBy: by, IsAscending: !m.IsAscending}
	}
	return SortMethod[S]{SortBy: by, IsAscending: m.IsAscending}
}

// Sorter returns a sorted copy; equal elements keep their order.
type Sorter[T any, S comparable] interface {
	Sort(list []T, method SortMethod[S]) []T
}

func sortStable[T any](list []T, ascending bool, compare func(a, b T) int) []T {
	out := slices.Clone(list)
	if !ascending {
		base := compare
		compare = func(a, b T) int { return base(b, a) }
	}
	slices.SortStableFunc(out, compare)
	return out
}

// Collators hold buffers and are not safe to share between goroutines.
func nameCollator() *collate.Collator {
	return collate.New(language.Indonesian, collate.IgnoreCase)
}

type CustomerSortBy string

const (
	CustomerSortByName    CustomerSortBy = "NAME"
	CustomerSortByBalance CustomerSortBy = "BALANCE"
)

func (e CustomerSortBy) IsValid() bool {
	return e == CustomerSortByName || e == CustomerSortByBalance
}

func (e *CustomerSortBy) UnmarshalText(text []byte) error {
	by := CustomerSortBy(text)
	if !by.IsValid() {
		return errors.New("invalid customer sort " + strconv.Quote(string(text)))
	}
	*e = by
	return nil
}

func NewCustomerSortMethod() SortMethod[CustomerSortBy] {
	return SortMethod[CustomerSortBy]{SortBy: CustomerSortByName, IsAscending: true}
}

type CustomerSorter struct{}

func (CustomerSorter) Sort(list []models.Customer, method SortMethod[CustomerSortBy]) []models.Customer {
	switch method.SortBy {
	case CustomerSortByBalance:
		return sortStable(list, method.IsAscending, func(a, b models.Customer) int {
			return cmp.Compare(a.Balance, b.Balance)
		})
	default:
		c := nameCollator()
		return sortStable(list, method.IsAscending, func(a, b models.Customer) int {
			return c.CompareString(a.Name, b.Name)
		})
	}
}

type ProductSortBy string

const (
	ProductSortByName  ProductSortBy = "NAME"
	ProductSortByPrice ProductSortBy = "PRICE"
)

func (e ProductSortBy) IsValid() bool {
	return e == ProductSortByName || e == ProductSortByPrice
}

func (e *ProductSortBy) UnmarshalText(text []byte) error {
	by := ProductSortBy(text)
	if !by.IsValid() {
		return errors.New("invalid product sort " + strconv.Quote(string(text)))
	}
	*e = by
	return nil
}

func NewProductSortMethod() SortMethod[ProductSortBy] {
	return SortMethod[ProductSortBy]{SortBy: ProductSortByName, IsAscending: true}
}

type ProductSorter struct{}

func (ProductSorter) Sort(list []models.Product, method SortMethod[ProductSortBy]) []models.Product {
	switch method.SortBy {
	case ProductSortByPrice:
		return sortStable(list, method.IsAscending, func(a, b models.Product) int {
			return cmp.Compare(a.Price, b.Price)
		})
	default:
		c := nameCollator()
		return sortStable(list, method.IsAscending, func(a, b models.Product) int {
			return c.CompareString(a.Name, b.Name)
		})
	}
}

type QueueSortBy string

const (
	QueueSortByCustomerName QueueSortBy = "CUSTOMER_NAME"
	QueueSortByDate         QueueSortBy = "DATE"
	QueueSortByTotalPrice   QueueSortBy = "TOTAL_PRICE"
)

func (e QueueSortBy) IsValid() bool {
	switch e {
	case QueueSortByCustomerName, QueueSortByDate, QueueSortByTotalPrice:
		return true
	}
	return false
}

func (e *QueueSortBy) UnmarshalText(text []byte) error {
	by := QueueSortBy(text)
	if !by.IsValid() {
		return errors.New("invalid queue sort " + strconv.Quote(string(text)))
	}
	*e = by
	return nil
}

func NewQueueSortMethod() SortMethod[QueueSortBy] {
	return SortMethod[QueueSortBy]{SortBy: QueueSortByCustomerName, IsAscending: true}
}

type QueueSorter struct{}

// Sort by CUSTOMER_NAME puts queues without a customer last when
// ascending, first when descending.
func (QueueSorter) Sort(list []models.Queue, method SortMethod[QueueSortBy]) []models.Queue {
	switch method.SortBy {
	case QueueSortByDate:
		return sortStable(list, method.IsAscending, func(a, b models.Queue) int {
			return a.Date.Compare(b.Date)
		})
	case QueueSortByTotalPrice:
		return sortStable(list, method.IsAscending, func(a, b models.Queue) int {
			return a.GrandTotalPrice().Cmp(b.GrandTotalPrice())
		})
	default:
		c := nameCollator()
		return sortStable(list, method.IsAscending, func(a, b models.Queue) int {
			switch {
			case a.Customer == nil && b.Customer == nil:
				return 0
			case a.Customer == nil:
				return 1
			case b.Customer == nil:
				return -1
			}
			return c.CompareString(a.Customer.Name, b.Customer.Name)
		})
	}
}
