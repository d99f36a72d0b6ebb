package display

import (
	"cmp"

	"github.com/shopspring/decimal"
)

// Range is inclusive on both ends; a nil bound is unbounded on that side.
type Range[T any] struct {
	Min *T `json:"min"`
	Max *T `json:"max"`
}

func Between[T any](min, max *T) Range[T] {
	return Range[T]{Min: min, Max: max}
}

func (r Range[T]) IsUnbounded() bool {
	return r.Min == nil && r.Max == nil
}

func (r Range[T]) ContainsFunc(v T, compare func(a, b T) int) bool {
	if r.Min != nil && compare(v, *r.Min) < 0 {
		return false
	}
	if r.Max != nil && compare(v, *r.Max) > 0 {
		return false
	}
	return true
}

func InRange[T cmp.Ordered](r Range[T], v T) bool {
	return r.ContainsFunc(v, cmp.Compare[T])
}

func InDecimalRange(r Range[decimal.Decimal], v decimal.Decimal) bool {
	return r.ContainsFunc(v, decimal.Decimal.Cmp)
}
