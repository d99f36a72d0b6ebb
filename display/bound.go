package display

import (
	"strings"

	"github.com/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
)

// ParseBound reads a user-typed currency amount as a range bound.
// Blank or digitless text is unbounded, never an error.
func ParseBound(text string, languageTag string) *int64 {
	amount := ParseDecimalBound(text, languageTag)
	if amount == nil {
		return nil
	}
	v := amount.IntPart()
	return &v
}

func ParseDecimalBound(text string, languageTag string) *decimal.Decimal {
	if strings.TrimSpace(text) == "" || !utils.HasDigit(text) {
		return nil
	}
	v := utils.ParseCurrency(text, languageTag)
	return &v
}

// TextRange holds bounds as typed into a filter form.
type TextRange struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

func (r TextRange) Int64Range(languageTag string) Range[int64] {
	return Range[int64]{Min: ParseBound(r.Min, languageTag), Max: ParseBound(r.Max, languageTag)}
}

func (r TextRange) DecimalRange(languageTag string) Range[decimal.Decimal] {
	return Range[decimal.Decimal]{Min: ParseDecimalBound(r.Min, languageTag), Max: ParseDecimalBound(r.Max, languageTag)}
}
