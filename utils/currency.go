package utils

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

const (
	MinimumFractionDigits = 0
	MaximumFractionDigits = 5
)

type currencyLocale struct {
	tag           language.Tag
	symbol        string
	grouping      string
	decimal       string
	symbolAtStart bool
	symbolSpacing string
}

var currencyLocales = []currencyLocale{
	{tag: language.AmericanEnglish, symbol: "$", grouping: ",", decimal: ".", symbolAtStart: true},
	{tag: language.BritishEnglish, symbol: "£", grouping: ",", decimal: ".", symbolAtStart: true},
	{tag: language.MustParse("fr-FR"), symbol: "€", grouping: "\u202F", decimal: ",", symbolSpacing: "\u00A0"},
	{tag: language.MustParse("de-DE"), symbol: "€", grouping: ".", decimal: ",", symbolSpacing: "\u00A0"},
	{tag: language.MustParse("id-ID"), symbol: "Rp", grouping: ".", decimal: ",", symbolAtStart: true},
	{tag: language.MustParse("ja-JP"), symbol: "￥", grouping: ",", decimal: ".", symbolAtStart: true},
}

var currencyMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(currencyLocales))
	for i, l := range currencyLocales {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// lookupLocale falls back to en-US for unknown or malformed tags.
func lookupLocale(tag string) currencyLocale {
	t, err := language.Parse(tag)
	if err != nil {
		return currencyLocales[0]
	}
	_, idx, conf := currencyMatcher.Match(t)
	if conf == language.No {
		return currencyLocales[0]
	}
	return currencyLocales[idx]
}

// FormatCurrency renders amount truncated to five fraction digits,
// without trailing zeros, e.g. 10000.5 in id-ID is "Rp10.000,5".
func FormatCurrency(amount decimal.Decimal, tag string) string {
	return FormatCurrencyWithSymbol(amount, tag, CurrencySymbol(tag))
}

func FormatCurrencyWithSymbol(amount decimal.Decimal, tag string, symbol string) string {
	loc := lookupLocale(tag)
	amount = amount.Truncate(MaximumFractionDigits)

	digits := amount.Abs().String()
	intPart, fracPart, _ := strings.Cut(digits, ".")

	var b strings.Builder
	if amount.IsNegative() {
		b.WriteString("-")
	}
	if loc.symbolAtStart && symbol != "" {
		b.WriteString(symbol)
		b.WriteString(loc.symbolSpacing)
	}
	b.WriteString(groupDigits(intPart, loc.grouping))
	if fracPart != "" {
		b.WriteString(loc.decimal)
		b.WriteString(fracPart)
	}
	if !loc.symbolAtStart && symbol != "" {
		b.WriteString(loc.symbolSpacing)
		b.WriteString(symbol)
	}
	return b.String()
}

var currencyUnits = []struct {
	suffix   string
	exponent int32
}{
	{"T", 12},
	{"B", 9},
	{"M", 6},
	{"K", 3},
}

// FormatCurrencyWithUnit abbreviates large amounts, e.g. 1250000 becomes "Rp1,2M".
func FormatCurrencyWithUnit(amount decimal.Decimal, tag string, symbol string) string {
	for _, unit := range currencyUnits {
		if amount.Abs().GreaterThanOrEqual(decimal.New(1, unit.exponent)) {
			// Shift is exact, so truncation never sees a carried digit.
			scaled := amount.Shift(-unit.exponent).Truncate(1)
			return FormatCurrencyWithSymbol(scaled, tag, symbol) + unit.suffix
		}
	}
	return FormatCurrencyWithSymbol(amount, tag, symbol)
}

// ParseCurrency keeps only digits, '-' and the locale decimal separator.
// Blank input, a lone separator or minus, and repeated minus signs parse to zero.
// Scanning stops at the first character that cannot extend the number.
func ParseCurrency(text string, tag string) decimal.Decimal {
	sep := DecimalSeparator(tag)

	var kept strings.Builder
	for _, r := range text {
		if isDigit(r) || r == '-' || string(r) == sep {
			kept.WriteRune(r)
		}
	}
	s := kept.String()
	if strings.TrimSpace(s) == "" ||
		s == sep ||
		s == "-" ||
		s == "-"+sep ||
		strings.Count(s, "-") > 1 {
		return decimal.Zero
	}

	var num strings.Builder
	seenSep := false
	for i, r := range s {
		switch {
		case r == '-' && i == 0:
			num.WriteRune(r)
		case isDigit(r):
			num.WriteRune(r)
		case string(r) == sep && !seenSep:
			seenSep = true
			num.WriteRune('.')
		default:
			return parseNormalized(num.String())
		}
	}
	return parseNormalized(num.String())
}

func parseNormalized(s string) decimal.Decimal {
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return decimal.Zero
	}
	if strings.HasPrefix(s, "-.") {
		s = "-0" + s[1:]
	} else if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// HasDigit reports whether text carries any number at all.
func HasDigit(text string) bool {
	return strings.IndexFunc(text, isDigit) >= 0
}

func CurrencySymbol(tag string) string {
	return lookupLocale(tag).symbol
}

func GroupingSeparator(tag string) string {
	return lookupLocale(tag).grouping
}

func DecimalSeparator(tag string) string {
	return lookupLocale(tag).decimal
}

func IsSymbolAtStart(tag string) bool {
	return lookupLocale(tag).symbolAtStart
}

// CurrencyCode returns the ISO 4217 code for the locale's region.
func CurrencyCode(tag string) string {
	unit, _ := currency.FromTag(lookupLocale(tag).tag)
	return unit.String()
}

func CountDecimalPlace(amount decimal.Decimal) int {
	_, frac, ok := strings.Cut(amount.String(), ".")
	if !ok {
		return 0
	}
	return len(frac)
}

func groupDigits(digits string, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
