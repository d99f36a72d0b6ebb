package dashboard

import (
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/mmdatafocus/ledger_backend/display"
	"github.com/mmdatafocus/ledger_backend/models"
	"github.com/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
)

// Axis labels are formatted for this locale regardless of the user's language.
const chartLocale = "id-ID"

// yAxisTicks includes zero.
const yAxisTicks = 6

var (
	one     = decimal.NewFromInt(1)
	ten     = decimal.NewFromInt(10)
	hundred = decimal.NewFromInt(100)
)

type IncomeType string

const (
	IncomeTypeReceived  IncomeType = "RECEIVED_INCOME"
	IncomeTypeProjected IncomeType = "PROJECTED_INCOME"
)

func (e IncomeType) String() string {
	return string(e)
}

type ChartSingle[K any, V any] struct {
	Key   K
	Value V
}

func (d ChartSingle[K, V]) ToMap() map[string]any {
	return map[string]any{"key": d.Key, "value": d.Value}
}

type ChartMultiple[K any, V any, G any] struct {
	Key   K
	Value V
	Group G
}

func (d ChartMultiple[K, V, G]) ToMap() map[string]any {
	return map[string]any{"key": d.Key, "value": d.Value, "group": d.Group}
}

type grouping int

const (
	groupByDays grouping = iota
	groupByMonths
	groupByYears
)

func groupingOf(start time.Time, end time.Time) grouping {
	switch {
	case start.Year() != end.Year():
		return groupByYears
	case start.Month() != end.Month():
		return groupByMonths
	default:
		return groupByDays
	}
}

// addMonths clamps to the last day of the target month, Jan 31 plus one month is Feb 28 or 29.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func (g grouping) next(t time.Time) time.Time {
	switch g {
	case groupByYears:
		return addMonths(t, 12)
	case groupByMonths:
		return addMonths(t, 1)
	default:
		return t.AddDate(0, 0, 1)
	}
}

func (g grouping) label(t time.Time) string {
	switch g {
	case groupByYears:
		return strconv.Itoa(t.Year())
	case groupByMonths:
		return t.Month().String()[:3]
	default:
		return strconv.Itoa(t.Day())
	}
}

// ToDateTime labels t by year, month or day depending on how wide start..end is.
func ToDateTime(t time.Time, start time.Time, end time.Time) string {
	return groupingOf(start, end).label(t)
}

// ToDateTimeDomain lists every label between start and end. The end label is
// always present, even when stepping from start skips past it.
func ToDateTimeDomain(start time.Time, end time.Time) []string {
	g := groupingOf(start, end)
	var result []string
	for date := start; !date.After(end); date = g.next(date) {
		result = append(result, g.label(date))
	}
	if last := g.label(end); !slices.Contains(result, last) {
		result = append(result, last)
	}
	return result
}

func paddedMax(top decimal.Decimal) decimal.Decimal {
	return ceilToNearestTen(top.Add(top.DivRound(hundred, 2)))
}

// ToPercentage maps value onto 0..100 of the padded top, two decimal places.
func ToPercentage(value decimal.Decimal, top decimal.Decimal) float64 {
	padded := one
	if !top.IsZero() {
		padded = paddedMax(top)
	}
	percent, _ := value.DivRound(padded, 2).Mul(hundred).Float64()
	return percent
}

// ToPercentageLinearDomain labels each percent 0..100 with its amount.
func ToPercentageLinearDomain(top decimal.Decimal) []string {
	gap := paddedMax(top).DivRound(hundred, 2)
	result := make([]string, 0, 101)
	for percent := int64(0); percent <= 100; percent++ {
		result = append(result, utils.FormatCurrencyWithUnit(decimal.NewFromInt(percent).Mul(gap), chartLocale, ""))
	}
	return result
}

// ceilToNearestTen rounds up to a multiple of the amount's leading power of ten
// (10, 1K, 10K), never below 10.
func ceilToNearestTen(amount decimal.Decimal) decimal.Decimal {
	amount = decimal.Max(amount, one)
	magnitude := len(amount.Truncate(0).String())
	rounding := decimal.New(1, int32(magnitude-1))
	return decimal.Max(amount.Div(rounding).Ceil().Mul(rounding), ten)
}

type IncomeChartModel struct {
	XAxisDomain []string
	YAxisDomain []string
	Data        []ChartMultiple[string, float64, IncomeType]
}

func (m IncomeChartModel) ToMap() map[string]any {
	data := make([]map[string]any, 0, len(m.Data))
	for _, d := range m.Data {
		data = append(data, d.ToMap())
	}
	return map[string]any{
		"x_axis_domain": m.XAxisDomain,
		"y_axis_domain": m.YAxisDomain,
		"data":          data,
	}
}

type incomeKey struct {
	label  string
	income IncomeType
}

// IncomeChart sums grand totals per date label and income type, in date order.
// Received income only counts completed queues. ALL_TIME starts at the
// earliest queue instead of the epoch.
func IncomeChart(queues []models.Queue, date display.QueueDate) IncomeChartModel {
	loc := date.End.Location()
	sorted := slices.Clone(queues)
	slices.SortStableFunc(sorted, func(a, b models.Queue) int {
		return a.Date.Compare(b.Date)
	})

	start := date.Start
	if date.Range == display.DateRangeAllTime && len(sorted) > 0 {
		start = sorted[0].Date.In(loc)
	}
	end := date.End

	var keys []incomeKey
	sums := make(map[incomeKey]decimal.Decimal)
	maxValue := decimal.NewFromInt(yAxisTicks - 1)
	merge := func(key incomeKey, amount decimal.Decimal) {
		sum, ok := sums[key]
		if !ok {
			keys = append(keys, key)
		}
		sum = sum.Add(amount)
		sums[key] = sum
		maxValue = decimal.Max(maxValue, sum)
	}

	for _, q := range sorted {
		label := ToDateTime(q.Date.In(loc), start, end)
		total := q.GrandTotalPrice()
		if q.IsCompleted() {
			merge(incomeKey{label, IncomeTypeReceived}, total)
		}
		merge(incomeKey{label, IncomeTypeProjected}, total)
	}

	data := make([]ChartMultiple[string, float64, IncomeType], 0, len(keys))
	for _, key := range keys {
		data = append(data, ChartMultiple[string, float64, IncomeType]{
			Key:   key.label,
			Value: ToPercentage(sums[key], maxValue),
			Group: key.income,
		})
	}

	return IncomeChartModel{
		XAxisDomain: ToDateTimeDomain(start, end),
		YAxisDomain: ToPercentageLinearDomain(maxValue),
		Data:        data,
	}
}

type TotalQueuesChartModel struct {
	XAxisDomain []string
	YAxisDomain []float64
	Data        []ChartSingle[string, int]
}

func (m TotalQueuesChartModel) ToMap() map[string]any {
	data := make([]map[string]any, 0, len(m.Data))
	for _, d := range m.Data {
		data = append(data, d.ToMap())
	}
	return map[string]any{
		"x_axis_domain": m.XAxisDomain,
		"y_axis_domain": m.YAxisDomain,
		"data":          data,
	}
}

// TotalQueuesChart counts queues per date label, in date order.
func TotalQueuesChart(queues []models.Queue, date display.QueueDate) TotalQueuesChartModel {
	loc := date.End.Location()
	sorted := slices.Clone(queues)
	slices.SortStableFunc(sorted, func(a, b models.Queue) int {
		return a.Date.Compare(b.Date)
	})

	start := date.Start
	if date.Range == display.DateRangeAllTime && len(sorted) > 0 {
		start = sorted[0].Date.In(loc)
	}
	end := date.End

	var labels []string
	counts := make(map[string]int)
	maxValue := yAxisTicks - 1
	for _, q := range sorted {
		label := ToDateTime(q.Date.In(loc), start, end)
		if _, ok := counts[label]; !ok {
			labels = append(labels, label)
		}
		counts[label]++
		maxValue = max(maxValue, counts[label])
	}

	data := make([]ChartSingle[string, int], 0, len(labels))
	for _, label := range labels {
		data = append(data, ChartSingle[string, int]{Key: label, Value: counts[label]})
	}

	return TotalQueuesChartModel{
		XAxisDomain: ToDateTimeDomain(start, end),
		YAxisDomain: []float64{0, niceScaleMax(0, float64(maxValue), yAxisTicks)},
		Data:        data,
	}
}

// niceScaleMax is the top of a linear axis from lower to upper whose ticks
// land on 1, 2 or 5 times a power of ten.
func niceScaleMax(lower float64, upper float64, ticks int) float64 {
	spread := niceNumber(upper-lower, false)
	spacing := niceNumber(spread/float64(ticks-1), true)
	return math.Ceil(upper/spacing) * spacing
}

func niceNumber(x float64, round bool) float64 {
	if x <= 0 {
		return 1
	}
	exponent := math.Floor(math.Log10(x))
	fraction := x / math.Pow(10, exponent)
	var nice float64
	switch {
	case round && fraction < 1.5, !round && fraction <= 1:
		nice = 1
	case round && fraction < 3, !round && fraction <= 2:
		nice = 2
	case round && fraction < 7, !round && fraction <= 5:
		nice = 5
	default:
		nice = 10
	}
	return nice * math.Pow(10, exponent)
}
