package dashboard

import (
	"testing"
	"time"

	"github.com/mmdatafocus/ledger_backend/display"
	"github.com/mmdatafocus/ledger_backend/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestToDateTime(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       string
	}{
		{"same month groups by day", date(2024, 5, 1), date(2024, 5, 31), "7"},
		{"same year groups by month", date(2024, 1, 1), date(2024, 12, 31), "May"},
		{"across years groups by year", date(2023, 7, 1), date(2024, 6, 1), "2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToDateTime(date(2024, 5, 7), tt.start, tt.end))
		})
	}
}

func TestToDateTimeDomain(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"},
		ToDateTimeDomain(date(2024, 5, 1), date(2024, 5, 3).Add(23*time.Hour)))

	// Jan 31 steps to Feb 29, not into March.
	assert.Equal(t, []string{"Jan", "Feb", "Mar"},
		ToDateTimeDomain(date(2024, 1, 31), date(2024, 3, 15)))

	// Stepping a year from 2023-07-01 passes the end, the end year is still listed.
	assert.Equal(t, []string{"2023", "2024"},
		ToDateTimeDomain(date(2023, 7, 1), date(2024, 6, 1)))
}

func TestCeilToNearestTen(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"0.5", 10},
		{"5.05", 10},
		{"100", 100},
		{"101", 200},
		{"2020", 3000},
		{"12468.45", 20000},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got := ceilToNearestTen(decimal.RequireFromString(tt.amount))
			assert.True(t, decimal.NewFromInt(tt.want).Equal(got), got.String())
		})
	}
}

func TestToPercentage(t *testing.T) {
	assert.Equal(t, 30.0, ToPercentage(decimal.NewFromInt(3), decimal.NewFromInt(5)))
	assert.Equal(t, 62.0, ToPercentage(decimal.NewFromInt(12345), decimal.NewFromInt(12345)))
	assert.Equal(t, 0.0, ToPercentage(decimal.Zero, decimal.Zero))
	assert.Equal(t, 300.0, ToPercentage(decimal.NewFromInt(3), decimal.Zero))
}

func TestToPercentageLinearDomain(t *testing.T) {
	domain := ToPercentageLinearDomain(decimal.NewFromInt(5))
	require.Len(t, domain, 101)
	assert.Equal(t, "0", domain[0])
	assert.Equal(t, "0,1", domain[1])
	assert.Equal(t, "5", domain[50])
	assert.Equal(t, "10", domain[100])

	assert.Equal(t, "3K", ToPercentageLinearDomain(decimal.NewFromInt(2000))[100])
}

func TestNiceScaleMax(t *testing.T) {
	assert.Equal(t, 5.0, niceScaleMax(0, 5, yAxisTicks))
	assert.Equal(t, 8.0, niceScaleMax(0, 7, yAxisTicks))
}

func chartQueue(id int64, status models.QueueStatus, at time.Time, total int64) models.Queue {
	return models.Queue{
		ID:            id,
		Status:        status,
		PaymentMethod: models.PaymentMethodCash,
		Date:          at,
		ProductOrders: []models.ProductOrder{{ProductName: "Apel", TotalPrice: decimal.NewFromInt(total)}},
	}
}

func TestIncomeChart(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	queues := []models.Queue{
		chartQueue(3, models.QueueStatusCompleted, time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC), 2000),
		chartQueue(2, models.QueueStatusUnpaid, time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC), 500),
		chartQueue(1, models.QueueStatusCompleted, time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC), 1000),
	}

	chart := IncomeChart(queues, display.QueueDateWithRange(display.DateRangeThisMonth, now))

	require.Len(t, chart.XAxisDomain, 31)
	assert.Equal(t, "1", chart.XAxisDomain[0])
	assert.Equal(t, "31", chart.XAxisDomain[30])
	assert.Equal(t, []ChartMultiple[string, float64, IncomeType]{
		{Key: "3", Value: 33, Group: IncomeTypeReceived},
		{Key: "3", Value: 50, Group: IncomeTypeProjected},
		{Key: "10", Value: 67, Group: IncomeTypeReceived},
		{Key: "10", Value: 67, Group: IncomeTypeProjected},
	}, chart.Data)
	// max 2000 pads to 3000
	assert.Equal(t, "3K", chart.YAxisDomain[100])
}

func TestIncomeChart_AllTimeStartsAtEarliestQueue(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	queues := []models.Queue{
		chartQueue(1, models.QueueStatusCompleted, time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC), 100),
		chartQueue(2, models.QueueStatusCompleted, time.Date(2023, 11, 2, 9, 0, 0, 0, time.UTC), 100),
	}

	chart := IncomeChart(queues, display.QueueDateWithRange(display.DateRangeAllTime, now))
	assert.Equal(t, []string{"2023", "2024"}, chart.XAxisDomain)
	assert.Equal(t, "2023", chart.Data[0].Key)
}

func TestIncomeChart_Empty(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	chart := IncomeChart(nil, display.QueueDateWithRange(display.DateRangeToday, now))
	assert.Equal(t, []string{"15"}, chart.XAxisDomain)
	assert.Empty(t, chart.Data)
	assert.Len(t, chart.YAxisDomain, 101)
}

func TestTotalQueuesChart(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	var queues []models.Queue
	for i := range 7 {
		queues = append(queues, chartQueue(int64(i+1), models.QueueStatusInQueue, time.Date(2024, 5, 3, 9, i, 0, 0, time.UTC), 100))
	}
	queues = append(queues, chartQueue(8, models.QueueStatusInQueue, time.Date(2024, 5, 4, 9, 0, 0, 0, time.UTC), 100))

	chart := TotalQueuesChart(queues, display.QueueDateWithRange(display.DateRangeThisMonth, now))
	assert.Equal(t, []ChartSingle[string, int]{{Key: "3", Value: 7}, {Key: "4", Value: 1}}, chart.Data)
	assert.Equal(t, []float64{0, 8}, chart.YAxisDomain)
}

func TestChartToMap(t *testing.T) {
	assert.Equal(t, map[string]any{"key": "3", "value": 7},
		ChartSingle[string, int]{Key: "3", Value: 7}.ToMap())
	assert.Equal(t, map[string]any{"key": "3", "value": 33.0, "group": IncomeTypeReceived},
		ChartMultiple[string, float64, IncomeType]{Key: "3", Value: 33, Group: IncomeTypeReceived}.ToMap())
}
