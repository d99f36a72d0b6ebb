package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/ledger_backend/display"
	"github.com/mmdatafocus/ledger_backend/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("ledger_backend/dashboard")

type QueueSource interface {
	SelectAllInRange(ctx context.Context, start time.Time, end time.Time) ([]models.Queue, error)
}

type CustomerSource interface {
	SelectAllIdsWithBalance(ctx context.Context) ([]models.CustomerBalanceInfo, error)
	SelectAllIdsWithDebt(ctx context.Context) ([]models.CustomerDebtInfo, error)
}

type Dashboard struct {
	Date             display.QueueDate
	Summary          SummaryInfo
	Revenue          RevenueInfo
	Balance          BalanceInfo
	IncomeChart      IncomeChartModel
	TotalQueuesChart TotalQueuesChartModel
}

func (d Dashboard) ToMap() map[string]any {
	return map[string]any{
		"date":               d.Date,
		"summary":            d.Summary,
		"revenue":            d.Revenue,
		"balance":            d.Balance,
		"income_chart":       d.IncomeChart.ToMap(),
		"total_queues_chart": d.TotalQueuesChart.ToMap(),
	}
}

// Load reads the queues inside date and every customer's balance and debt.
// Balances are not limited by date.
func Load(ctx context.Context, queues QueueSource, customers CustomerSource, date display.QueueDate) (result *Dashboard, err error) {
	ctx, span := tracer.Start(ctx, "dashboard.Load")
	span.SetAttributes(attribute.String("dashboard.range", date.Range.String()))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	inRange, err := queues.SelectAllInRange(ctx, date.Start, date.End)
	if err != nil {
		return nil, fmt.Errorf("select queues: %w", err)
	}
	balances, err := customers.SelectAllIdsWithBalance(ctx)
	if err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}
	debts, err := customers.SelectAllIdsWithDebt(ctx)
	if err != nil {
		return nil, fmt.Errorf("select debts: %w", err)
	}

	return &Dashboard{
		Date:             date,
		Summary:          Summary(inRange),
		Revenue:          Revenue(inRange),
		Balance:          BalanceOf(balances, debts),
		IncomeChart:      IncomeChart(inRange, date),
		TotalQueuesChart: TotalQueuesChart(inRange, date),
	}, nil
}
