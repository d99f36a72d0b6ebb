package dashboard

import (
	"github.com/mmdatafocus/ledger_backend/models"
	"github.com/shopspring/decimal"
)

type SummaryInfo struct {
	TotalQueues       int             `json:"total_queues"`
	UncompletedQueues int             `json:"uncompleted_queues"`
	ActiveCustomers   int             `json:"active_customers"`
	ProductsSold      decimal.Decimal `json:"products_sold"`
}

// Summary counts distinct customers only, queues without one are not active customers.
func Summary(queues []models.Queue) SummaryInfo {
	info := SummaryInfo{TotalQueues: len(queues), ProductsSold: decimal.Zero}
	customers := make(map[int64]struct{})
	for _, q := range queues {
		if !q.IsCompleted() {
			info.UncompletedQueues++
		}
		if q.CustomerId != nil {
			customers[*q.CustomerId] = struct{}{}
		}
		for _, o := range q.ProductOrders {
			info.ProductsSold = info.ProductsSold.Add(o.Quantity)
		}
	}
	info.ActiveCustomers = len(customers)
	return info
}

type RevenueInfo struct {
	ReceivedIncome  decimal.Decimal `json:"received_income"`
	ProjectedIncome decimal.Decimal `json:"projected_income"`
}

func Revenue(queues []models.Queue) RevenueInfo {
	info := RevenueInfo{ReceivedIncome: decimal.Zero, ProjectedIncome: decimal.Zero}
	for _, q := range queues {
		total := q.GrandTotalPrice()
		if q.IsCompleted() {
			info.ReceivedIncome = info.ReceivedIncome.Add(total)
		}
		info.ProjectedIncome = info.ProjectedIncome.Add(total)
	}
	return info
}

type BalanceInfo struct {
	TotalBalance         decimal.Decimal `json:"total_balance"`
	CustomersWithBalance int             `json:"customers_with_balance"`
	TotalDebt            decimal.Decimal `json:"total_debt"`
	CustomersWithDebt    int             `json:"customers_with_debt"`
}

// Balance totals customers with a positive balance and customers with a negative debt.
func Balance(customers []models.Customer) BalanceInfo {
	var balances []models.CustomerBalanceInfo
	var debts []models.CustomerDebtInfo
	for _, c := range customers {
		if c.Balance > 0 {
			balances = append(balances, models.CustomerBalanceInfo{ID: c.ID, Balance: c.Balance})
		}
		if c.Debt.IsNegative() {
			debts = append(debts, models.CustomerDebtInfo{ID: c.ID, Debt: c.Debt})
		}
	}
	return BalanceOf(balances, debts)
}

// BalanceOf totals rows already narrowed by the customer repository.
func BalanceOf(balances []models.CustomerBalanceInfo, debts []models.CustomerDebtInfo) BalanceInfo {
	info := BalanceInfo{
		TotalBalance:         decimal.Zero,
		CustomersWithBalance: len(balances),
		TotalDebt:            decimal.Zero,
		CustomersWithDebt:    len(debts),
	}
	for _, b := range balances {
		info.TotalBalance = info.TotalBalance.Add(decimal.NewFromInt(b.Balance))
	}
	for _, d := range debts {
		info.TotalDebt = info.TotalDebt.Add(d.Debt)
	}
	return info
}
