package models

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrBalanceOverflow     = errors.New("balance would overflow")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Balance only moves for queues completed with ACCOUNT_BALANCE.
func affectsBalance(q Queue) bool {
	return q.Status == QueueStatusCompleted && q.PaymentMethod == PaymentMethodAccountBalance
}

// Every uncompleted queue is owed in full, whatever its payment method.
func affectsDebt(q Queue) bool {
	return q.Status != QueueStatusCompleted
}

func (c Customer) BalanceOnMadePayment(q Queue) int64 {
	if !affectsBalance(q) {
		return c.Balance
	}
	return decimal.NewFromInt(c.Balance).Sub(q.GrandTotalPrice()).IntPart()
}

func (c Customer) BalanceOnRevertedPayment(q Queue) int64 {
	if !affectsBalance(q) {
		return c.Balance
	}
	return decimal.NewFromInt(c.Balance).Add(q.GrandTotalPrice()).IntPart()
}

// BalanceOnUpdatedPayment reverts old when it belonged to c, then applies updated.
func (c Customer) BalanceOnUpdatedPayment(old Queue, updated Queue) int64 {
	if old.HasCustomer(c.ID) {
		c.Balance = c.BalanceOnRevertedPayment(old)
	}
	return c.BalanceOnMadePayment(updated)
}

func (c Customer) DebtOnMadePayment(q Queue) decimal.Decimal {
	if !affectsDebt(q) {
		return c.Debt
	}
	return c.Debt.Sub(q.GrandTotalPrice())
}

func (c Customer) DebtOnRevertedPayment(q Queue) decimal.Decimal {
	if !affectsDebt(q) {
		return c.Debt
	}
	return c.Debt.Add(q.GrandTotalPrice())
}

func (c Customer) DebtOnUpdatedPayment(old Queue, updated Queue) decimal.Decimal {
	if old.HasCustomer(c.ID) {
		c.Debt = c.DebtOnRevertedPayment(old)
	}
	return c.DebtOnMadePayment(updated)
}

// IsBalanceSufficient is true when balance covers the queue's grand total exactly or more.
func (c Customer) IsBalanceSufficient(q Queue) bool {
	return decimal.NewFromInt(c.Balance).Sub(q.GrandTotalPrice()).GreaterThanOrEqual(decimal.Zero)
}

// IsBalanceSufficientOnUpdate counts the balance old already took back in
// before checking updated. old may be nil for a queue being created.
func (c Customer) IsBalanceSufficientOnUpdate(old *Queue, updated Queue) bool {
	if old != nil && old.HasCustomer(c.ID) {
		c.Balance = c.BalanceOnRevertedPayment(*old)
	}
	return c.IsBalanceSufficient(updated)
}

// CheckBalanceFor rejects saving updated when it is paid from a balance
// that cannot cover it. Queues that do not touch the balance always pass.
func (c Customer) CheckBalanceFor(old *Queue, updated Queue) error {
	if affectsBalance(updated) && !c.IsBalanceSufficientOnUpdate(old, updated) {
		return ErrInsufficientBalance
	}
	return nil
}

func (c Customer) AddBalance(amount int64) (int64, error) {
	if amount <= 0 {
		return c.Balance, ErrInvalidAmount
	}
	if c.Balance > math.MaxInt64-amount {
		return c.Balance, ErrBalanceOverflow
	}
	return c.Balance + amount, nil
}

func (c Customer) WithdrawBalance(amount int64) (int64, error) {
	if amount <= 0 {
		return c.Balance, ErrInvalidAmount
	}
	if amount > c.Balance {
		return c.Balance, ErrInsufficientBalance
	}
	return c.Balance - amount, nil
}

// LedgerPreview is what a queue would do to its customer if saved.
type LedgerPreview struct {
	Balance             int64           `json:"balance"`
	Debt                decimal.Decimal `json:"debt"`
	IsBalanceSufficient bool            `json:"is_balance_sufficient"`
	GrandTotalPrice     decimal.Decimal `json:"grand_total_price"`
	TotalDiscount       int64           `json:"total_discount"`
}

func (c Customer) Preview(old *Queue, updated Queue) LedgerPreview {
	p := LedgerPreview{
		IsBalanceSufficient: c.IsBalanceSufficientOnUpdate(old, updated),
		GrandTotalPrice:     updated.GrandTotalPrice(),
		TotalDiscount:       updated.TotalDiscount(),
	}
	if old != nil {
		p.Balance = c.BalanceOnUpdatedPayment(*old, updated)
		p.Debt = c.DebtOnUpdatedPayment(*old, updated)
	} else {
		p.Balance = c.BalanceOnMadePayment(updated)
		p.Debt = c.DebtOnMadePayment(updated)
	}
	return p
}
