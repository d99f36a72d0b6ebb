package models_test

import (
	"math"
	"testing"
	"time"

	"github.com/mmdatafocus/ledger_backend/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func fixtureCustomer() models.Customer {
	return models.Customer{ID: 1, Name: "Amy", Balance: 10_000, Debt: decimal.Zero}
}

func fixtureOrder() models.ProductOrder {
	return models.NewProductOrder{
		ID:           1,
		ProductId:    int64Ptr(1),
		ProductName:  "Apple",
		ProductPrice: 1000,
		Quantity:     decimal.NewFromInt(1),
	}.ToProductOrder(1)
}

func fixtureQueue(status models.QueueStatus, method models.PaymentMethod) models.Queue {
	customer := fixtureCustomer()
	return models.Queue{
		ID:            1,
		CustomerId:    int64Ptr(1),
		Customer:      &customer,
		Status:        status,
		PaymentMethod: method,
		Date:          time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		ProductOrders: []models.ProductOrder{fixtureOrder()},
	}
}

func withoutCustomer(q models.Queue) models.Queue {
	q = q.Clone()
	q.CustomerId = nil
	q.Customer = nil
	return q
}

func withCustomer(q models.Queue, c models.Customer) models.Queue {
	q = q.Clone()
	q.CustomerId = int64Ptr(c.ID)
	q.Customer = &c
	return q
}

func withOrders(q models.Queue, orders ...models.ProductOrder) models.Queue {
	q = q.Clone()
	q.ProductOrders = orders
	return q
}

func TestBalanceOnPayment(t *testing.T) {
	customer := fixtureCustomer()
	second := fixtureCustomer()
	second.ID, second.Name = 2, "Ben"

	completedAB := fixtureQueue(models.QueueStatusCompleted, models.PaymentMethodAccountBalance)
	completedCash := fixtureQueue(models.QueueStatusCompleted, models.PaymentMethodCash)
	uncompletedAB := fixtureQueue(models.QueueStatusInQueue, models.PaymentMethodAccountBalance)
	uncompletedCash := fixtureQueue(models.QueueStatusInQueue, models.PaymentMethodCash)

	completedABNoCustomer := withoutCustomer(completedAB)
	completedABSecond := withCustomer(completedAB, second)
	completedABDouble := withOrders(completedAB, fixtureOrder(), fixtureOrder())
	completedABNoOrder := withOrders(completedABNoCustomer)

	tests := []struct {
		name string
		got  int64
		want int64
	}{
		{"deduct when completed with account balance", customer.BalanceOnMadePayment(completedAB), 9000},
		{"keep when completed with cash", customer.BalanceOnMadePayment(completedCash), 10_000},
		{"keep when uncompleted cash", customer.BalanceOnMadePayment(uncompletedCash), 10_000},
		{"keep when uncompleted account balance", customer.BalanceOnMadePayment(uncompletedAB), 10_000},

		{"revert when completed with account balance", customer.BalanceOnRevertedPayment(completedAB), 11_000},
		{"revert keeps when completed with cash", customer.BalanceOnRevertedPayment(completedCash), 10_000},
		{"revert keeps when uncompleted", customer.BalanceOnRevertedPayment(uncompletedAB), 10_000},

		{"update unchanged", customer.BalanceOnUpdatedPayment(completedAB, completedAB), 10_000},
		{"update to cash reverts", customer.BalanceOnUpdatedPayment(completedAB, completedCash), 11_000},
		{"update to uncompleted reverts", customer.BalanceOnUpdatedPayment(completedAB, uncompletedAB), 11_000},
		{"update cash to account balance deducts", customer.BalanceOnUpdatedPayment(completedCash, completedAB), 9000},
		{"update cash to uncompleted keeps", customer.BalanceOnUpdatedPayment(completedCash, uncompletedCash), 10_000},
		{"update uncompleted to completed deducts", customer.BalanceOnUpdatedPayment(uncompletedAB, completedAB), 9000},
		{"update uncompleted to completed cash keeps", customer.BalanceOnUpdatedPayment(uncompletedCash, completedCash), 10_000},
		{"update from no customer deducts", customer.BalanceOnUpdatedPayment(completedABNoCustomer, completedAB), 9000},
		{"update from no customer to cash keeps", customer.BalanceOnUpdatedPayment(completedABNoCustomer, completedCash), 10_000},

		{"other customer deducted in full", second.BalanceOnUpdatedPayment(completedAB, completedABSecond), 9000},
		{"other customer from cash deducted", second.BalanceOnUpdatedPayment(completedCash, completedABSecond), 9000},
		{"other customer from uncompleted deducted", second.BalanceOnUpdatedPayment(uncompletedAB, completedABSecond), 9000},

		{"more total deducts the difference", customer.BalanceOnUpdatedPayment(completedAB, completedABDouble), 9000},
		{"more total from cash deducts all", customer.BalanceOnUpdatedPayment(completedCash, completedABDouble), 8000},
		{"more total from uncompleted deducts all", customer.BalanceOnUpdatedPayment(uncompletedCash, completedABDouble), 8000},
		{"lesser total reverts", customer.BalanceOnUpdatedPayment(completedAB, completedABNoOrder), 11_000},
		{"lesser total without old customer keeps", customer.BalanceOnUpdatedPayment(completedABNoCustomer, completedABNoOrder), 10_000},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.got, tc.name)
	}
}

func TestBalanceOnMadePayment_DoesNotClamp(t *testing.T) {
	low := fixtureCustomer()
	low.Balance = 500
	q := fixtureQueue(models.QueueStatusCompleted, models.PaymentMethodAccountBalance)

	assert.False(t, low.IsBalanceSufficient(q))
	assert.Equal(t, int64(-500), low.BalanceOnMadePayment(q))
}

func TestBalanceOnMadePayment_FractionalQuantityTruncates(t *testing.T) {
	order := models.NewProductOrder{ProductName: "Rice", ProductPrice: 1001, Quantity: decimal.RequireFromString("1.5")}.ToProductOrder(0)
	q := withOrders(fixtureQueue(models.QueueStatusCompleted, models.PaymentMethodAccountBalance), order)

	require.True(t, decimal.RequireFromString("1501.5").Equal(q.GrandTotalPrice()))
	assert.Equal(t, int64(8498), fixtureCustomer().BalanceOnMadePayment(q))
}

func TestDebtOnPayment(t *testing.T) {
	customer := fixtureCustomer()
	second := fixtureCustomer()
	second.ID, second.Name = 2, "Ben"

	completed := fixtureQueue(models.QueueStatusCompleted, models.PaymentMethodCash)
	uncompleted := fixtureQueue(models.QueueStatusInQueue, models.PaymentMethodCash)
	uncompletedNoCustomer := withoutCustomer(uncompleted)
	completedSecond := withCustomer(completed, second)
	uncompletedSecond := withCustomer(uncompleted, second)
	completedDouble := withOrders(completed, fixtureOrder(), fixtureOrder())
	uncompletedDouble := withOrders(uncompleted, fixtureOrder(), fixtureOrder())

	tests := []struct {
		name string
		got  decimal.Decimal
		want int64
	}{
		{"add debt when uncompleted", customer.DebtOnMadePayment(uncompleted), -1000},
		{"keep debt when completed", customer.DebtOnMadePayment(completed), 0},
		{"revert debt when uncompleted", customer.DebtOnRevertedPayment(uncompleted), 1000},
		{"revert keeps when completed", customer.DebtOnRevertedPayment(completed), 0},

		{"update unchanged completed", customer.DebtOnUpdatedPayment(completed, completed), 0},
		{"update to uncompleted adds", customer.DebtOnUpdatedPayment(completed, uncompleted), -1000},
		{"update to completed reverts", customer.DebtOnUpdatedPayment(uncompleted, completed), 1000},
		{"update unchanged uncompleted", customer.DebtOnUpdatedPayment(uncompleted, uncompleted), 0},
		{"update from no customer to completed", customer.DebtOnUpdatedPayment(uncompletedNoCustomer, completed), 0},
		{"update from no customer to uncompleted", customer.DebtOnUpdatedPayment(uncompletedNoCustomer, uncompleted), -1000},

		{"other customer stays completed", second.DebtOnUpdatedPayment(completed, completedSecond), 0},
		{"other customer becomes uncompleted", second.DebtOnUpdatedPayment(completed, uncompletedSecond), -1000},
		{"other customer takes completed queue", second.DebtOnUpdatedPayment(uncompleted, completedSecond), 0},
		{"other customer takes uncompleted queue", second.DebtOnUpdatedPayment(uncompleted, uncompletedSecond), -1000},
		{"other customer, completed double", second.DebtOnUpdatedPayment(completed, completedDouble), 0},
		{"other customer, uncompleted double", second.DebtOnUpdatedPayment(completed, uncompletedDouble), -2000},
		{"other customer, uncompleted to uncompleted double", second.DebtOnUpdatedPayment(uncompleted, uncompletedDouble), -2000},
		{"uninvolved customer is not credited", second.DebtOnUpdatedPayment(uncompleted, completedDouble), 0},
	}
	for _, tc := range tests {
		assert.True(t, decimal.NewFromInt(tc.want).Equal(tc.got), "%s: got %s", tc.name, tc.got)
	}
}

func TestDebtOnMadePayment_EveryUncompletedStatusIsOwed(t *testing.T) {
	customer := fixtureCustomer()
	customer.Debt = decimal.NewFromInt(-250)
	for _, status := range []models.QueueStatus{models.QueueStatusInQueue, models.QueueStatusInProcess, models.QueueStatusUnpaid} {
		for _, method := range models.AllPaymentMethod {
			got := customer.DebtOnMadePayment(fixtureQueue(status, method))
			assert.True(t, decimal.NewFromInt(-1250).Equal(got), "%s/%s: got %s", status, method, got)
		}
	}
}

func TestIsBalanceSufficient(t *testing.T) {
	customer := models.Customer{ID: 1, Balance: 100_000}
	order := models.NewProductOrder{ProductName: "Bulk", ProductPrice: 100_000, Quantity: decimal.NewFromInt(1)}.ToProductOrder(0)
	q := withOrders(fixtureQueue(models.QueueStatusCompleted, models.PaymentMethodAccountBalance), order)

	assert.True(t, customer.IsBalanceSufficient(q), "equal balance and total is sufficient")
	assert.Equal(t, int64(0), customer.BalanceOnMadePayment(q))

	customer.Balance = 99_999
	assert.False(t, customer.IsBalanceSufficient(q))
}

func TestIsBalanceSufficientOnUpdate(t *testing.T) {
	customer := models.Customer{ID: 1, Balance: 500}
	old := fixtureQueue(models.QueueStatusCompleted, models.PaymentMethodAccountBalance)
	updated := withOrders(old, fixtureOrder())

	assert.False(t, customer.IsBalanceSufficientOnUpdate(nil, updated))
	// the 1000 old already took comes back before checking
	assert.True(t, customer.IsBalanceSufficientOnUpdate(&old, updated))
	assert.False(t, customer.IsBalanceSufficientOnUpdate(&old, withOrders(old, fixtureOrder(), fixtureOrder())))

	other := models.Customer{ID: 2, Balance: 500}
	assert.False(t, other.IsBalanceSufficientOnUpdate(&old, updated))
}

func TestCheckBalanceFor(t *testing.T) {
	customer := models.Customer{ID: 1, Balance: 500}
	paid := fixtureQueue(models.QueueStatusCompleted, models.PaymentMethodAccountBalance)

	assert.ErrorIs(t, customer.CheckBalanceFor(nil, paid), models.ErrInsufficientBalance, "balance 500 cannot pay 1000")
	assert.NoError(t, customer.CheckBalanceFor(&paid, paid), "the old payment is given back first")
	assert.NoError(t, customer.CheckBalanceFor(nil, fixtureQueue(models.QueueStatusCompleted, models.PaymentMethodCash)))
	assert.NoError(t, customer.CheckBalanceFor(nil, fixtureQueue(models.QueueStatusUnpaid, models.PaymentMethodAccountBalance)))

	customer.Balance = 1000
	assert.NoError(t, customer.CheckBalanceFor(nil, paid))
}

func TestAddAndWithdrawBalance(t *testing.T) {
	customer := fixtureCustomer()

	got, err := customer.AddBalance(5000)
	require.NoError(t, err)
	assert.Equal(t, int64(15_000), got)

	_, err = customer.AddBalance(0)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	customer.Balance = math.MaxInt64 - 10
	_, err = customer.AddBalance(11)
	assert.ErrorIs(t, err, models.ErrBalanceOverflow)
	got, err = customer.AddBalance(10)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got)

	customer.Balance = 1000
	got, err = customer.WithdrawBalance(1000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
	_, err = customer.WithdrawBalance(1001)
	assert.ErrorIs(t, err, models.ErrInsufficientBalance)
	_, err = customer.WithdrawBalance(-1)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)
}

func TestProductOrderTotals(t *testing.T) {
	order := models.NewProductOrder{ProductName: "Tea", ProductPrice: 100, Quantity: decimal.NewFromInt(2), Discount: 500}.ToProductOrder(0)

	assert.True(t, decimal.NewFromInt(-300).Equal(order.TotalPrice), "stored total is not clamped")
	assert.True(t, order.DisplayedTotalPrice().IsZero())

	q := withOrders(fixtureQueue(models.QueueStatusInQueue, models.PaymentMethodCash), order, fixtureOrder())
	assert.True(t, decimal.NewFromInt(700).Equal(q.GrandTotalPrice()))
	assert.Equal(t, int64(500), q.TotalDiscount())
}

func TestPreview(t *testing.T) {
	customer := fixtureCustomer()
	q := fixtureQueue(models.QueueStatusInQueue, models.PaymentMethodAccountBalance)

	p := customer.Preview(nil, q)
	assert.Equal(t, int64(10_000), p.Balance)
	assert.True(t, decimal.NewFromInt(-1000).Equal(p.Debt))
	assert.True(t, p.IsBalanceSufficient)

	completed := q.Clone()
	completed.Status = models.QueueStatusCompleted
	p = customer.Preview(&q, completed)
	assert.Equal(t, int64(9000), p.Balance)
	assert.True(t, decimal.NewFromInt(1000).Equal(p.Debt))
}
