package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID      int64  `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:100;not null;index" json:"name"`
	Balance int64  `gorm:"not null;default:0" json:"balance"`
	// Debt is derived from uncompleted queues, see CustomerRepository.TotalDebtById.
	Debt      decimal.Decimal `gorm:"-" json:"debt"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// CustomerFts is the full-text shadow row of a customer, keyed by the customer id.
type CustomerFts struct {
	RowId int64  `gorm:"column:rowid;primaryKey;autoIncrement:false"`
	Name  string `gorm:"type:varchar(255);not null"`
}

func (CustomerFts) TableName() string {
	return "customer_fts"
}

type NewCustomer struct {
	Name    string `json:"name" validate:"required,max=100"`
	Balance int64  `json:"balance" validate:"gte=0"`
}

func (c Customer) ModelId() *int64 {
	if c.ID == 0 {
		return nil
	}
	id := c.ID
	return &id
}

func (c Customer) GetId() int64 {
	return c.ID
}

// ToCustomer maps validated input onto a customer with the given id (0 for new).
func (input NewCustomer) ToCustomer(id int64) Customer {
	return Customer{
		ID:      id,
		Name:    input.Name,
		Balance: input.Balance,
		Debt:    decimal.Zero,
	}
}
