package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Queue struct {
	ID            int64          `gorm:"primaryKey" json:"id"`
	CustomerId    *int64         `gorm:"index" json:"customer_id"`
	Customer      *Customer      `gorm:"foreignKey:CustomerId;constraint:OnDelete:SET NULL" json:"customer"`
	Status        QueueStatus    `gorm:"type:enum('IN_QUEUE','IN_PROCESS','UNPAID','COMPLETED');not null;default:'IN_QUEUE';index" json:"status"`
	PaymentMethod PaymentMethod  `gorm:"type:enum('CASH','ACCOUNT_BALANCE');not null;default:'CASH'" json:"payment_method"`
	Date          time.Time      `gorm:"not null;index" json:"date"`
	ProductOrders []ProductOrder `gorm:"foreignKey:QueueId;constraint:OnDelete:CASCADE" json:"product_orders"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewQueue struct {
	CustomerId    *int64             `json:"customer_id"`
	Status        QueueStatus        `json:"status" validate:"required"`
	PaymentMethod PaymentMethod      `json:"payment_method" validate:"required"`
	Date          *time.Time         `json:"date"`
	ProductOrders []*NewProductOrder `json:"product_orders" validate:"dive"`
}

func (q Queue) ModelId() *int64 {
	if q.ID == 0 {
		return nil
	}
	id := q.ID
	return &id
}

func (q Queue) GetId() int64 {
	return q.ID
}

func (q Queue) GrandTotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, o := range q.ProductOrders {
		total = total.Add(o.TotalPrice)
	}
	return total
}

func (q Queue) TotalDiscount() int64 {
	var total int64
	for _, o := range q.ProductOrders {
		total += o.Discount
	}
	return total
}

func (q Queue) IsCompleted() bool {
	return q.Status == QueueStatusCompleted
}

// HasCustomer is true for customer id; nil ids never match.
func (q Queue) HasCustomer(id int64) bool {
	return q.CustomerId != nil && *q.CustomerId == id
}

// CustomerName is empty for queues without a customer.
func (q Queue) CustomerName() string {
	if q.Customer == nil {
		return ""
	}
	return q.Customer.Name
}

// Clone copies the order slice so the clone can be edited independently.
func (q Queue) Clone() Queue {
	c := q
	c.ProductOrders = append([]ProductOrder(nil), q.ProductOrders...)
	if q.Customer != nil {
		customer := *q.Customer
		c.Customer = &customer
	}
	if q.CustomerId != nil {
		id := *q.CustomerId
		c.CustomerId = &id
	}
	return c
}

// ToQueue maps input onto a queue with the given id; date defaults to now.
func (input NewQueue) ToQueue(id int64, now time.Time) Queue {
	q := Queue{
		ID:            id,
		CustomerId:    input.CustomerId,
		Status:        input.Status,
		PaymentMethod: input.PaymentMethod,
		Date:          now,
	}
	if input.Date != nil {
		q.Date = *input.Date
	}
	for _, o := range input.ProductOrders {
		if o == nil {
			continue
		}
		q.ProductOrders = append(q.ProductOrders, o.ToProductOrder(id))
	}
	return q
}
