package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductOrder snapshots the product at order time, so later edits or
// deletion of the product leave historical orders intact.
type ProductOrder struct {
	ID           int64           `gorm:"primaryKey" json:"id"`
	QueueId      int64           `gorm:"index;not null" json:"queue_id"`
	ProductId    *int64          `gorm:"index" json:"product_id"`
	Product      *Product        `gorm:"foreignKey:ProductId;constraint:OnDelete:SET NULL" json:"-"`
	ProductName  string          `gorm:"size:100;not null" json:"product_name"`
	ProductPrice int64           `gorm:"not null;default:0" json:"product_price"`
	Quantity     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"quantity"`
	Discount     int64           `gorm:"not null;default:0" json:"discount"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(28,4);not null;default:0" json:"total_price"`
}

type NewProductOrder struct {
	ID           int64           `json:"id"`
	ProductId    *int64          `json:"product_id"`
	ProductName  string          `json:"product_name" validate:"required,max=100"`
	ProductPrice int64           `json:"product_price" validate:"gte=0"`
	Quantity     decimal.Decimal `json:"quantity" validate:"gt=0"`
	Discount     int64           `json:"discount" validate:"gte=0"`
}

func (o ProductOrder) ModelId() *int64 {
	if o.ID == 0 {
		return nil
	}
	id := o.ID
	return &id
}

func (o ProductOrder) GetId() int64 {
	return o.ID
}

// CalculateTotalPrice is quantity * price - discount, not clamped.
func CalculateTotalPrice(quantity decimal.Decimal, price int64, discount int64) decimal.Decimal {
	return quantity.Mul(decimal.NewFromInt(price)).Sub(decimal.NewFromInt(discount))
}

// DisplayedTotalPrice never goes below zero.
func (o ProductOrder) DisplayedTotalPrice() decimal.Decimal {
	if o.TotalPrice.IsNegative() {
		return decimal.Zero
	}
	return o.TotalPrice
}

func (o *ProductOrder) BeforeSave(tx *gorm.DB) error {
	o.TotalPrice = CalculateTotalPrice(o.Quantity, o.ProductPrice, o.Discount)
	return nil
}

func (input NewProductOrder) ToProductOrder(queueId int64) ProductOrder {
	return ProductOrder{
		ID:           input.ID,
		QueueId:      queueId,
		ProductId:    input.ProductId,
		ProductName:  input.ProductName,
		ProductPrice: input.ProductPrice,
		Quantity:     input.Quantity,
		Discount:     input.Discount,
		TotalPrice:   CalculateTotalPrice(input.Quantity, input.ProductPrice, input.Discount),
	}
}
