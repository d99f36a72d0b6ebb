package models

import (
	"time"
)

type Product struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;index" json:"name"`
	Price     int64     `gorm:"not null;default:0" json:"price"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type ProductFts struct {
	RowId int64  `gorm:"column:rowid;primaryKey;autoIncrement:false"`
	Name  string `gorm:"type:varchar(255);not null"`
}

func (ProductFts) TableName() string {
	return "product_fts"
}

type NewProduct struct {
	Name  string `json:"name" validate:"required,max=100"`
	Price int64  `json:"price" validate:"gte=0"`
}

func (p Product) ModelId() *int64 {
	if p.ID == 0 {
		return nil
	}
	id := p.ID
	return &id
}

func (p Product) GetId() int64 {
	return p.ID
}

func (input NewProduct) ToProduct(id int64) Product {
	return Product{
		ID:    id,
		Name:  input.Name,
		Price: input.Price,
	}
}
