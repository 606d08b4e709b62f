package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description string          `gorm:"size:1024;not null" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Stock       int64           `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	Image       string          `gorm:"size:512;not null" json:"image"`
	Categories  []Category      `gorm:"many2many:product_categories;" json:"categories"`
	CreatedAt   time.Time       `json:"-"`
	UpdatedAt   time.Time       `json:"-"`
}

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"size:1024;not null" json:"description"`
	Products    []Product `gorm:"many2many:product_categories;" json:"-"`
}
