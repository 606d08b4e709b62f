package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle code of an order. Any status may replace any other.
type OrderStatus int

const (
	OrderStatusNew        OrderStatus = 1
	OrderStatusInProcess  OrderStatus = 2
	OrderStatusDispatched OrderStatus = 3
	OrderStatusDelivered  OrderStatus = 4
)

func (s OrderStatus) Valid() bool {
	return s >= OrderStatusNew && s <= OrderStatusDelivered
}

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusNew:
		return "NEW"
	case OrderStatusInProcess:
		return "IN_PROCESS"
	case OrderStatusDispatched:
		return "DISPATCHED"
	case OrderStatusDelivered:
		return "DELIVERED"
	}
	return "UNKNOWN"
}

type Order struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Email     string          `gorm:"size:255;index;not null" json:"email"`
	Status    OrderStatus     `gorm:"index;not null" json:"status"`
	Total     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total"` // sum of line subtotals
	CreatedAt time.Time       `json:"created_at"`
	Lines     []OrderLine     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"lines"`
}

type OrderLine struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// FK → orders.id
	OrderID   uint            `gorm:"index;not null" json:"order_id"`
	ProductID uint            `gorm:"index;not null" json:"product_id"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"` // unit price captured at order time
	Quantity  int64           `gorm:"not null" json:"quantity"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"subtotal"`
}

// NewOrderLine fixes the subtotal at creation; later mutations do not recompute it.
func NewOrderLine(productID uint, price decimal.Decimal, quantity int64) OrderLine {
	return OrderLine{
		ProductID: productID,
		Price:     price,
		Quantity:  quantity,
		Subtotal:  price.Mul(decimal.NewFromInt(quantity)),
	}
}

// AddLine appends the line and points it back at the order.
func (o *Order) AddLine(line OrderLine) {
	line.OrderID = o.ID
	o.Lines = append(o.Lines, line)
}

// RemoveLine drops the line with the given id and clears its back-pointer.
func (o *Order) RemoveLine(lineID uint) (OrderLine, bool) {
	for i, line := range o.Lines {
		if line.ID == lineID {
			o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
			line.OrderID = 0
			return line, true
		}
	}
	return OrderLine{}, false
}

func (o *Order) ComputeTotal() decimal.Decimal {
	return SumSubtotals(o.Lines)
}

func SumSubtotals(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal)
	}
	return total
}
