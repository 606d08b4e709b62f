package dto

import (
	"bytes"
	"encoding/json"
	"tienda-services/internal/model"
	"time"

	"github.com/shopspring/decimal"
)

// Ref points at an existing related record by id.
type Ref struct {
	ID uint `json:"id"`
}

func RefIDs(refs []Ref) []uint {
	ids := make([]uint, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	return ids
}

type ProductRequest struct {
	Name        string          `json:"name" validate:"notblank"`
	Description string          `json:"description" validate:"notblank"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock" validate:"gte=0"`
	Image       string          `json:"image" validate:"notblank"`
	Categories  []Ref           `json:"categories"`
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"notblank"`
	Description string `json:"description" validate:"notblank"`
}

// ProductCard is the storefront shape of a product inside a category group.
type ProductCard struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	DetailLink  string          `json:"detailLink"`
	Description string          `json:"description"`
}

// ProductGroups maps category names to their product cards and keeps the
// categories in the order they were first seen, which is also the order
// their keys are written in JSON.
type ProductGroups struct {
	names []string
	cards map[string][]ProductCard
}

func NewProductGroups() *ProductGroups {
	return &ProductGroups{cards: make(map[string][]ProductCard)}
}

func (g *ProductGroups) Add(card ProductCard) {
	if _, ok := g.cards[card.Category]; !ok {
		g.names = append(g.names, card.Category)
	}
	g.cards[card.Category] = append(g.cards[card.Category], card)
}

func (g *ProductGroups) Names() []string {
	return g.names
}

func (g *ProductGroups) Cards(category string) []ProductCard {
	return g.cards[category]
}

func (g *ProductGroups) Len() int {
	return len(g.names)
}

func (g *ProductGroups) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range g.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		cards, err := json.Marshal(g.cards[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(cards)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type FirstProductByCategory struct {
	CategoryID          uint   `json:"category_id" gorm:"column:category_id"`
	CategoryName        string `json:"category_name" gorm:"column:category_name"`
	CategoryDescription string `json:"category_description" gorm:"column:category_description"`
	ProductID           uint   `json:"product_id" gorm:"column:product_id"`
	ProductName         string `json:"product_name" gorm:"column:product_name"`
	ProductImage        string `json:"product_image" gorm:"column:product_image"`
}

type OrderLineItem struct {
	ProductID uint             `json:"product_id" validate:"required"`
	Price     *decimal.Decimal `json:"price"` // nil: captured from the catalog
	Quantity  int64            `json:"quantity" validate:"gt=0"`
}

type CreateOrderRequest struct {
	Email  string           `json:"email" validate:"required,email"`
	Status int              `json:"status" validate:"omitempty,min=1,max=4"`
	Total  *decimal.Decimal `json:"total"` // only honoured when totals are caller supplied
	Lines  []OrderLineItem  `json:"lines" validate:"dive"`
}

type CreateOrderLineRequest struct {
	OrderID   uint             `json:"order_id" validate:"required"`
	ProductID uint             `json:"product_id" validate:"required"`
	Price     *decimal.Decimal `json:"price"`
	Quantity  int64            `json:"quantity" validate:"gt=0"`
}

type UserRequest struct {
	FirstName string     `json:"first_name" validate:"notblank"`
	LastName  string     `json:"last_name" validate:"notblank"`
	Email     string     `json:"email" validate:"required,email"`
	Password  string     `json:"password" validate:"max=72"` // bcrypt input limit
	BirthDate *time.Time `json:"birth_date"`
	Address   string     `json:"address"`
	Roles     []Ref      `json:"roles"`
}

type RoleRequest struct {
	Name string `json:"name" validate:"notblank"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
