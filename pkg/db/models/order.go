package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/brewbot-backend/pkg/enums"
)

// Order is the durable record produced by a successful checkout. Once created
// it is never mutated by this service; status transitions belong to the
// fulfillment side.
type Order struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     string            `gorm:"column:user_id;not null;index"`
	Status     enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	GrandTotal decimal.Decimal   `gorm:"column:grand_total;type:numeric;not null"`
	LineItems  []OrderLineItem   `gorm:"foreignKey:OrderID"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
}

// OrderLineItem freezes one cart item at checkout time.
type OrderLineItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	Drink       string          `gorm:"column:drink;not null"`
	Base        string          `gorm:"column:base;not null"`
	Size        string          `gorm:"column:size;not null"`
	Milk        string          `gorm:"column:milk;not null"`
	Temperature string          `gorm:"column:temperature;not null"`
	AddOns      []string        `gorm:"column:add_ons;type:jsonb;serializer:json"`
	Quantity    int             `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric;not null"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:numeric;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
