package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusDiscounted OrderStatus = "DISCOUNTED"
	OrderStatusProcessed  OrderStatus = "PROCESSED"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusDiscounted, OrderStatusProcessed,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Reference  string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"reference"`
	UserID     uint            `gorm:"index;not null" json:"user_id"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Status     OrderStatus     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	CouponCode string          `gorm:"type:varchar(64)" json:"coupon_code,omitempty"`
	OrderDate  time.Time       `json:"order_date"`
	Items      []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is a snapshot of a cart line at checkout.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"index;not null" json:"order_id"`
	ProductID   uint            `gorm:"not null" json:"product_id"`
	ProductName string          `gorm:"type:varchar(191)" json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
