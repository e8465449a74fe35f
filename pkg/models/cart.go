package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	Items     []CartItem      `gorm:"foreignKey:CartID" json:"items"`
	Total     decimal.Decimal `gorm:"-" json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ComputeTotal sets Total from the loaded items and their current prices.
func (c *Cart) ComputeTotal() {
	total := decimal.Zero
	for _, item := range c.Items {
		if item.Product != nil {
			total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	c.Total = total
}

func (Cart) TableName() string {
	return "carts"
}

// CartItem is unique per (cart, product).
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"uniqueIndex:idx_cart_product;not null" json:"cart_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_cart_product;not null" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
