package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Coupon struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Code            string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"discount_percent"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (Coupon) TableName() string {
	return "coupons"
}
