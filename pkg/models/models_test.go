package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{"PENDING", "DISCOUNTED", "PROCESSED", "SHIPPED", "DELIVERED", "CANCELLED"} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []OrderStatus{"", "pending", "LOST"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestCartComputeTotal(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{Quantity: 2, Product: &Product{Price: decimal.RequireFromString("4.50")}},
		{Quantity: 1, Product: &Product{Price: decimal.RequireFromString("0.25")}},
		{Quantity: 3},
	}}
	cart.ComputeTotal()

	if want := decimal.RequireFromString("9.25"); !cart.Total.Equal(want) {
		t.Errorf("total = %s, want %s", cart.Total, want)
	}
}
