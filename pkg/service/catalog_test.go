package service

import (
	"context"
	"testing"

	"github.com/example/shopfront/pkg/apperror"
	"github.com/shopspring/decimal"
)

func TestCreateProduct(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	p := f.product(t, "Lamp", "19.999", 3)
	if !p.Price.Equal(decimalOf("20.00")) {
		t.Errorf("price = %s, want rounded 20.00", p.Price)
	}

	_, err := f.svc.Catalog.Create(ctx, CreateProductInput{Name: "Lamp", Price: decimal.NewFromInt(1)})
	assertKind(t, err, apperror.KindConflict)

	_, err = f.svc.Catalog.Create(ctx, CreateProductInput{Name: "Bad", Price: decimal.NewFromInt(-1)})
	assertKind(t, err, apperror.KindValidation)

	_, err = f.svc.Catalog.Create(ctx, CreateProductInput{Name: "Bad", Price: decimal.NewFromInt(1), Stock: -1})
	assertKind(t, err, apperror.KindValidation)

	_, err = f.svc.Catalog.Create(ctx, CreateProductInput{Name: "  ", Price: decimal.NewFromInt(1)})
	assertKind(t, err, apperror.KindValidation)
}

func TestUpdateProductPartial(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	lamp := f.product(t, "Lamp", "10", 3)
	f.product(t, "Desk", "50", 1)

	desc := "warm light"
	got, err := f.svc.Catalog.Update(ctx, lamp.ID, UpdateProductInput{Description: &desc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Description != desc || got.Name != "Lamp" || got.Stock != 3 {
		t.Errorf("product = %+v", got)
	}

	taken := "Desk"
	_, err = f.svc.Catalog.Update(ctx, lamp.ID, UpdateProductInput{Name: &taken})
	assertKind(t, err, apperror.KindConflict)

	negative := -2
	_, err = f.svc.Catalog.Update(ctx, lamp.ID, UpdateProductInput{Stock: &negative})
	assertKind(t, err, apperror.KindValidation)

	_, err = f.svc.Catalog.Update(ctx, 999, UpdateProductInput{Description: &desc})
	assertKind(t, err, apperror.KindNotFound)

	if n := len(f.cache.ids); n == 0 || f.cache.ids[n-1] != lamp.ID {
		t.Errorf("cache not invalidated: %v", f.cache.ids)
	}
}

func TestDeleteProductDropsCartLines(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	u := f.user(t, "shopper@example.com")
	p := f.product(t, "Lamp", "10", 3)
	c := f.cart(t, u.ID)
	if _, err := f.svc.Carts.AddItem(ctx, CartItemInput{CartID: c.ID, ProductID: p.ID, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := f.svc.Catalog.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	cart, _ := f.svc.Carts.Get(ctx, c.ID)
	if len(cart.Items) != 0 {
		t.Errorf("cart lines = %d, want 0", len(cart.Items))
	}
	_, err := f.svc.Catalog.Get(ctx, p.ID)
	assertKind(t, err, apperror.KindNotFound)
	assertKind(t, f.svc.Catalog.Delete(ctx, p.ID), apperror.KindNotFound)
}

func TestCoupons(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	if _, err := f.svc.Coupons.Create(ctx, "SAVE10", decimalOf("10")); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := f.svc.Coupons.Create(ctx, "SAVE10", decimalOf("20"))
	assertKind(t, err, apperror.KindConflict)

	for _, pct := range []string{"0", "-5", "100.01"} {
		_, err := f.svc.Coupons.Create(ctx, "BAD"+pct, decimalOf(pct))
		assertKind(t, err, apperror.KindValidation)
	}
	if _, err := f.svc.Coupons.Create(ctx, "FREE", decimalOf("100")); err != nil {
		t.Errorf("100%% coupon: %v", err)
	}

	coupons, total, err := f.svc.Coupons.List(ctx, pageOne)
	if err != nil || total != 2 || len(coupons) != 2 {
		t.Fatalf("List = %d/%d, %v", len(coupons), total, err)
	}
}
