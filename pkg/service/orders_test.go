package service

import (
	"context"
	"strings"
	"testing"

	"github.com/example/shopfront/pkg/apperror"
	"github.com/example/shopfront/pkg/models"
)

// checkoutFixture builds a user with a cart holding 2 x 10.00 and 1 x 5.25.
func checkoutFixture(t *testing.T, opts Options) (*fixture, *models.User, *models.Cart) {
	t.Helper()
	f := newFixture(t, opts)
	ctx := context.Background()

	u := f.user(t, "buyer@example.com")
	a := f.product(t, "A", "10.00", 5)
	b := f.product(t, "B", "5.25", 5)
	c := f.cart(t, u.ID)
	if _, err := f.svc.Carts.AddItem(ctx, CartItemInput{CartID: c.ID, ProductID: a.ID, Quantity: 2}); err != nil {
		t.Fatalf("add A: %v", err)
	}
	if _, err := f.svc.Carts.AddItem(ctx, CartItemInput{CartID: c.ID, ProductID: b.ID, Quantity: 1}); err != nil {
		t.Fatalf("add B: %v", err)
	}
	return f, u, c
}

func TestCreateOrderSnapshotsCart(t *testing.T) {
	f, u, c := checkoutFixture(t, Options{})
	ctx := context.Background()

	order, err := f.svc.Orders.Create(ctx, u.ID, c.ID)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if !order.Total.Equal(decimalOf("25.25")) {
		t.Errorf("total = %s, want 25.25", order.Total)
	}
	if order.Status != models.OrderStatusPending {
		t.Errorf("status = %s", order.Status)
	}
	if len(order.Items) != 2 || order.Items[0].ProductName != "A" || !order.Items[0].LineTotal.Equal(decimalOf("20")) {
		t.Errorf("items = %+v", order.Items)
	}
	if !strings.Contains(order.Reference, "-") || order.OrderDate.IsZero() {
		t.Errorf("reference = %q, date = %v", order.Reference, order.OrderDate)
	}

	// The cart is kept by default.
	cart, _ := f.svc.Carts.Get(ctx, c.ID)
	if len(cart.Items) != 2 {
		t.Errorf("cart lines = %d, want 2", len(cart.Items))
	}

	// Later price changes do not touch the order.
	newPrice := decimalOf("99")
	if _, err := f.svc.Catalog.Update(ctx, order.Items[0].ProductID, UpdateProductInput{Price: &newPrice}); err != nil {
		t.Fatalf("update price: %v", err)
	}
	again, _ := f.svc.Orders.Get(ctx, order.ID)
	if !again.Total.Equal(decimalOf("25.25")) || !again.Items[0].UnitPrice.Equal(decimalOf("10")) {
		t.Errorf("order changed after price update: %+v", again)
	}
}

func TestCreateOrderClearsCartWhenConfigured(t *testing.T) {
	f, u, c := checkoutFixture(t, Options{ClearCartOnCheckout: true})
	ctx := context.Background()

	if _, err := f.svc.Orders.Create(ctx, u.ID, c.ID); err != nil {
		t.Fatalf("create order: %v", err)
	}
	cart, _ := f.svc.Carts.Get(ctx, c.ID)
	if len(cart.Items) != 0 {
		t.Errorf("cart lines = %d, want 0", len(cart.Items))
	}

	_, err := f.svc.Orders.Create(ctx, u.ID, c.ID)
	assertKind(t, err, apperror.KindValidation)
}

func TestCreateOrderErrors(t *testing.T) {
	f, u, c := checkoutFixture(t, Options{})
	ctx := context.Background()
	other := f.user(t, "other@example.com")
	empty := f.cart(t, other.ID)

	_, err := f.svc.Orders.Create(ctx, 999, c.ID)
	assertKind(t, err, apperror.KindNotFound)

	_, err = f.svc.Orders.Create(ctx, u.ID, 999)
	assertKind(t, err, apperror.KindNotFound)

	_, err = f.svc.Orders.Create(ctx, other.ID, c.ID)
	assertKind(t, err, apperror.KindNotFound)

	_, err = f.svc.Orders.Create(ctx, other.ID, empty.ID)
	assertKind(t, err, apperror.KindValidation)
}

func TestApplyCouponOnce(t *testing.T) {
	f, u, c := checkoutFixture(t, Options{})
	ctx := context.Background()

	order, err := f.svc.Orders.Create(ctx, u.ID, c.ID)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := f.svc.Coupons.Create(ctx, "SAVE10", decimalOf("10")); err != nil {
		t.Fatalf("create coupon: %v", err)
	}

	discounted, err := f.svc.Orders.ApplyCoupon(ctx, order.ID, "SAVE10")
	if err != nil {
		t.Fatalf("apply coupon: %v", err)
	}
	// 25.25 - 2.525 rounded to 2.53
	if !discounted.Total.Equal(decimalOf("22.72")) {
		t.Errorf("total = %s, want 22.72", discounted.Total)
	}
	if discounted.Status != models.OrderStatusDiscounted || discounted.CouponCode != "SAVE10" {
		t.Errorf("order = %+v", discounted)
	}

	_, err = f.svc.Orders.ApplyCoupon(ctx, order.ID, "SAVE10")
	assertKind(t, err, apperror.KindInvalidState)

	after, _ := f.svc.Orders.Get(ctx, order.ID)
	if !after.Total.Equal(decimalOf("22.72")) {
		t.Errorf("total changed by rejected apply: %s", after.Total)
	}
}

func TestApplyCouponGates(t *testing.T) {
	f, u, c := checkoutFixture(t, Options{})
	ctx := context.Background()

	order, _ := f.svc.Orders.Create(ctx, u.ID, c.ID)
	if _, err := f.svc.Coupons.Create(ctx, "HALF", decimalOf("50")); err != nil {
		t.Fatalf("create coupon: %v", err)
	}

	_, err := f.svc.Orders.ApplyCoupon(ctx, 999, "HALF")
	assertKind(t, err, apperror.KindNotFound)

	_, err = f.svc.Orders.ApplyCoupon(ctx, order.ID, "NOPE")
	assertKind(t, err, apperror.KindNotFound)

	if _, err := f.svc.Orders.UpdateStatus(ctx, order.ID, "processed"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	_, err = f.svc.Orders.ApplyCoupon(ctx, order.ID, "HALF")
	assertKind(t, err, apperror.KindInvalidState)

	// Shipped orders are not gated.
	if _, err := f.svc.Orders.UpdateStatus(ctx, order.ID, "SHIPPED"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	got, err := f.svc.Orders.ApplyCoupon(ctx, order.ID, "HALF")
	if err != nil {
		t.Fatalf("apply on shipped order: %v", err)
	}
	if !got.Total.Equal(decimalOf("12.62")) {
		t.Errorf("total = %s, want 12.62", got.Total)
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	f, u, c := checkoutFixture(t, Options{})
	ctx := context.Background()
	order, _ := f.svc.Orders.Create(ctx, u.ID, c.ID)

	_, err := f.svc.Orders.UpdateStatus(ctx, order.ID, "LOST")
	assertKind(t, err, apperror.KindValidation)

	_, err = f.svc.Orders.UpdateStatus(ctx, 999, "SHIPPED")
	assertKind(t, err, apperror.KindNotFound)
}

func TestListOrders(t *testing.T) {
	f, u, c := checkoutFixture(t, Options{})
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := f.svc.Orders.Create(ctx, u.ID, c.ID); err != nil {
			t.Fatalf("create order: %v", err)
		}
	}

	orders, total, err := f.svc.Orders.List(ctx, u.ID, pageOne)
	if err != nil || total != 2 || len(orders) != 2 {
		t.Fatalf("List = %d/%d, %v", len(orders), total, err)
	}
	if len(orders[0].Items) == 0 {
		t.Error("items not loaded")
	}

	_, _, err = f.svc.Orders.List(ctx, 999, pageOne)
	assertKind(t, err, apperror.KindNotFound)

	history, _, err := f.svc.Accounts.Orders(ctx, u.ID, pageOne)
	if err != nil || len(history) != 2 {
		t.Fatalf("history = %d, %v", len(history), err)
	}
}
