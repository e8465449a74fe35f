package service

import (
	"context"
	"sync"
	"testing"

	"github.com/example/shopfront/pkg/apperror"
	"github.com/example/shopfront/pkg/events"
)

func TestCartStockWalkthrough(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	u := f.user(t, "walk@example.com")
	p := f.product(t, "A", "2.50", 10)
	c := f.cart(t, u.ID)

	cart, err := f.svc.Carts.AddItem(ctx, CartItemInput{CartID: c.ID, ProductID: p.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("add 3: %v", err)
	}
	if got := f.stock(t, p.ID); got != 7 {
		t.Fatalf("stock after add 3 = %d, want 7", got)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 3 {
		t.Fatalf("cart items = %+v", cart.Items)
	}
	if !cart.Total.Equal(decimalOf("7.50")) {
		t.Errorf("cart total = %s, want 7.50", cart.Total)
	}

	_, err = f.svc.Carts.AddItem(ctx, CartItemInput{CartID: c.ID, ProductID: p.ID, Quantity: 8})
	assertKind(t, err, apperror.KindValidation)
	if got := f.stock(t, p.ID); got != 7 {
		t.Fatalf("stock after rejected add = %d, want 7", got)
	}

	cart, err = f.svc.Carts.UpdateItem(ctx, CartItemInput{CartID: c.ID, ProductID: p.ID, Quantity: 5})
	if err != nil {
		t.Fatalf("update to 5: %v", err)
	}
	if got := f.stock(t, p.ID); got != 5 {
		t.Fatalf("stock after update = %d, want 5", got)
	}
	if cart.Items[0].Quantity != 5 {
		t.Fatalf("quantity = %d, want 5", cart.Items[0].Quantity)
	}

	cart, err = f.svc.Carts.RemoveItem(ctx, c.ID, p.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := f.stock(t, p.ID); got != 10 {
		t.Fatalf("stock after remove = %d, want 10", got)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("line not deleted: %+v", cart.Items)
	}

	want := []string{events.CartItemAdded, events.CartItemUpdated, events.CartItemRemoved}
	got := f.emitted.types()
	tail := got[len(got)-len(want):]
	for i := range want {
		if tail[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, tail[i], want[i])
		}
	}
	if len(f.cache.ids) < 3 {
		t.Errorf("expected product cache invalidations, got %v", f.cache.ids)
	}
}

func TestAddMergesExistingLine(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	u := f.user(t, "merge@example.com")
	p := f.product(t, "A", "1.00", 10)
	c := f.cart(t, u.ID)

	for _, q := range []int{2, 3} {
		if _, err := f.svc.Carts.AddItem(ctx, CartItemInput{CartID: c.ID, ProductID: p.ID, Quantity: q}); err != nil {
			t.Fatalf("add %d: %v", q, err)
		}
	}

	cart, _ := f.svc.Carts.Get(ctx, c.ID)
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 5 {
		t.Fatalf("items = %+v", cart.Items)
	}
	if got := f.stock(t, p.ID); got != 5 {
		t.Errorf("stock = %d, want 5", got)
	}
}

func TestUpdateBounds(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	u := f.user(t, "bounds@example.com")
	p := f.product(t, "A", "1.00", 4)
	c := f.cart(t, u.ID)

	if _, err := f.svc.Carts.AddItem(ctx, CartItemInput{CartID: c.ID, ProductID: p.ID, Quantity: 3}); err != nil {
		t.Fatalf("add: %v", err)
	}

	// 3 in cart + 1 in stock: 4 is the ceiling.
	_, err := f.svc.Carts.UpdateItem(ctx, CartItemInput{CartID: c.ID, ProductID: p.ID, Quantity: 5})
	assertKind(t, err, apperror.KindValidation)
	if got := f.stock(t, p.ID); got != 1 {
		t.Fatalf("stock after rejected update = %d, want 1", got)
	}

	if _, err := f.svc.Carts.UpdateItem(ctx, CartItemInput{CartID: c.ID, ProductID: p.ID, Quantity: 4}); err != nil {
		t.Fatalf("update to 4: %v", err)
	}
	if got := f.stock(t, p.ID); got != 0 {
		t.Fatalf("stock = %d, want 0", got)
	}

	if _, err := f.svc.Carts.UpdateItem(ctx, CartItemInput{CartID: c.ID, ProductID: p.ID, Quantity: 1}); err != nil {
		t.Fatalf("update to 1: %v", err)
	}
	if got := f.stock(t, p.ID); got != 3 {
		t.Fatalf("stock after shrinking = %d, want 3", got)
	}
}

func TestCartErrors(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	u := f.user(t, "errors@example.com")
	p := f.product(t, "A", "1.00", 4)
	other := f.product(t, "B", "1.00", 4)
	c := f.cart(t, u.ID)

	tests := []struct {
		name string
		err  func() error
		kind apperror.Kind
	}{
		{"zero quantity", func() error {
			_, err := f.svc.Carts.AddItem(ctx, CartItemInput{CartID: c.ID, ProductID: p.ID, Quantity: 0})
			return err
		}, apperror.KindValidation},
		{"negative update", func() error {
			_, err := f.svc.Carts.UpdateItem(ctx, CartItemInput{CartID: c.ID, ProductID: p.ID, Quantity: -1})
			return err
		}, apperror.KindValidation},
		{"missing cart", func() error {
			_, err := f.svc.Carts.AddItem(ctx, CartItemInput{CartID: 999, ProductID: p.ID, Quantity: 1})
			return err
		}, apperror.KindNotFound},
		{"missing product", func() error {
			_, err := f.svc.Carts.AddItem(ctx, CartItemInput{CartID: c.ID, ProductID: 999, Quantity: 1})
			return err
		}, apperror.KindNotFound},
		{"update item not in cart", func() error {
			_, err := f.svc.Carts.UpdateItem(ctx, CartItemInput{CartID: c.ID, ProductID: other.ID, Quantity: 1})
			return err
		}, apperror.KindNotFound},
		{"remove item not in cart", func() error {
			_, err := f.svc.Carts.RemoveItem(ctx, c.ID, other.ID)
			return err
		}, apperror.KindNotFound},
		{"second cart for user", func() error {
			_, err := f.svc.Carts.Create(ctx, u.ID)
			return err
		}, apperror.KindConflict},
		{"cart for missing user", func() error {
			_, err := f.svc.Carts.Create(ctx, 999)
			return err
		}, apperror.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertKind(t, tt.err(), tt.kind)
		})
	}

	if got := f.stock(t, p.ID); got != 4 {
		t.Errorf("stock changed by rejected operations: %d", got)
	}
}

func TestConcurrentAddsNeverOversell(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	p := f.product(t, "A", "1.00", 10)

	var carts []uint
	for i := 0; i < 6; i++ {
		u := f.user(t, string(rune('a'+i))+"@example.com")
		carts = append(carts, f.cart(t, u.ID).ID)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for _, cartID := range carts {
		wg.Add(1)
		go func(cartID uint) {
			defer wg.Done()
			if _, err := f.svc.Carts.AddItem(ctx, CartItemInput{CartID: cartID, ProductID: p.ID, Quantity: 3}); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}(cartID)
	}
	wg.Wait()

	if accepted != 3 {
		t.Errorf("accepted = %d, want 3", accepted)
	}
	if got := f.stock(t, p.ID); got != 10-3*accepted || got < 0 {
		t.Errorf("stock = %d with %d accepted adds", got, accepted)
	}
}

func TestDeleteCartCreditsStock(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	u := f.user(t, "delete@example.com")
	a := f.product(t, "A", "1.00", 5)
	b := f.product(t, "B", "1.00", 5)
	c := f.cart(t, u.ID)

	for _, p := range []uint{a.ID, b.ID} {
		if _, err := f.svc.Carts.AddItem(ctx, CartItemInput{CartID: c.ID, ProductID: p, Quantity: 2}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	if err := f.svc.Carts.Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if f.stock(t, a.ID) != 5 || f.stock(t, b.ID) != 5 {
		t.Error("stock not credited back")
	}
	_, err := f.svc.Carts.Get(ctx, c.ID)
	assertKind(t, err, apperror.KindNotFound)

	assertKind(t, f.svc.Carts.Delete(ctx, c.ID), apperror.KindNotFound)
}

func TestListAndGetByUser(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	u := f.user(t, "list@example.com")
	c := f.cart(t, u.ID)

	got, err := f.svc.Carts.GetByUser(ctx, u.ID)
	if err != nil || got.ID != c.ID {
		t.Fatalf("GetByUser = %+v, %v", got, err)
	}
	_, err = f.svc.Carts.GetByUser(ctx, 999)
	assertKind(t, err, apperror.KindNotFound)

	carts, total, err := f.svc.Carts.List(ctx, pageOne)
	if err != nil || total != 1 || len(carts) != 1 {
		t.Fatalf("List = %d/%d, %v", len(carts), total, err)
	}
}
