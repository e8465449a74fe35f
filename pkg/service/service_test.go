package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/example/shopfront/pkg/apperror"
	"github.com/example/shopfront/pkg/auth"
	"github.com/example/shopfront/pkg/events"
	"github.com/example/shopfront/pkg/models"
	"github.com/example/shopfront/pkg/repository"
	"github.com/example/shopfront/pkg/repository/repotest"
	"github.com/shopspring/decimal"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEmitter) Emit(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type invalidationRecorder struct {
	NoCache
	mu  sync.Mutex
	ids []uint
}

func (c *invalidationRecorder) Invalidate(_ context.Context, ids ...uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, ids...)
}

type fixture struct {
	store   *repository.Store
	svc     *Services
	emitted *recordingEmitter
	cache   *invalidationRecorder
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	if opts.Tokens == nil {
		opts.Tokens = auth.NewTokenIssuer("test-secret", time.Hour)
	}
	f := &fixture{
		store:   repotest.NewStore(t),
		emitted: &recordingEmitter{},
		cache:   &invalidationRecorder{},
	}
	f.svc = New(Deps{Store: f.store, Cache: f.cache, Events: f.emitted}, opts)
	return f
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := f.svc.Accounts.SignUp(context.Background(), SignUpInput{Name: "Test", Email: email, Password: "pw"})
	if err != nil {
		t.Fatalf("sign up %s: %v", email, err)
	}
	return u
}

func (f *fixture) product(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()
	p, err := f.svc.Catalog.Create(context.Background(), CreateProductInput{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	})
	if err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return p
}

func (f *fixture) cart(t *testing.T, userID uint) *models.Cart {
	t.Helper()
	c, err := f.svc.Carts.Create(context.Background(), userID)
	if err != nil {
		t.Fatalf("create cart: %v", err)
	}
	return c
}

func (f *fixture) stock(t *testing.T, productID uint) int {
	t.Helper()
	n, err := f.svc.Catalog.Stock(context.Background(), productID)
	if err != nil {
		t.Fatalf("stock: %v", err)
	}
	return n
}

func assertKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if !apperror.Is(err, kind) {
		t.Fatalf("expected %s error, got %v", kind, err)
	}
}

var pageOne = repository.Page{Number: 1, Size: 50}

func decimalOf(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
