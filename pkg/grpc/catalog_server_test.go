package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/example/shopfront/pkg/apperror"
	"github.com/example/shopfront/pkg/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fakeCatalog struct {
	products map[uint]*models.Product
}

func (f *fakeCatalog) Get(_ context.Context, id uint) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperror.NotFound("product %d not found", id)
	}
	return p, nil
}

func (f *fakeCatalog) Stock(ctx context.Context, id uint) (int, error) {
	p, err := f.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return p.Stock, nil
}

func startServer(t *testing.T) *grpc.ClientConn {
	t.Helper()

	catalog := &fakeCatalog{products: map[uint]*models.Product{
		1: {ID: 1, Name: "Mug", Description: "Blue", Price: decimal.RequireFromString("12.5"), Stock: 7},
	}}
	srv := NewServer(catalog, zap.NewNop())

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	client, err := Dial("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client.conn
}

func TestGetProduct(t *testing.T) {
	client := NewCatalogClient(startServer(t))

	product, err := client.GetProduct(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	fields := product.AsMap()
	if fields["name"] != "Mug" {
		t.Errorf("name = %v", fields["name"])
	}
	if fields["price"] != "12.50" {
		t.Errorf("price = %v, want 12.50", fields["price"])
	}
	if fields["stock"] != float64(7) {
		t.Errorf("stock = %v", fields["stock"])
	}
}

func TestGetStock(t *testing.T) {
	client := NewCatalogClient(startServer(t))

	stock, err := client.GetStock(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetStock: %v", err)
	}
	if stock != 7 {
		t.Errorf("stock = %d, want 7", stock)
	}
}

func TestGetProductNotFound(t *testing.T) {
	client := NewCatalogClient(startServer(t))

	_, err := client.GetProduct(context.Background(), 99)
	if status.Code(err) != codes.NotFound {
		t.Fatalf("code = %v, want NotFound (err=%v)", status.Code(err), err)
	}
}

func TestHealth(t *testing.T) {
	conn := startServer(t)

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: CatalogServiceName})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("status = %v", resp.GetStatus())
	}
}

func TestToStatus(t *testing.T) {
	cases := []struct {
		err  error
		want codes.Code
	}{
		{apperror.Validation("bad"), codes.InvalidArgument},
		{apperror.Conflict("dup"), codes.AlreadyExists},
		{apperror.Unauthorized("no"), codes.Unauthenticated},
		{apperror.InvalidState("gated"), codes.FailedPrecondition},
		{context.DeadlineExceeded, codes.Internal},
	}
	for _, tc := range cases {
		if got := status.Code(toStatus(tc.err)); got != tc.want {
			t.Errorf("toStatus(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
