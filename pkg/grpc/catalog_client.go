package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/example/shopfront/pkg/discovery"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// CatalogClient calls shop.v1.Catalog.
type CatalogClient struct {
	conn *grpc.ClientConn
}

func NewCatalogClient(conn *grpc.ClientConn) *CatalogClient {
	return &CatalogClient{conn: conn}
}

// Dial opens an insecure connection to target. The connection is lazy.
func Dial(target string, opts ...grpc.DialOption) (*CatalogClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", target, err)
	}
	return NewCatalogClient(conn), nil
}

func (c *CatalogClient) GetProduct(ctx context.Context, id uint64) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, getProductMethod, wrapperspb.UInt64(id), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) GetStock(ctx context.Context, id uint64) (int64, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.conn.Invoke(ctx, getStockMethod, wrapperspb.UInt64(id), out); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

func (c *CatalogClient) Close() error {
	return c.conn.Close()
}

// ResolveTarget asks discovery for an instance of name and falls back to
// fallback when discovery is nil, fails or finds nothing.
func ResolveTarget(ctx context.Context, disc *discovery.ServiceDiscovery, name, fallback string, logger *zap.Logger) string {
	if disc == nil {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	instances, err := disc.Discover(ctx, name)
	if err != nil || len(instances) == 0 {
		logger.Info("Using default address", zap.String("service", name), zap.String("address", fallback), zap.Error(err))
		return fallback
	}

	target := instances[0].Addr()
	logger.Info("Discovered service", zap.String("service", name), zap.String("address", target))
	return target
}
