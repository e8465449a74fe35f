package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/example/shopfront/pkg/apperror"
	"github.com/example/shopfront/pkg/models"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	CatalogServiceName = "shop.v1.Catalog"

	getProductMethod = "/" + CatalogServiceName + "/GetProduct"
	getStockMethod   = "/" + CatalogServiceName + "/GetStock"
)

// ProductReader is the part of the catalog service exposed over gRPC.
type ProductReader interface {
	Get(ctx context.Context, id uint) (*models.Product, error)
	Stock(ctx context.Context, id uint) (int, error)
}

// CatalogServer is the server API for shop.v1.Catalog.
type CatalogServer interface {
	GetProduct(context.Context, *wrapperspb.UInt64Value) (*structpb.Struct, error)
	GetStock(context.Context, *wrapperspb.UInt64Value) (*wrapperspb.Int64Value, error)
}

var catalogServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetProduct", Handler: getProductHandler},
		{MethodName: "GetStock", Handler: getStockHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shop/v1/catalog.proto",
}

func getProductHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.UInt64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).GetProduct(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getProductMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CatalogServer).GetProduct(ctx, req.(*wrapperspb.UInt64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func getStockHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.UInt64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).GetStock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getStockMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CatalogServer).GetStock(ctx, req.(*wrapperspb.UInt64Value))
	}
	return interceptor(ctx, in, info, handler)
}

// Server serves the catalog, health and reflection services.
type Server struct {
	catalog ProductReader
	logger  *zap.Logger
	srv     *grpc.Server
	health  *health.Server
}

func NewServer(catalog ProductReader, logger *zap.Logger) *Server {
	s := &Server{
		catalog: catalog,
		logger:  logger.Named("grpc"),
		health:  health.NewServer(),
	}

	s.srv = grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(s.logger)))
	s.srv.RegisterService(&catalogServiceDesc, s)
	healthpb.RegisterHealthServer(s.srv, s.health)
	reflection.Register(s.srv)

	s.health.SetServingStatus(CatalogServiceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(lis)
}

func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("Catalog gRPC service started", zap.String("address", lis.Addr().String()))
	return s.srv.Serve(lis)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}

func (s *Server) GetProduct(ctx context.Context, req *wrapperspb.UInt64Value) (*structpb.Struct, error) {
	product, err := s.catalog.Get(ctx, uint(req.GetValue()))
	if err != nil {
		return nil, toStatus(err)
	}

	out, err := structpb.NewStruct(map[string]interface{}{
		"id":          uint64(product.ID),
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price.StringFixed(2),
		"stock":       int64(product.Stock),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode product: %v", err)
	}
	return out, nil
}

func (s *Server) GetStock(ctx context.Context, req *wrapperspb.UInt64Value) (*wrapperspb.Int64Value, error) {
	stock, err := s.catalog.Stock(ctx, uint(req.GetValue()))
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Int64(int64(stock)), nil
}

func toStatus(err error) error {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		return status.Error(codes.Internal, "internal server error")
	}
	switch appErr.Kind {
	case apperror.KindNotFound:
		return status.Error(codes.NotFound, appErr.Message)
	case apperror.KindValidation:
		return status.Error(codes.InvalidArgument, appErr.Message)
	case apperror.KindConflict:
		return status.Error(codes.AlreadyExists, appErr.Message)
	case apperror.KindUnauthorized:
		return status.Error(codes.Unauthenticated, appErr.Message)
	case apperror.KindInvalidState:
		return status.Error(codes.FailedPrecondition, appErr.Message)
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}

func loggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		logger.Info("gRPC request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("latency", time.Since(start)),
		)
		return resp, err
	}
}
