package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/shopfront/gateway"
	"github.com/example/shopfront/pkg/auth"
	"github.com/example/shopfront/pkg/broker"
	"github.com/example/shopfront/pkg/config"
	"github.com/example/shopfront/pkg/discovery"
	"github.com/example/shopfront/pkg/events"
	shopgrpc "github.com/example/shopfront/pkg/grpc"
	"github.com/example/shopfront/pkg/logger"
	"github.com/example/shopfront/pkg/repository"
	"github.com/example/shopfront/pkg/service"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting shop",
		zap.String("name", cfg.Server.Name),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("database", cfg.Database.Driver))

	ctx := context.Background()

	store, err := repository.Open(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer store.Close()

	checks := map[string]gateway.Pinger{"database": store}

	var cache service.ProductCache = service.NoCache{}
	if cfg.Redis.Addr != "" {
		productCache := repository.NewProductCache(repository.NewRedisClient(&cfg.Redis), cfg.Redis.ProductTTL, log)
		if err := productCache.Ping(ctx); err != nil {
			log.Warn("Redis connection failed, product cache disabled", zap.Error(err))
			_ = productCache.Close()
		} else {
			log.Info("Redis connected successfully")
			cache = productCache
			checks["redis"] = productCache
			defer productCache.Close()
		}
	}

	sinks := []events.Sink{events.NewLogSink(log)}
	if cfg.RabbitMQ.URL != "" {
		mq, err := broker.Dial(&cfg.RabbitMQ, log)
		if err != nil {
			log.Warn("RabbitMQ connection failed, events will not be published", zap.Error(err))
		} else {
			defer mq.Close()
			sinks = append(sinks, mq)
		}
	} else if cfg.MongoDB.URI != "" {
		audit, err := repository.NewMongoRepository(&cfg.MongoDB)
		if err != nil {
			log.Warn("MongoDB connection failed, audit log disabled", zap.Error(err))
		} else {
			defer audit.Close(context.Background())
			checks["mongodb"] = audit
			sinks = append(sinks, events.NewAuditSink(cfg.Server.Name, audit))
		}
	}

	dispatcher, err := events.NewDispatcher(log, sinks...)
	if err != nil {
		log.Fatal("Failed to start event dispatcher", zap.Error(err))
	}
	defer dispatcher.Close()

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	services := service.New(
		service.Deps{Store: store, Cache: cache, Events: dispatcher, Logger: log},
		service.Options{Tokens: tokens, ClearCartOnCheckout: cfg.Orders.ClearCartOnCheckout},
	)

	gw := gateway.NewGateway(cfg, log, services, gateway.Options{Tokens: tokens, Checks: checks})
	gw.SetupRoutes()

	serverErr := make(chan error, 2)
	go func() {
		if err := gw.Start(); err != nil {
			serverErr <- fmt.Errorf("http: %w", err)
		}
	}()

	var grpcServer *shopgrpc.Server
	if cfg.GRPC.Enabled {
		grpcServer = shopgrpc.NewServer(services.Catalog, log)
		go func() {
			if err := grpcServer.Start(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.GRPC.Port)); err != nil {
				serverErr <- fmt.Errorf("grpc: %w", err)
			}
		}()
	}

	registrations := register(ctx, cfg, log)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("Received shutdown signal")
	case err := <-serverErr:
		log.Error("Server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	for _, reg := range registrations {
		if err := reg.Deregister(shutdownCtx); err != nil {
			log.Error("Failed to deregister service", zap.Error(err))
		}
	}
	if err := gw.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown failed", zap.Error(err))
	}
	if grpcServer != nil {
		grpcServer.Stop()
	}

	log.Info("Shop stopped")
}

// register announces the HTTP and gRPC endpoints in etcd when endpoints are
// configured. Failures are logged; the shop keeps serving without discovery.
func register(ctx context.Context, cfg *config.Config, log *zap.Logger) []*discovery.Registration {
	if len(cfg.Etcd.Endpoints) == 0 {
		return nil
	}

	sd, err := discovery.NewServiceDiscovery(&cfg.Etcd, log)
	if err != nil {
		log.Warn("Failed to connect to etcd, continuing without service discovery", zap.Error(err))
		return nil
	}

	instances := []*discovery.ServiceInstance{
		{Name: cfg.Server.Name, Host: cfg.Server.Host, Port: cfg.HTTP.Port},
	}
	if cfg.GRPC.Enabled {
		instances = append(instances, &discovery.ServiceInstance{Name: cfg.GRPC.Name, Host: cfg.Server.Host, Port: cfg.GRPC.Port})
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var regs []*discovery.Registration
	for _, instance := range instances {
		reg, err := sd.Register(ctx, instance)
		if err != nil {
			log.Warn("Failed to register service", zap.String("service", instance.Name), zap.Error(err))
			continue
		}
		regs = append(regs, reg)
	}
	return regs
}
