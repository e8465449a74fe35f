package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/example/shopfront/pkg/config"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
)

const leaseTTL = 30

type ServiceDiscovery struct {
	client *clientv3.Client
	config *config.EtcdConfig
	logger *zap.Logger
}

type ServiceInstance struct {
	Name string
	Host string
	Port int
}

func (i *ServiceInstance) Addr() string {
	return net.JoinHostPort(i.Host, strconv.Itoa(i.Port))
}

// Registration is a live registration. Its lease expires if the process dies.
type Registration struct {
	sd       *ServiceDiscovery
	instance *ServiceInstance
	leaseID  clientv3.LeaseID
	cancel   context.CancelFunc
}

func NewServiceDiscovery(cfg *config.EtcdConfig, logger *zap.Logger) (*ServiceDiscovery, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	return &ServiceDiscovery{
		client: cli,
		config: cfg,
		logger: logger.Named("discovery"),
	}, nil
}

func instanceKey(prefix string, instance *ServiceInstance) string {
	return fmt.Sprintf("%s%s/%s", prefix, instance.Name, instance.Addr())
}

func servicePrefix(prefix, name string) string {
	return fmt.Sprintf("%s%s/", prefix, name)
}

func (sd *ServiceDiscovery) Register(ctx context.Context, instance *ServiceInstance) (*Registration, error) {
	lease, err := sd.client.Grant(ctx, leaseTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create lease: %w", err)
	}

	if _, err := sd.client.Put(ctx, instanceKey(sd.config.Prefix, instance), instance.Addr(), clientv3.WithLease(lease.ID)); err != nil {
		return nil, fmt.Errorf("failed to register service: %w", err)
	}

	kaCtx, cancel := context.WithCancel(context.Background())
	ch, err := sd.client.KeepAlive(kaCtx, lease.ID)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to keep alive: %w", err)
	}

	go func() {
		for range ch {
		}
		sd.logger.Debug("Keep-alive stopped", zap.String("service", instance.Name))
	}()

	sd.logger.Info("Service registered", zap.String("service", instance.Name), zap.String("address", instance.Addr()))
	return &Registration{sd: sd, instance: instance, leaseID: lease.ID, cancel: cancel}, nil
}

func (sd *ServiceDiscovery) Discover(ctx context.Context, serviceName string) ([]*ServiceInstance, error) {
	resp, err := sd.client.Get(ctx, servicePrefix(sd.config.Prefix, serviceName), clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to discover service: %w", err)
	}

	var instances []*ServiceInstance
	for _, kv := range resp.Kvs {
		instance, err := parseInstance(serviceName, string(kv.Value))
		if err != nil {
			sd.logger.Warn("Skipping malformed instance", zap.String("key", string(kv.Key)), zap.Error(err))
			continue
		}
		instances = append(instances, instance)
	}

	return instances, nil
}

func parseInstance(name, addr string) (*ServiceInstance, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	return &ServiceInstance{Name: name, Host: host, Port: port}, nil
}

// Deregister removes the key and revokes the lease.
func (r *Registration) Deregister(ctx context.Context) error {
	r.cancel()

	if _, err := r.sd.client.Delete(ctx, instanceKey(r.sd.config.Prefix, r.instance)); err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}
	if _, err := r.sd.client.Revoke(ctx, r.leaseID); err != nil {
		return fmt.Errorf("failed to revoke lease: %w", err)
	}
	return nil
}

func (sd *ServiceDiscovery) Close() error {
	return sd.client.Close()
}
