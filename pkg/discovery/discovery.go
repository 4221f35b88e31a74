package discovery

import (
	"context"
	"fmt"

	"github.com/example/rentalshop/pkg/config"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
)

type ServiceRegistry struct {
	client *clientv3.Client
	config *config.EtcdConfig
	logger *zap.Logger
	lease  clientv3.LeaseID
}

type ServiceInstance struct {
	Name string
	Host string
	Port int
}

func (i *ServiceInstance) Addr() string {
	return fmt.Sprintf("%s:%d", i.Host, i.Port)
}

func NewServiceRegistry(cfg *config.EtcdConfig, logger *zap.Logger) (*ServiceRegistry, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	return &ServiceRegistry{
		client: cli,
		config: cfg,
		logger: logger,
	}, nil
}

func (r *ServiceRegistry) key(instance *ServiceInstance) string {
	return fmt.Sprintf("%s%s/%s", r.config.Prefix, instance.Name, instance.Addr())
}

// Register writes the instance under a lease that is kept alive until ctx is
// cancelled or the registry is closed.
func (r *ServiceRegistry) Register(ctx context.Context, instance *ServiceInstance) error {
	ttl := r.config.LeaseTTL
	if ttl <= 0 {
		ttl = 30
	}
	lease, err := r.client.Grant(ctx, ttl)
	if err != nil {
		return fmt.Errorf("failed to create lease: %w", err)
	}

	if _, err = r.client.Put(ctx, r.key(instance), instance.Addr(), clientv3.WithLease(lease.ID)); err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	ch, err := r.client.KeepAlive(ctx, lease.ID)
	if err != nil {
		return fmt.Errorf("failed to keep alive: %w", err)
	}
	r.lease = lease.ID

	go func() {
		for range ch {
		}
		r.logger.Info("etcd lease keepalive stopped", zap.String("service", instance.Name))
	}()

	r.logger.Info("Service registered in etcd",
		zap.String("name", instance.Name),
		zap.String("address", instance.Addr()),
		zap.Int64("ttl", ttl))
	return nil
}

func (r *ServiceRegistry) Deregister(ctx context.Context, instance *ServiceInstance) error {
	if _, err := r.client.Delete(ctx, r.key(instance)); err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}
	if r.lease != 0 {
		if _, err := r.client.Revoke(ctx, r.lease); err != nil {
			r.logger.Warn("Failed to revoke etcd lease", zap.Error(err))
		}
	}
	return nil
}

func (r *ServiceRegistry) Close() error {
	return r.client.Close()
}
