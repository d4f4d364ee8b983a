package mongodb

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/studyhub/collab/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNoAvailableSlaves is returned by a balancer with nothing to pick from.
	ErrNoAvailableSlaves = errors.New("no available slave nodes")
	// ErrInvalidStrategy is returned for an unknown load balancing strategy.
	ErrInvalidStrategy = errors.New("invalid load balancing strategy")
)

// Manager holds the master client for writes and replica clients for reads.
type Manager struct {
	master   *mongo.Client
	slaves   []*mongo.Client
	strategy LoadBalancer
	mutex    sync.RWMutex
}

// NewManager connects to the master and every reachable slave.
func NewManager(ctx context.Context, conf *config.MongoDB) (*Manager, error) {
	if err := checkConfig(conf); err != nil {
		return nil, err
	}

	strategy, err := newBalancer(conf)
	if err != nil {
		return nil, err
	}

	master, err := newMongoClient(ctx, conf, conf.Master)
	if err != nil {
		return nil, err
	}

	var slaves []*mongo.Client
	for _, slaveCfg := range conf.Slaves {
		slave, err := newMongoClient(ctx, conf, slaveCfg)
		if err != nil {
			continue
		}
		slaves = append(slaves, slave)
	}

	return &Manager{
		master:   master,
		slaves:   slaves,
		strategy: strategy,
	}, nil
}

func checkConfig(conf *config.MongoDB) error {
	if conf == nil {
		return errors.New("mongodb: configuration is required")
	}
	if conf.Master == nil {
		return errors.New("mongodb: master configuration is required")
	}
	if conf.Master.URI == "" {
		return errors.New("mongodb: master URI is empty")
	}
	if conf.Database == "" {
		return errors.New("mongodb: database name is empty")
	}
	return nil
}

func newBalancer(conf *config.MongoDB) (LoadBalancer, error) {
	switch conf.Strategy {
	case "round_robin", "":
		return &RoundRobinBalancer{}, nil
	case "random":
		return RandomBalancer{}, nil
	default:
		return nil, ErrInvalidStrategy
	}
}

// LoadBalancer picks a replica for a read.
type LoadBalancer interface {
	Next([]*mongo.Client) (*mongo.Client, error)
}

// RoundRobinBalancer cycles through replicas.
type RoundRobinBalancer struct {
	current atomic.Uint64
}

func (rb *RoundRobinBalancer) Next(slaves []*mongo.Client) (*mongo.Client, error) {
	if len(slaves) == 0 {
		return nil, ErrNoAvailableSlaves
	}
	next := rb.current.Add(1) % uint64(len(slaves))
	return slaves[next], nil
}

// RandomBalancer picks a replica at random.
type RandomBalancer struct{}

func (RandomBalancer) Next(slaves []*mongo.Client) (*mongo.Client, error) {
	if len(slaves) == 0 {
		return nil, ErrNoAvailableSlaves
	}
	return slaves[rand.Intn(len(slaves))], nil
}

// Master returns the write client.
func (m *Manager) Master() *mongo.Client {
	if m == nil {
		return nil
	}
	return m.master
}

// Slave returns a read client, falling back to the master.
func (m *Manager) Slave() *mongo.Client {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	slave, err := m.strategy.Next(m.slaves)
	if err != nil {
		return m.master
	}
	return slave
}

// Health pings the master and drops unhealthy slaves.
func (m *Manager) Health(ctx context.Context) error {
	if err := m.master.Ping(ctx, nil); err != nil {
		return fmt.Errorf("master mongodb health check failed: %w", err)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	healthy := m.slaves[:0]
	for _, slave := range m.slaves {
		if err := slave.Ping(ctx, nil); err != nil {
			continue
		}
		healthy = append(healthy, slave)
	}
	m.slaves = healthy
	return nil
}

// Close disconnects every client.
func (m *Manager) Close(ctx context.Context) error {
	var errs []error

	if err := m.master.Disconnect(ctx); err != nil {
		errs = append(errs, fmt.Errorf("error closing master connection: %w", err))
	}
	for i, slave := range m.slaves {
		if err := slave.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("error closing slave %d connection: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

func newMongoClient(ctx context.Context, conf *config.MongoDB, node *config.MongoNode) (*mongo.Client, error) {
	if node == nil || node.URI == "" {
		return nil, errors.New("mongodb node configuration is nil or empty")
	}

	clientOptions := options.Client().ApplyURI(node.URI)
	if conf.Timeout > 0 {
		clientOptions.SetTimeout(conf.Timeout)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect error: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb ping error: %w", err)
	}

	return client, nil
}
