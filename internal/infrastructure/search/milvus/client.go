// Package milvus provides the semantic catalog backend: the vector store
// holding catalog entry embeddings, and the embedding provider the decision
// engine's semantic scoring runs on.
package milvus

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"

	"github.com/turtacn/HSCode-Intelligence/internal/config"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
)

// milvusNewClient is a variable so tests can substitute the SDK constructor.
var milvusNewClient = client.NewClient

var (
	ErrInvalidConfig    = errors.New(errors.ErrCodeValidation, "invalid milvus configuration")
	ErrConnectionFailed = errors.New(errors.ErrCodeServiceUnavailable, "milvus connection failed")
	ErrUnhealthy        = errors.New(errors.ErrCodeServiceUnavailable, "milvus unhealthy")
)

const (
	defaultConnectTimeout      = 10 * time.Second
	defaultHealthCheckInterval = 30 * time.Second
	defaultKeepAliveTime       = 60 * time.Second
	defaultKeepAliveTimeout    = 20 * time.Second
	reconnectAfterFailures     = 3
)

// Client manages the Milvus connection, with a background health probe that
// reconnects after consecutive failures.
type Client struct {
	milvusClient client.Client
	cfg          config.MilvusConfig
	logger       logging.Logger
	healthy      atomic.Bool
	cancel       context.CancelFunc
	mu           sync.RWMutex
}

// NewClient connects to Milvus and verifies health before returning.
func NewClient(cfg config.MilvusConfig, logger logging.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.Addr == "" {
		return nil, ErrInvalidConfig
	}
	if cfg.DBName == "" {
		cfg.DBName = "default"
	}

	ctx, cancel := context.WithCancel(context.Background())
	mc, err := connect(ctx, cfg)
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to create milvus client")
	}

	c := &Client{
		milvusClient: mc,
		cfg:          cfg,
		logger:       logger,
		cancel:       cancel,
	}

	if err := c.CheckHealth(ctx); err != nil {
		c.Close()
		return nil, ErrConnectionFailed
	}

	go c.startHealthCheck(ctx)

	logger.Info("milvus client connected", logging.String("addr", cfg.Addr))
	return c, nil
}

func connect(ctx context.Context, cfg config.MilvusConfig) (client.Client, error) {
	milvusCfg := client.Config{
		Address: cfg.Addr,
		DBName:  cfg.DBName,
		DialOptions: []grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithKeepaliveParams(keepalive.ClientParameters{
				Time:                defaultKeepAliveTime,
				Timeout:             defaultKeepAliveTimeout,
				PermitWithoutStream: true,
			}),
		},
	}

	connectCtx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	return milvusNewClient(connectCtx, milvusCfg)
}

// CheckHealth probes the server and updates the health flag.
func (c *Client) CheckHealth(ctx context.Context) error {
	c.mu.RLock()
	mc := c.milvusClient
	c.mu.RUnlock()

	if mc == nil {
		return ErrConnectionFailed
	}

	if _, err := mc.CheckHealth(ctx); err != nil {
		c.healthy.Store(false)
		c.logger.Warn("milvus health check failed", logging.Err(err))
		return ErrUnhealthy
	}

	c.healthy.Store(true)
	return nil
}

// IsHealthy reports the result of the most recent probe.
func (c *Client) IsHealthy() bool {
	return c.healthy.Load()
}

// GetMilvusClient exposes the underlying SDK client.
func (c *Client) GetMilvusClient() client.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.milvusClient
}

// Close stops the health probe and releases the connection.
func (c *Client) Close() error {
	c.cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.milvusClient != nil {
		c.milvusClient.Close()
	}
	c.logger.Info("milvus client closed")
	return nil
}

func (c *Client) startHealthCheck(ctx context.Context) {
	ticker := time.NewTicker(defaultHealthCheckInterval)
	defer ticker.Stop()

	failures := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prev := c.healthy.Load()
			err := c.CheckHealth(ctx)
			curr := c.healthy.Load()

			switch {
			case prev && !curr:
				failures++
				c.logger.Error("milvus became unhealthy", logging.Err(err))
			case !prev && curr:
				failures = 0
				c.logger.Info("milvus recovered")
			case !prev && !curr:
				failures++
			default:
				failures = 0
			}

			if failures >= reconnectAfterFailures {
				c.logger.Warn("milvus consecutive failures, reconnecting")
				if err := c.reconnect(ctx); err != nil {
					c.logger.Error("milvus reconnect failed", logging.Err(err))
				} else {
					failures = 0
				}
			}
		}
	}
}

func (c *Client) reconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.milvusClient != nil {
		c.milvusClient.Close()
	}

	mc, err := connect(ctx, c.cfg)
	if err != nil {
		return err
	}

	c.milvusClient = mc
	c.logger.Warn("milvus client reconnected")
	return nil
}

//Personal.AI order the ending
