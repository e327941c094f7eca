// Package redis opens the shared go-redis client used by the content and ledger stores.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"proofwall/internal/platform/config"
)

const defaultDialTimeout = 5 * time.Second

var (
	poolEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proofwall_redis_pool_events_total",
		Help: "Redis connection pool events by kind (hit, miss, timeout, stale)",
	}, []string{"kind"})
	poolConns = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "proofwall_redis_pool_conns",
		Help: "Redis connections in the pool by state (total, idle)",
	}, []string{"state"})
)

// Client embeds the go-redis client and tracks pool counters between snapshots.
type Client struct {
	*redis.Client
	last redis.PoolStats
}

// New dials Redis and pings it once. An empty URL returns nil, nil.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{Client: client}, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// RunPoolStats records pool statistics every interval until ctx is done.
func (c *Client) RunPoolStats(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.RecordPoolStats()
		}
	}
}

// RecordPoolStats publishes the current snapshot. go-redis reports cumulative
// counters, so only the growth since the previous snapshot is added.
func (c *Client) RecordPoolStats() {
	stats := *c.PoolStats()

	poolConns.WithLabelValues("total").Set(float64(stats.TotalConns))
	poolConns.WithLabelValues("idle").Set(float64(stats.IdleConns))

	addDelta("hit", stats.Hits, c.last.Hits)
	addDelta("miss", stats.Misses, c.last.Misses)
	addDelta("timeout", stats.Timeouts, c.last.Timeouts)
	addDelta("stale", stats.StaleConns, c.last.StaleConns)

	c.last = stats
}

func addDelta(kind string, now, prev uint32) {
	if now > prev {
		poolEvents.WithLabelValues(kind).Add(float64(now - prev))
	}
}
