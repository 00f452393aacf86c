package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"inventory-service/internal/models"
)

const (
	metricsKey = "inventory:metrics"
	metricsTTL = 30 * time.Second
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a Redis client and verifies connectivity
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// CacheMetrics stores the dashboard rollup with a short TTL.
func (c *Client) CacheMetrics(ctx context.Context, m *models.Metrics) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}
	return c.rdb.Set(ctx, metricsKey, data, metricsTTL).Err()
}

// GetCachedMetrics returns the cached rollup, or (nil, nil) on a miss.
func (c *Client) GetCachedMetrics(ctx context.Context) (*models.Metrics, error) {
	data, err := c.rdb.Get(ctx, metricsKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var m models.Metrics
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached metrics: %w", err)
	}
	return &m, nil
}

// InvalidateMetrics drops the cached rollup after a write that changes it.
func (c *Client) InvalidateMetrics(ctx context.Context) error {
	return c.rdb.Del(ctx, metricsKey).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
