package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"catalog-service/internal/models"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// SelectionFingerprint renders a selection as a stable key fragment so the
// same product+selection pair always maps to the same reservation counter.
func SelectionFingerprint(sel models.Selection) string {
	if len(sel) == 0 {
		return "base"
	}
	axes := make([]int64, 0, len(sel))
	for axisID := range sel {
		axes = append(axes, axisID)
	}
	sort.Slice(axes, func(i, j int) bool { return axes[i] < axes[j] })

	parts := make([]string, 0, len(axes))
	for _, axisID := range axes {
		parts = append(parts, fmt.Sprintf("%d=%d", axisID, sel[axisID]))
	}
	return strings.Join(parts, ";")
}

func reservationKey(productID int64, sel models.Selection) string {
	return fmt.Sprintf("reservation:%d:%s", productID, SelectionFingerprint(sel))
}

// AddReservation increments the pending-cart reservation counter for a
// product+selection pair. The TTL is refreshed on every increment so
// abandoned carts expire on their own.
func (c *Client) AddReservation(ctx context.Context, productID int64, sel models.Selection, qty int, ttl time.Duration) (int, error) {
	key := reservationKey(productID, sel)

	pipe := c.rdb.TxPipeline()
	incr := pipe.IncrBy(ctx, key, int64(qty))
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to add reservation: %w", err)
	}
	return int(incr.Val()), nil
}

// GetReserved returns the reserved quantity for a product+selection pair,
// or 0 when none is recorded.
func (c *Client) GetReserved(ctx context.Context, productID int64, sel models.Selection) (int, error) {
	val, err := c.rdb.Get(ctx, reservationKey(productID, sel)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read reservation: %w", err)
	}
	return val, nil
}

// ReleaseReservation decrements a reservation counter, deleting it once it
// reaches zero.
func (c *Client) ReleaseReservation(ctx context.Context, productID int64, sel models.Selection, qty int) error {
	key := reservationKey(productID, sel)

	val, err := c.rdb.DecrBy(ctx, key, int64(qty)).Result()
	if err != nil {
		return fmt.Errorf("failed to release reservation: %w", err)
	}
	if val <= 0 {
		return c.rdb.Del(ctx, key).Err()
	}
	return nil
}

func productKey(sku string) string {
	return fmt.Sprintf("product:%s", sku)
}

// CacheProduct stores a product snapshot as JSON with a TTL
func (c *Client) CacheProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}
	return c.rdb.Set(ctx, productKey(product.SKU), data, ttl).Err()
}

// GetCachedProduct returns the cached snapshot, or (nil, nil) on a miss
func (c *Client) GetCachedProduct(ctx context.Context, sku string) (*models.Product, error) {
	data, err := c.rdb.Get(ctx, productKey(sku)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached product: %w", err)
	}
	return &product, nil
}

// InvalidateProduct drops the cached snapshot for a SKU
func (c *Client) InvalidateProduct(ctx context.Context, sku string) error {
	return c.rdb.Del(ctx, productKey(sku)).Err()
}
