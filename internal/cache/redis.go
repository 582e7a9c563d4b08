package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/autorental/config"
	"github.com/Domenick1991/autorental/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client          *redis.Client
	availabilityTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, availabilityTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:          redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		availabilityTTL: availabilityTTL,
	}
}

// AcquireCarHold takes the advisory per-car hold that fast-fails concurrent
// creation attempts before they pile up on the database row lock. The row
// lock, not this hold, is what guarantees no double-booking.
func (c *RedisCache) AcquireCarHold(ctx context.Context, carID int64, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, carHoldKey(carID), "held", ttl).Result()
}

func (c *RedisCache) ReleaseCarHold(ctx context.Context, carID int64) error {
	return c.client.Del(ctx, carHoldKey(carID)).Err()
}

// GetCategoryAvailability returns the cached available-cars count used for the
// scarcity factor. The second result reports a cache hit.
func (c *RedisCache) GetCategoryAvailability(ctx context.Context, branchID int64, category domain.CarCategory) (int64, bool, error) {
	val, err := c.client.Get(ctx, availabilityKey(branchID, category)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, err
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

func (c *RedisCache) SetCategoryAvailability(ctx context.Context, branchID int64, category domain.CarCategory, count int64) error {
	return c.client.Set(ctx, availabilityKey(branchID, category), strconv.FormatInt(count, 10), c.availabilityTTL).Err()
}

func carHoldKey(carID int64) string {
	return fmt.Sprintf("hold:car:%d", carID)
}

func availabilityKey(branchID int64, category domain.CarCategory) string {
	return fmt.Sprintf("cache:availability:%d:%s", branchID, category)
}
