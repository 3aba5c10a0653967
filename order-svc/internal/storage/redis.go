package storage

import (
	"context"
	"fmt"
	"time"

	"barapp/order-svc/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisLeaderboard keeps a per-day sorted set of units sold by item id.
type RedisLeaderboard struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisLeaderboard(client *redis.Client, ttl time.Duration) *RedisLeaderboard {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RedisLeaderboard{Client: client, TTL: ttl}
}

func DailyKey(restaurantID string, day time.Time) string {
	return fmt.Sprintf("analytics:daily:%s:%s", day.Format("2006-01-02"), restaurantID)
}

func itemNamesKey(restaurantID string) string {
	return "analytics:items:" + restaurantID
}

func itemCategoriesKey(restaurantID string) string {
	return "analytics:categories:" + restaurantID
}

func seenKey(restaurantID, orderID string) string {
	return "analytics:seen:" + restaurantID + ":" + orderID
}

// RecordItems counts each order once; a redelivered record is ignored.
func (l *RedisLeaderboard) RecordItems(ctx context.Context, record domain.BusinessRecord) error {
	if len(record.Items) == 0 {
		return nil
	}
	seen := seenKey(record.RestaurantID, record.OriginalOrderID)
	first, err := l.Client.SetNX(ctx, seen, 1, l.TTL).Result()
	if err != nil {
		return fmt.Errorf("mark order %s counted: %w", record.OriginalOrderID, err)
	}
	if !first {
		return nil
	}

	dailyKey := DailyKey(record.RestaurantID, record.Date)
	_, err = l.Client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, item := range record.Items {
			pipe.ZIncrBy(ctx, dailyKey, float64(item.Quantity), item.ItemID)
			pipe.HSet(ctx, itemNamesKey(record.RestaurantID), item.ItemID, item.ItemName)
			pipe.HSet(ctx, itemCategoriesKey(record.RestaurantID), item.ItemID, string(item.Category))
		}
		pipe.Expire(ctx, dailyKey, l.TTL)
		return nil
	})
	if err != nil {
		l.Client.Del(ctx, seen)
	}
	return err
}

func (l *RedisLeaderboard) TopItems(ctx context.Context, restaurantID string, day time.Time, limit int) ([]domain.TopItem, error) {
	result, err := l.Client.ZRevRangeWithScores(ctx, DailyKey(restaurantID, day), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(result))
	for _, member := range result {
		ids = append(ids, member.Member.(string))
	}
	names, err := l.Client.HMGet(ctx, itemNamesKey(restaurantID), ids...).Result()
	if err != nil {
		return nil, err
	}
	categories, err := l.Client.HMGet(ctx, itemCategoriesKey(restaurantID), ids...).Result()
	if err != nil {
		return nil, err
	}

	items := make([]domain.TopItem, 0, len(result))
	for i, member := range result {
		item := domain.TopItem{ItemID: ids[i], TotalUnitsSold: member.Score}
		if name, ok := names[i].(string); ok {
			item.ItemName = name
		}
		if category, ok := categories[i].(string); ok {
			item.Category = domain.Category(category)
		}
		items = append(items, item)
	}
	return items, nil
}
