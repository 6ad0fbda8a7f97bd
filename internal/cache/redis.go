package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flyair/flyair-backend/config"
	"github.com/flyair/flyair-backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache caches flight listings and holds seats for in-flight booking
// requests. A hold is advisory: the database conditional update is still the
// authority on whether a seat can be sold.
type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL: flightsTTL,
	}
}

func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(), payload, c.flightsTTL).Err()
}

// InvalidateFlights drops the cached flight listing after any flight write.
func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	return c.client.Del(ctx, flightsKey()).Err()
}

func (c *RedisCache) AcquireSeatHold(ctx context.Context, flightSeatID int64, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, seatHoldKey(flightSeatID), "held", ttl).Result()
}

func (c *RedisCache) ReleaseSeatHold(ctx context.Context, flightSeatID int64) error {
	return c.client.Del(ctx, seatHoldKey(flightSeatID)).Err()
}

func flightsKey() string {
	return "cache:flights"
}

func seatHoldKey(flightSeatID int64) string {
	return fmt.Sprintf("hold:flight_seat:%d", flightSeatID)
}
