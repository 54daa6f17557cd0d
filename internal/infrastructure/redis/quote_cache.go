package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stakeledger/internal/application"
	"stakeledger/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

var _ application.QuoteCache = (*QuoteCache)(nil)

// QuoteCache keeps day quotes for one coin/fiat pair across runs.
type QuoteCache struct {
	Client *redis.Client
	TTL    time.Duration
	prefix string
}

func New(client *redis.Client, coin, fiat string, ttl time.Duration) *QuoteCache {
	return &QuoteCache{
		Client: client,
		TTL:    ttl,
		prefix: fmt.Sprintf("quote:%s:%s:", coin, strings.ToLower(fiat)),
	}
}

func (c *QuoteCache) key(day domain.Date) string { return c.prefix + day.String() }

func (c *QuoteCache) Get(ctx context.Context, day domain.Date) (decimal.Decimal, bool, error) {
	s, err := c.Client.Get(ctx, c.key(day)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Decimal{}, false, nil
	}
	if err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("redis get quote: %w", err)
	}
	p, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("redis quote %s: %w", c.key(day), err)
	}
	return p, true, nil
}

func (c *QuoteCache) Set(ctx context.Context, day domain.Date, price decimal.Decimal) error {
	if err := c.Client.Set(ctx, c.key(day), price.String(), c.TTL).Err(); err != nil {
		return fmt.Errorf("redis set quote: %w", err)
	}
	return nil
}
