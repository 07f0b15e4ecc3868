package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// cachedRepository is a read-through cache over single-product lookups.
// Writes invalidate; cache failures degrade to the underlying repository.
type cachedRepository struct {
	Repository
	rdb *redis.Client
	ttl time.Duration
}

func NewCachedRepository(repo Repository, rdb *redis.Client, ttl time.Duration) Repository {
	return &cachedRepository{Repository: repo, rdb: rdb, ttl: ttl}
}

func cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("product:%s", id)
}

func (c *cachedRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	data, err := c.rdb.Get(ctx, cacheKey(id)).Bytes()
	if err == nil {
		var p Product
		if unmarshalErr := json.Unmarshal(data, &p); unmarshalErr == nil {
			return &p, nil
		}
		// Corrupt entry: drop it and fall through to the repository.
		c.rdb.Del(ctx, cacheKey(id))
	} else if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Stringer("product_id", id).Msg("cache: redis get failed, falling back to repository")
	}

	p, err := c.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := c.rdb.Set(ctx, cacheKey(id), data, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Stringer("product_id", id).Msg("cache: redis set failed")
		}
	}
	return p, nil
}

func (c *cachedRepository) Update(ctx context.Context, p *Product) error {
	if err := c.Repository.Update(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, p.ID)
	return nil
}

func (c *cachedRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating float64, numReviews int) error {
	if err := c.Repository.UpdateRating(ctx, id, rating, numReviews); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *cachedRepository) DecrementStockIfAvailable(ctx context.Context, productID uuid.UUID, size Size, qty int) (bool, error) {
	ok, err := c.Repository.DecrementStockIfAvailable(ctx, productID, size, qty)
	if err == nil && ok {
		c.invalidate(ctx, productID)
	}
	return ok, err
}

func (c *cachedRepository) RestoreStock(ctx context.Context, productID uuid.UUID, size Size, qty int) error {
	err := c.Repository.RestoreStock(ctx, productID, size, qty)
	if err == nil {
		c.invalidate(ctx, productID)
	}
	return err
}

func (c *cachedRepository) invalidate(ctx context.Context, id uuid.UUID) {
	if err := c.rdb.Del(ctx, cacheKey(id)).Err(); err != nil {
		log.Warn().Err(err).Stringer("product_id", id).Msg("cache: redis del failed")
	}
}
