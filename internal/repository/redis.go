package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"ops-dashboard/internal/models"
)

const (
	dataVersionKey = "dashboard:data_version"
	projectTTL     = time.Minute
)

type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRepository keeps memoized aggregations for ttl.
func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{client: client, ttl: ttl}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// DataVersion returns the current data version, 0 before the first mutation.
func (r *RedisRepository) DataVersion(ctx context.Context) (int64, error) {
	v, err := r.client.Get(ctx, dataVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// BumpVersion moves the data version forward and drops the cached project.
// Memo entries of older versions are left to expire.
func (r *RedisRepository) BumpVersion(ctx context.Context, projectIDs ...int) (int64, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, dataVersionKey)
	for _, id := range projectIDs {
		pipe.Del(ctx, projectKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// GetMemo decodes a memoized result into dst. It reports false on a miss.
func (r *RedisRepository) GetMemo(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode memo %s: %w", key, err)
	}
	return true, nil
}

func (r *RedisRepository) SetMemo(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, r.ttl).Err()
}

func (r *RedisRepository) SetProject(ctx context.Context, p *models.Project) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, projectKey(p.ID), data, projectTTL).Err()
}

// GetProject returns nil without error on a cache miss.
func (r *RedisRepository) GetProject(ctx context.Context, id int) (*models.Project, error) {
	data, err := r.client.Get(ctx, projectKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var p models.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	p.ID = id
	return &p, nil
}

func projectKey(id int) string {
	return fmt.Sprintf("project:%d", id)
}
