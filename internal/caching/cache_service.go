package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"propertyms/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "propertyms"

type CacheService interface {
	// Building payment summaries
	GetBuildingSummary(ctx context.Context, buildingID int64, month, year int) (*models.BuildingPaymentSummary, error)
	SetBuildingSummary(ctx context.Context, summary *models.BuildingPaymentSummary, ttl time.Duration) error
	InvalidateBuildingSummaries(ctx context.Context) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

// NewRedisCacheService connects to redis. A failed ping is logged, not
// fatal; cache reads then miss and the rate limiter fails open.
func NewRedisCacheService(addr, password string, db int, logger *logrus.Logger) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsedAddr = strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		logger.WithError(pingErr).WithField("address", parsedAddr).Warn("Redis ping failed on initialization")
	} else {
		logger.WithField("address", parsedAddr).Debug("Redis connection established")
	}

	return &redisCacheService{client: client}
}

func summaryKey(buildingID int64, month, year int) string {
	return fmt.Sprintf("%s:summary:%d:%d:%02d", keyPrefix, buildingID, year, month)
}

func (r *redisCacheService) GetBuildingSummary(ctx context.Context, buildingID int64, month, year int) (*models.BuildingPaymentSummary, error) {
	data, err := r.client.Get(ctx, summaryKey(buildingID, month, year)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var summary models.BuildingPaymentSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *redisCacheService) SetBuildingSummary(ctx context.Context, summary *models.BuildingPaymentSummary, ttl time.Duration) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, summaryKey(summary.BuildingID, summary.Month, summary.Year), data, ttl).Err()
}

// InvalidateBuildingSummaries drops every cached summary.
func (r *redisCacheService) InvalidateBuildingSummaries(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, keyPrefix+":summary:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("%s:ratelimit:%s", keyPrefix, key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return false, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
