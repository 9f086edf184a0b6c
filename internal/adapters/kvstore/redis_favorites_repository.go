package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// sortedSetCommands - команды Redis, которые нужны избранному.
// redis.UniversalClient им удовлетворяет.
type sortedSetCommands interface {
	ZAddNX(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd
	ZRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	ZScore(ctx context.Context, key, member string) *redis.FloatCmd
	ZCard(ctx context.Context, key string) *redis.IntCmd
	ZRevRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// RedisFavoritesRepository хранит избранное в sorted set
// real-estate-favorites:<user>: member - id объекта, score - время добавления
// в миллисекундах. Каждое изменение - одна атомарная команда, поэтому
// несколько реплик сервиса не затирают записи друг друга.
type RedisFavoritesRepository struct {
	client sortedSetCommands
	now    func() time.Time
}

func NewRedisFavoritesRepository(client redis.UniversalClient) (*RedisFavoritesRepository, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	return &RedisFavoritesRepository{client: client, now: time.Now}, nil
}

// Add использует ZADD NX: повторное добавление не меняет время добавления.
func (r *RedisFavoritesRepository) Add(ctx context.Context, userID, propertyID uuid.UUID) error {
	member := redis.Z{Score: float64(r.now().UnixMilli()), Member: propertyID.String()}
	if err := r.client.ZAddNX(ctx, favoritesKey(userID), member).Err(); err != nil {
		return fmt.Errorf("redis zadd favorites: %w", err)
	}
	return nil
}

func (r *RedisFavoritesRepository) Remove(ctx context.Context, userID, propertyID uuid.UUID) error {
	if err := r.client.ZRem(ctx, favoritesKey(userID), propertyID.String()).Err(); err != nil {
		return fmt.Errorf("redis zrem favorites: %w", err)
	}
	return nil
}

func (r *RedisFavoritesRepository) Contains(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	err := r.client.ZScore(ctx, favoritesKey(userID), propertyID.String()).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis zscore favorites: %w", err)
	}
	return true, nil
}

// FindPaginatedByUser отдает страницу, новые записи первыми.
// Нечитаемые member пропускаются.
func (r *RedisFavoritesRepository) FindPaginatedByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (*domain.PaginatedFavoriteIDs, error) {
	key := favoritesKey(userID)

	total, err := r.client.ZCard(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zcard favorites: %w", err)
	}
	if limit <= 0 || int64(offset) >= total {
		return &domain.PaginatedFavoriteIDs{PropertyIDs: []uuid.UUID{}, TotalCount: int(total)}, nil
	}

	members, err := r.client.ZRevRange(ctx, key, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrevrange favorites: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			contextkeys.LoggerFromContext(ctx).Warn("Skipping unreadable favorite member", port.Fields{
				"component": "RedisFavoritesRepository",
				"user_id":   userID.String(),
				"member":    m,
			})
			continue
		}
		ids = append(ids, id)
	}
	return &domain.PaginatedFavoriteIDs{PropertyIDs: ids, TotalCount: int(total)}, nil
}
