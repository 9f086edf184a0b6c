package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"

	"github.com/google/uuid"
)

const favoritesKeyPrefix = "real-estate-favorites:"

type favoriteRecord struct {
	PropertyID uuid.UUID `json:"property_id"`
	AddedAt    time.Time `json:"added_at"`
}

// FavoritesRepository хранит избранное пользователя JSON-списком в
// KeyValueStorePort: список читается целиком и перезаписывается при
// каждом изменении. Изменения сериализуются мьютексом процесса, поэтому
// репозиторий годится только для одного экземпляра сервиса. Для Redis
// есть RedisFavoritesRepository.
type FavoritesRepository struct {
	store port.KeyValueStorePort
	mu    sync.Mutex
	now   func() time.Time
}

func NewFavoritesRepository(store port.KeyValueStorePort) (*FavoritesRepository, error) {
	if store == nil {
		return nil, fmt.Errorf("key-value store cannot be nil")
	}
	return &FavoritesRepository{store: store, now: time.Now}, nil
}

func favoritesKey(userID uuid.UUID) string {
	return favoritesKeyPrefix + userID.String()
}

// load возвращает записи от старых к новым. Испорченное значение
// считается пустым списком.
func (r *FavoritesRepository) load(ctx context.Context, userID uuid.UUID) ([]favoriteRecord, error) {
	data, found, err := r.store.Get(ctx, favoritesKey(userID))
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	if !found {
		return nil, nil
	}
	var records []favoriteRecord
	if err := json.Unmarshal(data, &records); err != nil {
		contextkeys.LoggerFromContext(ctx).Warn("Stored favorites are corrupt, treating as empty", port.Fields{
			"component": "KVFavoritesRepository",
			"user_id":   userID.String(),
			"error":     err.Error(),
		})
		return nil, nil
	}
	return records, nil
}

func (r *FavoritesRepository) save(ctx context.Context, userID uuid.UUID, records []favoriteRecord) error {
	if len(records) == 0 {
		if err := r.store.Delete(ctx, favoritesKey(userID)); err != nil {
			return fmt.Errorf("save favorites: %w", err)
		}
		return nil
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal favorites: %w", err)
	}
	if err := r.store.Set(ctx, favoritesKey(userID), data); err != nil {
		return fmt.Errorf("save favorites: %w", err)
	}
	return nil
}

func indexOf(records []favoriteRecord, propertyID uuid.UUID) int {
	for i, rec := range records {
		if rec.PropertyID == propertyID {
			return i
		}
	}
	return -1
}

func (r *FavoritesRepository) Add(ctx context.Context, userID, propertyID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx, userID)
	if err != nil {
		return err
	}
	if indexOf(records, propertyID) >= 0 {
		return nil
	}
	records = append(records, favoriteRecord{PropertyID: propertyID, AddedAt: r.now().UTC()})
	return r.save(ctx, userID, records)
}

func (r *FavoritesRepository) Remove(ctx context.Context, userID, propertyID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx, userID)
	if err != nil {
		return err
	}
	i := indexOf(records, propertyID)
	if i < 0 {
		return nil
	}
	records = append(records[:i], records[i+1:]...)
	return r.save(ctx, userID, records)
}

func (r *FavoritesRepository) Contains(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	records, err := r.load(ctx, userID)
	if err != nil {
		return false, err
	}
	return indexOf(records, propertyID) >= 0, nil
}

func (r *FavoritesRepository) FindPaginatedByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (*domain.PaginatedFavoriteIDs, error) {
	records, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	total := len(records)
	ids := make([]uuid.UUID, 0, limit)
	for i := total - 1 - offset; i >= 0 && len(ids) < limit; i-- {
		ids = append(ids, records[i].PropertyID)
	}
	return &domain.PaginatedFavoriteIDs{PropertyIDs: ids, TotalCount: total}, nil
}
