package port

import (
	"context"
	"time"

	"search-service/internal/core/domain"
	"search-service/internal/core/search"

	"github.com/google/uuid"
)

// PropertyStoragePort - хранилище объектов недвижимости.
// Ошибки хранилища пробрасываются без изменения вида, кроме
// domain.ErrPropertyNotFound для отсутствующих id.
type PropertyStoragePort interface {
	// Search выполняет скомпилированный план: область статуса, предикаты,
	// сортировка и пагинация.
	Search(ctx context.Context, plan search.Plan) (*domain.SearchResult, error)

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error)
	// GetByIDs возвращает найденные объекты, отсутствующие id пропускаются.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Property, error)

	Create(ctx context.Context, property domain.Property) error
	// UpdateStatus атомарно отказывает с domain.ErrInvalidStatusTransition,
	// если сохраненный статус уже терминальный.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PropertyStatus, updatedAt time.Time) error

	// IncrementViews увеличивает счетчик и сохраняет запись о просмотре.
	// Возвращает новое значение счетчика.
	IncrementViews(ctx context.Context, view domain.PropertyView) (int64, error)

	GetSuggestions(ctx context.Context, query string, limit int) ([]string, error)
	GetLocations(ctx context.Context) (*domain.Locations, error)
	GetAmenities(ctx context.Context) ([]string, error)

	FindSimilar(ctx context.Context, criteria domain.SimilarCriteria) ([]domain.Property, error)
	// FindInCells возвращает активные объекты с координатами, чей geohash
	// начинается с одной из ячеек. Пустой список ячеек - все такие объекты.
	FindInCells(ctx context.Context, cells []string) ([]domain.Property, error)

	// GetMarketStats агрегирует активные объекты среза: по типам, по месяцам
	// начиная со scope.Since и топ районов (не больше domain.PopularAreasLimit).
	GetMarketStats(ctx context.Context, scope domain.MarketScope) (*domain.MarketStats, error)
}
