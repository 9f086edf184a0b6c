package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"search-service/internal/core/domain"
	"search-service/internal/core/search"

	"github.com/google/uuid"
)

var errStorageDown = errors.New("storage down")

// stubStorage реализует PropertyStoragePort поверх среза.
type stubStorage struct {
	props     []domain.Property
	views     []domain.PropertyView
	err       error
	viewErr   error
	lastCells []string
	lastPlan  search.Plan
	similar   domain.SimilarCriteria
	scope     domain.MarketScope
	market    *domain.MarketStats
}

func (s *stubStorage) find(id uuid.UUID) int {
	for i, p := range s.props {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *stubStorage) Search(ctx context.Context, plan search.Plan) (*domain.SearchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastPlan = plan
	res := search.Assemble(plan, s.props)
	return &res, nil
}

func (s *stubStorage) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	if s.err != nil {
		return nil, s.err
	}
	i := s.find(id)
	if i < 0 {
		return nil, domain.ErrPropertyNotFound
	}
	p := s.props[i]
	return &p, nil
}

func (s *stubStorage) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Property, error) {
	var out []domain.Property
	// обратный порядок, чтобы проверить восстановление порядка
	for i := len(ids) - 1; i >= 0; i-- {
		if j := s.find(ids[i]); j >= 0 {
			out = append(out, s.props[j])
		}
	}
	return out, s.err
}

func (s *stubStorage) Create(ctx context.Context, p domain.Property) error {
	if s.err != nil {
		return s.err
	}
	s.props = append(s.props, p)
	return nil
}

func (s *stubStorage) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PropertyStatus, updatedAt time.Time) error {
	i := s.find(id)
	if i < 0 {
		return domain.ErrPropertyNotFound
	}
	if current := s.props[i].Status; !current.CanTransitionTo(status) {
		return domain.ErrInvalidStatusTransition
	}
	s.props[i].Status = status
	s.props[i].UpdatedAt = updatedAt
	return nil
}

func (s *stubStorage) IncrementViews(ctx context.Context, view domain.PropertyView) (int64, error) {
	if s.viewErr != nil {
		return 0, s.viewErr
	}
	i := s.find(view.PropertyID)
	if i < 0 {
		return 0, domain.ErrPropertyNotFound
	}
	s.props[i].Views++
	s.views = append(s.views, view)
	return s.props[i].Views, nil
}

func (s *stubStorage) GetSuggestions(ctx context.Context, query string, limit int) ([]string, error) {
	var out []string
	for _, p := range s.props {
		if strings.Contains(strings.ToLower(p.City), strings.ToLower(query)) && len(out) < limit {
			out = append(out, p.City)
		}
	}
	return out, s.err
}

func (s *stubStorage) GetLocations(ctx context.Context) (*domain.Locations, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Locations{Cities: []string{"Minsk"}, Districts: []string{"Center"}}, nil
}

func (s *stubStorage) GetAmenities(ctx context.Context) ([]string, error) {
	return []string{"pool"}, s.err
}

func (s *stubStorage) FindSimilar(ctx context.Context, c domain.SimilarCriteria) ([]domain.Property, error) {
	s.similar = c
	var out []domain.Property
	for _, p := range s.props {
		if p.ID != c.ExcludeID && p.PropertyType == c.PropertyType && p.City == c.City &&
			p.Price >= c.PriceMin && p.Price <= c.PriceMax {
			out = append(out, p)
		}
	}
	return out, s.err
}

func (s *stubStorage) FindInCells(ctx context.Context, cells []string) ([]domain.Property, error) {
	s.lastCells = cells
	var out []domain.Property
	for _, p := range s.props {
		if !p.HasCoordinates() {
			continue
		}
		if len(cells) == 0 {
			out = append(out, p)
			continue
		}
		for _, c := range cells {
			if strings.HasPrefix(p.Geohash, c) {
				out = append(out, p)
				break
			}
		}
	}
	return out, s.err
}

type stubPublisher struct {
	events []domain.PropertyViewedEvent
	err    error
}

func (p *stubPublisher) PublishPropertyViewed(ctx context.Context, e domain.PropertyViewedEvent) error {
	p.events = append(p.events, e)
	return p.err
}

type stubMetrics struct {
	calls int
	total int
}

func (m *stubMetrics) ObserveSearch(source string, total, returned int) {
	m.calls++
	m.total = total
}

// stubFavorites - избранное в памяти, новые записи первыми.
type stubFavorites struct {
	byUser map[uuid.UUID][]uuid.UUID
}

func newStubFavorites() *stubFavorites {
	return &stubFavorites{byUser: make(map[uuid.UUID][]uuid.UUID)}
}

func (f *stubFavorites) Add(ctx context.Context, userID, propertyID uuid.UUID) error {
	if ok, _ := f.Contains(ctx, userID, propertyID); ok {
		return nil
	}
	f.byUser[userID] = append([]uuid.UUID{propertyID}, f.byUser[userID]...)
	return nil
}

func (f *stubFavorites) Remove(ctx context.Context, userID, propertyID uuid.UUID) error {
	ids := f.byUser[userID]
	for i, id := range ids {
		if id == propertyID {
			f.byUser[userID] = append(ids[:i:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *stubFavorites) Contains(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	for _, id := range f.byUser[userID] {
		if id == propertyID {
			return true, nil
		}
	}
	return false, nil
}

func (f *stubFavorites) FindPaginatedByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (*domain.PaginatedFavoriteIDs, error) {
	ids := f.byUser[userID]
	res := &domain.PaginatedFavoriteIDs{TotalCount: len(ids)}
	if offset < len(ids) {
		end := offset + limit
		if end > len(ids) {
			end = len(ids)
		}
		res.PropertyIDs = ids[offset:end]
	}
	return res, nil
}

type stubKV struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newStubKV() *stubKV { return &stubKV{data: make(map[string][]byte)} }

func (s *stubKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, s.err
}

func (s *stubKV) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.data[key] = value
	return nil
}

func (s *stubKV) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return s.err
}

func activeProperty(title string, price int64, city string) domain.Property {
	return domain.Property{
		ID:           uuid.New(),
		Title:        title,
		PropertyType: domain.PropertyTypeApartment,
		ListingType:  domain.ListingTypeSale,
		Status:       domain.StatusActive,
		Price:        price,
		Area:         50,
		City:         city,
		CreatedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *stubStorage) GetMarketStats(ctx context.Context, scope domain.MarketScope) (*domain.MarketStats, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.scope = scope
	if s.market != nil {
		return s.market, nil
	}
	return &domain.MarketStats{}, nil
}
