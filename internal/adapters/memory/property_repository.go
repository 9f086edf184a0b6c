package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"
	"search-service/internal/core/search"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// PropertyRepository - хранилище объектов в памяти процесса.
// Порядок вставки сохраняется, поэтому сортировка с равными ключами
// дает один и тот же результат.
type PropertyRepository struct {
	mu         sync.RWMutex
	properties []domain.Property
	index      map[uuid.UUID]int
	views      []domain.PropertyView
}

func NewPropertyRepository(seed []domain.Property) (*PropertyRepository, error) {
	r := &PropertyRepository{
		properties: make([]domain.Property, 0, len(seed)),
		index:      make(map[uuid.UUID]int, len(seed)),
	}
	for _, p := range seed {
		if _, exists := r.index[p.ID]; exists {
			return nil, fmt.Errorf("duplicate property id %s in seed", p.ID)
		}
		r.index[p.ID] = len(r.properties)
		r.properties = append(r.properties, cloneProperty(p))
	}
	return r, nil
}

func (r *PropertyRepository) Search(ctx context.Context, plan search.Plan) (*domain.SearchResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":  "MemoryPropertyRepository",
		"method":     "Search",
		"predicates": len(plan.Predicates),
	})

	r.mu.RLock()
	result := search.Assemble(plan, r.properties)
	r.mu.RUnlock()

	for i := range result.Data {
		result.Data[i] = cloneProperty(result.Data[i])
	}

	repoLogger.Debug("Search completed", port.Fields{"total": result.Total, "returned": len(result.Data)})
	return &result, nil
}

func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, domain.ErrPropertyNotFound
	}
	p := cloneProperty(r.properties[i])
	return &p, nil
}

func (r *PropertyRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Property, 0, len(ids))
	for _, id := range ids {
		if i, ok := r.index[id]; ok {
			out = append(out, cloneProperty(r.properties[i]))
		}
	}
	return out, nil
}

func (r *PropertyRepository) Create(ctx context.Context, property domain.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[property.ID]; exists {
		return fmt.Errorf("create property %s: %w", property.ID, domain.ErrPropertyAlreadyExists)
	}
	r.index[property.ID] = len(r.properties)
	r.properties = append(r.properties, cloneProperty(property))
	return nil
}

func (r *PropertyRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PropertyStatus, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return domain.ErrPropertyNotFound
	}
	if current := r.properties[i].Status; !current.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStatusTransition, current, status)
	}
	r.properties[i].Status = status
	r.properties[i].UpdatedAt = updatedAt
	return nil
}

func (r *PropertyRepository) IncrementViews(ctx context.Context, view domain.PropertyView) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[view.PropertyID]
	if !ok {
		return 0, domain.ErrPropertyNotFound
	}
	r.properties[i].Views++
	r.views = append(r.views, view)
	return r.properties[i].Views, nil
}

// Views - записанные просмотры объекта.
func (r *PropertyRepository) Views(id uuid.UUID) []domain.PropertyView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.PropertyView
	for _, v := range r.views {
		if v.PropertyID == id {
			out = append(out, v)
		}
	}
	return out
}

// GetSuggestions - города, затем районы, содержащие query.
func (r *PropertyRepository) GetSuggestions(ctx context.Context, query string, limit int) ([]string, error) {
	needle := cases.Fold().String(query)
	locations := r.activeLocations()

	out := make([]string, 0, limit)
	seen := make(map[string]struct{})
	for _, group := range [][]string{locations.Cities, locations.Districts} {
		for _, name := range group {
			if len(out) >= limit {
				return out, nil
			}
			if _, dup := seen[name]; dup {
				continue
			}
			if strings.Contains(cases.Fold().String(name), needle) {
				seen[name] = struct{}{}
				out = append(out, name)
			}
		}
	}
	return out, nil
}

func (r *PropertyRepository) GetLocations(ctx context.Context) (*domain.Locations, error) {
	locations := r.activeLocations()
	return &locations, nil
}

func (r *PropertyRepository) activeLocations() domain.Locations {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cities := make(map[string]struct{})
	districts := make(map[string]struct{})
	for _, p := range r.properties {
		if p.Status != domain.StatusActive {
			continue
		}
		if p.City != "" {
			cities[p.City] = struct{}{}
		}
		if p.District != "" {
			districts[p.District] = struct{}{}
		}
	}
	return domain.Locations{Cities: sortedKeys(cities), Districts: sortedKeys(districts)}
}

// GetAmenities - удобства активных объектов, самые частые первыми.
func (r *PropertyRepository) GetAmenities(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	counts := make(map[string]int)
	for _, p := range r.properties {
		if p.Status != domain.StatusActive {
			continue
		}
		for _, a := range p.Amenities {
			counts[a]++
		}
	}
	r.mu.RUnlock()

	out := make([]string, 0, len(counts))
	for a := range counts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] != counts[out[j]] {
			return counts[out[i]] > counts[out[j]]
		}
		return out[i] < out[j]
	})
	return out, nil
}

func (r *PropertyRepository) FindSimilar(ctx context.Context, criteria domain.SimilarCriteria) ([]domain.Property, error) {
	r.mu.RLock()
	matched := make([]domain.Property, 0)
	for _, p := range r.properties {
		if p.ID == criteria.ExcludeID || p.Status != domain.StatusActive {
			continue
		}
		if p.PropertyType != criteria.PropertyType || p.City != criteria.City {
			continue
		}
		if p.Price < criteria.PriceMin || p.Price > criteria.PriceMax {
			continue
		}
		matched = append(matched, cloneProperty(p))
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return absDiff(matched[i].Price, criteria.TargetPrice) < absDiff(matched[j].Price, criteria.TargetPrice)
	})
	if criteria.Limit > 0 && len(matched) > criteria.Limit {
		matched = matched[:criteria.Limit]
	}
	return matched, nil
}

func (r *PropertyRepository) FindInCells(ctx context.Context, cells []string) ([]domain.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Property, 0)
	for _, p := range r.properties {
		if p.Status != domain.StatusActive || !p.HasCoordinates() {
			continue
		}
		if len(cells) > 0 && !hasAnyPrefix(p.Geohash, cells) {
			continue
		}
		out = append(out, cloneProperty(p))
	}
	return out, nil
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// cloneProperty отвязывает срезы и указатели от хранилища.
func cloneProperty(p domain.Property) domain.Property {
	if p.Amenities != nil {
		p.Amenities = append([]string(nil), p.Amenities...)
	}
	if p.YearBuilt != nil {
		v := *p.YearBuilt
		p.YearBuilt = &v
	}
	if p.Latitude != nil {
		v := *p.Latitude
		p.Latitude = &v
	}
	if p.Longitude != nil {
		v := *p.Longitude
		p.Longitude = &v
	}
	return p
}
