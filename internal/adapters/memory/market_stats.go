package memory

import (
	"context"
	"sort"
	"time"

	"search-service/internal/core/domain"

	"golang.org/x/text/cases"
)

type priceAcc struct {
	sum   float64
	count int
}

func (a *priceAcc) add(price int64) {
	a.sum += float64(price)
	a.count++
}

func (a priceAcc) avg() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}

// GetMarketStats сворачивает активные объекты среза в агрегаты.
// Город и район сравниваются без учета регистра.
func (r *PropertyRepository) GetMarketStats(ctx context.Context, scope domain.MarketScope) (*domain.MarketStats, error) {
	fold := cases.Fold()
	city := fold.String(scope.City)
	district := fold.String(scope.District)

	byType := make(map[domain.PropertyType]*priceAcc)
	byMonth := make(map[time.Time]*priceAcc)
	byDistrict := make(map[string]*priceAcc)

	r.mu.RLock()
	for _, p := range r.properties {
		if p.Status != domain.StatusActive {
			continue
		}
		if city != "" && fold.String(p.City) != city {
			continue
		}
		if district != "" && fold.String(p.District) != district {
			continue
		}

		accumulate(byType, p.PropertyType, p.Price)
		if !p.CreatedAt.Before(scope.Since) {
			created := p.CreatedAt.UTC()
			month := time.Date(created.Year(), created.Month(), 1, 0, 0, 0, 0, time.UTC)
			accumulate(byMonth, month, p.Price)
		}
		if p.District != "" {
			accumulate(byDistrict, p.District, p.Price)
		}
	}
	r.mu.RUnlock()

	stats := &domain.MarketStats{
		ByType:  make([]domain.TypePriceStat, 0, len(byType)),
		Monthly: make([]domain.MonthlyPriceStat, 0, len(byMonth)),
		Areas:   make([]domain.AreaStat, 0, len(byDistrict)),
	}
	for t, acc := range byType {
		stats.ByType = append(stats.ByType, domain.TypePriceStat{Type: t, AvgPrice: acc.avg(), Count: acc.count})
	}
	sort.Slice(stats.ByType, func(i, j int) bool { return stats.ByType[i].Type < stats.ByType[j].Type })

	for m, acc := range byMonth {
		stats.Monthly = append(stats.Monthly, domain.MonthlyPriceStat{Month: m, AvgPrice: acc.avg(), Count: acc.count})
	}
	sort.Slice(stats.Monthly, func(i, j int) bool { return stats.Monthly[i].Month.Before(stats.Monthly[j].Month) })

	for d, acc := range byDistrict {
		stats.Areas = append(stats.Areas, domain.AreaStat{District: d, AvgPrice: acc.avg(), Count: acc.count})
	}
	sort.Slice(stats.Areas, func(i, j int) bool {
		if stats.Areas[i].Count != stats.Areas[j].Count {
			return stats.Areas[i].Count > stats.Areas[j].Count
		}
		return stats.Areas[i].District < stats.Areas[j].District
	})
	if len(stats.Areas) > domain.PopularAreasLimit {
		stats.Areas = stats.Areas[:domain.PopularAreasLimit]
	}

	return stats, nil
}

func accumulate[K comparable](m map[K]*priceAcc, key K, price int64) {
	acc, ok := m[key]
	if !ok {
		acc = &priceAcc{}
		m[key] = acc
	}
	acc.add(price)
}
