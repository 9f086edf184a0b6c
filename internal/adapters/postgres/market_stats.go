package postgres

import (
	"context"
	"fmt"
	"time"

	"search-service/internal/core/domain"
)

// marketScopeWhere - общий фильтр среза. $1 город, $2 район, пустая строка не ограничивает.
const marketScopeWhere = `status = 'active'
	AND ($1 = '' OR lower(city) = lower($1))
	AND ($2 = '' OR lower(district) = lower($2))`

func (r *PropertyRepository) GetMarketStats(ctx context.Context, scope domain.MarketScope) (*domain.MarketStats, error) {
	stats := &domain.MarketStats{
		ByType:  make([]domain.TypePriceStat, 0),
		Monthly: make([]domain.MonthlyPriceStat, 0),
		Areas:   make([]domain.AreaStat, 0),
	}

	rows, err := r.pool.Query(ctx, `
		SELECT property_type, AVG(price)::float8, COUNT(*)
		FROM properties
		WHERE `+marketScopeWhere+`
		GROUP BY property_type
		ORDER BY property_type`,
		scope.City, scope.District)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices by type: %w", err)
	}
	for rows.Next() {
		var (
			s  domain.TypePriceStat
			pt string
		)
		if err := rows.Scan(&pt, &s.AvgPrice, &s.Count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan price by type: %w", err)
		}
		s.Type = domain.PropertyType(pt)
		stats.ByType = append(stats.ByType, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("prices by type rows: %w", err)
	}

	rows, err = r.pool.Query(ctx, `
		SELECT date_trunc('month', created_at AT TIME ZONE 'UTC') AS month, AVG(price)::float8, COUNT(*)
		FROM properties
		WHERE `+marketScopeWhere+` AND created_at >= $3
		GROUP BY month
		ORDER BY month`,
		scope.City, scope.District, scope.Since)
	if err != nil {
		return nil, fmt.Errorf("failed to query price trends: %w", err)
	}
	for rows.Next() {
		var (
			s     domain.MonthlyPriceStat
			month time.Time
		)
		if err := rows.Scan(&month, &s.AvgPrice, &s.Count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan price trend: %w", err)
		}
		s.Month = time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
		stats.Monthly = append(stats.Monthly, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("price trends rows: %w", err)
	}

	rows, err = r.pool.Query(ctx, `
		SELECT district, AVG(price)::float8, COUNT(*)
		FROM properties
		WHERE `+marketScopeWhere+` AND district <> ''
		GROUP BY district
		ORDER BY COUNT(*) DESC, district ASC
		LIMIT $3`,
		scope.City, scope.District, domain.PopularAreasLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query popular areas: %w", err)
	}
	for rows.Next() {
		var s domain.AreaStat
		if err := rows.Scan(&s.District, &s.AvgPrice, &s.Count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan popular area: %w", err)
		}
		stats.Areas = append(stats.Areas, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("popular areas rows: %w", err)
	}

	return stats, nil
}
