package domain

import "time"

const (
	PopularAreasLimit = 10
	PriceTrendMonths  = 6
)

// MarketScope - срез рынка для аналитики. Пустые City и District не ограничивают выборку.
type MarketScope struct {
	City     string
	District string
	// Since - нижняя граница created_at для помесячной динамики цен.
	Since time.Time
}

type TypePriceStat struct {
	Type     PropertyType
	AvgPrice float64
	Count    int
}

type MonthlyPriceStat struct {
	Month    time.Time
	AvgPrice float64
	Count    int
}

type AreaStat struct {
	District string
	AvgPrice float64
	Count    int
}

// MarketStats - сырые агрегаты хранилища по активным объектам среза.
type MarketStats struct {
	ByType  []TypePriceStat
	Monthly []MonthlyPriceStat
	Areas   []AreaStat
}

type TypeShare struct {
	Type    PropertyType
	Count   int
	Percent float64
}

// MarketAnalytics - сводка рынка, которую отдает API.
type MarketAnalytics struct {
	City             string
	District         string
	TotalListings    int
	AvgPricesByType  []TypePriceStat
	PriceTrends      []MonthlyPriceStat
	PopularAreas     []AreaStat
	TypeDistribution []TypeShare
}
