package rest

import (
	"time"

	"search-service/internal/core/domain"
)

// ErrorResponse - ответ с ошибкой. Field заполняется для ошибок валидации.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type PropertyResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	PropertyType  string    `json:"propertyType"`
	ListingType   string    `json:"listingType"`
	Status        string    `json:"status"`
	Price         int64     `json:"price"`
	Area          int       `json:"area"`
	Bedrooms      int       `json:"bedrooms"`
	Bathrooms     int       `json:"bathrooms"`
	ParkingSpaces int       `json:"parkingSpaces"`
	YearBuilt     *int      `json:"yearBuilt,omitempty"`
	HasElevator   bool      `json:"hasElevator"`
	HasBalcony    bool      `json:"hasBalcony"`
	HasStorage    bool      `json:"hasStorage"`
	IsFeatured    bool      `json:"isFeatured"`
	City          string    `json:"city"`
	District      string    `json:"district"`
	Address       string    `json:"address"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	Amenities     []string  `json:"amenities"`
	Views         int64     `json:"views"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toPropertyResponse(p domain.Property) PropertyResponse {
	amenities := p.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return PropertyResponse{
		ID:            p.ID.String(),
		Title:         p.Title,
		Description:   p.Description,
		PropertyType:  string(p.PropertyType),
		ListingType:   string(p.ListingType),
		Status:        string(p.Status),
		Price:         p.Price,
		Area:          p.Area,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		ParkingSpaces: p.ParkingSpaces,
		YearBuilt:     p.YearBuilt,
		HasElevator:   p.HasElevator,
		HasBalcony:    p.HasBalcony,
		HasStorage:    p.HasStorage,
		IsFeatured:    p.IsFeatured,
		City:          p.City,
		District:      p.District,
		Address:       p.Address,
		Latitude:      p.Latitude,
		Longitude:     p.Longitude,
		Amenities:     amenities,
		Views:         p.Views,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toPropertyList(props []domain.Property) []PropertyResponse {
	out := make([]PropertyResponse, len(props))
	for i, p := range props {
		out[i] = toPropertyResponse(p)
	}
	return out
}

// SearchResponse - конверт результатов поиска.
type SearchResponse struct {
	Data       []PropertyResponse `json:"data"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"totalPages"`
}

func toSearchResponse(res *domain.SearchResult) SearchResponse {
	return SearchResponse{
		Data:       toPropertyList(res.Data),
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
	}
}

type CreatePropertyRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	PropertyType  string   `json:"propertyType"`
	ListingType   string   `json:"listingType"`
	Price         int64    `json:"price"`
	Area          int      `json:"area"`
	Bedrooms      int      `json:"bedrooms"`
	Bathrooms     int      `json:"bathrooms"`
	ParkingSpaces int      `json:"parkingSpaces"`
	YearBuilt     *int     `json:"yearBuilt"`
	HasElevator   bool     `json:"hasElevator"`
	HasBalcony    bool     `json:"hasBalcony"`
	HasStorage    bool     `json:"hasStorage"`
	IsFeatured    bool     `json:"isFeatured"`
	City          string   `json:"city"`
	District      string   `json:"district"`
	Address       string   `json:"address"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Amenities     []string `json:"amenities"`
}

func (r CreatePropertyRequest) toDomain() domain.NewPropertyInput {
	return domain.NewPropertyInput{
		Title:         r.Title,
		Description:   r.Description,
		PropertyType:  r.PropertyType,
		ListingType:   r.ListingType,
		Price:         r.Price,
		Area:          r.Area,
		Bedrooms:      r.Bedrooms,
		Bathrooms:     r.Bathrooms,
		ParkingSpaces: r.ParkingSpaces,
		YearBuilt:     r.YearBuilt,
		HasElevator:   r.HasElevator,
		HasBalcony:    r.HasBalcony,
		HasStorage:    r.HasStorage,
		IsFeatured:    r.IsFeatured,
		City:          r.City,
		District:      r.District,
		Address:       r.Address,
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
		Amenities:     r.Amenities,
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

type LocationsResponse struct {
	Cities    []string `json:"cities"`
	Districts []string `json:"districts"`
}

type AmenitiesResponse struct {
	Amenities []string `json:"amenities"`
}

type FavoriteStateResponse struct {
	PropertyID string `json:"propertyId"`
	IsFavorite bool   `json:"isFavorite"`
}

type SavedFiltersResponse struct {
	Filters     map[string]interface{} `json:"filters"`
	ActiveCount int                    `json:"activeCount"`
}

type MortgageRequest struct {
	PropertyPrice      float64 `json:"propertyPrice"`
	DownPaymentPercent float64 `json:"downPaymentPercent"`
	InterestRate       float64 `json:"interestRate"`
	LoanTermYears      int     `json:"loanTermYears"`
}

type PaymentScheduleEntryResponse struct {
	Month            int   `json:"month"`
	MonthlyPayment   int64 `json:"monthlyPayment"`
	PrincipalPayment int64 `json:"principalPayment"`
	InterestPayment  int64 `json:"interestPayment"`
	RemainingBalance int64 `json:"remainingBalance"`
}

type MortgageResponse struct {
	PropertyPrice      float64                        `json:"propertyPrice"`
	DownPayment        int64                          `json:"downPayment"`
	DownPaymentPercent float64                        `json:"downPaymentPercent"`
	LoanAmount         int64                          `json:"loanAmount"`
	InterestRate       float64                        `json:"interestRate"`
	LoanTermYears      int                            `json:"loanTermYears"`
	MonthlyPayment     int64                          `json:"monthlyPayment"`
	TotalPayment       int64                          `json:"totalPayment"`
	TotalInterest      int64                          `json:"totalInterest"`
	PaymentSchedule    []PaymentScheduleEntryResponse `json:"paymentSchedule"`
	RecommendedIncome  int64                          `json:"recommendedIncome"`
}

func toMortgageResponse(res *domain.MortgageResult) MortgageResponse {
	schedule := make([]PaymentScheduleEntryResponse, len(res.PaymentSchedule))
	for i, e := range res.PaymentSchedule {
		schedule[i] = PaymentScheduleEntryResponse(e)
	}
	return MortgageResponse{
		PropertyPrice:      res.PropertyPrice,
		DownPayment:        res.DownPayment,
		DownPaymentPercent: res.DownPaymentPct,
		LoanAmount:         res.LoanAmount,
		InterestRate:       res.InterestRate,
		LoanTermYears:      res.LoanTermYears,
		MonthlyPayment:     res.MonthlyPayment,
		TotalPayment:       res.TotalPayment,
		TotalInterest:      res.TotalInterest,
		PaymentSchedule:    schedule,
		RecommendedIncome:  res.RecommendedIncome,
	}
}

type ComparisonItemRequest struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Price         int64    `json:"price"`
	Area          int      `json:"area"`
	Bedrooms      int      `json:"bedrooms"`
	Bathrooms     int      `json:"bathrooms"`
	ParkingSpaces int      `json:"parkingSpaces"`
	YearBuilt     *int     `json:"yearBuilt"`
	HasElevator   bool     `json:"hasElevator"`
	HasBalcony    bool     `json:"hasBalcony"`
	HasStorage    bool     `json:"hasStorage"`
	Amenities     []string `json:"amenities"`
	City          string   `json:"city"`
	District      string   `json:"district"`
	AgentName     string   `json:"agentName"`
}

type CompareRequest struct {
	Properties []ComparisonItemRequest `json:"properties"`
}

func (r CompareRequest) toDomain() []domain.ComparisonItem {
	items := make([]domain.ComparisonItem, len(r.Properties))
	for i, p := range r.Properties {
		items[i] = domain.ComparisonItem(p)
	}
	return items
}

type ComparedPropertyResponse struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Price          int64  `json:"price"`
	Area           int    `json:"area"`
	Bedrooms       int    `json:"bedrooms"`
	Bathrooms      int    `json:"bathrooms"`
	PricePerSqm    int64  `json:"pricePerSqm"`
	YearBuilt      *int   `json:"yearBuilt,omitempty"`
	HasElevator    bool   `json:"hasElevator"`
	HasParking     bool   `json:"hasParking"`
	HasBalcony     bool   `json:"hasBalcony"`
	HasStorage     bool   `json:"hasStorage"`
	AmenitiesCount int    `json:"amenitiesCount"`
	Location       string `json:"location"`
	AgentName      string `json:"agentName"`
}

type StatRangeResponse struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
	Avg int64 `json:"avg"`
}

type ComparisonMetricsResponse struct {
	PriceRange       StatRangeResponse `json:"priceRange"`
	AreaRange        StatRangeResponse `json:"areaRange"`
	PricePerSqmRange StatRangeResponse `json:"pricePerSqmRange"`
	AvgYearBuilt     *int              `json:"avgYearBuilt,omitempty"`
}

type CompareResponse struct {
	Properties      []ComparedPropertyResponse `json:"properties"`
	Metrics         ComparisonMetricsResponse  `json:"metrics"`
	Recommendations []string                   `json:"recommendations"`
}

func toCompareResponse(res *domain.ComparisonResult) CompareResponse {
	props := make([]ComparedPropertyResponse, len(res.Properties))
	for i, p := range res.Properties {
		props[i] = ComparedPropertyResponse(p)
	}
	recommendations := res.Recommendations
	if recommendations == nil {
		recommendations = []string{}
	}
	return CompareResponse{
		Properties: props,
		Metrics: ComparisonMetricsResponse{
			PriceRange:       StatRangeResponse(res.Metrics.PriceRange),
			AreaRange:        StatRangeResponse(res.Metrics.AreaRange),
			PricePerSqmRange: StatRangeResponse(res.Metrics.PricePerSqmRange),
			AvgYearBuilt:     res.Metrics.AvgYearBuilt,
		},
		Recommendations: recommendations,
	}
}

type TypePriceResponse struct {
	Type     string  `json:"type"`
	AvgPrice float64 `json:"avgPrice"`
	Count    int     `json:"count"`
}

type PriceTrendResponse struct {
	Month    string  `json:"month"`
	AvgPrice float64 `json:"avgPrice"`
	Count    int     `json:"count"`
}

type PopularAreaResponse struct {
	District string  `json:"district"`
	AvgPrice float64 `json:"avgPrice"`
	Count    int     `json:"count"`
}

type TypeShareResponse struct {
	Type    string  `json:"type"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type MarketAnalyticsResponse struct {
	City             string                `json:"city,omitempty"`
	District         string                `json:"district,omitempty"`
	TotalListings    int                   `json:"totalListings"`
	AvgPricesByType  []TypePriceResponse   `json:"avgPricesByType"`
	PriceTrends      []PriceTrendResponse  `json:"priceTrends"`
	PopularAreas     []PopularAreaResponse `json:"popularAreas"`
	TypeDistribution []TypeShareResponse   `json:"typeDistribution"`
}

func toMarketAnalyticsResponse(res *domain.MarketAnalytics) MarketAnalyticsResponse {
	out := MarketAnalyticsResponse{
		City:             res.City,
		District:         res.District,
		TotalListings:    res.TotalListings,
		AvgPricesByType:  make([]TypePriceResponse, 0, len(res.AvgPricesByType)),
		PriceTrends:      make([]PriceTrendResponse, 0, len(res.PriceTrends)),
		PopularAreas:     make([]PopularAreaResponse, 0, len(res.PopularAreas)),
		TypeDistribution: make([]TypeShareResponse, 0, len(res.TypeDistribution)),
	}
	for _, s := range res.AvgPricesByType {
		out.AvgPricesByType = append(out.AvgPricesByType, TypePriceResponse{Type: string(s.Type), AvgPrice: s.AvgPrice, Count: s.Count})
	}
	for _, s := range res.PriceTrends {
		out.PriceTrends = append(out.PriceTrends, PriceTrendResponse{Month: s.Month.Format("2006-01"), AvgPrice: s.AvgPrice, Count: s.Count})
	}
	for _, s := range res.PopularAreas {
		out.PopularAreas = append(out.PopularAreas, PopularAreaResponse{District: s.District, AvgPrice: s.AvgPrice, Count: s.Count})
	}
	for _, s := range res.TypeDistribution {
		out.TypeDistribution = append(out.TypeDistribution, TypeShareResponse{Type: string(s.Type), Count: s.Count, Percent: s.Percent})
	}
	return out
}
