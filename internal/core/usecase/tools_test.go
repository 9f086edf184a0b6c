package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"search-service/internal/core/domain"
)

func TestCalculateMortgage(t *testing.T) {
	uc := NewCalculateMortgageUseCase()
	res, err := uc.Execute(context.Background(), domain.MortgageInput{
		PropertyPrice:      100_000_000,
		DownPaymentPercent: 20,
		InterestRate:       12,
		LoanTermYears:      10,
	})
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	if res.DownPayment != 20_000_000 || res.LoanAmount != 80_000_000 {
		t.Fatalf("down=%d loan=%d", res.DownPayment, res.LoanAmount)
	}
	// 80M под 1% в месяц на 120 месяцев
	if res.MonthlyPayment < 1_147_000 || res.MonthlyPayment > 1_148_500 {
		t.Fatalf("monthly payment = %d", res.MonthlyPayment)
	}
	if len(res.PaymentSchedule) != 12 {
		t.Fatalf("schedule length = %d", len(res.PaymentSchedule))
	}
	first := res.PaymentSchedule[0]
	if first.InterestPayment != 800_000 {
		t.Fatalf("first month interest = %d", first.InterestPayment)
	}
	if diff := res.TotalInterest - (res.TotalPayment - res.LoanAmount); diff < -1 || diff > 1 {
		t.Fatalf("total interest = %d", res.TotalInterest)
	}
	if res.RecommendedIncome < res.MonthlyPayment*3 || res.RecommendedIncome > res.MonthlyPayment*4 {
		t.Fatalf("recommended income = %d", res.RecommendedIncome)
	}
}

func TestCalculateMortgageZeroInterest(t *testing.T) {
	res, err := NewCalculateMortgageUseCase().Execute(context.Background(), domain.MortgageInput{
		PropertyPrice: 1_200_000, DownPaymentPercent: 0, InterestRate: 0, LoanTermYears: 1,
	})
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	if res.MonthlyPayment != 100_000 || res.TotalInterest != 0 {
		t.Fatalf("monthly=%d interest=%d", res.MonthlyPayment, res.TotalInterest)
	}
	if last := res.PaymentSchedule[len(res.PaymentSchedule)-1]; last.RemainingBalance != 0 {
		t.Fatalf("remaining balance = %d", last.RemainingBalance)
	}
}

func TestCalculateMortgageValidation(t *testing.T) {
	valid := domain.MortgageInput{PropertyPrice: 2_000_000, DownPaymentPercent: 10, InterestRate: 5, LoanTermYears: 15}
	cases := []struct {
		field  string
		mutate func(in *domain.MortgageInput)
	}{
		{"propertyPrice", func(in *domain.MortgageInput) { in.PropertyPrice = 999_999 }},
		{"downPaymentPercent", func(in *domain.MortgageInput) { in.DownPaymentPercent = 101 }},
		{"interestRate", func(in *domain.MortgageInput) { in.InterestRate = -1 }},
		{"loanTermYears", func(in *domain.MortgageInput) { in.LoanTermYears = 31 }},
	}
	for _, c := range cases {
		in := valid
		c.mutate(&in)
		_, err := NewCalculateMortgageUseCase().Execute(context.Background(), in)
		vErr, ok := domain.AsValidationError(err)
		if !ok || vErr.Field != c.field {
			t.Fatalf("expected ValidationError on %q, got %v", c.field, err)
		}
	}
}

func TestCompareProperties(t *testing.T) {
	y2000, y2015 := 2000, 2015
	items := []domain.ComparisonItem{
		{ID: "1", Title: "Old big", Price: 300_000, Area: 150, YearBuilt: &y2000, Amenities: []string{"a"}, City: "Minsk", District: "Center"},
		{ID: "2", Title: "New small", Price: 200_000, Area: 50, YearBuilt: &y2015, Amenities: []string{"a", "b", "c"}, ParkingSpaces: 1, City: "Minsk"},
	}

	res, err := NewComparePropertiesUseCase().Execute(context.Background(), items)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if res.Properties[0].PricePerSqm != 2000 || res.Properties[1].PricePerSqm != 4000 {
		t.Fatalf("price per sqm = %d/%d", res.Properties[0].PricePerSqm, res.Properties[1].PricePerSqm)
	}
	if !res.Properties[1].HasParking || res.Properties[1].AmenitiesCount != 3 {
		t.Fatalf("second property = %+v", res.Properties[1])
	}
	if res.Properties[0].Location != "Minsk, Center" || res.Properties[1].Location != "Minsk" {
		t.Fatalf("locations = %q / %q", res.Properties[0].Location, res.Properties[1].Location)
	}

	m := res.Metrics
	if m.PriceRange != (domain.StatRange{Min: 200_000, Max: 300_000, Avg: 250_000}) {
		t.Fatalf("price range = %+v", m.PriceRange)
	}
	if m.PricePerSqmRange != (domain.StatRange{Min: 2000, Max: 4000, Avg: 3000}) {
		t.Fatalf("price per sqm range = %+v", m.PricePerSqmRange)
	}
	if m.AvgYearBuilt == nil || *m.AvgYearBuilt != 2008 {
		t.Fatalf("avg year = %v", m.AvgYearBuilt)
	}

	want := []string{
		"Best value: Old big",
		"Newest building: New small (2015)",
		"Largest area: Old big (150 m²)",
		"Most amenities: New small (3 amenities)",
	}
	if len(res.Recommendations) != len(want) {
		t.Fatalf("recommendations = %v", res.Recommendations)
	}
	for i := range want {
		if res.Recommendations[i] != want[i] {
			t.Fatalf("recommendation %d = %q, want %q", i, res.Recommendations[i], want[i])
		}
	}
}

func TestComparePropertiesCount(t *testing.T) {
	item := domain.ComparisonItem{Title: "x", Price: 1, Area: 1}
	for _, n := range []int{0, 1, 4} {
		items := make([]domain.ComparisonItem, n)
		for i := range items {
			items[i] = item
		}
		if _, err := NewComparePropertiesUseCase().Execute(context.Background(), items); err == nil {
			t.Fatalf("comparing %d properties must fail", n)
		}
	}
}

func TestGetMarketAnalytics(t *testing.T) {
	storage := &stubStorage{market: &domain.MarketStats{
		ByType: []domain.TypePriceStat{
			{Type: domain.PropertyTypeApartment, AvgPrice: 100.4, Count: 2},
			{Type: domain.PropertyTypeVilla, AvgPrice: 999.6, Count: 1},
		},
		Areas: []domain.AreaStat{{District: "Vanak", AvgPrice: 200.5, Count: 3}},
	}}
	uc := NewGetMarketAnalyticsUseCase(storage)
	uc.now = func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) }

	res, err := uc.Execute(context.Background(), " Tehran ", "")
	if err != nil {
		t.Fatalf("analytics failed: %v", err)
	}

	if storage.scope.City != "Tehran" || storage.scope.District != "" ||
		!storage.scope.Since.Equal(time.Date(2026, 4, 16, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("scope = %+v", storage.scope)
	}
	if res.TotalListings != 3 || res.AvgPricesByType[0].AvgPrice != 100 || res.AvgPricesByType[1].AvgPrice != 1000 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.TypeDistribution[0].Percent != 66.7 || res.TypeDistribution[1].Percent != 33.3 {
		t.Fatalf("distribution = %+v", res.TypeDistribution)
	}
	if res.PopularAreas[0].AvgPrice != 201 || res.PriceTrends == nil {
		t.Fatalf("areas = %+v, trends = %v", res.PopularAreas, res.PriceTrends)
	}

	storage.err = errStorageDown
	if _, err := uc.Execute(context.Background(), "", ""); !errors.Is(err, errStorageDown) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
