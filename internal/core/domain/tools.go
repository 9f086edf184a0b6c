package domain

// MortgageInput - параметры ипотечного калькулятора.
type MortgageInput struct {
	PropertyPrice      float64
	DownPaymentPercent float64
	InterestRate       float64 // годовая ставка в процентах
	LoanTermYears      int
}

type PaymentScheduleEntry struct {
	Month            int
	MonthlyPayment   int64
	PrincipalPayment int64
	InterestPayment  int64
	RemainingBalance int64
}

type MortgageResult struct {
	PropertyPrice     float64
	DownPayment       int64
	LoanAmount        int64
	MonthlyPayment    int64
	TotalPayment      int64
	TotalInterest     int64
	PaymentSchedule   []PaymentScheduleEntry
	LoanTermYears     int
	InterestRate      float64
	DownPaymentPct    float64
	RecommendedIncome int64
}

// ComparisonItem - объект в сравнении.
type ComparisonItem struct {
	ID            string
	Title         string
	Price         int64
	Area          int
	Bedrooms      int
	Bathrooms     int
	ParkingSpaces int
	YearBuilt     *int
	HasElevator   bool
	HasBalcony    bool
	HasStorage    bool
	Amenities     []string
	City          string
	District      string
	AgentName     string
}

type ComparedProperty struct {
	ID             string
	Title          string
	Price          int64
	Area           int
	Bedrooms       int
	Bathrooms      int
	PricePerSqm    int64
	YearBuilt      *int
	HasElevator    bool
	HasParking     bool
	HasBalcony     bool
	HasStorage     bool
	AmenitiesCount int
	Location       string
	AgentName      string
}

type StatRange struct {
	Min int64
	Max int64
	Avg int64
}

type ComparisonMetrics struct {
	PriceRange       StatRange
	AreaRange        StatRange
	PricePerSqmRange StatRange
	AvgYearBuilt     *int
}

type ComparisonResult struct {
	Properties      []ComparedProperty
	Metrics         ComparisonMetrics
	Recommendations []string
}
