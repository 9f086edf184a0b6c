package usecase

import (
	"context"
	"math"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"
)

const (
	minMortgagePropertyPrice = 1_000_000
	maxMortgageInterestRate  = 50
	maxMortgageTermYears     = 30
	scheduleMonths           = 12
	// рекомендуемый доход - во столько раз больше ежемесячного платежа
	incomeToPaymentRatio = 3.5
)

type CalculateMortgageUseCase struct{}

func NewCalculateMortgageUseCase() *CalculateMortgageUseCase {
	return &CalculateMortgageUseCase{}
}

func (uc *CalculateMortgageUseCase) Execute(ctx context.Context, input domain.MortgageInput) (*domain.MortgageResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "CalculateMortgage"})

	if err := validateMortgageInput(input); err != nil {
		ucLogger.Warn("Mortgage input rejected", port.Fields{"error": err.Error()})
		return nil, err
	}

	result := calculateMortgage(input)

	ucLogger.Info("Mortgage calculated", port.Fields{
		"loan_amount":     result.LoanAmount,
		"monthly_payment": result.MonthlyPayment,
	})
	return &result, nil
}

func validateMortgageInput(in domain.MortgageInput) error {
	switch {
	case math.IsNaN(in.PropertyPrice) || in.PropertyPrice < minMortgagePropertyPrice:
		return domain.NewValidationError("propertyPrice", "must be >= %d", minMortgagePropertyPrice)
	case math.IsNaN(in.DownPaymentPercent) || in.DownPaymentPercent < 0 || in.DownPaymentPercent > 100:
		return domain.NewValidationError("downPaymentPercent", "must be between 0 and 100")
	case math.IsNaN(in.InterestRate) || in.InterestRate < 0 || in.InterestRate > maxMortgageInterestRate:
		return domain.NewValidationError("interestRate", "must be between 0 and %d", maxMortgageInterestRate)
	case in.LoanTermYears < 1 || in.LoanTermYears > maxMortgageTermYears:
		return domain.NewValidationError("loanTermYears", "must be between 1 and %d", maxMortgageTermYears)
	}
	return nil
}

// calculateMortgage - аннуитет M = P·r(1+r)^n / ((1+r)^n − 1), при нулевой ставке P/n.
func calculateMortgage(in domain.MortgageInput) domain.MortgageResult {
	downPayment := in.PropertyPrice * in.DownPaymentPercent / 100
	loanAmount := in.PropertyPrice - downPayment
	monthlyRate := in.InterestRate / 100 / 12
	totalPayments := in.LoanTermYears * 12

	var monthlyPayment float64
	if monthlyRate == 0 {
		monthlyPayment = loanAmount / float64(totalPayments)
	} else {
		growth := math.Pow(1+monthlyRate, float64(totalPayments))
		monthlyPayment = loanAmount * monthlyRate * growth / (growth - 1)
	}

	totalPayment := monthlyPayment * float64(totalPayments)
	totalInterest := totalPayment - loanAmount

	months := scheduleMonths
	if totalPayments < months {
		months = totalPayments
	}
	schedule := make([]domain.PaymentScheduleEntry, 0, months)
	remaining := loanAmount
	for month := 1; month <= months; month++ {
		interest := remaining * monthlyRate
		principal := monthlyPayment - interest
		remaining -= principal

		schedule = append(schedule, domain.PaymentScheduleEntry{
			Month:            month,
			MonthlyPayment:   round(monthlyPayment),
			PrincipalPayment: round(principal),
			InterestPayment:  round(interest),
			RemainingBalance: round(remaining),
		})
	}

	return domain.MortgageResult{
		PropertyPrice:     in.PropertyPrice,
		DownPayment:       round(downPayment),
		LoanAmount:        round(loanAmount),
		MonthlyPayment:    round(monthlyPayment),
		TotalPayment:      round(totalPayment),
		TotalInterest:     round(totalInterest),
		PaymentSchedule:   schedule,
		LoanTermYears:     in.LoanTermYears,
		InterestRate:      in.InterestRate,
		DownPaymentPct:    in.DownPaymentPercent,
		RecommendedIncome: round(monthlyPayment * incomeToPaymentRatio),
	}
}

func round(v float64) int64 {
	return int64(math.Round(v))
}
