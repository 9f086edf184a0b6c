package rest

import (
	"encoding/json"
	"net/http"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"
	"search-service/internal/core/port/usecases_port"
)

type ToolsHandler struct {
	mortgageUC usecases_port.CalculateMortgageUseCase
	compareUC  usecases_port.ComparePropertiesUseCase
}

func NewToolsHandler(mortgageUC usecases_port.CalculateMortgageUseCase, compareUC usecases_port.ComparePropertiesUseCase) *ToolsHandler {
	return &ToolsHandler{mortgageUC: mortgageUC, compareUC: compareUC}
}

// CalculateMortgage обрабатывает POST /api/v1/tools/mortgage
func (h *ToolsHandler) CalculateMortgage(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CalculateMortgage"})

	var req MortgageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body", Field: "body"})
		return
	}

	result, err := h.mortgageUC.Execute(r.Context(), domain.MortgageInput{
		PropertyPrice:      req.PropertyPrice,
		DownPaymentPercent: req.DownPaymentPercent,
		InterestRate:       req.InterestRate,
		LoanTermYears:      req.LoanTermYears,
	})
	if err != nil {
		writeUseCaseError(w, err, logger, "Failed to calculate mortgage")
		return
	}
	RespondWithJSON(w, http.StatusOK, toMortgageResponse(result))
}

// CompareProperties обрабатывает POST /api/v1/tools/compare
func (h *ToolsHandler) CompareProperties(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CompareProperties"})

	var req CompareRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body", Field: "body"})
		return
	}

	result, err := h.compareUC.Execute(r.Context(), req.toDomain())
	if err != nil {
		writeUseCaseError(w, err, logger, "Failed to compare properties")
		return
	}
	RespondWithJSON(w, http.StatusOK, toCompareResponse(result))
}
