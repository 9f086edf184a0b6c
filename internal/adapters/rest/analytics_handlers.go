package rest

import (
	"net/http"

	"search-service/internal/contextkeys"
	"search-service/internal/core/port"
	"search-service/internal/core/port/usecases_port"
)

type AnalyticsHandler struct {
	marketUC usecases_port.GetMarketAnalyticsUseCase
}

func NewAnalyticsHandler(marketUC usecases_port.GetMarketAnalyticsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{marketUC: marketUC}
}

// GetMarket обрабатывает GET /api/v1/analytics/market?city=&district=
func (h *AnalyticsHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetMarketAnalytics"})

	q := r.URL.Query()
	result, err := h.marketUC.Execute(r.Context(), q.Get("city"), q.Get("district"))
	if err != nil {
		writeUseCaseError(w, err, logger, "Failed to get market analytics")
		return
	}
	RespondWithJSON(w, http.StatusOK, toMarketAnalyticsResponse(result))
}
