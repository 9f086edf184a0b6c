package rest

import (
	"net/http"

	"search-service/internal/contextkeys"
	"search-service/internal/core/port"
	"search-service/internal/core/port/usecases_port"
	"search-service/internal/core/search"
)

type SavedFiltersHandler struct {
	uc usecases_port.SavedFiltersUseCase
}

func NewSavedFiltersHandler(uc usecases_port.SavedFiltersUseCase) *SavedFiltersHandler {
	return &SavedFiltersHandler{uc: uc}
}

func savedFiltersResponse(raw search.RawFilters) SavedFiltersResponse {
	resp := SavedFiltersResponse{Filters: map[string]interface{}(raw)}
	if resp.Filters == nil {
		resp.Filters = map[string]interface{}{}
	}
	// сохраненные фильтры уже нормализованы и валидны
	if spec, err := search.Validate(raw); err == nil {
		resp.ActiveCount = search.ActiveFilterCount(spec)
	}
	return resp
}

// Get обрабатывает GET /api/v1/saved-filters
func (h *SavedFiltersHandler) Get(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetSavedFilters"})
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user ID in context")
		return
	}

	raw, err := h.uc.Load(r.Context(), userID.String())
	if err != nil {
		writeUseCaseError(w, err, logger, "Failed to load saved filters")
		return
	}
	RespondWithJSON(w, http.StatusOK, savedFiltersResponse(raw))
}

// Put обрабатывает PUT /api/v1/saved-filters
func (h *SavedFiltersHandler) Put(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "SaveFilters"})
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user ID in context")
		return
	}

	raw, ok := decodeSearchBody(w, r, logger)
	if !ok {
		return
	}

	saved, err := h.uc.Save(r.Context(), userID.String(), raw)
	if err != nil {
		writeUseCaseError(w, err, logger, "Failed to save filters")
		return
	}
	RespondWithJSON(w, http.StatusOK, savedFiltersResponse(saved))
}

// Delete обрабатывает DELETE /api/v1/saved-filters
func (h *SavedFiltersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ResetFilters"})
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user ID in context")
		return
	}

	if err := h.uc.Reset(r.Context(), userID.String()); err != nil {
		writeUseCaseError(w, err, logger, "Failed to reset filters")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

