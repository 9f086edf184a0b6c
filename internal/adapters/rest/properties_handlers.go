package rest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"search-service/internal/contextkeys"
	"search-service/internal/contracts"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"
	"search-service/internal/core/port/usecases_port"
	"search-service/internal/core/search"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// PropertiesUseCases - use cases каталога объектов.
type PropertiesUseCases struct {
	SearchByQuery usecases_port.SearchPropertiesUseCase
	SearchByBody  usecases_port.SearchPropertiesUseCase
	GetDetails    usecases_port.GetPropertyDetailsUseCase
	Create        usecases_port.CreatePropertyUseCase
	UpdateStatus  usecases_port.UpdatePropertyStatusUseCase
	Suggestions   usecases_port.GetSuggestionsUseCase
	Locations     usecases_port.GetLocationsUseCase
	Amenities     usecases_port.GetAmenitiesUseCase
	Similar       usecases_port.FindSimilarUseCase
	Nearby        usecases_port.FindNearbyUseCase
}

type PropertiesHandler struct {
	uc PropertiesUseCases
}

func NewPropertiesHandler(uc PropertiesUseCases) *PropertiesHandler {
	return &PropertiesHandler{uc: uc}
}

func parsePropertyID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid property ID format", Field: param})
		return uuid.Nil, false
	}
	return id, true
}

// SearchFromQuery обрабатывает GET /api/v1/properties
func (h *PropertiesHandler) SearchFromQuery(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "SearchFromQuery"})

	result, err := h.uc.SearchByQuery.Execute(r.Context(), rawFiltersFromQuery(r.URL.Query()))
	if err != nil {
		writeUseCaseError(w, err, logger, "Failed to search properties")
		return
	}
	RespondWithJSON(w, http.StatusOK, toSearchResponse(result))
}

// SearchFromBody обрабатывает POST /api/v1/search.
// Тело сначала проверяется по JSON-схеме.
func (h *PropertiesHandler) SearchFromBody(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "SearchFromBody"})

	raw, ok := decodeSearchBody(w, r, logger)
	if !ok {
		return
	}

	result, err := h.uc.SearchByBody.Execute(r.Context(), raw)
	if err != nil {
		writeUseCaseError(w, err, logger, "Failed to search properties")
		return
	}
	RespondWithJSON(w, http.StatusOK, toSearchResponse(result))
}

// decodeSearchBody читает фильтры из тела, проверяет их JSON-схемой
// поискового запроса и разбирает в RawFilters. Пустое тело считается {}.
// При ошибке ответ уже записан.
func decodeSearchBody(w http.ResponseWriter, r *http.Request, logger port.LoggerPort) (search.RawFilters, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Failed to read request body")
		return nil, false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	if err := contracts.Validate(contracts.SearchRequestV1, body); err != nil {
		logger.Warn("Search filters failed schema validation", port.Fields{"error": err.Error()})
		writeUseCaseError(w, err, logger, "Failed to validate request")
		return nil, false
	}

	raw := make(search.RawFilters)
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body", Field: "body"})
		return nil, false
	}
	return raw, true
}

// GetDetails обрабатывает GET /api/v1/properties/{id}
func (h *PropertiesHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePropertyID(w, r, "propertyID")
	if !ok {
		return
	}
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler":     "GetDetails",
		"property_id": id.String(),
	})

	viewer := domain.Viewer{
		UserID:    optionalUserID(r),
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
	property, err := h.uc.GetDetails.Execute(r.Context(), id, viewer)
	if err != nil {
		writeUseCaseError(w, err, logger, "Failed to get property")
		return
	}
	RespondWithJSON(w, http.StatusOK, toPropertyResponse(*property))
}

// Create обрабатывает POST /api/v1/properties
func (h *PropertiesHandler) Create(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateProperty"})

	var req CreatePropertyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body", Field: "body"})
		return
	}

	property, err := h.uc.Create.Execute(r.Context(), req.toDomain())
	if err != nil {
		writeUseCaseError(w, err, logger, "Failed to create property")
		return
	}
	RespondWithJSON(w, http.StatusCreated, toPropertyResponse(*property))
}

// UpdateStatus обрабатывает PATCH /api/v1/properties/{id}/status
func (h *PropertiesHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePropertyID(w, r, "propertyID")
	if !ok {
		return
	}
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler":     "UpdateStatus",
		"property_id": id.String(),
	})

	var req UpdateStatusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body", Field: "body"})
		return
	}

	property, err := h.uc.UpdateStatus.Execute(r.Context(), id, req.Status)
	if err != nil {
		writeUseCaseError(w, err, logger, "Failed to update property status")
		return
	}
	RespondWithJSON(w, http.StatusOK, toPropertyResponse(*property))
}

// GetSuggestions обрабатывает GET /api/v1/search/suggestions?q=&limit=
func (h *PropertiesHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetSuggestions"})

	limit, err := queryInt(r.URL.Query(), "limit", 0)
	if err != nil {
		writeUseCaseError(w, err, logger, "Failed to get suggestions")
		return
	}
	suggestions, err := h.uc.Suggestions.Execute(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeUseCaseError(w, err, logger, "Failed to get suggestions")
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	RespondWithJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: suggestions})
}

// GetLocations обрабатывает GET /api/v1/search/locations
func (h *PropertiesHandler) GetLocations(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetLocations"})

	locations, err := h.uc.Locations.Execute(r.Context())
	if err != nil {
		writeUseCaseError(w, err, logger, "Failed to get locations")
		return
	}
	resp := LocationsResponse{Cities: locations.Cities, Districts: locations.Districts}
	if resp.Cities == nil {
		resp.Cities = []string{}
	}
	if resp.Districts == nil {
		resp.Districts = []string{}
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

// GetAmenities обрабатывает GET /api/v1/search/amenities
func (h *PropertiesHandler) GetAmenities(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetAmenities"})

	amenities, err := h.uc.Amenities.Execute(r.Context())
	if err != nil {
		writeUseCaseError(w, err, logger, "Failed to get amenities")
		return
	}
	if amenities == nil {
		amenities = []string{}
	}
	RespondWithJSON(w, http.StatusOK, AmenitiesResponse{Amenities: amenities})
}

// FindSimilar обрабатывает GET /api/v1/properties/{id}/similar
func (h *PropertiesHandler) FindSimilar(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePropertyID(w, r, "propertyID")
	if !ok {
		return
	}
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler":     "FindSimilar",
		"property_id": id.String(),
	})

	limit, err := queryInt(r.URL.Query(), "limit", 0)
	if err != nil {
		writeUseCaseError(w, err, logger, "Failed to find similar properties")
		return
	}
	similar, err := h.uc.Similar.Execute(r.Context(), id, limit)
	if err != nil {
		writeUseCaseError(w, err, logger, "Failed to find similar properties")
		return
	}
	RespondWithJSON(w, http.StatusOK, toPropertyList(similar))
}

// FindNearby обрабатывает GET /api/v1/properties/nearby?lat=&lng=&radius=&limit=
func (h *PropertiesHandler) FindNearby(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "FindNearby"})
	values := r.URL.Query()

	var query domain.NearbyQuery
	var err error
	if query.Latitude, err = queryFloat(values, "lat", 0, true); err != nil {
		writeUseCaseError(w, err, logger, "Failed to find nearby properties")
		return
	}
	if query.Longitude, err = queryFloat(values, "lng", 0, true); err != nil {
		writeUseCaseError(w, err, logger, "Failed to find nearby properties")
		return
	}
	if query.RadiusKm, err = queryFloat(values, "radius", 0, false); err != nil {
		writeUseCaseError(w, err, logger, "Failed to find nearby properties")
		return
	}
	if query.Limit, err = queryInt(values, "limit", 0); err != nil {
		writeUseCaseError(w, err, logger, "Failed to find nearby properties")
		return
	}

	nearby, err := h.uc.Nearby.Execute(r.Context(), query)
	if err != nil {
		writeUseCaseError(w, err, logger, "Failed to find nearby properties")
		return
	}
	RespondWithJSON(w, http.StatusOK, toPropertyList(nearby))
}
