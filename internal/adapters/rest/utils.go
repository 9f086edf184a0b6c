package rest

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"search-service/internal/core/domain"
	"search-service/internal/core/port"
	"search-service/internal/core/search"
)

// WriteJSONError отправляет JSON-ответ с полем "error" и заданным статусом
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

// RespondWithJSON отправляет JSON-ответ
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(response)
}

// writeUseCaseError переводит ошибку use case в HTTP-статус.
// Неизвестные ошибки логируются, клиенту уходит общий текст.
func writeUseCaseError(w http.ResponseWriter, err error, logger port.LoggerPort, fallback string) {
	if vErr, ok := domain.AsValidationError(err); ok {
		RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: vErr.Error(), Field: vErr.Field})
		return
	}
	switch {
	case errors.Is(err, domain.ErrPropertyNotFound):
		WriteJSONError(w, http.StatusNotFound, "Property not found")
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		WriteJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrPropertyAlreadyExists):
		WriteJSONError(w, http.StatusConflict, "Property already exists")
	default:
		logger.Error(fallback, err, nil)
		WriteJSONError(w, http.StatusInternalServerError, fallback)
	}
}

// rawFiltersFromQuery: один параметр - строка, повторенный - []string.
func rawFiltersFromQuery(values url.Values) search.RawFilters {
	raw := make(search.RawFilters, len(values))
	for key, vals := range values {
		switch len(vals) {
		case 0:
		case 1:
			raw[key] = vals[0]
		default:
			raw[key] = vals
		}
	}
	return raw
}

func queryInt(values url.Values, key string, def int) (int, error) {
	s := values.Get(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, domain.NewValidationError(key, "must be an integer")
	}
	return v, nil
}

func queryFloat(values url.Values, key string, def float64, required bool) (float64, error) {
	s := values.Get(key)
	if s == "" {
		if required {
			return 0, domain.NewValidationError(key, "is required")
		}
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, domain.NewValidationError(key, "must be a number")
	}
	return v, nil
}
