package rest

import (
	"encoding/json"
	"net/http"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"
	"search-service/internal/core/port/usecases_port"

	"github.com/google/uuid"
)

type FavoritesHandler struct {
	addUC    usecases_port.AddToFavoritesUseCase
	removeUC usecases_port.RemoveFromFavoritesUseCase
	toggleUC usecases_port.ToggleFavoriteUseCase
	listUC   usecases_port.ListFavoritesUseCase
}

func NewFavoritesHandler(
	addUC usecases_port.AddToFavoritesUseCase,
	removeUC usecases_port.RemoveFromFavoritesUseCase,
	toggleUC usecases_port.ToggleFavoriteUseCase,
	listUC usecases_port.ListFavoritesUseCase,
) *FavoritesHandler {
	return &FavoritesHandler{addUC: addUC, removeUC: removeUC, toggleUC: toggleUC, listUC: listUC}
}

// AddFavoriteRequest - тело POST /api/v1/favorites.
type AddFavoriteRequest struct {
	PropertyID string `json:"propertyId"`
}

func (h *FavoritesHandler) userLogger(w http.ResponseWriter, r *http.Request, handler string) (uuid.UUID, port.LoggerPort, bool) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": handler})
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		logger.Error("Invalid or missing user ID in context", nil, nil)
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user ID in context")
		return uuid.Nil, nil, false
	}
	return userID, logger.WithFields(port.Fields{"user_id": userID.String()}), true
}

// List обрабатывает GET /api/v1/favorites?page=&limit=
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, logger, ok := h.userLogger(w, r, "ListFavorites")
	if !ok {
		return
	}

	page, err := queryInt(r.URL.Query(), "page", domain.DefaultPage)
	if err != nil {
		writeUseCaseError(w, err, logger, "Failed to retrieve favorites")
		return
	}
	limit, err := queryInt(r.URL.Query(), "limit", domain.DefaultLimit)
	if err != nil {
		writeUseCaseError(w, err, logger, "Failed to retrieve favorites")
		return
	}

	result, err := h.listUC.Execute(r.Context(), userID, page, limit)
	if err != nil {
		writeUseCaseError(w, err, logger, "Failed to retrieve favorites")
		return
	}
	RespondWithJSON(w, http.StatusOK, toSearchResponse(result))
}

// AddFromBody обрабатывает POST /api/v1/favorites с {"propertyId": "..."}
func (h *FavoritesHandler) AddFromBody(w http.ResponseWriter, r *http.Request) {
	userID, logger, ok := h.userLogger(w, r, "AddFavorite")
	if !ok {
		return
	}

	var req AddFavoriteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body", Field: "body"})
		return
	}
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid property ID format", Field: "propertyId"})
		return
	}
	h.add(w, r, logger, userID, propertyID)
}

// Add обрабатывает POST /api/v1/favorites/{propertyID}
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, logger, ok := h.userLogger(w, r, "AddFavorite")
	if !ok {
		return
	}
	propertyID, ok := parsePropertyID(w, r, "propertyID")
	if !ok {
		return
	}
	h.add(w, r, logger, userID, propertyID)
}

func (h *FavoritesHandler) add(w http.ResponseWriter, r *http.Request, logger port.LoggerPort, userID, propertyID uuid.UUID) {
	if err := h.addUC.Execute(r.Context(), userID, propertyID); err != nil {
		writeUseCaseError(w, err, logger, "Failed to add to favorites")
		return
	}
	RespondWithJSON(w, http.StatusCreated, FavoriteStateResponse{PropertyID: propertyID.String(), IsFavorite: true})
}

// Remove обрабатывает DELETE /api/v1/favorites/{propertyID}
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, logger, ok := h.userLogger(w, r, "RemoveFavorite")
	if !ok {
		return
	}
	propertyID, ok := parsePropertyID(w, r, "propertyID")
	if !ok {
		return
	}

	if err := h.removeUC.Execute(r.Context(), userID, propertyID); err != nil {
		writeUseCaseError(w, err, logger, "Failed to remove from favorites")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Toggle обрабатывает POST /api/v1/favorites/{propertyID}/toggle
func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, logger, ok := h.userLogger(w, r, "ToggleFavorite")
	if !ok {
		return
	}
	propertyID, ok := parsePropertyID(w, r, "propertyID")
	if !ok {
		return
	}

	isFavorite, err := h.toggleUC.Execute(r.Context(), userID, propertyID)
	if err != nil {
		writeUseCaseError(w, err, logger, "Failed to toggle favorite")
		return
	}
	RespondWithJSON(w, http.StatusOK, FavoriteStateResponse{PropertyID: propertyID.String(), IsFavorite: isFavorite})
}
