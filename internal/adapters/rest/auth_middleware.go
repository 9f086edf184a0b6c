package rest

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const (
	userIDKey    = contextKey("userID")
	userIDHeader = "X-User-ID"
)

// AuthMiddleware достает userID из X-User-ID, который выставляет API Gateway.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userIDStr := r.Header.Get(userIDHeader)
		if userIDStr == "" {
			WriteJSONError(w, http.StatusUnauthorized, "X-User-ID header is missing")
			return
		}

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			WriteJSONError(w, http.StatusUnauthorized, "Invalid X-User-ID header format")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}

// optionalUserID - просмотр карточки доступен и анонимам.
func optionalUserID(r *http.Request) *uuid.UUID {
	userID, err := uuid.Parse(r.Header.Get(userIDHeader))
	if err != nil {
		return nil
	}
	return &userID
}
