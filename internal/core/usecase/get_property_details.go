package usecase

import (
	"context"
	"fmt"
	"time"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"

	"github.com/google/uuid"
)

type GetPropertyDetailsUseCase struct {
	storage   port.PropertyStoragePort
	publisher port.PropertyEventsPublisherPort
}

func NewGetPropertyDetailsUseCase(storage port.PropertyStoragePort, publisher port.PropertyEventsPublisherPort) *GetPropertyDetailsUseCase {
	return &GetPropertyDetailsUseCase{storage: storage, publisher: publisher}
}

// Execute отдает карточку объекта и учитывает просмотр.
// Ошибки учета просмотра не мешают отдать карточку.
func (uc *GetPropertyDetailsUseCase) Execute(ctx context.Context, propertyID uuid.UUID, viewer domain.Viewer) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "GetPropertyDetails",
		"property_id": propertyID.String(),
	})

	ucLogger.Info("Use case started", nil)

	property, err := uc.storage.GetByID(ctx, propertyID)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, fmt.Errorf("get property %s: %w", propertyID, err)
	}

	view := domain.PropertyView{
		PropertyID: propertyID,
		UserID:     viewer.UserID,
		IPAddress:  viewer.IPAddress,
		UserAgent:  viewer.UserAgent,
		ViewedAt:   time.Now().UTC(),
	}
	views, err := uc.storage.IncrementViews(ctx, view)
	if err != nil {
		ucLogger.Warn("Failed to record property view", port.Fields{"error": err.Error()})
	} else {
		property.Views = views

		if uc.publisher != nil {
			event := domain.PropertyViewedEvent{
				PropertyID: propertyID,
				UserID:     viewer.UserID,
				Views:      views,
				ViewedAt:   view.ViewedAt,
			}
			if err := uc.publisher.PublishPropertyViewed(ctx, event); err != nil {
				ucLogger.Warn("Failed to publish property viewed event", port.Fields{"error": err.Error()})
			}
		}
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"views": property.Views})
	return property, nil
}
