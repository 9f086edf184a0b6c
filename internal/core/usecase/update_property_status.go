package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"

	"github.com/google/uuid"
)

type UpdatePropertyStatusUseCase struct {
	storage port.PropertyStoragePort
}

func NewUpdatePropertyStatusUseCase(storage port.PropertyStoragePort) *UpdatePropertyStatusUseCase {
	return &UpdatePropertyStatusUseCase{storage: storage}
}

// Execute меняет статус. sold и rented назад не переводятся.
func (uc *UpdatePropertyStatusUseCase) Execute(ctx context.Context, propertyID uuid.UUID, status string) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "UpdatePropertyStatus",
		"property_id": propertyID.String(),
		"new_status":  status,
	})

	ucLogger.Info("Use case started", nil)

	next, ok := domain.ParsePropertyStatus(status)
	if !ok {
		return nil, domain.NewValidationError("status", "unknown status %q", status)
	}

	property, err := uc.storage.GetByID(ctx, propertyID)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, fmt.Errorf("get property %s: %w", propertyID, err)
	}

	if !property.Status.CanTransitionTo(next) {
		ucLogger.Warn("Status transition rejected", port.Fields{"current_status": property.Status})
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStatusTransition, property.Status, next)
	}

	if property.Status == next {
		ucLogger.Info("Status unchanged", nil)
		return property, nil
	}

	now := time.Now().UTC()
	if err := uc.storage.UpdateStatus(ctx, propertyID, next, now); err != nil {
		if errors.Is(err, domain.ErrInvalidStatusTransition) {
			ucLogger.Warn("Status changed concurrently, transition rejected", port.Fields{"error": err.Error()})
			return nil, err
		}
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, fmt.Errorf("update status of %s: %w", propertyID, err)
	}

	property.Status = next
	property.UpdatedAt = now

	ucLogger.Info("Use case finished successfully", nil)
	return property, nil
}
