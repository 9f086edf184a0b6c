package port

import (
	"context"

	"search-service/internal/core/domain"
)

type PropertyEventsPublisherPort interface {
	PublishPropertyViewed(ctx context.Context, event domain.PropertyViewedEvent) error
}
