package domain

import (
	"time"

	"github.com/google/uuid"
)

// PropertyViewedEvent публикуется после каждого открытия карточки.
type PropertyViewedEvent struct {
	PropertyID uuid.UUID  `json:"property_id"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	Views      int64      `json:"views"`
	ViewedAt   time.Time  `json:"viewed_at"`
}
