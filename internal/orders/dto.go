package orders

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
)

// ListFilters narrows the admin order listing.
type ListFilters struct {
	Status     *enums.OrderStatus
	CustomerID *uuid.UUID
}

// OrderList wraps a page of orders plus the next page cursor.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// TransitionInput asks for an order to move to Status.
type TransitionInput struct {
	OrderID uuid.UUID
	Status  string
	Actor   *outbox.ActorRef
}

// TrackingUpdate carries courier metadata. A nil field is left unchanged and
// an empty (or all-whitespace) string clears the stored value.
type TrackingUpdate struct {
	CourierName  *string
	TrackingLink *string
}

// TrackingInput attaches courier metadata to an order.
type TrackingInput struct {
	OrderID  uuid.UUID
	Tracking TrackingUpdate
	Actor    *outbox.ActorRef
}
