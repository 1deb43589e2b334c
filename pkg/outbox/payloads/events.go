package payloads

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// OrderCreatedEvent is emitted once checkout commits an order.
type OrderCreatedEvent struct {
	OrderID       uuid.UUID           `json:"order_id"`
	CustomerID    *uuid.UUID          `json:"customer_id,omitempty"`
	CustomerEmail string              `json:"customer_email"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Status        enums.OrderStatus   `json:"status"`
	Subtotal      money.Amount        `json:"subtotal"`
	Discount      money.Amount        `json:"discount"`
	ShippingFee   money.Amount        `json:"shipping_fee"`
	Total         money.Amount        `json:"total"`
	CouponCode    *string             `json:"coupon_code,omitempty"`
	ItemCount     int                 `json:"item_count"`
}

// OrderStatusChangedEvent records an administrative status change.
type OrderStatusChangedEvent struct {
	OrderID uuid.UUID         `json:"order_id"`
	From    enums.OrderStatus `json:"from"`
	To      enums.OrderStatus `json:"to"`
}

// OrderTrackingUpdatedEvent carries the courier fields after an update.
type OrderTrackingUpdatedEvent struct {
	OrderID      uuid.UUID `json:"order_id"`
	CourierName  *string   `json:"courier_name,omitempty"`
	TrackingLink *string   `json:"tracking_link,omitempty"`
}

// WholesaleInquiryCreatedEvent announces a new bulk-purchase inquiry.
type WholesaleInquiryCreatedEvent struct {
	InquiryID   uuid.UUID `json:"inquiry_id"`
	ContactName string    `json:"contact_name"`
	Phone       string    `json:"phone"`
	ItemCount   int       `json:"item_count"`
}

// WholesaleStatusChangedEvent records an inquiry status change.
type WholesaleStatusChangedEvent struct {
	InquiryID uuid.UUID             `json:"inquiry_id"`
	From      enums.WholesaleStatus `json:"from"`
	To        enums.WholesaleStatus `json:"to"`
}
