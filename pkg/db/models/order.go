package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Order is the record produced at checkout. Only status, courier fields and
// updated_at change after creation.
type Order struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID         *uuid.UUID          `gorm:"column:customer_id;type:uuid"`
	CustomerName       string              `gorm:"column:customer_name;not null"`
	CustomerEmail      string              `gorm:"column:customer_email;not null"`
	CustomerPhone      string              `gorm:"column:customer_phone;not null"`
	ShippingAddress    string              `gorm:"column:shipping_address;not null"`
	ShippingCity       string              `gorm:"column:shipping_city;not null"`
	ShippingPostalCode string              `gorm:"column:shipping_postal_code;not null"`
	Notes              *string             `gorm:"column:notes"`
	Subtotal           decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Discount           decimal.Decimal     `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	ShippingFee        decimal.Decimal     `gorm:"column:shipping_fee;type:numeric(12,2);not null;default:0"`
	Total              decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	CouponID           *uuid.UUID          `gorm:"column:coupon_id;type:uuid"`
	CouponCode         *string             `gorm:"column:coupon_code"`
	PaymentMethod      enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	Status             enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'PENDING'"`
	CourierName        *string             `gorm:"column:courier_name"`
	TrackingLink       *string             `gorm:"column:tracking_link"`
	Items              []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// OrderItem freezes the unit price a line was bought at.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName string          `gorm:"column:product_name;not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal   decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
