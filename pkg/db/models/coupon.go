package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbtypes "github.com/angelmondragon/storefront-backend/pkg/db/types"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Coupon is an admin-authored discount rule redeemable by code.
type Coupon struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Code         string            `gorm:"column:code;not null;uniqueIndex:coupons_code_key"`
	Type         enums.CouponType  `gorm:"column:type;type:text;not null"`
	Value        decimal.Decimal   `gorm:"column:value;type:numeric(12,2);not null"`
	MinPurchase  decimal.Decimal   `gorm:"column:min_purchase;type:numeric(12,2);not null;default:0"`
	ExpiryDate   *time.Time        `gorm:"column:expiry_date"`
	UsageLimit   *int              `gorm:"column:usage_limit"`
	UsageCount   int               `gorm:"column:usage_count;not null;default:0"`
	IsActive     bool              `gorm:"column:is_active;not null"`
	Scope        enums.CouponScope `gorm:"column:scope;type:text;not null;default:'GLOBAL'"`
	ScopeTargets dbtypes.UUIDArray `gorm:"column:scope_targets;type:uuid[];not null;default:'{}'"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Coupon) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
