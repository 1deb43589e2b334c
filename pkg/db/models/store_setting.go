package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StoreSettingsRowID is the primary key of the single settings row.
const StoreSettingsRowID = 1

// StoreSetting holds administrator-set checkout values.
type StoreSetting struct {
	ID                    int             `gorm:"column:id;primaryKey"`
	ShippingFee           decimal.Decimal `gorm:"column:shipping_fee;type:numeric(12,2);not null"`
	FreeShippingThreshold decimal.Decimal `gorm:"column:free_shipping_threshold;type:numeric(12,2);not null;default:0"`
	CODEnabled            bool            `gorm:"column:cod_enabled;not null"`
	UpdatedAt             time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
