package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups products for browsing and coupon scoping.
type Category struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Slug      string    `gorm:"column:slug;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// Product is the catalog listing read by pricing and checkout.
type Product struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	CategoryID *uuid.UUID       `gorm:"column:category_id;type:uuid"`
	Name       string           `gorm:"column:name;not null"`
	SKU        *string          `gorm:"column:sku"`
	Price      decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	SalePrice  *decimal.Decimal `gorm:"column:sale_price;type:numeric(12,2)"`
	Stock      int              `gorm:"column:stock;not null;default:0"`
	IsActive   bool             `gorm:"column:is_active;not null"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// EffectivePrice is the sale price whenever one is set, zero included, else
// the regular price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil && !p.SalePrice.IsNegative() {
		return p.SalePrice.Round(2)
	}
	return p.Price.Round(2)
}

// Deal is a curated promotion grouping a set of products.
type Deal struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Title     string     `gorm:"column:title;not null"`
	IsActive  bool       `gorm:"column:is_active;not null"`
	EndsAt    *time.Time `gorm:"column:ends_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (d *Deal) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

// DealProduct links a deal to one of its member products.
type DealProduct struct {
	DealID    uuid.UUID `gorm:"column:deal_id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
}
