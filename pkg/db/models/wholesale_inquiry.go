package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// WholesaleInquiry is a B2B bulk-order request handled by sales.
type WholesaleInquiry struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	ContactName string                 `gorm:"column:contact_name;not null"`
	CompanyName *string                `gorm:"column:company_name"`
	Email       *string                `gorm:"column:email"`
	Phone       string                 `gorm:"column:phone;not null"`
	Address     string                 `gorm:"column:address;not null"`
	Description string                 `gorm:"column:description;not null;default:''"`
	Status      enums.WholesaleStatus  `gorm:"column:status;type:text;not null;default:'PENDING'"`
	Items       []WholesaleInquiryItem `gorm:"foreignKey:InquiryID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (w *WholesaleInquiry) BeforeCreate(*gorm.DB) error {
	ensureID(&w.ID)
	return nil
}

// WholesaleInquiryItem is one requested product line.
type WholesaleInquiryItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	InquiryID uuid.UUID `gorm:"column:inquiry_id;type:uuid;not null"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Quantity  int       `gorm:"column:quantity;not null"`
}

func (i *WholesaleInquiryItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
