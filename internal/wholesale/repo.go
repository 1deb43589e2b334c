package wholesale

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Repository persists wholesale inquiries and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, inquiry *models.WholesaleInquiry) error
	// FindByID returns gorm.ErrRecordNotFound when the inquiry does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*models.WholesaleInquiry, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.WholesaleStatus, at time.Time) error
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*InquiryList, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds the wholesale repository to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, inquiry *models.WholesaleInquiry) error {
	return r.db.WithContext(ctx).Create(inquiry).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.WholesaleInquiry, error) {
	var inquiry models.WholesaleInquiry
	if err := r.db.WithContext(ctx).Preload("Items").First(&inquiry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &inquiry, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.WholesaleStatus, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.WholesaleInquiry{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*InquiryList, error) {
	keyset, err := pagination.Keyset(params)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.WholesaleInquiry{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	var rows []models.WholesaleInquiry
	err = query.
		Scopes(keyset).
		Preload("Items").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	page, next := pagination.Page(rows, params.Limit, func(w models.WholesaleInquiry) pagination.Cursor {
		return pagination.Cursor{CreatedAt: w.CreatedAt, ID: w.ID}
	})
	return &InquiryList{Inquiries: page, NextCursor: next}, nil
}
