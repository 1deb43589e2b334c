package settings

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository reads and writes the single store settings row.
type Repository interface {
	// Get returns gorm.ErrRecordNotFound until an admin saves settings.
	Get(ctx context.Context) (*models.StoreSetting, error)
	Upsert(ctx context.Context, row *models.StoreSetting) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a settings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context) (*models.StoreSetting, error) {
	var row models.StoreSetting
	if err := r.db.WithContext(ctx).Where("id = ?", models.StoreSettingsRowID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) Upsert(ctx context.Context, row *models.StoreSetting) error {
	row.ID = models.StoreSettingsRowID
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"shipping_fee", "free_shipping_threshold", "cod_enabled", "updated_at"}),
		}).
		Create(row).Error
}
