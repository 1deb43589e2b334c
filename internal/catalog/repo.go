package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository is the read side of the product catalog used by pricing,
// coupon scoping and checkout.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// GetProduct returns gorm.ErrRecordNotFound when the product does not exist.
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	// GetProducts returns the products that exist, keyed by id. Missing ids are absent.
	GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Product, error)
	ListProductsByDeal(ctx context.Context, dealID uuid.UUID) ([]models.Product, error)
	// DecrementStock lowers stock only while enough remains and reports whether it did.
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

func (r *repository) ListProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Joins("JOIN categories c ON c.id = products.category_id").
		Where("products.category_id = ?", categoryID).
		Order("products.created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListProductsByDeal(ctx context.Context, dealID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Joins("JOIN deal_products dp ON dp.product_id = products.id").
		Joins("JOIN deals d ON d.id = dp.deal_id").
		Where("dp.deal_id = ?", dealID).
		Order("products.created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
