package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"marketplace/internal/models"
)

type GormProducts struct{ db *gorm.DB }

func NewGormProducts(db *gorm.DB) *GormProducts { return &GormProducts{db: db} }

var _ ProductRepository = (*GormProducts)(nil)

func (r *GormProducts) Create(ctx context.Context, p *models.Product) error {
	if err := conn(ctx, r.db).Create(p).Error; err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *GormProducts) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := conn(ctx, r.db).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &p, nil
}

func (r *GormProducts) ListAll(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := conn(ctx, r.db).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

func (r *GormProducts) ListBySeller(ctx context.Context, sellerID uint) ([]models.Product, error) {
	var out []models.Product
	if err := conn(ctx, r.db).Where("seller_id = ?", sellerID).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list products of seller %d: %w", sellerID, err)
	}
	return out, nil
}

// Delete reports ErrNotFound for products that are absent or owned by someone else.
func (r *GormProducts) Delete(ctx context.Context, id, sellerID uint) error {
	res := conn(ctx, r.db).Where("id = ? AND seller_id = ?", id, sellerID).Delete(&models.Product{})
	if res.Error != nil {
		return fmt.Errorf("delete product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
