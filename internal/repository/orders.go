package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"marketplace/internal/models"
)

type GormOrders struct{ db *gorm.DB }

func NewGormOrders(db *gorm.DB) *GormOrders { return &GormOrders{db: db} }

var _ OrderRepository = (*GormOrders)(nil)

func (r *GormOrders) Create(ctx context.Context, o *models.Order) error {
	// items are inserted by association in the same statement batch
	if err := conn(ctx, r.db).Create(o).Error; err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// ListByBuyer returns the buyer's orders, newest first, with items and their
// products (including soft-deleted ones, so history stays readable).
func (r *GormOrders) ListByBuyer(ctx context.Context, buyerID uint) ([]models.Order, error) {
	var out []models.Order
	err := conn(ctx, r.db).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC, id DESC").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list orders of buyer %d: %w", buyerID, err)
	}
	return out, nil
}
