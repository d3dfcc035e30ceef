// Package repository persists users, products and orders through gorm.
package repository

import (
	"context"
	"errors"

	"marketplace/internal/models"
)

var (
	// ErrNotFound is returned when an entity does not exist (or was soft-deleted).
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when registering an email that is already taken.
	ErrDuplicateEmail = errors.New("email already registered")
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	ListAll(ctx context.Context) ([]models.Product, error)
	ListBySeller(ctx context.Context, sellerID uint) ([]models.Product, error)
	// Delete soft-deletes a product owned by sellerID.
	Delete(ctx context.Context, id, sellerID uint) error
}

type OrderRepository interface {
	// Create inserts the order together with its items.
	Create(ctx context.Context, o *models.Order) error
	ListByBuyer(ctx context.Context, buyerID uint) ([]models.Order, error)
}

// TxManager runs fn inside one transaction. Repositories called with the ctx
// handed to fn join that transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
