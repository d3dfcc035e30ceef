// Package checkout turns a cart snapshot into a persisted order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"marketplace/internal/cart"
	"marketplace/internal/models"
	"marketplace/internal/repository"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNothingToOrder means every cart entry pointed at a missing product.
	ErrNothingToOrder = errors.New("no orderable items in cart")
)

// Receipt is the outcome of a successful materialization. Skipped lists the
// cart product ids that no longer resolve to a product.
type Receipt struct {
	Order   *models.Order
	Skipped []string
}

type Materializer struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	tx       repository.TxManager
}

func NewMaterializer(products repository.ProductRepository, orders repository.OrderRepository, tx repository.TxManager) *Materializer {
	return &Materializer{products: products, orders: orders, tx: tx}
}

// Materialize prices every entry against the live catalog and writes the
// order and its items in one transaction. The cart itself is left untouched.
func (m *Materializer) Materialize(ctx context.Context, buyer *models.User, snap cart.Snapshot) (*Receipt, error) {
	if buyer == nil {
		return nil, errors.New("materialize: buyer is required")
	}
	if snap.Empty() {
		return nil, ErrEmptyCart
	}

	rec := &Receipt{}
	err := m.tx.WithTransaction(ctx, func(ctx context.Context) error {
		order := &models.Order{BuyerID: buyer.ID, Total: decimal.Zero}

		for _, e := range snap.Entries() {
			if e.Quantity <= 0 {
				rec.Skipped = append(rec.Skipped, e.ProductID)
				continue
			}
			id, err := strconv.ParseUint(e.ProductID, 10, 64)
			if err != nil || id == 0 {
				rec.Skipped = append(rec.Skipped, e.ProductID)
				continue
			}
			p, err := m.products.GetByID(ctx, uint(id))
			if errors.Is(err, repository.ErrNotFound) {
				rec.Skipped = append(rec.Skipped, e.ProductID)
				continue
			}
			if err != nil {
				return fmt.Errorf("load product %d: %w", id, err)
			}

			item := models.OrderItem{ProductID: p.ID, Quantity: e.Quantity, Price: p.Price}
			order.Items = append(order.Items, item)
			order.Total = order.Total.Add(item.Subtotal())
		}

		if len(order.Items) == 0 {
			return ErrNothingToOrder
		}
		if err := m.orders.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		rec.Order = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}
