package checkout

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"marketplace/internal/cart"
	"marketplace/internal/config"
	"marketplace/internal/database"
	"marketplace/internal/models"
	"marketplace/internal/repository"
)

type fixture struct {
	db       *gorm.DB
	products *repository.GormProducts
	orders   *repository.GormOrders
	m        *Materializer
	buyer    *models.User
	seller   *models.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := database.OpenSQL(config.Config{DBDriver: "sqlite", DBDSN: ":memory:", DBAutoMigrate: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseSQL(db) })

	users := repository.NewGormUsers(db)
	f := &fixture{
		db:       db,
		products: repository.NewGormProducts(db),
		orders:   repository.NewGormOrders(db),
		buyer:    &models.User{Username: "buyer", Email: "buyer@example.com", PasswordHash: "x"},
		seller:   &models.User{Username: "seller", Email: "seller@example.com", PasswordHash: "x", IsSeller: true},
	}
	require.NoError(t, users.Create(ctx, f.buyer))
	require.NoError(t, users.Create(ctx, f.seller))
	f.m = NewMaterializer(f.products, f.orders, repository.NewGormTx(db))
	return f
}

func (f *fixture) product(t *testing.T, title, price string) *models.Product {
	t.Helper()
	p := &models.Product{Title: title, Price: decimal.RequireFromString(price), Stock: 10, SellerID: f.seller.ID}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *fixture) orderCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&n).Error)
	return n
}

func key(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func TestMaterialize_SingleLine(t *testing.T) {
	f := setup(t)
	p := f.product(t, "Pen", "9.99")

	rec, err := f.m.Materialize(context.Background(), f.buyer, cart.Snapshot{key(p.ID): 2})
	require.NoError(t, err)
	require.NotNil(t, rec.Order)
	assert.Empty(t, rec.Skipped)

	o := rec.Order
	assert.NotZero(t, o.ID)
	assert.Equal(t, f.buyer.ID, o.BuyerID)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("19.98")), "total %s", o.Total)
	require.Len(t, o.Items, 1)
	assert.Equal(t, p.ID, o.Items[0].ProductID)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.True(t, o.Items[0].Price.Equal(p.Price))
}

func TestMaterialize_SkipsDeletedProduct(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	keep := f.product(t, "Cup", "3.25")
	gone := f.product(t, "Plate", "7.00")
	require.NoError(t, f.products.Delete(ctx, gone.ID, f.seller.ID))

	rec, err := f.m.Materialize(ctx, f.buyer, cart.Snapshot{key(keep.ID): 3, key(gone.ID): 1})
	require.NoError(t, err)
	assert.Equal(t, []string{key(gone.ID)}, rec.Skipped)
	require.Len(t, rec.Order.Items, 1)
	assert.True(t, rec.Order.Total.Equal(decimal.RequireFromString("9.75")))
}

func TestMaterialize_SkipsUnparseableIDs(t *testing.T) {
	f := setup(t)
	p := f.product(t, "Cup", "1.00")

	rec, err := f.m.Materialize(context.Background(), f.buyer, cart.Snapshot{key(p.ID): 1, "abc": 4, "0": 1})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"abc", "0"}, rec.Skipped)
	assert.Len(t, rec.Order.Items, 1)
}

func TestMaterialize_EmptyCart(t *testing.T) {
	f := setup(t)

	_, err := f.m.Materialize(context.Background(), f.buyer, cart.Snapshot{})
	require.ErrorIs(t, err, ErrEmptyCart)
	_, err = f.m.Materialize(context.Background(), f.buyer, nil)
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, f.orderCount(t))
}

func TestMaterialize_AllStale(t *testing.T) {
	f := setup(t)

	_, err := f.m.Materialize(context.Background(), f.buyer, cart.Snapshot{"9999": 1, "nope": 2})
	require.ErrorIs(t, err, ErrNothingToOrder)
	assert.Zero(t, f.orderCount(t))
}

func TestMaterialize_TotalMatchesItems(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	snap := cart.Snapshot{}
	for i, price := range []string{"0.10", "0.20", "19.99", "100.00", "0.01"} {
		p := f.product(t, "p", price)
		snap[key(p.ID)] = i + 1
	}

	rec, err := f.m.Materialize(ctx, f.buyer, snap)
	require.NoError(t, err)
	assert.True(t, rec.Order.Total.Equal(rec.Order.ItemsTotal()))
	assert.True(t, rec.Order.Total.Equal(decimal.RequireFromString("460.52")), "total %s", rec.Order.Total)

	stored, err := f.orders.ListByBuyer(ctx, f.buyer.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Len(t, stored[0].Items, 5)
	assert.True(t, stored[0].Total.Equal(stored[0].ItemsTotal()))
}

func TestMaterialize_PriceIsSnapshot(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	p := f.product(t, "Lamp", "12.00")

	_, err := f.m.Materialize(ctx, f.buyer, cart.Snapshot{key(p.ID): 1})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", p.ID).
		Update("price", decimal.RequireFromString("99.00")).Error)

	stored, err := f.orders.ListByBuyer(ctx, f.buyer.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].Items[0].Price.Equal(decimal.RequireFromString("12.00")))
}

type failingOrders struct{ repository.OrderRepository }

func (failingOrders) Create(context.Context, *models.Order) error { return errors.New("disk full") }

func TestMaterialize_StoreErrorRollsBack(t *testing.T) {
	f := setup(t)
	p := f.product(t, "Pen", "1.00")
	m := NewMaterializer(f.products, failingOrders{f.orders}, repository.NewGormTx(f.db))

	rec, err := m.Materialize(context.Background(), f.buyer, cart.Snapshot{key(p.ID): 1})
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.Zero(t, f.orderCount(t))
}
