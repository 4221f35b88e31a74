package orders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/rentalshop/pkg/apperr"
	"github.com/example/rentalshop/pkg/database"
	"github.com/example/rentalshop/pkg/models"
	"github.com/example/rentalshop/pkg/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeAuditor struct {
	mu      sync.Mutex
	entries []*repository.AuditLog
	written chan struct{}
}

func newFakeAuditor() *fakeAuditor {
	return &fakeAuditor{written: make(chan struct{}, 16)}
}

func (f *fakeAuditor) CreateAuditLog(_ context.Context, log *repository.AuditLog) error {
	f.mu.Lock()
	f.entries = append(f.entries, log)
	f.mu.Unlock()
	f.written <- struct{}{}
	return nil
}

func (f *fakeAuditor) wait(t *testing.T) *repository.AuditLog {
	t.Helper()
	select {
	case <-f.written:
	case <-time.After(2 * time.Second):
		t.Fatal("audit entry not written")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[len(f.entries)-1]
}

type fixture struct {
	db      *gorm.DB
	manager *Manager
	audit   *fakeAuditor
	product models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	product := models.Product{
		Name:      "Camera",
		Image:     "camera.jpg",
		Price:     decimal.NewFromInt(20),
		Available: true,
	}
	require.NoError(t, db.Create(&product).Error)

	audit := newFakeAuditor()
	return &fixture{
		db:      db,
		manager: NewManager(db, audit, zap.NewNop()),
		audit:   audit,
		product: product,
	}
}

func (f *fixture) cartItem(t *testing.T, owner models.Owner, price int64) models.CartItem {
	t.Helper()
	item := models.CartItem{
		ProductID: f.product.ID,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
		Quantity:  2,
		Price:     decimal.NewFromInt(price),
	}
	item.SetOwner(owner)
	require.NoError(t, f.db.Create(&item).Error)
	return item
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

var guestContact = Contact{Name: "Ann", Email: "ann@example.com", Address: "1 Main St", Phone: "555-0100"}

func TestPlaceOrderFromCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	guest := models.GuestOwner("g-1")

	first := f.cartItem(t, guest, 20)
	second := f.cartItem(t, guest, 15)
	// The snapshot wins over later price changes.
	require.NoError(t, f.db.Model(&f.product).Update("price", 50).Error)

	id, err := f.manager.PlaceOrder(ctx, guest, guestContact, []Line{{CartID: first.ID}, {CartID: second.ID}})
	require.NoError(t, err)

	orders, err := f.manager.MyOrders(ctx, guest)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	order := orders[0]
	assert.Equal(t, id, order.ID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "ann@example.com", order.Email)
	require.Len(t, order.Items, 2)

	assert.Equal(t, "Camera", order.Items[0].ProductName)
	assert.Equal(t, "camera.jpg", order.Items[0].ProductImage)
	assert.True(t, order.Items[0].TotalPrice.Equal(decimal.NewFromInt(120)), order.Items[0].TotalPrice.String())
	assert.True(t, order.Items[1].TotalPrice.Equal(decimal.NewFromInt(90)), order.Items[1].TotalPrice.String())

	assert.Zero(t, f.count(t, &models.CartItem{}))

	entry := f.audit.wait(t)
	assert.Equal(t, "create_order", entry.Action)
	assert.Equal(t, "guest:g-1", entry.Actor)
}

func TestPlaceOrderIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := models.UserOwner(1)
	require.NoError(t, f.db.Create(&models.User{ID: 1, Username: "bob", Email: "bob@example.com", Role: models.RoleClient}).Error)

	a := f.cartItem(t, owner, 20)
	b := f.cartItem(t, owner, 20)
	foreign := f.cartItem(t, models.UserOwner(2), 20)

	_, err := f.manager.PlaceOrder(ctx, owner, Contact{}, []Line{{CartID: a.ID}, {CartID: b.ID}, {CartID: foreign.ID}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrTransactionFailure))
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Equal(t, apperr.KindTransactionFailure, apperr.KindOf(err))

	assert.Zero(t, f.count(t, &models.Order{}))
	assert.Zero(t, f.count(t, &models.OrderItem{}))
	assert.Equal(t, int64(3), f.count(t, &models.CartItem{}))
}

func TestPlaceOrderRejectsConsumedCartItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	guest := models.GuestOwner("g-1")
	item := f.cartItem(t, guest, 20)

	_, err := f.manager.PlaceOrder(ctx, guest, guestContact, []Line{{CartID: item.ID}})
	require.NoError(t, err)

	_, err = f.manager.PlaceOrder(ctx, guest, guestContact, []Line{{CartID: item.ID}})
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "got %v", err)
	assert.Equal(t, int64(1), f.count(t, &models.Order{}))
}

func TestPlaceOrderAdHocLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	guest := models.GuestOwner("g-1")
	require.NoError(t, f.db.Model(&f.product).Update("sale_price", decimal.NewFromInt(12)).Error)

	id, err := f.manager.PlaceOrder(ctx, guest, guestContact, []Line{{
		ProductID: f.product.ID,
		StartDate: "2024-01-01",
		EndDate:   "2024-01-02T12:00:00Z",
		Quantity:  1,
	}})
	require.NoError(t, err)

	var items []models.OrderItem
	require.NoError(t, f.db.Where("order_id = ?", id).Find(&items).Error)
	require.Len(t, items, 1)
	assert.True(t, items[0].PricePerDay.Equal(decimal.NewFromInt(12)))
	assert.True(t, items[0].TotalPrice.Equal(decimal.NewFromInt(24)), items[0].TotalPrice.String())

	tests := []struct {
		name string
		line Line
		want error
	}{
		{"missing dates", Line{ProductID: f.product.ID, Quantity: 1}, apperr.ErrValidation},
		{"end before start", Line{ProductID: f.product.ID, StartDate: "2024-01-05", EndDate: "2024-01-05", Quantity: 1}, apperr.ErrValidation},
		{"negative quantity", Line{ProductID: f.product.ID, StartDate: "2024-01-01", EndDate: "2024-01-05", Quantity: -1}, apperr.ErrValidation},
		{"no reference", Line{StartDate: "2024-01-01", EndDate: "2024-01-05", Quantity: 1}, apperr.ErrValidation},
		{"unknown product", Line{ProductID: 999, StartDate: "2024-01-01", EndDate: "2024-01-05", Quantity: 1}, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.manager.PlaceOrder(ctx, guest, guestContact, []Line{tt.line})
			assert.True(t, errors.Is(err, apperr.ErrTransactionFailure), "got %v", err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
	assert.Equal(t, int64(1), f.count(t, &models.Order{}))
}

func TestPlaceOrderRejectsSoftDeletedProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	guest := models.GuestOwner("g-1")
	item := f.cartItem(t, guest, 20)
	require.NoError(t, f.db.Model(&f.product).Update("is_deleted", true).Error)

	_, err := f.manager.PlaceOrder(ctx, guest, guestContact, []Line{{CartID: item.ID}})
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "got %v", err)
	assert.Equal(t, int64(1), f.count(t, &models.CartItem{}))
}

func TestPlaceOrderPreTransactionValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	guest := models.GuestOwner("g-1")
	item := f.cartItem(t, guest, 20)

	_, err := f.manager.PlaceOrder(ctx, guest, guestContact, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.False(t, errors.Is(err, apperr.ErrTransactionFailure))
	assert.EqualError(t, err, "At least one cart item is required")

	noEmail := guestContact
	noEmail.Email = ""
	_, err = f.manager.PlaceOrder(ctx, guest, noEmail, []Line{{CartID: item.ID}})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	badEmail := guestContact
	badEmail.Email = "not-an-email"
	_, err = f.manager.PlaceOrder(ctx, guest, badEmail, []Line{{CartID: item.ID}})
	assert.EqualError(t, err, "Invalid email format")

	_, err = f.manager.PlaceOrder(ctx, models.Owner{}, guestContact, []Line{{CartID: item.ID}})
	assert.True(t, errors.Is(err, apperr.ErrMissingIdentity))

	assert.Zero(t, f.count(t, &models.Order{}))
	assert.Zero(t, f.count(t, &models.OrderItem{}))
	assert.Equal(t, int64(1), f.count(t, &models.CartItem{}))
}

func TestPlaceOrderUsesUserContact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := models.User{Username: "carol", Email: "carol@example.com", Address: "2 Side St", Phone: "555-0101", Role: models.RoleClient}
	require.NoError(t, f.db.Create(&user).Error)
	owner := models.UserOwner(user.ID)
	item := f.cartItem(t, owner, 20)

	id, err := f.manager.PlaceOrder(ctx, owner, Contact{Name: "ignored"}, []Line{{CartID: item.ID}})
	require.NoError(t, err)

	var order models.Order
	require.NoError(t, f.db.First(&order, id).Error)
	assert.Equal(t, "carol", order.Name)
	assert.Equal(t, "carol@example.com", order.Email)
	assert.Equal(t, "2 Side St", order.Address)
	require.NotNil(t, order.UserID)
	assert.Nil(t, order.GuestSessionID)

	_, err = f.manager.PlaceOrder(ctx, models.UserOwner(404), Contact{}, []Line{{CartID: item.ID}})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
