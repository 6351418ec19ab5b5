package service

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seifhelal/storefront/cart/pkg/cart"
	inErrors "github.com/seifhelal/storefront/internal/errors"
	"github.com/seifhelal/storefront/internal/repository"
)

var (
	customerId = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	adminId    = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	widgetId   = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	gizmoId    = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002")
)

func testContext() context.Context {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano})
	return logger.WithContext(context.Background())
}

func seedPath() string {
	return filepath.Join("testdata", "storefront.seed.sql")
}

func stockOf(t *testing.T, env testEnv, productId uuid.UUID) int32 {
	t.Helper()
	product, err := env.queries.FindProductById(testContext(), productId)
	require.NoError(t, err, "seeded product should exist")
	return product.StockQuantity
}

func TestCheckout(t *testing.T) {
	tests := []struct {
		name          string
		cart          func() cart.Cart
		expectedErr   error
		expectedStock map[uuid.UUID]int32
		expectedTotal decimal.Decimal
	}{
		{
			name: "given empty cart should return empty cart error and write nothing",
			cart: func() cart.Cart {
				return cart.Cart{UserId: customerId, Lines: []cart.Line{}}
			},
			expectedErr: inErrors.ErrEmptyCart,
			expectedStock: map[uuid.UUID]int32{
				widgetId: 10,
				gizmoId:  3,
			},
		},
		{
			name: "given available stock should create pending order and decrement stocks",
			cart: func() cart.Cart {
				return cart.Cart{
					UserId: customerId,
					Lines: []cart.Line{
						{
							ProductId: widgetId,
							Name:      "widget",
							UnitPrice: decimal.NewFromInt(10),
							Quantity:  2,
						},
						{
							ProductId: gizmoId,
							Name:      "gizmo",
							UnitPrice: decimal.NewFromInt(5),
							Quantity:  1,
						},
					},
				}
			},
			expectedStock: map[uuid.UUID]int32{
				widgetId: 8,
				gizmoId:  2,
			},
			expectedTotal: decimal.NewFromInt(25),
		},
		{
			name: "given one short line should fail whole checkout and leave every stock unchanged",
			cart: func() cart.Cart {
				return cart.Cart{
					UserId: customerId,
					Lines: []cart.Line{
						{
							ProductId: widgetId,
							Name:      "widget",
							UnitPrice: decimal.NewFromInt(10),
							Quantity:  2,
						},
						{
							ProductId: gizmoId,
							Name:      "gizmo",
							UnitPrice: decimal.NewFromInt(5),
							Quantity:  4,
						},
					},
				}
			},
			expectedErr: inErrors.ErrInsufficientStock,
			expectedStock: map[uuid.UUID]int32{
				widgetId: 10,
				gizmoId:  3,
			},
		},
		{
			name: "given vanished product should fail whole checkout and leave every stock unchanged",
			cart: func() cart.Cart {
				return cart.Cart{
					UserId: customerId,
					Lines: []cart.Line{
						{
							ProductId: widgetId,
							Name:      "widget",
							UnitPrice: decimal.NewFromInt(10),
							Quantity:  1,
						},
						{
							ProductId: uuid.New(),
							Name:      "phantom",
							UnitPrice: decimal.NewFromInt(1),
							Quantity:  1,
						},
					},
				}
			},
			expectedErr: inErrors.ErrProductNotFound,
			expectedStock: map[uuid.UUID]int32{
				widgetId: 10,
				gizmoId:  3,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testContext()
			env := setup(t, c, seedPath())
			defer teardown(t, env)

			userCart := tt.cart()
			if !userCart.IsEmpty() {
				require.NoError(t, env.store.Save(c, userCart), "seeding cart should succeed")
			}

			order, err := env.service.Checkout(c, customerId)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr, "checkout error should match")

				orders, err := env.queries.FindOrdersByUserId(c, customerId)
				require.NoError(t, err)
				assert.Empty(t, orders, "failed checkout should not create an order")

				if !userCart.IsEmpty() {
					stored, err := env.store.Get(c, customerId)
					require.NoError(t, err)
					assert.Equal(t, userCart.Lines, stored.Lines, "failed checkout should keep the cart")
				}
			} else {
				require.NoError(t, err, "checkout should succeed")
				assert.Equal(t, customerId, order.UserId)
				assert.Equal(t, string(repository.OrderStatusPending), order.Status)
				assert.True(t, tt.expectedTotal.Equal(order.Total),
					"total should be %s got %s", tt.expectedTotal, order.Total)
				assert.Len(t, order.OrderItems, len(userCart.Lines))

				stored, err := env.store.Get(c, customerId)
				require.NoError(t, err)
				assert.True(t, stored.IsEmpty(), "successful checkout should clear the cart")
			}

			for productId, expected := range tt.expectedStock {
				assert.EqualValues(t, expected, stockOf(t, env, productId),
					"stock of %s should match", productId)
			}
		})
	}
}

func TestCheckoutConcurrentNeverOversells(t *testing.T) {
	c := testContext()
	env := setup(t, c, seedPath())
	defer teardown(t, env)

	// widget stock is 10; two carts of 6 can never both win
	for _, userId := range []uuid.UUID{customerId, adminId} {
		require.NoError(t, env.store.Save(c, cart.Cart{
			UserId: userId,
			Lines: []cart.Line{
				{
					ProductId: widgetId,
					Name:      "widget",
					UnitPrice: decimal.NewFromInt(10),
					Quantity:  6,
				},
			},
		}))
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, userId := range []uuid.UUID{customerId, adminId} {
		i, userId := i, userId
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = env.service.Checkout(c, userId)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, inErrors.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one checkout should win")
	assert.EqualValues(t, 4, stockOf(t, env, widgetId), "stock should only be decremented once")
}

func TestUpdateOrderStatus(t *testing.T) {
	tests := []struct {
		name        string
		next        repository.OrderStatus
		actorId     uuid.UUID
		actorRole   string
		prepare     func(t *testing.T, c context.Context, env testEnv, orderId uuid.UUID)
		expectedErr error
		expected    repository.OrderStatus
	}{
		{
			name:      "admin ships a pending order",
			next:      repository.OrderStatusShipped,
			actorId:   adminId,
			actorRole: "admin",
			expected:  repository.OrderStatusShipped,
		},
		{
			name:      "owner cancels a pending order",
			next:      repository.OrderStatusCancelled,
			actorId:   customerId,
			actorRole: "customer",
			expected:  repository.OrderStatusCancelled,
		},
		{
			name:        "customer cannot ship",
			next:        repository.OrderStatusShipped,
			actorId:     customerId,
			actorRole:   "customer",
			expectedErr: inErrors.ErrForbidden,
			expected:    repository.OrderStatusPending,
		},
		{
			name:      "shipped order is terminal",
			next:      repository.OrderStatusCancelled,
			actorId:   adminId,
			actorRole: "admin",
			prepare: func(t *testing.T, c context.Context, env testEnv, orderId uuid.UUID) {
				_, err := env.service.UpdateOrderStatus(
					c,
					orderId,
					repository.OrderStatusShipped,
					adminId,
					"admin",
				)
				require.NoError(t, err)
			},
			expectedErr: inErrors.ErrInvalidStatusTransition,
			expected:    repository.OrderStatusShipped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testContext()
			env := setup(t, c, seedPath())
			defer teardown(t, env)

			require.NoError(t, env.store.Save(c, cart.Cart{
				UserId: customerId,
				Lines: []cart.Line{
					{
						ProductId: widgetId,
						Name:      "widget",
						UnitPrice: decimal.NewFromInt(10),
						Quantity:  1,
					},
				},
			}))
			order, err := env.service.Checkout(c, customerId)
			require.NoError(t, err, "seeding order via checkout should succeed")

			if tt.prepare != nil {
				tt.prepare(t, c, env, order.ID)
			}

			_, err = env.service.UpdateOrderStatus(c, order.ID, tt.next, tt.actorId, tt.actorRole)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}

			stored, err := env.queries.FindOrderById(c, order.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, stored.Status)
		})
	}
}

func TestTxErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		expectedErr error
	}{
		{name: "serialization failure", err: &pgconn.PgError{Code: "40001"}, expectedErr: inErrors.ErrTxConflict},
		{name: "deadlock detected", err: &pgconn.PgError{Code: "40P01"}, expectedErr: inErrors.ErrTxConflict},
		{name: "connection failure", err: &pgconn.PgError{Code: "08006"}, expectedErr: inErrors.ErrStoreUnavailable},
		{name: "server shutdown", err: &pgconn.PgError{Code: "57P01"}, expectedErr: inErrors.ErrStoreUnavailable},
		{name: "too many connections", err: &pgconn.PgError{Code: "53300"}, expectedErr: inErrors.ErrStoreUnavailable},
		{name: "network error", err: &net.DNSError{Err: "timeout", IsTimeout: true}, expectedErr: inErrors.ErrStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, txError("locking products", tt.err), tt.expectedErr)
		})
	}

	t.Run("constraint violation passes through", func(t *testing.T) {
		cause := &pgconn.PgError{Code: "23505"}
		err := txError("inserting order", cause)
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, inErrors.ErrTxConflict)
		assert.NotErrorIs(t, err, inErrors.ErrStoreUnavailable)
	})
}

func TestDashboardRejectsUnknownRevenueStatus(t *testing.T) {
	c := testContext()
	service := NewOrderService(nil, nil, nil, nil)

	_, err := service.Dashboard(c, []string{"refunded"})
	assert.ErrorIs(t, err, inErrors.ErrInvalidOrderStatus)
}

func TestDashboardRevenueCountsShippedOnly(t *testing.T) {
	c := testContext()
	env := setup(t, c, seedPath())
	defer teardown(t, env)

	// two orders: one stays pending, one gets shipped
	for _, quantity := range []int32{1, 2} {
		require.NoError(t, env.store.Save(c, cart.Cart{
			UserId: customerId,
			Lines: []cart.Line{
				{
					ProductId: widgetId,
					Name:      "widget",
					UnitPrice: decimal.NewFromInt(10),
					Quantity:  quantity,
				},
			},
		}))
		_, err := env.service.Checkout(c, customerId)
		require.NoError(t, err)
	}
	orders, err := env.queries.FindOrdersByUserId(c, customerId)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	_, err = env.service.UpdateOrderStatus(
		c,
		orders[0].ID,
		repository.OrderStatusShipped,
		adminId,
		"admin",
	)
	require.NoError(t, err)

	dashboard, err := env.service.Dashboard(c, nil)
	require.NoError(t, err)

	shipped, err := env.queries.FindOrderById(c, orders[0].ID)
	require.NoError(t, err)
	expectedRevenue := repository.DecimalFromNumeric(shipped.Total)
	assert.True(t, expectedRevenue.Equal(dashboard.Revenue),
		"revenue should only count shipped orders, want %s got %s", expectedRevenue, dashboard.Revenue)
	assert.EqualValues(t, 1, dashboard.PendingOrders)
	assert.EqualValues(t, 2, dashboard.Products)
	assert.EqualValues(t, 2, dashboard.Users)
}
