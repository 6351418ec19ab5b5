package cartstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/seifhelal/storefront/cart/pkg/cart"
)

func setup(t *testing.T, c context.Context) *Store {
	t.Helper()

	redisContainer, err := testRedis.Run(c, "redis:7.4.2-alpine3.21")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := redisContainer.Terminate(c); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	})

	redisConnStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}
	redisOpt, err := redis.ParseURL(redisConnStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}
	client := redis.NewClient(redisOpt)
	t.Cleanup(func() { client.Close() })
	if err := client.Ping(c).Err(); err != nil {
		t.Fatalf("failed ping redis client with error: %s", err)
	}

	return New(client)
}

func testContext() context.Context {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano})
	return logger.WithContext(context.Background())
}

func TestGetAbsentCartIsEmpty(t *testing.T) {
	c := testContext()
	store := setup(t, c)

	userId := uuid.New()
	got, err := store.Get(c, userId)
	require.NoError(t, err, "absent cart should not be an error")
	assert.Equal(t, userId, got.UserId)
	assert.True(t, got.IsEmpty())
}

func TestSaveGetRoundTrip(t *testing.T) {
	c := testContext()
	store := setup(t, c)

	userId := uuid.New()
	saved := cart.Cart{
		UserId: userId,
		Lines: []cart.Line{
			{
				ProductId: uuid.New(),
				Name:      "widget",
				Image:     "widget.png",
				UnitPrice: decimal.RequireFromString("19.99"),
				Quantity:  3,
			},
		},
	}
	require.NoError(t, store.Save(c, saved))

	got, err := store.Get(c, userId)
	require.NoError(t, err)
	assert.Equal(t, saved.UserId, got.UserId)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, saved.Lines[0].ProductId, got.Lines[0].ProductId)
	assert.Equal(t, saved.Lines[0].Name, got.Lines[0].Name)
	assert.True(t, saved.Lines[0].UnitPrice.Equal(got.Lines[0].UnitPrice))
	assert.Equal(t, saved.Lines[0].Quantity, got.Lines[0].Quantity)
}

func TestCartsAreIsolatedPerIdentity(t *testing.T) {
	c := testContext()
	store := setup(t, c)

	first := uuid.New()
	second := uuid.New()
	require.NoError(t, store.Save(c, cart.Cart{
		UserId: first,
		Lines: []cart.Line{
			{ProductId: uuid.New(), Name: "widget", UnitPrice: decimal.NewFromInt(10), Quantity: 1},
		},
	}))

	got, err := store.Get(c, second)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty(), "one identity's cart should never leak into another's")
}

func TestClearRemovesCart(t *testing.T) {
	c := testContext()
	store := setup(t, c)

	userId := uuid.New()
	require.NoError(t, store.Save(c, cart.Cart{
		UserId: userId,
		Lines: []cart.Line{
			{ProductId: uuid.New(), Name: "widget", UnitPrice: decimal.NewFromInt(10), Quantity: 1},
		},
	}))
	require.NoError(t, store.Clear(c, userId))

	got, err := store.Get(c, userId)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestWishlistRoundTrip(t *testing.T) {
	c := testContext()
	store := setup(t, c)

	userId := uuid.New()
	got, err := store.GetWishlist(c, userId)
	require.NoError(t, err, "absent wishlist should not be an error")
	assert.Empty(t, got)

	wishlist := []cart.Line{
		{ProductId: uuid.New(), Name: "gizmo", UnitPrice: decimal.NewFromInt(5), Quantity: 1},
	}
	require.NoError(t, store.SaveWishlist(c, userId, wishlist))

	got, err = store.GetWishlist(c, userId)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, wishlist[0].ProductId, got[0].ProductId)
}
