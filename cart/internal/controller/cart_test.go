package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/seifhelal/storefront/cart/internal/service"
	"github.com/seifhelal/storefront/cart/pkg/cart"
	"github.com/seifhelal/storefront/internal/auth"
	"github.com/seifhelal/storefront/internal/cartstore"
	"github.com/seifhelal/storefront/internal/middleware"
)

const testSecretKey = "cart-controller-test-secret"

func testContext() context.Context {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano})
	return logger.WithContext(context.Background())
}

func setup(t *testing.T, c context.Context) (*cartstore.Store, *mux.Router) {
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

	store := cartstore.New(client)
	router := mux.NewRouter()
	AttachCartController(c, router, service.NewCartService(store), middleware.Auth(testSecretKey))
	return store, router
}

func bearerToken(t *testing.T, c context.Context, userId uuid.UUID) string {
	t.Helper()
	token, err := auth.NewToken(c, userId, "customer", testSecretKey)
	require.NoError(t, err)
	return "Bearer " + token
}

type wishlistEnvelope struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       struct {
		Wishlist []cart.Line `json:"wishlist"`
	} `json:"data"`
}

func TestRemoveWishlistLineReturnsUpdatedWishlist(t *testing.T) {
	c := testContext()
	store, router := setup(t, c)

	userId := uuid.New()
	kept := uuid.New()
	removed := uuid.New()
	require.NoError(t, store.SaveWishlist(c, userId, []cart.Line{
		{ProductId: kept, Name: "widget", UnitPrice: decimal.NewFromInt(10), Quantity: 1},
		{ProductId: removed, Name: "gizmo", UnitPrice: decimal.NewFromInt(5), Quantity: 1},
	}))

	req := httptest.NewRequest(http.MethodDelete, "/wishlists/"+removed.String(), nil)
	req = req.WithContext(c)
	req.Header.Set("Authorization", bearerToken(t, c, userId))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	envelope := wishlistEnvelope{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Wishlist, 1, "response should carry the updated wishlist")
	assert.Equal(t, kept, envelope.Data.Wishlist[0].ProductId)

	stored, err := store.GetWishlist(c, userId)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, kept, stored[0].ProductId)
}

func TestFindWishlistRequiresAuthentication(t *testing.T) {
	c := testContext()
	_, router := setup(t, c)

	req := httptest.NewRequest(http.MethodGet, "/wishlists", nil)
	req = req.WithContext(c)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
