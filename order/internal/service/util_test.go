package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/seifhelal/storefront/internal/cartstore"
	"github.com/seifhelal/storefront/internal/repository"
)

type testEnv struct {
	pool           *pgxpool.Pool
	queries        *repository.Queries
	cache          *redis.Client
	store          *cartstore.Store
	service        *OrderService
	pgContainer    *postgres.PostgresContainer
	redisContainer *testRedis.RedisContainer
}

func setup(t *testing.T, c context.Context, seedPaths ...string) testEnv {
	t.Helper()

	migrationsDir := filepath.Join("..", "..", "..", "migrations")
	initScripts := append(
		[]string{
			filepath.Join(migrationsDir, "20250601083015_create_table_users.up.sql"),
			filepath.Join(migrationsDir, "20250601083120_create_table_categories.up.sql"),
			filepath.Join(migrationsDir, "20250601083242_create_table_products.up.sql"),
			filepath.Join(migrationsDir, "20250601083459_create_table_orders.up.sql"),
		},
		seedPaths...,
	)

	pgContainer, err := postgres.Run(
		c,
		"postgres:16.6-alpine3.21",
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("postgres"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(initScripts...),
	)
	if err != nil {
		t.Fatalf("failed running postgres container with error: %s", err)
	}

	pgConnStr, err := pgContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting postgres connection string with error: %s", err)
	}

	pool, err := pgxpool.New(c, pgConnStr)
	if err != nil {
		t.Fatalf("failed creating postgres pool with error: %s", err)
	}
	if err = pool.Ping(c); err != nil {
		t.Fatalf("failed ping postgres pool with error: %s", err)
	}

	redisContainer, err := testRedis.Run(c, "redis:7.4.2-alpine3.21")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}

	redisConnStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}

	redisOpt, err := redis.ParseURL(redisConnStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}

	redisClient := redis.NewClient(redisOpt)
	if err = redisClient.Ping(c).Err(); err != nil {
		t.Fatalf("failed ping redis client with error: %s", err)
	}

	queries := repository.New(pool)
	store := cartstore.New(redisClient)
	return testEnv{
		pool:           pool,
		queries:        queries,
		cache:          redisClient,
		store:          store,
		service:        NewOrderService(pool, queries, redisClient, store),
		pgContainer:    pgContainer,
		redisContainer: redisContainer,
	}
}

func teardown(t *testing.T, env testEnv) {
	t.Helper()

	env.cache.Close()
	env.pool.Close()
	if err := env.pgContainer.Terminate(context.Background()); err != nil {
		t.Fatalf("failed to terminate container: %s", err)
	}
	if err := env.redisContainer.Terminate(context.Background()); err != nil {
		t.Fatalf("failed to terminate container: %s", err)
	}
}
