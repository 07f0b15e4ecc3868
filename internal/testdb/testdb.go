// Package testdb provides fixtures for repository integration tests.
// The tests run against a migrated database and are skipped unless
// DB_HOST_TEST is set.
package testdb

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/lara-shop/lara-api/internal/order"
	"github.com/lara-shop/lara-api/internal/product"
	"github.com/lara-shop/lara-api/internal/user"
)

func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	host := os.Getenv("DB_HOST_TEST")
	if host == "" {
		t.Skip("DB_HOST_TEST not set, skipping integration test")
	}

	port := envOr("DB_PORT_TEST", "5432")
	dbUser := envOr("DB_USER_TEST", "postgres")
	password := envOr("DB_PASSWORD_TEST", "postgres")
	name := envOr("DB_NAME_TEST", "lara_test")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, dbUser, password, name)
	pool, err := pgxpool.New(context.Background(), connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// SeedUser inserts an account with a unique email.
func SeedUser(t *testing.T, pool *pgxpool.Pool) *user.User {
	t.Helper()
	u := &user.User{
		Name:         "Integration User",
		Email:        fmt.Sprintf("user+%s@example.com", uuid.Must(uuid.NewV4())),
		PasswordHash: "not-a-real-hash",
	}
	_, err := user.NewRepository(pool).Create(context.Background(), u)
	require.NoError(t, err)
	return u
}

// SeedProduct inserts an approved product owned by ownerID with a
// single 100ml variant at the given stock.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, ownerID uuid.UUID, stock int) *product.Product {
	t.Helper()
	p := &product.Product{
		UserID:      ownerID,
		Title:       "Test Oud",
		Description: "integration fixture",
		Image:       "oud.jpg",
		Category:    product.CategoryWoody,
		Gender:      product.GenderUnisex,
		Variants: []product.Variant{
			{Size: product.Size100ml, Price: 55, Stock: stock},
		},
		IsApproved: true,
	}
	_, err := product.NewRepository(pool).Create(context.Background(), p)
	require.NoError(t, err)
	return p
}

// SeedOrder inserts a bare unpaid order for buyerID. No lines are
// attached; tests that need lines add them through the order flow.
func SeedOrder(t *testing.T, pool *pgxpool.Pool, buyerID uuid.UUID) *order.Order {
	t.Helper()
	o := &order.Order{
		UserID:        buyerID,
		Status:        order.StatusProcessing,
		PaymentMethod: "card",
		ItemsPrice:    120,
		TaxPrice:      12,
		TotalPrice:    132,
		ShippingAddress: order.ShippingAddress{
			Address:    "1 Main St",
			City:       "Testville",
			PostalCode: "00000",
			Country:    "US",
		},
	}
	_, err := order.NewRepository(pool).Create(context.Background(), o)
	require.NoError(t, err)
	return o
}
