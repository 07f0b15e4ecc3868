package product_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lara-shop/lara-api/internal/product"
	"github.com/lara-shop/lara-api/internal/testdb"
)

func TestRepository_DecrementStockIfAvailable(t *testing.T) {
	pool := testdb.Pool(t)
	repo := product.NewRepository(pool)
	ctx := context.Background()

	owner := testdb.SeedUser(t, pool)
	p := testdb.SeedProduct(t, pool, owner.ID, 5)

	ok, err := repo.DecrementStockIfAvailable(ctx, p.ID, product.Size100ml, 3)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.VariantBySize(product.Size100ml).Stock)

	// Guard holds: asking for more than remains changes nothing.
	ok, err = repo.DecrementStockIfAvailable(ctx, p.ID, product.Size100ml, 3)
	require.NoError(t, err)
	require.False(t, ok)

	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.VariantBySize(product.Size100ml).Stock)
}

func TestRepository_RestoreStock(t *testing.T) {
	pool := testdb.Pool(t)
	repo := product.NewRepository(pool)
	ctx := context.Background()

	owner := testdb.SeedUser(t, pool)
	p := testdb.SeedProduct(t, pool, owner.ID, 1)

	ok, err := repo.DecrementStockIfAvailable(ctx, p.ID, product.Size100ml, 1)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, repo.RestoreStock(ctx, p.ID, product.Size100ml, 1))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.VariantBySize(product.Size100ml).Stock)
}

func TestRepository_GetByIDs(t *testing.T) {
	pool := testdb.Pool(t)
	repo := product.NewRepository(pool)
	ctx := context.Background()

	owner := testdb.SeedUser(t, pool)
	p1 := testdb.SeedProduct(t, pool, owner.ID, 3)
	p2 := testdb.SeedProduct(t, pool, owner.ID, 4)

	products, err := repo.GetByIDs(ctx, []uuid.UUID{p1.ID, p2.ID})
	require.NoError(t, err)
	require.Len(t, products, 2)
	for _, p := range products {
		require.NotEmpty(t, p.Variants)
	}
}
