package cart_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lara-shop/lara-api/internal/cart"
	"github.com/lara-shop/lara-api/internal/product"
	"github.com/lara-shop/lara-api/internal/testdb"
)

func TestCartRepository_UpsertAccumulatesQuantity(t *testing.T) {
	pool := testdb.Pool(t)
	repo := cart.NewRepository(pool)
	ctx := context.Background()

	buyer := testdb.SeedUser(t, pool)
	p := testdb.SeedProduct(t, pool, testdb.SeedUser(t, pool).ID, 10)

	require.NoError(t, repo.Upsert(ctx, buyer.ID, p.ID, product.Size100ml, 2))
	require.NoError(t, repo.Upsert(ctx, buyer.ID, p.ID, product.Size100ml, 3))

	items, err := repo.List(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 5, items[0].Quantity)
	require.NotEqual(t, uuid.Nil, items[0].ID)
}

func TestCartRepository_SetQuantityScopedToOwner(t *testing.T) {
	pool := testdb.Pool(t)
	repo := cart.NewRepository(pool)
	ctx := context.Background()

	buyer := testdb.SeedUser(t, pool)
	stranger := testdb.SeedUser(t, pool)
	p := testdb.SeedProduct(t, pool, testdb.SeedUser(t, pool).ID, 10)

	require.NoError(t, repo.Upsert(ctx, buyer.ID, p.ID, product.Size100ml, 1))
	items, err := repo.List(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.ErrorIs(t, repo.SetQuantity(ctx, stranger.ID, items[0].ID, 4), cart.ErrItemNotFound)
	require.NoError(t, repo.SetQuantity(ctx, buyer.ID, items[0].ID, 4))

	items, err = repo.List(ctx, buyer.ID)
	require.NoError(t, err)
	require.Equal(t, 4, items[0].Quantity)
}

func TestCartRepository_ReplaceSwapsWholeCart(t *testing.T) {
	pool := testdb.Pool(t)
	repo := cart.NewRepository(pool)
	ctx := context.Background()

	buyer := testdb.SeedUser(t, pool)
	vendor := testdb.SeedUser(t, pool)
	p1 := testdb.SeedProduct(t, pool, vendor.ID, 10)
	p2 := testdb.SeedProduct(t, pool, vendor.ID, 10)

	require.NoError(t, repo.Upsert(ctx, buyer.ID, p1.ID, product.Size100ml, 2))

	require.NoError(t, repo.Replace(ctx, buyer.ID, []cart.Item{
		{ProductID: p2.ID, Size: product.Size100ml, Quantity: 1},
	}))

	items, err := repo.List(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, p2.ID, items[0].ProductID)
}

func TestCartRepository_DeleteAndClear(t *testing.T) {
	pool := testdb.Pool(t)
	repo := cart.NewRepository(pool)
	ctx := context.Background()

	buyer := testdb.SeedUser(t, pool)
	p := testdb.SeedProduct(t, pool, testdb.SeedUser(t, pool).ID, 10)

	require.NoError(t, repo.Upsert(ctx, buyer.ID, p.ID, product.Size100ml, 1))
	items, err := repo.List(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, repo.Delete(ctx, buyer.ID, items[0].ID))
	require.ErrorIs(t, repo.Delete(ctx, buyer.ID, items[0].ID), cart.ErrItemNotFound)

	require.NoError(t, repo.Clear(ctx, buyer.ID))
	items, err = repo.List(ctx, buyer.ID)
	require.NoError(t, err)
	require.Empty(t, items)
}
