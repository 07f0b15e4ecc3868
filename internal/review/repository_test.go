package review_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lara-shop/lara-api/internal/review"
	"github.com/lara-shop/lara-api/internal/testdb"
)

func TestReviewRepository_CreateAndRead(t *testing.T) {
	pool := testdb.Pool(t)
	repo := review.NewRepository(pool)
	ctx := context.Background()

	reviewer := testdb.SeedUser(t, pool)
	p := testdb.SeedProduct(t, pool, testdb.SeedUser(t, pool).ID, 5)

	rev := &review.Review{
		ProductID: p.ID,
		UserID:    reviewer.ID,
		UserName:  reviewer.Name,
		Rating:    4,
		Comment:   "lasts all day",
	}
	require.NoError(t, repo.Create(ctx, rev))
	require.NotEqual(t, uuid.Nil, rev.ID)

	got, err := repo.GetByID(ctx, rev.ID)
	require.NoError(t, err)
	require.Equal(t, reviewer.Name, got.UserName)
	require.Equal(t, 4, got.Rating)

	list, err := repo.ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestReviewRepository_DuplicateRejected(t *testing.T) {
	pool := testdb.Pool(t)
	repo := review.NewRepository(pool)
	ctx := context.Background()

	reviewer := testdb.SeedUser(t, pool)
	p := testdb.SeedProduct(t, pool, testdb.SeedUser(t, pool).ID, 5)

	first := &review.Review{ProductID: p.ID, UserID: reviewer.ID, UserName: reviewer.Name, Rating: 5, Comment: "great"}
	require.NoError(t, repo.Create(ctx, first))

	second := &review.Review{ProductID: p.ID, UserID: reviewer.ID, UserName: reviewer.Name, Rating: 1, Comment: "changed my mind"}
	require.ErrorIs(t, repo.Create(ctx, second), review.ErrAlreadyReviewed)
}

func TestReviewRepository_Aggregate(t *testing.T) {
	pool := testdb.Pool(t)
	repo := review.NewRepository(pool)
	ctx := context.Background()

	p := testdb.SeedProduct(t, pool, testdb.SeedUser(t, pool).ID, 5)

	rating, count, err := repo.Aggregate(ctx, p.ID)
	require.NoError(t, err)
	require.Zero(t, rating)
	require.Zero(t, count)

	for _, r := range []int{5, 4} {
		u := testdb.SeedUser(t, pool)
		rev := &review.Review{ProductID: p.ID, UserID: u.ID, UserName: u.Name, Rating: r, Comment: "ok"}
		require.NoError(t, repo.Create(ctx, rev))
	}

	rating, count, err = repo.Aggregate(ctx, p.ID)
	require.NoError(t, err)
	require.InDelta(t, 4.5, rating, 1e-9)
	require.Equal(t, 2, count)
}
