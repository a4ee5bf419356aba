package repositories_test

import (
	"context"
	"testing"
	"time"

	"tokocart/internal/models"
	"tokocart/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupMongoCartRepository(t *testing.T) *repositories.MongoCartRepository {
	if testing.Short() {
		t.Skip("skipping MongoDB container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mongoContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := repositories.ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	repo := repositories.NewMongoCartRepository(db)
	require.NoError(t, repo.CreateIndexes(ctx))
	return repo
}

func TestMongoCartRepository(t *testing.T) {
	repo := setupMongoCartRepository(t)
	ctx := context.Background()

	_, err := repo.GetCart(ctx, "u1")
	assert.ErrorIs(t, err, repositories.ErrCartNotFound)

	cart := &models.Cart{UserID: "u1", Lines: []models.CartLine{
		{ProductID: "p2", Quantity: 2, Price: decimal.RequireFromString("19.99"), Name: "Shirt", AddedAt: time.Now()},
		{ProductID: "p1", Quantity: 1, Price: decimal.RequireFromString("1200"), Name: "Laptop", AddedAt: time.Now()},
	}}
	require.NoError(t, repo.SaveCart(ctx, cart))

	got, err := repo.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "p2", got.Lines[0].ProductID)
	assert.True(t, decimal.RequireFromString("19.99").Equal(got.Lines[0].Price))
	assert.True(t, decimal.RequireFromString("1239.98").Equal(got.Total()))

	got.Lines = nil
	require.NoError(t, repo.SaveCart(ctx, got))
	emptied, err := repo.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, emptied.Lines)

	require.NoError(t, repo.DeleteCart(ctx, "u1"))
	_, err = repo.GetCart(ctx, "u1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.NoError(t, repo.DeleteCart(ctx, "u1"))
}
