package db

import (
	"context"
	"testing"
	"time"

	"github.com/damon-houk/freight-forecast-service/internal/domain/entity"
	"github.com/dgraph-io/badger/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()

	opts := badger.DefaultOptions(t.TempDir())
	opts.Logger = nil
	opts.SyncWrites = false

	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func newUpload(category, name string, at time.Time) *entity.Upload {
	return &entity.Upload{
		ID:           name + "-id",
		Category:     category,
		OriginalName: name,
		StoredName:   entity.StoredFileName(category, name),
		Size:         10,
		UploadedAt:   at,
	}
}

func TestSaveAndFindByCategory(t *testing.T) {
	repo := NewBadgerUploadRepository(openTestDB(t))
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, newUpload("historical", "q1.csv", base)))
	require.NoError(t, repo.Save(ctx, newUpload("historical", "q2.csv", base.Add(time.Hour))))
	require.NoError(t, repo.Save(ctx, newUpload("bid", "rfp.csv", base.Add(2*time.Hour))))
	// a category sharing the "bid_" key prefix
	require.NoError(t, repo.Save(ctx, newUpload("bid_x", "other.csv", base.Add(3*time.Hour))))

	historical, err := repo.FindByCategory(ctx, "historical")
	require.NoError(t, err)
	require.Len(t, historical, 2)
	assert.Equal(t, "historical_q2.csv", historical[0].StoredName)
	assert.Equal(t, "historical_q1.csv", historical[1].StoredName)

	bids, err := repo.FindByCategory(ctx, "bid")
	require.NoError(t, err)
	require.Len(t, bids, 1)
	assert.Equal(t, "rfp.csv", bids[0].OriginalName)

	none, err := repo.FindByCategory(ctx, "market")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSaveReplacesSameStoredName(t *testing.T) {
	repo := NewBadgerUploadRepository(openTestDB(t))
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, newUpload("historical", "rates.csv", base)))

	replacement := newUpload("historical", "rates.csv", base.Add(time.Minute))
	replacement.Size = 99
	require.NoError(t, repo.Save(ctx, replacement))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(99), all[0].Size)
	assert.True(t, all[0].UploadedAt.Equal(base.Add(time.Minute)))
}

func TestListNewestFirst(t *testing.T) {
	repo := NewBadgerUploadRepository(openTestDB(t))
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, newUpload("market", "a.csv", base.Add(time.Hour))))
	require.NoError(t, repo.Save(ctx, newUpload("bid", "b.csv", base)))
	require.NoError(t, repo.Save(ctx, newUpload("historical", "c.csv", base.Add(2*time.Hour))))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "historical", all[0].Category)
	assert.Equal(t, "market", all[1].Category)
	assert.Equal(t, "bid", all[2].Category)
}

func TestOpenBadger(t *testing.T) {
	db, err := OpenBadger(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}
