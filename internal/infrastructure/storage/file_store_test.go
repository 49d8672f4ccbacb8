package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestWriteCreatesDirectoryAndOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data", "uploads")
	store := NewLocalFileStore(dir)
	ctx := context.Background()

	n, err := store.Write(ctx, "historical_rates.csv", strings.NewReader("lane_id,date,rate\nA,2023-01-01,100\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(35), n)

	_, err = store.Write(ctx, "historical_rates.csv", strings.NewReader("lane_id,date,rate\n"))
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, "historical_rates.csv"))
	require.NoError(t, err)
	assert.Equal(t, "lane_id,date,rate\n", string(content))
}

func TestWriteReportsReaderFailure(t *testing.T) {
	store := NewLocalFileStore(t.TempDir())

	_, err := store.Write(context.Background(), "bid_x.csv", failingReader{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestWriteHonoursCancelledContext(t *testing.T) {
	store := NewLocalFileStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Write(ctx, "bid_x.csv", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStat(t *testing.T) {
	store := NewLocalFileStore(t.TempDir())

	_, ok, err := store.Stat("missing.csv")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Write(context.Background(), "market_q1.csv", strings.NewReader("a,b\n"))
	require.NoError(t, err)

	info, ok, err := store.Stat("market_q1.csv")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(4), info.Size)
}

func TestListPrefixNewestFirst(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalFileStore(dir)
	ctx := context.Background()

	for _, name := range []string{"historical_old.csv", "historical_new.csv", "bid_2024.csv", "historical_mid.csv"} {
		_, err := store.Write(ctx, name, strings.NewReader("x"))
		require.NoError(t, err)
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "historical_dir"), 0755))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "historical_old.csv"), base, base))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "historical_mid.csv"), base.Add(time.Hour), base.Add(time.Hour)))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "historical_new.csv"), base.Add(2*time.Hour), base.Add(2*time.Hour)))

	files, err := store.ListPrefix("historical_")
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "historical_new.csv", files[0].Name)
	assert.Equal(t, "historical_mid.csv", files[1].Name)
	assert.Equal(t, "historical_old.csv", files[2].Name)
}

func TestListPrefixMissingDirectory(t *testing.T) {
	store := NewLocalFileStore(filepath.Join(t.TempDir(), "never-created"))

	files, err := store.ListPrefix("historical_")
	assert.NoError(t, err)
	assert.Empty(t, files)
}
