package sqlite

import (
	"context"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"

	votemaxstore "github.com/xraph/votemax/store"
	"github.com/xraph/votemax/store/storetest"
)

func openTestStore(t *testing.T) votemaxstore.Store {
	t.Helper()
	ctx := context.Background()

	drv := sqlitedriver.New()
	require.NoError(t, drv.Open(ctx, filepath.Join(t.TempDir(), "votemax.db")))
	db, err := grove.Open(drv)
	require.NoError(t, err)

	s := New(db)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(ctx))
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, openTestStore)
}

func TestCommitRollsBackOnFailure(t *testing.T) {
	storetest.RunAtomicCommit(t, openTestStore)
}

func TestTimeTextSortsChronologically(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{
		base.Add(1500 * time.Millisecond),
		base.Add(time.Second),
		base.Add(10 * time.Second),
		base.Add(time.Nanosecond),
		base.In(time.FixedZone("east", 3600)).Add(-30 * time.Minute),
	}

	texts := make([]string, len(times))
	for i, tm := range times {
		texts[i] = formatTime(tm)
	}
	sort.Strings(texts)

	var prev time.Time
	for i, text := range texts {
		got, err := parseTime(text)
		require.NoError(t, err)
		if i > 0 {
			assert.True(t, got.After(prev), "%s sorts before %s", texts[i-1], text)
		}
		prev = got
	}

	exact := base.Add(123456789 * time.Nanosecond)
	got, err := parseTime(formatTime(exact))
	require.NoError(t, err)
	assert.True(t, got.Equal(exact))

	ended, err := parseTimePtr(formatTimePtr(nil))
	require.NoError(t, err)
	assert.Nil(t, ended)
}
